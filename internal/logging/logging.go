// Package logging wraps zap with printf-style helpers and an optional
// identifier prefixed to every message.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger describes an identifier logger
type Logger struct {
	*zap.Logger
	id string
}

type level int

// Logging levels
const (
	CRITICAL level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

func (l *Logger) log(level level, format *string, args ...interface{}) {
	s := l.Sugar()
	msg := l.id
	if format != nil {
		msg = joinID(msg, *format)
	} else {
		for range args {
			msg = joinID(msg, "%v")
		}
	}

	switch level {
	case CRITICAL:
		s.DPanicf(msg, args...)
	case ERROR:
		s.Errorf(msg, args...)
	case WARNING:
		s.Warnf(msg, args...)
	case INFO:
		s.Infof(msg, args...)
	case DEBUG:
		s.Debugf(msg, args...)
	}
}

func joinID(prefix, format string) string {
	if prefix == "" {
		return format
	}
	return prefix + " " + format
}

// ParseLevel maps a level name onto a zap level. Unknown names give INFO.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToUpper(name) {
	case "CRITICAL":
		return zapcore.DPanicLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "WARNING", "WARN":
		return zapcore.WarnLevel
	case "DEBUG":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Critical logs a message using CRITICAL as log level.
func (l *Logger) Critical(args ...interface{}) {
	l.log(CRITICAL, nil, args...)
}

// Criticalf logs a message using CRITICAL as log level.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.log(CRITICAL, &format, args...)
}

// Error logs a message using ERROR as log level.
func (l *Logger) Error(args ...interface{}) {
	l.log(ERROR, nil, args...)
}

// Errorf logs a message using ERROR as log level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, &format, args...)
}

// Warning logs a message using WARNING as log level.
func (l *Logger) Warning(args ...interface{}) {
	l.log(WARNING, nil, args...)
}

// Warningf logs a message using WARNING as log level.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.log(WARNING, &format, args...)
}

// Info logs a message using INFO as log level.
func (l *Logger) Info(args ...interface{}) {
	l.log(INFO, nil, args...)
}

// Infof logs a message using INFO as log level.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, &format, args...)
}

// Debug logs a message using DEBUG as log level.
func (l *Logger) Debug(args ...interface{}) {
	l.log(DEBUG, nil, args...)
}

// Debugf logs a message using DEBUG as log level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, &format, args...)
}

// DebugEnabled reports whether debug messages would be written.
func (l *Logger) DebugEnabled() bool {
	return l.Core().Enabled(zapcore.DebugLevel)
}

func newEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "name",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New returns a logger writing to w. encoding is "json" or "console".
func New(id string, w io.Writer, levelName string, encoding string) *Logger {
	encoderConfig := newEncoderConfig()

	var encoder zapcore.Encoder
	switch encoding {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), ParseLevel(levelName))
	z := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(2),
		zap.AddStacktrace(zapcore.DPanicLevel),
	)

	return &Logger{Logger: z, id: id}
}

// NewStderr returns the console logger used by the CLI and the server.
func NewStderr(debug bool) *Logger {
	levelName := "INFO"
	if debug {
		levelName = "DEBUG"
	}
	return New("", os.Stderr, levelName, "console")
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithID returns a copy of l whose messages are prefixed with id.
func (l *Logger) WithID(id string) *Logger {
	return &Logger{Logger: l.Logger, id: id}
}
