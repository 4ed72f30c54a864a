// Package server exposes the processor over HTTP.
//
// The process endpoint accepts the jsonData and actionType form fields, or a
// JSON body carrying those two fields.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mcncl/jsonshape/internal/config"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/formatter"
	"github.com/mcncl/jsonshape/internal/logging"
	"github.com/mcncl/jsonshape/internal/processor"
)

// MaxBodyBytes caps the size of a request body.
const MaxBodyBytes = 10 << 20

// StatsHeader carries the structural statistics of the decoded input.
const StatsHeader = "X-Jsonshape-Stats"

const shutdownTimeout = 10 * time.Second

// Route describes a single endpoint
type Route struct {
	Name        string
	Method      string
	Path        string
	HandlerFunc http.HandlerFunc
}

// ProcessRequest is the JSON body accepted by the process endpoint.
type ProcessRequest struct {
	JSONData   string `json:"jsonData"`
	ActionType string `json:"actionType"`
}

// ProcessResponse is returned by the process endpoint on success.
type ProcessResponse struct {
	Action processor.Action `json:"action"`
	Output string           `json:"output"`
}

// ErrorResponse is returned by every endpoint on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves the jsonshape HTTP API
type Server struct {
	Router    *mux.Router
	config    *config.Config
	processor *processor.Processor
	formatter *formatter.Formatter
	logger    *logging.Logger
	// methods allowed per registered path
	allowed map[string][]string
}

// NewServer creates a Server and registers its routes. A nil logger discards
// output.
func NewServer(cfg *config.Config, logger *logging.Logger) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		Router:    mux.NewRouter().StrictSlash(true),
		config:    cfg,
		processor: processor.NewProcessor(cfg, logger),
		formatter: formatter.NewFormatterWithConfig(cfg.Output).WithEscapeHTML(true),
		logger:    logger,
		allowed:   make(map[string][]string),
	}
	s.Router.NotFoundHandler = http.HandlerFunc(s.handleUnrouted)
	s.Router.MethodNotAllowedHandler = http.HandlerFunc(s.handleUnrouted)
	s.RegisterRoutes(s.routes())
	return s
}

func (s *Server) routes() []Route {
	return []Route{
		{Name: "process", Method: http.MethodPost, Path: "/api/process", HandlerFunc: s.handleProcess},
		{Name: "actions", Method: http.MethodGet, Path: "/api/actions", HandlerFunc: s.handleActions},
		{Name: "sample", Method: http.MethodGet, Path: "/api/sample", HandlerFunc: s.handleSample},
		{Name: "healthz", Method: http.MethodGet, Path: "/healthz", HandlerFunc: s.handleHealthz},
	}
}

// RegisterRoutes adds routes to the router
func (s *Server) RegisterRoutes(routes []Route) {
	for _, route := range routes {
		s.allowed[route.Path] = append(s.allowed[route.Path], route.Method)
		s.Router.
			Methods(route.Method).
			Path(route.Path).
			Name(route.Name).
			Handler(route.HandlerFunc)
	}
}

// Handler returns the router wrapped with request logging, compression and
// panic recovery.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router
	h = handlers.CompressHandler(h)
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(s.logger.DebugEnabled()),
	)(h)
	return h
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Infof("Listening on %s", s.config.Server.Addr)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve on %s: %w", s.config.Server.Addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Infof("Shutting down %s", s.config.Server.Addr)
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	req, err := decodeProcessRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.writeError(w, status, errors.NewInputError("failed to read request", err))
		return
	}

	result, err := s.processor.Process(req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	output, err := s.formatter.Format(result.Value, s.config.Output.Format)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, errors.NewFormatError("failed to format result", err))
		return
	}

	w.Header().Set(StatsHeader, result.Stats.String())
	s.writeJSON(w, http.StatusOK, ProcessResponse{Action: result.Action, Output: output})
}

func decodeProcessRequest(r *http.Request) (processor.Request, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return processor.Request{}, err
		}
		var body ProcessRequest
		if err := json.Unmarshal(data, &body); err != nil {
			return processor.Request{}, err
		}
		return processor.Request{Input: body.JSONData, Action: body.ActionType}, nil
	}

	if err := r.ParseMultipartForm(MaxBodyBytes); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		return processor.Request{}, err
	}
	return processor.Request{
		Input:  r.PostFormValue("jsonData"),
		Action: r.PostFormValue("actionType"),
	}, nil
}

// statusFor maps processing failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsType(err, errors.ErrorTypeInput), errors.IsType(err, errors.ErrorTypeParsing):
		return http.StatusBadRequest
	case errors.IsType(err, errors.ErrorTypeTransform):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleActions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, processor.Actions())
}

func (s *Server) handleSample(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, processor.SampleDocument)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok\n")
}

// handleUnrouted answers requests no route accepted: 405 with an Allow header
// when the path exists under another method, 404 otherwise.
func (s *Server) handleUnrouted(w http.ResponseWriter, r *http.Request) {
	if methods, ok := s.allowed[r.URL.Path]; ok {
		w.Header().Set("Allow", strings.Join(methods, ", "))
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed on %s", r.Method, r.URL.Path))
		return
	}
	s.writeError(w, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path))
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Errorf("request failed: %v", err)
	} else {
		s.logger.Debugf("request rejected: %v", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: errors.UserFriendlyError(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, v); err != nil {
		s.logger.Errorf("failed to write response: %v", err)
	}
}

func (s *Server) logRequest(_ io.Writer, params handlers.LogFormatterParams) {
	s.logger.Logger.Info("request",
		zap.String("method", params.Request.Method),
		zap.String("path", params.URL.Path),
		zap.Int("status", params.StatusCode),
		zap.Int("size", params.Size),
		zap.Duration("duration", time.Since(params.TimeStamp)),
	)
}

type recoveryLogger struct {
	logger *logging.Logger
}

func (l recoveryLogger) Println(args ...interface{}) {
	l.logger.Critical(args...)
}
