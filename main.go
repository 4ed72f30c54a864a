package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/mcncl/jsonshape/internal/analyzer"
	"github.com/mcncl/jsonshape/internal/config"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/formatter"
	"github.com/mcncl/jsonshape/internal/logging"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/mcncl/jsonshape/internal/parser"
	"github.com/mcncl/jsonshape/internal/processor"
	"github.com/mcncl/jsonshape/internal/server"
)

// CLI defines the command-line interface
var CLI struct {
	Debug   bool   `help:"Enable debug logging." short:"d"`
	Version bool   `help:"Show version information." short:"v"`
	Config  string `help:"Path to config file. Defaults to the nearest .jsonshape.yml." short:"c" type:"path"`

	Process ProcessCmd `cmd:"" default:"withargs" help:"Process JSON input (default command)."`
	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP API."`
}

// ProcessCmd runs one action over a single JSON document
type ProcessCmd struct {
	Input            string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output           string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Action           string `help:"Action to run: removeData, listKeys, showDataType or showJSONSchema." short:"a"`
	Format           string `help:"Output format: json or yaml."`
	Indent           string `help:"Indentation used for JSON output."`
	Compact          bool   `help:"Write JSON output on a single line."`
	MaxDepth         int    `help:"Maximum nesting depth of the input."`
	SplitIntegers    bool   `help:"Report integral numbers as integer instead of number."`
	LegacySchemaRoot bool   `help:"Always describe the schema root as an object."`
	Interactive      bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
	Sample           bool   `help:"Process the built-in sample document instead of reading input."`
}

// ServeCmd starts the HTTP API
type ServeCmd struct {
	Addr string `help:"Address to listen on (default :8080)."`
}

// Context holds the runtime context
type Context struct {
	Debug      bool
	ConfigPath string
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("jsonshape"),
		kong.Description("Strip, classify, list keys of, or infer a schema from JSON documents"),
		kong.UsageOnError(),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("jsonshape version %s\n", Version)
		return
	}

	// No arguments at all means interactive mode when stdin is a terminal
	if len(os.Args) == 1 {
		CLI.Process.Interactive = true
	}

	err = ctx.Run(&Context{Debug: CLI.Debug, ConfigPath: CLI.Config})
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonshape --help\n")
		os.Exit(1)
	}
}

// overrides returns the flags that were explicitly set
func (p *ProcessCmd) overrides(debug bool) config.Overrides {
	o := config.Overrides{
		Action: p.Action,
		Format: p.Format,
	}
	if p.Indent != "" {
		o.Indent = &p.Indent
	}
	if p.Compact {
		compact := ""
		o.Indent = &compact
	}
	if p.MaxDepth != 0 {
		o.MaxDepth = &p.MaxDepth
	}
	if p.SplitIntegers {
		o.SplitIntegers = &p.SplitIntegers
	}
	if p.LegacySchemaRoot {
		o.LegacyRoot = &p.LegacySchemaRoot
	}
	if debug {
		o.Debug = &debug
	}
	return o
}

// Run executes the main program logic
func (p *ProcessCmd) Run(ctx *Context) error {
	cfg, err := config.LoadConfigWithCLI(ctx.ConfigPath, p.overrides(ctx.Debug))
	if err != nil {
		return err
	}
	logger := logging.NewStderr(cfg.Dev.Debug)
	defer func() { _ = logger.Sync() }()

	// 1. Parse JSON input
	value, err := p.parseInput()
	if err != nil {
		// Error is already wrapped by parseInput
		return err
	}

	if logger.DebugEnabled() {
		stats := analyzer.NewAnalyzer().Analyze(value)
		logger.Debugf("decoded input: %s", stats)
		logger.Debugf("value tree:\n%s", spew.Sdump(value))
	}

	// 2. Run the selected action
	action, ok := processor.ParseAction(cfg.Action)
	if !ok {
		logger.Debugf("unknown action %q, falling back to %s", cfg.Action, action)
	}
	result, err := processor.NewProcessor(cfg, logger).ProcessValue(action, value)
	if err != nil {
		return err
	}

	// 3. Format the result
	text, err := formatter.NewFormatterWithConfig(cfg.Output).Format(result, cfg.Output.Format)
	if err != nil {
		return errors.NewFormatError("failed to format output", err)
	}

	// 4. Output the result
	return p.writeOutput(text)
}

// parseInput reads JSON from the sample, a file or stdin
func (p *ProcessCmd) parseInput() (models.Value, error) {
	if p.Sample {
		return parser.ParseString(processor.SampleDocument)
	}

	if p.Input != "" {
		// Parse from file
		return parser.ParseFile(p.Input)
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if p.Interactive {
			return readInteractiveInput()
		}
		return models.Value{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return models.Value{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseBytes(jsonData)
}

// writeOutput writes text to a file or stdout
func (p *ProcessCmd) writeOutput(text string) error {
	if p.Output != "" {
		// Write to file
		err := os.WriteFile(p.Output, []byte(text+"\n"), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", p.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", p.Output)
		return nil
	}

	// Write to stdout
	_, err := fmt.Println(text)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (models.Value, error) {
	fmt.Fprintln(os.Stderr, "jsonshape Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	// Read all input until EOF (Ctrl+D)
	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Value{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if len(jsonData) == 0 {
		return models.Value{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonData)
}

// Run starts the HTTP server and blocks until interrupted
func (s *ServeCmd) Run(ctx *Context) error {
	overrides := config.Overrides{Addr: s.Addr}
	if ctx.Debug {
		overrides.Debug = &ctx.Debug
	}
	cfg, err := config.LoadConfigWithCLI(ctx.ConfigPath, overrides)
	if err != nil {
		return err
	}
	logger := logging.NewStderr(cfg.Dev.Debug)
	defer func() { _ = logger.Sync() }()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewServer(cfg, logger).ListenAndServe(sigCtx)
}
