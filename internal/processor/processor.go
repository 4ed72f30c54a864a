// Package processor selects and runs one of the four JSON views on a
// decoded document.
package processor

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsonshape/internal/analyzer"
	"github.com/mcncl/jsonshape/internal/config"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/logging"
	"github.com/mcncl/jsonshape/internal/mapper"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/mcncl/jsonshape/internal/parser"
	"github.com/mcncl/jsonshape/internal/schema"
)

// SampleDocument is a small document showing every JSON value kind.
//
//go:embed sample.json
var SampleDocument string

// Action names one of the derived views.
type Action string

// Supported actions
const (
	ActionRemoveData     Action = "removeData"
	ActionListKeys       Action = "listKeys"
	ActionShowDataType   Action = "showDataType"
	ActionShowJSONSchema Action = "showJSONSchema"
)

// Descriptor documents an action for help output and the HTTP API.
type Descriptor struct {
	Action      Action `json:"action"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var descriptors = []Descriptor{
	{ActionRemoveData, "Remove Data", "Strips all values, leaving keys and structure intact."},
	{ActionListKeys, "List Main Keys Only", "Lists the top-level keys of the JSON document."},
	{ActionShowDataType, "Show Data Type", "Replaces every value with the name of its type."},
	{ActionShowJSONSchema, "Show JSON Schema", "Generates a schema describing the structure of the document."},
}

// Actions returns the supported actions in display order.
func Actions() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// ParseAction resolves an action token. Exact tokens match first, then
// spellings such as remove-data, remove_data or RemoveData. Anything else
// resolves to ActionRemoveData with ok set to false.
func ParseAction(token string) (Action, bool) {
	for _, d := range descriptors {
		if token == string(d.Action) {
			return d.Action, true
		}
	}

	normalized := strcase.ToLowerCamel(strings.TrimSpace(token))
	if normalized != "" {
		for _, d := range descriptors {
			if strings.EqualFold(normalized, string(d.Action)) {
				return d.Action, true
			}
		}
	}

	return ActionRemoveData, false
}

// Request is a single unit of work: raw JSON text and an action token.
type Request struct {
	Input  string
	Action string
}

// Result holds the output of a processed request.
type Result struct {
	Action Action
	Value  models.Value
	Stats  analyzer.Stats
}

// Processor runs actions using the limits and naming options of a Config.
type Processor struct {
	config   *config.Config
	analyzer *analyzer.Analyzer
	logger   *logging.Logger
}

// NewProcessor creates a Processor. A nil config uses the defaults and a nil
// logger discards output.
func NewProcessor(cfg *config.Config, logger *logging.Logger) *Processor {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Processor{
		config:   cfg,
		analyzer: analyzer.NewAnalyzer(),
		logger:   logger,
	}
}

// Process decodes req.Input and runs the requested action on it.
func (p *Processor) Process(req Request) (Result, error) {
	start := time.Now()

	value, err := parser.ParseString(req.Input)
	if err != nil {
		return Result{}, err
	}

	action, ok := ParseAction(req.Action)
	if !ok {
		p.logger.Debugf("unknown action %q, falling back to %s", req.Action, action)
	}

	stats := p.analyzer.Analyze(value)
	p.logger.Debugf("decoded input: %s", stats)

	out, err := p.ProcessValue(action, value)
	if err != nil {
		return Result{}, err
	}

	p.logger.Debugf("%s finished in %s", action, time.Since(start))
	return Result{Action: action, Value: out, Stats: stats}, nil
}

// ProcessValue runs action on an already decoded value.
func (p *Processor) ProcessValue(action Action, v models.Value) (models.Value, error) {
	switch action {
	case ActionListKeys:
		keys, err := ListKeys(v)
		if err != nil {
			return models.Value{}, err
		}
		return StringsToValue(keys), nil
	case ActionShowDataType:
		return mapper.Map(v, mapper.Classify(p.config.Types.SplitIntegers), p.mapperOptions()...)
	case ActionShowJSONSchema:
		node, err := schema.Infer(v,
			schema.WithMaxDepth(p.config.Limits.MaxDepth),
			schema.WithSplitIntegers(p.config.Types.SplitIntegers),
			schema.WithLegacyRoot(p.config.Schema.LegacyRoot),
		)
		if err != nil {
			return models.Value{}, err
		}
		return schema.ToValue(node), nil
	case ActionRemoveData:
		return mapper.Map(v, mapper.Strip, p.mapperOptions()...)
	default:
		return models.Value{}, errors.NewTransformError(fmt.Sprintf("unsupported action '%s'", action), nil)
	}
}

func (p *Processor) mapperOptions() []mapper.Option {
	return []mapper.Option{mapper.WithMaxDepth(p.config.Limits.MaxDepth)}
}

// ListKeys returns the top-level keys of an object in input order, or the
// indices of an array as decimal strings. Leaves have no keys.
func ListKeys(v models.Value) ([]string, error) {
	switch v.Kind {
	case models.KindObject:
		return v.Keys(), nil
	case models.KindArray:
		keys := make([]string, len(v.Items))
		for i := range v.Items {
			keys[i] = strconv.Itoa(i)
		}
		return keys, nil
	default:
		return nil, errors.NewTransformError(
			fmt.Sprintf("cannot list keys of a %s value", v.Kind),
			errors.ErrNotContainer,
		)
	}
}

// StringsToValue converts a list of strings into an array value.
func StringsToValue(items []string) models.Value {
	values := make([]models.Value, len(items))
	for i, s := range items {
		values[i] = models.String(s)
	}
	return models.Array(values...)
}
