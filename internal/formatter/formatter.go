package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/mcncl/jsonshape/internal/config"
	"github.com/mcncl/jsonshape/internal/models"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter serializes values while keeping object member order
type Formatter struct {
	indent     string
	escapeHTML bool
}

// NewFormatter creates a new Formatter with the default indentation
func NewFormatter() *Formatter {
	return &Formatter{indent: config.DefaultIndent}
}

// NewFormatterWithConfig creates a Formatter from output settings
func NewFormatterWithConfig(cfg config.OutputConfig) *Formatter {
	return &Formatter{
		indent:     cfg.Indent,
		escapeHTML: cfg.EscapeHTML,
	}
}

// WithEscapeHTML returns a copy of f that escapes <, > and & in JSON strings
func (f *Formatter) WithEscapeHTML(escape bool) *Formatter {
	clone := *f
	clone.escapeHTML = escape
	return &clone
}

// Format serializes v in the named format (json or yaml)
func (f *Formatter) Format(v models.Value, format string) (string, error) {
	switch format {
	case "", FormatJSON:
		return f.FormatJSON(v)
	case FormatYAML:
		return f.FormatYAML(v)
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
}

// FormatJSON returns v as indented JSON text without a trailing newline.
// An empty indent produces compact single-line output.
func (f *Formatter) FormatJSON(v models.Value) (string, error) {
	var buf bytes.Buffer

	opts := []jsontext.Options{jsontext.EscapeForHTML(f.escapeHTML)}
	if f.indent != "" {
		opts = append(opts, jsontext.WithIndent(f.indent), jsontext.SpaceAfterColon(true))
	}
	enc := jsontext.NewEncoder(&buf, opts...)

	if err := writeJSON(enc, v); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func writeJSON(enc *jsontext.Encoder, v models.Value) error {
	switch v.Kind {
	case models.KindNull:
		return enc.WriteToken(jsontext.Null)
	case models.KindBoolean:
		return enc.WriteToken(jsontext.Bool(v.Bool))
	case models.KindString:
		return enc.WriteToken(jsontext.String(v.Text))
	case models.KindNumber:
		// Write the literal untouched so no precision is lost.
		return enc.WriteValue(jsontext.Value(v.Text))
	case models.KindObject:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, m := range v.Members {
			if err := enc.WriteToken(jsontext.String(m.Key)); err != nil {
				return err
			}
			if err := writeJSON(enc, m.Value); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	case models.KindArray:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range v.Items {
			if err := writeJSON(enc, item); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	default:
		return fmt.Errorf("unknown value kind %d", v.Kind)
	}
}

// FormatYAML returns v as a YAML document without a trailing newline
func (f *Formatter) FormatYAML(v models.Value) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent(f.indent))

	if err := enc.Encode(yamlNode(v)); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// yamlIndent maps the JSON indent string onto a YAML indent width
func yamlIndent(indent string) int {
	width := 0
	for _, r := range indent {
		if r == '\t' {
			width += 4
		} else {
			width++
		}
	}
	if width < 2 {
		return 2
	}
	return width
}

func yamlNode(v models.Value) *yaml.Node {
	switch v.Kind {
	case models.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case models.KindBoolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool)}
	case models.KindNumber:
		tag := "!!float"
		if v.IsIntegral() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Text}
	case models.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Text}
	case models.KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.Members {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				yamlNode(m.Value),
			)
		}
		return node
	default:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items {
			node.Content = append(node.Content, yamlNode(item))
		}
		return node
	}
}
