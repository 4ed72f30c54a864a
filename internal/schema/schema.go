// Package schema infers a minimal structural schema from a JSON value.
//
// The schema only carries a type name, the ordered properties of objects and
// a single items schema for arrays. Array items are inferred from the first
// element alone; an empty array gets an items schema of type null. Identical
// sibling branches are inferred independently.
package schema

import (
	"fmt"
	"strconv"

	"github.com/mcncl/jsonshape/internal/analyzer"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
)

// DefaultMaxDepth bounds nesting when no WithMaxDepth option is given.
const DefaultMaxDepth = 512

// Option configures an Inferrer.
type Option func(*Inferrer)

// WithMaxDepth limits how deeply nested containers may be.
func WithMaxDepth(n int) Option {
	return func(i *Inferrer) {
		if n > 0 {
			i.maxDepth = n
		}
	}
}

// WithSplitIntegers reports integral numbers as "integer" instead of "number".
func WithSplitIntegers(split bool) Option {
	return func(i *Inferrer) {
		i.splitIntegers = split
	}
}

// WithLegacyRoot always describes the root as an object schema, whatever
// the root value is. A root array contributes its indices as property names
// and a root leaf yields no properties at all.
func WithLegacyRoot(legacy bool) Option {
	return func(i *Inferrer) {
		i.legacyRoot = legacy
	}
}

// Inferrer builds schema nodes from values.
type Inferrer struct {
	maxDepth      int
	splitIntegers bool
	legacyRoot    bool
}

// NewInferrer creates an Inferrer with the given options.
func NewInferrer(opts ...Option) *Inferrer {
	i := &Inferrer{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Infer is shorthand for NewInferrer(opts...).Infer(v).
func Infer(v models.Value, opts ...Option) (models.SchemaNode, error) {
	return NewInferrer(opts...).Infer(v)
}

// Infer returns the schema of v.
func (i *Inferrer) Infer(v models.Value) (models.SchemaNode, error) {
	if i.legacyRoot {
		return i.inferLegacyRoot(v)
	}
	return i.infer(v, 0)
}

func (i *Inferrer) infer(v models.Value, depth int) (models.SchemaNode, error) {
	switch v.Kind {
	case models.KindObject:
		if depth >= i.maxDepth {
			return models.SchemaNode{}, depthError(i.maxDepth)
		}
		props, err := i.properties(v.Members, depth)
		if err != nil {
			return models.SchemaNode{}, err
		}
		return models.SchemaNode{Type: models.SchemaObject, Properties: props}, nil
	case models.KindArray:
		if depth >= i.maxDepth {
			return models.SchemaNode{}, depthError(i.maxDepth)
		}
		items := models.SchemaNode{Type: models.SchemaNull}
		if len(v.Items) > 0 {
			var err error
			items, err = i.infer(v.Items[0], depth+1)
			if err != nil {
				return models.SchemaNode{}, err
			}
		}
		return models.SchemaNode{Type: models.SchemaArray, Items: &items}, nil
	default:
		return models.SchemaNode{Type: analyzer.TypeName(v, i.splitIntegers)}, nil
	}
}

func (i *Inferrer) properties(members []models.Member, depth int) ([]models.Property, error) {
	props := make([]models.Property, 0, len(members))
	for _, m := range members {
		child, err := i.infer(m.Value, depth+1)
		if err != nil {
			return nil, err
		}
		props = append(props, models.Property{Name: m.Key, Schema: child})
	}
	return props, nil
}

func (i *Inferrer) inferLegacyRoot(v models.Value) (models.SchemaNode, error) {
	root := models.SchemaNode{Type: models.SchemaObject, Properties: []models.Property{}}

	switch v.Kind {
	case models.KindObject:
		props, err := i.properties(v.Members, 0)
		if err != nil {
			return models.SchemaNode{}, err
		}
		root.Properties = props
	case models.KindArray:
		members := make([]models.Member, len(v.Items))
		for idx, item := range v.Items {
			members[idx] = models.M(strconv.Itoa(idx), item)
		}
		props, err := i.properties(members, 0)
		if err != nil {
			return models.SchemaNode{}, err
		}
		root.Properties = props
	}

	return root, nil
}

func depthError(limit int) error {
	return errors.NewTransformError(
		fmt.Sprintf("maximum nesting depth of %d exceeded", limit),
		errors.ErrDepthExceeded,
	)
}

// ToValue converts a schema node into a JSON value with the keys type,
// properties and items in that order.
func ToValue(n models.SchemaNode) models.Value {
	members := []models.Member{models.M("type", models.String(n.Type))}
	if n.Type == models.SchemaObject || n.Properties != nil {
		props := make([]models.Member, 0, len(n.Properties))
		for _, p := range n.Properties {
			props = append(props, models.M(p.Name, ToValue(p.Schema)))
		}
		members = append(members, models.M("properties", models.Object(props...)))
	}
	if n.Items != nil {
		members = append(members, models.M("items", ToValue(*n.Items)))
	}
	return models.Object(members...)
}
