// Package mapper rebuilds JSON values leaf by leaf.
//
// Map walks a value depth-first and returns a new tree with the same
// containers, the same member order and the same array lengths, where every
// leaf has been replaced by the result of a LeafFunc. Containers are never
// handed to the LeafFunc, so an empty object or array maps to an empty
// container of the same kind without calling it at all.
package mapper

import (
	"fmt"

	"github.com/mcncl/jsonshape/internal/analyzer"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/models"
)

// DefaultMaxDepth bounds nesting when no WithMaxDepth option is given.
const DefaultMaxDepth = 512

// LeafFunc transforms a single leaf (null, boolean, number or string).
type LeafFunc func(models.Value) models.Value

// Option configures a Map call.
type Option func(*options)

type options struct {
	maxDepth int
}

// WithMaxDepth limits how deeply nested containers may be. Values nested
// deeper than n containers make Map fail with errors.ErrDepthExceeded.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// Map returns a copy of v in which every leaf has been replaced by fn(leaf).
// The input is never modified. Either the whole tree is mapped or an error is
// returned with the zero Value.
func Map(v models.Value, fn LeafFunc, opts ...Option) (models.Value, error) {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}

	m := &walker{fn: fn, maxDepth: o.maxDepth}
	out, err := m.walk(v, 0)
	if err != nil {
		return models.Value{}, err
	}
	return out, nil
}

type walker struct {
	fn       LeafFunc
	maxDepth int
}

func (w *walker) walk(v models.Value, depth int) (models.Value, error) {
	switch v.Kind {
	case models.KindObject:
		if depth >= w.maxDepth {
			return models.Value{}, depthError(w.maxDepth)
		}
		members := make([]models.Member, len(v.Members))
		for i, m := range v.Members {
			child, err := w.walk(m.Value, depth+1)
			if err != nil {
				return models.Value{}, err
			}
			members[i] = models.M(m.Key, child)
		}
		return models.Object(members...), nil
	case models.KindArray:
		if depth >= w.maxDepth {
			return models.Value{}, depthError(w.maxDepth)
		}
		items := make([]models.Value, len(v.Items))
		for i, item := range v.Items {
			child, err := w.walk(item, depth+1)
			if err != nil {
				return models.Value{}, err
			}
			items[i] = child
		}
		return models.Array(items...), nil
	default:
		return w.fn(v), nil
	}
}

func depthError(limit int) error {
	return errors.NewTransformError(
		fmt.Sprintf("maximum nesting depth of %d exceeded", limit),
		errors.ErrDepthExceeded,
	)
}

// Identity returns every leaf unchanged.
func Identity(v models.Value) models.Value { return v }

// Strip replaces every leaf with null.
func Strip(models.Value) models.Value { return models.Null() }

// Classify returns a LeafFunc that replaces every leaf with the string name
// of its type: null, boolean, number or string. With splitIntegers, integral
// numbers are named integer.
func Classify(splitIntegers bool) LeafFunc {
	return func(v models.Value) models.Value {
		return models.String(analyzer.TypeName(v, splitIntegers))
	}
}
