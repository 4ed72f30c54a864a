package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcncl/jsonshape/internal/models"
)

// Analyzer gathers structural statistics of decoded JSON values.
type Analyzer struct{}

// Stats summarizes the structure of a JSON value.
type Stats struct {
	Objects  int
	Arrays   int
	Strings  int
	Numbers  int
	Integers int // subset of Numbers with an integral literal
	Booleans int
	Nulls    int
	MaxDepth int // 0 for a leaf or an empty container, 1 for a flat container
}

// Nodes returns the total number of values counted.
func (s Stats) Nodes() int {
	return s.Objects + s.Arrays + s.Strings + s.Numbers + s.Booleans + s.Nulls
}

// String renders the stats in a compact single-line form.
func (s Stats) String() string {
	parts := []string{
		fmt.Sprintf("nodes=%d", s.Nodes()),
		fmt.Sprintf("depth=%d", s.MaxDepth),
		fmt.Sprintf("objects=%d", s.Objects),
		fmt.Sprintf("arrays=%d", s.Arrays),
		fmt.Sprintf("strings=%d", s.Strings),
		fmt.Sprintf("numbers=%d", s.Numbers),
		fmt.Sprintf("integers=%d", s.Integers),
		fmt.Sprintf("booleans=%d", s.Booleans),
		fmt.Sprintf("nulls=%d", s.Nulls),
	}
	return strings.Join(parts, " ")
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// TypeName returns the lowercase JSON type name of v: null, boolean, number
// or string for leaves, object or array for containers. When splitIntegers is
// set, numbers without a fraction or exponent report integer instead.
func TypeName(v models.Value, splitIntegers bool) string {
	if v.Kind == models.KindNumber && splitIntegers && isInteger(v.Text) {
		return models.SchemaInteger
	}
	return v.Kind.String()
}

// isInteger reports whether a number literal denotes an integer.
// Literals too large for int64 still count when they carry no fraction or
// exponent.
func isInteger(literal string) bool {
	if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return true
	}
	return models.Number(literal).IsIntegral()
}

// Analyze walks v and returns its structural statistics.
func (a *Analyzer) Analyze(v models.Value) Stats {
	var stats Stats
	a.analyzeNode(v, 0, &stats)
	return stats
}

func (a *Analyzer) analyzeNode(v models.Value, depth int, stats *Stats) {
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	switch v.Kind {
	case models.KindNull:
		stats.Nulls++
	case models.KindBoolean:
		stats.Booleans++
	case models.KindString:
		stats.Strings++
	case models.KindNumber:
		stats.Numbers++
		if isInteger(v.Text) {
			stats.Integers++
		}
	case models.KindObject:
		stats.Objects++
		for _, m := range v.Members {
			a.analyzeNode(m.Value, depth+1, stats)
		}
	case models.KindArray:
		stats.Arrays++
		for _, item := range v.Items {
			a.analyzeNode(item, depth+1, stats)
		}
	}
}
