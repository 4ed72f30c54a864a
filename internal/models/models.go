package models

import "strings"

// Kind identifies which variant of the JSON data model a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindObject
	KindArray
)

// String returns the lowercase JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a decoded JSON value.
// Only the fields matching Kind are meaningful: Bool for booleans, Text for
// strings and numbers (the literal as it appeared in the input), Members for
// objects and Items for arrays.
type Value struct {
	Kind    Kind
	Bool    bool
	Text    string
	Members []Member
	Items   []Value
}

// Member is a single key/value pair of an object.
// Objects keep their members in input order.
type Member struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// Number returns a JSON number from its literal text, e.g. "30" or "1.5e3".
func Number(text string) Value { return Value{Kind: KindNumber, Text: text} }

// String returns a JSON string.
func String(s string) Value { return Value{Kind: KindString, Text: s} }

// Object returns a JSON object with the given members in order.
func Object(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{Kind: KindObject, Members: members}
}

// Array returns a JSON array with the given items in order.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Items: items}
}

// M is shorthand for building object members.
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

// IsContainer reports whether v is an object or an array.
func (v Value) IsContainer() bool {
	return v.Kind == KindObject || v.Kind == KindArray
}

// IsLeaf reports whether v is null, a boolean, a number or a string.
func (v Value) IsLeaf() bool { return !v.IsContainer() }

// Len returns the number of members or items of a container, 0 for leaves.
func (v Value) Len() int {
	switch v.Kind {
	case KindObject:
		return len(v.Members)
	case KindArray:
		return len(v.Items)
	default:
		return 0
	}
}

// Keys returns the member keys of an object in order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.Members))
	for _, m := range v.Members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Get looks up a member of an object by key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether two values are structurally identical, including
// member order. Numbers compare by their literal text.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.Bool == other.Bool
	case KindNumber, KindString:
		return v.Text == other.Text
	case KindObject:
		if len(v.Members) != len(other.Members) {
			return false
		}
		for i, m := range v.Members {
			if m.Key != other.Members[i].Key || !m.Value.Equal(other.Members[i].Value) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i, item := range v.Items {
			if !item.Equal(other.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsIntegral reports whether a number literal has neither a fraction nor an
// exponent part.
func (v Value) IsIntegral() bool {
	return v.Kind == KindNumber && !strings.ContainsAny(v.Text, ".eE")
}

// Schema types reported by the inferrer.
const (
	SchemaObject  = "object"
	SchemaArray   = "array"
	SchemaString  = "string"
	SchemaNumber  = "number"
	SchemaInteger = "integer"
	SchemaBoolean = "boolean"
	SchemaNull    = "null"
)

// SchemaNode describes the shape of a JSON value.
// Properties is only set for objects and Items only for arrays.
type SchemaNode struct {
	Type       string
	Properties []Property
	Items      *SchemaNode
}

// Property is a named child schema of an object schema.
type Property struct {
	Name   string
	Schema SchemaNode
}

// Property returns the schema of a named property.
func (n SchemaNode) Property(name string) (SchemaNode, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return SchemaNode{}, false
}
