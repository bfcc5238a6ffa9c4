package types

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value is a tagged union over the shapes a template property can take:
// scalar, ordered list, or ordered mapping. Accessors are total; anything
// that cannot be answered returns the Absent sentinel or a false ok,
// never a panic.
type Value struct {
	kind    Kind
	str     string
	num     float64
	boolean bool
	items   []Value
	keys    []string
	fields  map[string]Value
}

// Absent is the missing-property sentinel.
var Absent = Value{kind: KindAbsent}

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number builds a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int builds a numeric value from an int.
func Int(i int) Value { return Number(float64(i)) }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// List builds a list value.
func List(items ...Value) Value { return Value{kind: KindList, items: items} }

// Pair is one key/value entry of a map value.
type Pair struct {
	Key string
	Val Value
}

// Field builds a map entry.
func Field(key string, val Value) Pair { return Pair{Key: key, Val: val} }

// Map builds a map value preserving the given key order.
// A duplicate key overwrites the earlier value but keeps its position.
func Map(pairs ...Pair) Value {
	v := Value{
		kind:   KindMap,
		fields: make(map[string]Value, len(pairs)),
	}
	for _, p := range pairs {
		if _, seen := v.fields[p.Key]; !seen {
			v.keys = append(v.keys, p.Key)
		}
		v.fields[p.Key] = p.Val
	}
	return v
}

// Kind reports the variant held.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value is the missing sentinel.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsMap reports whether the value is a mapping.
func (v Value) IsMap() bool { return v.kind == KindMap }

// IsList reports whether the value is a list.
func (v Value) IsList() bool { return v.kind == KindList }

// IsString reports whether the value is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// Str returns the string content.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Text returns the string content, or "" for any non-string value.
func (v Value) Text() string { return v.str }

// Float returns the numeric content.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Int returns the value coerced to an integer. Numbers truncate toward
// zero; strings must parse as a base-10 integer. Everything else fails.
func (v Value) Int() (int, bool) {
	switch v.kind {
	case KindNumber:
		return int(v.num), true
	case KindString:
		n, err := strconv.Atoi(strings.TrimSpace(v.str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Bool returns the boolean content.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// List returns the list items, or nil for non-lists.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.items
}

// Len returns the number of items or entries, 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.keys)
	default:
		return 0
	}
}

// Get returns the entry for key, or Absent when the value is not a map
// or the key is missing.
func (v Value) Get(key string) Value {
	if v.kind != KindMap {
		return Absent
	}
	f, ok := v.fields[key]
	if !ok {
		return Absent
	}
	return f
}

// Keys returns the map keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	return v.keys
}

// Values returns the map values in key order.
func (v Value) Values() []Value {
	if v.kind != KindMap {
		return nil
	}
	out := make([]Value, 0, len(v.keys))
	for _, k := range v.keys {
		out = append(out, v.fields[k])
	}
	return out
}

// Truthy mirrors the emptiness rules template authors expect: absent,
// "", 0, false, and empty collections are all false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0
	case KindBool:
		return v.boolean
	case KindList:
		return len(v.items) > 0
	case KindMap:
		return len(v.keys) > 0
	default:
		return false
	}
}

// Interface converts the value to plain Go types (map[string]any,
// []any, scalars) for JSON serialization or policy-engine input.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.boolean
	case KindList:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.fields[k].Interface()
		}
		return out
	default:
		return nil
	}
}

// ParseYAML decodes a YAML (or JSON) document into a Value, preserving
// mapping key order.
func ParseYAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Absent, fmt.Errorf("decode value: %w", err)
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return Absent, nil
	}
	return FromYAMLNode(node.Content[0])
}

// MustParseYAML is ParseYAML for tests and fixtures; it panics on error.
func MustParseYAML(src string) Value {
	v, err := ParseYAML([]byte(src))
	if err != nil {
		panic(err)
	}
	return v
}

// FromYAMLNode converts a decoded yaml.Node tree into a Value.
func FromYAMLNode(node *yaml.Node) (Value, error) {
	if node == nil {
		return Absent, nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Absent, nil
		}
		return FromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(node.Alias)
	case yaml.ScalarNode:
		return scalarFromNode(node)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := FromYAMLNode(child)
			if err != nil {
				return Absent, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case yaml.MappingNode:
		pairs := make([]Pair, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := FromYAMLNode(node.Content[i+1])
			if err != nil {
				return Absent, err
			}
			pairs = append(pairs, Field(node.Content[i].Value, val))
		}
		return Map(pairs...), nil
	default:
		return Absent, nil
	}
}

func scalarFromNode(node *yaml.Node) (Value, error) {
	switch node.Tag {
	case "!!null":
		return Absent, nil
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(node.Value))
		if err != nil {
			return String(node.Value), nil
		}
		return Bool(b), nil
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return String(node.Value), nil
		}
		return Number(f), nil
	default:
		return String(node.Value), nil
	}
}
