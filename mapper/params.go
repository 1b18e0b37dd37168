package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"
)

// Param is a single key/value pair used to build Params in order.
type Param struct {
	Key   string
	Value interface{}
}

// P is shorthand for Param{Key: key, Value: value}.
func P(key string, value interface{}) Param {
	return Param{Key: key, Value: value}
}

// Params is an insertion-ordered set of request parameters.
//
// The zero value is an empty, usable Params. Params is a value type: every
// method that changes the contents returns a new Params and leaves the
// receiver untouched, so a Params can be shared between goroutines.
type Params struct {
	keys   []string
	values map[string]interface{}
}

// NewParams creates Params from pairs, keeping their order. A repeated key
// keeps its first position and its last value.
func NewParams(items ...Param) Params {
	p := Params{
		keys:   make([]string, 0, len(items)),
		values: make(map[string]interface{}, len(items)),
	}
	for _, item := range items {
		p.set(item.Key, item.Value)
	}
	return p
}

// ParamsFromMap creates Params from a plain map. Go maps carry no order, so
// keys are sorted.
func ParamsFromMap(m map[string]interface{}) Params {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	items := make([]Param, 0, len(keys))
	for _, key := range keys {
		items = append(items, P(key, m[key]))
	}
	return NewParams(items...)
}

var paramEncoder = schema.NewEncoder()

// ParamsFromStruct encodes a struct into Params using `schema` field tags
// (the same tags gorilla/schema decodes query strings with). Keys are sorted;
// fields with a single value become strings and repeated fields become
// []string.
//
// Example:
//
//	type search struct {
//	    Query string   `schema:"q"`
//	    Tags  []string `schema:"tag,omitempty"`
//	}
//	params, err := mapper.ParamsFromStruct(search{Query: "go"})
func ParamsFromStruct(v interface{}) (Params, error) {
	encoded := make(map[string][]string)
	if err := paramEncoder.Encode(v, encoded); err != nil {
		return Params{}, fmt.Errorf("error encoding params: %w", err)
	}

	m := make(map[string]interface{}, len(encoded))
	for key, values := range encoded {
		if len(values) == 1 {
			m[key] = values[0]
			continue
		}
		m[key] = values
	}
	return ParamsFromMap(m), nil
}

// Len returns the number of parameters.
func (p Params) Len() int {
	return len(p.keys)
}

// Keys returns the parameter names in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Get returns the value stored under key.
func (p Params) Get(key string) (interface{}, bool) {
	value, ok := p.values[key]
	return value, ok
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Each calls fn for every parameter in insertion order.
func (p Params) Each(fn func(key string, value interface{})) {
	for _, key := range p.keys {
		fn(key, p.values[key])
	}
}

// With returns a copy of p with key set to value. An existing key keeps its
// position.
func (p Params) With(key string, value interface{}) Params {
	out := p.clone(1)
	out.set(key, value)
	return out
}

// Without returns a copy of p with the given keys removed.
func (p Params) Without(keys ...string) Params {
	drop := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		drop[key] = struct{}{}
	}

	out := Params{
		keys:   make([]string, 0, len(p.keys)),
		values: make(map[string]interface{}, len(p.keys)),
	}
	for _, key := range p.keys {
		if _, ok := drop[key]; ok {
			continue
		}
		out.set(key, p.values[key])
	}
	return out
}

// Merge returns p overlaid with other. Values from other win; keys already in
// p keep their position and new keys are appended in other's order.
func (p Params) Merge(other Params) Params {
	out := p.clone(other.Len())
	for _, key := range other.keys {
		out.set(key, other.values[key])
	}
	return out
}

// Map returns the parameters as a plain map.
func (p Params) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(p.keys))
	for _, key := range p.keys {
		m[key] = p.values[key]
	}
	return m
}

// Equal reports whether p and other hold the same keys in the same order
// with equal string forms of their values.
func (p Params) Equal(other Params) bool {
	if len(p.keys) != len(other.keys) {
		return false
	}
	for i, key := range p.keys {
		if other.keys[i] != key {
			return false
		}
		if fmt.Sprint(p.values[key]) != fmt.Sprint(other.values[key]) {
			return false
		}
	}
	return true
}

func (p Params) clone(extra int) Params {
	out := Params{
		keys:   make([]string, len(p.keys), len(p.keys)+extra),
		values: make(map[string]interface{}, len(p.keys)+extra),
	}
	copy(out.keys, p.keys)
	for key, value := range p.values {
		out.values[key] = value
	}
	return out
}

// set mutates p and must only be called on a freshly built copy.
func (p *Params) set(key string, value interface{}) {
	if p.values == nil {
		p.values = make(map[string]interface{})
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// MarshalJSON writes the parameters as a JSON object in insertion order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.values[key])
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the parameters as a YAML mapping in insertion order.
func (p Params) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range p.keys {
		var value yaml.Node
		if err := value.Encode(p.values[key]); err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&value,
		)
	}
	return node, nil
}

// UnmarshalYAML reads a YAML (or JSON) mapping, keeping document order.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*p = Params{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}

	out := NewParams()
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value interface{}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("line %d: param %q: %w", node.Content[i].Line, node.Content[i].Value, err)
		}
		out.set(node.Content[i].Value, value)
	}
	*p = out
	return nil
}
