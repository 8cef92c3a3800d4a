package icetype

import (
	"bytes"
	"encoding/json"
	"iter"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a read-only name -> value mapping that remembers insertion
// order. The zero value is an empty map.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}

	v, ok := m.values[key]

	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}

	return append([]string(nil), m.keys...)
}

// All iterates over the entries in insertion order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}

		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// set appends key, or replaces its value in place when already present.
func (m *OrderedMap[V]) set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}

	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := marshalJSON(k)
		if err != nil {
			return nil, err
		}

		value, err := marshalJSON(m.values[k])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping, so relation operators
// such as "->" stay literal.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalYAML encodes the map as a YAML mapping with keys in insertion order.
func (m OrderedMap[V]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, k := range m.Keys() {
		var value yaml.Node
		if err := value.Encode(m.values[k]); err != nil {
			return nil, err
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}

	return node, nil
}
