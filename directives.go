package icetype

import (
	"maps"
	"math"
	"slices"
)

// Directives holds the table-level directives of a schema.
type Directives struct {
	PartitionBy []string          `json:"partitionBy,omitempty" yaml:"partitionBy,omitempty"`
	Index       []IndexDirective  `json:"index,omitempty" yaml:"index,omitempty"`
	FTS         []string          `json:"fts,omitempty" yaml:"fts,omitempty"`
	Vector      []VectorDirective `json:"vector,omitempty" yaml:"vector,omitempty"`
}

// IndexDirective is one secondary index.
type IndexDirective struct {
	Fields []string `json:"fields" yaml:"fields"`
	Unique bool     `json:"unique" yaml:"unique"`
}

// VectorDirective declares an embedding field and its dimensionality.
type VectorDirective struct {
	Field      string `json:"field" yaml:"field"`
	Dimensions int    `json:"dimensions" yaml:"dimensions"`
}

// IsZero reports whether no directive is set.
func (d Directives) IsZero() bool {
	return len(d.PartitionBy) == 0 && len(d.Index) == 0 && len(d.FTS) == 0 && len(d.Vector) == 0
}

// ParseDirectives extracts the directives of a record. It never fails:
// unknown directives and values of the wrong shape are dropped.
func ParseDirectives(rec *Record) Directives {
	var d Directives

	for key, value := range rec.All() {
		switch key {
		case KeyPartitionBy:
			if names, ok := stringList(value); ok {
				d.PartitionBy = names
			}
		case KeyIndex:
			d.Index = indexList(value)
		case KeyFTS:
			if names, ok := stringList(value); ok {
				d.FTS = names
			}
		case KeyVector:
			d.Vector = vectorList(value)
		}
	}

	return d
}

// stringList accepts []string or a []any holding only strings.
func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return slices.Clone(list), true
	case []any:
		names := make([]string, 0, len(list))

		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}

			names = append(names, s)
		}

		return names, true
	}

	return nil, false
}

// indexList accepts a list whose items are lists of field names, or
// {fields: [...], unique: bool} mappings. Other items are skipped; empty
// field lists are kept.
func indexList(v any) []IndexDirective {
	var items []any

	switch list := v.(type) {
	case []any:
		items = list
	case [][]string:
		for _, fields := range list {
			items = append(items, fields)
		}
	default:
		return nil
	}

	var out []IndexDirective

	for _, item := range items {
		if fields, ok := stringList(item); ok {
			out = append(out, IndexDirective{Fields: fields})
			continue
		}

		var entry entryGetter

		switch m := item.(type) {
		case *Record:
			entry = m
		case map[string]any:
			entry = mapEntries(m)
		default:
			continue
		}

		raw, _ := entry.Get("fields")

		fields, ok := stringList(raw)
		if !ok {
			continue
		}

		unique, _ := entry.Get("unique")
		isUnique, _ := unique.(bool)

		out = append(out, IndexDirective{Fields: fields, Unique: isUnique})
	}

	return out
}

// vectorList accepts a mapping of field name to dimensions. Entries whose
// dimensions are not whole numbers are skipped.
func vectorList(v any) []VectorDirective {
	var out []VectorDirective

	add := func(field string, value any) {
		if dims, ok := integral(value); ok {
			out = append(out, VectorDirective{Field: field, Dimensions: dims})
		}
	}

	switch m := v.(type) {
	case *Record:
		for field, value := range m.All() {
			add(field, value)
		}
	case map[string]any:
		for _, field := range slices.Sorted(maps.Keys(m)) {
			add(field, m[field])
		}
	case map[string]int:
		for _, field := range slices.Sorted(maps.Keys(m)) {
			add(field, m[field])
		}
	}

	return out
}

type entryGetter interface {
	Get(key string) (any, bool)
}

type mapEntries map[string]any

func (m mapEntries) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// integral accepts whole numbers that fit in an int32, whatever their sign.
func integral(v any) (int, bool) {
	var f float64

	switch x := v.(type) {
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	default:
		return 0, false
	}

	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}

	return int(f), true
}
