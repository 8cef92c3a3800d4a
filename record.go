package icetype

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"gopkg.in/yaml.v3"
)

// DirectiveSigil prefixes every directive key.
const DirectiveSigil = "$"

// Directive keys.
const (
	KeyType        = "$type"
	KeyPartitionBy = "$partitionBy"
	KeyIndex       = "$index"
	KeyFTS         = "$fts"
	KeyVector      = "$vector"
)

// Record is the loosely-typed input of the schema assembler: an ordered
// mapping of keys to values. Values are strings, []any, *Record, numbers,
// booleans or nil.
type Record struct {
	keys   []string
	values map[string]any
	lines  map[string]int
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// RecordFromMap builds a record from a Go map. Go maps are unordered, so the
// keys are sorted to keep the result deterministic.
func RecordFromMap(m map[string]any) *Record {
	r := NewRecord()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		r.Set(k, m[k])
	}

	return r
}

// Set stores value under key and returns r for chaining. Setting an existing
// key keeps its original position.
func (r *Record) Set(key string, value any) *Record {
	if r.values == nil {
		r.values = make(map[string]any)
	}

	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}

	r.values[key] = value

	return r
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}

	v, ok := r.values[key]

	return v, ok
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}

	return len(r.keys)
}

// Keys returns a copy of the keys in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}

	return slices.Clone(r.keys)
}

// All iterates over the entries in order.
func (r *Record) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if r == nil {
			return
		}

		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// KeyLine returns the source line of key when the record was decoded from
// YAML or JSON, or 0.
func (r *Record) KeyLine(key string) int {
	if r == nil {
		return 0
	}

	return r.lines[key]
}

// UnmarshalYAML decodes a YAML mapping, keeping key order. Nested mappings
// become *Record and sequences become []any. A repeated key is
// ErrInvalidRecord.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidRecord, node.Line)
	}

	r.keys = nil
	r.values = make(map[string]any, len(node.Content)/2)
	r.lines = make(map[string]int, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}

		if first, ok := r.lines[key]; ok {
			return newParseError(ErrInvalidRecord, lexer.Position{},
				"duplicate key at line %d (first at line %d)", node.Content[i].Line, first).withField(key)
		}

		value, err := decodeYAMLValue(node.Content[i+1])
		if err != nil {
			return err
		}

		r.Set(key, value)
		r.lines[key] = node.Content[i].Line
	}

	return nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. JSON is parsed as
// YAML flow content.
func (r *Record) UnmarshalJSON(data []byte) error {
	return yaml.Unmarshal(data, r)
}

func decodeYAMLValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		rec := NewRecord()
		if err := rec.UnmarshalYAML(node); err != nil {
			return nil, err
		}

		return rec, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))

		for _, child := range node.Content {
			v, err := decodeYAMLValue(child)
			if err != nil {
				return nil, err
			}

			items = append(items, v)
		}

		return items, nil
	case yaml.AliasNode:
		return decodeYAMLValue(node.Alias)
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}

		return v, nil
	}
}

// =============================================================================
// Declarations
// =============================================================================

// Declaration is one classified record entry: *FieldDecl, *RelationDecl or
// *DirectiveDecl.
type Declaration interface {
	DeclName() string

	isDeclaration()
}

// FieldDecl declares a field by its type expression.
type FieldDecl struct {
	Name string
	Expr string
}

// RelationDecl declares a relation by its relation expression.
type RelationDecl struct {
	Name string
	Expr string
}

// DirectiveDecl declares a table-level directive. Name includes the sigil.
type DirectiveDecl struct {
	Name  string
	Value any
}

func (*FieldDecl) isDeclaration()     {}
func (*RelationDecl) isDeclaration()  {}
func (*DirectiveDecl) isDeclaration() {}

func (d *FieldDecl) DeclName() string     { return d.Name }
func (d *RelationDecl) DeclName() string  { return d.Name }
func (d *DirectiveDecl) DeclName() string { return d.Name }

// Field returns a field declaration.
func Field(name, expr string) *FieldDecl { return &FieldDecl{Name: name, Expr: expr} }

// Relation returns a relation declaration.
func Relation(name, expr string) *RelationDecl { return &RelationDecl{Name: name, Expr: expr} }

// Directive returns a directive declaration. The sigil is added when missing.
func Directive(name string, value any) *DirectiveDecl {
	if !strings.HasPrefix(name, DirectiveSigil) {
		name = DirectiveSigil + name
	}

	return &DirectiveDecl{Name: name, Value: value}
}

// Classify splits a record into its schema name and declarations, in record
// order. The $type entry is returned as the name and not as a declaration.
func Classify(rec *Record) (string, []Declaration, error) {
	var (
		name  string
		decls = make([]Declaration, 0, rec.Len())
	)

	for key, value := range rec.All() {
		if key == KeyType {
			s, ok := value.(string)
			if !ok {
				return "", nil, newParseError(ErrInvalidRecord, lexer.Position{}, "$type must be a string, got %T", value).withField(key)
			}

			name = s

			continue
		}

		if strings.HasPrefix(key, DirectiveSigil) {
			decls = append(decls, &DirectiveDecl{Name: key, Value: value})
			continue
		}

		expr, ok := value.(string)
		if !ok {
			return "", nil, newParseError(ErrInvalidRecord, lexer.Position{}, "expected an expression string, got %T", value).withField(key)
		}

		if IsRelationExpression(expr) {
			decls = append(decls, &RelationDecl{Name: key, Expr: expr})
		} else {
			decls = append(decls, &FieldDecl{Name: key, Expr: expr})
		}
	}

	return name, decls, nil
}
