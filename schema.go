package icetype

import (
	"errors"
	"strconv"
	"time"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/zeebo/xxh3"
)

// DefaultVersion is the version of a freshly assembled schema.
const DefaultVersion = 1

// IceTypeSchema is the structured model of one entity type.
type IceTypeSchema struct {
	// Name is the $type of the record. Empty when the record has none.
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Version int    `json:"version" yaml:"version"`

	Fields     OrderedMap[*FieldDefinition]    `json:"fields" yaml:"fields"`
	Relations  OrderedMap[*RelationDefinition] `json:"relations" yaml:"relations"`
	Directives Directives                      `json:"directives" yaml:"directives"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// ParseSchema assembles a schema from a record. The first malformed field or
// relation aborts the parse; the returned *ParseError names the offending key.
func ParseSchema(rec *Record) (*IceTypeSchema, error) {
	name, decls, err := Classify(rec)
	if err != nil {
		return nil, err
	}

	return ParseDeclarations(name, decls...)
}

// ParseDeclarations assembles a schema from explicit declarations, keeping
// their order. Declaring the same name twice is ErrInvalidRecord.
func ParseDeclarations(name string, decls ...Declaration) (*IceTypeSchema, error) {
	now := time.Now()
	schema := &IceTypeSchema{
		Name:      name,
		Version:   DefaultVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}

	seen := make(map[string]bool, len(decls))
	directives := NewRecord()

	for _, decl := range decls {
		key := decl.DeclName()
		if seen[key] {
			return nil, newParseError(ErrInvalidRecord, lexer.Position{}, "duplicate declaration").withField(key)
		}

		seen[key] = true

		switch d := decl.(type) {
		case *DirectiveDecl:
			directives.Set(d.Name, d.Value)
		case *RelationDecl:
			rel, err := ParseRelation(d.Expr)
			if err != nil {
				return nil, attribute(err, key)
			}

			schema.Relations.set(key, rel)
		case *FieldDecl:
			field, err := ParseField(d.Expr)
			if err != nil {
				return nil, attribute(err, key)
			}

			schema.Fields.set(key, field)
		}
	}

	schema.Directives = ParseDirectives(directives)

	return schema, nil
}

func attribute(err error, field string) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr.withField(field)
	}

	return err
}

// Fingerprint hashes the canonical rendering of the schema. Timestamps are
// not part of it, so identical declarations always hash identically.
func (s *IceTypeSchema) Fingerprint() uint64 {
	return xxh3.HashString(strconv.Itoa(s.Version) + "\n" + FormatSchema(s))
}
