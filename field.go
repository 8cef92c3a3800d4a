package icetype

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// MaxExpressionLength bounds a single field or relation expression.
const MaxExpressionLength = 64 << 10

// Modifier characters.
const (
	ModifierRequired = '!'
	ModifierOptional = '?'
	ModifierIndexed  = '#'
)

// FieldDefinition is one parsed field.
type FieldDefinition struct {
	// Type is the canonical lowercase base type ("boolean" for "bool"),
	// or TypeRelation for relation-valued fields.
	Type string `json:"type" yaml:"type"`
	// Expr is the structured type. Nil for relation-valued fields.
	Expr TypeExpr `json:"-" yaml:"-"`
	// Modifier holds the modifier characters in source order.
	Modifier string `json:"modifier" yaml:"modifier"`

	IsArray    bool `json:"isArray" yaml:"isArray"`
	IsOptional bool `json:"isOptional" yaml:"isOptional"`
	IsRequired bool `json:"isRequired" yaml:"isRequired"`
	IsUnique   bool `json:"isUnique" yaml:"isUnique"`
	IsIndexed  bool `json:"isIndexed" yaml:"isIndexed"`

	Precision *int `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale     *int `json:"scale,omitempty" yaml:"scale,omitempty"`
	Length    *int `json:"length,omitempty" yaml:"length,omitempty"`

	Default  *DefaultValue       `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Relation *RelationDefinition `json:"relation,omitempty" yaml:"relation,omitempty"`
}

// TypeString returns the full type text, e.g. "map<string,int>".
func (f *FieldDefinition) TypeString() string {
	if f.Expr == nil {
		return f.Type
	}

	return f.Expr.String()
}

// ParseField parses a field type expression such as "decimal(10,2)!" or
// "timestamp = now()". Relation expressions are delegated to ParseRelation.
func ParseField(expr string) (*FieldDefinition, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, newParseError(ErrEmptyExpression, lexer.Position{}, "field type")
	}

	if len(expr) > MaxExpressionLength {
		return nil, newParseError(ErrSyntax, lexer.Position{}, "expression longer than %d bytes", MaxExpressionLength)
	}

	tokens := Tokenize(expr)
	first := tokens[0]

	switch first.Kind {
	case TokenModifier:
		return nil, newParseError(ErrModifierPosition, first.Pos, "found %q before the type", first.Text)
	case TokenRelationOp:
		rel, err := ParseRelation(expr)
		if err != nil {
			return nil, err
		}

		return &FieldDefinition{
			Type:       TypeRelation,
			IsArray:    rel.IsArray,
			IsOptional: rel.IsOptional,
			Relation:   rel,
		}, nil
	case TokenTypeName, TokenIdent:
		if _, ok := CanonicalTypeName(first.Text); !ok {
			return nil, newParseError(ErrUnknownType, first.Pos, "%q", first.Text)
		}
	default:
		return nil, newParseError(ErrSyntax, first.Pos, "expected a type name, found %q", first.Text)
	}

	ast, err := fieldParser.ParseString("", expr)
	if err != nil {
		perr := fromParticiple(err)
		if eq, ok := findToken(tokens, TokenEquals); ok && perr.Pos.Offset >= eq.Pos.Offset {
			perr.Kind = ErrInvalidDefault
			perr.Message = ErrInvalidDefault.Error() + ": " + strings.TrimPrefix(perr.Message, ErrSyntax.Error()+": ")
		}

		return nil, perr
	}

	return buildField(ast)
}

func findToken(tokens []Token, kind TokenKind) (Token, bool) {
	for _, tok := range tokens {
		if tok.Kind == kind {
			return tok, true
		}
	}

	return Token{}, false
}

func buildField(ast *fieldExpr) (*FieldDefinition, error) {
	typ, err := buildType(ast.Base)
	if err != nil {
		return nil, err
	}

	field := &FieldDefinition{
		Type: typ.BaseName(),
		Expr: typ,
	}

	if p, ok := typ.(*ParametricType); ok {
		field.Precision = p.Precision
		field.Scale = p.Scale
		field.Length = p.Length
	}

	var modifiers strings.Builder

	for _, suffix := range ast.Suffixes {
		if suffix.Array {
			if field.IsArray {
				return nil, newParseError(ErrSyntax, suffix.Pos, "duplicate array suffix")
			}

			field.IsArray = true

			continue
		}

		if suffix.Modifier == "" {
			continue
		}

		modifiers.WriteString(suffix.Modifier)

		switch suffix.Modifier[0] {
		case ModifierRequired:
			field.IsRequired = true
			field.IsUnique = true
		case ModifierOptional:
			field.IsOptional = true
		case ModifierIndexed:
			field.IsIndexed = true
			field.IsUnique = true
		}
	}

	field.Modifier = modifiers.String()

	if ast.Default != nil {
		def, err := buildDefault(ast.Default)
		if err != nil {
			return nil, err
		}

		field.Default = def
	}

	return field, nil
}

// buildType resolves and validates a parsed base type.
func buildType(t *typeExpr) (TypeExpr, error) {
	name, ok := CanonicalTypeName(t.Name)
	if !ok {
		return nil, newParseError(ErrUnknownType, t.Pos, "%q", t.Name)
	}

	switch {
	case IsParametricType(name):
		if t.Angle {
			return nil, newParseError(ErrInvalidParameters, t.Pos, "%s takes parenthesised arguments, not <...>", name)
		}

		return buildParametric(name, t)
	case IsGenericType(name):
		if t.Paren {
			return nil, newParseError(ErrInvalidGeneric, t.Pos, "%s takes <...> arguments, not (...)", name)
		}

		return buildGeneric(name, t)
	}

	if t.Paren {
		return nil, newParseError(ErrInvalidParameters, t.Pos, "%s does not take arguments", name)
	}

	if t.Angle {
		return nil, newParseError(ErrInvalidGeneric, t.Pos, "%s does not take type arguments", name)
	}

	return &PrimitiveType{Name: name}, nil
}

func buildParametric(name string, t *typeExpr) (*ParametricType, error) {
	arity := parametricArity[name]
	if !t.Paren || len(t.Params) < arity[0] {
		return nil, newParseError(ErrInvalidParameters, t.Pos, "%s requires %d argument(s)", name, arity[0])
	}

	if len(t.Params) > arity[1] {
		return nil, newParseError(ErrInvalidParameters, t.Params[arity[1]].Pos, "%s takes at most %d argument(s)", name, arity[1])
	}

	values := make([]int, len(t.Params))

	for i, p := range t.Params {
		n, err := strconv.Atoi(p.Value)
		if err != nil {
			return nil, newParseError(ErrInvalidParameters, p.Pos, "%s argument %q is not an integer", name, p.Value)
		}

		values[i] = n
	}

	typ := &ParametricType{Name: name}

	if name != TypeDecimal {
		if values[0] < 1 {
			return nil, newParseError(ErrInvalidParameters, t.Params[0].Pos, "%s length must be positive, got %d", name, values[0])
		}

		typ.Length = &values[0]

		return typ, nil
	}

	precision := values[0]
	if precision < 1 || precision > MaxDecimalPrecision {
		return nil, newParseError(ErrInvalidParameters, t.Params[0].Pos, "decimal precision must be between 1 and %d, got %d", MaxDecimalPrecision, precision)
	}

	typ.Precision = &values[0]

	if len(values) == 2 {
		scale := values[1]
		if scale < 0 || scale > precision {
			return nil, newParseError(ErrInvalidParameters, t.Params[1].Pos, "decimal scale must be between 0 and %d, got %d", precision, scale)
		}

		typ.Scale = &values[1]
	}

	return typ, nil
}

func buildGeneric(name string, t *typeExpr) (*GenericType, error) {
	want := genericArity[name]
	if !t.Angle || len(t.Args) != want {
		return nil, newParseError(ErrInvalidGeneric, t.Pos, "%s requires %d type argument(s), got %d", name, want, len(t.Args))
	}

	typ := &GenericType{Name: name, Args: make([]TypeExpr, 0, want)}

	for _, arg := range t.Args {
		switch name {
		case TypeStruct, TypeEnum, TypeRef:
			if arg.Paren || arg.Angle {
				return nil, newParseError(ErrInvalidGeneric, arg.Pos, "%s expects a bare name, got a type expression", name)
			}

			typ.Args = append(typ.Args, &NamedType{Name: arg.Name})
		default:
			elem, err := buildType(arg)
			if err != nil {
				return nil, err
			}

			typ.Args = append(typ.Args, elem)
		}
	}

	return typ, nil
}

// =============================================================================
// Default values
// =============================================================================

// DefaultKind identifies the shape of a default value.
type DefaultKind int

// Default value kinds.
const (
	DefaultNull DefaultKind = iota + 1
	DefaultBool
	DefaultNumber
	DefaultString
	DefaultFunction
	DefaultEmptyObject
	DefaultEmptyArray
)

var defaultKindNames = map[DefaultKind]string{
	DefaultNull:        "null",
	DefaultBool:        "boolean",
	DefaultNumber:      "number",
	DefaultString:      "string",
	DefaultFunction:    "function",
	DefaultEmptyObject: "object",
	DefaultEmptyArray:  "array",
}

func (k DefaultKind) String() string {
	return defaultKindNames[k]
}

// DefaultValue is the literal after '=' in a field expression.
type DefaultValue struct {
	Kind DefaultKind
	// Bool is set for DefaultBool.
	Bool bool
	// Number is set for DefaultNumber.
	Number float64
	// String is the unescaped text for DefaultString and the function name for
	// DefaultFunction.
	String string
}

// Value returns the default as a plain Go value: nil, bool, float64, string,
// map[string]string{"function": name}, map[string]any{} or []any{}.
func (d *DefaultValue) Value() any {
	switch d.Kind {
	case DefaultBool:
		return d.Bool
	case DefaultNumber:
		return d.Number
	case DefaultString:
		return d.String
	case DefaultFunction:
		return map[string]string{"function": d.String}
	case DefaultEmptyObject:
		return map[string]any{}
	case DefaultEmptyArray:
		return []any{}
	default:
		return nil
	}
}

// MarshalJSON encodes the default in its plain shape, see Value.
func (d *DefaultValue) MarshalJSON() ([]byte, error) {
	return marshalJSON(d.Value())
}

// MarshalYAML encodes the default in its plain shape, see Value.
func (d *DefaultValue) MarshalYAML() (any, error) {
	return d.Value(), nil
}

func buildDefault(d *defaultExpr) (*DefaultValue, error) {
	switch {
	case d.Word != nil:
		switch strings.ToLower(*d.Word) {
		case "null":
			return &DefaultValue{Kind: DefaultNull}, nil
		case "true":
			return &DefaultValue{Kind: DefaultBool, Bool: true}, nil
		case "false":
			return &DefaultValue{Kind: DefaultBool}, nil
		}

		return nil, newParseError(ErrInvalidDefault, d.Pos, "%q", *d.Word)
	case d.Func != nil:
		return &DefaultValue{Kind: DefaultFunction, String: *d.Func}, nil
	case d.Number != nil:
		n, err := strconv.ParseFloat(*d.Number, 64)
		if err != nil {
			return nil, newParseError(ErrInvalidDefault, d.Pos, "number %q", *d.Number)
		}

		return &DefaultValue{Kind: DefaultNumber, Number: n}, nil
	case d.String != nil:
		s, ok := unquote(*d.String)
		if !ok {
			return nil, newParseError(ErrInvalidDefault, d.Pos, "unterminated string %s", *d.String)
		}

		return &DefaultValue{Kind: DefaultString, String: s}, nil
	case d.Object:
		return &DefaultValue{Kind: DefaultEmptyObject}, nil
	case d.Array:
		return &DefaultValue{Kind: DefaultEmptyArray}, nil
	}

	return nil, newParseError(ErrInvalidDefault, d.Pos, "")
}

// unquote strips the quotes of a String token and resolves escapes. It
// reports false for an unterminated string.
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[len(s)-1] != s[0] {
		return "", false
	}

	quote := s[0]
	body := s[1 : len(s)-1]

	// A closing quote preceded by an odd run of backslashes is escaped.
	backslashes := 0
	for i := len(body) - 1; i >= 0 && body[i] == '\\'; i-- {
		backslashes++
	}

	if backslashes%2 == 1 {
		return "", false
	}

	var b strings.Builder

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}

		i++

		switch next := body[i]; next {
		case quote, '\'', '"', '\\':
			b.WriteByte(next)
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
	}

	return b.String(), true
}
