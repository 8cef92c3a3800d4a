package icetype

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// RelationOperator is one of the four relation arrows.
type RelationOperator string

// Relation operators.
const (
	// OpForward is a referential link to another entity.
	OpForward RelationOperator = "->"
	// OpFuzzyForward is a semantic, non-referential link.
	OpFuzzyForward RelationOperator = "~>"
	// OpBackward is the inverse of a forward relation declared elsewhere.
	OpBackward RelationOperator = "<-"
	// OpFuzzyBackward is the inverse of a fuzzy forward relation.
	OpFuzzyBackward RelationOperator = "<~"
)

// Valid reports whether o is one of the four operators.
func (o RelationOperator) Valid() bool {
	switch o {
	case OpForward, OpFuzzyForward, OpBackward, OpFuzzyBackward:
		return true
	}

	return false
}

// IsFuzzy reports whether the relation is semantic rather than referential.
// Foreign-key extraction ignores fuzzy relations.
func (o RelationOperator) IsFuzzy() bool {
	return o == OpFuzzyForward || o == OpFuzzyBackward
}

// IsForward reports whether the relation points away from the declaring entity.
func (o RelationOperator) IsForward() bool {
	return o == OpForward || o == OpFuzzyForward
}

// RelationDefinition is one parsed relation.
type RelationDefinition struct {
	Operator   RelationOperator `json:"operator" yaml:"operator"`
	TargetType string           `json:"targetType" yaml:"targetType"`
	// Inverse names the field on the target entity. Empty when not declared.
	Inverse    string `json:"inverse,omitempty" yaml:"inverse,omitempty"`
	IsArray    bool   `json:"isArray,omitempty" yaml:"isArray,omitempty"`
	IsOptional bool   `json:"isOptional,omitempty" yaml:"isOptional,omitempty"`
}

// HasInverse reports whether an inverse field was declared.
func (r *RelationDefinition) HasInverse() bool {
	return r.Inverse != ""
}

// IsRelationExpression reports whether expr starts with a relation operator.
func IsRelationExpression(expr string) bool {
	trimmed := strings.TrimLeft(expr, " \t\r\n")
	for _, op := range relationOps {
		if strings.HasPrefix(trimmed, op) {
			return true
		}
	}

	return false
}

// ParseRelation parses a relation expression such as "-> User.posts[]?".
func ParseRelation(expr string) (*RelationDefinition, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, newParseError(ErrEmptyExpression, lexer.Position{}, "relation")
	}

	if len(expr) > MaxExpressionLength {
		return nil, newParseError(ErrSyntax, lexer.Position{}, "expression longer than %d bytes", MaxExpressionLength)
	}

	tokens := Tokenize(expr)
	if tokens[0].Kind != TokenRelationOp {
		return nil, newParseError(ErrMissingOperator, tokens[0].Pos, "found %q", tokens[0].Text)
	}

	if target := tokens[1]; target.Kind != TokenIdent && target.Kind != TokenTypeName {
		if target.Kind == TokenEOF {
			return nil, newParseError(ErrMissingTarget, target.Pos, "")
		}

		return nil, newParseError(ErrMissingTarget, target.Pos, "found %q", target.Text)
	}

	ast, err := relationParser.ParseString("", expr)
	if err != nil {
		return nil, fromParticiple(err)
	}

	rel := &RelationDefinition{
		Operator:   RelationOperator(ast.Operator),
		TargetType: ast.Target,
		IsArray:    ast.Array,
		IsOptional: ast.Optional,
	}

	if ast.Inverse != nil {
		rel.Inverse = *ast.Inverse
	}

	return rel, nil
}
