package icetype

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Parse error classes. Every ParseError unwraps to exactly one of these.
var (
	ErrEmptyExpression   = errors.New("expected a non-empty string")
	ErrModifierPosition  = errors.New("modifier must follow the base type")
	ErrUnknownType       = errors.New("unknown type")
	ErrInvalidParameters = errors.New("invalid type parameters")
	ErrInvalidGeneric    = errors.New("invalid generic type arguments")
	ErrInvalidDefault    = errors.New("unsupported default value")
	ErrMissingOperator   = errors.New("expected a relation operator (->, ~>, <-, <~)")
	ErrMissingTarget     = errors.New("expected a target type after the relation operator")
	ErrInvalidRecord     = errors.New("invalid schema record")
	ErrSyntax            = errors.New("syntax error")
)

// Other sentinel errors.
var (
	// ErrConfigNotFound is returned when no .icetype.yaml is found.
	ErrConfigNotFound = errors.New("icetype: no .icetype.yaml found")

	// ErrUnknownEmitter is returned when an unregistered emitter is requested.
	ErrUnknownEmitter = errors.New("icetype: unknown emitter")
)

// ParseError is the only error returned by the parsing functions.
type ParseError struct {
	// Kind is the error class, one of the Err* sentinels above.
	Kind error
	// Message is the human-readable description.
	Message string
	// Pos is the position in the expression. Zero when not known.
	Pos lexer.Position
	// Field is the record key being parsed, if any.
	Field string
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Pos.Line > 0 {
		msg = fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
	}

	if e.Field != "" {
		return fmt.Sprintf("%q: %s", e.Field, msg)
	}

	return msg
}

// Unwrap returns the error class so errors.Is matches the sentinels.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

// Line returns the 1-based line of the error, or 0 when unknown.
func (e *ParseError) Line() int { return e.Pos.Line }

// Column returns the 1-based column of the error, or 0 when unknown.
func (e *ParseError) Column() int { return e.Pos.Column }

// withField returns a copy of e attributed to the given record key.
func (e *ParseError) withField(field string) *ParseError {
	cp := *e
	cp.Field = field

	return &cp
}

func newParseError(kind error, pos lexer.Position, format string, args ...any) *ParseError {
	msg := kind.Error()
	if format != "" {
		msg += ": " + fmt.Sprintf(format, args...)
	}

	return &ParseError{Kind: kind, Message: msg, Pos: pos}
}

// fromParticiple converts an error returned by a participle parser.
func fromParticiple(err error) *ParseError {
	var perr participle.Error
	if errors.As(err, &perr) {
		return newParseError(ErrSyntax, perr.Position(), "%s", perr.Message())
	}

	return newParseError(ErrSyntax, lexer.Position{}, "%s", err.Error())
}
