package icetype

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer adapts Tokenize for the participle parsers below.
var exprLexer = newExprLexer()

var (
	fieldParser = participle.MustBuild[fieldExpr](
		participle.Lexer(exprLexer),
		participle.UseLookahead(2),
	)

	relationParser = participle.MustBuild[relationExpr](
		participle.Lexer(exprLexer),
		participle.UseLookahead(2),
	)
)

// fieldExpr is the grammar of a field type expression:
//
//	baseType ( '[' ']' | modifier )* ( '=' default )?
type fieldExpr struct {
	Pos lexer.Position `parser:""`

	Base     *typeExpr     `parser:"@@"`
	Suffixes []*suffixExpr `parser:"@@*"`
	Default  *defaultExpr  `parser:"( '=' @@ )?"`
}

// typeExpr is a base type with optional parenthesised parameters or
// angle-bracketed arguments. Which ones are legal is checked after parsing.
type typeExpr struct {
	Pos lexer.Position `parser:""`

	Name   string      `parser:"@(TypeName | Ident)"`
	Paren  bool        `parser:"( @'('"`
	Params []*paramArg `parser:"  ( @@ ( ',' @@ )* )? ')'"`
	Angle  bool        `parser:"| @'<'"`
	Args   []*typeExpr `parser:"  ( @@ ( ',' @@ )* )? '>' )?"`
}

type paramArg struct {
	Pos lexer.Position `parser:""`

	Value string `parser:"@(Number | Ident | TypeName | String)"`
}

type suffixExpr struct {
	Pos lexer.Position `parser:""`

	Array    bool   `parser:"  @'[' ']'"`
	Modifier string `parser:"| @Modifier"`
}

// defaultExpr is the literal after '='. Bare words (null, true, false) are
// resolved case-insensitively when the field is built.
type defaultExpr struct {
	Pos lexer.Position `parser:""`

	Func   *string `parser:"  @(Ident | TypeName) '(' ')'"`
	Word   *string `parser:"| @Ident"`
	Number *string `parser:"| @Number"`
	String *string `parser:"| @String"`
	Object bool    `parser:"| @'{' '}'"`
	Array  bool    `parser:"| @'[' ']'"`
}

// relationExpr is the grammar of a relation expression:
//
//	operator target ( '.' inverse )? ( '[' ']' )? '?'?
type relationExpr struct {
	Pos lexer.Position `parser:""`

	Operator string  `parser:"@RelationOp"`
	Target   string  `parser:"@(Ident | TypeName)"`
	Inverse  *string `parser:"( '.' @(Ident | TypeName) )?"`
	Array    bool    `parser:"( @'[' ']' )?"`
	Optional bool    `parser:"@'?'?"`
}
