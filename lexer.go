package icetype

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// TokenKind classifies a token. Values follow participle's convention of
// negative token types so a Token converts directly into a lexer.Token.
type TokenKind lexer.TokenType

// Token kinds.
const (
	TokenEOF       TokenKind = TokenKind(lexer.EOF)
	TokenIdent     TokenKind = -(iota + 2) //nolint:mnd // participle convention
	TokenTypeName                          // identifier that is a type keyword
	TokenDirective                         // $partitionBy, $index, ...
	TokenNumber                            // -12, 3.5
	TokenString                            // 'x' or "x", quotes included
	TokenModifier                          // ! ? #
	TokenRelationOp                        // -> ~> <- <~
	TokenLBracket                          // [
	TokenRBracket                          // ]
	TokenLBrace                            // {
	TokenRBrace                            // }
	TokenLParen                            // (
	TokenRParen                            // )
	TokenLAngle                            // <
	TokenRAngle                            // >
	TokenComma                             // ,
	TokenColon                             // :
	TokenEquals                            // =
	TokenPipe                              // |
	TokenDot                               // .
	TokenIllegal                           // anything else, one rune at a time
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:        "EOF",
	TokenIdent:      "Ident",
	TokenTypeName:   "TypeName",
	TokenDirective:  "Directive",
	TokenNumber:     "Number",
	TokenString:     "String",
	TokenModifier:   "Modifier",
	TokenRelationOp: "RelationOp",
	TokenLBracket:   "LBracket",
	TokenRBracket:   "RBracket",
	TokenLBrace:     "LBrace",
	TokenRBrace:     "RBrace",
	TokenLParen:     "LParen",
	TokenRParen:     "RParen",
	TokenLAngle:     "LAngle",
	TokenRAngle:     "RAngle",
	TokenComma:      "Comma",
	TokenColon:      "Colon",
	TokenEquals:     "Equals",
	TokenPipe:       "Pipe",
	TokenDot:        "Dot",
	TokenIllegal:    "Illegal",
}

// String returns the symbol name of the kind.
func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}

	return "Unknown"
}

// Token is a single lexical token with its source position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  lexer.Position
}

// Line returns the 1-based line of the first character of the token.
func (t Token) Line() int { return t.Pos.Line }

// Column returns the 1-based column of the first character of the token.
func (t Token) Column() int { return t.Pos.Column }

// typeKeywords is the closed set of type names recognised as TypeName tokens.
var typeKeywords = map[string]bool{
	"string": true, "int": true, "float": true, "double": true,
	"boolean": true, "bool": true, "uuid": true, "timestamp": true,
	"timestamptz": true, "date": true, "time": true, "json": true,
	"text": true, "binary": true, "long": true, "bigint": true,
	"decimal": true, "varchar": true, "char": true, "fixed": true,
	"map": true, "list": true, "struct": true, "enum": true, "ref": true,
}

// IsTypeKeyword reports whether word names a built-in type, ignoring case.
func IsTypeKeyword(word string) bool {
	return typeKeywords[strings.ToLower(word)]
}

// Tokenize splits text into tokens. It never fails: characters that match no
// rule become Illegal tokens, and the result always ends with one EOF token.
func Tokenize(text string) []Token {
	s := newScanner(text)

	var tokens []Token

	for {
		tok := s.next()
		tokens = append(tokens, tok)

		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

// scanner is the cursor threaded through a single tokenization.
type scanner struct {
	input  string
	offset int
	line   int
	col    int
}

func newScanner(input string) *scanner {
	return &scanner{
		input: input,
		line:  1,
		col:   1,
	}
}

func (s *scanner) next() Token {
	s.skipSpace()

	start := s.pos()
	if s.eof() {
		return Token{Kind: TokenEOF, Pos: start}
	}

	r := s.peek()

	switch {
	case r == '"' || r == '\'':
		return s.scanString(start, r)
	case isDigit(r) || (r == '-' && isDigit(s.peekAt(1))):
		return s.scanNumber(start)
	case r == '$' && isIdentStart(s.peekAt(1)):
		s.advance() // $
		s.scanIdentTail()

		return s.token(TokenDirective, start)
	case isIdentStart(r):
		s.scanIdentTail()

		tok := s.token(TokenIdent, start)
		if IsTypeKeyword(tok.Text) {
			tok.Kind = TokenTypeName
		}

		return tok
	}

	if tok, ok := s.scanRelationOp(start); ok {
		return tok
	}

	s.advance()

	switch r {
	case '!', '?', '#':
		return s.token(TokenModifier, start)
	case '[':
		return s.token(TokenLBracket, start)
	case ']':
		return s.token(TokenRBracket, start)
	case '{':
		return s.token(TokenLBrace, start)
	case '}':
		return s.token(TokenRBrace, start)
	case '(':
		return s.token(TokenLParen, start)
	case ')':
		return s.token(TokenRParen, start)
	case '<':
		return s.token(TokenLAngle, start)
	case '>':
		return s.token(TokenRAngle, start)
	case ',':
		return s.token(TokenComma, start)
	case ':':
		return s.token(TokenColon, start)
	case '=':
		return s.token(TokenEquals, start)
	case '|':
		return s.token(TokenPipe, start)
	case '.':
		return s.token(TokenDot, start)
	}

	return s.token(TokenIllegal, start)
}

func (s *scanner) pos() lexer.Position {
	return lexer.Position{
		Offset: s.offset,
		Line:   s.line,
		Column: s.col,
	}
}

func (s *scanner) eof() bool {
	return s.offset >= len(s.input)
}

func (s *scanner) peek() rune {
	return s.peekAt(0)
}

// peekAt returns the rune n bytes ahead; callers only look past ASCII runes.
func (s *scanner) peekAt(n int) rune {
	off := s.offset + n
	if off >= len(s.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.input[off:])

	return r
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(s.input[s.offset:])
	s.offset += size

	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *scanner) token(kind TokenKind, start lexer.Position) Token {
	return Token{
		Kind: kind,
		Text: s.input[start.Offset:s.offset],
		Pos:  start,
	}
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.advance()
	}
}

func (s *scanner) scanIdentTail() {
	s.advance() // first char

	for !s.eof() && isIdentContinue(s.peek()) {
		s.advance()
	}
}

// scanString consumes a quoted string. An unterminated string runs to the end
// of input and is still returned as a String token.
func (s *scanner) scanString(start lexer.Position, quote rune) Token {
	s.advance() // opening quote

	for !s.eof() {
		ch := s.peek()
		if ch == '\\' && s.offset+1 < len(s.input) {
			s.advance() // backslash
			s.advance() // escaped char

			continue
		}

		s.advance()

		if ch == quote {
			break
		}
	}

	return s.token(TokenString, start)
}

func (s *scanner) scanNumber(start lexer.Position) Token {
	if s.peek() == '-' {
		s.advance()
	}

	for !s.eof() && isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // .

		for !s.eof() && isDigit(s.peek()) {
			s.advance()
		}
	}

	return s.token(TokenNumber, start)
}

var relationOps = []string{"->", "~>", "<-", "<~"}

func (s *scanner) scanRelationOp(start lexer.Position) (Token, bool) {
	for _, op := range relationOps {
		if strings.HasPrefix(s.input[s.offset:], op) {
			s.advance()
			s.advance()

			return s.token(TokenRelationOp, start), true
		}
	}

	return Token{}, false
}

// Character helpers.

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// =============================================================================
// participle lexer.Definition
// =============================================================================

// exprDefinition exposes Tokenize to participle.
type exprDefinition struct {
	symbols map[string]lexer.TokenType
}

func newExprLexer() *exprDefinition {
	symbols := make(map[string]lexer.TokenType, len(tokenKindNames))
	for kind, name := range tokenKindNames {
		symbols[name] = lexer.TokenType(kind)
	}

	return &exprDefinition{symbols: symbols}
}

// Symbols returns the mapping of symbol names to token types.
func (d *exprDefinition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

// Lex creates a new Lexer for the given reader.
//
//nolint:ireturn // Required by participle's lexer.Definition interface.
func (d *exprDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return d.LexString(filename, string(data))
}

// LexString implements lexer.StringDefinition.
//
//nolint:ireturn // Required by participle's lexer.StringDefinition interface.
func (d *exprDefinition) LexString(filename string, input string) (lexer.Lexer, error) {
	return newTokenStream(filename, Tokenize(input)), nil
}

// tokenStream replays a token slice as a participle lexer.
type tokenStream struct {
	filename string
	tokens   []Token
	next     int
}

func newTokenStream(filename string, tokens []Token) *tokenStream {
	return &tokenStream{filename: filename, tokens: tokens}
}

// Next returns the next token, repeating EOF once the stream is exhausted.
func (t *tokenStream) Next() (lexer.Token, error) {
	tok := t.tokens[len(t.tokens)-1]
	if t.next < len(t.tokens) {
		tok = t.tokens[t.next]
		t.next++
	}

	pos := tok.Pos
	pos.Filename = t.filename

	return lexer.Token{
		Type:  lexer.TokenType(tok.Kind),
		Value: tok.Text,
		Pos:   pos,
	}, nil
}
