// Package scanner turns source text into a positioned token stream. Layout
// markers (LayoutStart, LayoutSep, LayoutEnd) are inserted from indentation
// so the parser can treat blocks like explicitly delimited groups.
package scanner

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/zyla/purr/ast"
)

// Kind is the lexical class of a token.
type Kind int

const (
	EOF Kind = iota

	Integer
	Float
	String
	Char
	Identifier // lower- or upper-case, possibly qualified

	LayoutStart
	LayoutSep
	LayoutEnd

	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Backtick
	Backslash
	Equal
	Pipe
	Comma
	Colon
	Semicolon
	Dot

	Arrow    // ->
	FatArrow // =>
	TypeOf   // ::
	Bind     // <-

	Operator

	keywordStart
	If
	Then
	Else
	Ado
	Do
	Let
	In
	Where
	Case
	Of
	Module
	Import
	Class
	Instance
	Data
	Type
	Newtype
	Foreign
	Derive
	keywordEnd
)

var kindNames = [...]string{
	EOF:          "end of input",
	Integer:      "integer literal",
	Float:        "float literal",
	String:       "string literal",
	Char:         "char literal",
	Identifier:   "identifier",
	LayoutStart:  "block start",
	LayoutSep:    "block separator",
	LayoutEnd:    "block end",
	LeftParen:    "'('",
	RightParen:   "')'",
	LeftBrace:    "'{'",
	RightBrace:   "'}'",
	LeftBracket:  "'['",
	RightBracket: "']'",
	Backtick:     "'`'",
	Backslash:    "'\\'",
	Equal:        "'='",
	Pipe:         "'|'",
	Comma:        "','",
	Colon:        "':'",
	Semicolon:    "';'",
	Dot:          "'.'",
	Arrow:        "'->'",
	FatArrow:     "'=>'",
	TypeOf:       "'::'",
	Bind:         "'<-'",
	Operator:     "operator",
	If:           "if",
	Then:         "then",
	Else:         "else",
	Ado:          "ado",
	Do:           "do",
	Let:          "let",
	In:           "in",
	Where:        "where",
	Case:         "case",
	Of:           "of",
	Module:       "module",
	Import:       "import",
	Class:        "class",
	Instance:     "instance",
	Data:         "data",
	Type:         "type",
	Newtype:      "newtype",
	Foreign:      "foreign",
	Derive:       "derive",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k > keywordStart && k < keywordEnd }

// IsLayout reports whether k is a synthetic layout marker.
func (k Kind) IsLayout() bool { return k == LayoutStart || k == LayoutSep || k == LayoutEnd }

var keywords map[string]Kind

func init() {
	keywords = make(map[string]Kind, keywordEnd-keywordStart)
	for k := keywordStart + 1; k < keywordEnd; k++ {
		keywords[kindNames[k]] = k
	}
}

// Token is one lexeme with its position. Literal tokens carry their decoded
// value in Int, Float, Char or Text.
type Token struct {
	Kind      Kind
	Text      string // identifier or operator text, decoded string literal
	Qualifier string // "Data.Maybe" for Data.Maybe.fromJust
	Int       uint64
	Float     float64
	Char      rune

	WhitespaceStart int // where the whitespace preceding the token starts
	Start           int
	End             int
	IndentLevel     int // column of the first token on the token's line
	Column          int // zero-based byte offset since line start
	NewlineBefore   bool
}

// Span returns the source range of the token itself.
func (t Token) Span() ast.Span { return ast.NewSpan(t.Start, t.End) }

// QualifiedText returns the token text with its qualifier, as written.
func (t Token) QualifiedText() string {
	if t.Qualifier == "" {
		return t.Text
	}
	return t.Qualifier + "." + t.Text
}

// IsUpper reports whether an identifier token starts with an upper-case
// letter (a constructor, type or module name).
func (t Token) IsUpper() bool {
	if t.Kind != Identifier {
		return false
	}
	r, _ := utf8.DecodeRuneInString(t.Text)
	return unicode.IsUpper(r)
}

func (t Token) String() string {
	switch t.Kind {
	case Identifier, Operator:
		return fmt.Sprintf("%s %q", t.Kind, t.QualifiedText())
	case Integer:
		return fmt.Sprintf("%s %d", t.Kind, t.Int)
	case Float:
		return fmt.Sprintf("%s %g", t.Kind, t.Float)
	case String:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	case Char:
		return fmt.Sprintf("%s %q", t.Kind, t.Char)
	}
	return t.Kind.String()
}

// Error is a lexical error.
type Error struct {
	Span ast.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Pos returns the span of the offending text.
func (e *Error) Pos() ast.Span { return e.Span }
