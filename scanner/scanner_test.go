package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// render shows a token stream with layout markers as { ; }.
func render(src string, toks []Token) string {
	var parts []string
	for _, t := range toks {
		switch t.Kind {
		case EOF:
		case LayoutStart:
			parts = append(parts, "{")
		case LayoutSep:
			parts = append(parts, ";")
		case LayoutEnd:
			parts = append(parts, "}")
		default:
			parts = append(parts, src[t.Start:t.End])
		}
	}
	return strings.Join(parts, " ")
}

func lexOK(t *testing.T, src string) []Token {
	t.Helper()
	toks, errs := Lex(src)
	require.Empty(t, errs)
	return toks
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexQualified(t *testing.T) {
	toks := lexOK(t, "Data.Maybe.fromJust Prelude.+ Maybe")
	require.Len(t, toks, 4)

	assert.Equal(t, Identifier, toks[0].Kind)
	assert.Equal(t, "Data.Maybe", toks[0].Qualifier)
	assert.Equal(t, "fromJust", toks[0].Text)

	assert.Equal(t, Operator, toks[1].Kind)
	assert.Equal(t, "Prelude", toks[1].Qualifier)
	assert.Equal(t, "+", toks[1].Text)

	assert.Equal(t, "", toks[2].Qualifier)
	assert.True(t, toks[2].IsUpper())
}

func TestLexOperators(t *testing.T) {
	toks := lexOK(t, `= | : . -> => :: <- \ <= @ .. <$>`)
	assert.Equal(t, []Kind{
		Equal, Pipe, Colon, Dot, Arrow, FatArrow, TypeOf, Bind, Backslash,
		Operator, Operator, Operator, Operator, EOF,
	}, kinds(toks))
	assert.Equal(t, "<$>", toks[12].Text)
}

func TestLexKeywords(t *testing.T) {
	toks := lexOK(t, "if then else case of where let in do ado forall as hiding")
	assert.Equal(t, []Kind{
		If, Then, Else, Case, Of, Where, Let, In, Do, Ado,
		Identifier, Identifier, Identifier, EOF,
	}, kinds(toks))
	assert.True(t, Where.IsKeyword())
	assert.False(t, Identifier.IsKeyword())
}

func TestLexLiterals(t *testing.T) {
	toks := lexOK(t, `123 1.5 2e3 0xff "a\nb" 'c' '\'' """raw\n"""`)
	require.Len(t, toks, 9)
	assert.Equal(t, uint64(123), toks[0].Int)
	assert.Equal(t, Float, toks[1].Kind)
	assert.InDelta(t, 1.5, toks[1].Float, 1e-9)
	assert.InDelta(t, 2000.0, toks[2].Float, 1e-9)
	assert.Equal(t, uint64(255), toks[3].Int)
	assert.Equal(t, "a\nb", toks[4].Text)
	assert.Equal(t, 'c', toks[5].Char)
	assert.Equal(t, '\'', toks[6].Char)
	assert.Equal(t, `raw\n`, toks[7].Text)
}

func TestLexComments(t *testing.T) {
	src := "x -- comment\ny {- nested {- c -} -} z a --> b"
	toks := lexOK(t, src)
	assert.Equal(t, "x y z a --> b", render(src, toks))
	assert.True(t, toks[1].NewlineBefore)
	assert.False(t, toks[2].NewlineBefore)
}

func TestLexPositions(t *testing.T) {
	toks := lexOK(t, "foo\n  bar baz")
	bar, baz := toks[1], toks[2]
	assert.Equal(t, 2, bar.Column)
	assert.Equal(t, 2, bar.IndentLevel)
	assert.True(t, bar.NewlineBefore)
	assert.Equal(t, 3, bar.WhitespaceStart)
	assert.Equal(t, 6, bar.Start)

	assert.Equal(t, 6, baz.Column)
	assert.Equal(t, 2, baz.IndentLevel)
	assert.False(t, baz.NewlineBefore)
}

func TestLexErrors(t *testing.T) {
	src := "x \x01 y \"open"
	toks, errs := Lex(src)
	require.Len(t, errs, 2)
	assert.Equal(t, `unexpected character '\x01'`, errs[0].Msg)
	assert.Equal(t, "unterminated string literal", errs[1].Msg)
	assert.Equal(t, 2, errs[0].Span.Start)
	assert.Equal(t, []Kind{Identifier, Identifier, String, EOF}, kinds(toks))
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"module", "module Foo where\nx = 1\ny = 2\n", "module Foo where { x = 1 ; y = 2 }"},
		{"let in", "let x = 1 in x", "let { x = 1 } in x"},
		{"do with let", "do\n  x <- f\n  let y = 1\n  pure y", "do { x <- f ; let { y = 1 } ; pure y }"},
		{"empty where at eof", "class Foo a where\n", "class Foo a where { }"},
		{"empty where", "module T where\nclass Foo a where\nx = 1", "module T where { class Foo a where { } ; x = 1 }"},
		{"then else close blocks", "if a then do x else y", "if a then do { x } else y"},
		{"paren closes block", "f (do x) y", "f ( do { x } ) y"},
		{"comma closes block", "[do x, y]", "[ do { x } , y ]"},
		{"case", "case x of\n  A -> 1\n  B -> 2", "case x of { A -> 1 ; B -> 2 }"},
		{"let on own lines", "let\n    x = 1\n    y = 2\nin x", "let { x = 1 ; y = 2 } in x"},
		{"nested let", "let a = let\n          b = 1\n        in b\nin a", "let { a = let { b = 1 } in b } in a"},
		{"indented where", "module A\n  where\nimport B", "module A where { import B }"},
		{"continuation line", "module T where\nf x =\n  x\ng = 1", "module T where { f x = x ; g = 1 }"},
		{
			"instance chain",
			"module T where\ninstance Foo Int where\n  x = 1\nelse instance Foo a where\n  x = 2",
			"module T where { instance Foo Int where { x = 1 } ; else instance Foo a where { x = 2 } }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, errs := LexAll(tt.src)
			require.Empty(t, errs)
			assert.Equal(t, tt.want, render(tt.src, toks))
			assert.Equal(t, EOF, toks[len(toks)-1].Kind)
		})
	}
}

func TestLayoutBalanced(t *testing.T) {
	src := "module T where\nf = do\n  x <- case y of\n    A -> let z = 1 in z\n  pure (do q)\n"
	toks, errs := LexAll(src)
	require.Empty(t, errs)
	depth := 0
	for _, tok := range toks {
		switch tok.Kind {
		case LayoutStart:
			depth++
		case LayoutEnd:
			depth--
			require.GreaterOrEqual(t, depth, 0)
		}
	}
	assert.Zero(t, depth)
}
