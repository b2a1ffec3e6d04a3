package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zyla/purr/ast"
)

// lexer iterates over the source one rune at a time, tracking the line
// start so every token knows its column and indentation level.
type lexer struct {
	src       string
	pos       int
	lineStart int
	indent    int  // column of the first token on the current line, -1 until seen
	newline   bool // a line break was crossed since the previous token
	tokens    []Token
	errs      []*Error
}

// Lex splits src into raw tokens without layout markers. Lexical errors are
// collected; the offending text is skipped and lexing continues.
func Lex(src string) ([]Token, []*Error) {
	lx := &lexer{src: src, indent: -1, newline: true}
	for {
		wsStart := lx.pos
		lx.skipWhitespace()
		if lx.pos >= len(lx.src) {
			lx.tokens = append(lx.tokens, Token{
				Kind:            EOF,
				WhitespaceStart: wsStart,
				Start:           len(lx.src),
				End:             len(lx.src),
				Column:          lx.pos - lx.lineStart,
				IndentLevel:     0,
				NewlineBefore:   true,
			})
			return lx.tokens, lx.errs
		}
		tok, ok := lx.next()
		if !ok {
			continue
		}
		tok.WhitespaceStart = wsStart
		tok.Column = tok.Start - lx.lineStart
		if lx.newline || lx.indent < 0 {
			lx.indent = tok.Column
		}
		tok.IndentLevel = lx.indent
		tok.NewlineBefore = lx.newline
		lx.newline = false
		lx.tokens = append(lx.tokens, tok)
	}
}

// LexAll runs Lex followed by the layout algorithm.
func LexAll(src string) ([]Token, []*Error) {
	toks, errs := Lex(src)
	return Layout(toks), errs
}

func (lx *lexer) errorf(start, end int, format string, args ...any) {
	lx.errs = append(lx.errs, &Error{Span: ast.NewSpan(start, end), Msg: fmt.Sprintf(format, args...)})
}

func (lx *lexer) peek() rune {
	if lx.pos >= len(lx.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) peekAt(offset int) rune {
	if lx.pos+offset >= len(lx.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos+offset:])
	return r
}

func (lx *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += size
	if r == '\n' {
		lx.lineStart = lx.pos
		lx.newline = true
	}
	return r
}

func (lx *lexer) lookingAt(prefix string) bool {
	return strings.HasPrefix(lx.src[lx.pos:], prefix)
}

func (lx *lexer) skipWhitespace() {
	for lx.pos < len(lx.src) {
		switch r := lx.peek(); {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			lx.advance()
		case lx.lookingAt("{-"):
			lx.skipBlockComment()
		case lx.isLineComment():
			for lx.pos < len(lx.src) && lx.peek() != '\n' {
				lx.advance()
			}
		default:
			return
		}
	}
}

// isLineComment reports whether a run of two or more dashes starts here
// and is not part of a longer operator such as -->.
func (lx *lexer) isLineComment() bool {
	if !lx.lookingAt("--") {
		return false
	}
	i := lx.pos
	for i < len(lx.src) && lx.src[i] == '-' {
		i++
	}
	if i == len(lx.src) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(lx.src[i:])
	return !isSymbol(r)
}

func (lx *lexer) skipBlockComment() {
	start := lx.pos
	depth := 0
	for lx.pos < len(lx.src) {
		switch {
		case lx.lookingAt("{-"):
			lx.pos += 2
			depth++
		case lx.lookingAt("-}"):
			lx.pos += 2
			depth--
			if depth == 0 {
				return
			}
		default:
			lx.advance()
		}
	}
	lx.errorf(start, lx.pos, "unterminated block comment")
}

func (lx *lexer) next() (Token, bool) {
	start := lx.pos
	r := lx.peek()
	simple := func(k Kind) (Token, bool) {
		lx.advance()
		return Token{Kind: k, Start: start, End: lx.pos}, true
	}
	switch {
	case r == '(':
		return simple(LeftParen)
	case r == ')':
		return simple(RightParen)
	case r == '{':
		return simple(LeftBrace)
	case r == '}':
		return simple(RightBrace)
	case r == '[':
		return simple(LeftBracket)
	case r == ']':
		return simple(RightBracket)
	case r == ',':
		return simple(Comma)
	case r == ';':
		return simple(Semicolon)
	case r == '`':
		return simple(Backtick)
	case r == '"':
		return lx.lexString()
	case r == '\'':
		return lx.lexChar()
	case isDigit(r):
		return lx.lexNumber()
	case isIdentStart(r):
		return lx.lexIdent()
	case isSymbol(r):
		return lx.lexOperator("")
	}
	lx.advance()
	lx.errorf(start, lx.pos, "unexpected character %q", r)
	return Token{}, false
}

// lexIdent reads an identifier. Upper-case segments followed by a dot
// qualify the next segment: Data.Maybe.fromJust, Prelude.+.
func (lx *lexer) lexIdent() (Token, bool) {
	start := lx.pos
	var qual []string
	for {
		segStart := lx.pos
		for isIdentPart(lx.peek()) {
			lx.advance()
		}
		seg := lx.src[segStart:lx.pos]
		first, _ := utf8.DecodeRuneInString(seg)
		if !unicode.IsUpper(first) || lx.peek() != '.' {
			return lx.identToken(start, qual, seg), true
		}
		after := lx.peekAt(1)
		switch {
		case isIdentStart(after):
			qual = append(qual, seg)
			lx.advance() // '.'
		case isSymbol(after) && after != '.':
			qual = append(qual, seg)
			lx.advance()
			return lx.lexOperator(strings.Join(qual, "."))
		default:
			return lx.identToken(start, qual, seg), true
		}
	}
}

func (lx *lexer) identToken(start int, qual []string, text string) Token {
	tok := Token{Kind: Identifier, Text: text, Start: start, End: lx.pos}
	if len(qual) > 0 {
		tok.Qualifier = strings.Join(qual, ".")
		return tok
	}
	if k, ok := keywords[text]; ok {
		tok.Kind = k
	}
	return tok
}

func (lx *lexer) lexOperator(qualifier string) (Token, bool) {
	start := lx.pos
	for isSymbol(lx.peek()) {
		lx.advance()
	}
	text := lx.src[start:lx.pos]
	tok := Token{Kind: Operator, Text: text, Qualifier: qualifier, Start: start, End: lx.pos}
	if qualifier != "" {
		return tok, true
	}
	switch text {
	case "=":
		tok.Kind = Equal
	case "|":
		tok.Kind = Pipe
	case ":":
		tok.Kind = Colon
	case ".":
		tok.Kind = Dot
	case "->":
		tok.Kind = Arrow
	case "=>":
		tok.Kind = FatArrow
	case "::":
		tok.Kind = TypeOf
	case "<-":
		tok.Kind = Bind
	case "\\":
		tok.Kind = Backslash
	}
	return tok, true
}

func (lx *lexer) lexNumber() (Token, bool) {
	start := lx.pos
	if lx.lookingAt("0x") || lx.lookingAt("0X") {
		lx.pos += 2
		digits := lx.pos
		for isHexDigit(lx.peek()) {
			lx.advance()
		}
		n, err := strconv.ParseUint(lx.src[digits:lx.pos], 16, 64)
		if err != nil {
			lx.errorf(start, lx.pos, "invalid hexadecimal literal")
		}
		return Token{Kind: Integer, Int: n, Start: start, End: lx.pos}, true
	}
	lx.digits()
	float := false
	if lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		float = true
		lx.advance()
		lx.digits()
	}
	if r := lx.peek(); r == 'e' || r == 'E' {
		off := 1
		if s := lx.peekAt(1); s == '+' || s == '-' {
			off = 2
		}
		if isDigit(lx.peekAt(off)) {
			float = true
			lx.pos += off
			lx.digits()
		}
	}
	text := strings.ReplaceAll(lx.src[start:lx.pos], "_", "")
	tok := Token{Kind: Integer, Start: start, End: lx.pos}
	if float {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			lx.errorf(start, lx.pos, "invalid float literal %s", text)
		}
		tok.Kind = Float
		tok.Float = f
		return tok, true
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		lx.errorf(start, lx.pos, "integer literal %s out of range", text)
	}
	tok.Int = n
	return tok, true
}

func (lx *lexer) digits() {
	for r := lx.peek(); isDigit(r) || r == '_'; r = lx.peek() {
		lx.advance()
	}
}

func (lx *lexer) lexString() (Token, bool) {
	start := lx.pos
	if lx.lookingAt(`"""`) {
		lx.pos += 3
		end := strings.Index(lx.src[lx.pos:], `"""`)
		if end < 0 {
			for lx.pos < len(lx.src) {
				lx.advance()
			}
			lx.errorf(start, lx.pos, "unterminated string literal")
			return Token{Kind: String, Start: start, End: lx.pos}, true
		}
		text := lx.src[lx.pos : lx.pos+end]
		for lx.pos < start+3+end+3 {
			lx.advance()
		}
		return Token{Kind: String, Text: text, Start: start, End: lx.pos}, true
	}

	lx.advance() // opening quote
	var b strings.Builder
	for {
		r := lx.peek()
		switch r {
		case -1, '\n':
			lx.errorf(start, lx.pos, "unterminated string literal")
			return Token{Kind: String, Text: b.String(), Start: start, End: lx.pos}, true
		case '"':
			lx.advance()
			return Token{Kind: String, Text: b.String(), Start: start, End: lx.pos}, true
		case '\\':
			if e, ok := lx.escape(); ok {
				b.WriteRune(e)
			}
		default:
			b.WriteRune(lx.advance())
		}
	}
}

func (lx *lexer) lexChar() (Token, bool) {
	start := lx.pos
	lx.advance() // opening quote
	var c rune
	switch r := lx.peek(); r {
	case -1, '\n', '\'':
		lx.errorf(start, lx.pos, "empty character literal")
		return Token{Kind: Char, Start: start, End: lx.pos}, true
	case '\\':
		c, _ = lx.escape()
	default:
		c = lx.advance()
	}
	if lx.peek() != '\'' {
		lx.errorf(start, lx.pos, "unterminated character literal")
		return Token{Kind: Char, Char: c, Start: start, End: lx.pos}, true
	}
	lx.advance()
	return Token{Kind: Char, Char: c, Start: start, End: lx.pos}, true
}

// escape decodes a backslash escape sequence starting at the backslash.
func (lx *lexer) escape() (rune, bool) {
	start := lx.pos
	lx.advance() // '\'
	r := lx.peek()
	switch r {
	case 'n':
		lx.advance()
		return '\n', true
	case 't':
		lx.advance()
		return '\t', true
	case 'r':
		lx.advance()
		return '\r', true
	case '0':
		lx.advance()
		return 0, true
	case '\\', '"', '\'':
		lx.advance()
		return r, true
	case 'x':
		lx.advance()
		digits := lx.pos
		for lx.pos-digits < 6 && isHexDigit(lx.peek()) {
			lx.advance()
		}
		n, err := strconv.ParseUint(lx.src[digits:lx.pos], 16, 32)
		if err != nil || n > unicode.MaxRune {
			lx.errorf(start, lx.pos, "invalid escape sequence")
			return 0, false
		}
		return rune(n), true
	}
	if r != -1 {
		lx.advance()
	}
	lx.errorf(start, lx.pos, "invalid escape sequence")
	return 0, false
}

func isDigit(r rune) bool    { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool { return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool {
	return r == '_' || r == '\'' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSymbol(r rune) bool {
	switch r {
	case ':', '!', '#', '$', '%', '&', '*', '+', '.', '/', '<', '=', '>', '?', '@', '\\', '^', '|', '-', '~':
		return true
	}
	return r > 0x7f && (unicode.IsSymbol(r) || unicode.IsPunct(r))
}
