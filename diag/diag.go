// Package diag turns positioned errors into line/column diagnostics and
// renders them with the offending source line.
package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zyla/purr/ast"
)

// Source is one named source text with a line index.
type Source struct {
	Name  string
	Text  string
	lines []int // byte offset of each line start
}

// NewSource indexes text for line lookups.
func NewSource(name, text string) *Source {
	s := &Source{Name: name, Text: text, lines: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}
	return s
}

// Position maps a byte offset to a 1-based line and a 1-based column
// counted in runes. Offsets past the end clamp to the end.
func (s *Source) Position(offset int) (line, col int) {
	offset = max(0, min(offset, len(s.Text)))
	i := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > offset }) - 1
	return i + 1, utf8.RuneCountInString(s.Text[s.lines[i]:offset]) + 1
}

// Line returns the text of the 1-based line n without its newline.
func (s *Source) Line(n int) string {
	if n < 1 || n > len(s.lines) {
		return ""
	}
	start := s.lines[n-1]
	end := len(s.Text)
	if n < len(s.lines) {
		end = s.lines[n] - 1
	}
	return strings.TrimSuffix(s.Text[start:end], "\r")
}

// Positioned is implemented by every error carrying a source span.
type Positioned interface {
	error
	Pos() ast.Span
}

// Diagnostic is one error message, positioned when Span is known.
type Diagnostic struct {
	File      string
	Span      ast.Span
	HasPos    bool
	Line, Col int
	Msg       string
}

func (d Diagnostic) String() string {
	if !d.HasPos {
		return fmt.Sprintf("%s: %s", d.File, d.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Col, d.Msg)
}

// Collect flattens err into diagnostics against src. Joined errors and
// error lists are expanded. An error positioned only through wrapping keeps
// its full message but no position, since its span may belong to another
// source.
func Collect(src *Source, err error) []Diagnostic {
	var out []Diagnostic
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if p, ok := err.(Positioned); ok {
			out = append(out, At(src, p.Pos(), p.Error()))
			return
		}
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range multi.Unwrap() {
				walk(e)
			}
			return
		}
		out = append(out, Diagnostic{File: src.Name, Msg: err.Error()})
	}
	walk(err)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HasPos != out[j].HasPos {
			return out[i].HasPos
		}
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}

// At builds a positioned diagnostic.
func At(src *Source, span ast.Span, msg string) Diagnostic {
	line, col := src.Position(span.Start)
	return Diagnostic{File: src.Name, Span: span, HasPos: true, Line: line, Col: col, Msg: msg}
}

const (
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiReset = "\033[0m"
)

// Formatter renders diagnostics as "file:line:col: error: msg" followed by
// the source line and a caret underline.
type Formatter struct {
	Color bool
}

func (f Formatter) paint(code, s string) string {
	if !f.Color {
		return s
	}
	return code + s + ansiReset
}

// Format writes d to w. src supplies the source line and may be nil.
func (f Formatter) Format(w io.Writer, src *Source, d Diagnostic) {
	loc := d.File
	if d.HasPos {
		loc = fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Col)
	}
	fmt.Fprintf(w, "%s: %s %s\n", f.paint(ansiBold, loc), f.paint(ansiRed, "error:"), d.Msg)
	if !d.HasPos || src == nil {
		return
	}
	text := src.Line(d.Line)
	fmt.Fprintf(w, "  %s\n", text)

	// Underline up to the end of the first line of the span.
	width := 1
	if endLine, endCol := src.Position(d.Span.End); endLine == d.Line && endCol > d.Col {
		width = endCol - d.Col
	} else if endLine > d.Line {
		width = max(1, utf8.RuneCountInString(text)-d.Col+1)
	}
	pad := strings.Map(func(r rune) rune {
		if r == '\t' {
			return '\t'
		}
		return ' '
	}, prefixRunes(text, d.Col-1))
	fmt.Fprintf(w, "  %s%s\n", pad, f.paint(ansiCyan, strings.Repeat("^", width)))
}

// FormatAll writes every diagnostic and returns how many were written.
func (f Formatter) FormatAll(w io.Writer, src *Source, ds []Diagnostic) int {
	for _, d := range ds {
		f.Format(w, src, d)
	}
	return len(ds)
}

func prefixRunes(s string, n int) string {
	i := 0
	for n > 0 && i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n--
	}
	return s[:i]
}
