// Package parser builds the raw AST from a laid-out token stream. The
// grammar is recursive descent; ambiguities it cannot decide locally
// (expression or pattern, argument or record update, constraint or class
// head) are settled by the normalization functions in package ast.
package parser

import (
	"errors"
	"fmt"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/scanner"
)

// Error is a syntax error at a source span.
type Error struct {
	Span ast.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Pos returns the span the error points at.
func (e *Error) Pos() ast.Span { return e.Span }

// Result is the outcome of parsing one unit. Errors lists problems the
// parser recovered from; Err is set when parsing could not finish, in which
// case Value is the zero value.
type Result[T any] struct {
	Errors []*Error
	Value  T
	Err    error
}

// OK reports whether parsing finished without any error.
func (r Result[T]) OK() bool { return r.Err == nil && len(r.Errors) == 0 }

// bailout unwinds the parser to the nearest recovery point.
type bailout struct{ err *Error }

type parser struct {
	ctx     *ast.Context
	toks    []scanner.Token
	pos     int
	lastEnd int // end of the last consumed source token
	errors  []*Error
}

func newParser(ctx *ast.Context, src string) *parser {
	toks, lexErrs := scanner.LexAll(src)
	p := &parser{ctx: ctx, toks: toks}
	for _, e := range lexErrs {
		p.errors = append(p.errors, &Error{Span: e.Span, Msg: e.Msg})
	}
	return p
}

// ParseModule parses a complete source file.
func ParseModule(ctx *ast.Context, src string) Result[*ast.Module] {
	p := newParser(ctx, src)
	m, err := run(func() *ast.Module {
		m := p.module()
		m.Span = ast.NewSpan(0, len(src))
		return m
	})
	if err == nil {
		if cerr := ast.CheckModule(m); cerr != nil {
			m, err = nil, pseudoError(cerr)
		}
	}
	return Result[*ast.Module]{Errors: p.errors, Value: m, Err: err}
}

// ParseType parses a single type.
func ParseType(ctx *ast.Context, src string) Result[ast.Type] {
	p := newParser(ctx, src)
	t, err := run(func() ast.Type {
		t := p.typ()
		p.expect(scanner.EOF)
		return t
	})
	return Result[ast.Type]{Errors: p.errors, Value: t, Err: err}
}

// ParseExpr parses a single expression.
func ParseExpr(ctx *ast.Context, src string) Result[ast.Expr] {
	p := newParser(ctx, src)
	e, err := run(func() ast.Expr {
		e := p.expr()
		p.expect(scanner.EOF)
		return e
	})
	if err == nil {
		ast.WalkExpr(e, func(sub ast.Expr) bool {
			if ast.IsPseudo(sub.Value) {
				err = pseudoError(&ast.PseudoExprError{Expr: sub})
				return true
			}
			return false
		})
		if err != nil {
			e = ast.Expr{}
		}
	}
	return Result[ast.Expr]{Errors: p.errors, Value: e, Err: err}
}

func pseudoError(err error) error {
	var perr *ast.PseudoExprError
	if !errors.As(err, &perr) {
		return err
	}
	if _, named := perr.Expr.Value.(*ast.NamedPat); named {
		return &Error{Span: perr.Expr.Span, Msg: "named pattern outside of a pattern"}
	}
	return &Error{Span: perr.Expr.Span, Msg: "record update outside of an application"}
}

// run calls fn, turning a bailout into a fatal error.
func run[T any](fn func() T) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			var zero T
			v, err = zero, b.err
		}
	}()
	return fn(), nil
}

// tryItem runs fn as one item of a block. A syntax error inside it is
// recorded and the parser skips to the next item of the same block.
func (p *parser) tryItem(fn func()) (ok bool) {
	start := p.pos
	defer func() {
		if r := recover(); r != nil {
			b, isBailout := r.(bailout)
			if !isBailout {
				panic(r)
			}
			p.errors = append(p.errors, b.err)
			p.skipItem(start)
			ok = false
		}
	}()
	fn()
	return true
}

// skipItem rewinds to start and skips tokens up to the separator or end of
// the block that start belongs to.
func (p *parser) skipItem(start int) {
	p.pos = start
	depth := 0
	for first := true; ; first = false {
		switch p.peek().Kind {
		case scanner.EOF:
			return
		case scanner.LayoutStart:
			depth++
		case scanner.LayoutEnd:
			if depth == 0 {
				return
			}
			depth--
		case scanner.LayoutSep:
			if depth == 0 && !first {
				return
			}
		}
		p.advance()
	}
}

func (p *parser) peek() scanner.Token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) scanner.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) at(k scanner.Kind) bool { return p.peek().Kind == k }

func (p *parser) advance() scanner.Token {
	t := p.toks[p.pos]
	if t.Kind != scanner.EOF {
		p.pos++
	}
	if !t.Kind.IsLayout() && t.Kind != scanner.EOF {
		p.lastEnd = t.End
	}
	return t
}

func (p *parser) accept(k scanner.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// acceptOp consumes an unqualified operator token with the given text.
func (p *parser) acceptOp(text string) bool {
	t := p.peek()
	if t.Kind == scanner.Operator && t.Qualifier == "" && t.Text == text {
		p.advance()
		return true
	}
	return false
}

// acceptWord consumes an unqualified identifier with the given text, for
// contextual keywords such as as, hiding and forall.
func (p *parser) acceptWord(text string) bool {
	t := p.peek()
	if t.Kind == scanner.Identifier && t.Qualifier == "" && t.Text == text {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(k scanner.Kind) scanner.Token {
	if !p.at(k) {
		p.failf(p.peek().Span(), "expected %s, found %s", k, describe(p.peek()))
	}
	return p.advance()
}

func describe(t scanner.Token) string {
	switch t.Kind {
	case scanner.Identifier, scanner.Operator:
		return fmt.Sprintf("%q", t.QualifiedText())
	}
	return t.Kind.String()
}

func (p *parser) failf(span ast.Span, format string, args ...any) {
	panic(bailout{&Error{Span: span, Msg: fmt.Sprintf(format, args...)}})
}

// check turns a normalization failure into a syntax error.
func (p *parser) check(err error) {
	if err == nil {
		return
	}
	if nerr, ok := err.(*ast.NormalizeError); ok {
		panic(bailout{&Error{Span: nerr.Span, Msg: nerr.Msg}})
	}
	p.failf(p.peek().Span(), "%v", err)
}

func (p *parser) spanFrom(start int) ast.Span { return ast.NewSpan(start, p.lastEnd) }

func (p *parser) sym(text string) ast.Symbol { return p.ctx.Intern(text) }

// qname interns a possibly qualified identifier or operator token.
func (p *parser) qname(t scanner.Token) ast.QualifiedName {
	q := ast.QualifiedName{Name: p.ctx.Intern(t.Text)}
	if t.Qualifier != "" {
		q.Qualifier = p.ctx.Intern(t.Qualifier)
	}
	return q
}

// block parses LayoutStart item (LayoutSep item)* LayoutEnd. Stray
// separators before the end are tolerated.
func (p *parser) block(item func()) {
	p.expect(scanner.LayoutStart)
	for !p.at(scanner.LayoutEnd) && !p.at(scanner.EOF) {
		item()
		if !p.accept(scanner.LayoutSep) && !p.accept(scanner.Semicolon) {
			break
		}
	}
	p.expect(scanner.LayoutEnd)
}

// recoveringBlock is block with per-item error recovery.
func (p *parser) recoveringBlock(item func()) {
	p.expect(scanner.LayoutStart)
	for !p.at(scanner.LayoutEnd) && !p.at(scanner.EOF) {
		p.tryItem(item)
		if !p.accept(scanner.LayoutSep) && !p.accept(scanner.Semicolon) {
			break
		}
	}
	if !p.at(scanner.LayoutEnd) {
		p.errors = append(p.errors, &Error{
			Span: p.peek().Span(),
			Msg:  fmt.Sprintf("unexpected %s at end of block", describe(p.peek())),
		})
		p.skipToBlockEnd()
	}
	p.expect(scanner.LayoutEnd)
}

func (p *parser) skipToBlockEnd() {
	depth := 0
	for !p.at(scanner.EOF) {
		switch p.peek().Kind {
		case scanner.LayoutStart:
			depth++
		case scanner.LayoutEnd:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}
