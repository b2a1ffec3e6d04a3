package parser

import (
	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/scanner"
)

func (p *parser) typ() ast.Type {
	start := p.peek().Start
	if p.acceptWord("forall") {
		var params []ast.TypeParam
		for !p.at(scanner.Dot) {
			params = append(params, p.typeParam())
		}
		if len(params) == 0 {
			p.failf(p.peek().Span(), "expected a type variable after forall")
		}
		p.expect(scanner.Dot)
		body := p.typ()
		return ast.At[ast.TypeKind](p.spanFrom(start), &ast.TypeForall{Params: params, Body: body})
	}
	t := p.btype()
	switch {
	case p.accept(scanner.Arrow):
		result := p.typ()
		return ast.At[ast.TypeKind](p.spanFrom(start), &ast.TypeFunc{Arg: t, Result: result})
	case p.accept(scanner.FatArrow):
		body := p.typ()
		return ast.At[ast.TypeKind](p.spanFrom(start), &ast.TypeConstrained{Constraint: t, Body: body})
	}
	return t
}

// typeParam parses x or (x :: Kind).
func (p *parser) typeParam() ast.TypeParam {
	if !p.accept(scanner.LeftParen) {
		return ast.TypeParam{Name: p.lowerName()}
	}
	param := ast.TypeParam{Name: p.lowerName()}
	p.expect(scanner.TypeOf)
	kind := p.typ()
	param.Kind = &kind
	p.expect(scanner.RightParen)
	return param
}

// typeParams parses the parameters of a data or synonym declaration.
func (p *parser) typeParams() []ast.TypeParam {
	var params []ast.TypeParam
	for {
		t := p.peek()
		kinded := t.Kind == scanner.LeftParen && isLowerName(p.peekAt(1)) && p.peekAt(2).Kind == scanner.TypeOf
		if !kinded && !isLowerName(t) {
			return params
		}
		params = append(params, p.typeParam())
	}
}

// btype parses a type application.
func (p *parser) btype() ast.Type {
	start := p.peek().Start
	t := p.atype()
	for p.canStartAType() {
		arg := p.atype()
		t = ast.At[ast.TypeKind](p.spanFrom(start), &ast.TypeApp{Func: t, Arg: arg})
	}
	return t
}

func (p *parser) canStartAType() bool {
	t := p.peek()
	switch t.Kind {
	case scanner.Identifier:
		return t.Qualifier != "" || t.Text != "forall"
	case scanner.String, scanner.Integer, scanner.LeftParen, scanner.LeftBrace:
		return true
	}
	return false
}

// atRowStart reports whether the token n positions ahead begins the inside
// of a parenthesized row: ), | or a label followed by ::.
func (p *parser) atRowStart(n int) bool {
	t := p.peekAt(n)
	switch {
	case t.Kind == scanner.RightParen, t.Kind == scanner.Pipe:
		return true
	case t.Kind == scanner.Identifier && t.Qualifier == "", t.Kind == scanner.String, t.Kind.IsKeyword():
		return p.peekAt(n+1).Kind == scanner.TypeOf
	}
	return false
}

func (p *parser) atype() ast.Type {
	t := p.peek()
	span := t.Span()
	switch t.Kind {
	case scanner.Identifier:
		p.advance()
		if t.IsUpper() {
			return ast.At[ast.TypeKind](span, &ast.TypeConstructor{Name: p.qname(t)})
		}
		if t.Qualifier != "" {
			p.failf(span, "unexpected qualified type variable %s", t.QualifiedText())
		}
		return ast.At[ast.TypeKind](span, &ast.TypeVar{Name: p.sym(t.Text)})
	case scanner.String:
		p.advance()
		return ast.At[ast.TypeKind](span, &ast.TypeString{Value: t.Text})
	case scanner.Integer:
		p.advance()
		return ast.At[ast.TypeKind](span, &ast.TypeInt{Value: t.Int})
	case scanner.LeftParen:
		p.advance()
		switch {
		case p.at(scanner.Arrow) && p.peekAt(1).Kind == scanner.RightParen:
			p.advance()
			p.advance()
			return ast.At[ast.TypeKind](p.spanFrom(t.Start), &ast.TypeArrow{})
		case p.atRowStart(0):
			row := p.row(scanner.RightParen)
			return ast.At[ast.TypeKind](p.spanFrom(t.Start), &row)
		}
		inner := p.typ()
		p.expect(scanner.RightParen)
		return inner
	case scanner.LeftBrace:
		p.advance()
		row := p.row(scanner.RightBrace)
		return ast.At[ast.TypeKind](p.spanFrom(t.Start), &ast.TypeRecord{Row: row})
	}
	p.failf(span, "unexpected %s in type", describe(t))
	return ast.Type{}
}

// row parses labels and an optional | tail up to and including closer.
func (p *parser) row(closer scanner.Kind) ast.TypeRow {
	var row ast.TypeRow
	if !p.at(scanner.Pipe) && !p.at(closer) {
		for {
			label := p.label()
			p.expect(scanner.TypeOf)
			row.Labels = append(row.Labels, ast.RowLabel{Label: label, Type: p.typ()})
			if !p.accept(scanner.Comma) {
				break
			}
		}
	}
	if p.accept(scanner.Pipe) {
		tail := p.typ()
		row.Tail = &tail
	}
	p.expect(closer)
	return row
}
