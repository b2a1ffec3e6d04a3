package parser

import (
	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/scanner"
)

func (p *parser) expr() ast.Expr {
	e := p.infixExpr()
	if p.accept(scanner.TypeOf) {
		t := p.typ()
		e = ast.At[ast.ExprKind](ast.NewSpan(e.Span.Start, p.lastEnd), &ast.Typed{Expr: e, Type: t})
	}
	return e
}

// infixExpr parses operands separated by operators. Precedence is not known
// here, so the chain is kept flat.
func (p *parser) infixExpr() ast.Expr {
	start := p.peek().Start
	first := p.prefixExpr()
	var rest []ast.InfixPart
	for {
		op, ok := p.infixOp()
		if !ok {
			break
		}
		rest = append(rest, ast.InfixPart{Op: op, Operand: p.prefixExpr()})
	}
	if rest == nil {
		return first
	}
	return ast.At[ast.ExprKind](p.spanFrom(start), &ast.Infix{First: first, Rest: rest})
}

func (p *parser) infixOp() (ast.InfixOp, bool) {
	t := p.peek()
	switch t.Kind {
	case scanner.Operator:
		p.advance()
		return ast.InfixOp{Name: p.qname(t)}, true
	case scanner.Colon:
		p.advance()
		return ast.InfixOp{Name: ast.Unqualified(p.sym(":"))}, true
	case scanner.Backtick:
		p.advance()
		id := p.peek()
		if id.Kind != scanner.Identifier {
			p.failf(id.Span(), "expected an identifier in backticks, found %s", describe(id))
		}
		e := p.atom()
		p.expect(scanner.Backtick)
		return ast.InfixOp{Backtick: &e}, true
	}
	return ast.InfixOp{}, false
}

func (p *parser) prefixExpr() ast.Expr {
	t := p.peek()
	switch t.Kind {
	case scanner.Operator:
		if t.Text == "-" && t.Qualifier == "" {
			p.advance()
			e := p.prefixExpr()
			return ast.At[ast.ExprKind](p.spanFrom(t.Start), &ast.Negate{Expr: e})
		}
	case scanner.Backslash:
		return p.lambda()
	case scanner.If:
		return p.ifExpr()
	case scanner.Case:
		return p.caseExpr()
	case scanner.Let:
		return p.letExpr()
	case scanner.Do:
		start := p.advance().Start
		items := p.doBlock()
		return ast.At[ast.ExprKind](p.spanFrom(start), &ast.Do{Items: items})
	case scanner.Ado:
		start := p.advance().Start
		items := p.doBlock()
		p.expect(scanner.In)
		result := p.expr()
		return ast.At[ast.ExprKind](p.spanFrom(start), &ast.Ado{Items: items, Result: result})
	}
	return p.appExpr()
}

func (p *parser) lambda() ast.Expr {
	start := p.expect(scanner.Backslash).Start
	var params []ast.Pat
	for !p.at(scanner.Arrow) {
		pat, err := ast.ExprToPat(p.accessorExpr())
		p.check(err)
		params = append(params, pat)
	}
	if len(params) == 0 {
		p.failf(p.peek().Span(), "expected a lambda parameter")
	}
	p.expect(scanner.Arrow)
	body := p.expr()
	return ast.At[ast.ExprKind](p.spanFrom(start), &ast.Lam{Params: params, Body: body})
}

func (p *parser) ifExpr() ast.Expr {
	start := p.expect(scanner.If).Start
	cond := p.expr()
	p.expect(scanner.Then)
	then := p.expr()
	p.expect(scanner.Else)
	els := p.expr()
	return ast.At[ast.ExprKind](p.spanFrom(start), &ast.If{Cond: cond, Then: then, Else: els})
}

func (p *parser) caseExpr() ast.Expr {
	start := p.expect(scanner.Case).Start
	scrutinees := []ast.Expr{p.expr()}
	for p.accept(scanner.Comma) {
		scrutinees = append(scrutinees, p.expr())
	}
	p.expect(scanner.Of)
	var branches []*ast.CaseBranch
	p.block(func() {
		var pats []ast.Pat
		for {
			pat, err := ast.ExprToPat(p.infixExpr())
			p.check(err)
			pats = append(pats, pat)
			if !p.accept(scanner.Comma) {
				break
			}
		}
		branches = append(branches, &ast.CaseBranch{Pats: pats, Body: p.guardedBody(scanner.Arrow)})
	})
	return ast.At[ast.ExprKind](p.spanFrom(start), &ast.Case{Scrutinees: scrutinees, Branches: branches})
}

func (p *parser) letExpr() ast.Expr {
	start := p.expect(scanner.Let).Start
	decls := p.letBlock()
	p.expect(scanner.In)
	body := p.expr()
	return ast.At[ast.ExprKind](p.spanFrom(start), &ast.Let{Decls: decls, Body: body})
}

func (p *parser) doBlock() []ast.DoItem {
	var items []ast.DoItem
	p.block(func() {
		items = append(items, p.doItem())
	})
	return items
}

func (p *parser) doItem() ast.DoItem {
	if p.at(scanner.Let) {
		start := p.advance().Start
		decls := p.letBlock()
		if !p.accept(scanner.In) {
			return &ast.DoLet{Decls: decls}
		}
		body := p.expr()
		return &ast.DoExpr{Expr: ast.At[ast.ExprKind](p.spanFrom(start), &ast.Let{Decls: decls, Body: body})}
	}
	e := p.expr()
	if !p.accept(scanner.Bind) {
		return &ast.DoExpr{Expr: e}
	}
	pat, err := ast.ExprToPat(e)
	p.check(err)
	return &ast.DoBind{Pat: pat, Expr: p.expr()}
}

func canStartAtom(k scanner.Kind) bool {
	switch k {
	case scanner.Integer, scanner.Float, scanner.String, scanner.Char, scanner.Identifier,
		scanner.LeftParen, scanner.LeftBracket, scanner.LeftBrace:
		return true
	}
	return false
}

// startsBlockArgument reports whether k begins an expression that may be
// passed as the last argument without parentheses.
func startsBlockArgument(k scanner.Kind) bool {
	switch k {
	case scanner.Backslash, scanner.If, scanner.Case, scanner.Let, scanner.Do, scanner.Ado:
		return true
	}
	return false
}

// appExpr parses a function application. A braced argument is a record
// update when one of its fields uses =, or when it directly follows another
// update and every field has a value; otherwise it is a record literal.
func (p *parser) appExpr() ast.Expr {
	start := p.peek().Start
	head := p.accessorExpr()
	var args []ast.Expr
	suffixes, lastSuffix := 0, false
	for {
		k := p.peek().Kind
		if k == scanner.LeftBrace {
			arg, isSuffix := p.braceArgument(lastSuffix)
			args = append(args, arg)
			lastSuffix = isSuffix
			if isSuffix {
				suffixes++
			}
			continue
		}
		lastSuffix = false
		if canStartAtom(k) {
			args = append(args, p.accessorExpr())
			continue
		}
		if startsBlockArgument(k) {
			args = append(args, p.prefixExpr())
		}
		break
	}
	if len(args) == 0 {
		return head
	}

	span := p.spanFrom(start)
	if suffixes > 0 {
		app := ast.ApplyRecordUpdates(head, args).(*ast.App)
		if len(app.Args) == 0 {
			return ast.At[ast.ExprKind](span, app.Func.Value)
		}
		// The head was not wrapped in an update, so it keeps its shape.
		if inner, ok := app.Func.Value.(*ast.App); ok {
			inner.Args = append(inner.Args, app.Args...)
			return ast.At[ast.ExprKind](span, inner)
		}
		return ast.At[ast.ExprKind](span, app)
	}
	e := head
	for _, arg := range args {
		e = ast.At(span, ast.NormalizeApp(e, arg))
	}
	return e
}

type recordField struct {
	label ast.Symbol
	span  ast.Span
	sep   scanner.Kind // Equal, Colon or EOF for a pun
	value ast.Expr
}

func (p *parser) recordFields() []recordField {
	var fields []recordField
	if p.at(scanner.RightBrace) {
		return fields
	}
	for {
		lt := p.peek()
		f := recordField{label: p.label(), span: lt.Span(), sep: scanner.EOF}
		if p.at(scanner.Colon) || p.at(scanner.Equal) {
			f.sep = p.advance().Kind
			f.value = p.expr()
		}
		fields = append(fields, f)
		if !p.accept(scanner.Comma) {
			return fields
		}
	}
}

// label accepts a record label: an identifier, a keyword or a string.
func (p *parser) label() ast.Symbol {
	t := p.peek()
	switch {
	case t.Kind == scanner.Identifier && t.Qualifier == "", t.Kind == scanner.String, t.Kind.IsKeyword():
		p.advance()
		return p.sym(t.Text)
	}
	p.failf(t.Span(), "expected a label, found %s", describe(t))
	return ast.Symbol{}
}

func (p *parser) braceArgument(afterSuffix bool) (ast.Expr, bool) {
	start := p.expect(scanner.LeftBrace).Start
	fields := p.recordFields()
	p.expect(scanner.RightBrace)
	span := p.spanFrom(start)

	explicit, assigns := len(fields) > 0, false
	for _, f := range fields {
		switch f.sep {
		case scanner.Equal:
			assigns = true
		case scanner.EOF:
			explicit = false
		}
	}
	suffix := assigns || (afterSuffix && explicit)
	if !suffix {
		return p.objectLiteral(span, fields), false
	}
	updates := make([]ast.FieldUpdate, len(fields))
	for i, f := range fields {
		if f.sep == scanner.EOF {
			p.failf(f.span, "record update field %s needs a value", f.label)
		}
		updates[i] = ast.FieldUpdate{Label: f.label, Value: f.value}
	}
	return ast.At[ast.ExprKind](span, &ast.RecordUpdateSuffix{Fields: updates}), true
}

func (p *parser) objectLiteral(span ast.Span, fields []recordField) ast.Expr {
	lit := ast.ObjectLit[ast.Expr]{Fields: make([]ast.Field[ast.Expr], len(fields))}
	for i, f := range fields {
		value := f.value
		switch f.sep {
		case scanner.Equal:
			p.failf(f.span, "unexpected = in record literal")
		case scanner.EOF:
			value = ast.At[ast.ExprKind](f.span, &ast.Var{Name: ast.Unqualified(f.label)})
		}
		lit.Fields[i] = ast.Field[ast.Expr]{Label: f.label, Value: value}
	}
	return ast.At[ast.ExprKind](span, &ast.LiteralExpr{Lit: lit})
}

func (p *parser) accessorExpr() ast.Expr {
	e := p.atom()
	for p.accept(scanner.Dot) {
		field := p.label()
		e = ast.At[ast.ExprKind](ast.NewSpan(e.Span.Start, p.lastEnd), &ast.Accessor{Expr: e, Field: field})
	}
	return e
}

func (p *parser) literal(span ast.Span, lit ast.Literal[ast.Expr]) ast.Expr {
	return ast.At[ast.ExprKind](span, &ast.LiteralExpr{Lit: lit})
}

func (p *parser) atom() ast.Expr {
	t := p.peek()
	span := t.Span()
	switch t.Kind {
	case scanner.Integer:
		p.advance()
		return p.literal(span, ast.IntLit{Value: t.Int})
	case scanner.Float:
		p.advance()
		return p.literal(span, ast.FloatLit{Value: t.Float})
	case scanner.String:
		p.advance()
		return p.literal(span, ast.StringLit{Value: t.Text})
	case scanner.Char:
		p.advance()
		return p.literal(span, ast.CharLit{Value: t.Char})
	case scanner.Identifier:
		p.advance()
		if t.Qualifier == "" {
			switch t.Text {
			case "true", "false":
				return p.literal(span, ast.BoolLit{Value: t.Text == "true"})
			case "_":
				return ast.At[ast.ExprKind](span, &ast.Wildcard{})
			}
		}
		if t.IsUpper() {
			return ast.At[ast.ExprKind](span, &ast.DataConstructor{Name: p.qname(t)})
		}
		if at := p.peek(); t.Qualifier == "" && at.Kind == scanner.Operator && at.Text == "@" &&
			at.Qualifier == "" && at.Start == t.End {
			p.advance()
			inner := p.atom()
			return ast.At[ast.ExprKind](p.spanFrom(t.Start), &ast.NamedPat{Name: p.sym(t.Text), Expr: inner})
		}
		return ast.At[ast.ExprKind](span, &ast.Var{Name: p.qname(t)})
	case scanner.LeftParen:
		p.advance()
		if op := p.peek(); (op.Kind == scanner.Operator || op.Kind == scanner.Colon) && p.peekAt(1).Kind == scanner.RightParen {
			p.advance()
			p.advance()
			name := ast.Unqualified(p.sym(":"))
			if op.Kind == scanner.Operator {
				name = p.qname(op)
			}
			return ast.At[ast.ExprKind](p.spanFrom(t.Start), &ast.Operator{Name: name})
		}
		e := p.expr()
		p.expect(scanner.RightParen)
		return e
	case scanner.LeftBracket:
		p.advance()
		lit := ast.ArrayLit[ast.Expr]{}
		if !p.at(scanner.RightBracket) {
			for {
				lit.Elems = append(lit.Elems, p.expr())
				if !p.accept(scanner.Comma) {
					break
				}
			}
		}
		p.expect(scanner.RightBracket)
		return p.literal(p.spanFrom(t.Start), lit)
	case scanner.LeftBrace:
		p.advance()
		fields := p.recordFields()
		p.expect(scanner.RightBrace)
		return p.objectLiteral(p.spanFrom(t.Start), fields)
	}
	p.failf(span, "unexpected %s in expression", describe(t))
	return ast.Expr{}
}
