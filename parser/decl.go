package parser

import (
	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/scanner"
)

func (p *parser) module() *ast.Module {
	p.expect(scanner.Module)
	m := &ast.Module{Name: p.moduleName()}
	if p.at(scanner.LeftParen) {
		m.Exports = p.itemList()
	}
	p.expect(scanner.Where)
	p.recoveringBlock(func() {
		if p.at(scanner.Import) {
			if len(m.Decls) > 0 {
				p.failf(p.peek().Span(), "imports must come before declarations")
			}
			m.Imports = append(m.Imports, p.importDecl())
			return
		}
		m.Decls = append(m.Decls, p.topDecl())
	})
	p.expect(scanner.EOF)
	return m
}

func (p *parser) moduleName() ast.Symbol {
	t := p.peek()
	if !t.IsUpper() {
		p.failf(t.Span(), "expected module name, found %s", describe(t))
	}
	p.advance()
	return p.sym(t.QualifiedText())
}

// upperName accepts an unqualified capitalized identifier.
func (p *parser) upperName() ast.Symbol {
	t := p.peek()
	if !t.IsUpper() || t.Qualifier != "" {
		p.failf(t.Span(), "expected a proper name, found %s", describe(t))
	}
	p.advance()
	return p.sym(t.Text)
}

func isLowerName(t scanner.Token) bool {
	return t.Kind == scanner.Identifier && t.Qualifier == "" && !t.IsUpper()
}

func (p *parser) lowerName() ast.Symbol {
	t := p.peek()
	if !isLowerName(t) {
		p.failf(t.Span(), "expected an identifier, found %s", describe(t))
	}
	p.advance()
	return p.sym(t.Text)
}

func (p *parser) operatorName() ast.Symbol {
	t := p.peek()
	switch {
	case t.Kind == scanner.Operator && t.Qualifier == "":
	case t.Kind == scanner.Colon:
		t.Text = ":"
	default:
		p.failf(t.Span(), "expected an operator, found %s", describe(t))
	}
	p.advance()
	return p.sym(t.Text)
}

// itemList parses a parenthesized export or import list.
func (p *parser) itemList() []ast.Item {
	p.expect(scanner.LeftParen)
	items := []ast.Item{}
	if p.accept(scanner.RightParen) {
		return items
	}
	for {
		items = append(items, p.item())
		if !p.accept(scanner.Comma) {
			break
		}
	}
	p.expect(scanner.RightParen)
	return items
}

func (p *parser) item() ast.Item {
	start := p.peek().Start
	var it ast.Item
	switch t := p.peek(); {
	case p.accept(scanner.Class):
		it = ast.Item{Kind: ast.ItemClass, Name: p.upperName()}
	case p.accept(scanner.Module):
		it = ast.Item{Kind: ast.ItemModule, Name: p.moduleName()}
	case p.accept(scanner.Type):
		p.expect(scanner.LeftParen)
		it = ast.Item{Kind: ast.ItemTypeOp, Name: p.operatorName()}
		p.expect(scanner.RightParen)
	case p.accept(scanner.LeftParen):
		it = ast.Item{Kind: ast.ItemValueOp, Name: p.operatorName()}
		p.expect(scanner.RightParen)
	case t.IsUpper():
		it = ast.Item{Kind: ast.ItemType, Name: p.upperName()}
		if p.accept(scanner.LeftParen) {
			switch {
			case p.acceptOp(".."):
				it.AllMembers = true
			default:
				it.Members = []ast.Symbol{}
				for !p.at(scanner.RightParen) {
					it.Members = append(it.Members, p.upperName())
					if !p.accept(scanner.Comma) {
						break
					}
				}
			}
			p.expect(scanner.RightParen)
		}
	case isLowerName(t):
		it = ast.Item{Kind: ast.ItemValue, Name: p.lowerName()}
	default:
		p.failf(t.Span(), "expected an import or export item, found %s", describe(t))
	}
	it.Span = p.spanFrom(start)
	return it
}

func (p *parser) importDecl() *ast.Import {
	start := p.expect(scanner.Import).Start
	imp := &ast.Import{Module: p.moduleName()}
	if p.acceptWord("hiding") {
		imp.Hiding = true
		imp.Explicit = true
		imp.Items = p.itemList()
	} else if p.at(scanner.LeftParen) {
		imp.Explicit = true
		imp.Items = p.itemList()
	}
	if p.acceptWord("as") {
		imp.Alias = p.moduleName()
	}
	imp.Span = p.spanFrom(start)
	return imp
}

func (p *parser) topDecl() ast.Decl {
	start := p.peek().Start
	var kind ast.DeclKind
	switch p.peek().Kind {
	case scanner.Type:
		kind = p.typeSynonym()
	case scanner.Data:
		kind = p.dataDecl()
	case scanner.Newtype:
		kind = p.dataDecl()
	case scanner.Foreign:
		kind = p.foreignDecl()
	case scanner.Class:
		kind = p.classDecl()
	case scanner.Instance:
		kind = p.instanceChain()
	case scanner.Derive:
		kind = p.deriveDecl()
	default:
		return p.valueDecl()
	}
	return ast.At(p.spanFrom(start), kind)
}

func (p *parser) typeSynonym() *ast.TypeSynonym {
	p.expect(scanner.Type)
	syn := &ast.TypeSynonym{Name: p.upperName(), Params: p.typeParams()}
	p.expect(scanner.Equal)
	syn.Type = p.typ()
	return syn
}

func (p *parser) dataDecl() *ast.DataDecl {
	d := &ast.DataDecl{Newtype: p.advance().Kind == scanner.Newtype}
	nameSpan := p.peek().Span()
	d.Name = p.upperName()
	d.Params = p.typeParams()
	if p.accept(scanner.Equal) {
		for {
			start := p.peek().Start
			c := ast.ConstructorDecl{Name: p.upperName()}
			for p.canStartAType() {
				c.Fields = append(c.Fields, p.atype())
			}
			c.Span = p.spanFrom(start)
			d.Constructors = append(d.Constructors, c)
			if !p.accept(scanner.Pipe) {
				break
			}
		}
	}
	if d.Newtype && (len(d.Constructors) != 1 || len(d.Constructors[0].Fields) != 1) {
		p.failf(nameSpan, "a newtype must have exactly one constructor with one field")
	}
	return d
}

func (p *parser) foreignDecl() ast.DeclKind {
	p.expect(scanner.Foreign)
	p.expect(scanner.Import)
	if p.accept(scanner.Data) {
		fd := &ast.ForeignData{Name: p.upperName()}
		if p.accept(scanner.TypeOf) {
			k := p.typ()
			fd.Kind = &k
		}
		return fd
	}
	fv := &ast.ForeignValue{Name: p.lowerName()}
	p.expect(scanner.TypeOf)
	fv.Type = p.typ()
	return fv
}

// constraintList parses either a parenthesized list of constraints or a
// single constraint. Which one it was is decided by the token after it
// (<= for classes, => for instances).
func (p *parser) constraintList() []ast.Type {
	if p.at(scanner.LeftParen) && !p.atRowStart(1) {
		p.advance()
		list := []ast.Type{p.typ()}
		for p.accept(scanner.Comma) {
			list = append(list, p.typ())
		}
		p.expect(scanner.RightParen)
		return list
	}
	return []ast.Type{p.btype()}
}

func (p *parser) singleHead(list []ast.Type) ast.Type {
	if len(list) != 1 {
		p.failf(list[0].Span.Join(list[len(list)-1].Span), "expected a single class constraint")
	}
	return list[0]
}

func (p *parser) classDecl() *ast.ClassDecl {
	p.expect(scanner.Class)
	list := p.constraintList()
	var supers []ast.Type
	var head ast.Type
	if p.acceptOp("<=") {
		supers = list
		head = p.btype()
	} else {
		head = p.singleHead(list)
	}
	name, params, ok := ast.ConstraintToClassHead(head)
	if !ok {
		p.failf(head.Span, "invalid class head %s", head.Value)
	}
	c := &ast.ClassDecl{Constraints: supers, Name: name, Params: params}
	if p.accept(scanner.Where) {
		c.Body = p.declBlock()
	}
	return c
}

func (p *parser) instanceChain() *ast.InstanceChain {
	chain := &ast.InstanceChain{}
	for {
		chain.Instances = append(chain.Instances, p.instanceDecl(true))
		if p.at(scanner.LayoutSep) && p.peekAt(1).Kind == scanner.Else {
			p.advance()
		}
		if !p.accept(scanner.Else) {
			return chain
		}
	}
}

func (p *parser) instanceDecl(withBody bool) *ast.InstanceDecl {
	start := p.expect(scanner.Instance).Start
	inst := &ast.InstanceDecl{}
	if t := p.peek(); isLowerName(t) && p.peekAt(1).Kind == scanner.TypeOf {
		p.advance()
		p.advance()
		inst.Name = p.sym(t.Text)
	}
	list := p.constraintList()
	var head ast.Type
	if p.accept(scanner.FatArrow) {
		inst.Constraints = list
		head = p.btype()
	} else {
		head = p.singleHead(list)
	}
	class, args, ok := ast.ConstraintToInstanceHead(head)
	if !ok {
		p.failf(head.Span, "invalid instance head %s", head.Value)
	}
	inst.Class, inst.Args = class, args
	if withBody && p.accept(scanner.Where) {
		inst.Body = p.declBlock()
	}
	inst.Span = p.spanFrom(start)
	return inst
}

func (p *parser) deriveDecl() *ast.DeriveDecl {
	p.expect(scanner.Derive)
	d := &ast.DeriveDecl{Newtype: p.accept(scanner.Newtype)}
	d.Instance = p.instanceDecl(false)
	return d
}

// declBlock parses the where-block of a class or instance.
func (p *parser) declBlock() []ast.Decl {
	decls := []ast.Decl{}
	p.recoveringBlock(func() {
		decls = append(decls, p.valueDecl())
	})
	return decls
}

// letBlock parses the bindings of let and where.
func (p *parser) letBlock() []ast.Decl {
	var decls []ast.Decl
	p.block(func() {
		decls = append(decls, p.valueDecl())
	})
	return decls
}

// valueDecl parses a type signature, a value equation or a pattern
// binding. The left-hand side is read as an expression first: a variable
// applied to arguments is an equation, anything else is a pattern.
func (p *parser) valueDecl() ast.Decl {
	start := p.peek().Start
	if t := p.peek(); isLowerName(t) && p.peekAt(1).Kind == scanner.TypeOf {
		p.advance()
		p.advance()
		sig := &ast.TypeSignature{Name: p.sym(t.Text), Type: p.typ()}
		return ast.At[ast.DeclKind](p.spanFrom(start), sig)
	}

	lhs := p.infixExpr()
	body := p.whereClause(p.guardedBody(scanner.Equal))
	span := p.spanFrom(start)

	switch x := lhs.Value.(type) {
	case *ast.Var:
		if !x.Name.IsQualified() {
			return ast.At[ast.DeclKind](span, &ast.ValueEquation{Name: x.Name.Name, Body: body})
		}
	case *ast.App:
		if f, ok := x.Func.Value.(*ast.Var); ok && !f.Name.IsQualified() {
			params := make([]ast.Pat, 0, len(x.Args))
			for _, arg := range x.Args {
				pat, err := ast.ExprToPat(arg)
				p.check(err)
				params = append(params, pat)
			}
			return ast.At[ast.DeclKind](span, &ast.ValueEquation{Name: f.Name.Name, Params: params, Body: body})
		}
	}
	pat, err := ast.ExprToPat(lhs)
	p.check(err)
	return ast.At[ast.DeclKind](span, &ast.PatternBinding{Pat: pat, Body: body})
}

// guardedBody parses either sep expr or one or more | guards sep expr
// alternatives.
func (p *parser) guardedBody(sep scanner.Kind) ast.GuardedBody {
	if !p.at(scanner.Pipe) {
		p.expect(sep)
		return &ast.Unconditional{Expr: p.expr()}
	}
	g := &ast.Guarded{}
	for p.accept(scanner.Pipe) {
		var guards []ast.Guard
		for {
			guards = append(guards, p.guard())
			if !p.accept(scanner.Comma) {
				break
			}
		}
		p.expect(sep)
		g.Alts = append(g.Alts, ast.GuardedExpr{Guards: guards, Expr: p.expr()})
	}
	return g
}

func (p *parser) guard() ast.Guard {
	e := p.expr()
	if !p.accept(scanner.Bind) {
		return &ast.GuardCond{Expr: e}
	}
	pat, err := ast.ExprToPat(e)
	p.check(err)
	return &ast.GuardBind{Pat: pat, Expr: p.expr()}
}

// whereClause attaches trailing where bindings to an unconditional body as
// a let.
func (p *parser) whereClause(body ast.GuardedBody) ast.GuardedBody {
	if !p.at(scanner.Where) {
		return body
	}
	where := p.advance()
	u, ok := body.(*ast.Unconditional)
	if !ok {
		p.failf(where.Span(), "where bindings on a guarded declaration are not supported")
	}
	decls := p.letBlock()
	span := ast.NewSpan(u.Expr.Span.Start, p.lastEnd)
	return &ast.Unconditional{Expr: ast.At[ast.ExprKind](span, &ast.Let{Decls: decls, Body: u.Expr})}
}
