package ast

// WalkExprs traverses every expression of the module, outermost first, and
// calls fn on each. It returns true as soon as fn returns true.
func WalkExprs(m *Module, fn func(Expr) bool) bool {
	return walkDecls(m.Decls, fn)
}

func walkDecls(decls []Decl, fn func(Expr) bool) bool {
	for _, d := range decls {
		if walkDecl(d, fn) {
			return true
		}
	}
	return false
}

func walkDecl(d Decl, fn func(Expr) bool) bool {
	switch dk := d.Value.(type) {
	case *ValueEquation:
		return walkBody(dk.Body, fn)
	case *PatternBinding:
		return walkBody(dk.Body, fn)
	case *ClassDecl:
		return walkDecls(dk.Body, fn)
	case *InstanceChain:
		for _, inst := range dk.Instances {
			if walkDecls(inst.Body, fn) {
				return true
			}
		}
	}
	return false
}

func walkBody(b GuardedBody, fn func(Expr) bool) bool {
	switch body := b.(type) {
	case *Unconditional:
		return WalkExpr(body.Expr, fn)
	case *Guarded:
		for _, alt := range body.Alts {
			for _, g := range alt.Guards {
				switch g := g.(type) {
				case *GuardCond:
					if WalkExpr(g.Expr, fn) {
						return true
					}
				case *GuardBind:
					if WalkExpr(g.Expr, fn) {
						return true
					}
				}
			}
			if WalkExpr(alt.Expr, fn) {
				return true
			}
		}
	}
	return false
}

func walkDoItems(items []DoItem, fn func(Expr) bool) bool {
	for _, item := range items {
		switch it := item.(type) {
		case *DoLet:
			if walkDecls(it.Decls, fn) {
				return true
			}
		case *DoExpr:
			if WalkExpr(it.Expr, fn) {
				return true
			}
		case *DoBind:
			if WalkExpr(it.Expr, fn) {
				return true
			}
		}
	}
	return false
}

func walkExprSlice(es []Expr, fn func(Expr) bool) bool {
	for _, e := range es {
		if WalkExpr(e, fn) {
			return true
		}
	}
	return false
}

func walkFields(fields []FieldUpdate, fn func(Expr) bool) bool {
	for _, f := range fields {
		if WalkExpr(f.Value, fn) {
			return true
		}
	}
	return false
}

// WalkExpr calls fn on e and then on each of its subexpressions. Patterns
// and types are not visited.
func WalkExpr(e Expr, fn func(Expr) bool) bool {
	if fn(e) {
		return true
	}
	switch ex := e.Value.(type) {
	case *LiteralExpr:
		switch lit := ex.Lit.(type) {
		case ArrayLit[Expr]:
			return walkExprSlice(lit.Elems, fn)
		case ObjectLit[Expr]:
			for _, f := range lit.Fields {
				if WalkExpr(f.Value, fn) {
					return true
				}
			}
		}
	case *Infix:
		if WalkExpr(ex.First, fn) {
			return true
		}
		for _, part := range ex.Rest {
			if part.Op.Backtick != nil && WalkExpr(*part.Op.Backtick, fn) {
				return true
			}
			if WalkExpr(part.Operand, fn) {
				return true
			}
		}
	case *Accessor:
		return WalkExpr(ex.Expr, fn)
	case *RecordUpdate:
		return WalkExpr(ex.Expr, fn) || walkFields(ex.Fields, fn)
	case *App:
		return WalkExpr(ex.Func, fn) || walkExprSlice(ex.Args, fn)
	case *Lam:
		return WalkExpr(ex.Body, fn)
	case *Case:
		if walkExprSlice(ex.Scrutinees, fn) {
			return true
		}
		for _, br := range ex.Branches {
			if walkBody(br.Body, fn) {
				return true
			}
		}
	case *If:
		return WalkExpr(ex.Cond, fn) || WalkExpr(ex.Then, fn) || WalkExpr(ex.Else, fn)
	case *Typed:
		return WalkExpr(ex.Expr, fn)
	case *Let:
		return walkDecls(ex.Decls, fn) || WalkExpr(ex.Body, fn)
	case *Do:
		return walkDoItems(ex.Items, fn)
	case *Ado:
		return walkDoItems(ex.Items, fn) || WalkExpr(ex.Result, fn)
	case *Negate:
		return WalkExpr(ex.Expr, fn)
	case *RecordUpdateSuffix:
		return walkFields(ex.Fields, fn)
	case *NamedPat:
		return WalkExpr(ex.Expr, fn)
	}
	return false
}
