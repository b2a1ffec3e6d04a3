package ast

// Structural equality ignoring spans. Symbols compare by identity, so both
// sides must come from the same Context.

func equalSlice[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalOpt[T any](a, b *T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return eq(*a, *b)
}

// EqualType reports whether two types have the same shape.
func EqualType(a, b Type) bool {
	switch x := a.Value.(type) {
	case *TypeVar:
		y, ok := b.Value.(*TypeVar)
		return ok && x.Name == y.Name
	case *TypeConstructor:
		y, ok := b.Value.(*TypeConstructor)
		return ok && x.Name == y.Name
	case *TypeApp:
		y, ok := b.Value.(*TypeApp)
		return ok && EqualType(x.Func, y.Func) && EqualType(x.Arg, y.Arg)
	case *TypeFunc:
		y, ok := b.Value.(*TypeFunc)
		return ok && EqualType(x.Arg, y.Arg) && EqualType(x.Result, y.Result)
	case *TypeConstrained:
		y, ok := b.Value.(*TypeConstrained)
		return ok && EqualType(x.Constraint, y.Constraint) && EqualType(x.Body, y.Body)
	case *TypeForall:
		y, ok := b.Value.(*TypeForall)
		return ok && equalSlice(x.Params, y.Params, equalTypeParam) && EqualType(x.Body, y.Body)
	case *TypeRow:
		y, ok := b.Value.(*TypeRow)
		return ok && equalRow(*x, *y)
	case *TypeRecord:
		y, ok := b.Value.(*TypeRecord)
		return ok && equalRow(x.Row, y.Row)
	case *TypeString:
		y, ok := b.Value.(*TypeString)
		return ok && x.Value == y.Value
	case *TypeInt:
		y, ok := b.Value.(*TypeInt)
		return ok && x.Value == y.Value
	case *TypeArrow:
		_, ok := b.Value.(*TypeArrow)
		return ok
	}
	return a.Value == nil && b.Value == nil
}

func equalTypeParam(a, b TypeParam) bool {
	return a.Name == b.Name && equalOpt(a.Kind, b.Kind, EqualType)
}

func equalRow(a, b TypeRow) bool {
	return equalSlice(a.Labels, b.Labels, func(x, y RowLabel) bool {
		return x.Label == y.Label && EqualType(x.Type, y.Type)
	}) && equalOpt(a.Tail, b.Tail, EqualType)
}

// EqualPat reports whether two patterns have the same shape.
func EqualPat(a, b Pat) bool {
	switch x := a.Value.(type) {
	case *LiteralPat:
		y, ok := b.Value.(*LiteralPat)
		return ok && EqualLiteral(x.Lit, y.Lit, EqualPat)
	case *InfixPat:
		y, ok := b.Value.(*InfixPat)
		return ok && EqualPat(x.First, y.First) && equalSlice(x.Rest, y.Rest, func(p, q InfixPatPart) bool {
			return p.Op == q.Op && EqualPat(p.Operand, q.Operand)
		})
	case *VarPat:
		y, ok := b.Value.(*VarPat)
		return ok && x.Name == y.Name
	case *ConstructorPat:
		y, ok := b.Value.(*ConstructorPat)
		return ok && x.Name == y.Name && equalSlice(x.Args, y.Args, EqualPat)
	case *WildcardPat:
		_, ok := b.Value.(*WildcardPat)
		return ok
	case *AsPat:
		y, ok := b.Value.(*AsPat)
		return ok && x.Name == y.Name && EqualPat(x.Pat, y.Pat)
	case *TypedPat:
		y, ok := b.Value.(*TypedPat)
		return ok && EqualPat(x.Pat, y.Pat) && EqualType(x.Type, y.Type)
	}
	return a.Value == nil && b.Value == nil
}

// EqualExpr reports whether two expressions have the same shape.
func EqualExpr(a, b Expr) bool {
	switch x := a.Value.(type) {
	case *LiteralExpr:
		y, ok := b.Value.(*LiteralExpr)
		return ok && EqualLiteral(x.Lit, y.Lit, EqualExpr)
	case *Infix:
		y, ok := b.Value.(*Infix)
		return ok && EqualExpr(x.First, y.First) && equalSlice(x.Rest, y.Rest, func(p, q InfixPart) bool {
			return p.Op.Name == q.Op.Name && equalOpt(p.Op.Backtick, q.Op.Backtick, EqualExpr) &&
				EqualExpr(p.Operand, q.Operand)
		})
	case *Accessor:
		y, ok := b.Value.(*Accessor)
		return ok && x.Field == y.Field && EqualExpr(x.Expr, y.Expr)
	case *RecordUpdate:
		y, ok := b.Value.(*RecordUpdate)
		return ok && EqualExpr(x.Expr, y.Expr) && equalSlice(x.Fields, y.Fields, equalFieldUpdate)
	case *Var:
		y, ok := b.Value.(*Var)
		return ok && x.Name == y.Name
	case *Operator:
		y, ok := b.Value.(*Operator)
		return ok && x.Name == y.Name
	case *DataConstructor:
		y, ok := b.Value.(*DataConstructor)
		return ok && x.Name == y.Name
	case *App:
		y, ok := b.Value.(*App)
		return ok && EqualExpr(x.Func, y.Func) && equalSlice(x.Args, y.Args, EqualExpr)
	case *Lam:
		y, ok := b.Value.(*Lam)
		return ok && equalSlice(x.Params, y.Params, EqualPat) && EqualExpr(x.Body, y.Body)
	case *Case:
		y, ok := b.Value.(*Case)
		return ok && equalSlice(x.Scrutinees, y.Scrutinees, EqualExpr) &&
			equalSlice(x.Branches, y.Branches, equalBranch)
	case *If:
		y, ok := b.Value.(*If)
		return ok && EqualExpr(x.Cond, y.Cond) && EqualExpr(x.Then, y.Then) && EqualExpr(x.Else, y.Else)
	case *Typed:
		y, ok := b.Value.(*Typed)
		return ok && EqualExpr(x.Expr, y.Expr) && EqualType(x.Type, y.Type)
	case *Let:
		y, ok := b.Value.(*Let)
		return ok && equalSlice(x.Decls, y.Decls, EqualDecl) && EqualExpr(x.Body, y.Body)
	case *Wildcard:
		_, ok := b.Value.(*Wildcard)
		return ok
	case *Do:
		y, ok := b.Value.(*Do)
		return ok && equalSlice(x.Items, y.Items, equalDoItem)
	case *Ado:
		y, ok := b.Value.(*Ado)
		return ok && equalSlice(x.Items, y.Items, equalDoItem) && EqualExpr(x.Result, y.Result)
	case *Negate:
		y, ok := b.Value.(*Negate)
		return ok && EqualExpr(x.Expr, y.Expr)
	case *RecordUpdateSuffix:
		y, ok := b.Value.(*RecordUpdateSuffix)
		return ok && equalSlice(x.Fields, y.Fields, equalFieldUpdate)
	case *NamedPat:
		y, ok := b.Value.(*NamedPat)
		return ok && x.Name == y.Name && EqualExpr(x.Expr, y.Expr)
	}
	return a.Value == nil && b.Value == nil
}

func equalFieldUpdate(a, b FieldUpdate) bool {
	return a.Label == b.Label && EqualExpr(a.Value, b.Value)
}

func equalBranch(a, b *CaseBranch) bool {
	return equalSlice(a.Pats, b.Pats, EqualPat) && equalBody(a.Body, b.Body)
}

func equalBody(a, b GuardedBody) bool {
	switch x := a.(type) {
	case *Unconditional:
		y, ok := b.(*Unconditional)
		return ok && EqualExpr(x.Expr, y.Expr)
	case *Guarded:
		y, ok := b.(*Guarded)
		return ok && equalSlice(x.Alts, y.Alts, func(p, q GuardedExpr) bool {
			return equalSlice(p.Guards, q.Guards, equalGuard) && EqualExpr(p.Expr, q.Expr)
		})
	}
	return a == nil && b == nil
}

func equalGuard(a, b Guard) bool {
	switch x := a.(type) {
	case *GuardCond:
		y, ok := b.(*GuardCond)
		return ok && EqualExpr(x.Expr, y.Expr)
	case *GuardBind:
		y, ok := b.(*GuardBind)
		return ok && EqualPat(x.Pat, y.Pat) && EqualExpr(x.Expr, y.Expr)
	}
	return false
}

func equalDoItem(a, b DoItem) bool {
	switch x := a.(type) {
	case *DoLet:
		y, ok := b.(*DoLet)
		return ok && equalSlice(x.Decls, y.Decls, EqualDecl)
	case *DoExpr:
		y, ok := b.(*DoExpr)
		return ok && EqualExpr(x.Expr, y.Expr)
	case *DoBind:
		y, ok := b.(*DoBind)
		return ok && EqualPat(x.Pat, y.Pat) && EqualExpr(x.Expr, y.Expr)
	}
	return false
}

// EqualDecl compares value-level declarations structurally. Other
// declaration kinds compare by their rendering, which carries no spans.
func EqualDecl(a, b Decl) bool {
	switch x := a.Value.(type) {
	case *TypeSignature:
		y, ok := b.Value.(*TypeSignature)
		return ok && x.Name == y.Name && EqualType(x.Type, y.Type)
	case *ValueEquation:
		y, ok := b.Value.(*ValueEquation)
		return ok && x.Name == y.Name && equalSlice(x.Params, y.Params, EqualPat) && equalBody(x.Body, y.Body)
	case *PatternBinding:
		y, ok := b.Value.(*PatternBinding)
		return ok && EqualPat(x.Pat, y.Pat) && equalBody(x.Body, y.Body)
	}
	if a.Value == nil || b.Value == nil {
		return a.Value == b.Value
	}
	return a.Value.String() == b.Value.String()
}
