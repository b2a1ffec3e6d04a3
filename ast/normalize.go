package ast

// Normalization rewrites raw parser output into canonical tree shapes. The
// grammar calls these at its reduction points; each function either returns
// the canonical node or a *NormalizeError naming the rejected construct.

// NormalizeError reports a construct that is illegal where the grammar put
// it, e.g. a lambda in pattern position.
type NormalizeError struct {
	Span Span
	Msg  string
}

func (e *NormalizeError) Error() string { return e.Msg }

// Pos returns the span of the rejected construct.
func (e *NormalizeError) Pos() Span { return e.Span }

func illegal(span Span, what string) error {
	return &NormalizeError{Span: span, Msg: "illegal " + what + " in pattern"}
}

// NormalizeApp adds one argument to an application. When f is already an
// App, x is appended to its arguments in place, so application never nests
// in function position.
func NormalizeApp(f, x Expr) ExprKind {
	if app, ok := f.Value.(*App); ok {
		app.Args = append(app.Args, x)
		return app
	}
	return &App{Func: f, Args: []Expr{x}}
}

// ApplyRecordUpdates folds record-update suffixes in an argument list into
// the expression preceding them. Each RecordUpdateSuffix wraps the most
// recent item as a RecordUpdate carrying the suffix's span; the first item
// becomes the applied function of the resulting App.
//
//	f r {x = 1} {y = 2} q  =>  App(f, [RecordUpdate(RecordUpdate(r, x), y), q])
func ApplyRecordUpdates(f Expr, args []Expr) ExprKind {
	items := make([]Expr, 1, len(args)+1)
	items[0] = f
	for _, arg := range args {
		suffix, ok := arg.Value.(*RecordUpdateSuffix)
		if !ok {
			items = append(items, arg)
			continue
		}
		last := len(items) - 1
		items[last] = At[ExprKind](arg.Span, &RecordUpdate{Expr: items[last], Fields: suffix.Fields})
	}
	return &App{Func: items[0], Args: items[1:]}
}

// ExprToPat converts an expression parsed before the grammar knew it was
// in pattern position into the corresponding pattern. It is the only place
// NamedPat pseudo-expressions are eliminated.
func ExprToPat(e Expr) (Pat, error) {
	kind, err := exprKindToPat(e)
	if err != nil {
		return Pat{}, err
	}
	return At(e.Span, kind), nil
}

func exprKindToPat(e Expr) (PatKind, error) {
	switch x := e.Value.(type) {
	case *LiteralExpr:
		lit, err := MapLiteral(x.Lit, ExprToPat)
		if err != nil {
			return nil, err
		}
		return &LiteralPat{Lit: lit}, nil

	case *Infix:
		first, err := ExprToPat(x.First)
		if err != nil {
			return nil, err
		}
		rest := make([]InfixPatPart, 0, len(x.Rest))
		for _, part := range x.Rest {
			op, err := infixOpToPat(part.Op)
			if err != nil {
				return nil, err
			}
			operand, err := ExprToPat(part.Operand)
			if err != nil {
				return nil, err
			}
			rest = append(rest, InfixPatPart{Op: op, Operand: operand})
		}
		return &InfixPat{First: first, Rest: rest}, nil

	case *RecordUpdate:
		// r { a = p } in a binder reads as an infix chain over the labels.
		first, err := ExprToPat(x.Expr)
		if err != nil {
			return nil, err
		}
		rest := make([]InfixPatPart, 0, len(x.Fields))
		for _, f := range x.Fields {
			operand, err := ExprToPat(f.Value)
			if err != nil {
				return nil, err
			}
			rest = append(rest, InfixPatPart{Op: Unqualified(f.Label), Operand: operand})
		}
		return &InfixPat{First: first, Rest: rest}, nil

	case *Var:
		if x.Name.IsQualified() {
			return nil, illegal(e.Span, "qualified name")
		}
		return &VarPat{Name: x.Name.Name}, nil

	case *DataConstructor:
		return &ConstructorPat{Name: x.Name}, nil

	case *App:
		ctor, ok := x.Func.Value.(*DataConstructor)
		if !ok {
			return nil, &NormalizeError{Span: x.Func.Span, Msg: "illegal pattern in data constructor position"}
		}
		args := make([]Pat, 0, len(x.Args))
		for _, a := range x.Args {
			p, err := ExprToPat(a)
			if err != nil {
				return nil, err
			}
			args = append(args, p)
		}
		return &ConstructorPat{Name: ctor.Name, Args: args}, nil

	case *Typed:
		p, err := ExprToPat(x.Expr)
		if err != nil {
			return nil, err
		}
		return &TypedPat{Pat: p, Type: x.Type}, nil

	case *Wildcard:
		return &WildcardPat{}, nil

	case *NamedPat:
		p, err := ExprToPat(x.Expr)
		if err != nil {
			return nil, err
		}
		return &AsPat{Name: x.Name, Pat: p}, nil

	case *Accessor:
		return nil, illegal(e.Span, "record accessor")
	case *Lam:
		return nil, illegal(e.Span, "lambda")
	case *Case:
		return nil, illegal(e.Span, "case")
	case *If:
		return nil, illegal(e.Span, "if")
	case *Let:
		return nil, illegal(e.Span, "let")
	case *Do:
		return nil, illegal(e.Span, "do")
	case *Ado:
		return nil, illegal(e.Span, "ado")
	case *RecordUpdateSuffix:
		return nil, illegal(e.Span, "record update")
	case *Negate:
		return nil, illegal(e.Span, "negation")
	case *Operator:
		return nil, illegal(e.Span, "operator section")
	}
	return nil, &NormalizeError{Span: e.Span, Msg: "unexpected expression in pattern"}
}

// infixOpToPat accepts symbolic operators and backticked names; any other
// backtick expression cannot name a constructor.
func infixOpToPat(op InfixOp) (QualifiedName, error) {
	if op.Backtick == nil {
		return op.Name, nil
	}
	switch b := op.Backtick.Value.(type) {
	case *Var:
		return b.Name, nil
	case *DataConstructor:
		return b.Name, nil
	}
	return QualifiedName{}, illegal(op.Backtick.Span, "backtick operator")
}

// typeSpine splits a left-nested type application into its head and
// arguments, in source order.
func typeSpine(t Type) (Type, []Type) {
	var args []Type
	for {
		app, ok := t.Value.(*TypeApp)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		t = app.Func
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return t, args
}

// ConstraintToInstanceHead reads a constraint such as Show (Maybe a) as an
// instance head. ok is false unless the spine's head is a type constructor.
func ConstraintToInstanceHead(t Type) (name QualifiedName, args []Type, ok bool) {
	head, args := typeSpine(t)
	ctor, ok := head.Value.(*TypeConstructor)
	if !ok {
		return QualifiedName{}, nil, false
	}
	return ctor.Name, args, true
}

// ConstraintToClassHead reads a constraint as the head of a class being
// declared. The class name must be unqualified and every argument a bare
// type variable.
func ConstraintToClassHead(t Type) (name Symbol, params []TypeParam, ok bool) {
	qname, args, ok := ConstraintToInstanceHead(t)
	if !ok || qname.IsQualified() {
		return Symbol{}, nil, false
	}
	params = make([]TypeParam, 0, len(args))
	for _, a := range args {
		v, ok := a.Value.(*TypeVar)
		if !ok {
			return Symbol{}, nil, false
		}
		params = append(params, TypeParam{Name: v.Name})
	}
	return qname.Name, params, true
}
