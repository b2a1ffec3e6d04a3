package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node kinds render as compact S-expressions without spans. Located values
// add their span ("{value} {start}:{end}") through Located.String.

func literalString[T any](lit Literal[T], elem func(T) string) string {
	switch l := lit.(type) {
	case IntLit:
		return strconv.FormatUint(l.Value, 10)
	case FloatLit:
		return strconv.FormatFloat(l.Value, 'g', -1, 64)
	case StringLit:
		return strconv.Quote(l.Value)
	case CharLit:
		return strconv.QuoteRune(l.Value)
	case BoolLit:
		return strconv.FormatBool(l.Value)
	case ArrayLit[T]:
		parts := make([]string, len(l.Elems))
		for i, e := range l.Elems {
			parts[i] = elem(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ObjectLit[T]:
		parts := make([]string, len(l.Fields))
		for i, f := range l.Fields {
			parts[i] = f.Label.String() + ": " + elem(f.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "?"
}

func exprStr(e Expr) string {
	if e.Value == nil {
		return "<nil>"
	}
	return e.Value.String()
}

func patStr(p Pat) string {
	if p.Value == nil {
		return "<nil>"
	}
	return p.Value.String()
}

func typeStr(t Type) string {
	if t.Value == nil {
		return "<nil>"
	}
	return t.Value.String()
}

func declStr(d Decl) string {
	if d.Value == nil {
		return "<nil>"
	}
	return d.Value.String()
}

func joinMap[T any](xs []T, f func(T) string, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = f(x)
	}
	return strings.Join(parts, sep)
}

func fieldUpdates(fields []FieldUpdate) string {
	return "{" + joinMap(fields, func(f FieldUpdate) string {
		return f.Label.String() + " = " + exprStr(f.Value)
	}, ", ") + "}"
}

func (l *LiteralExpr) String() string { return literalString(l.Lit, exprStr) }

func (op InfixOp) String() string {
	if op.Backtick != nil {
		return "`" + exprStr(*op.Backtick) + "`"
	}
	return op.Name.String()
}

func (i *Infix) String() string {
	var b strings.Builder
	b.WriteString("(infix ")
	b.WriteString(exprStr(i.First))
	for _, p := range i.Rest {
		b.WriteString(" ")
		b.WriteString(p.Op.String())
		b.WriteString(" ")
		b.WriteString(exprStr(p.Operand))
	}
	b.WriteString(")")
	return b.String()
}

func (a *Accessor) String() string {
	return "(accessor " + exprStr(a.Expr) + " " + a.Field.String() + ")"
}

func (r *RecordUpdate) String() string {
	return "(update " + exprStr(r.Expr) + " " + fieldUpdates(r.Fields) + ")"
}

func (v *Var) String() string             { return v.Name.String() }
func (o *Operator) String() string        { return "(" + o.Name.String() + ")" }
func (d *DataConstructor) String() string { return d.Name.String() }

func (a *App) String() string {
	if len(a.Args) == 0 {
		return "(app " + exprStr(a.Func) + ")"
	}
	return "(app " + exprStr(a.Func) + " " + joinMap(a.Args, exprStr, " ") + ")"
}

func (l *Lam) String() string {
	return "(lam [" + joinMap(l.Params, patStr, " ") + "] " + exprStr(l.Body) + ")"
}

func (c *CaseBranch) String() string {
	return "(branch [" + joinMap(c.Pats, patStr, ", ") + "] " + bodyStr(c.Body) + ")"
}

func (c *Case) String() string {
	s := "(case [" + joinMap(c.Scrutinees, exprStr, ", ") + "]"
	for _, br := range c.Branches {
		s += " " + br.String()
	}
	return s + ")"
}

func (i *If) String() string {
	return "(if " + exprStr(i.Cond) + " " + exprStr(i.Then) + " " + exprStr(i.Else) + ")"
}

func (t *Typed) String() string { return "(:: " + exprStr(t.Expr) + " " + typeStr(t.Type) + ")" }

func (l *Let) String() string {
	return "(let [" + joinMap(l.Decls, declStr, " ") + "] " + exprStr(l.Body) + ")"
}

func (*Wildcard) String() string { return "_" }

func doItemStr(item DoItem) string { return item.String() }

func (d *Do) String() string { return "(do " + joinMap(d.Items, doItemStr, " ") + ")" }

func (a *Ado) String() string {
	return "(ado [" + joinMap(a.Items, doItemStr, " ") + "] " + exprStr(a.Result) + ")"
}

func (n *Negate) String() string { return "(negate " + exprStr(n.Expr) + ")" }

func (s *RecordUpdateSuffix) String() string { return "(update-suffix " + fieldUpdates(s.Fields) + ")" }

func (n *NamedPat) String() string { return "(named " + n.Name.String() + " " + exprStr(n.Expr) + ")" }

func bodyStr(b GuardedBody) string {
	if b == nil {
		return "<nil>"
	}
	return b.String()
}

func (u *Unconditional) String() string { return exprStr(u.Expr) }

func (g *Guarded) String() string {
	return "(guarded " + joinMap(g.Alts, func(a GuardedExpr) string {
		return "(| [" + joinMap(a.Guards, Guard.String, ", ") + "] " + exprStr(a.Expr) + ")"
	}, " ") + ")"
}

func (g *GuardCond) String() string { return exprStr(g.Expr) }
func (g *GuardBind) String() string { return "(<- " + patStr(g.Pat) + " " + exprStr(g.Expr) + ")" }

func (d *DoLet) String() string  { return "(let [" + joinMap(d.Decls, declStr, " ") + "])" }
func (d *DoExpr) String() string { return exprStr(d.Expr) }
func (d *DoBind) String() string { return "(<- " + patStr(d.Pat) + " " + exprStr(d.Expr) + ")" }

func (l *LiteralPat) String() string { return literalString(l.Lit, patStr) }

func (i *InfixPat) String() string {
	var b strings.Builder
	b.WriteString("(infix ")
	b.WriteString(patStr(i.First))
	for _, p := range i.Rest {
		b.WriteString(" ")
		b.WriteString(p.Op.String())
		b.WriteString(" ")
		b.WriteString(patStr(p.Operand))
	}
	b.WriteString(")")
	return b.String()
}

func (v *VarPat) String() string { return v.Name.String() }

func (c *ConstructorPat) String() string {
	if len(c.Args) == 0 {
		return c.Name.String()
	}
	return "(" + c.Name.String() + " " + joinMap(c.Args, patStr, " ") + ")"
}

func (*WildcardPat) String() string { return "_" }
func (a *AsPat) String() string     { return "(as " + a.Name.String() + " " + patStr(a.Pat) + ")" }
func (t *TypedPat) String() string  { return "(:: " + patStr(t.Pat) + " " + typeStr(t.Type) + ")" }

func (v *TypeVar) String() string         { return v.Name.String() }
func (c *TypeConstructor) String() string { return c.Name.String() }

func (a *TypeApp) String() string {
	// Render the whole spine at once: (Either String Int).
	args := []Type{a.Arg}
	head := a.Func
	for {
		inner, ok := head.Value.(*TypeApp)
		if !ok {
			break
		}
		args = append(args, inner.Arg)
		head = inner.Func
	}
	parts := []string{typeStr(head)}
	for i := len(args) - 1; i >= 0; i-- {
		parts = append(parts, typeStr(args[i]))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (f *TypeFunc) String() string { return "(-> " + typeStr(f.Arg) + " " + typeStr(f.Result) + ")" }

func (c *TypeConstrained) String() string {
	return "(=> " + typeStr(c.Constraint) + " " + typeStr(c.Body) + ")"
}

func (p TypeParam) String() string {
	if p.Kind == nil {
		return p.Name.String()
	}
	return "(" + p.Name.String() + " :: " + typeStr(*p.Kind) + ")"
}

func (f *TypeForall) String() string {
	return "(forall [" + joinMap(f.Params, TypeParam.String, " ") + "] " + typeStr(f.Body) + ")"
}

func (r *TypeRow) rowBody() string {
	s := joinMap(r.Labels, func(l RowLabel) string {
		return l.Label.String() + " :: " + typeStr(l.Type)
	}, ", ")
	if r.Tail != nil {
		if s != "" {
			s += " "
		}
		s += "| " + typeStr(*r.Tail)
	}
	return s
}

func (r *TypeRow) String() string {
	if body := r.rowBody(); body != "" {
		return "(row " + body + ")"
	}
	return "(row)"
}

func (r *TypeRecord) String() string {
	if body := r.Row.rowBody(); body != "" {
		return "(record " + body + ")"
	}
	return "(record)"
}

func (s *TypeString) String() string { return strconv.Quote(s.Value) }
func (i *TypeInt) String() string    { return strconv.FormatUint(i.Value, 10) }
func (*TypeArrow) String() string    { return "(->)" }

func (s *TypeSignature) String() string { return "(sig " + s.Name.String() + " " + typeStr(s.Type) + ")" }

func (v *ValueEquation) String() string {
	return "(value " + v.Name.String() + " [" + joinMap(v.Params, patStr, " ") + "] " + bodyStr(v.Body) + ")"
}

func (p *PatternBinding) String() string {
	return "(bind " + patStr(p.Pat) + " " + bodyStr(p.Body) + ")"
}

func (t *TypeSynonym) String() string {
	return "(type " + t.Name.String() + " [" + joinMap(t.Params, TypeParam.String, " ") + "] " + typeStr(t.Type) + ")"
}

func (c ConstructorDecl) String() string {
	if len(c.Fields) == 0 {
		return c.Name.String()
	}
	return "(" + c.Name.String() + " " + joinMap(c.Fields, typeStr, " ") + ")"
}

func (d *DataDecl) String() string {
	kw := "data"
	if d.Newtype {
		kw = "newtype"
	}
	s := "(" + kw + " " + d.Name.String() + " [" + joinMap(d.Params, TypeParam.String, " ") + "]"
	for _, c := range d.Constructors {
		s += " " + c.String()
	}
	return s + ")"
}

func (f *ForeignValue) String() string { return "(foreign " + f.Name.String() + " " + typeStr(f.Type) + ")" }

func (f *ForeignData) String() string {
	if f.Kind == nil {
		return "(foreign-data " + f.Name.String() + ")"
	}
	return "(foreign-data " + f.Name.String() + " " + typeStr(*f.Kind) + ")"
}

func (c *ClassDecl) String() string {
	return "(class [" + joinMap(c.Constraints, typeStr, ", ") + "] " + c.Name.String() +
		" [" + joinMap(c.Params, TypeParam.String, " ") + "] [" + joinMap(c.Body, declStr, " ") + "])"
}

func (i *InstanceDecl) String() string {
	s := "(instance "
	if !i.Name.IsZero() {
		s += i.Name.String() + " "
	}
	s += "[" + joinMap(i.Constraints, typeStr, ", ") + "] " + i.Class.String() +
		" [" + joinMap(i.Args, typeStr, " ") + "]"
	if i.Body != nil {
		s += " [" + joinMap(i.Body, declStr, " ") + "]"
	}
	return s + ")"
}

func (c *InstanceChain) String() string {
	if len(c.Instances) == 1 {
		return c.Instances[0].String()
	}
	return "(chain " + joinMap(c.Instances, (*InstanceDecl).String, " ") + ")"
}

func (d *DeriveDecl) String() string {
	if d.Newtype {
		return "(derive-newtype " + d.Instance.String() + ")"
	}
	return "(derive " + d.Instance.String() + ")"
}

func (it Item) String() string {
	switch it.Kind {
	case ItemValueOp:
		return "(" + it.Name.String() + ")"
	case ItemTypeOp:
		return "type (" + it.Name.String() + ")"
	case ItemClass:
		return "class " + it.Name.String()
	case ItemModule:
		return "module " + it.Name.String()
	case ItemType:
		if it.AllMembers {
			return it.Name.String() + "(..)"
		}
		if it.Members != nil {
			return it.Name.String() + "(" + joinMap(it.Members, Symbol.String, ", ") + ")"
		}
	}
	return it.Name.String()
}

func (i *Import) String() string {
	s := "import " + i.Module.String()
	if i.Hiding {
		s += " hiding"
	}
	if i.Explicit {
		s += " (" + joinMap(i.Items, Item.String, ", ") + ")"
	}
	if !i.Alias.IsZero() {
		s += " as " + i.Alias.String()
	}
	return s
}

// Dump renders a module one declaration per line, for debugging and tests.
func Dump(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s", m.Name)
	if m.Exports != nil {
		fmt.Fprintf(&b, " (%s)", joinMap(m.Exports, Item.String, ", "))
	}
	b.WriteString("\n")
	for _, imp := range m.Imports {
		fmt.Fprintf(&b, "  %s\n", imp)
	}
	for _, d := range m.Decls {
		fmt.Fprintf(&b, "  %s\n", declStr(d))
	}
	return b.String()
}
