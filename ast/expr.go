package ast

import "fmt"

// Expr is an expression node tagged with its source span.
type Expr = Located[ExprKind]

// ExprKind is the closed set of expression shapes.
type ExprKind interface {
	fmt.Stringer
	exprKind()
}

// LiteralExpr is a literal in expression position.
type LiteralExpr struct {
	Lit Literal[Expr]
}

// Infix is an operator chain whose precedence and associativity have not
// been resolved yet: First op1 e1 op2 e2 ...
type Infix struct {
	First Expr
	Rest  []InfixPart
}

// InfixPart is one (operator, operand) pair of an Infix chain.
type InfixPart struct {
	Op      InfixOp
	Operand Expr
}

// InfixOp is either a symbolic operator or a backtick-quoted expression.
// Exactly one of Name and Backtick is set.
type InfixOp struct {
	Name     QualifiedName
	Backtick *Expr
}

// Accessor is a record field access, expr.field.
type Accessor struct {
	Expr  Expr
	Field Symbol
}

// FieldUpdate is one label = value entry of a record update.
type FieldUpdate struct {
	Label Symbol
	Value Expr
}

// RecordUpdate is expr { label = value, ... }.
type RecordUpdate struct {
	Expr   Expr
	Fields []FieldUpdate
}

// Var is a reference to a value. The renamer rewrites Name in place.
type Var struct {
	Name QualifiedName
}

// Operator is a bare operator used as a value, as in (+).
type Operator struct {
	Name QualifiedName
}

// DataConstructor is a reference to a data constructor.
type DataConstructor struct {
	Name QualifiedName
}

// App is n-ary application. It never nests in its function position:
// f a b is App{f, [a, b]}, not App{App{f, [a]}, [b]}.
type App struct {
	Func Expr
	Args []Expr
}

// Lam is \pats -> body.
type Lam struct {
	Params []Pat
	Body   Expr
}

// Case is case e1, e2 of branches.
type Case struct {
	Scrutinees []Expr
	Branches   []*CaseBranch
}

// If is if cond then a else b.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Typed is expr :: type.
type Typed struct {
	Expr Expr
	Type Type
}

// Let is let decls in body.
type Let struct {
	Decls []Decl
	Body  Expr
}

// Wildcard is _ in expression position (e.g. _.foo).
type Wildcard struct{}

// Do is a do block.
type Do struct {
	Items []DoItem
}

// Ado is ado items in result.
type Ado struct {
	Items  []DoItem
	Result Expr
}

// Negate is prefix minus.
type Negate struct {
	Expr Expr
}

// RecordUpdateSuffix is a pseudo-expression: a { label = value } group that
// followed an expression in argument position. ApplyRecordUpdates folds it
// into a RecordUpdate; it never survives parsing.
type RecordUpdateSuffix struct {
	Fields []FieldUpdate
}

// NamedPat is a pseudo-expression for name@expr, produced while the parser
// cannot yet tell a pattern from an expression. ExprToPat turns it into an
// as-pattern; it never survives parsing.
type NamedPat struct {
	Name Symbol
	Expr Expr
}

func (*LiteralExpr) exprKind()        {}
func (*Infix) exprKind()              {}
func (*Accessor) exprKind()           {}
func (*RecordUpdate) exprKind()       {}
func (*Var) exprKind()                {}
func (*Operator) exprKind()           {}
func (*DataConstructor) exprKind()    {}
func (*App) exprKind()                {}
func (*Lam) exprKind()                {}
func (*Case) exprKind()               {}
func (*If) exprKind()                 {}
func (*Typed) exprKind()              {}
func (*Let) exprKind()                {}
func (*Wildcard) exprKind()           {}
func (*Do) exprKind()                 {}
func (*Ado) exprKind()                {}
func (*Negate) exprKind()             {}
func (*RecordUpdateSuffix) exprKind() {}
func (*NamedPat) exprKind()           {}

// IsPseudo reports whether k is one of the transient parser-only variants.
func IsPseudo(k ExprKind) bool {
	switch k.(type) {
	case *RecordUpdateSuffix, *NamedPat:
		return true
	}
	return false
}

// CaseBranch is one alternative of a case expression, or one equation of a
// value declaration: patterns plus a possibly guarded body.
type CaseBranch struct {
	Pats []Pat
	Body GuardedBody
}

// GuardedBody is the right-hand side of a branch.
type GuardedBody interface {
	fmt.Stringer
	guardedBody()
}

// Unconditional is a body without guards.
type Unconditional struct {
	Expr Expr
}

// Guarded is a list of alternatives tried in order.
type Guarded struct {
	Alts []GuardedExpr
}

// GuardedExpr is | g1, g2 -> expr (or = expr in declarations).
type GuardedExpr struct {
	Guards []Guard
	Expr   Expr
}

func (*Unconditional) guardedBody() {}
func (*Guarded) guardedBody()       {}

// Guard is a boolean condition or a pattern guard.
type Guard interface {
	fmt.Stringer
	guard()
}

// GuardCond is a boolean guard.
type GuardCond struct {
	Expr Expr
}

// GuardBind is a pattern guard, pat <- expr.
type GuardBind struct {
	Pat  Pat
	Expr Expr
}

func (*GuardCond) guard() {}
func (*GuardBind) guard() {}

// DoItem is one statement of a do or ado block.
type DoItem interface {
	fmt.Stringer
	doItem()
}

// DoLet is a let block inside do.
type DoLet struct {
	Decls []Decl
}

// DoExpr is a bare expression statement.
type DoExpr struct {
	Expr Expr
}

// DoBind is pat <- expr.
type DoBind struct {
	Pat  Pat
	Expr Expr
}

func (*DoLet) doItem()  {}
func (*DoExpr) doItem() {}
func (*DoBind) doItem() {}
