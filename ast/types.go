package ast

import "fmt"

// Type is a type node tagged with its source span.
type Type = Located[TypeKind]

// TypeKind is the closed set of type shapes.
type TypeKind interface {
	fmt.Stringer
	typeKind()
}

// TypeVar is a type variable.
type TypeVar struct {
	Name Symbol
}

// TypeConstructor is a (possibly qualified) type or class name.
type TypeConstructor struct {
	Name QualifiedName
}

// TypeApp is Func applied to Arg. Application is binary and left-nested:
// Either String Int is TypeApp{TypeApp{Either, String}, Int}.
type TypeApp struct {
	Func Type
	Arg  Type
}

// TypeFunc is Arg -> Result.
type TypeFunc struct {
	Arg    Type
	Result Type
}

// TypeConstrained is Constraint => Body.
type TypeConstrained struct {
	Constraint Type
	Body       Type
}

// TypeParam is a type variable binder with an optional kind.
type TypeParam struct {
	Name Symbol
	Kind *Type
}

// TypeForall is forall params. Body.
type TypeForall struct {
	Params []TypeParam
	Body   Type
}

// RowLabel is one label :: type entry of a row.
type RowLabel struct {
	Label Symbol
	Type  Type
}

// TypeRow is ( label :: type, ... | tail ).
type TypeRow struct {
	Labels []RowLabel
	Tail   *Type
}

// TypeRecord is { row }.
type TypeRecord struct {
	Row TypeRow
}

// TypeString is a type-level string literal.
type TypeString struct {
	Value string
}

// TypeInt is a type-level integer literal.
type TypeInt struct {
	Value uint64
}

// TypeArrow is the function type constructor written as (->).
type TypeArrow struct{}

func (*TypeVar) typeKind()         {}
func (*TypeConstructor) typeKind() {}
func (*TypeApp) typeKind()         {}
func (*TypeFunc) typeKind()        {}
func (*TypeConstrained) typeKind() {}
func (*TypeForall) typeKind()      {}
func (*TypeRow) typeKind()         {}
func (*TypeRecord) typeKind()      {}
func (*TypeString) typeKind()      {}
func (*TypeInt) typeKind()         {}
func (*TypeArrow) typeKind()       {}
