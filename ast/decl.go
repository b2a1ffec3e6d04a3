package ast

import "fmt"

// Module is the root node of a parsed source file.
type Module struct {
	Span    Span
	Name    Symbol // dotted module name, e.g. "Data.Maybe"
	Exports []Item // nil when the header has no export list
	Imports []*Import
	Decls   []Decl
}

// ItemKind classifies entries of export and import lists.
type ItemKind int

const (
	ItemValue   ItemKind = iota // foo
	ItemValueOp                 // (+~)
	ItemType                    // Maybe, Maybe(..), Maybe(Just, Nothing)
	ItemTypeOp                  // type (<>)
	ItemClass                   // class Applicative
	ItemModule                  // module Data.Functor
)

var itemKindNames = [...]string{
	ItemValue:   "value",
	ItemValueOp: "operator",
	ItemType:    "type",
	ItemTypeOp:  "type operator",
	ItemClass:   "class",
	ItemModule:  "module",
}

func (k ItemKind) String() string { return itemKindNames[k] }

// Item is one entry of an export or import list.
type Item struct {
	Span       Span
	Kind       ItemKind
	Name       Symbol
	Members    []Symbol // explicit constructor list of a type item
	AllMembers bool     // Type(..)
}

// Import is import M [(items) | hiding (items)] [as Q].
type Import struct {
	Span     Span
	Module   Symbol
	Explicit bool // an item list was given
	Hiding   bool
	Items    []Item
	Alias    Symbol // zero when there is no "as" clause
}

// Decl is a declaration node tagged with its source span.
type Decl = Located[DeclKind]

// DeclKind is the closed set of declaration shapes.
type DeclKind interface {
	fmt.Stringer
	declKind()
}

// TypeSignature is name :: type.
type TypeSignature struct {
	Name Symbol
	Type Type
}

// ValueEquation is one clause of a value definition: name pats = body.
type ValueEquation struct {
	Name   Symbol
	Params []Pat
	Body   GuardedBody
}

// PatternBinding is a destructuring binding, pat = body.
type PatternBinding struct {
	Pat  Pat
	Body GuardedBody
}

// TypeSynonym is type Name params = type.
type TypeSynonym struct {
	Name   Symbol
	Params []TypeParam
	Type   Type
}

// ConstructorDecl is one constructor of a data or newtype declaration.
type ConstructorDecl struct {
	Span   Span
	Name   Symbol
	Fields []Type
}

// DataDecl is data Name params = C1 ... | C2 ..., or a newtype.
type DataDecl struct {
	Newtype      bool
	Name         Symbol
	Params       []TypeParam
	Constructors []ConstructorDecl
}

// ForeignValue is foreign import name :: type.
type ForeignValue struct {
	Name Symbol
	Type Type
}

// ForeignData is foreign import data Name [:: kind].
type ForeignData struct {
	Name Symbol
	Kind *Type
}

// ClassDecl is class constraints <= Name params where body.
type ClassDecl struct {
	Constraints []Type
	Name        Symbol
	Params      []TypeParam
	Body        []Decl
}

// InstanceDecl is a single instance head with its body.
type InstanceDecl struct {
	Span        Span
	Name        Symbol // zero for anonymous instances
	Constraints []Type
	Class       QualifiedName
	Args        []Type
	Body        []Decl
}

// InstanceChain is instance ... else instance ...; a lone instance is a
// chain of length one.
type InstanceChain struct {
	Instances []*InstanceDecl
}

// DeriveDecl is derive [newtype] instance head.
type DeriveDecl struct {
	Newtype  bool
	Instance *InstanceDecl
}

func (*TypeSignature) declKind()  {}
func (*ValueEquation) declKind()  {}
func (*PatternBinding) declKind() {}
func (*TypeSynonym) declKind()    {}
func (*DataDecl) declKind()       {}
func (*ForeignValue) declKind()   {}
func (*ForeignData) declKind()    {}
func (*ClassDecl) declKind()      {}
func (*InstanceChain) declKind()  {}
func (*DeriveDecl) declKind()     {}
