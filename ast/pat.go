package ast

import "fmt"

// Pat is a pattern node tagged with its source span.
type Pat = Located[PatKind]

// PatKind is the closed set of pattern shapes.
type PatKind interface {
	fmt.Stringer
	patKind()
}

// LiteralPat matches a literal.
type LiteralPat struct {
	Lit Literal[Pat]
}

// InfixPat is an operator pattern chain with unresolved precedence.
type InfixPat struct {
	First Pat
	Rest  []InfixPatPart
}

// InfixPatPart is one (operator, operand) pair of an InfixPat.
type InfixPatPart struct {
	Op      QualifiedName
	Operand Pat
}

// VarPat binds a variable.
type VarPat struct {
	Name Symbol
}

// ConstructorPat is a data constructor applied to zero or more patterns.
type ConstructorPat struct {
	Name QualifiedName
	Args []Pat
}

// WildcardPat is _.
type WildcardPat struct{}

// AsPat is name@pattern.
type AsPat struct {
	Name Symbol
	Pat  Pat
}

// TypedPat is pattern :: type.
type TypedPat struct {
	Pat  Pat
	Type Type
}

func (*LiteralPat) patKind()     {}
func (*InfixPat) patKind()       {}
func (*VarPat) patKind()         {}
func (*ConstructorPat) patKind() {}
func (*WildcardPat) patKind()    {}
func (*AsPat) patKind()          {}
func (*TypedPat) patKind()       {}
