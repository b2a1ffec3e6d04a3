package ast

import "fmt"

// Check validates an AST without modifying it.
type Check interface {
	Name() string
	Check(m *Module) error
}

// CheckChain runs checks in order, stopping at the first error.
type CheckChain []Check

// Run executes each check in sequence. Returns nil if all pass.
func (cc CheckChain) Run(m *Module) error {
	for _, c := range cc {
		if err := c.Check(m); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
	}
	return nil
}

// CheckFunc adapts a named function to the Check interface.
type CheckFunc struct {
	N string
	F func(*Module) error
}

func (c CheckFunc) Name() string         { return c.N }
func (c CheckFunc) Check(m *Module) error { return c.F(m) }

// PseudoExprError reports a parser-only expression that survived
// normalization.
type PseudoExprError struct {
	Expr Expr
}

func (e *PseudoExprError) Error() string {
	return fmt.Sprintf("pseudo-expression %s survived parsing", e.Expr)
}

// Pos returns the span of the offending expression.
func (e *PseudoExprError) Pos() Span { return e.Expr.Span }

// NoPseudoExprs fails if a RecordUpdateSuffix or NamedPat is left anywhere
// in the module.
var NoPseudoExprs = CheckFunc{N: "no-pseudo-exprs", F: func(m *Module) error {
	var found *Expr
	WalkExprs(m, func(e Expr) bool {
		if IsPseudo(e.Value) {
			found = &e
			return true
		}
		return false
	})
	if found != nil {
		return &PseudoExprError{Expr: *found}
	}
	return nil
}}

// SpanError reports an expression whose span is inverted or escapes the
// module.
type SpanError struct {
	Span Span
}

func (e *SpanError) Error() string { return "malformed span " + e.Span.String() }

// Pos returns the offending span.
func (e *SpanError) Pos() Span { return e.Span }

// WellFormedSpans fails if an expression span is inverted or lies outside
// the module span.
var WellFormedSpans = CheckFunc{N: "spans", F: func(m *Module) error {
	var bad *Span
	WalkExprs(m, func(e Expr) bool {
		s := e.Span
		if s.Start > s.End || s.Start < m.Span.Start || s.End > m.Span.End {
			bad = &s
			return true
		}
		return false
	})
	if bad != nil {
		return &SpanError{Span: *bad}
	}
	return nil
}}

// CheckModule runs the checks every parsed module must pass before it is
// handed to later passes.
func CheckModule(m *Module) error {
	return CheckChain{NoPseudoExprs, WellFormedSpans}.Run(m)
}
