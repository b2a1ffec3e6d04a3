package rename

import (
	"fmt"
	"strings"

	"github.com/zyla/purr/ast"
)

// ErrorKind classifies renaming failures.
type ErrorKind int

const (
	Unresolved ErrorKind = iota
	DuplicateBinder
	Ambiguous
	NotImplemented
)

var errorKindNames = [...]string{
	Unresolved:      "unresolved name",
	DuplicateBinder: "duplicate binder",
	Ambiguous:       "ambiguous name",
	NotImplemented:  "not yet implemented",
}

func (k ErrorKind) String() string { return errorKindNames[k] }

// Error is one renaming failure.
type Error struct {
	Kind       ErrorKind
	Span       ast.Span
	Name       string // offending name, if any
	Detail     string
	Suggestion string // closest known name for unresolved names
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Name != "" {
		fmt.Fprintf(&b, " %s", e.Name)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %s?)", e.Suggestion)
	}
	return b.String()
}

// Pos returns the span of the offending node.
func (e *Error) Pos() ast.Span { return e.Span }

// ErrorList collects the errors of one module.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns l as an error, or nil when it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
