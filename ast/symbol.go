package ast

import (
	"strings"
	"sync"
)

// Symbol is an interned identifier. Two symbols are equal exactly when they
// were interned from the same text by the same Context.
type Symbol struct {
	name *string
}

// String returns the identifier text.
func (s Symbol) String() string {
	if s.name == nil {
		return ""
	}
	return *s.name
}

// IsZero reports whether s is the zero Symbol (no identifier).
func (s Symbol) IsZero() bool { return s.name == nil }

// Context is the compilation context shared by every pass. It owns the
// symbol interner; all other name types only refer into it.
//
// A Context is safe for concurrent use. Renaming only reads from it.
type Context struct {
	mu      sync.RWMutex
	symbols map[string]*string
}

// NewContext returns an empty compilation context.
func NewContext() *Context {
	return &Context{symbols: make(map[string]*string)}
}

// Intern returns the Symbol for text, creating it on first use.
func (c *Context) Intern(text string) Symbol {
	c.mu.RLock()
	p, ok := c.symbols[text]
	c.mu.RUnlock()
	if ok {
		return Symbol{name: p}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.symbols[text]; ok {
		return Symbol{name: p}
	}
	s := strings.Clone(text)
	c.symbols[s] = &s
	return Symbol{name: &s}
}

// Lookup returns the Symbol for text if it has already been interned.
func (c *Context) Lookup(text string) (Symbol, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.symbols[text]
	if !ok {
		return Symbol{}, false
	}
	return Symbol{name: p}, true
}

// Len returns the number of interned symbols.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.symbols)
}

// Name builds a QualifiedName from source text such as "x" or
// "Data.Maybe.fromJust".
func (c *Context) Name(text string) QualifiedName {
	if i := strings.LastIndexByte(text, '.'); i > 0 && i < len(text)-1 {
		return QualifiedName{Qualifier: c.Intern(text[:i]), Name: c.Intern(text[i+1:])}
	}
	return QualifiedName{Name: c.Intern(text)}
}

// QualifiedName is a name as written in source: an optional module
// qualifier plus a symbol.
type QualifiedName struct {
	Qualifier Symbol // zero when unqualified
	Name      Symbol
}

// Unqualified returns the unqualified name for sym.
func Unqualified(sym Symbol) QualifiedName { return QualifiedName{Name: sym} }

// IsQualified reports whether the name carries a module qualifier.
func (q QualifiedName) IsQualified() bool { return !q.Qualifier.IsZero() }

func (q QualifiedName) String() string {
	if q.Qualifier.IsZero() {
		return q.Name.String()
	}
	return q.Qualifier.String() + "." + q.Name.String()
}

// AbsoluteName identifies a binding by its owning module.
type AbsoluteName struct {
	Module Symbol
	Name   Symbol
}

// ToQualifiedName re-expresses the absolute name as a name qualified by its
// defining module.
func (a AbsoluteName) ToQualifiedName() QualifiedName {
	return QualifiedName{Qualifier: a.Module, Name: a.Name}
}

func (a AbsoluteName) String() string {
	return a.Module.String() + "." + a.Name.String()
}
