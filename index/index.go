// Package index groups the declarations of a parsed module by name and
// computes the set of values visible to it through its imports.
package index

import (
	"errors"
	"fmt"

	"github.com/zyla/purr/ast"
)

// DeclID identifies a declaration by its owning module and name.
type DeclID struct {
	Module ast.Symbol
	Name   ast.Symbol
}

// AbsoluteName returns the resolved name of the declaration.
func (id DeclID) AbsoluteName() ast.AbsoluteName {
	return ast.AbsoluteName{Module: id.Module, Name: id.Name}
}

func (id DeclID) String() string { return id.AbsoluteName().String() }

// ValueKind tells how a value was declared.
type ValueKind int

const (
	ValueEquations ValueKind = iota // f x = ...
	ValueForeign                    // foreign import f :: T
	ValueMethod                     // class member signature
)

// ValueDecl is every declaration of one value name: an optional type
// signature followed by its equations, in source order.
type ValueDecl struct {
	Kind      ValueKind
	Name      ast.Symbol
	Span      ast.Span // first declaration mentioning the name
	Type      *ast.Type
	Class     ast.Symbol // owning class of a method
	Equations []*ast.ValueEquation
}

// TypeDecl is a data type, newtype, synonym or foreign data type.
type TypeDecl struct {
	Name         ast.Symbol
	Span         ast.Span
	Decl         ast.DeclKind
	Constructors []ast.Symbol
}

// ClassDecl is a type class with its method names.
type ClassDecl struct {
	Name    ast.Symbol
	Span    ast.Span
	Decl    *ast.ClassDecl
	Methods []ast.Symbol
}

// IndexedModule is a module with its declarations grouped by name.
type IndexedModule struct {
	Name      ast.Symbol
	Module    *ast.Module
	Values    []*ValueDecl // in order of first appearance
	Types     []*TypeDecl
	Classes   []*ClassDecl
	Instances []*ast.InstanceDecl // chains flattened, derived instances included

	values  map[ast.Symbol]*ValueDecl
	types   map[ast.Symbol]*TypeDecl
	classes map[ast.Symbol]*ClassDecl
}

// Value returns the value declared under name.
func (im *IndexedModule) Value(name ast.Symbol) (*ValueDecl, bool) {
	v, ok := im.values[name]
	return v, ok
}

// Type returns the type declared under name.
func (im *IndexedModule) Type(name ast.Symbol) (*TypeDecl, bool) {
	t, ok := im.types[name]
	return t, ok
}

// Class returns the class declared under name.
func (im *IndexedModule) Class(name ast.Symbol) (*ClassDecl, bool) {
	c, ok := im.classes[name]
	return c, ok
}

// Error is an indexing error at a declaration.
type Error struct {
	Span ast.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Pos returns the span of the offending declaration.
func (e *Error) Pos() ast.Span { return e.Span }

type indexer struct {
	im   *IndexedModule
	errs []error
	last ast.Symbol // value of the previous declaration, for contiguity
	done map[ast.Symbol]bool
}

func (ix *indexer) errorf(span ast.Span, format string, args ...any) {
	ix.errs = append(ix.errs, &Error{Span: span, Msg: fmt.Sprintf(format, args...)})
}

// Index groups the declarations of m. All problems found are returned
// joined into one error; the module is indexed as far as possible either
// way.
func Index(m *ast.Module) (*IndexedModule, error) {
	ix := &indexer{
		im: &IndexedModule{
			Name:    m.Name,
			Module:  m,
			values:  make(map[ast.Symbol]*ValueDecl),
			types:   make(map[ast.Symbol]*TypeDecl),
			classes: make(map[ast.Symbol]*ClassDecl),
		},
		done: make(map[ast.Symbol]bool),
	}
	for _, d := range m.Decls {
		ix.decl(d)
	}
	ix.finishValue()
	for _, v := range ix.im.Values {
		if v.Kind == ValueEquations && len(v.Equations) == 0 {
			ix.errorf(v.Span, "the type signature for %s lacks an accompanying value", v.Name)
		}
	}
	return ix.im, errors.Join(ix.errs...)
}

// finishValue closes the run of equations of the previous value.
func (ix *indexer) finishValue() {
	if !ix.last.IsZero() {
		ix.done[ix.last] = true
		ix.last = ast.Symbol{}
	}
}

func (ix *indexer) value(name ast.Symbol, span ast.Span) *ValueDecl {
	if v, ok := ix.im.values[name]; ok {
		return v
	}
	v := &ValueDecl{Name: name, Span: span}
	ix.im.values[name] = v
	ix.im.Values = append(ix.im.Values, v)
	return v
}

func (ix *indexer) decl(d ast.Decl) {
	if eq, ok := d.Value.(*ast.ValueEquation); ok {
		if ix.last != eq.Name {
			ix.finishValue()
		}
		if ix.done[eq.Name] {
			ix.errorf(d.Span, "the equations for %s are not adjacent", eq.Name)
			return
		}
		v := ix.value(eq.Name, d.Span)
		if v.Kind != ValueEquations {
			ix.errorf(d.Span, "duplicate value declaration %s", eq.Name)
			return
		}
		v.Equations = append(v.Equations, eq)
		ix.last = eq.Name
		return
	}
	ix.finishValue()

	switch x := d.Value.(type) {
	case *ast.TypeSignature:
		if existing, ok := ix.im.values[x.Name]; ok && (existing.Type != nil || len(existing.Equations) > 0) {
			ix.errorf(d.Span, "duplicate type signature for %s", x.Name)
			return
		}
		v := ix.value(x.Name, d.Span)
		v.Type = &x.Type
		// A signature opens the run of equations that must follow it.
		ix.last = x.Name
	case *ast.ForeignValue:
		if _, ok := ix.im.values[x.Name]; ok {
			ix.errorf(d.Span, "duplicate value declaration %s", x.Name)
			return
		}
		v := ix.value(x.Name, d.Span)
		v.Kind = ValueForeign
		v.Type = &x.Type
	case *ast.PatternBinding:
		ix.errorf(d.Span, "pattern bindings are not allowed at the top level")
	case *ast.DataDecl:
		td := ix.typeDecl(x.Name, d)
		if td == nil {
			return
		}
		for _, c := range x.Constructors {
			td.Constructors = append(td.Constructors, c.Name)
		}
	case *ast.TypeSynonym:
		ix.typeDecl(x.Name, d)
	case *ast.ForeignData:
		ix.typeDecl(x.Name, d)
	case *ast.ClassDecl:
		ix.classDecl(x, d.Span)
	case *ast.InstanceChain:
		ix.im.Instances = append(ix.im.Instances, x.Instances...)
	case *ast.DeriveDecl:
		ix.im.Instances = append(ix.im.Instances, x.Instance)
	}
}

func (ix *indexer) typeDecl(name ast.Symbol, d ast.Decl) *TypeDecl {
	if _, ok := ix.im.types[name]; ok {
		ix.errorf(d.Span, "duplicate type declaration %s", name)
		return nil
	}
	if _, ok := ix.im.classes[name]; ok {
		ix.errorf(d.Span, "type %s conflicts with a class of the same name", name)
		return nil
	}
	td := &TypeDecl{Name: name, Span: d.Span, Decl: d.Value}
	ix.im.types[name] = td
	ix.im.Types = append(ix.im.Types, td)
	return td
}

func (ix *indexer) classDecl(c *ast.ClassDecl, span ast.Span) {
	if _, ok := ix.im.classes[c.Name]; ok {
		ix.errorf(span, "duplicate class declaration %s", c.Name)
		return
	}
	if _, ok := ix.im.types[c.Name]; ok {
		ix.errorf(span, "class %s conflicts with a type of the same name", c.Name)
		return
	}
	cd := &ClassDecl{Name: c.Name, Span: span, Decl: c}
	for _, member := range c.Body {
		sig, ok := member.Value.(*ast.TypeSignature)
		if !ok {
			ix.errorf(member.Span, "class %s may only contain type signatures", c.Name)
			continue
		}
		if _, dup := ix.im.values[sig.Name]; dup {
			ix.errorf(member.Span, "duplicate value declaration %s", sig.Name)
			continue
		}
		v := ix.value(sig.Name, member.Span)
		v.Kind = ValueMethod
		v.Type = &sig.Type
		v.Class = c.Name
		cd.Methods = append(cd.Methods, sig.Name)
	}
	ix.im.classes[c.Name] = cd
	ix.im.Classes = append(ix.im.Classes, cd)
}
