package index

import (
	"errors"
	"fmt"

	"github.com/zyla/purr/ast"
)

// ImportedDecl is one value visible in a module: the qualifier it is
// referred to by (zero for unqualified) and the declaration it names.
type ImportedDecl struct {
	Qualifier ast.Symbol
	ID        DeclID
}

func (d ImportedDecl) String() string {
	if d.Qualifier.IsZero() {
		return d.ID.String()
	}
	return d.Qualifier.String() + " " + d.ID.String()
}

// QualifiedName is the name the declaration is referred to by in source.
func (d ImportedDecl) QualifiedName() ast.QualifiedName {
	return ast.QualifiedName{Qualifier: d.Qualifier, Name: d.ID.Name}
}

// Lookup finds an indexed module by name.
type Lookup func(name ast.Symbol) (*IndexedModule, bool)

// ImportedDecls lists the values visible in m: its own values, unqualified,
// followed by the values each import brings in under its alias.
func ImportedDecls(m *IndexedModule, lookup Lookup) ([]ImportedDecl, error) {
	var out []ImportedDecl
	for _, v := range m.Values {
		out = append(out, ImportedDecl{ID: DeclID{Module: m.Name, Name: v.Name}})
	}
	var errs []error
	for _, imp := range m.Module.Imports {
		ids, err := importValues(imp, lookup)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, id := range ids {
			out = append(out, ImportedDecl{Qualifier: imp.Alias, ID: id})
		}
	}
	return out, errors.Join(errs...)
}

func importValues(imp *ast.Import, lookup Lookup) ([]DeclID, error) {
	target, ok := lookup(imp.Module)
	if !ok {
		return nil, &Error{Span: imp.Span, Msg: fmt.Sprintf("unknown module %s", imp.Module)}
	}
	exported, err := Exports(target, lookup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imp.Module, err)
	}
	if !imp.Explicit {
		return exported, nil
	}

	byName := make(map[ast.Symbol]DeclID, len(exported))
	for _, id := range exported {
		byName[id.Name] = id
	}
	listed := make(map[ast.Symbol]bool)
	for _, it := range imp.Items {
		names, err := itemValues(target, it, byName)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			listed[n] = true
		}
	}

	var ids []DeclID
	for _, id := range exported {
		if listed[id.Name] != imp.Hiding {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// itemValues returns the value names an import item refers to.
func itemValues(target *IndexedModule, it ast.Item, exported map[ast.Symbol]DeclID) ([]ast.Symbol, error) {
	switch it.Kind {
	case ast.ItemValue:
		if _, ok := exported[it.Name]; !ok {
			return nil, &Error{Span: it.Span, Msg: fmt.Sprintf("module %s does not export %s", target.Name, it.Name)}
		}
		return []ast.Symbol{it.Name}, nil
	case ast.ItemClass:
		c, ok := target.Class(it.Name)
		if !ok {
			return nil, &Error{Span: it.Span, Msg: fmt.Sprintf("module %s does not export class %s", target.Name, it.Name)}
		}
		return c.Methods, nil
	}
	// Types, operators and modules name no values here.
	return nil, nil
}

// Exports lists the values m exports. Without an export list every value of
// m is exported. Re-exports of other modules are followed through lookup.
func Exports(m *IndexedModule, lookup Lookup) ([]DeclID, error) {
	return exports(m, lookup, map[ast.Symbol]bool{})
}

func exports(m *IndexedModule, lookup Lookup, visiting map[ast.Symbol]bool) ([]DeclID, error) {
	if visiting[m.Name] {
		return nil, fmt.Errorf("cyclic re-export through module %s", m.Name)
	}
	visiting[m.Name] = true
	defer delete(visiting, m.Name)

	own := func() []DeclID {
		ids := make([]DeclID, len(m.Values))
		for i, v := range m.Values {
			ids[i] = DeclID{Module: m.Name, Name: v.Name}
		}
		return ids
	}
	if m.Module.Exports == nil {
		return own(), nil
	}

	var ids []DeclID
	seen := make(map[DeclID]bool)
	add := func(id DeclID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, it := range m.Module.Exports {
		switch it.Kind {
		case ast.ItemValue:
			if _, ok := m.Value(it.Name); !ok {
				return nil, &Error{Span: it.Span, Msg: fmt.Sprintf("cannot export unknown value %s", it.Name)}
			}
			add(DeclID{Module: m.Name, Name: it.Name})
		case ast.ItemClass:
			c, ok := m.Class(it.Name)
			if !ok {
				return nil, &Error{Span: it.Span, Msg: fmt.Sprintf("cannot export unknown class %s", it.Name)}
			}
			for _, method := range c.Methods {
				add(DeclID{Module: m.Name, Name: method})
			}
		case ast.ItemModule:
			if it.Name == m.Name {
				for _, id := range own() {
					add(id)
				}
				continue
			}
			found := false
			for _, imp := range m.Module.Imports {
				if imp.Alias != it.Name && !(imp.Alias.IsZero() && imp.Module == it.Name) {
					continue
				}
				found = true
				target, ok := lookup(imp.Module)
				if !ok {
					return nil, &Error{Span: imp.Span, Msg: fmt.Sprintf("unknown module %s", imp.Module)}
				}
				if _, err := exports(target, lookup, visiting); err != nil {
					return nil, err
				}
				reexported, err := importValues(imp, lookup)
				if err != nil {
					return nil, err
				}
				for _, id := range reexported {
					add(id)
				}
			}
			if !found {
				return nil, &Error{Span: it.Span, Msg: fmt.Sprintf("cannot re-export module %s, it is not imported", it.Name)}
			}
		}
	}
	return ids, nil
}
