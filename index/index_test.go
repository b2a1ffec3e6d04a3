package index

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zyla/purr/ast"
	"github.com/zyla/purr/parser"
)

func parse(t *testing.T, ctx *ast.Context, src string) *ast.Module {
	t.Helper()
	r := parser.ParseModule(ctx, src)
	require.NoError(t, r.Err)
	require.Empty(t, r.Errors)
	return r.Value
}

func indexOK(t *testing.T, ctx *ast.Context, src string) *IndexedModule {
	t.Helper()
	im, err := Index(parse(t, ctx, src))
	require.NoError(t, err)
	return im
}

func valueNames(im *IndexedModule) []string {
	var names []string
	for _, v := range im.Values {
		names = append(names, v.Name.String())
	}
	return names
}

func TestIndexValues(t *testing.T) {
	ctx := ast.NewContext()
	im := indexOK(t, ctx, `module M where
f :: Int -> Int
f 0 = 1
f n = n
g = 2
foreign import h :: Int
class Show a where
  show :: a -> String
`)
	assert.Equal(t, []string{"f", "g", "h", "show"}, valueNames(im))

	f, ok := im.Value(ctx.Intern("f"))
	require.True(t, ok)
	assert.Equal(t, ValueEquations, f.Kind)
	require.NotNil(t, f.Type)
	assert.Equal(t, "(-> Int Int)", f.Type.Value.String())
	assert.Len(t, f.Equations, 2)

	h, _ := im.Value(ctx.Intern("h"))
	assert.Equal(t, ValueForeign, h.Kind)
	assert.Empty(t, h.Equations)

	show, _ := im.Value(ctx.Intern("show"))
	assert.Equal(t, ValueMethod, show.Kind)
	assert.Equal(t, "Show", show.Class.String())
}

func TestIndexTypesAndInstances(t *testing.T) {
	ctx := ast.NewContext()
	im := indexOK(t, ctx, `module M where
data Maybe a = Nothing | Just a
type Name = String
foreign import data Effect :: Type
class Eq a
instance Eq Int
else instance Eq a
derive instance Eq Name
`)
	require.Len(t, im.Types, 3)
	maybe, ok := im.Type(ctx.Intern("Maybe"))
	require.True(t, ok)
	assert.Equal(t, []ast.Symbol{ctx.Intern("Nothing"), ctx.Intern("Just")}, maybe.Constructors)
	_, ok = im.Class(ctx.Intern("Eq"))
	assert.True(t, ok)
	assert.Len(t, im.Instances, 3)
}

func TestIndexErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"duplicate signature", "x :: Int\nx :: Int\nx = 1\n", "duplicate type signature for x"},
		{"lonely signature", "x :: Int\n", "the type signature for x lacks an accompanying value"},
		{"non adjacent", "f 1 = 1\ng = 2\nf 2 = 3\n", "the equations for f are not adjacent"},
		{"duplicate type", "data T = A\ntype T = Int\n", "duplicate type declaration T"},
		{"duplicate class", "class C a\nclass C b\n", "duplicate class declaration C"},
		{"foreign twice", "foreign import x :: Int\nx = 1\n", "duplicate value declaration x"},
		{"top level binding", "Tuple a b = t\n", "pattern bindings are not allowed at the top level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ast.NewContext()
			im, err := Index(parse(t, ctx, "module M where\n"+tt.src))
			require.Error(t, err)
			assert.NotNil(t, im)
			assert.Contains(t, err.Error(), tt.msg)

			var ierr *Error
			require.ErrorAs(t, err, &ierr)
			assert.Positive(t, ierr.Span.Len())
		})
	}
}

// workspace indexes several modules and serves them by name.
type workspace map[string]*IndexedModule

func newWorkspace(t *testing.T, ctx *ast.Context, srcs ...string) workspace {
	t.Helper()
	ws := workspace{}
	for _, src := range srcs {
		im := indexOK(t, ctx, src)
		ws[im.Name.String()] = im
	}
	return ws
}

func (ws workspace) lookup(name ast.Symbol) (*IndexedModule, bool) {
	im, ok := ws[name.String()]
	return im, ok
}

func render(decls []ImportedDecl) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		out[i] = d.String()
	}
	sort.Strings(out)
	return out
}

const libA = `module A where
a1 = 1
a2 = 2
class C x where
  method :: x
`

func TestImportedDecls(t *testing.T) {
	tests := []struct {
		name string
		imp  string
		want []string
	}{
		{"open", "import A", []string{"A.a1", "A.a2", "A.method"}},
		{"alias", "import A as Q", []string{"Q A.a1", "Q A.a2", "Q A.method"}},
		{"explicit", "import A (a1)", []string{"A.a1"}},
		{"class", "import A (class C)", []string{"A.method"}},
		{"hiding", "import A hiding (a1)", []string{"A.a2", "A.method"}},
		{"explicit alias", "import A (a2) as Q", []string{"Q A.a2"}},
		{"types only", "import A (C)", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ast.NewContext()
			ws := newWorkspace(t, ctx, libA, "module B where\n"+tt.imp+"\nb = 1\n")
			decls, err := ImportedDecls(ws["B"], ws.lookup)
			require.NoError(t, err)
			want := append([]string{"B.b"}, tt.want...)
			sort.Strings(want)
			assert.Equal(t, want, render(decls))
		})
	}
}

func TestImportedDeclsExportList(t *testing.T) {
	ctx := ast.NewContext()
	ws := newWorkspace(t, ctx,
		libA,
		"module R (r, module A, module Q) where\nimport A (a1)\nimport A (a2) as Q\nr = 1\nhidden = 2\n",
		"module U where\nimport R\n",
	)
	decls, err := ImportedDecls(ws["U"], ws.lookup)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.a1", "A.a2", "R.r"}, render(decls))
}

func TestImportedDeclsErrors(t *testing.T) {
	tests := []struct {
		name string
		srcs []string
		msg  string
	}{
		{"unknown module", []string{"module B where\nimport Nope\n"}, "unknown module Nope"},
		{"unknown item", []string{libA, "module B where\nimport A (zzz)\n"}, "module A does not export zzz"},
		{"unknown class", []string{libA, "module B where\nimport A (class D)\n"}, "module A does not export class D"},
		{"bad export", []string{"module A (nope) where\n", "module B where\nimport A\n"}, "cannot export unknown value nope"},
		{
			"cyclic re-export",
			[]string{"module A (module C) where\nimport C\n", "module C (module A) where\nimport A\n", "module B where\nimport A\n"},
			"cyclic re-export",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ast.NewContext()
			ws := newWorkspace(t, ctx, tt.srcs...)
			_, err := ImportedDecls(ws["B"], ws.lookup)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.msg), err.Error())
		})
	}
}
