package ast

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatedString(t *testing.T) {
	ctx := NewContext()
	e := At[ExprKind](NewSpan(3, 7), &Var{Name: ctx.Name("x")})
	assert.Equal(t, "x 3:7", e.String())
	assert.Equal(t, "x", e.Inner().String())
}

func TestSpanJoin(t *testing.T) {
	assert.Equal(t, NewSpan(2, 9), NewSpan(5, 9).Join(NewSpan(2, 4)))
	assert.Equal(t, 4, NewSpan(2, 6).Len())
}

// Expr is passed by value everywhere; growing it is a visible change.
func TestExprSize(t *testing.T) {
	assert.Equal(t, uintptr(32), unsafe.Sizeof(Expr{}))
}

func TestInternIdentity(t *testing.T) {
	ctx := NewContext()
	a := ctx.Intern("foo")
	b := ctx.Intern(string([]byte{'f', 'o', 'o'}))
	// Symbols compare by pointer; assert.Equal would compare the text.
	assert.True(t, a == b)
	assert.False(t, a == ctx.Intern("bar"))
	assert.False(t, a == NewContext().Intern("foo"), "symbols of different contexts differ")

	got, ok := ctx.Lookup("foo")
	require.True(t, ok)
	assert.True(t, a == got)
	_, ok = ctx.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, ctx.Len())
}

func TestInternConcurrent(t *testing.T) {
	ctx := NewContext()
	names := []string{"a", "b", "c", "d"}
	results := make([][]Symbol, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, n := range names {
				results[i] = append(results[i], ctx.Intern(n))
			}
		}()
	}
	wg.Wait()
	for _, r := range results[1:] {
		for j := range r {
			assert.True(t, results[0][j] == r[j], names[j])
		}
	}
	assert.Equal(t, len(names), ctx.Len())
}

func TestContextName(t *testing.T) {
	ctx := NewContext()
	q := ctx.Name("Data.Maybe.fromJust")
	assert.True(t, q.IsQualified())
	assert.Equal(t, "Data.Maybe", q.Qualifier.String())
	assert.Equal(t, "fromJust", q.Name.String())

	op := ctx.Name(".")
	assert.False(t, op.IsQualified())
	assert.Equal(t, ".", op.Name.String())

	abs := AbsoluteName{Module: ctx.Intern("Data.Maybe"), Name: ctx.Intern("fromJust")}
	assert.Equal(t, q, abs.ToQualifiedName())
}

func TestEqualLiteralObjectOrder(t *testing.T) {
	ctx := NewContext()
	one := At[ExprKind](NewSpan(0, 1), &LiteralExpr{Lit: IntLit{Value: 1}})
	two := At[ExprKind](NewSpan(5, 6), &LiteralExpr{Lit: IntLit{Value: 2}})
	a := ObjectLit[Expr]{Fields: []Field[Expr]{{Label: ctx.Intern("x"), Value: one}, {Label: ctx.Intern("y"), Value: two}}}
	b := ObjectLit[Expr]{Fields: []Field[Expr]{{Label: ctx.Intern("y"), Value: two}, {Label: ctx.Intern("x"), Value: one}}}
	c := ObjectLit[Expr]{Fields: []Field[Expr]{{Label: ctx.Intern("x"), Value: two}, {Label: ctx.Intern("y"), Value: one}}}

	assert.True(t, EqualLiteral[Expr](a, b, EqualExpr))
	assert.False(t, EqualLiteral[Expr](a, c, EqualExpr))
	assert.True(t, EqualLiteral[Expr](IntLit{Value: 3}, IntLit{Value: 3}, EqualExpr))
	assert.False(t, EqualLiteral[Expr](IntLit{Value: 3}, StringLit{Value: "3"}, EqualExpr))
}

func TestEqualIgnoresSpans(t *testing.T) {
	b1, b2 := newBuilder(), newBuilder()
	b2.ctx = b1.ctx
	b2.pos = 100
	e1 := b1.app(b1.ctor("Just"), b1.integer(1))
	e2 := b2.app(b2.ctor("Just"), b2.integer(1))
	assert.NotEqual(t, e1.Span, e2.Span)
	assert.True(t, EqualExpr(e1, e2))
	assert.False(t, EqualExpr(e1, b1.app(b1.ctor("Just"), b1.integer(2))))
}

func TestTypeString(t *testing.T) {
	b := newBuilder()
	ty := b.tapp(b.tcon("Either"), b.tcon("String"), b.tvar("a"))
	assert.Equal(t, "(Either String a)", ty.Value.String())

	row := At[TypeKind](b.span(), &TypeRecord{Row: TypeRow{
		Labels: []RowLabel{{Label: b.ctx.Intern("foo"), Type: b.tcon("Int")}},
		Tail:   ptr(b.tvar("r")),
	}})
	assert.Equal(t, "(record foo :: Int | r)", row.Value.String())
}

func TestCheckModule(t *testing.T) {
	b := newBuilder()
	body := b.app(b.v("f"), b.expr(&NamedPat{Name: b.ctx.Intern("x"), Expr: b.v("y")}))
	m := &Module{
		Span: NewSpan(0, 100),
		Name: b.ctx.Intern("Test"),
		Decls: []Decl{At[DeclKind](b.span(), &ValueEquation{
			Name: b.ctx.Intern("g"),
			Body: &Unconditional{Expr: body},
		})},
	}

	err := CheckModule(m)
	require.Error(t, err)
	var perr *PseudoExprError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "no-pseudo-exprs")

	m.Decls[0].Value.(*ValueEquation).Body = &Unconditional{Expr: b.app(b.v("f"), b.v("y"))}
	assert.NoError(t, CheckModule(m))

	m.Span = NewSpan(0, 1)
	var serr *SpanError
	assert.ErrorAs(t, CheckModule(m), &serr)
}

func TestWalkExprStops(t *testing.T) {
	b := newBuilder()
	e := b.app(b.v("f"), b.v("a"), b.v("b"))
	var seen []string
	WalkExpr(e, func(e Expr) bool {
		seen = append(seen, e.Value.String())
		return e.Value.String() == "a"
	})
	assert.Equal(t, []string{"(app f a b)", "f", "a"}, seen)
}
