package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// builder hands out consecutive one-byte spans so nodes stay distinguishable.
type builder struct {
	ctx *Context
	pos int
}

func newBuilder() *builder { return &builder{ctx: NewContext()} }

func (b *builder) span() Span {
	b.pos++
	return NewSpan(b.pos, b.pos+1)
}

func (b *builder) expr(k ExprKind) Expr { return At(b.span(), k) }

func (b *builder) v(name string) Expr { return b.expr(&Var{Name: b.ctx.Name(name)}) }

func (b *builder) ctor(name string) Expr { return b.expr(&DataConstructor{Name: b.ctx.Name(name)}) }

func (b *builder) integer(n uint64) Expr { return b.expr(&LiteralExpr{Lit: IntLit{Value: n}}) }

func (b *builder) fields(kv ...any) []FieldUpdate {
	var out []FieldUpdate
	for i := 0; i < len(kv); i += 2 {
		out = append(out, FieldUpdate{Label: b.ctx.Intern(kv[i].(string)), Value: kv[i+1].(Expr)})
	}
	return out
}

func (b *builder) app(f Expr, args ...Expr) Expr {
	for _, a := range args {
		f = At(f.Span.Join(a.Span), NormalizeApp(f, a))
	}
	return f
}

func (b *builder) tcon(name string) Type { return At[TypeKind](b.span(), &TypeConstructor{Name: b.ctx.Name(name)}) }

func (b *builder) tvar(name string) Type { return At[TypeKind](b.span(), &TypeVar{Name: b.ctx.Intern(name)}) }

func (b *builder) tapp(f Type, args ...Type) Type {
	for _, a := range args {
		f = At[TypeKind](f.Span.Join(a.Span), &TypeApp{Func: f, Arg: a})
	}
	return f
}

func TestNormalizeAppFlattens(t *testing.T) {
	b := newBuilder()
	e := b.app(b.v("f"), b.v("a"), b.v("b"), b.v("c"))

	app, ok := e.Value.(*App)
	require.True(t, ok)
	assert.Len(t, app.Args, 3)
	_, nested := app.Func.Value.(*App)
	assert.False(t, nested, "function position must never hold an App")
	assert.Equal(t, "(app f a b c)", e.Value.String())
	assert.Equal(t, NewSpan(1, 5), e.Span)
}

func TestNormalizeAppFreshApp(t *testing.T) {
	b := newBuilder()
	f := b.ctor("Just")
	kind := NormalizeApp(f, b.integer(1))
	assert.Equal(t, "(app Just 1)", kind.String())
}

func TestApplyRecordUpdatesChains(t *testing.T) {
	b := newBuilder()
	f, r := b.v("f"), b.v("r")
	s1 := b.expr(&RecordUpdateSuffix{Fields: b.fields("x", b.integer(1))})
	s2 := b.expr(&RecordUpdateSuffix{Fields: b.fields("y", b.integer(2))})
	q := b.v("q")

	kind := ApplyRecordUpdates(f, []Expr{r, s1, s2, q})
	assert.Equal(t, "(app f (update (update r {x = 1}) {y = 2}) q)", kind.String())

	app := kind.(*App)
	require.Len(t, app.Args, 2)
	assert.Equal(t, s2.Span, app.Args[0].Span, "update takes the suffix span")
}

func TestApplyRecordUpdatesOnHead(t *testing.T) {
	b := newBuilder()
	r := b.v("r")
	s := b.expr(&RecordUpdateSuffix{Fields: b.fields("x", b.integer(1))})

	kind := ApplyRecordUpdates(r, []Expr{s})
	app := kind.(*App)
	assert.Empty(t, app.Args)
	assert.Equal(t, "(update r {x = 1})", app.Func.Value.String())
}

func TestExprToPat(t *testing.T) {
	b := newBuilder()
	ty := b.tcon("Int")
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"var", b.v("x"), "x"},
		{"constructor", b.ctor("Nothing"), "Nothing"},
		{"qualified constructor", b.ctor("M.Nothing"), "M.Nothing"},
		{"constructor app", b.app(b.ctor("Just"), b.v("x")), "(Just x)"},
		{"wildcard", b.expr(&Wildcard{}), "_"},
		{"typed", b.expr(&Typed{Expr: b.v("x"), Type: ty}), "(:: x Int)"},
		{"named", b.expr(&NamedPat{Name: b.ctx.Intern("x"), Expr: b.ctor("Nothing")}), "(as x Nothing)"},
		{"array literal", b.expr(&LiteralExpr{Lit: ArrayLit[Expr]{Elems: []Expr{b.v("a"), b.integer(1)}}}), "[a, 1]"},
		{"object literal", b.expr(&LiteralExpr{Lit: ObjectLit[Expr]{Fields: []Field[Expr]{
			{Label: b.ctx.Intern("foo"), Value: b.v("a")},
		}}}), "{foo: a}"},
		{"infix", b.expr(&Infix{First: b.v("x"), Rest: []InfixPart{
			{Op: InfixOp{Name: b.ctx.Name(":")}, Operand: b.v("xs")},
		}}), "(infix x : xs)"},
		{"backtick constructor", b.expr(&Infix{First: b.v("a"), Rest: []InfixPart{
			{Op: InfixOp{Backtick: ptr(b.ctor("Cons"))}, Operand: b.v("b")},
		}}), "(infix a Cons b)"},
		{"record update", b.expr(&RecordUpdate{Expr: b.v("r"), Fields: b.fields("a", b.v("p"))}), "(infix r a p)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ExprToPat(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Value.String())
			assert.Equal(t, tt.expr.Span, p.Span)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestExprToPatRejects(t *testing.T) {
	b := newBuilder()
	tests := []struct {
		name string
		expr Expr
		msg  string
	}{
		{"accessor", b.expr(&Accessor{Expr: b.v("r"), Field: b.ctx.Intern("x")}), "illegal record accessor in pattern"},
		{"qualified var", b.v("M.x"), "illegal qualified name in pattern"},
		{"app of var", b.app(b.v("f"), b.v("x")), "illegal pattern in data constructor position"},
		{"lambda", b.expr(&Lam{Params: nil, Body: b.v("x")}), "illegal lambda in pattern"},
		{"case", b.expr(&Case{}), "illegal case in pattern"},
		{"if", b.expr(&If{Cond: b.v("a"), Then: b.v("b"), Else: b.v("c")}), "illegal if in pattern"},
		{"let", b.expr(&Let{Body: b.v("x")}), "illegal let in pattern"},
		{"do", b.expr(&Do{}), "illegal do in pattern"},
		{"ado", b.expr(&Ado{Result: b.v("x")}), "illegal ado in pattern"},
		{"suffix", b.expr(&RecordUpdateSuffix{}), "illegal record update in pattern"},
		{"negate", b.expr(&Negate{Expr: b.integer(1)}), "illegal negation in pattern"},
		{"operator", b.expr(&Operator{Name: b.ctx.Name("+")}), "illegal operator section in pattern"},
		{"nested", b.app(b.ctor("Just"), b.expr(&Accessor{Expr: b.v("r"), Field: b.ctx.Intern("x")})), "illegal record accessor in pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExprToPat(tt.expr)
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
			var nerr *NormalizeError
			require.ErrorAs(t, err, &nerr)
		})
	}
}

func TestExprToPatDeterministic(t *testing.T) {
	b := newBuilder()
	e := b.app(b.ctor("Tuple"), b.v("a"), b.expr(&Wildcard{}))
	p1, err1 := ExprToPat(e)
	p2, err2 := ExprToPat(e)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, EqualPat(p1, p2))
}

func TestConstraintToInstanceHead(t *testing.T) {
	b := newBuilder()
	c := b.tapp(b.tcon("Data.Show.Show"), b.tapp(b.tcon("Maybe"), b.tvar("a")))

	name, args, ok := ConstraintToInstanceHead(c)
	require.True(t, ok)
	assert.Equal(t, "Data.Show.Show", name.String())
	require.Len(t, args, 1)
	assert.Equal(t, "(Maybe a)", args[0].Value.String())

	fn := At[TypeKind](b.span(), &TypeFunc{Arg: b.tvar("a"), Result: b.tvar("b")})
	_, _, ok = ConstraintToInstanceHead(fn)
	assert.False(t, ok)
}

func TestConstraintToClassHead(t *testing.T) {
	b := newBuilder()

	name, params, ok := ConstraintToClassHead(b.tapp(b.tcon("MonadState"), b.tvar("s"), b.tvar("m")))
	require.True(t, ok)
	assert.Equal(t, "MonadState", name.String())
	require.Len(t, params, 2)
	assert.Equal(t, "s", params[0].Name.String())
	assert.Equal(t, "m", params[1].Name.String())

	_, _, ok = ConstraintToClassHead(b.tapp(b.tcon("M.Foo"), b.tvar("a")))
	assert.False(t, ok, "qualified class name")

	_, _, ok = ConstraintToClassHead(b.tapp(b.tcon("Foo"), b.tcon("Int")))
	assert.False(t, ok, "non-variable argument")

	name, params, ok = ConstraintToClassHead(b.tcon("Partial"))
	require.True(t, ok)
	assert.Equal(t, "Partial", name.String())
	assert.Empty(t, params)
}
