package ast

// Literal is a literal shared between expressions (T = Expr) and patterns
// (T = Pat). The array and object shapes are defined once here and reused by
// both node families.
type Literal[T any] interface {
	literal()
}

// IntLit is an integer literal.
type IntLit struct{ Value uint64 }

// FloatLit is a floating point literal.
type FloatLit struct{ Value float64 }

// StringLit is a string literal with escapes already decoded.
type StringLit struct{ Value string }

// CharLit is a character literal.
type CharLit struct{ Value rune }

// BoolLit is true or false.
type BoolLit struct{ Value bool }

// ArrayLit is [a, b, ...].
type ArrayLit[T any] struct{ Elems []T }

// ObjectLit is { label: value, ... }. Field order is kept for diagnostics
// but does not take part in equality.
type ObjectLit[T any] struct{ Fields []Field[T] }

// Field is one label/value pair of an object literal.
type Field[T any] struct {
	Label Symbol
	Value T
}

func (IntLit) literal()       {}
func (FloatLit) literal()     {}
func (StringLit) literal()    {}
func (CharLit) literal()      {}
func (BoolLit) literal()      {}
func (ArrayLit[T]) literal()  {}
func (ObjectLit[T]) literal() {}

// MapLiteral converts the elements of a literal with f, keeping its shape.
// It stops at the first error.
func MapLiteral[A, B any](lit Literal[A], f func(A) (B, error)) (Literal[B], error) {
	switch l := lit.(type) {
	case IntLit:
		return l, nil
	case FloatLit:
		return l, nil
	case StringLit:
		return l, nil
	case CharLit:
		return l, nil
	case BoolLit:
		return l, nil
	case ArrayLit[A]:
		elems := make([]B, 0, len(l.Elems))
		for _, e := range l.Elems {
			b, err := f(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, b)
		}
		return ArrayLit[B]{Elems: elems}, nil
	case ObjectLit[A]:
		fields := make([]Field[B], 0, len(l.Fields))
		for _, fl := range l.Fields {
			b, err := f(fl.Value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field[B]{Label: fl.Label, Value: b})
		}
		return ObjectLit[B]{Fields: fields}, nil
	}
	panic("ast: unknown literal kind")
}

// EqualLiteral compares two literals structurally, using eq for elements.
// Object fields are compared as a set of labels.
func EqualLiteral[T any](a, b Literal[T], eq func(T, T) bool) bool {
	switch x := a.(type) {
	case ArrayLit[T]:
		y, ok := b.(ArrayLit[T])
		if !ok || len(x.Elems) != len(y.Elems) {
			return false
		}
		for i := range x.Elems {
			if !eq(x.Elems[i], y.Elems[i]) {
				return false
			}
		}
		return true
	case ObjectLit[T]:
		y, ok := b.(ObjectLit[T])
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		byLabel := make(map[Symbol]T, len(y.Fields))
		for _, f := range y.Fields {
			byLabel[f.Label] = f.Value
		}
		for _, f := range x.Fields {
			other, ok := byLabel[f.Label]
			if !ok || !eq(f.Value, other) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
