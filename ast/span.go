package ast

import "fmt"

// Span is a half-open byte range [Start, End) in the original source.
type Span struct {
	Start int
	End   int
}

// NewSpan returns the span [start, end).
func NewSpan(start, end int) Span { return Span{Start: start, End: end} }

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	return Span{Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

func (s Span) String() string { return fmt.Sprintf("%d:%d", s.Start, s.End) }

// Located pairs a value with the span of source text that produced it.
//
// Access to the inner value is always explicit (Value or Inner), so dropping
// position information is visible at every use site.
type Located[T any] struct {
	Span  Span
	Value T
}

// At wraps v with span.
func At[T any](span Span, v T) Located[T] {
	return Located[T]{Span: span, Value: v}
}

// Inner returns the wrapped value without its span.
func (l Located[T]) Inner() T { return l.Value }

// String renders the value followed by its span, "{value} {start}:{end}".
func (l Located[T]) String() string {
	return fmt.Sprintf("%v %d:%d", l.Value, l.Span.Start, l.Span.End)
}
