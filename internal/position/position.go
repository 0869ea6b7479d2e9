// Package position provides unified source position tracking for the
// perlscope front end. Spans are half-open byte ranges; positions carry
// 1-based line/column alongside the 0-based byte offset so diagnostics
// and editor integrations can render either form without re-scanning.
package position

import "fmt"

// Position represents a single point in source code.
type Position struct {
	Offset int // 0-based byte offset in source
	Line   int // 1-based line number
	Column int // 1-based column number
}

// IsValid returns true if the position is valid.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before returns true if this position comes before other.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// Span represents a half-open byte range [Start, End) of source code.
type Span struct {
	Start int // inclusive byte offset
	End   int // exclusive byte offset
}

// IsValid returns true if the span is non-negative and ordered.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.Start <= s.End
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	if !s.IsValid() {
		return 0
	}
	return s.End - s.Start
}

// String returns a string representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Contains returns true if the span contains the given byte offset.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

// Overlaps returns true if this span overlaps with other.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Union returns a span that encompasses both this span and other.
func (s Span) Union(other Span) Span {
	if !s.IsValid() {
		return other
	}
	if !other.IsValid() {
		return s
	}
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Shift returns the span moved by delta bytes. Used by the incremental
// engine when untouched subtrees keep their content but change offset.
func (s Span) Shift(delta int) Span {
	return Span{Start: s.Start + delta, End: s.End + delta}
}

// SpanBetween covers everything from the start of first to the end of
// last.
func SpanBetween(first, last Span) Span {
	return Span{Start: first.Start, End: last.End}
}
