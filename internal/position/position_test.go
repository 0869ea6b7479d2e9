package position

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineIndexPositionFor(t *testing.T) {
	src := "my $x = 1;\nmy $y = 2;\n\nprint $x;\n"
	li := NewLineIndex(src)

	require.Equal(t, 5, li.LineCount())

	pos := li.PositionFor(0)
	require.Equal(t, 1, pos.Line)
	require.Equal(t, 1, pos.Column)

	// First byte of the second line.
	pos = li.PositionFor(11)
	require.Equal(t, 2, pos.Line)
	require.Equal(t, 1, pos.Column)

	// Middle of the second line.
	pos = li.PositionFor(14)
	require.Equal(t, 2, pos.Line)
	require.Equal(t, 4, pos.Column)

	// The blank line.
	pos = li.PositionFor(22)
	require.Equal(t, 3, pos.Line)
	require.Equal(t, 1, pos.Column)
}

func TestLineIndexRoundTrip(t *testing.T) {
	src := "abc\ndef\nghi"
	li := NewLineIndex(src)
	for off := 0; off < len(src); off++ {
		pos := li.PositionFor(off)
		require.Equal(t, off, li.OffsetFor(pos.Line, pos.Column), "offset %d", off)
	}
}

func TestLineIndexClamps(t *testing.T) {
	li := NewLineIndex("ab\ncd")
	pos := li.PositionFor(-5)
	require.Equal(t, 1, pos.Line)
	pos = li.PositionFor(999)
	require.Equal(t, 2, pos.Line)
}

func TestSpanOps(t *testing.T) {
	a := Span{Start: 2, End: 6}
	b := Span{Start: 5, End: 9}
	c := Span{Start: 7, End: 8}

	require.True(t, a.Overlaps(b))
	require.False(t, a.Overlaps(c))
	require.True(t, a.Contains(2))
	require.False(t, a.Contains(6))
	require.Equal(t, 4, a.Len())

	u := a.Union(b)
	require.Equal(t, Span{Start: 2, End: 9}, u)

	require.Equal(t, Span{Start: 12, End: 16}, a.Shift(10))
	require.Equal(t, Span{Start: 2, End: 8}, SpanBetween(a, c))
}
