package position

import "sort"

// LineIndex maps byte offsets to line/column pairs and back. It is built
// once per document revision and replaced wholesale after every edit.
type LineIndex struct {
	lineStarts []int // byte offset of each line start
	size       int   // total document length in bytes
}

// NewLineIndex builds a line index for the given source text.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{lineStarts: starts, size: len(text)}
}

// Size returns the length in bytes of the indexed document.
func (li *LineIndex) Size() int { return li.size }

// LineCount returns the number of lines in the indexed document.
func (li *LineIndex) LineCount() int { return len(li.lineStarts) }

// PositionFor converts a byte offset into a full Position. Offsets past
// the end of the document clamp to the final position.
func (li *LineIndex) PositionFor(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > li.size {
		offset = li.size
	}
	// Find the last line start at or before offset.
	line := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: offset - li.lineStarts[line] + 1,
	}
}

// OffsetFor converts a 1-based line/column pair into a byte offset,
// returning -1 when the line does not exist.
func (li *LineIndex) OffsetFor(line, column int) int {
	if line < 1 || line > len(li.lineStarts) || column < 1 {
		return -1
	}
	offset := li.lineStarts[line-1] + column - 1
	if offset > li.size {
		return -1
	}
	return offset
}

// LineStart returns the byte offset at which the given 1-based line
// begins, or -1 when the line does not exist.
func (li *LineIndex) LineStart(line int) int {
	if line < 1 || line > len(li.lineStarts) {
		return -1
	}
	return li.lineStarts[line-1]
}
