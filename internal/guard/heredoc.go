package guard

import (
	"fmt"
	"strings"
	"time"

	"github.com/perlscope/perlscope/internal/position"
)

// ScanLimits bounds the heredoc scanner. MaxDepth caps how far nested
// heredocs (heredocs declared inside another heredoc's evaluated body)
// are followed; Deadline bounds total scan time for one document.
type ScanLimits struct {
	MaxDepth int
	Deadline time.Duration
}

// DefaultScanLimits returns the production limits.
func DefaultScanLimits() ScanLimits {
	return ScanLimits{MaxDepth: 100, Deadline: 5 * time.Second}
}

// HeredocDecl is one resolved heredoc declaration.
type HeredocDecl struct {
	Span       position.Span // the <<TERM marker
	Terminator string
	Indented   bool // <<~
	Quote      byte // '"', '\'', '`', or 0 for bare
	Body       string
	BodySpan   position.Span // offsets within the buffer the body was found in
	Terminated bool
	Depth      int // 0 for top level, +1 per evaluated-body nesting
}

// ScanResult is everything one scan produced.
type ScanResult struct {
	Decls  []HeredocDecl
	Issues []Issue
}

type heredocScanner struct {
	limits   ScanLimits
	deadline time.Time
	result   ScanResult
	expired  bool
}

// ScanHeredocs finds every heredoc declaration in src, resolves bodies
// in declaration order, and follows evaluated bodies (eval heredocs and
// s///e replacements) one nesting level at a time up to the depth cap.
// The scanner never fails; findings arrive as issues in the result.
func ScanHeredocs(src string, limits ScanLimits) ScanResult {
	s := &heredocScanner{
		limits:   limits,
		deadline: time.Now().Add(limits.Deadline),
	}
	s.scan(src, 0, 0)
	return s.result
}

func (s *heredocScanner) checkDeadline() bool {
	if s.expired {
		return true
	}
	if time.Now().After(s.deadline) {
		s.expired = true
		s.result.Issues = append(s.result.Issues, Issue{
			Code:    "heredoc-deadline",
			Message: fmt.Sprintf("heredoc scan exceeded %v deadline", s.limits.Deadline),
		})
		return true
	}
	return false
}

// scan processes one buffer. base is the buffer's offset inside the
// original document, so spans of nested declarations stay
// document-absolute.
func (s *heredocScanner) scan(src string, base, depth int) {
	if depth > s.limits.MaxDepth {
		s.result.Issues = append(s.result.Issues, Issue{
			Code:    "heredoc-depth",
			Message: fmt.Sprintf("heredoc nesting exceeds depth limit %d", s.limits.MaxDepth),
		})
		return
	}

	pos := 0
	for pos < len(src) {
		if s.checkDeadline() {
			return
		}
		lineEnd := strings.IndexByte(src[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(src)
		} else {
			lineEnd += pos
		}
		line := src[pos:lineEnd]

		decls := findDeclsOnLine(line, pos)
		if len(decls) == 0 {
			pos = lineEnd + 1
			continue
		}

		evaluated := lineMarksEvaluation(line)

		// Bodies start after this line's newline and stack in
		// declaration order.
		bodyPos := lineEnd + 1
		for i := range decls {
			d := &decls[i]
			d.Depth = depth
			end, termLineStart, ok := findTerminator(src, bodyPos, d.Terminator, d.Indented)
			d.Terminated = ok
			if ok {
				d.Body = src[bodyPos:termLineStart]
				d.BodySpan = position.Span{Start: base + bodyPos, End: base + termLineStart}
				bodyPos = end
			} else {
				d.Body = src[min(bodyPos, len(src)):]
				d.BodySpan = position.Span{Start: base + min(bodyPos, len(src)), End: base + len(src)}
				s.result.Issues = append(s.result.Issues, Issue{
					Span:    d.Span,
					Code:    "heredoc-unterminated",
					Message: fmt.Sprintf("heredoc terminator %q never found", d.Terminator),
				})
				bodyPos = len(src)
			}
			d.Span = d.Span.Shift(base)
			s.result.Decls = append(s.result.Decls, *d)

			// Second, context-aware pass: a heredoc body handed to
			// eval or used as an /e replacement is itself code and may
			// declare further heredocs.
			if evaluated && d.Quote != '\'' && d.Terminated {
				s.scan(d.Body, d.BodySpan.Start, depth+1)
			}
		}
		pos = bodyPos
	}
}

// findDeclsOnLine returns the heredoc declarations on one line in
// left-to-right order. Comments end the scan; shift expressions like
// `1 << 4` are excluded by requiring a terminator to follow.
func findDeclsOnLine(line string, lineOffset int) []HeredocDecl {
	var decls []HeredocDecl
	for i := 0; i+1 < len(line); i++ {
		switch line[i] {
		case '#':
			return decls
		case '<':
			if line[i+1] != '<' {
				continue
			}
			// <<= is a shift-assign, <<< is not a heredoc.
			if i+2 < len(line) && (line[i+2] == '=' || line[i+2] == '<') {
				i += 2
				continue
			}
			d, next, ok := parseDeclAt(line, i)
			if !ok {
				i++
				continue
			}
			d.Span = position.Span{Start: lineOffset + i, End: lineOffset + next}
			decls = append(decls, d)
			i = next - 1
		}
	}
	return decls
}

// parseDeclAt parses one <<TERM marker starting at line[i] ("<<"). It
// returns the declaration and the offset just past it.
func parseDeclAt(line string, i int) (HeredocDecl, int, bool) {
	j := i + 2
	var d HeredocDecl
	if j < len(line) && line[j] == '~' {
		d.Indented = true
		j++
	}
	if j >= len(line) {
		return d, 0, false
	}
	switch line[j] {
	case '"', '\'', '`':
		d.Quote = line[j]
		k := strings.IndexByte(line[j+1:], line[j])
		if k < 0 {
			return d, 0, false
		}
		d.Terminator = line[j+1 : j+1+k]
		j = j + 1 + k + 1
	default:
		// Bare terminators must look like identifiers, otherwise the
		// marker was a shift expression like 1<<4.
		if !(line[j] == '_' || (line[j] >= 'a' && line[j] <= 'z') || (line[j] >= 'A' && line[j] <= 'Z')) {
			return d, 0, false
		}
		k := j
		for k < len(line) && (line[k] == '_' || isAlnum(line[k])) {
			k++
		}
		d.Terminator = line[j:k]
		j = k
	}
	if d.Terminator == "" {
		return d, 0, false
	}
	return d, j, true
}

// findTerminator locates the line holding exactly the terminator,
// starting the search at from. It returns the offset just past the
// terminator line, the offset of the terminator line itself, and
// whether it was found.
func findTerminator(src string, from int, term string, indented bool) (end, lineStart int, ok bool) {
	pos := from
	for pos <= len(src) {
		le := strings.IndexByte(src[pos:], '\n')
		var lineEnd int
		if le < 0 {
			lineEnd = len(src)
		} else {
			lineEnd = pos + le
		}
		line := src[pos:min(lineEnd, len(src))]
		candidate := line
		if indented {
			candidate = strings.TrimLeft(line, " \t")
		}
		if candidate == term {
			return lineEnd + 1, pos, true
		}
		if le < 0 {
			break
		}
		pos = lineEnd + 1
	}
	return len(src), len(src), false
}

// lineMarksEvaluation reports whether a heredoc declared on this line
// lands in evaluated code: an eval taking the heredoc as its string, or
// a substitution whose replacement is the heredoc under /e.
func lineMarksEvaluation(line string) bool {
	if idx := strings.Index(line, "eval"); idx >= 0 {
		after := line[idx+len("eval"):]
		if strings.Contains(after, "<<") {
			return true
		}
	}
	// s/PATTERN/<<EOF/e in any delimiter spelling: a substitution on
	// the line, a heredoc marker inside it, and an e modifier after the
	// final delimiter.
	if i := strings.Index(line, "s/"); i >= 0 && (i == 0 || !isAlnum(line[i-1])) {
		rest := line[i+2:]
		if strings.Contains(rest, "<<") && substitutionHasEvalModifier(rest) {
			return true
		}
	}
	return false
}

// substitutionHasEvalModifier walks s/.../.../MODS given everything
// after the first delimiter and reports whether MODS contains e.
func substitutionHasEvalModifier(rest string) bool {
	parts := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			i++
		case '/':
			parts++
			if parts == 2 {
				j := i + 1
				for j < len(rest) && isAlnum(rest[j]) {
					if rest[j] == 'e' {
						return true
					}
					j++
				}
				return false
			}
		}
	}
	return false
}

func isAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
