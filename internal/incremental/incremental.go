// Package incremental maintains a parsed document across edits. Small,
// localized edits reparse only the top-level statements they touch;
// anything risky falls back to a full reparse. The engine trades
// aggressiveness for liveness: it must never panic and never leave the
// state inconsistent, so every uncertain path degrades to the full
// pipeline.
package incremental

import (
	"sort"

	"github.com/perlscope/perlscope/internal/ast"
	"github.com/perlscope/perlscope/internal/lexer"
	"github.com/perlscope/perlscope/internal/parser"
	"github.com/perlscope/perlscope/internal/position"
	"github.com/perlscope/perlscope/internal/recovery"
)

// Fallback thresholds. Incremental reparsing only pays for itself on
// documents past minIncrementalSize; oversized or numerous edits and
// wide windows go through the full pipeline.
const (
	minIncrementalSize = 64 * 1024
	maxEditSize        = 1024
	maxEditNewlines    = 10
	maxWindowFraction  = 0.20
)

// Edit replaces Source[Start:End] with NewText. Offsets refer to the
// document before the edit.
type Edit struct {
	Start   int
	End     int
	NewText string
}

// LexCheckpoint records resumable scanner state at a statement
// boundary.
type LexCheckpoint struct {
	Offset int
	Mode   lexer.Mode
	Line   int
	Column int
}

// ParseCheckpoint records parser context at a top-level statement
// boundary: which statement starts there and the enclosing package.
type ParseCheckpoint struct {
	Offset    int
	StmtIndex int
	Package   string
}

// ReparseResult summarizes one ApplyEdits call.
type ReparseResult struct {
	// ChangedRanges are the spans of the new document whose nodes were
	// rebuilt.
	ChangedRanges []position.Span
	// Diagnostics is the complete diagnostic set for the new document.
	Diagnostics []recovery.Diagnostic
	// ReparsedBytes counts how much source the parser actually
	// revisited.
	ReparsedBytes int
	// Full reports that the engine fell back to a full reparse.
	Full bool
}

// State is one live document. Not safe for concurrent use.
type State struct {
	cfg     recovery.Config
	src     string
	index   *position.LineIndex
	program *ast.Program
	diags   []recovery.Diagnostic

	lexCheckpoints   []LexCheckpoint
	parseCheckpoints []ParseCheckpoint
}

// NewState parses src from scratch.
func NewState(src string, cfg recovery.Config) (*State, error) {
	s := &State{cfg: cfg}
	if err := s.fullParse(src); err != nil {
		return nil, err
	}
	return s, nil
}

// Source returns the current document text.
func (s *State) Source() string { return s.src }

// Program returns the current tree. Callers must treat it as read-only.
func (s *State) Program() *ast.Program { return s.program }

// Diagnostics returns the current diagnostic set.
func (s *State) Diagnostics() []recovery.Diagnostic { return s.diags }

// LineIndex returns the current line table.
func (s *State) LineIndex() *position.LineIndex { return s.index }

// Checkpoints exposes the parse checkpoints, primarily for tests.
func (s *State) Checkpoints() []ParseCheckpoint { return s.parseCheckpoints }

func (s *State) fullParse(src string) error {
	p := parser.New(src, s.cfg)
	prog, err := p.Run()
	if err != nil {
		return err
	}
	s.src = src
	s.index = position.NewLineIndex(src)
	s.program = prog
	s.diags = p.Diagnostics()
	s.rebuildCheckpoints()
	return nil
}

// rebuildCheckpoints derives both checkpoint sets from the current
// tree. They are rebuilt wholesale after every reparse; splicing them
// incrementally was never worth the bookkeeping.
func (s *State) rebuildCheckpoints() {
	s.lexCheckpoints = s.lexCheckpoints[:0]
	s.parseCheckpoints = s.parseCheckpoints[:0]
	pkg := ""
	for i, stmt := range s.program.Statements {
		start := stmt.GetSpan().Start
		pos := s.index.PositionFor(start)
		s.lexCheckpoints = append(s.lexCheckpoints, LexCheckpoint{
			Offset: start,
			Mode:   lexer.ModeTerm,
			Line:   pos.Line,
			Column: pos.Column,
		})
		s.parseCheckpoints = append(s.parseCheckpoints, ParseCheckpoint{
			Offset:    start,
			StmtIndex: i,
			Package:   pkg,
		})
		if pd, ok := stmt.(*ast.PackageDeclaration); ok && pd.Block == nil {
			pkg = pd.Name
		}
	}
}

// ApplyEdits applies the edits and reparses. The error return carries
// only resource-limit failures from a required reparse; every
// structural or bookkeeping problem resolves internally by falling back
// to a full reparse.
func (s *State) ApplyEdits(edits []Edit) (ReparseResult, error) {
	if len(edits) == 0 {
		return ReparseResult{Diagnostics: s.diags}, nil
	}

	newSrc, spliced := s.splice(edits)
	if !spliced {
		// Out-of-range or overlapping edits: clamp, splice again, and
		// take the full pipeline.
		newSrc = s.spliceClamped(edits)
		return s.fallback(newSrc)
	}

	if len(edits) > 1 || len(s.src) <= minIncrementalSize {
		return s.fallback(newSrc)
	}
	e := edits[0]
	if len(e.NewText) > maxEditSize || e.End-e.Start > maxEditSize {
		return s.fallback(newSrc)
	}
	if countNewlines(e.NewText)+countNewlines(s.src[e.Start:e.End]) > maxEditNewlines {
		return s.fallback(newSrc)
	}

	res, ok := s.tryIncremental(newSrc, e)
	if !ok {
		return s.fallback(newSrc)
	}
	return res, nil
}

// splice rebuilds the document text, applying edits highest offset
// first so earlier offsets stay valid. Returns ok=false when any edit
// is out of range or overlaps another.
func (s *State) splice(edits []Edit) (string, bool) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	prev := len(s.src) + 1
	out := s.src
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(s.src) || e.End > prev {
			return "", false
		}
		out = out[:e.Start] + e.NewText + out[e.End:]
		prev = e.Start
	}
	return out, true
}

func (s *State) spliceClamped(edits []Edit) string {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	for i := range sorted {
		sorted[i].Start = clamp(sorted[i].Start, 0, len(s.src))
		sorted[i].End = clamp(sorted[i].End, sorted[i].Start, len(s.src))
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })
	out := s.src
	prev := len(s.src) + 1
	for _, e := range sorted {
		if e.End > prev {
			continue
		}
		out = out[:e.Start] + e.NewText + out[e.End:]
		prev = e.Start
	}
	return out
}

func (s *State) fallback(newSrc string) (ReparseResult, error) {
	if err := s.fullParse(newSrc); err != nil {
		return ReparseResult{}, err
	}
	return ReparseResult{
		ChangedRanges: []position.Span{{Start: 0, End: len(newSrc)}},
		Diagnostics:   s.diags,
		ReparsedBytes: len(newSrc),
		Full:          true,
	}, nil
}

// tryIncremental reparses only the statement window around one edit.
// ok=false sends the caller to the full pipeline. A panic anywhere in
// the incremental path also degrades rather than crashing.
func (s *State) tryIncremental(newSrc string, e Edit) (res ReparseResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			res, ok = ReparseResult{}, false
		}
	}()

	first, last := s.affectedStatements(e)
	if first < 0 {
		return ReparseResult{}, false
	}

	stmts := s.program.Statements
	wStart := stmts[first].GetSpan().Start
	wEnd := stmts[last].GetSpan().End
	if e.End > wEnd || e.Start < wStart {
		// The edit leaks past the statement window (leading comments,
		// trailing heredoc bodies); reparse everything.
		return ReparseResult{}, false
	}
	delta := len(e.NewText) - (e.End - e.Start)
	newWEnd := wEnd + delta
	if newWEnd < wStart || newWEnd > len(newSrc) {
		return ReparseResult{}, false
	}
	window := newSrc[wStart:newWEnd]
	if float64(len(window)) > maxWindowFraction*float64(len(newSrc)) {
		return ReparseResult{}, false
	}
	// Heredoc bodies and data sections may extend beyond statement
	// spans; a window touching them cannot be reparsed in isolation.
	if windowUnsafe(window) {
		return ReparseResult{}, false
	}
	// An edit that changes the window's delimiter balance changes how
	// everything after the window parses, so the splice would diverge
	// from a full reparse.
	if delimiterProfileChanged(s.src[wStart:wEnd], window) {
		return ReparseResult{}, false
	}
	// An edit adjacent to a package boundary can change scope for
	// later statements.
	if s.packageBetween(first, last) {
		return ReparseResult{}, false
	}

	p := parser.New(window, s.cfg)
	prog, err := p.Run()
	if err != nil {
		// Resource limits inside a window mean the full document would
		// also breach them; let the fallback report that consistently.
		return ReparseResult{}, false
	}
	if len(prog.Statements) == 0 && len(window) > 0 {
		return ReparseResult{}, false
	}
	// Verify the window parse is self-contained: structure that runs
	// off the window's end would have consumed following statements in
	// a full reparse.
	if windowParseTruncated(p.Diagnostics(), prog, len(window)) {
		return ReparseResult{}, false
	}

	// Splice: shift window statements into place, shift trailing
	// statements by delta.
	for _, stmt := range prog.Statements {
		shiftNode(stmt, wStart)
	}
	var rebuilt []ast.Statement
	rebuilt = append(rebuilt, stmts[:first]...)
	rebuilt = append(rebuilt, prog.Statements...)
	for _, stmt := range stmts[last+1:] {
		shiftNode(stmt, delta)
		rebuilt = append(rebuilt, stmt)
	}

	s.program = &ast.Program{
		Span:       position.Span{Start: 0, End: len(newSrc)},
		Statements: rebuilt,
	}
	s.src = newSrc
	s.index = position.NewLineIndex(newSrc)
	s.diags = s.mergeDiagnostics(p.Diagnostics(), wStart, wEnd, delta)
	s.rebuildCheckpoints()

	return ReparseResult{
		ChangedRanges: []position.Span{{Start: wStart, End: newWEnd}},
		Diagnostics:   s.diags,
		ReparsedBytes: len(window),
	}, true
}

// affectedStatements returns the inclusive top-level statement range
// overlapping the edit. Insertions between statements attach to the
// preceding one.
func (s *State) affectedStatements(e Edit) (int, int) {
	stmts := s.program.Statements
	if len(stmts) == 0 {
		return -1, -1
	}
	editSpan := position.Span{Start: e.Start, End: max(e.End, e.Start+1)}
	first, last := -1, -1
	for i, stmt := range stmts {
		sp := stmt.GetSpan()
		probe := position.Span{Start: sp.Start, End: max(sp.End, sp.Start+1)}
		if probe.Overlaps(editSpan) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		// Pure insertion in whitespace between statements: pick the
		// statement before the edit point.
		for i := len(stmts) - 1; i >= 0; i-- {
			if stmts[i].GetSpan().End <= e.Start {
				return i, i
			}
		}
		return 0, 0
	}
	return first, last
}

// packageBetween reports whether the window contains or abuts a
// statement-form package declaration, which scopes everything after it.
func (s *State) packageBetween(first, last int) bool {
	lo := max(first-1, 0)
	hi := min(last+1, len(s.program.Statements)-1)
	for i := lo; i <= hi; i++ {
		if pd, isPkg := s.program.Statements[i].(*ast.PackageDeclaration); isPkg && pd.Block == nil {
			return true
		}
	}
	return false
}

// delimiterProfile summarizes the bracket and quote shape of a text
// range: the net open count per bracket pair, how far the running
// balance ever dips below zero, and the parity of each quote byte.
// Counting raw bytes overestimates inside strings and comments, which
// only ever causes a spurious fallback, never a bad splice.
type delimiterProfile struct {
	net   [3]int
	dip   [3]int
	quote [3]bool
}

func profileDelimiters(text string) delimiterProfile {
	var p delimiterProfile
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '(':
			p.net[0]++
		case ')':
			p.net[0]--
		case '[':
			p.net[1]++
		case ']':
			p.net[1]--
		case '{':
			p.net[2]++
		case '}':
			p.net[2]--
		case '"':
			p.quote[0] = !p.quote[0]
		case '\'':
			p.quote[1] = !p.quote[1]
		case '`':
			p.quote[2] = !p.quote[2]
		}
		for k := 0; k < 3; k++ {
			if p.net[k] < p.dip[k] {
				p.dip[k] = p.net[k]
			}
		}
	}
	return p
}

// delimiterProfileChanged reports whether an edit altered the window's
// bracket balance or quote parity. Either change means tokens after the
// window would lex or nest differently under a full reparse.
func delimiterProfileChanged(oldWindow, newWindow string) bool {
	return profileDelimiters(oldWindow) != profileDelimiters(newWindow)
}

// windowParseTruncated reports whether the window parse ran off the end
// of the window: an unclosed delimiter, or a recovery node that extends
// to the last byte. Such a window would have swallowed the statements
// after it in a full reparse.
func windowParseTruncated(diags []recovery.Diagnostic, prog *ast.Program, windowLen int) bool {
	for _, d := range diags {
		if d.Category == recovery.CategoryUnclosedDelimiter {
			return true
		}
	}
	if n := len(prog.Statements); n > 0 {
		if errNode, isErr := prog.Statements[n-1].(*ast.ErrorNode); isErr && errNode.Span.End >= windowLen {
			return true
		}
	}
	return false
}

// windowUnsafe rejects windows whose reparse semantics depend on text
// outside the window.
func windowUnsafe(window string) bool {
	scan := guardMarkers(window)
	return scan.heredoc || scan.dataSection || scan.pod
}

type markerScan struct {
	heredoc     bool
	dataSection bool
	pod         bool
}

func guardMarkers(window string) markerScan {
	var m markerScan
	atLineStart := true
	for i := 0; i < len(window); i++ {
		switch window[i] {
		case '\n':
			atLineStart = true
			continue
		case '<':
			if i+2 < len(window) && window[i+1] == '<' && window[i+2] != '=' && window[i+2] != '<' {
				m.heredoc = true
			}
		case '=':
			if atLineStart && i+1 < len(window) && isLetter(window[i+1]) {
				m.pod = true
			}
		case '_':
			if atLineStart && (hasPrefixAt(window, i, "__END__") || hasPrefixAt(window, i, "__DATA__")) {
				m.dataSection = true
			}
		}
		if window[i] != ' ' && window[i] != '\t' {
			atLineStart = false
		}
	}
	return m
}

func hasPrefixAt(s string, i int, prefix string) bool {
	return len(s)-i >= len(prefix) && s[i:i+len(prefix)] == prefix
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// mergeDiagnostics keeps diagnostics outside the old window, shifting
// those past it, and adds the window's fresh set.
func (s *State) mergeDiagnostics(windowDiags []recovery.Diagnostic, wStart, wEnd, delta int) []recovery.Diagnostic {
	var out []recovery.Diagnostic
	for _, d := range s.diags {
		switch {
		case d.Span.End <= wStart:
			out = append(out, d)
		case d.Span.Start >= wEnd:
			d.Span = d.Span.Shift(delta)
			out = append(out, d)
		}
	}
	for _, d := range windowDiags {
		d.Span = d.Span.Shift(wStart)
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.Start < out[j].Span.Start })
	return out
}

// shiftNode moves every span in the subtree by delta. Nodes hold spans
// by value, so the walk rewrites them through type switching on the
// concrete pointers.
func shiftNode(n ast.Node, delta int) {
	if delta == 0 || n == nil {
		return
	}
	ast.Walk(n, func(c ast.Node) bool {
		shiftSpan(c, delta)
		return true
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func countNewlines(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}
