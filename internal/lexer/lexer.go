// Package lexer implements the perlscope reference tokenizer. It is a
// mode-tracking byte scanner: whether the next `/` is a division sign
// or a regex opener, and whether `*` is multiplication or a typeglob,
// depends on term versus operator position, so the scanner carries that
// single bit of parse context with it.
package lexer

import (
	"strings"

	"github.com/perlscope/perlscope/internal/position"
	"github.com/perlscope/perlscope/internal/token"
)

// Mode is the scanner position class. In term mode the scanner expects
// the start of an operand; in operator mode it just finished one.
type Mode int

const (
	// ModeTerm expects an operand: `/` opens a regex, `*` a typeglob,
	// `<` a readline.
	ModeTerm Mode = iota
	// ModeOperator follows a complete operand: `/` divides, `*`
	// multiplies, `<` compares.
	ModeOperator
)

// Lexer scans one document. It is not safe for concurrent use.
type Lexer struct {
	input        string
	position     int  // current byte under examination
	readPosition int  // next byte to read
	ch           byte // current byte, 0 at EOF
	line         int
	column       int

	mode Mode

	// Heredoc declarations seen on the current logical line; their
	// bodies begin after the next newline, in declaration order.
	pending []pendingHeredoc

	// Resolved heredoc bodies keyed by the byte offset of their
	// declaration token.
	bodies map[int]HeredocBody

	atLineStart bool
	done        bool
}

type pendingHeredoc struct {
	declOffset int
	terminator string
	indented   bool
	quote      byte
}

// HeredocBody is the resolved body of one heredoc declaration.
type HeredocBody struct {
	Terminator string
	Indented   bool
	Quote      byte // '"', '\'', '`', or 0 for bare
	Body       string
	BodyStart  int
	BodyEnd    int
	Terminated bool
}

// New creates a lexer over input positioned at its first byte.
func New(input string) *Lexer {
	l := &Lexer{
		input:       input,
		line:        1,
		column:      0,
		mode:        ModeTerm,
		bodies:      make(map[int]HeredocBody),
		atLineStart: true,
	}
	l.readChar()
	return l
}

// Checkpoint captures enough scanner state to resume lexing at the
// current offset.
type Checkpoint struct {
	Offset int
	Mode   Mode
	Line   int
	Column int
}

// Checkpoint returns the state at the current scan position.
func (l *Lexer) Checkpoint() Checkpoint {
	return Checkpoint{Offset: l.position, Mode: l.mode, Line: l.line, Column: l.column}
}

// NewAt creates a lexer resuming from a previously captured checkpoint.
// The checkpoint must sit outside any string, regex, or heredoc body.
func NewAt(input string, cp Checkpoint) *Lexer {
	l := &Lexer{
		input:       input,
		position:    cp.Offset,
		readPosition: cp.Offset,
		line:        cp.Line,
		column:      cp.Column - 1,
		mode:        cp.Mode,
		bodies:      make(map[int]HeredocBody),
		atLineStart: cp.Column <= 1,
	}
	if l.column < 0 {
		l.column = 0
	}
	l.readChar()
	return l
}

// Bodies returns the heredoc bodies resolved so far, keyed by the byte
// offset of the HeredocDecl token that introduced them.
func (l *Lexer) Bodies() map[int]HeredocBody { return l.bodies }

// Tokenize scans the whole input, returning every non-trivia token plus
// the final EOF token.
func Tokenize(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		t := l.Next()
		if !t.IsTrivia() {
			toks = append(toks, t)
		}
		if t.Kind == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 1
		l.atLineStart = true
	} else {
		l.column++
		if l.ch != 0 {
			l.atLineStart = false
		}
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
	} else {
		l.ch = l.input[l.readPosition]
		l.position = l.readPosition
	}
	l.readPosition = l.position + 1
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekAt(n int) byte {
	if l.position+n >= len(l.input) {
		return 0
	}
	return l.input[l.position+n]
}

// Next returns the next token, including trivia (comments, POD).
func (l *Lexer) Next() token.Token {
	l.skipSpaces()

	if l.ch == 0 {
		return l.make(token.EOF, l.position, l.position)
	}

	// Line starts carry structure: POD directives, __END__/__DATA__,
	// and pending heredoc bodies all anchor there.
	if l.atLineStart {
		if t, ok := l.lineStartToken(); ok {
			return t
		}
	}

	start := l.position

	switch {
	case l.ch == '#':
		return l.scanComment()
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar()) && l.mode == ModeTerm):
		return l.scanNumber()
	case l.ch == '$' || l.ch == '@' || (l.ch == '%' && l.mode == ModeTerm):
		return l.scanVariable()
	case l.ch == '&' && l.mode == ModeTerm && (isIdentStart(l.peekChar()) || l.peekChar() == '$' || l.peekChar() == '{'):
		return l.scanVariable()
	case isIdentStart(l.ch):
		return l.scanWord()
	case l.ch == '"' || l.ch == '\'' || l.ch == '`':
		return l.scanString(l.ch)
	case l.ch == '/' && l.mode == ModeTerm:
		return l.scanRegexLike("m", start)
	case l.ch == '<' && l.mode == ModeTerm:
		return l.scanAngle()
	case l.ch == '*' && l.mode == ModeTerm && isIdentStart(l.peekChar()):
		return l.scanTypeglob()
	}

	if l.ch == '<' && l.peekChar() == '<' {
		if t, ok := l.scanHeredocDecl(); ok {
			return t
		}
	}

	return l.scanOperator()
}

// skipSpaces consumes blanks and newlines. Crossing a newline resolves
// any heredoc bodies declared on the line just finished.
func (l *Lexer) skipSpaces() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		nl := l.ch == '\n'
		l.readChar()
		if nl && len(l.pending) > 0 {
			l.consumeHeredocBodies()
		}
	}
}

func (l *Lexer) lineStartToken() (token.Token, bool) {
	if l.ch == '=' && isIdentStart(l.peekChar()) {
		return l.scanPod(), true
	}
	for _, marker := range [...]string{"__END__", "__DATA__"} {
		if strings.HasPrefix(l.input[l.position:], marker) {
			rest := l.position + len(marker)
			if rest >= len(l.input) || l.input[rest] == '\n' || l.input[rest] == '\r' {
				start := l.position
				for l.ch != 0 {
					l.readChar()
				}
				return l.make(token.DataSection, start, len(l.input)), true
			}
		}
	}
	return token.Token{}, false
}

func (l *Lexer) scanComment() token.Token {
	start := l.position
	for l.ch != 0 && l.ch != '\n' {
		l.readChar()
	}
	return l.make(token.Comment, start, l.position)
}

func (l *Lexer) scanPod() token.Token {
	start := l.position
	for l.ch != 0 {
		// =cut ends the POD section at the end of its own line.
		if l.atLineStart && strings.HasPrefix(l.input[l.position:], "=cut") {
			for l.ch != 0 && l.ch != '\n' {
				l.readChar()
			}
			break
		}
		l.readChar()
	}
	return l.make(token.Pod, start, l.position)
}

func (l *Lexer) scanNumber() token.Token {
	start := l.position
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.termToken(token.Number, start)
	}
	if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		for l.ch == '0' || l.ch == '1' || l.ch == '_' {
			l.readChar()
		}
		return l.termToken(token.Number, start)
	}
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	// Fractional part, but not the range operator `1..10`.
	if l.ch == '.' && l.peekChar() != '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.termToken(token.Number, start)
}

func (l *Lexer) scanVariable() token.Token {
	start := l.position
	sigil := l.ch
	l.readChar()
	// ${name}, @{...}: the braced form is handed to the parser as a
	// bare sigil; it will consume the block as a dereference.
	if l.ch == '{' || l.ch == '$' {
		return l.termTokenNoMode(token.Variable, start, ModeTerm)
	}
	if isIdentStart(l.ch) {
		for isIdentChar(l.ch) {
			l.readChar()
		}
		// Package-qualified names: $Foo::bar.
		for l.ch == ':' && l.peekChar() == ':' {
			l.readChar()
			l.readChar()
			for isIdentChar(l.ch) {
				l.readChar()
			}
		}
		return l.termToken(token.Variable, start)
	}
	// Punctuation variables: $_, $0, $1, $@, $!, $/, ...
	if sigil == '$' && l.ch != 0 && !isSpace(l.ch) {
		if isDigit(l.ch) {
			for isDigit(l.ch) {
				l.readChar()
			}
		} else {
			l.readChar()
		}
		return l.termToken(token.Variable, start)
	}
	if sigil == '@' && l.ch == '_' {
		l.readChar()
		return l.termToken(token.Variable, start)
	}
	// A lone sigil; let the parser complain.
	return l.termToken(token.Variable, start)
}

func (l *Lexer) scanWord() token.Token {
	start := l.position
	for isIdentChar(l.ch) {
		l.readChar()
	}
	for l.ch == ':' && l.peekChar() == ':' && isIdentStart(l.peekAt(2)) {
		l.readChar()
		l.readChar()
		for isIdentChar(l.ch) {
			l.readChar()
		}
	}
	text := l.input[start:l.position]

	switch text {
	case "q", "qq", "qw", "qr", "m", "s", "tr", "y":
		if delim, ok := l.quoteDelimiter(); ok {
			_ = delim
			return l.scanRegexLike(text, start)
		}
	}

	kind := token.Ident
	if token.IsStructuralKeyword(text) {
		kind = token.Keyword
	}
	// Word operators (and, or, eq, x, ...) stay Ident; the parser's
	// precedence table recognizes them by text in operator position.
	t := l.make(kind, start, l.position)
	l.mode = wordMode(text)
	return t
}

// quoteDelimiter reports whether the current byte can open a quote-like
// construct. Whitespace before the delimiter is allowed except for `=>`
// autoquoting contexts, which the parser resolves.
func (l *Lexer) quoteDelimiter() (byte, bool) {
	ch := l.ch
	if ch == 0 || isIdentChar(ch) || isSpace(ch) || ch == '=' || ch == ',' || ch == ';' || ch == ')' {
		return 0, false
	}
	return ch, true
}

func closingFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return open
}

// scanDelimited consumes one delimited section, honoring backslash
// escapes and nesting for bracketing delimiters. The scanner is left on
// the byte after the closing delimiter.
func (l *Lexer) scanDelimited(open byte) {
	close := closingFor(open)
	depth := 1
	l.readChar() // consume opener
	for l.ch != 0 && depth > 0 {
		switch l.ch {
		case '\\':
			l.readChar()
			if l.ch != 0 {
				l.readChar()
			}
			continue
		case close:
			depth--
		case open:
			// Only reached for bracketing delimiters, where the closer
			// differs and nesting is legal.
			depth++
		}
		l.readChar()
	}
}

func (l *Lexer) scanModifiers() {
	for isIdentChar(l.ch) {
		l.readChar()
	}
}

// scanRegexLike handles m//, qr//, s///, tr///, y///, q//, qq//, qw//,
// and the bare-slash match. op is the operator word already consumed
// ("m" for bare slash), start its offset.
func (l *Lexer) scanRegexLike(op string, start int) token.Token {
	open := l.ch
	twoPart := op == "s" || op == "tr" || op == "y"

	l.scanDelimited(open)
	if twoPart {
		if closingFor(open) != open {
			// Bracketing delimiters take a fresh opener for part two,
			// possibly after whitespace: s{a}{b}.
			for isSpace(l.ch) {
				l.readChar()
			}
			if l.ch != 0 {
				l.scanDelimited(l.ch)
			}
		} else {
			// s/a/b/: part two reuses the closer just consumed as its
			// opener, so back up one conceptual step by scanning from
			// the current byte to the next unescaped delimiter.
			l.scanToDelimiter(open)
		}
	}
	l.scanModifiers()

	var kind token.Kind
	switch op {
	case "m", "qr":
		kind = token.Regex
	case "s":
		kind = token.Substitute
	case "tr", "y":
		kind = token.Translit
	case "qw":
		kind = token.QuoteWords
	case "q":
		kind = token.RawString
	case "qq":
		kind = token.String
	default:
		kind = token.Regex
	}
	return l.termToken(kind, start)
}

func (l *Lexer) scanToDelimiter(delim byte) {
	for l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			if l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == delim {
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) scanString(quote byte) token.Token {
	start := l.position
	l.readChar()
	for l.ch != 0 && l.ch != quote {
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				break
			}
		}
		l.readChar()
	}
	if l.ch == quote {
		l.readChar()
	}
	kind := token.String
	switch quote {
	case '\'':
		kind = token.RawString
	case '`':
		kind = token.Backtick
	}
	return l.termToken(kind, start)
}

// scanAngle handles readline (<FH>, <$fh>, <>) in term position; when
// the contents do not look like a handle it falls back to operators.
func (l *Lexer) scanAngle() token.Token {
	if l.peekChar() == '<' {
		if t, ok := l.scanHeredocDecl(); ok {
			return t
		}
	}
	start := l.position
	// Probe ahead without consuming: a readline is `<`, an optional $,
	// identifier chars, then `>`.
	i := l.position + 1
	if i < len(l.input) && l.input[i] == '$' {
		i++
	}
	for i < len(l.input) && isIdentChar(l.input[i]) {
		i++
	}
	if i < len(l.input) && l.input[i] == '>' {
		for l.position <= i {
			l.readChar()
		}
		return l.termToken(token.Readline, start)
	}
	return l.scanOperator()
}

func (l *Lexer) scanTypeglob() token.Token {
	start := l.position
	l.readChar() // *
	for isIdentChar(l.ch) {
		l.readChar()
	}
	for l.ch == ':' && l.peekChar() == ':' {
		l.readChar()
		l.readChar()
		for isIdentChar(l.ch) {
			l.readChar()
		}
	}
	return l.termToken(token.Typeglob, start)
}

// scanHeredocDecl recognizes <<EOF, <<"EOF", <<'EOF', <<`EOF`, and the
// indented <<~ variants. A false return means the `<<` was a shift
// operator after all.
func (l *Lexer) scanHeredocDecl() (token.Token, bool) {
	i := l.position + 2 // past <<
	indented := false
	if i < len(l.input) && l.input[i] == '~' {
		indented = true
		i++
	}
	var quote byte
	var term string
	switch {
	case i < len(l.input) && (l.input[i] == '"' || l.input[i] == '\'' || l.input[i] == '`'):
		quote = l.input[i]
		j := i + 1
		for j < len(l.input) && l.input[j] != quote && l.input[j] != '\n' {
			j++
		}
		if j >= len(l.input) || l.input[j] != quote {
			return token.Token{}, false
		}
		term = l.input[i+1 : j]
		i = j + 1
	case i < len(l.input) && isIdentStart(l.input[i]):
		j := i
		for j < len(l.input) && isIdentChar(l.input[j]) {
			j++
		}
		term = l.input[i:j]
		i = j
	default:
		return token.Token{}, false
	}
	if term == "" {
		return token.Token{}, false
	}

	start := l.position
	for l.position < i && l.ch != 0 {
		l.readChar()
	}
	l.pending = append(l.pending, pendingHeredoc{
		declOffset: start,
		terminator: term,
		indented:   indented,
		quote:      quote,
	})
	return l.termToken(token.HeredocDecl, start), true
}

// consumeHeredocBodies runs right after a newline when declarations are
// pending. Bodies stack in declaration order; each terminates at a line
// holding exactly its terminator (leading whitespace allowed for <<~).
func (l *Lexer) consumeHeredocBodies() {
	decls := l.pending
	l.pending = nil
	for _, d := range decls {
		bodyStart := l.position
		terminated := false
		for {
			lineStart := l.position
			for l.ch != 0 && l.ch != '\n' {
				l.readChar()
			}
			line := l.input[lineStart:l.position]
			if l.ch == '\n' {
				l.readChar()
			}
			trimmed := line
			if d.indented {
				trimmed = strings.TrimLeft(line, " \t")
			}
			if trimmed == d.terminator {
				body := ""
				if lineStart > bodyStart {
					body = l.input[bodyStart:lineStart]
				}
				l.bodies[d.declOffset] = HeredocBody{
					Terminator: d.terminator,
					Indented:   d.indented,
					Quote:      d.quote,
					Body:       body,
					BodyStart:  bodyStart,
					BodyEnd:    lineStart,
					Terminated: true,
				}
				terminated = true
				break
			}
			if l.ch == 0 {
				break
			}
		}
		if !terminated {
			l.bodies[d.declOffset] = HeredocBody{
				Terminator: d.terminator,
				Indented:   d.indented,
				Quote:      d.quote,
				Body:       l.input[bodyStart:l.position],
				BodyStart:  bodyStart,
				BodyEnd:    l.position,
				Terminated: false,
			}
		}
	}
}

func (l *Lexer) make(kind token.Kind, start, end int) token.Token {
	return token.Token{
		Kind: kind,
		Span: position.Span{Start: start, End: end},
		Text: l.input[start:end],
	}
}

func (l *Lexer) termToken(kind token.Kind, start int) token.Token {
	t := l.make(kind, start, l.position)
	l.mode = ModeOperator
	return t
}

func (l *Lexer) termTokenNoMode(kind token.Kind, start int, m Mode) token.Token {
	t := l.make(kind, start, l.position)
	l.mode = m
	return t
}

func isDigit(ch byte) bool    { return ch >= '0' && ch <= '9' }
func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
func isIdentChar(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
func isSpace(ch byte) bool     { return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' }

// wordMode decides the scanner mode after a bareword. Keywords, word
// operators, and list operators expect a term next; an ordinary
// identifier completes an operand.
func wordMode(text string) Mode {
	switch text {
	case "and", "or", "not", "xor", "eq", "ne", "lt", "gt", "le", "ge", "cmp", "x", "isa":
		return ModeTerm
	case "split", "grep", "map", "join", "sort", "reverse", "print", "say",
		"push", "unshift", "return", "defined", "ref", "scalar", "die", "warn":
		// List operators take a term (often a pattern) directly after
		// the word: split /,/, $s.
		return ModeTerm
	}
	if token.IsStructuralKeyword(text) {
		return ModeTerm
	}
	return ModeOperator
}
