package parser

import "strings"

// quoteParts is a decomposed quote-like token: m//, s///, tr///, q//,
// qw//, and friends.
type quoteParts struct {
	op        string // "m", "qr", "s", "tr", "q", "qq", "qw", or "" for bare slash
	first     string
	second    string // replacement/transliteration set, when present
	modifiers string
}

// splitQuoteLike decomposes the raw text of a quote-like token. The
// lexer guarantees well-formed delimiters except possibly a missing
// trailing one at EOF, which yields a truncated last part.
func splitQuoteLike(text string) quoteParts {
	var parts quoteParts
	i := 0
	for i < len(text) && isWordByte(text[i]) {
		i++
	}
	parts.op = text[:i]
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) {
		return parts
	}

	open := text[i]
	first, next := scanPart(text, i)
	parts.first = first
	i = next

	twoPart := parts.op == "s" || parts.op == "tr" || parts.op == "y"
	if twoPart && i < len(text) {
		if closerFor(open) != open {
			// Bracketing form: second part has its own delimiters,
			// possibly after whitespace.
			for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n') {
				i++
			}
			if i < len(text) {
				second, n := scanPart(text, i)
				parts.second = second
				i = n
			}
		} else {
			// s/a/b/: the second part starts right after the shared
			// delimiter.
			second, n := scanTail(text, i, open)
			parts.second = second
			i = n
		}
	}
	parts.modifiers = strings.TrimSpace(text[min(i, len(text)):])
	return parts
}

// scanPart reads one delimited section starting at the opener and
// returns the inner text plus the index just past the closer.
func scanPart(text string, i int) (string, int) {
	open := text[i]
	close := closerFor(open)
	depth := 1
	j := i + 1
	start := j
	for j < len(text) {
		switch text[j] {
		case '\\':
			j++
		case close:
			depth--
			if depth == 0 {
				return text[start:j], j + 1
			}
		case open:
			// Distinct closer, so this is a nested bracketing opener.
			depth++
		}
		j++
	}
	return text[start:min(j, len(text))], len(text)
}

// scanTail reads from i (just after the first section's closing
// delimiter, which doubles as the second section's opener in the
// non-bracketing form) to the next unescaped delimiter.
func scanTail(text string, i int, delim byte) (string, int) {
	j := i
	start := j
	for j < len(text) {
		switch text[j] {
		case '\\':
			j++
		case delim:
			return text[start:j], j + 1
		}
		j++
	}
	return text[start:], len(text)
}

func closerFor(open byte) byte {
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

func isWordByte(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// stringValue strips the delimiters from a plain string token and
// resolves the escapes the front end cares about. Interpolation is left
// intact; this layer only needs the literal's shape.
func stringValue(text string) string {
	if len(text) < 2 {
		return text
	}
	quote := text[0]
	if quote == 'q' {
		parts := splitQuoteLike(text)
		return parts.first
	}
	body := text[1:]
	if body[len(body)-1] == quote {
		body = body[:len(body)-1]
	}
	if quote == '\'' {
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `\\`, `\`)
		return body
	}
	return unescapeDouble(body)
}

func unescapeDouble(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// splitWords turns a qw() token into its word list.
func splitWords(text string) []string {
	parts := splitQuoteLike(text)
	return strings.Fields(parts.first)
}
