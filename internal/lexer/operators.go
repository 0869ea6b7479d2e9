package lexer

import "github.com/perlscope/perlscope/internal/token"

// multiCharOps lists symbolic operators longest-first within each
// leading byte so the scanner can take the longest match greedily.
var multiCharOps = [...]string{
	"<=>", "**=", "||=", "//=", "&&=", "<<=", ">>=", "...",
	"**", "||", "//", "&&", "==", "!=", "<=", ">=", "=~", "!~",
	"->", "=>", "..", "++", "--", "<<", ">>",
	"+=", "-=", "*=", "/=", ".=", "%=", "x=", "|=", "&=", "^=",
}

// scanOperator consumes punctuation: structural delimiters get their
// own token kinds, everything else is an Operator token whose text the
// parser's precedence table keys off.
func (l *Lexer) scanOperator() token.Token {
	start := l.position

	switch l.ch {
	case '(':
		l.readChar()
		return l.termTokenNoMode(token.LParen, start, ModeTerm)
	case ')':
		l.readChar()
		return l.termTokenNoMode(token.RParen, start, ModeOperator)
	case '{':
		l.readChar()
		return l.termTokenNoMode(token.LBrace, start, ModeTerm)
	case '}':
		l.readChar()
		return l.termTokenNoMode(token.RBrace, start, ModeOperator)
	case '[':
		l.readChar()
		return l.termTokenNoMode(token.LBracket, start, ModeTerm)
	case ']':
		l.readChar()
		return l.termTokenNoMode(token.RBracket, start, ModeOperator)
	case ';':
		l.readChar()
		return l.termTokenNoMode(token.Semicolon, start, ModeTerm)
	case ',':
		l.readChar()
		return l.termTokenNoMode(token.Comma, start, ModeTerm)
	case '?':
		l.readChar()
		return l.termTokenNoMode(token.Question, start, ModeTerm)
	}

	rest := l.input[l.position:]
	for _, op := range multiCharOps {
		if len(rest) >= len(op) && rest[:len(op)] == op {
			for range op {
				l.readChar()
			}
			kind := token.Operator
			mode := ModeTerm
			switch op {
			case "=>":
				kind = token.FatArrow
			case "->":
				kind = token.Arrow
			case "++", "--":
				// Postfix after a term keeps operator mode; the parser
				// disambiguates prefix use by its own position.
				mode = l.mode
			}
			return l.termTokenNoMode(kind, start, mode)
		}
	}

	ch := l.ch
	l.readChar()
	if ch == ':' {
		return l.termTokenNoMode(token.Colon, start, ModeTerm)
	}
	kind := token.Operator
	if !isOperatorByte(ch) {
		kind = token.Illegal
	}
	return l.termTokenNoMode(kind, start, ModeTerm)
}

func isOperatorByte(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '%', '.', '!', '~', '\\', '=', '<', '>', '&', '|', '^':
		return true
	}
	return false
}
