// Package token defines the token stream contract between the tokenizer
// and the parser. Tokens are immutable once produced; the parser never
// rewrites them.
package token

import (
	"fmt"

	"github.com/perlscope/perlscope/internal/position"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Illegal

	// Identifiers and literals.
	Ident    // bareword identifiers, including word operators (and, eq, cmp, x, ...)
	Keyword  // structural keywords (my, sub, if, while, package, ...)
	Variable // sigil-prefixed variable: $x, @y, %z, &f
	Number
	String      // interpolating string literal: "..." or qq{...}
	RawString   // non-interpolating string literal: '...' or q{...}
	Backtick    // command string: `...` or qx{...}
	Regex       // match literal: /.../, m{...}, qr{...} including modifiers
	Substitute  // s/.../.../mods
	Translit    // tr/.../.../mods or y/.../.../mods
	QuoteWords  // qw(...) word list
	HeredocDecl // heredoc declaration: <<EOF, <<~'EOF', ... (body handled separately)
	Readline    // <FH>, <STDIN>, <>
	Typeglob    // *name in term position

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semicolon
	Comma
	FatArrow // =>
	Arrow    // ->
	Question // ?
	Colon    // :

	// Operator covers every symbolic operator not listed above; the
	// precedence table keys off the token text.
	Operator

	// Trivia and trailing sections.
	Comment
	Pod
	DataSection // __END__ or __DATA__ marker plus everything after it
)

var kindNames = map[Kind]string{
	EOF:         "EOF",
	Illegal:     "Illegal",
	Ident:       "Ident",
	Keyword:     "Keyword",
	Variable:    "Variable",
	Number:      "Number",
	String:      "String",
	RawString:   "RawString",
	Backtick:    "Backtick",
	Regex:       "Regex",
	Substitute:  "Substitute",
	Translit:    "Translit",
	QuoteWords:  "QuoteWords",
	HeredocDecl: "HeredocDecl",
	Readline:    "Readline",
	Typeglob:    "Typeglob",
	LParen:      "LParen",
	RParen:      "RParen",
	LBrace:      "LBrace",
	RBrace:      "RBrace",
	LBracket:    "LBracket",
	RBracket:    "RBracket",
	Semicolon:   "Semicolon",
	Comma:       "Comma",
	FatArrow:    "FatArrow",
	Arrow:       "Arrow",
	Question:    "Question",
	Colon:       "Colon",
	Operator:    "Operator",
	Comment:     "Comment",
	Pod:         "Pod",
	DataSection: "DataSection",
}

// String returns a readable name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit with its source span and exact text.
type Token struct {
	Kind Kind
	Span position.Span
	Text string
}

// String renders the token for diagnostics and test failure messages.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Span)
}

// IsTrivia reports whether the token carries no grammatical meaning and
// should be skipped by the parser.
func (t Token) IsTrivia() bool {
	return t.Kind == Comment || t.Kind == Pod
}

// structuralKeywords are the words the lexer promotes from Ident to
// Keyword. Word operators (and, or, eq, x, ...) stay Ident so the
// expression parser can resolve them through the precedence table.
var structuralKeywords = map[string]bool{
	"my": true, "our": true, "local": true, "state": true,
	"sub": true, "package": true, "use": true, "no": true, "require": true,
	"if": true, "unless": true, "elsif": true, "else": true,
	"while": true, "until": true, "for": true, "foreach": true,
	"do": true, "eval": true, "try": true, "catch": true, "finally": true,
	"given": true, "when": true, "default": true,
	"return": true, "last": true, "next": true, "redo": true, "goto": true,
}

// IsStructuralKeyword reports whether word starts a statement-level
// construct.
func IsStructuralKeyword(word string) bool {
	return structuralKeywords[word]
}

// phaseBlocks are Perl compile/run-phase block names.
var phaseBlocks = map[string]bool{
	"BEGIN": true, "END": true, "CHECK": true, "INIT": true, "UNITCHECK": true,
}

// IsPhaseBlock reports whether word names a phase block.
func IsPhaseBlock(word string) bool {
	return phaseBlocks[word]
}

// specialSubNames are subroutine names with runtime-assigned meaning that
// still parse as ordinary subs but need exact name spans downstream.
var specialSubNames = map[string]bool{
	"AUTOLOAD": true, "DESTROY": true,
}

// IsSpecialSubName reports whether name is a special subroutine name.
func IsSpecialSubName(name string) bool {
	return specialSubNames[name]
}
