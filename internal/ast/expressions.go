package ast

import (
	"fmt"

	"github.com/perlscope/perlscope/internal/position"
)

// Identifier is a bareword: function names, package names, hash keys.
type Identifier struct {
	Span position.Span
	Name string
}

func (i *Identifier) Kind() Kind             { return KindIdentifier }
func (i *Identifier) GetSpan() position.Span { return i.Span }
func (i *Identifier) String() string         { return i.Name }
func (i *Identifier) expressionNode()        {}

// Variable is a sigiled variable: $x, @list, %hash, &code.
type Variable struct {
	Span  position.Span
	Sigil byte // '$', '@', '%', '&'
	Name  string
}

func (v *Variable) Kind() Kind             { return KindVariable }
func (v *Variable) GetSpan() position.Span { return v.Span }
func (v *Variable) String() string         { return string(v.Sigil) + v.Name }
func (v *Variable) expressionNode()        {}

// Typeglob is *name in term position.
type Typeglob struct {
	Span position.Span
	Name string
}

func (t *Typeglob) Kind() Kind             { return KindTypeglob }
func (t *Typeglob) GetSpan() position.Span { return t.Span }
func (t *Typeglob) String() string         { return "*" + t.Name }
func (t *Typeglob) expressionNode()        {}

// NumberLiteral keeps the raw spelling; numeric evaluation is not this
// layer's job.
type NumberLiteral struct {
	Span position.Span
	Raw  string
}

func (n *NumberLiteral) Kind() Kind             { return KindNumberLiteral }
func (n *NumberLiteral) GetSpan() position.Span { return n.Span }
func (n *NumberLiteral) String() string         { return n.Raw }
func (n *NumberLiteral) expressionNode()        {}

// StringLiteral covers "", '', q//, qq//, and backtick strings.
type StringLiteral struct {
	Span         position.Span
	Value        string
	Interpolated bool // double-quoted or qq
	Backtick     bool // command string
}

func (s *StringLiteral) Kind() Kind             { return KindStringLiteral }
func (s *StringLiteral) GetSpan() position.Span { return s.Span }
func (s *StringLiteral) String() string         { return fmt.Sprintf("%q", s.Value) }
func (s *StringLiteral) expressionNode()        {}

// ListExpr is a comma-separated list, including qw() word lists.
type ListExpr struct {
	Span     position.Span
	Elements []Expression
	Paren    bool // explicitly parenthesized
}

func (l *ListExpr) Kind() Kind             { return KindListExpr }
func (l *ListExpr) GetSpan() position.Span { return l.Span }
func (l *ListExpr) String() string         { return fmt.Sprintf("List(%d)", len(l.Elements)) }
func (l *ListExpr) expressionNode()        {}

// ArrayRef is an anonymous array constructor [ ... ].
type ArrayRef struct {
	Span     position.Span
	Elements []Expression
}

func (a *ArrayRef) Kind() Kind             { return KindArrayRef }
func (a *ArrayRef) GetSpan() position.Span { return a.Span }
func (a *ArrayRef) String() string         { return "[...]" }
func (a *ArrayRef) expressionNode()        {}

// HashRef is an anonymous hash constructor { ... }.
type HashRef struct {
	Span  position.Span
	Pairs []Expression
}

func (h *HashRef) Kind() Kind             { return KindHashRef }
func (h *HashRef) GetSpan() position.Span { return h.Span }
func (h *HashRef) String() string         { return "{...}" }
func (h *HashRef) expressionNode()        {}

// BinaryExpr is any infix operator application, symbolic or word form.
type BinaryExpr struct {
	Span  position.Span
	Op    string
	Left  Expression
	Right Expression
}

func (b *BinaryExpr) Kind() Kind             { return KindBinaryExpr }
func (b *BinaryExpr) GetSpan() position.Span { return b.Span }
func (b *BinaryExpr) String() string         { return "(" + b.Op + ")" }
func (b *BinaryExpr) expressionNode()        {}

// UnaryExpr is a prefix or postfix operator application.
type UnaryExpr struct {
	Span    position.Span
	Op      string
	Operand Expression
	Postfix bool // $i++ rather than ++$i
}

func (u *UnaryExpr) Kind() Kind             { return KindUnaryExpr }
func (u *UnaryExpr) GetSpan() position.Span { return u.Span }
func (u *UnaryExpr) String() string         { return u.Op }
func (u *UnaryExpr) expressionNode()        {}

// TernaryExpr is COND ? THEN : ELSE.
type TernaryExpr struct {
	Span position.Span
	Cond Expression
	Then Expression
	Else Expression
}

func (t *TernaryExpr) Kind() Kind             { return KindTernaryExpr }
func (t *TernaryExpr) GetSpan() position.Span { return t.Span }
func (t *TernaryExpr) String() string         { return "?:" }
func (t *TernaryExpr) expressionNode()        {}

// AssignExpr is = and every compound assignment (+=, .=, //=, ...).
// Assignment is right-associative, so RHS may itself be an AssignExpr.
type AssignExpr struct {
	Span position.Span
	Op   string
	LHS  Expression
	RHS  Expression
}

func (a *AssignExpr) Kind() Kind             { return KindAssignExpr }
func (a *AssignExpr) GetSpan() position.Span { return a.Span }
func (a *AssignExpr) String() string         { return a.Op }
func (a *AssignExpr) expressionNode()        {}

// RangeExpr is `..` or `...`. The range operators are non-associative;
// chained ranges are parsed left to right with a diagnostic attached by
// the parser.
type RangeExpr struct {
	Span position.Span
	Op   string
	Low  Expression
	High Expression
}

func (r *RangeExpr) Kind() Kind             { return KindRangeExpr }
func (r *RangeExpr) GetSpan() position.Span { return r.Span }
func (r *RangeExpr) String() string         { return r.Op }
func (r *RangeExpr) expressionNode()        {}

// FunctionCall is NAME(ARGS) or a builtin applied without parens.
type FunctionCall struct {
	Span     position.Span
	Name     string
	NameSpan position.Span
	Args     []Expression
	Paren    bool
}

func (f *FunctionCall) Kind() Kind             { return KindFunctionCall }
func (f *FunctionCall) GetSpan() position.Span { return f.Span }
func (f *FunctionCall) String() string         { return f.Name + "()" }
func (f *FunctionCall) expressionNode()        {}

// MethodCall is INVOCANT->method(ARGS) or Class->method.
type MethodCall struct {
	Span       position.Span
	Invocant   Expression
	Method     string
	MethodSpan position.Span
	Args       []Expression
}

func (m *MethodCall) Kind() Kind             { return KindMethodCall }
func (m *MethodCall) GetSpan() position.Span { return m.Span }
func (m *MethodCall) String() string         { return "->" + m.Method }
func (m *MethodCall) expressionNode()        {}

// IndexExpr is element access: $a[0], $h{key}, $ref->[0], $ref->{k}.
type IndexExpr struct {
	Span   position.Span
	Target Expression
	Index  Expression
	Brace  bool // hash subscript {...} rather than [...]
	Arrow  bool // reached through ->
}

func (i *IndexExpr) Kind() Kind             { return KindIndexExpr }
func (i *IndexExpr) GetSpan() position.Span { return i.Span }
func (i *IndexExpr) String() string {
	if i.Brace {
		return "{index}"
	}
	return "[index]"
}
func (i *IndexExpr) expressionNode() {}

// DerefExpr is a sigil dereference: @{$ref}, %{$ref}, $$x, \$x.
type DerefExpr struct {
	Span    position.Span
	Op      string // "@", "%", "$", "\\", "&"
	Operand Expression
}

func (d *DerefExpr) Kind() Kind             { return KindDerefExpr }
func (d *DerefExpr) GetSpan() position.Span { return d.Span }
func (d *DerefExpr) String() string         { return d.Op + "{...}" }
func (d *DerefExpr) expressionNode()        {}

// Readline is <FH>, <$fh>, or <>.
type Readline struct {
	Span   position.Span
	Handle string // empty for <>
}

func (r *Readline) Kind() Kind             { return KindReadline }
func (r *Readline) GetSpan() position.Span { return r.Span }
func (r *Readline) String() string         { return "<" + r.Handle + ">" }
func (r *Readline) expressionNode()        {}

// RegexLiteral is m// or qr// with its modifier set.
type RegexLiteral struct {
	Span      position.Span
	Pattern   string
	Modifiers string
	Compiled  bool // qr// rather than m//
}

func (r *RegexLiteral) Kind() Kind             { return KindRegexLiteral }
func (r *RegexLiteral) GetSpan() position.Span { return r.Span }
func (r *RegexLiteral) String() string         { return "m/" + r.Pattern + "/" + r.Modifiers }
func (r *RegexLiteral) expressionNode()        {}

// MatchExpr binds a target to a regex with =~ or !~.
type MatchExpr struct {
	Span    position.Span
	Target  Expression
	Negated bool // !~
	Regex   Expression
}

func (m *MatchExpr) Kind() Kind             { return KindMatchExpr }
func (m *MatchExpr) GetSpan() position.Span { return m.Span }
func (m *MatchExpr) String() string {
	if m.Negated {
		return "!~"
	}
	return "=~"
}
func (m *MatchExpr) expressionNode() {}

// SubstitutionExpr is s/PATTERN/REPLACEMENT/MODIFIERS, with or without
// an explicit =~ binding (Target nil means $_).
type SubstitutionExpr struct {
	Span        position.Span
	Target      Expression
	Negated     bool
	Pattern     string
	Replacement string
	Modifiers   string
}

func (s *SubstitutionExpr) Kind() Kind             { return KindSubstitutionExpr }
func (s *SubstitutionExpr) GetSpan() position.Span { return s.Span }
func (s *SubstitutionExpr) String() string {
	return "s/" + s.Pattern + "/" + s.Replacement + "/" + s.Modifiers
}
func (s *SubstitutionExpr) expressionNode() {}

// TransliterationExpr is tr/// or y///.
type TransliterationExpr struct {
	Span      position.Span
	Target    Expression
	Negated   bool
	Search    string
	Replace   string
	Modifiers string
}

func (t *TransliterationExpr) Kind() Kind             { return KindTransliterationExpr }
func (t *TransliterationExpr) GetSpan() position.Span { return t.Span }
func (t *TransliterationExpr) String() string {
	return "tr/" + t.Search + "/" + t.Replace + "/" + t.Modifiers
}
func (t *TransliterationExpr) expressionNode() {}

// Heredoc is a heredoc reference in expression position. The body is
// resolved by the scanner; Body may be empty when the terminator was
// never found.
type Heredoc struct {
	Span       position.Span
	Terminator string
	Indented   bool // <<~
	Quote      byte // '"', '\'', '`', or 0 for bare
	Body       string
}

func (h *Heredoc) Kind() Kind             { return KindHeredoc }
func (h *Heredoc) GetSpan() position.Span { return h.Span }
func (h *Heredoc) String() string         { return "<<" + h.Terminator }
func (h *Heredoc) expressionNode()        {}

// EvalExpr is eval BLOCK or eval EXPR.
type EvalExpr struct {
	Span  position.Span
	Block *Block     // nil for string eval
	Str   Expression // nil for block eval
}

func (e *EvalExpr) Kind() Kind             { return KindEvalExpr }
func (e *EvalExpr) GetSpan() position.Span { return e.Span }
func (e *EvalExpr) String() string         { return "eval" }
func (e *EvalExpr) expressionNode()        {}

// DoExpr is do BLOCK.
type DoExpr struct {
	Span  position.Span
	Block *Block
}

func (d *DoExpr) Kind() Kind             { return KindDoExpr }
func (d *DoExpr) GetSpan() position.Span { return d.Span }
func (d *DoExpr) String() string         { return "do" }
func (d *DoExpr) expressionNode()        {}

// AnonSub is `sub { ... }` in expression position.
type AnonSub struct {
	Span position.Span
	Body *Block
}

func (a *AnonSub) Kind() Kind             { return KindAnonSub }
func (a *AnonSub) GetSpan() position.Span { return a.Span }
func (a *AnonSub) String() string         { return "sub {...}" }
func (a *AnonSub) expressionNode()        {}

// MissingExpr marks a position where an expression was required but
// absent, e.g. the right side of a dangling binary operator. Its span
// is empty, anchored at the point of absence.
type MissingExpr struct {
	Span position.Span
}

func (m *MissingExpr) Kind() Kind             { return KindMissingExpr }
func (m *MissingExpr) GetSpan() position.Span { return m.Span }
func (m *MissingExpr) String() string         { return "<missing>" }
func (m *MissingExpr) expressionNode()        {}
