// Package ast defines the syntax tree produced by the perlscope parser.
// The node set is closed: every construct is one struct with exactly the
// typed fields needed to reconstruct source meaning plus its byte span.
// Nodes exclusively own their children; a tree is replaced wholesale by
// the next parse, never mutated field-by-field.
package ast

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/perlscope/perlscope/internal/position"
)

// Kind identifies the concrete type of a node without reflection.
type Kind int

const (
	KindProgram Kind = iota
	KindBlock
	KindVariableDeclaration
	KindSubDeclaration
	KindPackageDeclaration
	KindUseStatement
	KindIfStatement
	KindWhileStatement
	KindForStatement
	KindForeachStatement
	KindTryStatement
	KindGivenStatement
	KindWhenClause
	KindPhaseBlock
	KindExpressionStatement
	KindStatementModifier
	KindReturnStatement
	KindLoopControl
	KindLabeledStatement
	KindDataSection
	KindErrorNode

	KindIdentifier
	KindVariable
	KindTypeglob
	KindNumberLiteral
	KindStringLiteral
	KindListExpr
	KindArrayRef
	KindHashRef
	KindBinaryExpr
	KindUnaryExpr
	KindTernaryExpr
	KindAssignExpr
	KindRangeExpr
	KindFunctionCall
	KindMethodCall
	KindIndexExpr
	KindDerefExpr
	KindReadline
	KindRegexLiteral
	KindMatchExpr
	KindSubstitutionExpr
	KindTransliterationExpr
	KindHeredoc
	KindEvalExpr
	KindDoExpr
	KindAnonSub
	KindMissingExpr
)

var kindNames = map[Kind]string{
	KindProgram:              "Program",
	KindBlock:                "Block",
	KindVariableDeclaration:  "VariableDeclaration",
	KindSubDeclaration:       "SubDeclaration",
	KindPackageDeclaration:   "PackageDeclaration",
	KindUseStatement:         "UseStatement",
	KindIfStatement:          "IfStatement",
	KindWhileStatement:       "WhileStatement",
	KindForStatement:         "ForStatement",
	KindForeachStatement:     "ForeachStatement",
	KindTryStatement:         "TryStatement",
	KindGivenStatement:       "GivenStatement",
	KindWhenClause:           "WhenClause",
	KindPhaseBlock:           "PhaseBlock",
	KindExpressionStatement:  "ExpressionStatement",
	KindStatementModifier:    "StatementModifier",
	KindReturnStatement:      "ReturnStatement",
	KindLoopControl:          "LoopControl",
	KindLabeledStatement:     "LabeledStatement",
	KindDataSection:          "DataSection",
	KindErrorNode:            "ErrorNode",
	KindIdentifier:           "Identifier",
	KindVariable:             "Variable",
	KindTypeglob:             "Typeglob",
	KindNumberLiteral:        "NumberLiteral",
	KindStringLiteral:        "StringLiteral",
	KindListExpr:             "ListExpr",
	KindArrayRef:             "ArrayRef",
	KindHashRef:              "HashRef",
	KindBinaryExpr:           "BinaryExpr",
	KindUnaryExpr:            "UnaryExpr",
	KindTernaryExpr:          "TernaryExpr",
	KindAssignExpr:           "AssignExpr",
	KindRangeExpr:            "RangeExpr",
	KindFunctionCall:         "FunctionCall",
	KindMethodCall:           "MethodCall",
	KindIndexExpr:            "IndexExpr",
	KindDerefExpr:            "DerefExpr",
	KindReadline:             "Readline",
	KindRegexLiteral:         "RegexLiteral",
	KindMatchExpr:            "MatchExpr",
	KindSubstitutionExpr:     "SubstitutionExpr",
	KindTransliterationExpr:  "TransliterationExpr",
	KindHeredoc:              "Heredoc",
	KindEvalExpr:             "EvalExpr",
	KindDoExpr:               "DoExpr",
	KindAnonSub:              "AnonSub",
	KindMissingExpr:          "MissingExpr",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is the base interface for all AST nodes.
type Node interface {
	Kind() Kind
	GetSpan() position.Span
	String() string
}

// Statement represents all statement-level nodes.
type Statement interface {
	Node
	statementNode()
}

// Expression represents all expression-level nodes.
type Expression interface {
	Node
	expressionNode()
}

// ====== Program structure ======

// Program is the root of a parsed document.
type Program struct {
	Span       position.Span
	Statements []Statement
}

func (p *Program) Kind() Kind             { return KindProgram }
func (p *Program) GetSpan() position.Span { return p.Span }
func (p *Program) String() string         { return "Program" }
func (p *Program) statementNode()         {}

// Block is a braced statement sequence.
type Block struct {
	Span       position.Span
	Statements []Statement
}

func (b *Block) Kind() Kind             { return KindBlock }
func (b *Block) GetSpan() position.Span { return b.Span }
func (b *Block) String() string         { return "Block" }
func (b *Block) statementNode()         {}

// ====== Declarations ======

// VariableDeclaration covers my/our/local/state declarations, including
// list declarations like `my ($x, @y)`.
type VariableDeclaration struct {
	Span       position.Span
	Declarator string // my, our, local, state
	Variables  []*Variable
	Init       Expression // nil when no initializer
}

func (v *VariableDeclaration) Kind() Kind             { return KindVariableDeclaration }
func (v *VariableDeclaration) GetSpan() position.Span { return v.Span }
func (v *VariableDeclaration) String() string {
	if len(v.Variables) == 1 {
		return fmt.Sprintf("%s %s", v.Declarator, v.Variables[0].String())
	}
	return fmt.Sprintf("%s (...)", v.Declarator)
}
func (v *VariableDeclaration) statementNode() {}

// SubDeclaration is a named subroutine declaration. NameSpan covers
// exactly the identifier bytes; navigation for special names such as
// AUTOLOAD and DESTROY depends on that precision.
type SubDeclaration struct {
	Span      position.Span
	Name      string
	NameSpan  position.Span
	Prototype string // raw prototype text, empty when absent
	Body      *Block
}

func (s *SubDeclaration) Kind() Kind             { return KindSubDeclaration }
func (s *SubDeclaration) GetSpan() position.Span { return s.Span }
func (s *SubDeclaration) String() string         { return fmt.Sprintf("sub %s", s.Name) }
func (s *SubDeclaration) statementNode()         {}

// PackageDeclaration is `package Name;` or `package Name { ... }`.
type PackageDeclaration struct {
	Span     position.Span
	Name     string
	NameSpan position.Span
	Block    *Block // nil for the statement form
}

func (p *PackageDeclaration) Kind() Kind             { return KindPackageDeclaration }
func (p *PackageDeclaration) GetSpan() position.Span { return p.Span }
func (p *PackageDeclaration) String() string         { return fmt.Sprintf("package %s", p.Name) }
func (p *PackageDeclaration) statementNode()         {}

// UseStatement is `use Module ...`, `no Module ...`, or `use VERSION`.
// Version carries the normalized minimum interpreter version when the
// statement is a version requirement.
type UseStatement struct {
	Span    position.Span
	No      bool // `no` instead of `use`
	Module  string
	Version *semver.Version // nil unless a version requirement
	Args    []Expression
}

func (u *UseStatement) Kind() Kind             { return KindUseStatement }
func (u *UseStatement) GetSpan() position.Span { return u.Span }
func (u *UseStatement) String() string {
	if u.No {
		return fmt.Sprintf("no %s", u.Module)
	}
	return fmt.Sprintf("use %s", u.Module)
}
func (u *UseStatement) statementNode() {}

// ====== Control flow ======

// ElsifClause is one `elsif (COND) BLOCK` arm.
type ElsifClause struct {
	Cond Expression
	Then *Block
}

// IfStatement covers if/unless with elsif chains.
type IfStatement struct {
	Span    position.Span
	Negated bool // unless
	Cond    Expression
	Then    *Block
	Elsifs  []ElsifClause
	Else    *Block // nil when absent
}

func (i *IfStatement) Kind() Kind             { return KindIfStatement }
func (i *IfStatement) GetSpan() position.Span { return i.Span }
func (i *IfStatement) String() string {
	if i.Negated {
		return "unless"
	}
	return "if"
}
func (i *IfStatement) statementNode() {}

// WhileStatement covers while/until loops.
type WhileStatement struct {
	Span  position.Span
	Until bool
	Cond  Expression
	Body  *Block
}

func (w *WhileStatement) Kind() Kind             { return KindWhileStatement }
func (w *WhileStatement) GetSpan() position.Span { return w.Span }
func (w *WhileStatement) String() string {
	if w.Until {
		return "until"
	}
	return "while"
}
func (w *WhileStatement) statementNode() {}

// ForStatement is the C-style three-clause for loop.
type ForStatement struct {
	Span   position.Span
	Init   Expression // any clause may be nil
	Cond   Expression
	Update Expression
	Body   *Block
}

func (f *ForStatement) Kind() Kind             { return KindForStatement }
func (f *ForStatement) GetSpan() position.Span { return f.Span }
func (f *ForStatement) String() string         { return "for" }
func (f *ForStatement) statementNode()         {}

// ForeachStatement is `foreach my $x (LIST) BLOCK` and friends.
type ForeachStatement struct {
	Span position.Span
	Decl string     // "my" etc. when the loop variable is declared inline
	Var  Expression // nil when iterating over $_
	List Expression
	Body *Block
}

func (f *ForeachStatement) Kind() Kind             { return KindForeachStatement }
func (f *ForeachStatement) GetSpan() position.Span { return f.Span }
func (f *ForeachStatement) String() string         { return "foreach" }
func (f *ForeachStatement) statementNode()         {}

// TryStatement is try/catch/finally.
type TryStatement struct {
	Span     position.Span
	Try      *Block
	CatchVar Expression // nil when the catch has no variable
	Catch    *Block     // nil when absent
	Finally  *Block     // nil when absent
}

func (t *TryStatement) Kind() Kind             { return KindTryStatement }
func (t *TryStatement) GetSpan() position.Span { return t.Span }
func (t *TryStatement) String() string         { return "try" }
func (t *TryStatement) statementNode()         {}

// GivenStatement is `given (EXPR) BLOCK`.
type GivenStatement struct {
	Span  position.Span
	Topic Expression
	Body  *Block
}

func (g *GivenStatement) Kind() Kind             { return KindGivenStatement }
func (g *GivenStatement) GetSpan() position.Span { return g.Span }
func (g *GivenStatement) String() string         { return "given" }
func (g *GivenStatement) statementNode()         {}

// WhenClause is `when (EXPR) BLOCK` or `default BLOCK` (nil Match).
type WhenClause struct {
	Span  position.Span
	Match Expression
	Body  *Block
}

func (w *WhenClause) Kind() Kind             { return KindWhenClause }
func (w *WhenClause) GetSpan() position.Span { return w.Span }
func (w *WhenClause) String() string {
	if w.Match == nil {
		return "default"
	}
	return "when"
}
func (w *WhenClause) statementNode() {}

// PhaseBlock is BEGIN/END/CHECK/INIT/UNITCHECK. PhaseSpan covers exactly
// the keyword bytes, excluding braces and body.
type PhaseBlock struct {
	Span      position.Span
	Phase     string
	PhaseSpan position.Span
	Body      *Block
}

func (p *PhaseBlock) Kind() Kind             { return KindPhaseBlock }
func (p *PhaseBlock) GetSpan() position.Span { return p.Span }
func (p *PhaseBlock) String() string         { return p.Phase }
func (p *PhaseBlock) statementNode()         {}

// ExpressionStatement is an expression used as a statement.
type ExpressionStatement struct {
	Span position.Span
	Expr Expression
}

func (e *ExpressionStatement) Kind() Kind             { return KindExpressionStatement }
func (e *ExpressionStatement) GetSpan() position.Span { return e.Span }
func (e *ExpressionStatement) String() string         { return "ExprStmt" }
func (e *ExpressionStatement) statementNode()         {}

// StatementModifier is the trailing-condition form: `print $x if $ok;`.
// It wraps the governed statement rather than mutating it.
type StatementModifier struct {
	Span    position.Span
	Keyword string // if, unless, while, until, for, foreach
	Cond    Expression
	Stmt    Statement
}

func (s *StatementModifier) Kind() Kind             { return KindStatementModifier }
func (s *StatementModifier) GetSpan() position.Span { return s.Span }
func (s *StatementModifier) String() string         { return "modifier " + s.Keyword }
func (s *StatementModifier) statementNode()         {}

// ReturnStatement is `return EXPR?`.
type ReturnStatement struct {
	Span  position.Span
	Value Expression // nil for bare return
}

func (r *ReturnStatement) Kind() Kind             { return KindReturnStatement }
func (r *ReturnStatement) GetSpan() position.Span { return r.Span }
func (r *ReturnStatement) String() string         { return "return" }
func (r *ReturnStatement) statementNode()         {}

// LoopControl is last/next/redo with an optional label.
type LoopControl struct {
	Span    position.Span
	Keyword string
	Label   string
}

func (l *LoopControl) Kind() Kind             { return KindLoopControl }
func (l *LoopControl) GetSpan() position.Span { return l.Span }
func (l *LoopControl) String() string         { return l.Keyword }
func (l *LoopControl) statementNode()         {}

// LabeledStatement attaches a loop label to its statement.
type LabeledStatement struct {
	Span      position.Span
	Label     string
	LabelSpan position.Span
	Stmt      Statement
}

func (l *LabeledStatement) Kind() Kind             { return KindLabeledStatement }
func (l *LabeledStatement) GetSpan() position.Span { return l.Span }
func (l *LabeledStatement) String() string         { return l.Label + ":" }
func (l *LabeledStatement) statementNode()         {}

// DataSection captures __END__/__DATA__ and everything after it.
type DataSection struct {
	Span    position.Span
	Marker  string
	Content string
}

func (d *DataSection) Kind() Kind             { return KindDataSection }
func (d *DataSection) GetSpan() position.Span { return d.Span }
func (d *DataSection) String() string         { return d.Marker }
func (d *DataSection) statementNode()         {}

// ErrorNode stands in for a construct that failed to parse. It keeps
// the surrounding statements parseable and carries the best-effort
// partial node when one exists. ErrorNode satisfies both Statement and
// Expression so recovery can substitute it anywhere.
type ErrorNode struct {
	Span    position.Span
	Message string
	Partial Node // nil when nothing useful was built
}

func (e *ErrorNode) Kind() Kind             { return KindErrorNode }
func (e *ErrorNode) GetSpan() position.Span { return e.Span }
func (e *ErrorNode) String() string         { return "Error: " + e.Message }
func (e *ErrorNode) statementNode()         {}
func (e *ErrorNode) expressionNode()        {}
