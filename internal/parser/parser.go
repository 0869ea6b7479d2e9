// Package parser builds perlscope syntax trees. Statements are parsed
// by recursive descent, expressions by precedence climbing over a
// static operator table. Structural errors never fail a parse: the
// broken region becomes an ErrorNode and parsing resumes at the next
// synchronization point. Only resource-limit breaches abort, surfacing
// as *recovery.LimitError.
package parser

import (
	"fmt"
	"strings"

	"github.com/perlscope/perlscope/internal/ast"
	"github.com/perlscope/perlscope/internal/guard"
	"github.com/perlscope/perlscope/internal/lexer"
	"github.com/perlscope/perlscope/internal/position"
	"github.com/perlscope/perlscope/internal/recovery"
	"github.com/perlscope/perlscope/internal/token"
)

// Parser consumes one token stream. It is not safe for concurrent use.
type Parser struct {
	src     string
	tokens  []token.Token
	pos     int
	current token.Token
	peek    token.Token

	bodies map[int]lexer.HeredocBody

	cfg           recovery.Config
	monitor       *recovery.Monitor
	engine        *recovery.Engine
	regexLimits   guard.RegexLimits
	heredocLimits guard.ScanLimits

	diags       []recovery.Diagnostic
	suggestions []recovery.Suggestion

	// openDelims tracks currently unclosed brackets for error context.
	openDelims []byte

	depth int
}

// maxSkipPerRecovery bounds how many tokens one recovery may discard.
const maxSkipPerRecovery = 256

// New builds a parser over src with the given resource configuration.
func New(src string, cfg recovery.Config) *Parser {
	lx := lexer.New(src)
	var toks []token.Token
	for {
		t := lx.Next()
		if !t.IsTrivia() {
			toks = append(toks, t)
		}
		if t.Kind == token.EOF {
			break
		}
	}
	p := &Parser{
		src:           src,
		tokens:        toks,
		bodies:        lx.Bodies(),
		cfg:           cfg,
		monitor:       recovery.NewMonitor(cfg),
		engine:        recovery.NewEngine(),
		regexLimits:   guard.DefaultRegexLimits(),
		heredocLimits: guard.DefaultScanLimits(),
	}
	p.current = p.tokens[0]
	if len(p.tokens) > 1 {
		p.peek = p.tokens[1]
	} else {
		p.peek = p.current
	}
	return p
}

// Parse is the convenience entry point with default limits.
func Parse(src string) (*ast.Program, []recovery.Diagnostic, error) {
	p := New(src, recovery.DefaultConfig())
	prog, err := p.Run()
	return prog, p.Diagnostics(), err
}

// Run parses the whole document. The returned error is nil or a
// *recovery.LimitError; everything structural lands in Diagnostics.
func (p *Parser) Run() (*ast.Program, error) {
	p.checkHeredocs()
	prog := &ast.Program{Span: position.Span{Start: 0, End: len(p.src)}}
	for p.current.Kind != token.EOF {
		if err := p.monitor.ShouldContinue(); err != nil {
			return nil, err
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, nil
}

// Diagnostics returns everything recorded so far.
func (p *Parser) Diagnostics() []recovery.Diagnostic { return p.diags }

// Suggestions returns the ranked repair suggestions recorded so far.
func (p *Parser) Suggestions() []recovery.Suggestion { return p.suggestions }

// NodeCount reports the monitor's node counter, used by tests and the
// incremental engine.
func (p *Parser) NodeCount() int { return p.monitor.Nodes() }

// ====== token plumbing ======

func (p *Parser) next() {
	if p.pos+1 < len(p.tokens) {
		p.pos++
	}
	p.current = p.tokens[p.pos]
	if p.pos+1 < len(p.tokens) {
		p.peek = p.tokens[p.pos+1]
	} else {
		p.peek = p.current
	}
}

func (p *Parser) at(kind token.Kind) bool     { return p.current.Kind == kind }
func (p *Parser) peekIs(kind token.Kind) bool { return p.peek.Kind == kind }

func (p *Parser) atWord(text string) bool {
	return (p.current.Kind == token.Ident || p.current.Kind == token.Keyword) && p.current.Text == text
}

func (p *Parser) atOp(text string) bool {
	return p.current.Kind == token.Operator && p.current.Text == text
}

// expect consumes the current token when it matches; otherwise it
// records an unexpected-token error and leaves the token in place.
func (p *Parser) expect(kind token.Kind, what string) bool {
	if p.at(kind) {
		p.next()
		return true
	}
	p.recordError(recovery.ErrorContext{
		Category:  recovery.CategoryUnexpectedToken,
		Span:      p.current.Span,
		TokenText: p.currentText(),
		Expected:  []string{what},
	})
	return false
}

func (p *Parser) currentText() string {
	if p.current.Kind == token.EOF {
		return ""
	}
	return p.current.Text
}

func (p *Parser) countNode() { p.monitor.AddNodes(1) }

// checkHeredocs runs the context-aware heredoc scan over the whole
// document. The lexer resolves top-level bodies on its own; this pass
// adds the findings it cannot see, heredocs nested inside evaluated
// bodies (eval strings, s///e replacements) and depth or deadline
// breaches.
func (p *Parser) checkHeredocs() {
	if !strings.Contains(p.src, "<<") {
		return
	}
	for _, issue := range guard.ScanHeredocs(p.src, p.heredocLimits).Issues {
		p.warn(issue.Span, issue.Code, issue.Message)
	}
}

// ====== delimiter bookkeeping ======

func (p *Parser) pushDelim(b byte) { p.openDelims = append(p.openDelims, b) }
func (p *Parser) popDelim() {
	if len(p.openDelims) > 0 {
		p.openDelims = p.openDelims[:len(p.openDelims)-1]
	}
}

// ====== error recording and recovery ======

// recordError refines the context, records a diagnostic, and appends
// the engine's ranked suggestions. Suggestion generation honors the
// heuristics switch.
func (p *Parser) recordError(ctx recovery.ErrorContext) {
	ctx.OpenDelims = append([]byte(nil), p.openDelims...)
	ctx = recovery.Refine(ctx)
	p.diags = append(p.diags, recovery.Diagnostic{
		Span:     ctx.Span,
		Severity: recovery.SeverityError,
		Category: ctx.Category,
		Message:  p.describeError(ctx),
	})
	if p.cfg.EnableHeuristics {
		p.suggestions = append(p.suggestions, p.engine.Suggest(ctx)...)
	}
}

func (p *Parser) describeError(ctx recovery.ErrorContext) string {
	switch ctx.Category {
	case recovery.CategoryMissingSemicolon:
		return "missing ';' after statement"
	case recovery.CategoryUnclosedDelimiter:
		if n := len(ctx.OpenDelims); n > 0 {
			return fmt.Sprintf("unclosed '%c'", ctx.OpenDelims[n-1])
		}
		return "unclosed delimiter"
	case recovery.CategoryMissingExpression:
		return "expected an expression"
	default:
		if ctx.TokenText == "" {
			return "unexpected end of input"
		}
		if len(ctx.Expected) == 1 {
			return fmt.Sprintf("unexpected %q, expected %s", ctx.TokenText, ctx.Expected[0])
		}
		return fmt.Sprintf("unexpected %q", ctx.TokenText)
	}
}

// warn records a non-fatal diagnostic outside the error path.
func (p *Parser) warn(span position.Span, category, message string) {
	p.diags = append(p.diags, recovery.Diagnostic{
		Span:     span,
		Severity: recovery.SeverityWarning,
		Category: category,
		Message:  message,
	})
}

// recoverStatement synchronizes after a failed statement: tokens are
// skipped up to the next statement boundary, and the skipped region
// becomes an ErrorNode. At least one token is always consumed so
// recovery makes progress.
func (p *Parser) recoverStatement(msg string, partial ast.Node) *ast.ErrorNode {
	start := p.current.Span
	strategy := recovery.ChooseStrategy(p.cfg, recovery.ErrorContext{
		Category:   recovery.CategoryUnexpectedToken,
		TokenText:  p.currentText(),
		OpenDelims: p.openDelims,
	})

	skipped := 0
	end := start.End
	if p.current.Kind != token.EOF {
		end = p.current.Span.End
		p.next()
		skipped++
	}
	if strategy != recovery.StrategySkipToken {
		for p.current.Kind != token.EOF && skipped < maxSkipPerRecovery {
			if p.atSyncPoint() {
				break
			}
			end = p.current.Span.End
			p.next()
			skipped++
		}
		// A semicolon is part of the broken statement, not the next.
		if p.at(token.Semicolon) {
			end = p.current.Span.End
			p.next()
		}
	}

	node := &ast.ErrorNode{
		Span:    position.Span{Start: start.Start, End: end},
		Message: msg,
		Partial: partial,
	}
	p.countNode()
	return node
}

// atSyncPoint reports whether the current token can plausibly start or
// end a statement, making it safe to resume parsing.
func (p *Parser) atSyncPoint() bool {
	switch p.current.Kind {
	case token.Semicolon, token.RBrace, token.EOF:
		return true
	case token.Keyword:
		return true
	case token.Ident:
		return token.IsPhaseBlock(p.current.Text)
	}
	return false
}
