package parser

import (
	"strings"

	"github.com/perlscope/perlscope/internal/ast"
	"github.com/perlscope/perlscope/internal/guard"
	"github.com/perlscope/perlscope/internal/position"
	"github.com/perlscope/perlscope/internal/recovery"
	"github.com/perlscope/perlscope/internal/token"
)

// listOperators are builtins that swallow a comma list without parens:
// `print "a", "b";`.
var listOperators = map[string]bool{
	"print": true, "say": true, "warn": true, "die": true,
	"push": true, "unshift": true, "splice": true, "join": true,
	"split": true, "map": true, "grep": true, "sort": true,
	"reverse": true, "printf": true, "sprintf": true, "open": true,
	"bless": true,
}

// unaryBuiltins take one optional argument without parens.
var unaryBuiltins = map[string]bool{
	"pop": true, "shift": true, "keys": true, "values": true,
	"each": true, "exists": true, "delete": true, "chomp": true,
	"chop": true, "lc": true, "uc": true, "lcfirst": true,
	"ucfirst": true, "length": true, "chr": true, "ord": true,
	"abs": true, "int": true, "close": true, "chdir": true,
	"rmdir": true, "readdir": true, "caller": true, "exit": true,
}

// parsePrimary parses one term. When the current token cannot start a
// term it records an error, leaves the token alone, and returns a
// MissingExpr so the caller decides how to recover.
func (p *Parser) parsePrimary() (ast.Expression, error) {
	t := p.current
	switch t.Kind {
	case token.Number:
		p.next()
		n := &ast.NumberLiteral{Span: t.Span, Raw: t.Text}
		p.countNode()
		return n, nil

	case token.String:
		p.next()
		n := &ast.StringLiteral{Span: t.Span, Value: stringValue(t.Text), Interpolated: true}
		p.countNode()
		return n, nil

	case token.RawString:
		p.next()
		n := &ast.StringLiteral{Span: t.Span, Value: stringValue(t.Text)}
		p.countNode()
		return n, nil

	case token.Backtick:
		p.next()
		n := &ast.StringLiteral{Span: t.Span, Value: stringValue(t.Text), Interpolated: true, Backtick: true}
		p.countNode()
		return n, nil

	case token.Variable:
		return p.parseVariableTerm()

	case token.Typeglob:
		p.next()
		n := &ast.Typeglob{Span: t.Span, Name: t.Text[1:]}
		p.countNode()
		return n, nil

	case token.Regex:
		return p.parseRegexTerm()

	case token.Substitute:
		return p.parseSubstituteTerm()

	case token.Translit:
		return p.parseTranslitTerm()

	case token.QuoteWords:
		return p.parseQuoteWords()

	case token.HeredocDecl:
		return p.parseHeredocTerm()

	case token.Readline:
		p.next()
		handle := strings.TrimSuffix(strings.TrimPrefix(t.Text, "<"), ">")
		n := &ast.Readline{Span: t.Span, Handle: handle}
		p.countNode()
		return n, nil

	case token.LParen:
		return p.parseParenTerm()

	case token.LBracket:
		return p.parseArrayRef()

	case token.LBrace:
		return p.parseHashRef()

	case token.Ident:
		return p.parseBarewordTerm()

	case token.Keyword:
		switch t.Text {
		case "eval":
			return p.parseEvalTerm()
		case "do":
			return p.parseDoTerm()
		case "sub":
			return p.parseAnonSub()
		case "my", "our", "local", "state":
			// Declarations inside expressions (for-loop headers,
			// assignments in conditions) parse as a declarator prefix.
			p.next()
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			n := &ast.UnaryExpr{
				Span:    position.SpanBetween(t.Span, operand.GetSpan()),
				Op:      t.Text,
				Operand: operand,
			}
			p.countNode()
			return n, nil
		case "return":
			// return in expression position: `$x > 0 or return;`
			p.next()
			n := &ast.FunctionCall{Span: t.Span, Name: "return", NameSpan: t.Span}
			p.countNode()
			if p.canStartExpression() {
				arg, err := p.parseExpression(precComma)
				if err != nil {
					return nil, err
				}
				n.Args = []ast.Expression{arg}
				n.Span = position.SpanBetween(t.Span, arg.GetSpan())
			}
			return n, nil
		}
	}

	p.recordError(recovery.ErrorContext{
		Category:  recovery.CategoryMissingExpression,
		Span:      t.Span,
		TokenText: p.currentText(),
	})
	m := &ast.MissingExpr{Span: position.Span{Start: t.Span.Start, End: t.Span.Start}}
	p.countNode()
	return m, nil
}

// parseVariableTerm handles sigiled variables, including the braced
// dereference forms a bare-sigil token introduces.
func (p *Parser) parseVariableTerm() (ast.Expression, error) {
	t := p.current
	if len(t.Text) >= 2 {
		v := p.variableFromToken()
		return v, nil
	}
	// Bare sigil: ${...}, @{...}, %{...}, $$ref.
	sigil := t.Text
	p.next()
	switch {
	case p.at(token.LBrace):
		p.pushDelim('{')
		p.next()
		inner, err := p.parseExpression(precLowOr)
		if err != nil {
			return nil, err
		}
		end := p.current.Span.End
		if !p.expect(token.RBrace, "}") {
			p.popDelim()
			n := &ast.ErrorNode{Span: position.SpanBetween(t.Span, inner.GetSpan()), Message: "unterminated dereference", Partial: inner}
			p.countNode()
			return n, nil
		}
		p.popDelim()
		n := &ast.DerefExpr{Span: position.Span{Start: t.Span.Start, End: end}, Op: sigil, Operand: inner}
		p.countNode()
		return n, nil
	case p.at(token.Variable):
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := &ast.DerefExpr{Span: position.SpanBetween(t.Span, inner.GetSpan()), Op: sigil, Operand: inner}
		p.countNode()
		return n, nil
	default:
		p.recordError(recovery.ErrorContext{
			Category:  recovery.CategoryUnexpectedToken,
			Span:      p.current.Span,
			TokenText: p.currentText(),
			Expected:  []string{"a variable name or block"},
		})
		n := &ast.ErrorNode{Span: t.Span, Message: "dangling sigil " + sigil}
		p.countNode()
		return n, nil
	}
}

func (p *Parser) parseRegexTerm() (ast.Expression, error) {
	t := p.current
	p.next()
	parts := splitQuoteLike(t.Text)
	n := &ast.RegexLiteral{
		Span:      t.Span,
		Pattern:   parts.first,
		Modifiers: parts.modifiers,
		Compiled:  parts.op == "qr",
	}
	p.countNode()
	p.checkPattern(parts.first, parts.modifiers, t.Span)
	return n, nil
}

func (p *Parser) parseSubstituteTerm() (ast.Expression, error) {
	t := p.current
	p.next()
	parts := splitQuoteLike(t.Text)
	n := &ast.SubstitutionExpr{
		Span:        t.Span,
		Pattern:     parts.first,
		Replacement: parts.second,
		Modifiers:   parts.modifiers,
	}
	p.countNode()
	p.checkPattern(parts.first, parts.modifiers, t.Span)
	return n, nil
}

func (p *Parser) parseTranslitTerm() (ast.Expression, error) {
	t := p.current
	p.next()
	parts := splitQuoteLike(t.Text)
	n := &ast.TransliterationExpr{
		Span:      t.Span,
		Search:    parts.first,
		Replace:   parts.second,
		Modifiers: parts.modifiers,
	}
	p.countNode()
	return n, nil
}

// checkPattern runs the regex complexity guard and downgrades its
// findings to parse diagnostics.
func (p *Parser) checkPattern(pattern, modifiers string, span position.Span) {
	for _, issue := range guard.CheckRegex(pattern, modifiers, span, p.regexLimits) {
		p.warn(issue.Span, issue.Code, issue.Message)
	}
}

func (p *Parser) parseQuoteWords() (ast.Expression, error) {
	t := p.current
	p.next()
	list := &ast.ListExpr{Span: t.Span}
	p.countNode()
	for _, w := range splitWords(t.Text) {
		s := &ast.StringLiteral{Span: t.Span, Value: w}
		p.countNode()
		list.Elements = append(list.Elements, s)
	}
	return list, nil
}

func (p *Parser) parseHeredocTerm() (ast.Expression, error) {
	t := p.current
	p.next()
	n := &ast.Heredoc{Span: t.Span}
	p.countNode()
	if body, ok := p.bodies[t.Span.Start]; ok {
		n.Terminator = body.Terminator
		n.Indented = body.Indented
		n.Quote = body.Quote
		n.Body = body.Body
		if !body.Terminated {
			p.warn(t.Span, "heredoc-unterminated", "heredoc terminator "+body.Terminator+" never found")
		}
	}
	return n, nil
}

// parseParenTerm parses ( ... ): the empty list, a grouped expression,
// or an explicit list.
func (p *Parser) parseParenTerm() (ast.Expression, error) {
	start := p.current.Span.Start
	p.pushDelim('(')
	p.next()
	if p.at(token.RParen) {
		end := p.current.Span.End
		p.next()
		p.popDelim()
		n := &ast.ListExpr{Span: position.Span{Start: start, End: end}, Paren: true}
		p.countNode()
		return n, nil
	}
	inner, err := p.parseExpression(precComma)
	if err != nil {
		return nil, err
	}
	end := p.current.Span.End
	if !p.expect(token.RParen, ")") {
		p.popDelim()
		n := &ast.ErrorNode{
			Span:    position.Span{Start: start, End: inner.GetSpan().End},
			Message: "unterminated parenthesized expression",
			Partial: inner,
		}
		p.countNode()
		return n, nil
	}
	p.popDelim()
	if l, ok := inner.(*ast.ListExpr); ok {
		l.Paren = true
		l.Span = position.Span{Start: start, End: end}
		return l, nil
	}
	// Parens around a single expression only adjust the span.
	return inner, nil
}

func (p *Parser) parseArrayRef() (ast.Expression, error) {
	start := p.current.Span.Start
	p.pushDelim('[')
	p.next()
	n := &ast.ArrayRef{}
	p.countNode()
	if !p.at(token.RBracket) {
		inner, err := p.parseExpression(precComma)
		if err != nil {
			return nil, err
		}
		if l, ok := inner.(*ast.ListExpr); ok {
			n.Elements = l.Elements
		} else {
			n.Elements = []ast.Expression{inner}
		}
	}
	end := p.current.Span.End
	if !p.expect(token.RBracket, "]") {
		p.popDelim()
		e := &ast.ErrorNode{Span: position.Span{Start: start, End: end}, Message: "unterminated array constructor", Partial: n}
		p.countNode()
		return e, nil
	}
	p.popDelim()
	n.Span = position.Span{Start: start, End: end}
	return n, nil
}

func (p *Parser) parseHashRef() (ast.Expression, error) {
	start := p.current.Span.Start
	p.pushDelim('{')
	p.next()
	n := &ast.HashRef{}
	p.countNode()
	if !p.at(token.RBrace) {
		inner, err := p.parseExpression(precComma)
		if err != nil {
			return nil, err
		}
		if l, ok := inner.(*ast.ListExpr); ok {
			n.Pairs = l.Elements
		} else {
			n.Pairs = []ast.Expression{inner}
		}
	}
	end := p.current.Span.End
	if !p.expect(token.RBrace, "}") {
		p.popDelim()
		e := &ast.ErrorNode{Span: position.Span{Start: start, End: end}, Message: "unterminated hash constructor", Partial: n}
		p.countNode()
		return e, nil
	}
	p.popDelim()
	n.Span = position.Span{Start: start, End: end}
	return n, nil
}

// parseBarewordTerm handles identifiers in term position: function
// calls with parens, list operators without parens, class names ahead
// of ->, and plain identifiers (hash keys, constants).
func (p *Parser) parseBarewordTerm() (ast.Expression, error) {
	t := p.current
	p.next()

	if p.at(token.LParen) {
		args, end, err := p.parseParenArgs()
		if err != nil {
			return nil, err
		}
		n := &ast.FunctionCall{
			Span:     position.Span{Start: t.Span.Start, End: end},
			Name:     t.Text,
			NameSpan: t.Span,
			Args:     args,
			Paren:    true,
		}
		p.countNode()
		return n, nil
	}

	// A fat arrow autoquotes the bareword; leave it as an identifier.
	if p.at(token.FatArrow) {
		n := &ast.Identifier{Span: t.Span, Name: t.Text}
		p.countNode()
		return n, nil
	}

	if listOperators[t.Text] && p.canStartExpression() {
		arg, err := p.parseExpression(precComma)
		if err != nil {
			return nil, err
		}
		n := &ast.FunctionCall{
			Span:     position.SpanBetween(t.Span, arg.GetSpan()),
			Name:     t.Text,
			NameSpan: t.Span,
		}
		p.countNode()
		if l, ok := arg.(*ast.ListExpr); ok && !l.Paren {
			n.Args = l.Elements
		} else {
			n.Args = []ast.Expression{arg}
		}
		return n, nil
	}

	if unaryBuiltins[t.Text] && p.canStartExpression() {
		arg, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		n := &ast.FunctionCall{
			Span:     position.SpanBetween(t.Span, arg.GetSpan()),
			Name:     t.Text,
			NameSpan: t.Span,
			Args:     []ast.Expression{arg},
		}
		p.countNode()
		return n, nil
	}

	n := &ast.Identifier{Span: t.Span, Name: t.Text}
	p.countNode()
	return n, nil
}

func (p *Parser) parseEvalTerm() (ast.Expression, error) {
	t := p.current
	p.next()
	n := &ast.EvalExpr{}
	p.countNode()
	if p.at(token.LBrace) {
		blk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		n.Block = blk
		n.Span = position.Span{Start: t.Span.Start, End: blk.Span.End}
		return n, nil
	}
	if p.canStartExpression() {
		str, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		n.Str = str
		n.Span = position.SpanBetween(t.Span, str.GetSpan())
		return n, nil
	}
	// Bare eval defaults to $_ semantics; span is just the keyword.
	n.Span = t.Span
	return n, nil
}

func (p *Parser) parseDoTerm() (ast.Expression, error) {
	t := p.current
	p.next()
	if p.at(token.LBrace) {
		blk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		n := &ast.DoExpr{Span: position.Span{Start: t.Span.Start, End: blk.Span.End}, Block: blk}
		p.countNode()
		return n, nil
	}
	// do FILE form.
	arg, err := p.parseExpression(precUnary)
	if err != nil {
		return nil, err
	}
	n := &ast.FunctionCall{
		Span:     position.SpanBetween(t.Span, arg.GetSpan()),
		Name:     "do",
		NameSpan: t.Span,
		Args:     []ast.Expression{arg},
	}
	p.countNode()
	return n, nil
}

func (p *Parser) parseAnonSub() (ast.Expression, error) {
	t := p.current
	p.next()
	if !p.at(token.LBrace) {
		p.recordError(recovery.ErrorContext{
			Category:  recovery.CategoryUnexpectedToken,
			Span:      p.current.Span,
			TokenText: p.currentText(),
			Expected:  []string{"{"},
		})
		n := &ast.ErrorNode{Span: t.Span, Message: "anonymous sub without a body"}
		p.countNode()
		return n, nil
	}
	blk, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.AnonSub{Span: position.Span{Start: t.Span.Start, End: blk.Span.End}, Body: blk}
	p.countNode()
	return n, nil
}
