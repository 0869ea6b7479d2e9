package parser

import (
	"github.com/perlscope/perlscope/internal/ast"
	"github.com/perlscope/perlscope/internal/position"
	"github.com/perlscope/perlscope/internal/recovery"
	"github.com/perlscope/perlscope/internal/token"
)

// parseExpression is the precedence climber. minPrec is the loosest
// level this invocation may consume; left-associative levels recurse
// with prec+1, right-associative with prec.
func (p *Parser) parseExpression(minPrec int) (ast.Expression, error) {
	if err := p.monitor.ShouldContinue(); err != nil {
		return nil, err
	}
	p.depth++
	defer func() { p.depth-- }()

	// `not` binds looser than any symbolic operator.
	if p.atWord("not") {
		span := p.current.Span
		p.next()
		operand, err := p.parseExpression(precLowAnd)
		if err != nil {
			return nil, err
		}
		u := &ast.UnaryExpr{
			Span:    position.SpanBetween(span, operand.GetSpan()),
			Op:      "not",
			Operand: operand,
		}
		p.countNode()
		return u, nil
	}

	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		info, ok := infixFor(p.current)
		if !ok || info.prec < minPrec {
			return left, nil
		}
		// Word tokens double as operators only after a complete
		// operand; a missing left side means this is not an infix use.
		left, err = p.parseInfix(left, info)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseInfix(left ast.Expression, info opInfo) (ast.Expression, error) {
	opTok := p.current
	switch info.class {
	case classComma:
		return p.parseCommaList(left)
	case classTernary:
		return p.parseTernary(left)
	case classAssign:
		p.next()
		right, err := p.parseRHS(opTok, info.prec)
		if err != nil {
			return nil, err
		}
		n := &ast.AssignExpr{
			Span: position.SpanBetween(left.GetSpan(), right.GetSpan()),
			Op:   opTok.Text,
			LHS:  left,
			RHS:  right,
		}
		p.countNode()
		return n, nil
	case classRange:
		p.next()
		right, err := p.parseRHS(opTok, info.prec+1)
		if err != nil {
			return nil, err
		}
		n := &ast.RangeExpr{
			Span: position.SpanBetween(left.GetSpan(), right.GetSpan()),
			Op:   opTok.Text,
			Low:  left,
			High: right,
		}
		p.countNode()
		p.flagNonAssocChain(info, n.Span)
		return n, nil
	case classMatchBind:
		p.next()
		return p.parseMatchBind(left, opTok)
	default:
		p.next()
		nextMin := info.prec + 1
		if info.assoc == assocRight {
			nextMin = info.prec
		}
		right, err := p.parseRHS(opTok, nextMin)
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{
			Span:  position.SpanBetween(left.GetSpan(), right.GetSpan()),
			Op:    opTok.Text,
			Left:  left,
			Right: right,
		}
		p.countNode()
		if info.assoc == assocNone {
			p.flagNonAssocChain(info, n.Span)
		}
		return n, nil
	}
}

// parseRHS parses the right operand of an infix operator, recording a
// missing-expression error when nothing follows.
func (p *Parser) parseRHS(opTok token.Token, minPrec int) (ast.Expression, error) {
	before := p.pos
	right, err := p.parseExpression(minPrec)
	if err != nil {
		return nil, err
	}
	if right.Kind() == ast.KindMissingExpr && p.pos == before {
		p.recordError(recovery.ErrorContext{
			Category:            recovery.CategoryMissingExpression,
			Span:                position.Span{Start: opTok.Span.End, End: opTok.Span.End},
			TokenText:           p.currentText(),
			IncompleteStatement: true,
		})
	}
	return right, nil
}

// flagNonAssocChain warns when another operator of the same
// non-associative level immediately follows; the chain parses left to
// right but was almost certainly not intended.
func (p *Parser) flagNonAssocChain(info opInfo, span position.Span) {
	next, ok := infixFor(p.current)
	if ok && next.prec == info.prec && next.assoc == assocNone {
		p.warn(span, "non-associative-chain",
			"operator "+p.current.Text+" is non-associative; chained uses parse left to right")
	}
}

// parseCommaList flattens a comma/fat-arrow sequence into one ListExpr.
// Trailing commas are legal.
func (p *Parser) parseCommaList(first ast.Expression) (ast.Expression, error) {
	list := &ast.ListExpr{Elements: []ast.Expression{first}}
	p.countNode()
	end := first.GetSpan()
	for p.at(token.Comma) || p.at(token.FatArrow) {
		p.next()
		if !p.canStartExpression() {
			break
		}
		elem, err := p.parseExpression(precComma + 1)
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, elem)
		end = elem.GetSpan()
	}
	list.Span = position.SpanBetween(first.GetSpan(), end)
	return list, nil
}

func (p *Parser) parseTernary(cond ast.Expression) (ast.Expression, error) {
	p.next() // ?
	then, err := p.parseExpression(precAssign)
	if err != nil {
		return nil, err
	}
	if !p.at(token.Colon) {
		p.recordError(recovery.ErrorContext{
			Category:  recovery.CategoryUnexpectedToken,
			Span:      p.current.Span,
			TokenText: p.currentText(),
			Expected:  []string{":"},
		})
		missing := &ast.MissingExpr{Span: position.Span{Start: p.current.Span.Start, End: p.current.Span.Start}}
		p.countNode()
		n := &ast.TernaryExpr{
			Span: position.SpanBetween(cond.GetSpan(), then.GetSpan()),
			Cond: cond, Then: then, Else: missing,
		}
		p.countNode()
		return n, nil
	}
	p.next() // :
	els, err := p.parseExpression(precTernary)
	if err != nil {
		return nil, err
	}
	n := &ast.TernaryExpr{
		Span: position.SpanBetween(cond.GetSpan(), els.GetSpan()),
		Cond: cond, Then: then, Else: els,
	}
	p.countNode()
	return n, nil
}

// parseMatchBind handles =~ and !~. The right side is normally a regex,
// substitution, or transliteration literal; those nodes absorb the
// target directly.
func (p *Parser) parseMatchBind(target ast.Expression, opTok token.Token) (ast.Expression, error) {
	negated := opTok.Text == "!~"
	right, err := p.parseExpression(precMatch + 1)
	if err != nil {
		return nil, err
	}
	span := position.SpanBetween(target.GetSpan(), right.GetSpan())
	switch r := right.(type) {
	case *ast.SubstitutionExpr:
		r.Target = target
		r.Negated = negated
		r.Span = span
		return r, nil
	case *ast.TransliterationExpr:
		r.Target = target
		r.Negated = negated
		r.Span = span
		return r, nil
	default:
		n := &ast.MatchExpr{Span: span, Target: target, Negated: negated, Regex: right}
		p.countNode()
		return n, nil
	}
}

// canStartExpression reports whether the current token can open a term.
func (p *Parser) canStartExpression() bool {
	switch p.current.Kind {
	case token.Number, token.String, token.RawString, token.Backtick,
		token.Variable, token.Typeglob, token.Regex, token.Substitute,
		token.Translit, token.QuoteWords, token.HeredocDecl,
		token.Readline, token.LParen, token.LBracket, token.LBrace,
		token.Ident:
		return true
	case token.Keyword:
		switch p.current.Text {
		case "eval", "do", "sub", "my", "our", "local", "state", "return":
			return true
		}
		return false
	case token.Operator:
		return isPrefixOp(p.current)
	}
	return false
}

// parseUnary handles prefix operators, then delegates to postfix.
func (p *Parser) parseUnary() (ast.Expression, error) {
	if isPrefixOp(p.current) {
		opTok := p.current
		p.next()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		n := &ast.UnaryExpr{
			Span:    position.SpanBetween(opTok.Span, operand.GetSpan()),
			Op:      opTok.Text,
			Operand: operand,
		}
		p.countNode()
		return n, nil
	}
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(primary)
}

// parsePostfix consumes arrow chains, subscripts, and postfix ++/--.
func (p *Parser) parsePostfix(expr ast.Expression) (ast.Expression, error) {
	for {
		switch {
		case p.at(token.Arrow):
			var err error
			expr, err = p.parseArrowTail(expr)
			if err != nil {
				return nil, err
			}
		case p.at(token.LBracket) && subscriptable(expr):
			var err error
			expr, err = p.parseSubscript(expr, false, false)
			if err != nil {
				return nil, err
			}
		case p.at(token.LBrace) && subscriptable(expr):
			var err error
			expr, err = p.parseSubscript(expr, true, false)
			if err != nil {
				return nil, err
			}
		case p.atOp("++") || p.atOp("--"):
			n := &ast.UnaryExpr{
				Span:    position.SpanBetween(expr.GetSpan(), p.current.Span),
				Op:      p.current.Text,
				Operand: expr,
				Postfix: true,
			}
			p.countNode()
			p.next()
			expr = n
		default:
			return expr, nil
		}
	}
}

// subscriptable limits bare [ and { postfix interpretation to nodes
// that can actually be indexed; everything else would swallow array
// constructors and blocks.
func subscriptable(expr ast.Expression) bool {
	switch expr.Kind() {
	case ast.KindVariable, ast.KindIndexExpr, ast.KindDerefExpr:
		return true
	}
	return false
}

func (p *Parser) parseArrowTail(expr ast.Expression) (ast.Expression, error) {
	p.next() // ->
	switch {
	case p.at(token.LBracket):
		return p.parseSubscript(expr, false, true)
	case p.at(token.LBrace):
		return p.parseSubscript(expr, true, true)
	case p.at(token.LParen):
		// Code dereference: $f->(@args).
		args, end, err := p.parseParenArgs()
		if err != nil {
			return nil, err
		}
		n := &ast.MethodCall{
			Span:     position.Span{Start: expr.GetSpan().Start, End: end},
			Invocant: expr,
			Method:   "",
			Args:     args,
		}
		p.countNode()
		return n, nil
	case p.at(token.Ident), p.at(token.Keyword):
		name := p.current
		p.next()
		n := &ast.MethodCall{
			Span:       position.SpanBetween(expr.GetSpan(), name.Span),
			Invocant:   expr,
			Method:     name.Text,
			MethodSpan: name.Span,
		}
		p.countNode()
		if p.at(token.LParen) {
			args, end, err := p.parseParenArgs()
			if err != nil {
				return nil, err
			}
			n.Args = args
			n.Span = position.Span{Start: expr.GetSpan().Start, End: end}
		}
		return n, nil
	case p.at(token.Variable):
		// Dynamic method: $obj->$method(...).
		name := p.current
		p.next()
		n := &ast.MethodCall{
			Span:       position.SpanBetween(expr.GetSpan(), name.Span),
			Invocant:   expr,
			Method:     name.Text,
			MethodSpan: name.Span,
		}
		p.countNode()
		if p.at(token.LParen) {
			args, end, err := p.parseParenArgs()
			if err != nil {
				return nil, err
			}
			n.Args = args
			n.Span = position.Span{Start: expr.GetSpan().Start, End: end}
		}
		return n, nil
	default:
		p.recordError(recovery.ErrorContext{
			Category:  recovery.CategoryUnexpectedToken,
			Span:      p.current.Span,
			TokenText: p.currentText(),
			Expected:  []string{"a method name or subscript"},
		})
		n := &ast.ErrorNode{Span: position.SpanBetween(expr.GetSpan(), p.current.Span), Message: "dangling arrow", Partial: expr}
		p.countNode()
		return n, nil
	}
}

func (p *Parser) parseSubscript(target ast.Expression, brace, arrow bool) (ast.Expression, error) {
	closeKind := token.RBracket
	openByte := byte('[')
	what := "]"
	if brace {
		closeKind = token.RBrace
		openByte = '{'
		what = "}"
	}
	p.pushDelim(openByte)
	p.next() // opener
	var index ast.Expression
	if p.at(closeKind) {
		index = &ast.MissingExpr{Span: position.Span{Start: p.current.Span.Start, End: p.current.Span.Start}}
		p.countNode()
	} else {
		var err error
		index, err = p.parseExpression(precComma)
		if err != nil {
			return nil, err
		}
	}
	end := p.current.Span.End
	if !p.expect(closeKind, what) {
		p.popDelim()
		n := &ast.ErrorNode{Span: position.SpanBetween(target.GetSpan(), index.GetSpan()), Message: "unterminated subscript", Partial: index}
		p.countNode()
		return n, nil
	}
	p.popDelim()
	n := &ast.IndexExpr{
		Span:   position.Span{Start: target.GetSpan().Start, End: end},
		Target: target,
		Index:  index,
		Brace:  brace,
		Arrow:  arrow,
	}
	p.countNode()
	return n, nil
}

// parseParenArgs consumes ( LIST ) and returns the flattened argument
// list plus the closing paren's end offset.
func (p *Parser) parseParenArgs() ([]ast.Expression, int, error) {
	p.pushDelim('(')
	p.next() // (
	var args []ast.Expression
	if !p.at(token.RParen) {
		list, err := p.parseExpression(precComma)
		if err != nil {
			return nil, 0, err
		}
		if l, ok := list.(*ast.ListExpr); ok {
			args = l.Elements
		} else {
			args = []ast.Expression{list}
		}
	}
	end := p.current.Span.End
	p.expect(token.RParen, ")")
	p.popDelim()
	return args, end, nil
}
