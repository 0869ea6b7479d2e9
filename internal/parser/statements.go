package parser

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/perlscope/perlscope/internal/ast"
	"github.com/perlscope/perlscope/internal/position"
	"github.com/perlscope/perlscope/internal/recovery"
	"github.com/perlscope/perlscope/internal/token"
)

// parseStatement dispatches on the current token. It returns a non-nil
// statement unless the token stream is exhausted; broken input yields
// an ErrorNode, never a nil. The error return is reserved for resource
// limits.
func (p *Parser) parseStatement() (ast.Statement, error) {
	if err := p.monitor.ShouldContinue(); err != nil {
		return nil, err
	}

	switch {
	case p.at(token.DataSection):
		return p.parseDataSection()
	case p.at(token.Semicolon):
		// Empty statement; consume and move on.
		p.next()
		return nil, nil
	case p.at(token.LBrace):
		blk, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return blk, nil
	case p.at(token.Ident) && token.IsPhaseBlock(p.current.Text) && p.peekIs(token.LBrace):
		return p.parsePhaseBlock()
	case p.at(token.Ident) && p.peekIs(token.Colon):
		return p.parseLabeledStatement()
	case p.at(token.Keyword):
		return p.parseKeywordStatement()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseKeywordStatement() (ast.Statement, error) {
	switch p.current.Text {
	case "my", "our", "local", "state":
		return p.parseVariableDeclaration()
	case "sub":
		if p.peekIs(token.Ident) {
			return p.parseSubDeclaration()
		}
		// Anonymous sub in statement position parses as an expression.
		return p.parseExpressionStatement()
	case "package":
		return p.parsePackage()
	case "use", "no":
		return p.parseUse()
	case "require":
		return p.parseRequire()
	case "if", "unless":
		return p.parseIf()
	case "while", "until":
		return p.parseWhile()
	case "for", "foreach":
		return p.parseFor()
	case "return":
		return p.parseReturn()
	case "last", "next", "redo", "goto":
		return p.parseLoopControl()
	case "try":
		return p.parseTry()
	case "given":
		return p.parseGiven()
	case "when", "default":
		return p.parseWhen()
	case "do", "eval":
		return p.parseExpressionStatement()
	}
	return p.parseExpressionStatement()
}

// parseBlock parses { ... } and recovers inside it: a broken statement
// inside a block does not unwind the block.
func (p *Parser) parseBlock() (*ast.Block, error) {
	start := p.current.Span.Start
	p.pushDelim('{')
	p.expect(token.LBrace, "{")
	p.depth++
	defer func() { p.depth-- }()

	blk := &ast.Block{}
	p.countNode()
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if err := p.monitor.ShouldContinue(); err != nil {
			return nil, err
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			blk.Statements = append(blk.Statements, stmt)
		}
	}
	end := p.current.Span.End
	if p.at(token.RBrace) {
		p.next()
	} else {
		p.recordError(recovery.ErrorContext{
			Category: recovery.CategoryUnclosedDelimiter,
			Span:     position.Span{Start: end, End: end},
		})
	}
	p.popDelim()
	blk.Span = position.Span{Start: start, End: end}
	return blk, nil
}

// expectSemicolon closes a simple statement. A missing semicolon is a
// diagnostic, not a recovery: the statement already parsed cleanly.
func (p *Parser) expectSemicolon() {
	if p.at(token.Semicolon) {
		p.next()
		return
	}
	// A closing brace or EOF terminates the last statement of a block
	// without complaint.
	if p.at(token.RBrace) || p.at(token.EOF) {
		return
	}
	p.recordError(recovery.ErrorContext{
		Category:            recovery.CategoryMissingSemicolon,
		Span:                position.Span{Start: p.current.Span.Start, End: p.current.Span.Start},
		TokenText:           p.currentText(),
		IncompleteStatement: true,
	})
}

func (p *Parser) parseVariableDeclaration() (ast.Statement, error) {
	start := p.current.Span.Start
	decl := &ast.VariableDeclaration{Declarator: p.current.Text}
	p.countNode()
	p.next()

	switch {
	case p.at(token.Variable):
		decl.Variables = append(decl.Variables, p.variableFromToken())
	case p.at(token.LParen):
		p.pushDelim('(')
		p.next()
		for !p.at(token.RParen) && !p.at(token.EOF) {
			if p.at(token.Variable) {
				decl.Variables = append(decl.Variables, p.variableFromToken())
			} else {
				p.popDelim()
				return p.recoverStatement("expected a variable in declaration list", decl), nil
			}
			if p.at(token.Comma) {
				p.next()
			}
		}
		if !p.expect(token.RParen, ")") {
			p.popDelim()
			return p.recoverStatement("unterminated declaration list", decl), nil
		}
		p.popDelim()
		if len(decl.Variables) == 0 {
			decl.Span = position.Span{Start: start, End: p.current.Span.Start}
			p.expectSemicolon()
			return decl, nil
		}
	default:
		p.recordError(recovery.ErrorContext{
			Category:  recovery.CategoryUnexpectedToken,
			Span:      p.current.Span,
			TokenText: p.currentText(),
			Expected:  []string{"a variable"},
		})
		return p.recoverStatement("declaration without a variable", nil), nil
	}

	end := decl.Variables[len(decl.Variables)-1].Span.End
	if p.at(token.Operator) && infixIsAssign(p.current.Text) {
		p.next()
		init, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		decl.Init = init
		end = init.GetSpan().End
	}
	decl.Span = position.Span{Start: start, End: end}
	p.expectSemicolon()
	return decl, nil
}

func infixIsAssign(text string) bool {
	info, ok := infixOps[text]
	return ok && info.class == classAssign
}

func (p *Parser) variableFromToken() *ast.Variable {
	t := p.current
	v := &ast.Variable{Span: t.Span, Sigil: t.Text[0], Name: t.Text[1:]}
	p.countNode()
	p.next()
	return v
}

// parseSubDeclaration handles `sub NAME { ... }` with an optional
// prototype. NameSpan covers exactly the identifier, which is what
// makes AUTOLOAD/DESTROY navigation byte-accurate.
func (p *Parser) parseSubDeclaration() (ast.Statement, error) {
	start := p.current.Span.Start
	p.next() // sub

	name := p.current
	decl := &ast.SubDeclaration{Name: name.Text, NameSpan: name.Span}
	p.countNode()
	p.next()

	if p.at(token.LParen) {
		protoStart := p.current.Span.Start
		p.pushDelim('(')
		p.next()
		for !p.at(token.RParen) && !p.at(token.EOF) {
			p.next()
		}
		protoEnd := p.current.Span.End
		if !p.expect(token.RParen, ")") {
			p.popDelim()
			return p.recoverStatement("unterminated subroutine prototype", decl), nil
		}
		p.popDelim()
		decl.Prototype = p.src[protoStart:protoEnd]
	}

	if !p.at(token.LBrace) {
		p.recordError(recovery.ErrorContext{
			Category:  recovery.CategoryUnexpectedToken,
			Span:      p.current.Span,
			TokenText: p.currentText(),
			Expected:  []string{"{"},
		})
		return p.recoverStatement("subroutine without a body", decl), nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	decl.Body = body
	decl.Span = position.Span{Start: start, End: body.Span.End}
	return decl, nil
}

func (p *Parser) parsePackage() (ast.Statement, error) {
	start := p.current.Span.Start
	p.next() // package
	if !p.at(token.Ident) {
		return p.recoverStatement("package without a name", nil), nil
	}
	decl := &ast.PackageDeclaration{Name: p.current.Text, NameSpan: p.current.Span}
	p.countNode()
	end := p.current.Span.End
	p.next()

	// Optional version literal: package Foo 1.23;
	if p.at(token.Number) {
		end = p.current.Span.End
		p.next()
	}

	if p.at(token.LBrace) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		decl.Block = body
		end = body.Span.End
	} else {
		p.expectSemicolon()
	}
	decl.Span = position.Span{Start: start, End: end}
	return decl, nil
}

// parseUse handles use/no statements, including `use v5.36` version
// requirements normalized through semver.
func (p *Parser) parseUse() (ast.Statement, error) {
	start := p.current.Span.Start
	stmt := &ast.UseStatement{No: p.current.Text == "no"}
	p.countNode()
	p.next()

	end := start
	switch {
	case p.at(token.Ident) && isVStringHead(p.current.Text):
		// `use v5.36`: the v-string lexes as ident "v5" followed by
		// ".36"-style number fragments.
		raw := p.current.Text
		end = p.current.Span.End
		p.next()
		for p.atOp(".") && p.peekIs(token.Number) {
			p.next()
			raw += "." + p.current.Text
			end = p.current.Span.End
			p.next()
		}
		if v := normalizePerlVersion(raw); v != nil {
			stmt.Version = v
		} else {
			p.warn(position.Span{Start: start, End: end}, "use-version", "unrecognized version literal "+raw)
		}
	case p.at(token.Ident):
		stmt.Module = p.current.Text
		end = p.current.Span.End
		p.next()
	case p.at(token.Number):
		// `use 5.010` decimal version requirement.
		if v := normalizePerlVersion(p.current.Text); v != nil {
			stmt.Version = v
		} else {
			p.warn(p.current.Span, "use-version", "unrecognized version literal "+p.current.Text)
		}
		end = p.current.Span.End
		p.next()
	default:
		return p.recoverStatement("use without a module or version", nil), nil
	}

	// Import list: everything up to the semicolon.
	for !p.at(token.Semicolon) && !p.at(token.EOF) && !p.at(token.RBrace) {
		arg, err := p.parseExpression(precAssign)
		if err != nil {
			return nil, err
		}
		stmt.Args = append(stmt.Args, arg)
		end = arg.GetSpan().End
		if p.at(token.Comma) || p.at(token.FatArrow) {
			p.next()
		}
	}
	stmt.Span = position.Span{Start: start, End: end}
	p.expectSemicolon()
	return stmt, nil
}

// normalizePerlVersion turns v5.36, 5.010, or 5.10.1 into a semver
// value, or nil when the literal does not parse.
func normalizePerlVersion(raw string) *semver.Version {
	s := strings.TrimPrefix(raw, "v")
	s = strings.ReplaceAll(s, "_", "")
	// Decimal forms: 5.010 means 5.10, 5.010001 means 5.10.1.
	if dot := strings.IndexByte(s, '.'); dot > 0 && strings.IndexByte(s[dot+1:], '.') < 0 {
		frac := s[dot+1:]
		if len(frac) >= 3 && allDigits(frac) {
			minor := strings.TrimLeft(frac[:3], "0")
			if minor == "" {
				minor = "0"
			}
			rest := frac[3:]
			if rest != "" {
				patch := strings.TrimLeft(rest, "0")
				if patch == "" {
					patch = "0"
				}
				s = s[:dot] + "." + minor + "." + patch
			} else {
				s = s[:dot] + "." + minor
			}
		}
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil
	}
	return v
}

// isVStringHead matches the leading chunk of a v-string: v followed by
// digits only.
func isVStringHead(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	return allDigits(s[1:])
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseRequire treats require as a use-shaped statement without the
// import machinery.
func (p *Parser) parseRequire() (ast.Statement, error) {
	start := p.current.Span
	p.next()
	expr, err := p.parseExpression(precLowOr)
	if err != nil {
		return nil, err
	}
	stmt := &ast.ExpressionStatement{
		Span: position.SpanBetween(start, expr.GetSpan()),
		Expr: &ast.FunctionCall{
			Span:     position.SpanBetween(start, expr.GetSpan()),
			Name:     "require",
			NameSpan: start,
			Args:     []ast.Expression{expr},
		},
	}
	p.countNode()
	p.countNode()
	p.expectSemicolon()
	return stmt, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start := p.current.Span.Start
	stmt := &ast.IfStatement{Negated: p.current.Text == "unless"}
	p.countNode()
	p.next()

	cond, ok, err := p.parseParenCondition()
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.recoverStatement("malformed condition", nil), nil
	}
	stmt.Cond = cond

	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Then = then
	end := then.Span.End

	for p.atWord("elsif") {
		p.next()
		c, ok, err := p.parseParenCondition()
		if err != nil {
			return nil, err
		}
		if !ok {
			return p.recoverStatement("malformed elsif condition", stmt), nil
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Elsifs = append(stmt.Elsifs, ast.ElsifClause{Cond: c, Then: b})
		end = b.Span.End
	}
	if p.atWord("else") {
		p.next()
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = b
		end = b.Span.End
	}
	stmt.Span = position.Span{Start: start, End: end}
	return stmt, nil
}

// parseParenCondition parses ( EXPR ). ok=false means structural
// failure already recorded.
func (p *Parser) parseParenCondition() (ast.Expression, bool, error) {
	if !p.at(token.LParen) {
		p.recordError(recovery.ErrorContext{
			Category:  recovery.CategoryUnexpectedToken,
			Span:      p.current.Span,
			TokenText: p.currentText(),
			Expected:  []string{"("},
		})
		return nil, false, nil
	}
	p.pushDelim('(')
	p.next()
	cond, err := p.parseExpression(precLowOr)
	if err != nil {
		return nil, false, err
	}
	if !p.expect(token.RParen, ")") {
		p.popDelim()
		return nil, false, nil
	}
	p.popDelim()
	return cond, true, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start := p.current.Span.Start
	stmt := &ast.WhileStatement{Until: p.current.Text == "until"}
	p.countNode()
	p.next()

	cond, ok, err := p.parseParenCondition()
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.recoverStatement("malformed loop condition", nil), nil
	}
	stmt.Cond = cond
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Span = position.Span{Start: start, End: body.Span.End}
	return stmt, nil
}

// parseFor distinguishes the C-style three-clause loop from foreach by
// the first semicolon inside the parens.
func (p *Parser) parseFor() (ast.Statement, error) {
	start := p.current.Span.Start
	p.next() // for/foreach

	// foreach my $x (...) BLOCK
	decl := ""
	var loopVar ast.Expression
	if p.atWord("my") || p.atWord("our") || p.atWord("state") {
		decl = p.current.Text
		p.next()
	}
	if p.at(token.Variable) {
		loopVar = p.variableFromToken()
	}

	if !p.at(token.LParen) {
		p.recordError(recovery.ErrorContext{
			Category:  recovery.CategoryUnexpectedToken,
			Span:      p.current.Span,
			TokenText: p.currentText(),
			Expected:  []string{"("},
		})
		return p.recoverStatement("malformed for loop", nil), nil
	}

	if loopVar != nil || decl != "" || !p.parensContainSemicolon() {
		return p.parseForeachTail(start, decl, loopVar)
	}
	return p.parseCStyleForTail(start)
}

// parensContainSemicolon peeks ahead from the current '(' for a
// semicolon before its matching ')'.
func (p *Parser) parensContainSemicolon() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return false
			}
		case token.Semicolon:
			if depth == 1 {
				return true
			}
		case token.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseForeachTail(start int, decl string, loopVar ast.Expression) (ast.Statement, error) {
	stmt := &ast.ForeachStatement{Decl: decl, Var: loopVar}
	p.countNode()
	p.pushDelim('(')
	p.next()
	list, err := p.parseExpression(precComma)
	if err != nil {
		return nil, err
	}
	stmt.List = list
	if !p.expect(token.RParen, ")") {
		p.popDelim()
		return p.recoverStatement("unterminated foreach list", stmt), nil
	}
	p.popDelim()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Span = position.Span{Start: start, End: body.Span.End}
	return stmt, nil
}

func (p *Parser) parseCStyleForTail(start int) (ast.Statement, error) {
	stmt := &ast.ForStatement{}
	p.countNode()
	p.pushDelim('(')
	p.next()

	clause := func() (ast.Expression, error) {
		if p.at(token.Semicolon) || p.at(token.RParen) {
			return nil, nil
		}
		return p.parseExpression(precComma)
	}
	var err error
	if stmt.Init, err = clause(); err != nil {
		return nil, err
	}
	p.expect(token.Semicolon, ";")
	if stmt.Cond, err = clause(); err != nil {
		return nil, err
	}
	p.expect(token.Semicolon, ";")
	if stmt.Update, err = clause(); err != nil {
		return nil, err
	}
	if !p.expect(token.RParen, ")") {
		p.popDelim()
		return p.recoverStatement("unterminated for header", stmt), nil
	}
	p.popDelim()

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Span = position.Span{Start: start, End: body.Span.End}
	return stmt, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := p.current.Span
	stmt := &ast.ReturnStatement{}
	p.countNode()
	p.next()
	end := start.End
	if !p.at(token.Semicolon) && !p.at(token.RBrace) && !p.at(token.EOF) && !p.atModifierWord() {
		val, err := p.parseExpression(precLowOr)
		if err != nil {
			return nil, err
		}
		stmt.Value = val
		end = val.GetSpan().End
	}
	stmt.Span = position.Span{Start: start.Start, End: end}
	return p.finishSimpleStatement(stmt)
}

func (p *Parser) parseLoopControl() (ast.Statement, error) {
	stmt := &ast.LoopControl{Span: p.current.Span, Keyword: p.current.Text}
	p.countNode()
	p.next()
	if p.at(token.Ident) && !p.atModifierWord() {
		stmt.Label = p.current.Text
		stmt.Span = position.SpanBetween(stmt.Span, p.current.Span)
		p.next()
	}
	return p.finishSimpleStatement(stmt)
}

func (p *Parser) parseTry() (ast.Statement, error) {
	start := p.current.Span.Start
	stmt := &ast.TryStatement{}
	p.countNode()
	p.next()

	try, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Try = try
	end := try.Span.End

	if p.atWord("catch") {
		p.next()
		if p.at(token.LParen) {
			p.pushDelim('(')
			p.next()
			if p.at(token.Variable) {
				stmt.CatchVar = p.variableFromToken()
			}
			if !p.expect(token.RParen, ")") {
				p.popDelim()
				return p.recoverStatement("malformed catch clause", stmt), nil
			}
			p.popDelim()
		}
		catch, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Catch = catch
		end = catch.Span.End
	}
	if p.atWord("finally") {
		p.next()
		fin, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Finally = fin
		end = fin.Span.End
	}
	stmt.Span = position.Span{Start: start, End: end}
	return stmt, nil
}

func (p *Parser) parseGiven() (ast.Statement, error) {
	start := p.current.Span.Start
	stmt := &ast.GivenStatement{}
	p.countNode()
	p.next()
	topic, ok, err := p.parseParenCondition()
	if err != nil {
		return nil, err
	}
	if !ok {
		return p.recoverStatement("malformed given topic", nil), nil
	}
	stmt.Topic = topic
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Span = position.Span{Start: start, End: body.Span.End}
	return stmt, nil
}

func (p *Parser) parseWhen() (ast.Statement, error) {
	start := p.current.Span.Start
	stmt := &ast.WhenClause{}
	p.countNode()
	isDefault := p.current.Text == "default"
	p.next()
	if !isDefault {
		match, ok, err := p.parseParenCondition()
		if err != nil {
			return nil, err
		}
		if !ok {
			return p.recoverStatement("malformed when clause", nil), nil
		}
		stmt.Match = match
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Span = position.Span{Start: start, End: body.Span.End}
	return stmt, nil
}

// parsePhaseBlock handles BEGIN/END/CHECK/INIT/UNITCHECK blocks.
// PhaseSpan covers exactly the keyword.
func (p *Parser) parsePhaseBlock() (ast.Statement, error) {
	stmt := &ast.PhaseBlock{Phase: p.current.Text, PhaseSpan: p.current.Span}
	p.countNode()
	start := p.current.Span.Start
	p.next()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Span = position.Span{Start: start, End: body.Span.End}
	return stmt, nil
}

func (p *Parser) parseLabeledStatement() (ast.Statement, error) {
	label := p.current
	p.next() // label
	p.next() // colon
	inner, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if inner == nil {
		inner = &ast.ErrorNode{Span: label.Span, Message: "label without a statement"}
		p.countNode()
	}
	stmt := &ast.LabeledStatement{
		Span:      position.SpanBetween(label.Span, inner.GetSpan()),
		Label:     label.Text,
		LabelSpan: label.Span,
		Stmt:      inner,
	}
	p.countNode()
	return stmt, nil
}

func (p *Parser) parseDataSection() (ast.Statement, error) {
	t := p.current
	marker := "__DATA__"
	if strings.HasPrefix(t.Text, "__END__") {
		marker = "__END__"
	}
	stmt := &ast.DataSection{
		Span:    t.Span,
		Marker:  marker,
		Content: strings.TrimPrefix(t.Text, marker),
	}
	p.countNode()
	p.next()
	return stmt, nil
}

// parseExpressionStatement parses EXPR followed by an optional
// statement modifier and a semicolon.
func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	startPos := p.pos
	expr, err := p.parseExpression(precLowOr)
	if err != nil {
		return nil, err
	}
	if expr == nil || (expr.Kind() == ast.KindMissingExpr && p.pos == startPos) {
		// No progress: the token cannot start an expression. Recover,
		// which always consumes at least one token.
		return p.recoverStatement("cannot parse statement", nil), nil
	}

	stmt := &ast.ExpressionStatement{Span: expr.GetSpan(), Expr: expr}
	p.countNode()
	return p.finishSimpleStatement(stmt)
}

func (p *Parser) atModifierWord() bool {
	if p.current.Kind != token.Keyword && p.current.Kind != token.Ident {
		return false
	}
	switch p.current.Text {
	case "if", "unless", "while", "until", "for", "foreach":
		return true
	}
	return false
}

// finishSimpleStatement attaches a trailing statement modifier when one
// follows, then expects the terminating semicolon.
func (p *Parser) finishSimpleStatement(stmt ast.Statement) (ast.Statement, error) {
	if !p.atModifierWord() {
		p.expectSemicolon()
		return stmt, nil
	}
	word := p.current.Text
	p.next()
	cond, err := p.parseExpression(precLowOr)
	if err != nil {
		return nil, err
	}
	wrapped := &ast.StatementModifier{
		Span:    position.SpanBetween(stmt.GetSpan(), cond.GetSpan()),
		Keyword: word,
		Cond:    cond,
		Stmt:    stmt,
	}
	p.countNode()
	p.expectSemicolon()
	return wrapped, nil
}
