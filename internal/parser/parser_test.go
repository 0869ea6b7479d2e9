package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlscope/perlscope/internal/ast"
	"github.com/perlscope/perlscope/internal/recovery"
)

func mustParse(t *testing.T, src string) (*ast.Program, []recovery.Diagnostic) {
	t.Helper()
	prog, diags, err := Parse(src)
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog, diags
}

func onlyExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	prog, _ := mustParse(t, src)
	require.Len(t, prog.Statements, 1)
	stmt, ok := prog.Statements[0].(*ast.ExpressionStatement)
	require.True(t, ok, "want ExpressionStatement, got %T", prog.Statements[0])
	return stmt.Expr
}

func errorCount(diags []recovery.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == recovery.SeverityError {
			n++
		}
	}
	return n
}

func hasCategory(diags []recovery.Diagnostic, category string) bool {
	for _, d := range diags {
		if d.Category == category {
			return true
		}
	}
	return false
}

func TestPowerIsRightAssociative(t *testing.T) {
	expr := onlyExpr(t, "2 ** 3 ** 2;")
	outer, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "**", outer.Op)

	left, ok := outer.Left.(*ast.NumberLiteral)
	require.True(t, ok)
	assert.Equal(t, "2", left.Raw)

	right, ok := outer.Right.(*ast.BinaryExpr)
	require.True(t, ok, "2**3**2 must group as 2**(3**2)")
	assert.Equal(t, "**", right.Op)
}

func TestSubtractionIsLeftAssociative(t *testing.T) {
	expr := onlyExpr(t, "1 - 2 - 3;")
	outer, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "-", outer.Op)

	inner, ok := outer.Left.(*ast.BinaryExpr)
	require.True(t, ok, "1-2-3 must group as (1-2)-3")
	assert.Equal(t, "-", inner.Op)

	r, ok := outer.Right.(*ast.NumberLiteral)
	require.True(t, ok)
	assert.Equal(t, "3", r.Raw)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	expr := onlyExpr(t, "$a = $b = $c;")
	outer, ok := expr.(*ast.AssignExpr)
	require.True(t, ok)

	inner, ok := outer.RHS.(*ast.AssignExpr)
	require.True(t, ok, "$a=$b=$c must group as $a=($b=$c)")
	lhs, ok := inner.LHS.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "b", lhs.Name)
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	expr := onlyExpr(t, "1 + 2 * 3;")
	outer, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", outer.Op)

	inner, ok := outer.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", inner.Op)
}

func TestWordOperatorsBindLooserThanAssignment(t *testing.T) {
	expr := onlyExpr(t, "$ok = $a or $b;")
	outer, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "or", outer.Op)

	_, ok = outer.Left.(*ast.AssignExpr)
	assert.True(t, ok, "`=` must bind before `or`")

	expr = onlyExpr(t, "$ok = $a || $b;")
	_, ok = expr.(*ast.AssignExpr)
	assert.True(t, ok, "`||` must bind before `=`")
}

func TestNonAssociativeChainWarns(t *testing.T) {
	for _, src := range []string{"1 <=> 2 <=> 3;", "1 < 2 < 3;", "$a == $b == $c;"} {
		prog, diags := mustParse(t, src)
		require.Len(t, prog.Statements, 1, src)
		assert.True(t, hasCategory(diags, "non-associative-chain"), src)
		// The chain still parses left to right.
		stmt := prog.Statements[0].(*ast.ExpressionStatement)
		outer, ok := stmt.Expr.(*ast.BinaryExpr)
		require.True(t, ok, src)
		_, ok = outer.Left.(*ast.BinaryExpr)
		assert.True(t, ok, src)
	}
}

func TestRangeOperator(t *testing.T) {
	expr := onlyExpr(t, "1 .. 10;")
	r, ok := expr.(*ast.RangeExpr)
	require.True(t, ok)
	assert.Equal(t, "..", r.Op)
}

func TestTernary(t *testing.T) {
	expr := onlyExpr(t, "$x ? 1 : 2;")
	tern, ok := expr.(*ast.TernaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.KindNumberLiteral, tern.Then.Kind())
	assert.Equal(t, ast.KindNumberLiteral, tern.Else.Kind())
}

func TestTernaryMissingColon(t *testing.T) {
	prog, diags := mustParse(t, "$x ? 1;")
	require.Len(t, prog.Statements, 1)
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	tern, ok := stmt.Expr.(*ast.TernaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.KindMissingExpr, tern.Else.Kind())
	assert.GreaterOrEqual(t, errorCount(diags), 1)
}

func TestVariableDeclaration(t *testing.T) {
	prog, diags := mustParse(t, "my $x = 1;")
	assert.Empty(t, diags)
	decl, ok := prog.Statements[0].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "my", decl.Declarator)
	require.Len(t, decl.Variables, 1)
	assert.EqualValues(t, '$', decl.Variables[0].Sigil)
	assert.Equal(t, "x", decl.Variables[0].Name)
	require.NotNil(t, decl.Init)
}

func TestVariableDeclarationList(t *testing.T) {
	prog, diags := mustParse(t, "my ($a, $b, @rest) = @_;")
	assert.Empty(t, diags)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	require.Len(t, decl.Variables, 3)
	assert.Equal(t, "rest", decl.Variables[2].Name)
	assert.EqualValues(t, '@', decl.Variables[2].Sigil)
}

func TestSubDeclarationNameSpan(t *testing.T) {
	src := "sub AUTOLOAD { return; }"
	prog, diags := mustParse(t, src)
	assert.Empty(t, diags)
	decl, ok := prog.Statements[0].(*ast.SubDeclaration)
	require.True(t, ok)
	assert.Equal(t, "AUTOLOAD", decl.Name)
	// The name span covers exactly the identifier bytes.
	assert.Equal(t, 4, decl.NameSpan.Start)
	assert.Equal(t, 12, decl.NameSpan.End)
	assert.Equal(t, "AUTOLOAD", src[decl.NameSpan.Start:decl.NameSpan.End])
	require.NotNil(t, decl.Body)
}

func TestSubDeclarationPrototype(t *testing.T) {
	prog, _ := mustParse(t, "sub pair ($a, $b) { }")
	decl := prog.Statements[0].(*ast.SubDeclaration)
	assert.Equal(t, "($a, $b)", decl.Prototype)
}

func TestPhaseBlockSpan(t *testing.T) {
	src := "BEGIN { setup(); }"
	prog, diags := mustParse(t, src)
	assert.Empty(t, diags)
	blk, ok := prog.Statements[0].(*ast.PhaseBlock)
	require.True(t, ok)
	assert.Equal(t, "BEGIN", blk.Phase)
	assert.Equal(t, "BEGIN", src[blk.PhaseSpan.Start:blk.PhaseSpan.End])
	require.NotNil(t, blk.Body)
}

func TestPackageForms(t *testing.T) {
	prog, diags := mustParse(t, "package Foo::Bar;\npackage Baz 1.23;\npackage Quux { my $x = 1; }\n")
	assert.Empty(t, diags)
	require.Len(t, prog.Statements, 3)

	first := prog.Statements[0].(*ast.PackageDeclaration)
	assert.Equal(t, "Foo::Bar", first.Name)
	assert.Nil(t, first.Block)

	third := prog.Statements[2].(*ast.PackageDeclaration)
	assert.Equal(t, "Quux", third.Name)
	require.NotNil(t, third.Block)
	assert.Len(t, third.Block.Statements, 1)
}

func TestUseVersionNormalization(t *testing.T) {
	prog, diags := mustParse(t, "use v5.36;")
	assert.Empty(t, diags)
	use := prog.Statements[0].(*ast.UseStatement)
	require.NotNil(t, use.Version)
	assert.Equal(t, "5.36.0", use.Version.String())

	prog, _ = mustParse(t, "use 5.010;")
	use = prog.Statements[0].(*ast.UseStatement)
	require.NotNil(t, use.Version)
	assert.Equal(t, "5.10.0", use.Version.String())
}

func TestUseModuleWithImports(t *testing.T) {
	prog, diags := mustParse(t, "use List::Util qw(sum max);\nno strict;\n")
	assert.Empty(t, diags)
	use := prog.Statements[0].(*ast.UseStatement)
	assert.Equal(t, "List::Util", use.Module)
	assert.False(t, use.No)
	require.Len(t, use.Args, 1)
	words := use.Args[0].(*ast.ListExpr)
	assert.Len(t, words.Elements, 2)

	noStmt := prog.Statements[1].(*ast.UseStatement)
	assert.True(t, noStmt.No)
	assert.Equal(t, "strict", noStmt.Module)
}

func TestStatementModifiers(t *testing.T) {
	prog, diags := mustParse(t, "return $x if $ok;")
	assert.Empty(t, diags)
	mod, ok := prog.Statements[0].(*ast.StatementModifier)
	require.True(t, ok)
	assert.Equal(t, "if", mod.Keyword)
	_, ok = mod.Stmt.(*ast.ReturnStatement)
	assert.True(t, ok)

	prog, _ = mustParse(t, `print "quiet\n" unless $verbose;`)
	mod = prog.Statements[0].(*ast.StatementModifier)
	assert.Equal(t, "unless", mod.Keyword)
}

func TestIfElsifElse(t *testing.T) {
	src := "if ($a) { 1; } elsif ($b) { 2; } elsif ($c) { 3; } else { 4; }"
	prog, diags := mustParse(t, src)
	assert.Empty(t, diags)
	stmt := prog.Statements[0].(*ast.IfStatement)
	assert.False(t, stmt.Negated)
	assert.Len(t, stmt.Elsifs, 2)
	require.NotNil(t, stmt.Else)
}

func TestUnlessSetsNegated(t *testing.T) {
	prog, _ := mustParse(t, "unless ($done) { work(); }")
	stmt := prog.Statements[0].(*ast.IfStatement)
	assert.True(t, stmt.Negated)
}

func TestLoopForms(t *testing.T) {
	prog, diags := mustParse(t, `
while ($x) { $x--; }
until ($y) { $y++; }
for (my $i = 0; $i < 10; $i++) { body(); }
for my $e (@list) { use_it($e); }
foreach (@list) { other(); }
`)
	assert.Empty(t, diags)
	require.Len(t, prog.Statements, 5)

	w := prog.Statements[0].(*ast.WhileStatement)
	assert.False(t, w.Until)
	u := prog.Statements[1].(*ast.WhileStatement)
	assert.True(t, u.Until)

	c := prog.Statements[2].(*ast.ForStatement)
	require.NotNil(t, c.Init)
	require.NotNil(t, c.Cond)
	require.NotNil(t, c.Update)

	fe := prog.Statements[3].(*ast.ForeachStatement)
	assert.Equal(t, "my", fe.Decl)
	require.NotNil(t, fe.Var)

	bare := prog.Statements[4].(*ast.ForeachStatement)
	assert.Nil(t, bare.Var)
}

func TestLabeledLoopAndControl(t *testing.T) {
	prog, diags := mustParse(t, "OUTER: while (1) { last OUTER; next; }")
	assert.Empty(t, diags)
	labeled := prog.Statements[0].(*ast.LabeledStatement)
	assert.Equal(t, "OUTER", labeled.Label)
	loop := labeled.Stmt.(*ast.WhileStatement)
	last := loop.Body.Statements[0].(*ast.LoopControl)
	assert.Equal(t, "last", last.Keyword)
	assert.Equal(t, "OUTER", last.Label)
	next := loop.Body.Statements[1].(*ast.LoopControl)
	assert.Empty(t, next.Label)
}

func TestTryCatchFinally(t *testing.T) {
	prog, diags := mustParse(t, "try { risky(); } catch ($e) { log_it($e); } finally { cleanup(); }")
	assert.Empty(t, diags)
	stmt := prog.Statements[0].(*ast.TryStatement)
	require.NotNil(t, stmt.Try)
	require.NotNil(t, stmt.CatchVar)
	catchVar := stmt.CatchVar.(*ast.Variable)
	assert.Equal(t, "e", catchVar.Name)
	require.NotNil(t, stmt.Catch)
	require.NotNil(t, stmt.Finally)
}

func TestGivenWhen(t *testing.T) {
	prog, diags := mustParse(t, "given ($x) { when (1) { a(); } when (2) { b(); } default { c(); } }")
	assert.Empty(t, diags)
	given := prog.Statements[0].(*ast.GivenStatement)
	require.NotNil(t, given.Body)
	require.Len(t, given.Body.Statements, 3)
	def := given.Body.Statements[2].(*ast.WhenClause)
	assert.Nil(t, def.Match)
}

func TestDataSection(t *testing.T) {
	prog, diags := mustParse(t, "my $x = 1;\n__DATA__\nrecord one\nrecord two\n")
	assert.Empty(t, diags)
	require.Len(t, prog.Statements, 2)
	data := prog.Statements[1].(*ast.DataSection)
	assert.Equal(t, "__DATA__", data.Marker)
	assert.Equal(t, "\nrecord one\nrecord two\n", data.Content)
}

func TestMethodCallsAndSubscripts(t *testing.T) {
	expr := onlyExpr(t, "$obj->method(1)->chain;")
	chain, ok := expr.(*ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "chain", chain.Method)
	inner, ok := chain.Invocant.(*ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "method", inner.Method)
	assert.Len(t, inner.Args, 1)

	expr = onlyExpr(t, "$h->{key};")
	idx, ok := expr.(*ast.IndexExpr)
	require.True(t, ok)
	assert.True(t, idx.Brace)
	assert.True(t, idx.Arrow)

	expr = onlyExpr(t, "$a[0];")
	idx, ok = expr.(*ast.IndexExpr)
	require.True(t, ok)
	assert.False(t, idx.Brace)
	assert.False(t, idx.Arrow)
}

func TestMatchBinding(t *testing.T) {
	expr := onlyExpr(t, "$line =~ /^\\s*#/;")
	m, ok := expr.(*ast.MatchExpr)
	require.True(t, ok)
	assert.False(t, m.Negated)
	require.NotNil(t, m.Target)

	expr = onlyExpr(t, "$line !~ /x/;")
	m = expr.(*ast.MatchExpr)
	assert.True(t, m.Negated)

	expr = onlyExpr(t, "$s =~ s/foo/bar/g;")
	subst, ok := expr.(*ast.SubstitutionExpr)
	require.True(t, ok)
	assert.Equal(t, "foo", subst.Pattern)
	assert.Equal(t, "bar", subst.Replacement)
	assert.Equal(t, "g", subst.Modifiers)
	require.NotNil(t, subst.Target)
}

func TestRegexGuardFindingsBecomeWarnings(t *testing.T) {
	_, diags := mustParse(t, "$x =~ /(a+)+/;")
	assert.True(t, hasCategory(diags, "regex-backtracking"))
	for _, d := range diags {
		assert.Equal(t, recovery.SeverityWarning, d.Severity)
	}
}

func TestHeredocExpression(t *testing.T) {
	prog, diags := mustParse(t, "my $h = <<EOF;\nhello\nworld\nEOF\n")
	assert.Empty(t, diags)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	h, ok := decl.Init.(*ast.Heredoc)
	require.True(t, ok)
	assert.Equal(t, "EOF", h.Terminator)
	assert.Equal(t, "hello\nworld\n", h.Body)
}

func TestNestedHeredocDiagnosticSurfaces(t *testing.T) {
	// A heredoc declared inside an eval heredoc's body is invisible to
	// the lexer; the context-aware scan reports it during Run.
	src := "eval <<CODE;\nmy $x = <<NESTED;\nno terminator here\nCODE\n"
	_, diags := mustParse(t, src)
	require.True(t, hasCategory(diags, "heredoc-unterminated"),
		"expected the nested unterminated heredoc to be reported")
}

func TestQuoteWordsList(t *testing.T) {
	prog, _ := mustParse(t, "my @w = qw(alpha beta gamma);")
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	list, ok := decl.Init.(*ast.ListExpr)
	require.True(t, ok)
	require.Len(t, list.Elements, 3)
	first := list.Elements[0].(*ast.StringLiteral)
	assert.Equal(t, "alpha", first.Value)
}

func TestEvalAndAnonSub(t *testing.T) {
	expr := onlyExpr(t, "eval { risky(); };")
	ev, ok := expr.(*ast.EvalExpr)
	require.True(t, ok)
	require.NotNil(t, ev.Block)
	assert.Nil(t, ev.Str)

	prog, _ := mustParse(t, "my $cb = sub { inner(); };")
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	_, ok = decl.Init.(*ast.AnonSub)
	assert.True(t, ok)
}

func TestListOperatorSwallowsCommaList(t *testing.T) {
	expr := onlyExpr(t, `print "a", "b", "c";`)
	call, ok := expr.(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "print", call.Name)
	assert.Len(t, call.Args, 3)
}

func TestMissingSemicolonIsDiagnosticOnly(t *testing.T) {
	prog, diags := mustParse(t, "my $x = 1\nmy $y = 2;")
	// Both statements parse despite the missing terminator.
	require.Len(t, prog.Statements, 2)
	_, ok := prog.Statements[0].(*ast.VariableDeclaration)
	assert.True(t, ok)
	_, ok = prog.Statements[1].(*ast.VariableDeclaration)
	assert.True(t, ok)
	assert.True(t, hasCategory(diags, recovery.CategoryMissingSemicolon))
}

func TestMissingSemicolonSuggestion(t *testing.T) {
	p := New("my $x = 1\nmy $y = 2;", recovery.DefaultConfig())
	_, err := p.Run()
	require.NoError(t, err)
	require.NotEmpty(t, p.Suggestions())
	top := p.Suggestions()[0]
	assert.Contains(t, top.Message, "';'")
	require.NotNil(t, top.Fix)
	assert.Equal(t, ";", top.Fix.NewText)
}

func TestBrokenStatementBecomesErrorNode(t *testing.T) {
	prog, diags := mustParse(t, "my = 5;\nmy $x = 1;")
	require.Len(t, prog.Statements, 2)
	_, ok := prog.Statements[0].(*ast.ErrorNode)
	require.True(t, ok)
	_, ok = prog.Statements[1].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.GreaterOrEqual(t, errorCount(diags), 1)
}

func TestRecoveryInsideBlock(t *testing.T) {
	prog, diags := mustParse(t, "sub f {\n my = broken;\n my $ok = 1;\n}\nmy $after = 2;")
	require.Len(t, prog.Statements, 2)
	decl := prog.Statements[0].(*ast.SubDeclaration)
	require.NotNil(t, decl.Body)
	// The block keeps its good statement and gains an ErrorNode.
	assert.NotEmpty(t, ast.ErrorNodes(decl.Body))
	assert.GreaterOrEqual(t, errorCount(diags), 1)
}

func TestExtraClosingBraceSuggestion(t *testing.T) {
	p := New("sub f { } }", recovery.DefaultConfig())
	_, err := p.Run()
	require.NoError(t, err)

	var removal bool
	for _, s := range p.Suggestions() {
		if s.Fix != nil && s.Fix.NewText == "" && strings.Contains(s.Message, "no matching opener") {
			removal = true
		}
	}
	assert.True(t, removal, "expected a remove-the-extra-brace suggestion, got %+v", p.Suggestions())
}

func TestUnclosedBraceDiagnostic(t *testing.T) {
	prog, diags := mustParse(t, "sub f { my $x = 1;")
	require.Len(t, prog.Statements, 1)
	assert.True(t, hasCategory(diags, recovery.CategoryUnclosedDelimiter))
}

func TestRecoveryAlwaysMakesProgress(t *testing.T) {
	// Pure operator soup cannot start a statement anywhere; the parser
	// must still reach EOF without spinning.
	prog, diags := mustParse(t, ") ] } ; = = = ;;; )")
	require.NotNil(t, prog)
	assert.GreaterOrEqual(t, errorCount(diags), 1)
}

func TestNodeLimitAbortsParse(t *testing.T) {
	src := strings.Repeat("1 + ", 64) + "1;"
	p := New(src, recovery.Config{MaxASTNodes: 20})
	prog, err := p.Run()
	require.Error(t, err)
	assert.Nil(t, prog)

	var limit *recovery.LimitError
	require.True(t, errors.As(err, &limit))
	assert.Equal(t, recovery.LimitNodes, limit.Kind)
}

func TestDeepNestingHitsLimitNotStack(t *testing.T) {
	depth := 200
	src := strings.Repeat("if (1) { ", depth) + "1;" + strings.Repeat(" }", depth)
	p := New(src, recovery.Config{MaxASTNodes: 100})
	_, err := p.Run()
	require.Error(t, err)
	var limit *recovery.LimitError
	require.True(t, errors.As(err, &limit))
}

func TestDefaultLimitsAcceptOrdinaryPrograms(t *testing.T) {
	src := strings.Repeat("my $x = compute(1, 2, 3);\n", 500)
	prog, diags := mustParse(t, src)
	assert.Empty(t, diags)
	assert.Len(t, prog.Statements, 500)
}

func TestReparseIsStructurallyIdentical(t *testing.T) {
	src := `
use v5.36;
package Demo;

my %config = (retries => 3, timeout => 10);

sub run {
    my ($self, @args) = @_;
    foreach my $arg (@args) {
        next unless $arg;
        $self->{count}++;
    }
    return $self->{count} // 0;
}

run(Demo->new) if @ARGV;
`
	a, _ := mustParse(t, src)
	b, _ := mustParse(t, src)
	assert.True(t, ast.StructurallyEqual(a, b))

	c, _ := mustParse(t, src+"\nmy $extra = 1;\n")
	assert.False(t, ast.StructurallyEqual(a, c))
}

func TestProgramSpanCoversDocument(t *testing.T) {
	src := "my $x = 1;\n"
	prog, _ := mustParse(t, src)
	assert.Equal(t, 0, prog.Span.Start)
	assert.Equal(t, len(src), prog.Span.End)
}

func TestNotBindsLooserThanComparison(t *testing.T) {
	expr := onlyExpr(t, "not $a == $b;")
	u, ok := expr.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, "not", u.Op)
	_, ok = u.Operand.(*ast.BinaryExpr)
	assert.True(t, ok, "`not` must take the whole comparison as operand")
}

func TestStringConcatenationAndRepeat(t *testing.T) {
	expr := onlyExpr(t, `"a" . "b" x 3;`)
	outer, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ".", outer.Op)
	inner, ok := outer.Right.(*ast.BinaryExpr)
	require.True(t, ok, "x binds tighter than .")
	assert.Equal(t, "x", inner.Op)
}
