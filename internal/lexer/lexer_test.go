package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlscope/perlscope/internal/token"
)

func kindsOf(toks []token.Token) []token.Kind {
	kinds := make([]token.Kind, len(toks))
	for i, t := range toks {
		kinds[i] = t.Kind
	}
	return kinds
}

func textsOf(toks []token.Token) []string {
	texts := make([]string, len(toks))
	for i, t := range toks {
		texts[i] = t.Text
	}
	return texts
}

func TestTokenizeSimpleStatement(t *testing.T) {
	toks := Tokenize("my $x = 1;")
	require.Equal(t, []token.Kind{
		token.Keyword, token.Variable, token.Operator, token.Number,
		token.Semicolon, token.EOF,
	}, kindsOf(toks))
	assert.Equal(t, "my", toks[0].Text)
	assert.Equal(t, "$x", toks[1].Text)
	assert.Equal(t, "1", toks[3].Text)
}

func TestSlashDisambiguation(t *testing.T) {
	// Operator position: division.
	toks := Tokenize("$a / $b;")
	require.Equal(t, token.Operator, toks[1].Kind)
	require.Equal(t, "/", toks[1].Text)

	// Term position after a binding operator: regex.
	toks = Tokenize("$a =~ /ab+c/i;")
	require.Equal(t, token.Regex, toks[2].Kind)
	require.Equal(t, "/ab+c/i", toks[2].Text)

	// Chained division stays division.
	toks = Tokenize("1 / 2 / 3;")
	assert.Equal(t, []token.Kind{
		token.Number, token.Operator, token.Number, token.Operator,
		token.Number, token.Semicolon, token.EOF,
	}, kindsOf(toks))
}

func TestListOperatorTakesPattern(t *testing.T) {
	toks := Tokenize("split /,/, $s;")
	require.Equal(t, token.Ident, toks[0].Kind)
	require.Equal(t, token.Regex, toks[1].Kind)
	require.Equal(t, "/,/", toks[1].Text)

	toks = Tokenize("grep /x/, @list;")
	require.Equal(t, token.Regex, toks[1].Kind)

	// An ordinary identifier still completes an operand, so a slash
	// after it is division.
	toks = Tokenize("$x = $total / count;")
	require.Equal(t, token.Operator, toks[3].Kind)
	toks = Tokenize("total / 2;")
	require.Equal(t, token.Operator, toks[1].Kind)
	require.Equal(t, "/", toks[1].Text)
}

func TestStarDisambiguation(t *testing.T) {
	toks := Tokenize("*STDOUT = *main::STDERR;")
	require.Equal(t, token.Typeglob, toks[0].Kind)
	require.Equal(t, "*STDOUT", toks[0].Text)
	require.Equal(t, token.Typeglob, toks[2].Kind)
	require.Equal(t, "*main::STDERR", toks[2].Text)

	toks = Tokenize("$a * $b;")
	require.Equal(t, token.Operator, toks[1].Kind)
	require.Equal(t, "*", toks[1].Text)
}

func TestAngleDisambiguation(t *testing.T) {
	toks := Tokenize("my $line = <STDIN>;")
	require.Equal(t, token.Readline, toks[3].Kind)
	require.Equal(t, "<STDIN>", toks[3].Text)

	toks = Tokenize("my $line = <$fh>;")
	require.Equal(t, token.Readline, toks[3].Kind)

	toks = Tokenize("$a < $b;")
	require.Equal(t, token.Operator, toks[1].Kind)
	require.Equal(t, "<", toks[1].Text)
}

func TestLeadingDotNumber(t *testing.T) {
	// Term position: .5 is a number.
	toks := Tokenize("my $h = .5;")
	require.Equal(t, token.Number, toks[3].Kind)
	require.Equal(t, ".5", toks[3].Text)

	// Operator position: concatenation, not a fraction.
	toks = Tokenize("$x .5;")
	require.Equal(t, token.Operator, toks[1].Kind)
	require.Equal(t, ".", toks[1].Text)
	require.Equal(t, token.Number, toks[2].Kind)
	require.Equal(t, "5", toks[2].Text)
}

func TestNumberForms(t *testing.T) {
	toks := Tokenize("0xFF 0b1010 1_000_000 3.14 1e10 2.5e-3")
	texts := textsOf(toks[:len(toks)-1])
	assert.Equal(t, []string{"0xFF", "0b1010", "1_000_000", "3.14", "1e10", "2.5e-3"}, texts)
	for _, tok := range toks[:len(toks)-1] {
		assert.Equal(t, token.Number, tok.Kind, tok.Text)
	}
}

func TestRangeDoesNotEatDot(t *testing.T) {
	toks := Tokenize("1..10;")
	require.Equal(t, []token.Kind{
		token.Number, token.Operator, token.Number, token.Semicolon, token.EOF,
	}, kindsOf(toks))
	assert.Equal(t, "..", toks[1].Text)
}

func TestQuoteLikeOperators(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"qw(a b c);", token.QuoteWords},
		{"q{raw text};", token.RawString},
		{"qq[interp $x];", token.String},
		{"qr/pat/x;", token.Regex},
		{"m{match};", token.Regex},
		{"s/foo/bar/g;", token.Substitute},
		{"s{foo}{bar}g;", token.Substitute},
		{"tr/a-z/A-Z/;", token.Translit},
		{"y/abc/xyz/;", token.Translit},
	}
	for _, tc := range cases {
		toks := Tokenize(tc.src)
		require.Equal(t, tc.kind, toks[0].Kind, tc.src)
	}
}

func TestSameDelimiterStopsAtCloser(t *testing.T) {
	// The shared-delimiter forms must not run past their closer.
	toks := Tokenize("s/a/b/g; my $x = 1;")
	require.Equal(t, token.Substitute, toks[0].Kind)
	require.Equal(t, "s/a/b/g", toks[0].Text)
	assert.Equal(t, []token.Kind{
		token.Substitute, token.Semicolon, token.Keyword, token.Variable,
		token.Operator, token.Number, token.Semicolon, token.EOF,
	}, kindsOf(toks))

	toks = Tokenize("$a =~ /ab+c/i; print;")
	require.Equal(t, token.Regex, toks[2].Kind)
	require.Equal(t, "/ab+c/i", toks[2].Text)
	require.Equal(t, token.Semicolon, toks[3].Kind)

	toks = Tokenize("m!match!; next;")
	require.Equal(t, token.Regex, toks[0].Kind)
	require.Equal(t, "m!match!", toks[0].Text)

	// Escaped delimiter inside the body stays inside the token.
	toks = Tokenize(`s/a\/b/c/; next;`)
	require.Equal(t, token.Substitute, toks[0].Kind)
	require.Equal(t, `s/a\/b/c/`, toks[0].Text)
	require.Equal(t, token.Semicolon, toks[1].Kind)
}

func TestQuoteWordAsIdentifier(t *testing.T) {
	// `q` followed by something that cannot open a delimiter stays a
	// plain identifier.
	toks := Tokenize("my $q = $x;")
	require.Equal(t, token.Variable, toks[1].Kind)

	toks = Tokenize("s => 1;")
	require.Equal(t, token.Ident, toks[0].Kind)
	require.Equal(t, token.FatArrow, toks[1].Kind)
}

func TestStringKinds(t *testing.T) {
	toks := Tokenize(`"double" 'single' ` + "`backtick`")
	require.Equal(t, token.String, toks[0].Kind)
	require.Equal(t, token.RawString, toks[1].Kind)
	require.Equal(t, token.Backtick, toks[2].Kind)
}

func TestTriviaExcluded(t *testing.T) {
	src := "# leading comment\nmy $x = 1; # trailing\n=pod\nsome docs\n=cut\nmy $y = 2;\n"
	toks := Tokenize(src)
	for _, tok := range toks {
		assert.NotEqual(t, token.Comment, tok.Kind)
		assert.NotEqual(t, token.Pod, tok.Kind)
	}
	// Both statements survive around the trivia.
	texts := textsOf(toks)
	assert.Contains(t, texts, "$x")
	assert.Contains(t, texts, "$y")
}

func TestDataSectionToken(t *testing.T) {
	src := "my $x = 1;\n__DATA__\nanything goes here\neven ${unbalanced\n"
	toks := Tokenize(src)
	last := toks[len(toks)-2]
	require.Equal(t, token.DataSection, last.Kind)
	assert.Equal(t, 11, last.Span.Start)
	assert.Equal(t, len(src), last.Span.End)
}

func TestHeredocBodies(t *testing.T) {
	src := "my $h = <<EOF;\nline one\nline two\nEOF\nmy $y = 2;\n"
	l := New(src)
	decl := token.Token{}
	for {
		tok := l.Next()
		if tok.Kind == token.HeredocDecl {
			decl = tok
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	require.Equal(t, "<<EOF", decl.Text)

	body, ok := l.Bodies()[decl.Span.Start]
	require.True(t, ok)
	assert.Equal(t, "EOF", body.Terminator)
	assert.Equal(t, "line one\nline two\n", body.Body)
	assert.True(t, body.Terminated)
	assert.False(t, body.Indented)
	assert.EqualValues(t, 0, body.Quote)
}

func TestHeredocStacking(t *testing.T) {
	src := "print <<A, <<'B';\nfirst\nA\nsecond\nB\nmy $x = 1;\n"
	l := New(src)
	var decls []token.Token
	for {
		tok := l.Next()
		if tok.Kind == token.HeredocDecl {
			decls = append(decls, tok)
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	require.Len(t, decls, 2)

	a := l.Bodies()[decls[0].Span.Start]
	b := l.Bodies()[decls[1].Span.Start]
	assert.Equal(t, "first\n", a.Body)
	assert.Equal(t, "second\n", b.Body)
	assert.EqualValues(t, '\'', b.Quote)
}

func TestHeredocIndented(t *testing.T) {
	src := "my $h = <<~END;\n    text\n    END\nmy $x = 1;\n"
	l := New(src)
	var decl token.Token
	for {
		tok := l.Next()
		if tok.Kind == token.HeredocDecl {
			decl = tok
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	body := l.Bodies()[decl.Span.Start]
	require.True(t, body.Terminated)
	assert.True(t, body.Indented)
	assert.Equal(t, "    text\n", body.Body)
}

func TestHeredocUnterminated(t *testing.T) {
	src := "my $h = <<EOF;\nno terminator here"
	l := New(src)
	var decl token.Token
	for {
		tok := l.Next()
		if tok.Kind == token.HeredocDecl {
			decl = tok
		}
		if tok.Kind == token.EOF {
			break
		}
	}
	body, ok := l.Bodies()[decl.Span.Start]
	require.True(t, ok)
	assert.False(t, body.Terminated)
}

func TestShiftIsNotHeredoc(t *testing.T) {
	toks := Tokenize("my $x = 1 << 4;")
	for _, tok := range toks {
		require.NotEqual(t, token.HeredocDecl, tok.Kind)
	}
}

func TestCheckpointResume(t *testing.T) {
	src := "my $x = 1;\nmy $y = $x + 2;\n"
	l := New(src)
	// Scan through the first statement.
	for {
		tok := l.Next()
		if tok.Kind == token.Semicolon {
			break
		}
	}
	cp := l.Checkpoint()

	resumed := NewAt(src, cp)
	var got []token.Token
	for {
		tok := resumed.Next()
		got = append(got, tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	// The resumed stream must match a fresh scan from the same offset.
	want := Tokenize(src)
	tail := want[5:] // tokens after the first semicolon
	require.Equal(t, kindsOf(tail), kindsOf(got))
	require.Equal(t, textsOf(tail), textsOf(got))
}

func TestWordOperatorsStayIdents(t *testing.T) {
	toks := Tokenize("$a and $b or $c;")
	require.Equal(t, token.Ident, toks[1].Kind)
	require.Equal(t, "and", toks[1].Text)
	require.Equal(t, token.Ident, toks[3].Kind)
	require.Equal(t, "or", toks[3].Text)
}

func TestPunctuationVariables(t *testing.T) {
	toks := Tokenize(`$_ $0 $1 @_ $@ $!`)
	texts := textsOf(toks[:len(toks)-1])
	assert.Equal(t, []string{"$_", "$0", "$1", "@_", "$@", "$!"}, texts)
	for _, tok := range toks[:len(toks)-1] {
		assert.Equal(t, token.Variable, tok.Kind, tok.Text)
	}
}
