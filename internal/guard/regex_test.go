package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perlscope/perlscope/internal/position"
)

func codesOf(issues []Issue) []string {
	codes := make([]string, len(issues))
	for i, is := range issues {
		codes[i] = is.Code
	}
	return codes
}

func TestCheckRegexCleanPattern(t *testing.T) {
	issues := CheckRegex(`^\s*(\w+)\s*=\s*(.*)$`, "m", position.Span{}, DefaultRegexLimits())
	assert.Empty(t, issues)
}

func TestCheckRegexLookbehindDepth(t *testing.T) {
	pat := strings.Repeat("(?<=", 11) + "a" + strings.Repeat(")", 11)
	issues := CheckRegex(pat, "", position.Span{}, DefaultRegexLimits())
	require.NotEmpty(t, issues)
	assert.Contains(t, codesOf(issues), "regex-lookbehind")

	// At the limit exactly, no lookbehind complaint.
	pat = strings.Repeat("(?<=", 10) + "a" + strings.Repeat(")", 10)
	issues = CheckRegex(pat, "", position.Span{}, DefaultRegexLimits())
	assert.NotContains(t, codesOf(issues), "regex-lookbehind")
}

func TestCheckRegexUnicodeProperties(t *testing.T) {
	pat := strings.Repeat(`\p{L}`, 51)
	issues := CheckRegex(pat, "", position.Span{}, DefaultRegexLimits())
	assert.Contains(t, codesOf(issues), "regex-unicode-properties")

	pat = strings.Repeat(`\p{L}`, 50)
	issues = CheckRegex(pat, "", position.Span{}, DefaultRegexLimits())
	assert.NotContains(t, codesOf(issues), "regex-unicode-properties")
}

func TestCheckRegexBranchCount(t *testing.T) {
	pat := strings.Repeat("a|", 51) + "a" // 52 alternatives
	issues := CheckRegex(pat, "", position.Span{}, DefaultRegexLimits())
	assert.Contains(t, codesOf(issues), "regex-branches")

	pat = "a|b|c"
	issues = CheckRegex(pat, "", position.Span{}, DefaultRegexLimits())
	assert.Empty(t, issues)
}

func TestCheckRegexNestedQuantifiers(t *testing.T) {
	for _, pat := range []string{"(a+)+", "(a*)*", "(\\d+)*", "(x{2,})+"} {
		issues := CheckRegex(pat, "", position.Span{}, DefaultRegexLimits())
		assert.Contains(t, codesOf(issues), "regex-backtracking", pat)
	}
	for _, pat := range []string{"(a+)b+", "(a+)(b+)", "a+b*", "(abc)+"} {
		issues := CheckRegex(pat, "", position.Span{}, DefaultRegexLimits())
		assert.NotContains(t, codesOf(issues), "regex-backtracking", pat)
	}
}

func TestCheckRegexSyntaxError(t *testing.T) {
	issues := CheckRegex("(unclosed", "", position.Span{}, DefaultRegexLimits())
	require.NotEmpty(t, issues)
	assert.Contains(t, codesOf(issues), "regex-syntax")
}

func TestCheckRegexCharClassSkipped(t *testing.T) {
	// Parens inside a character class are literal and must not count
	// toward group or branch analysis.
	issues := CheckRegex(`[(+)]+`, "", position.Span{}, DefaultRegexLimits())
	assert.Empty(t, issues)
}

func TestScanHeredocsSingleAndStacked(t *testing.T) {
	src := "print <<A, <<B;\none\nA\ntwo\nB\n"
	res := ScanHeredocs(src, DefaultScanLimits())
	require.Len(t, res.Decls, 2)
	assert.Empty(t, res.Issues)

	assert.Equal(t, "A", res.Decls[0].Terminator)
	assert.Equal(t, "one\n", res.Decls[0].Body)
	assert.True(t, res.Decls[0].Terminated)

	assert.Equal(t, "B", res.Decls[1].Terminator)
	assert.Equal(t, "two\n", res.Decls[1].Body)
	assert.True(t, res.Decls[1].Terminated)
}

func TestScanHeredocsIndented(t *testing.T) {
	src := "my $t = <<~TXT;\n  hello\n  TXT\n"
	res := ScanHeredocs(src, DefaultScanLimits())
	require.Len(t, res.Decls, 1)
	assert.True(t, res.Decls[0].Indented)
	assert.True(t, res.Decls[0].Terminated)
	assert.Equal(t, "  hello\n", res.Decls[0].Body)
}

func TestScanHeredocsUnterminated(t *testing.T) {
	src := "my $t = <<GONE;\nno end in sight\n"
	res := ScanHeredocs(src, DefaultScanLimits())
	require.Len(t, res.Decls, 1)
	assert.False(t, res.Decls[0].Terminated)
	assert.Contains(t, codesOf(res.Issues), "heredoc-unterminated")
}

func TestScanHeredocsEvalNesting(t *testing.T) {
	src := "eval <<CODE;\nprint <<INNER;\nhi\nINNER\nCODE\n"
	res := ScanHeredocs(src, DefaultScanLimits())
	require.Len(t, res.Decls, 2)
	assert.Empty(t, res.Issues)

	assert.Equal(t, "CODE", res.Decls[0].Terminator)
	assert.Equal(t, 0, res.Decls[0].Depth)
	assert.Equal(t, "INNER", res.Decls[1].Terminator)
	assert.Equal(t, 1, res.Decls[1].Depth)
}

func TestScanHeredocsSingleQuotedBodyNotEvaluated(t *testing.T) {
	// A single-quoted heredoc never interpolates, so its body is not
	// followed even when handed to eval.
	src := "eval <<'CODE';\nprint <<INNER;\nCODE\n"
	res := ScanHeredocs(src, DefaultScanLimits())
	require.Len(t, res.Decls, 1)
	assert.Equal(t, "CODE", res.Decls[0].Terminator)
}

func TestScanHeredocsDepthLimit(t *testing.T) {
	src := "eval <<CODE;\nprint <<INNER;\nhi\nINNER\nCODE\n"
	res := ScanHeredocs(src, ScanLimits{MaxDepth: 0, Deadline: DefaultScanLimits().Deadline})
	assert.Contains(t, codesOf(res.Issues), "heredoc-depth")
	// The top-level declaration is still reported.
	require.NotEmpty(t, res.Decls)
	assert.Equal(t, "CODE", res.Decls[0].Terminator)
}

func TestScanHeredocsShiftExcluded(t *testing.T) {
	res := ScanHeredocs("my $x = 1 << 4;\nmy $y = $a <<= 2;\n", DefaultScanLimits())
	assert.Empty(t, res.Decls)
}

func TestScanHeredocsCommentExcluded(t *testing.T) {
	res := ScanHeredocs("my $x = 1; # see <<EOF for details\n", DefaultScanLimits())
	assert.Empty(t, res.Decls)
}
