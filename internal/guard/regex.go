// Package guard implements pre-compilation complexity checks for regex
// patterns and a resource-bounded heredoc scanner. Patterns that pass
// the shape checks are syntax-validated with the regexp2 engine, which
// understands the lookbehind and named-group constructs the stdlib
// engine rejects.
package guard

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/perlscope/perlscope/internal/position"
)

// RegexLimits bounds pattern complexity before compilation is even
// attempted.
type RegexLimits struct {
	MaxLookbehindDepth   int
	MaxUnicodeProperties int
	MaxBranches          int
}

// DefaultRegexLimits returns the production limits.
func DefaultRegexLimits() RegexLimits {
	return RegexLimits{
		MaxLookbehindDepth:   10,
		MaxUnicodeProperties: 50,
		MaxBranches:          50,
	}
}

// Issue is one complexity or syntax finding for a pattern.
type Issue struct {
	Span    position.Span
	Code    string
	Message string
}

func (i Issue) String() string { return fmt.Sprintf("%s: %s", i.Code, i.Message) }

// CheckRegex runs the shape checks and, when they pass, a syntax check.
// span locates the pattern in the enclosing document and is stamped on
// every issue. All findings are diagnostics; none abort a parse.
func CheckRegex(pattern, modifiers string, span position.Span, limits RegexLimits) []Issue {
	var issues []Issue

	if d := lookbehindDepth(pattern); d > limits.MaxLookbehindDepth {
		issues = append(issues, Issue{
			Span:    span,
			Code:    "regex-lookbehind",
			Message: fmt.Sprintf("Regex lookbehind nesting too deep (%d levels, limit %d)", d, limits.MaxLookbehindDepth),
		})
	}
	if n := unicodePropertyCount(pattern); n > limits.MaxUnicodeProperties {
		issues = append(issues, Issue{
			Span:    span,
			Code:    "regex-unicode-properties",
			Message: fmt.Sprintf("Too many Unicode properties (%d, limit %d)", n, limits.MaxUnicodeProperties),
		})
	}
	if n := branchCount(pattern); n > limits.MaxBranches {
		issues = append(issues, Issue{
			Span:    span,
			Code:    "regex-branches",
			Message: fmt.Sprintf("Too many branches (%d alternatives, limit %d)", n, limits.MaxBranches),
		})
	}
	if hasNestedQuantifier(pattern) {
		issues = append(issues, Issue{
			Span:    span,
			Code:    "regex-backtracking",
			Message: "Nested quantifiers risk catastrophic backtracking",
		})
	}
	if len(issues) > 0 {
		return issues
	}

	re, err := regexp2.Compile(pattern, regexOptions(modifiers))
	if err != nil {
		return []Issue{{
			Span:    span,
			Code:    "regex-syntax",
			Message: fmt.Sprintf("regex syntax error: %v", err),
		}}
	}
	// Matching against untrusted input elsewhere in the toolchain gets
	// the same bound the scanner uses.
	re.MatchTimeout = 5 * time.Second
	return nil
}

func regexOptions(modifiers string) regexp2.RegexOptions {
	opts := regexp2.None
	for i := 0; i < len(modifiers); i++ {
		switch modifiers[i] {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		}
	}
	return opts
}

// lookbehindDepth returns the maximum nesting depth of lookbehind
// groups: (?<= and (?<! openers, tracked against their closing parens.
func lookbehindDepth(pattern string) int {
	maxDepth := 0
	// Each stack entry is the paren depth at which a lookbehind opened.
	var stack []int
	depth := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			// Character classes cannot contain groups; skip to the
			// unescaped closing bracket.
			for i++; i < len(pattern); i++ {
				if pattern[i] == '\\' {
					i++
				} else if pattern[i] == ']' {
					break
				}
			}
		case '(':
			depth++
			if i+3 < len(pattern) && pattern[i+1] == '?' && pattern[i+2] == '<' &&
				(pattern[i+3] == '=' || pattern[i+3] == '!') {
				stack = append(stack, depth)
				if len(stack) > maxDepth {
					maxDepth = len(stack)
				}
				i += 3
			}
		case ')':
			if len(stack) > 0 && stack[len(stack)-1] == depth {
				stack = stack[:len(stack)-1]
			}
			if depth > 0 {
				depth--
			}
		}
	}
	return maxDepth
}

// unicodePropertyCount counts \p{...}, \P{...}, and single-letter \pL
// escapes.
func unicodePropertyCount(pattern string) int {
	count := 0
	for i := 0; i+1 < len(pattern); i++ {
		if pattern[i] == '\\' {
			if pattern[i+1] == 'p' || pattern[i+1] == 'P' {
				count++
			}
			i++
		} else if pattern[i] == '[' {
			continue
		}
	}
	return count
}

// branchCount returns the number of alternatives: unescaped `|`
// separators outside character classes, plus one.
func branchCount(pattern string) int {
	bars := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			for i++; i < len(pattern); i++ {
				if pattern[i] == '\\' {
					i++
				} else if pattern[i] == ']' {
					break
				}
			}
		case '|':
			bars++
		}
	}
	if bars == 0 {
		return 1
	}
	return bars + 1
}

// hasNestedQuantifier detects the classic exponential shape: a
// quantified group whose body itself ends under a quantifier, e.g.
// (a+)+ or (\d*)* or (x{2,}){3,}.
func hasNestedQuantifier(pattern string) bool {
	type group struct {
		quantifiedInside bool
	}
	var stack []group
	prevQuantifiable := false // last atom could take a quantifier
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch ch {
		case '\\':
			i++
			prevQuantifiable = true
		case '[':
			for i++; i < len(pattern); i++ {
				if pattern[i] == '\\' {
					i++
				} else if pattern[i] == ']' {
					break
				}
			}
			prevQuantifiable = true
		case '(':
			stack = append(stack, group{})
			prevQuantifiable = false
		case ')':
			if len(stack) == 0 {
				prevQuantifiable = true
				continue
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if next := quantifierAt(pattern, i+1); next && closed.quantifiedInside {
				return true
			}
			prevQuantifiable = true
		case '*', '+':
			if prevQuantifiable && len(stack) > 0 {
				stack[len(stack)-1].quantifiedInside = true
			}
			prevQuantifiable = false
		case '{':
			if prevQuantifiable && isCountedQuantifier(pattern, i) {
				if len(stack) > 0 {
					stack[len(stack)-1].quantifiedInside = true
				}
				for i < len(pattern) && pattern[i] != '}' {
					i++
				}
				prevQuantifiable = false
			} else {
				prevQuantifiable = true
			}
		case '?', '|', '^', '$':
			prevQuantifiable = false
		default:
			prevQuantifiable = true
		}
	}
	return false
}

func quantifierAt(pattern string, i int) bool {
	if i >= len(pattern) {
		return false
	}
	switch pattern[i] {
	case '*', '+':
		return true
	case '{':
		return isCountedQuantifier(pattern, i)
	}
	return false
}

// isCountedQuantifier reports whether pattern[i:] starts a {n}, {n,},
// or {n,m} quantifier.
func isCountedQuantifier(pattern string, i int) bool {
	j := i + 1
	digits := 0
	for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
		j++
		digits++
	}
	if digits == 0 {
		return false
	}
	if j < len(pattern) && pattern[j] == ',' {
		j++
		for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' {
			j++
		}
	}
	return j < len(pattern) && pattern[j] == '}'
}
