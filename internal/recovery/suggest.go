package recovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/perlscope/perlscope/internal/position"
)

// Category classifies a structural parse error. The values double as
// diagnostic categories.
const (
	CategoryMissingSemicolon  = "statement_without_semicolon"
	CategoryUnclosedDelimiter = "unclosed_delimiter"
	CategoryUnexpectedToken   = "unexpected_token"
	CategoryMissingExpression = "missing_expression"
)

// ErrorContext is what the parser knows at the error site.
type ErrorContext struct {
	Category string
	Span     position.Span
	// TokenText is the text of the offending token, empty at EOF.
	TokenText string
	// Expected lists token texts that would have been accepted.
	Expected []string
	// OpenDelims are the delimiters currently unclosed, innermost
	// last.
	OpenDelims []byte
	// IncompleteStatement is set when the statement being parsed had
	// consumed at least one token before failing.
	IncompleteStatement bool
	// ExtraCloser is set by Refine when the offending token is a
	// closing delimiter with no matching opener.
	ExtraCloser byte
}

// Fix is a mechanical edit that would repair the error.
type Fix struct {
	Span    position.Span // bytes to replace; empty span means insert
	NewText string
}

// Suggestion is one ranked repair hypothesis.
type Suggestion struct {
	Message    string
	Span       position.Span
	Confidence float64
	Fix        *Fix // nil when no mechanical fix applies
}

// Engine turns error contexts into ranked suggestions. It is stateless
// between errors apart from its configuration.
type Engine struct {
	maxSuggestions int
	minConfidence  float64
}

// NewEngine returns an engine with production settings: at most five
// suggestions per error, none below 0.3 confidence.
func NewEngine() *Engine {
	return &Engine{maxSuggestions: 5, minConfidence: 0.3}
}

// Suggest produces confidence-ranked suggestions for one error context.
func (e *Engine) Suggest(ctx ErrorContext) []Suggestion {
	var suggestions []Suggestion

	if ctx.ExtraCloser != 0 {
		suggestions = append(suggestions, Suggestion{
			Message:    fmt.Sprintf("extra '%c' has no matching opener; remove it", ctx.ExtraCloser),
			Span:       ctx.Span,
			Confidence: 0.85,
			Fix:        &Fix{Span: ctx.Span, NewText: ""},
		})
	}

	switch ctx.Category {
	case CategoryMissingSemicolon:
		insertAt := position.Span{Start: ctx.Span.Start, End: ctx.Span.Start}
		suggestions = append(suggestions, Suggestion{
			Message:    "statement appears to be missing a terminating ';'",
			Span:       ctx.Span,
			Confidence: 0.9,
			Fix:        &Fix{Span: insertAt, NewText: ";"},
		})
	case CategoryUnclosedDelimiter:
		if n := len(ctx.OpenDelims); n > 0 {
			open := ctx.OpenDelims[n-1]
			closer := string(mirrorDelimiter(open))
			suggestions = append(suggestions, Suggestion{
				Message:    fmt.Sprintf("unclosed '%c'; insert matching '%s'", open, closer),
				Span:       ctx.Span,
				Confidence: 0.85,
				Fix:        &Fix{Span: position.Span{Start: ctx.Span.End, End: ctx.Span.End}, NewText: closer},
			})
		}
		// Every outer delimiter still open is a lower-confidence
		// hypothesis of its own.
		for i := len(ctx.OpenDelims) - 2; i >= 0; i-- {
			closer := string(mirrorDelimiter(ctx.OpenDelims[i]))
			suggestions = append(suggestions, Suggestion{
				Message:    fmt.Sprintf("'%c' opened earlier is also unclosed; may need '%s'", ctx.OpenDelims[i], closer),
				Span:       ctx.Span,
				Confidence: 0.5,
			})
		}
	case CategoryUnexpectedToken:
		suggestions = append(suggestions, e.unexpectedToken(ctx)...)
	case CategoryMissingExpression:
		suggestions = append(suggestions, Suggestion{
			Message:    "operator has no right-hand operand",
			Span:       ctx.Span,
			Confidence: 0.8,
		})
		if ctx.IncompleteStatement {
			suggestions = append(suggestions, Suggestion{
				Message:    "the enclosing statement is incomplete; it may have been split by an edit",
				Span:       ctx.Span,
				Confidence: 0.4,
			})
		}
	}

	return e.rank(suggestions)
}

func (e *Engine) unexpectedToken(ctx ErrorContext) []Suggestion {
	var suggestions []Suggestion
	for _, want := range ctx.Expected {
		conf := 0.6
		// A near-miss spelling of an expected keyword is the strongest
		// signal this kind of context produces.
		if ctx.TokenText != "" && editDistance(ctx.TokenText, want) <= 2 && len(want) > 2 {
			conf = 0.9
			suggestions = append(suggestions, Suggestion{
				Message:    fmt.Sprintf("unexpected %q; did you mean %q?", ctx.TokenText, want),
				Span:       ctx.Span,
				Confidence: conf,
				Fix:        &Fix{Span: ctx.Span, NewText: want},
			})
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Message:    fmt.Sprintf("expected %q", want),
			Span:       ctx.Span,
			Confidence: conf,
		})
	}
	if len(suggestions) == 0 {
		msg := "unexpected end of input"
		if ctx.TokenText != "" {
			msg = fmt.Sprintf("unexpected %q", ctx.TokenText)
		}
		suggestions = append(suggestions, Suggestion{Message: msg, Span: ctx.Span, Confidence: 0.5})
	}
	return suggestions
}

func (e *Engine) rank(suggestions []Suggestion) []Suggestion {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	out := suggestions[:0]
	for _, s := range suggestions {
		if s.Confidence >= e.minConfidence {
			out = append(out, s)
		}
		if len(out) == e.maxSuggestions {
			break
		}
	}
	return out
}

// Refine sharpens a raw context before suggestion generation: it fills
// the category when the parser could not classify, and promotes
// delimiter errors when delimiters are open.
func Refine(ctx ErrorContext) ErrorContext {
	if len(ctx.OpenDelims) > 0 && ctx.TokenText == "" {
		// Hitting EOF with delimiters open is an unclosed-delimiter
		// error regardless of what the parser was in the middle of.
		ctx.Category = CategoryUnclosedDelimiter
	}
	if ctx.Category == "" {
		ctx.Category = CategoryUnexpectedToken
	}
	if ctx.Category == CategoryUnexpectedToken && ctx.TokenText == ";" && ctx.IncompleteStatement {
		ctx.Category = CategoryMissingExpression
	}
	if len(ctx.TokenText) == 1 {
		switch closer := ctx.TokenText[0]; closer {
		case ')', ']', '}':
			if !hasMatchingOpener(ctx.OpenDelims, closer) {
				ctx.ExtraCloser = closer
			}
		}
	}
	return ctx
}

// hasMatchingOpener reports whether any open delimiter matches the
// closer.
func hasMatchingOpener(open []byte, closer byte) bool {
	for _, b := range open {
		if mirrorDelimiter(b) == closer {
			return true
		}
	}
	return false
}

// Strategy is the adaptive recovery action the parser takes after
// recording an error.
type Strategy int

const (
	// StrategyDefault resynchronizes at the next statement boundary.
	StrategyDefault Strategy = iota
	// StrategySkipToken drops the offending token and retries.
	StrategySkipToken
	// StrategyTreatAsVariable parses a stray sigil token as a variable.
	StrategyTreatAsVariable
	// StrategyInsertClosing behaves as if the missing closer were
	// present.
	StrategyInsertClosing
	// StrategyInsertMissing materializes a MissingExpr placeholder.
	StrategyInsertMissing
)

func (s Strategy) String() string {
	switch s {
	case StrategySkipToken:
		return "skip-token"
	case StrategyTreatAsVariable:
		return "treat-as-variable"
	case StrategyInsertClosing:
		return "insert-closing"
	case StrategyInsertMissing:
		return "insert-missing"
	default:
		return "default"
	}
}

// ChooseStrategy picks the recovery action for an error context.
// Returns StrategyDefault when adaptive recovery is disabled.
func ChooseStrategy(cfg Config, ctx ErrorContext) Strategy {
	if !cfg.EnableAdaptive {
		return StrategyDefault
	}
	switch {
	case ctx.TokenText == ";":
		return StrategySkipToken
	case strings.HasPrefix(ctx.TokenText, "$"),
		strings.HasPrefix(ctx.TokenText, "@"),
		strings.HasPrefix(ctx.TokenText, "%"):
		return StrategyTreatAsVariable
	case ctx.Category == CategoryUnclosedDelimiter && len(ctx.OpenDelims) > 0:
		return StrategyInsertClosing
	case ctx.TokenText == "" || ctx.Category == CategoryMissingExpression:
		return StrategyInsertMissing
	default:
		return StrategyDefault
	}
}

// mirrorDelimiter maps an opener to its closer.
func mirrorDelimiter(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return open
}

// editDistance is the Levenshtein distance between two strings, used
// for keyword typo detection.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
