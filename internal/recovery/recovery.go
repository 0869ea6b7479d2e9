// Package recovery provides the resource monitor and the suggestion
// engine the parser leans on when input is broken. Structural problems
// never abort a parse; only resource limits do, and those surface as
// typed LimitError values.
package recovery

import (
	"fmt"
	"time"

	"github.com/perlscope/perlscope/internal/position"
)

// Config bounds one parse. The zero value disables every limit; use
// DefaultConfig for production settings.
type Config struct {
	MaxParseTime     time.Duration `yaml:"max_parse_time"`
	MaxASTNodes      int           `yaml:"max_ast_nodes"`
	MaxMemoryBytes   int64         `yaml:"max_memory_bytes"`
	EnableHeuristics bool          `yaml:"enable_heuristics"`
	EnableAdaptive   bool          `yaml:"enable_adaptive"`
}

// DefaultConfig returns the production limits: 5s wall clock, 100k AST
// nodes, 50 MiB estimated tree memory, all recovery features on.
func DefaultConfig() Config {
	return Config{
		MaxParseTime:     5 * time.Second,
		MaxASTNodes:      100_000,
		MaxMemoryBytes:   50 * 1024 * 1024,
		EnableHeuristics: true,
		EnableAdaptive:   true,
	}
}

// LimitKind says which resource bound was breached.
type LimitKind int

const (
	// LimitTime is a wall-clock breach, reported as a recursion limit
	// because runaway recursion is what usually burns the budget.
	LimitTime LimitKind = iota
	// LimitNodes is an AST node count breach.
	LimitNodes
	// LimitMemory is an estimated-memory breach.
	LimitMemory
)

// LimitError aborts a parse. It is the only error class that does; all
// structural errors become ErrorNode substitutions instead.
type LimitError struct {
	Kind     LimitKind
	Depth    int
	MaxDepth int
	Elapsed  time.Duration
}

func (e *LimitError) Error() string {
	switch e.Kind {
	case LimitTime:
		return fmt.Sprintf("recursion limit: parse exceeded time budget after %v", e.Elapsed)
	case LimitNodes:
		return fmt.Sprintf("nesting too deep: %d nodes exceeds limit %d", e.Depth, e.MaxDepth)
	default:
		return fmt.Sprintf("nesting too deep: estimated memory %d exceeds limit %d", e.Depth, e.MaxDepth)
	}
}

// Severity grades a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic is one finding attached to a parse result.
type Diagnostic struct {
	Span     position.Span
	Severity Severity
	Category string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s]: %s", d.Severity, d.Category, d.Message)
}

// Monitor tracks resource consumption during one parse. Counters only
// grow; a breach, once reported, is reported by every later call.
type Monitor struct {
	cfg     Config
	start   time.Time
	nodes   int
	bytes   int64
	breach  *LimitError
	// Checking the clock on every production is measurable overhead;
	// sample it every checkStride calls instead.
	calls int
}

const checkStride = 64

// estimated per-node memory, pointer-heavy structs plus slice headers.
const nodeMemEstimate = 192

// NewMonitor starts the clock.
func NewMonitor(cfg Config) *Monitor {
	return &Monitor{cfg: cfg, start: time.Now()}
}

// AddNodes records n newly allocated AST nodes.
func (m *Monitor) AddNodes(n int) {
	m.nodes += n
	m.bytes += int64(n) * nodeMemEstimate
}

// Nodes returns the node counter.
func (m *Monitor) Nodes() int { return m.nodes }

// Elapsed returns time since the monitor started.
func (m *Monitor) Elapsed() time.Duration { return time.Since(m.start) }

// ShouldContinue is called at production boundaries. A nil return means
// keep parsing; a *LimitError means abandon the parse and surface the
// error. The decision is sticky.
func (m *Monitor) ShouldContinue() error {
	if m.breach != nil {
		return m.breach
	}
	if m.cfg.MaxASTNodes > 0 && m.nodes > m.cfg.MaxASTNodes {
		m.breach = &LimitError{Kind: LimitNodes, Depth: m.nodes, MaxDepth: m.cfg.MaxASTNodes}
		return m.breach
	}
	if m.cfg.MaxMemoryBytes > 0 && m.bytes > m.cfg.MaxMemoryBytes {
		m.breach = &LimitError{Kind: LimitMemory, Depth: int(m.bytes), MaxDepth: int(m.cfg.MaxMemoryBytes)}
		return m.breach
	}
	m.calls++
	if m.cfg.MaxParseTime > 0 && m.calls%checkStride == 0 {
		if elapsed := time.Since(m.start); elapsed > m.cfg.MaxParseTime {
			m.breach = &LimitError{Kind: LimitTime, Elapsed: elapsed}
			return m.breach
		}
	}
	return nil
}
