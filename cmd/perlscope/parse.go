package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/perlscope/perlscope/internal/ast"
	"github.com/perlscope/perlscope/internal/parser"
	"github.com/perlscope/perlscope/internal/position"
	"github.com/perlscope/perlscope/internal/recovery"
)

func newParseCmd(opts *rootOptions) *cobra.Command {
	var dumpTree bool
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a file and print a tree summary with diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runParse(args[0], cfg, dumpTree)
		},
	}
	cmd.Flags().BoolVar(&dumpTree, "tree", false, "print the full node tree")
	return cmd
}

func runParse(path string, cfg recovery.Config, dumpTree bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p := parser.New(string(src), cfg)
	prog, err := p.Run()
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	index := position.NewLineIndex(string(src))
	log.Info("parsed", "file", path, "statements", len(prog.Statements),
		"nodes", ast.Count(prog), "diagnostics", len(p.Diagnostics()))
	reportDiagnostics(index, p.Diagnostics())
	for _, s := range p.Suggestions() {
		log.Debug("suggestion", "message", s.Message, "confidence", fmt.Sprintf("%.2f", s.Confidence))
	}

	if dumpTree {
		printTree(prog, 0)
	}
	return nil
}

func printTree(n ast.Node, depth int) {
	fmt.Printf("%*s%s %v\n", depth*2, "", n.Kind(), n.GetSpan())
	for _, c := range ast.Children(n) {
		printTree(c, depth+1)
	}
}

// reportDiagnostics logs each diagnostic with its line:column location.
func reportDiagnostics(index *position.LineIndex, diags []recovery.Diagnostic) {
	for _, d := range diags {
		pos := index.PositionFor(d.Span.Start)
		switch d.Severity {
		case recovery.SeverityError:
			log.Error(d.Message, "line", pos.Line, "col", pos.Column, "category", d.Category)
		case recovery.SeverityWarning:
			log.Warn(d.Message, "line", pos.Line, "col", pos.Column, "category", d.Category)
		default:
			log.Info(d.Message, "line", pos.Line, "col", pos.Column, "category", d.Category)
		}
	}
}
