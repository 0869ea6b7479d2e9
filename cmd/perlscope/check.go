package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/perlscope/perlscope/internal/parser"
	"github.com/perlscope/perlscope/internal/position"
	"github.com/perlscope/perlscope/internal/recovery"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Report diagnostics; exit nonzero when any file has errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			failed := 0
			for _, path := range args {
				errors, err := runCheck(path, cfg)
				if err != nil {
					return err
				}
				if errors > 0 {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d file(s) with errors", failed)
			}
			return nil
		},
	}
}

// runCheck parses one file and returns its error-severity count.
func runCheck(path string, cfg recovery.Config) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	p := parser.New(string(src), cfg)
	if _, err := p.Run(); err != nil {
		return 0, fmt.Errorf("check %s: %w", path, err)
	}
	index := position.NewLineIndex(string(src))
	reportDiagnostics(index, p.Diagnostics())

	errors := 0
	for _, d := range p.Diagnostics() {
		if d.Severity == recovery.SeverityError {
			errors++
		}
	}
	if errors == 0 {
		log.Info("clean", "file", path)
	} else {
		log.Error("errors found", "file", path, "count", errors)
	}
	return errors, nil
}
