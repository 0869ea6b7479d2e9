package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/perlscope/perlscope/internal/recovery"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "perlscope",
		Short:         "Perl syntax analysis with resource-bounded error recovery",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a perlscope.yaml config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newParseCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	return cmd
}

// fileConfig is the YAML override shape. Every field is optional;
// unset fields keep their defaults.
type fileConfig struct {
	Recovery struct {
		MaxParseTime     string `yaml:"max_parse_time"`
		MaxASTNodes      *int   `yaml:"max_ast_nodes"`
		MaxMemoryBytes   *int64 `yaml:"max_memory_bytes"`
		EnableHeuristics *bool  `yaml:"enable_heuristics"`
		EnableAdaptive   *bool  `yaml:"enable_adaptive"`
	} `yaml:"recovery"`
}

// loadConfig returns the recovery configuration, layering the optional
// YAML file over the defaults.
func loadConfig(opts *rootOptions) (recovery.Config, error) {
	cfg := recovery.DefaultConfig()
	if opts.configPath == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(opts.configPath)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", opts.configPath, err)
	}
	if fc.Recovery.MaxParseTime != "" {
		d, err := time.ParseDuration(fc.Recovery.MaxParseTime)
		if err != nil {
			return cfg, fmt.Errorf("config max_parse_time: %w", err)
		}
		cfg.MaxParseTime = d
	}
	if fc.Recovery.MaxASTNodes != nil {
		cfg.MaxASTNodes = *fc.Recovery.MaxASTNodes
	}
	if fc.Recovery.MaxMemoryBytes != nil {
		cfg.MaxMemoryBytes = *fc.Recovery.MaxMemoryBytes
	}
	if fc.Recovery.EnableHeuristics != nil {
		cfg.EnableHeuristics = *fc.Recovery.EnableHeuristics
	}
	if fc.Recovery.EnableAdaptive != nil {
		cfg.EnableAdaptive = *fc.Recovery.EnableAdaptive
	}
	return cfg, nil
}
