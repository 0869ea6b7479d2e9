// Command perlscope parses Perl source files and reports syntax
// diagnostics. It exposes three subcommands: parse (tree summary),
// check (lint-style exit status), and watch (incremental reparse loop).
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
