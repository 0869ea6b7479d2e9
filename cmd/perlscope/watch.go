package main

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/perlscope/perlscope/internal/incremental"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Reparse a file incrementally as it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args[0], opts)
		},
	}
}

func runWatch(path string, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	state, err := incremental.NewState(string(src), cfg)
	if err != nil {
		return err
	}
	log.Info("watching", "file", path, "statements", len(state.Program().Statements))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Watch the directory: editors replace files on save, which drops
	// a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			evAbs, _ := filepath.Abs(ev.Name)
			if evAbs != abs || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			if err := reparseOnChange(state, path); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		}
	}
}

func reparseOnChange(state *incremental.State, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		// Transient disappearance during atomic saves.
		log.Debug("read failed, skipping", "err", err)
		return nil
	}
	newSrc := string(raw)
	old := state.Source()
	if newSrc == old {
		return nil
	}
	edit := diffToEdit(old, newSrc)
	res, err := state.ApplyEdits([]incremental.Edit{edit})
	if err != nil {
		return err
	}
	saved := len(newSrc) - res.ReparsedBytes
	log.Info("reparsed", "file", path,
		"bytes", res.ReparsedBytes, "saved", saved, "full", res.Full,
		"diagnostics", len(res.Diagnostics))
	reportDiagnostics(state.LineIndex(), res.Diagnostics)
	return nil
}

// diffToEdit reduces an old/new text pair to the single replacing edit
// between their common prefix and suffix.
func diffToEdit(old, new string) incremental.Edit {
	p := 0
	for p < len(old) && p < len(new) && old[p] == new[p] {
		p++
	}
	so, sn := len(old), len(new)
	for so > p && sn > p && old[so-1] == new[sn-1] {
		so--
		sn--
	}
	return incremental.Edit{Start: p, End: so, NewText: new[p:sn]}
}
