package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/illarion/stagedit/internal/edit"
	"github.com/illarion/stagedit/internal/report"
	"github.com/illarion/stagedit/internal/security"
	"github.com/illarion/stagedit/internal/storage"
)

// EditOptions carries the edit command's arguments
type EditOptions struct {
	Files      []string
	Original   string
	References []string
	Markers    bool
	Root       string
}

// snapshot is a target's content before the session ran
type snapshot struct {
	data    []byte
	existed bool
}

// Edit opens the given files in the editor and installs the results
func Edit(ctx context.Context, opts EditOptions, cfg *Config, log *logrus.Logger) {
	if len(opts.Files) == 0 {
		HandleError(edit.ErrNoFiles)
	}
	if opts.Original != "" && len(opts.Files) > 1 {
		Errorf("--original can only be used with a single file")
		os.Exit(1)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		Warnf("standard input is not a terminal, the editor may not work as expected")
	}

	resolve := filepath.Abs
	read := os.ReadFile
	var parents edit.ParentMaker
	if opts.Root != "" {
		validator, err := security.New(opts.Root)
		if err != nil {
			HandleError(err)
		}
		defer validator.Close()
		log.Debugf("Confining targets to %s", validator.RootPath())
		resolve = validator.Resolve
		read = validator.ReadFileInRoot
		parents = validator
	}

	targets, err := resolveAll(resolve, opts.Files)
	if err != nil {
		HandleError(err)
	}
	original := ""
	if opts.Original != "" {
		if original, err = filepath.Abs(opts.Original); err != nil {
			HandleError(err)
		}
	}
	references, err := resolveAll(filepath.Abs, opts.References)
	if err != nil {
		HandleError(err)
	}

	useMarkers := opts.Markers || len(opts.References) > 0
	if useMarkers && references == nil {
		references = []string{}
	}

	sessionOpts := []edit.Option{
		edit.WithRemoveEmptyParent(cfg.RemoveEmptyParent),
		edit.WithStrictExit(cfg.Strict),
		edit.WithLogger(log),
		edit.WithLauncher(newLauncher(cfg)),
	}
	if useMarkers {
		sessionOpts = append(sessionOpts, edit.WithMarkers(cfg.MarkerStart, cfg.MarkerEnd))
	}
	if parents != nil {
		sessionOpts = append(sessionOpts, edit.WithParentMaker(parents))
	}

	before, err := snapshotTargets(read, targets)
	if err != nil {
		HandleError(err)
	}

	results, runErr := runSession(ctx, sessionOpts, targets, original, references)

	installed := 0
	for _, r := range results {
		if r.Installed {
			installed++
		}
	}
	if installed > 0 {
		recordInstalls(cfg, results, before)
		if cfg.Diff {
			printDiffs(results, before)
		}
	}

	if runErr != nil {
		HandleError(runErr)
	}

	fmt.Printf("\n")
	for _, r := range results {
		if r.Installed {
			fmt.Printf("  %s %s\n", color.GreenString("installed"), r.Path)
		} else {
			fmt.Printf("  %s %s (%s)\n", color.YellowString("skipped  "), r.Path, r.Trim)
		}
	}
	if installed > 0 {
		fmt.Printf("installed: %d files\n", installed)
	}
	if skipped := len(results) - installed; skipped > 0 {
		fmt.Printf("unchanged: %d files (nothing to install)\n", skipped)
	}
}

// runSession owns the session lifetime so Close runs before any exit.
func runSession(ctx context.Context, opts []edit.Option, targets []string, original string, references []string) ([]edit.Result, error) {
	session, err := edit.New(opts...)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	for _, target := range targets {
		if _, err := session.Add(target, original, references); err != nil {
			return nil, err
		}
	}

	return session.Run(ctx)
}

// snapshotTargets reads each target's current content with read. Missing
// targets are recorded as not existing.
func snapshotTargets(read func(string) ([]byte, error), targets []string) (map[string]snapshot, error) {
	before := make(map[string]snapshot, len(targets))
	for _, target := range targets {
		data, err := read(target)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", target, err)
		}
		before[target] = snapshot{data: data, existed: err == nil}
	}
	return before, nil
}

func newLauncher(cfg *Config) *edit.Launcher {
	l := edit.NewLauncher()
	if len(cfg.FallbackEditors) > 0 {
		l.Fallbacks = cfg.FallbackEditors
	}
	return l
}

func resolveAll(resolve func(string) (string, error), paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		abs, err := resolve(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", p, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// recordInstalls writes installed files to the journal. Failures are
// reported but do not undo the installs.
func recordInstalls(cfg *Config, results []edit.Result, before map[string]snapshot) {
	if cfg.NoHistory {
		return
	}

	db, err := openHistory(cfg.HistoryDB, true)
	if err != nil {
		Warnf("install history not updated: %v", err)
		return
	}
	defer db.Close()

	for _, r := range results {
		if !r.Installed {
			continue
		}

		data, err := os.ReadFile(r.Path)
		if err != nil {
			Warnf("install history not updated for %s: %v", r.Path, err)
			continue
		}
		info, err := os.Stat(r.Path)
		if err != nil {
			Warnf("install history not updated for %s: %v", r.Path, err)
			continue
		}

		prev := before[r.Path]
		entry := storage.NewEntry(r.Path, data, info.Mode(), !prev.existed)
		if err := db.Record(&entry, prev.data); err != nil {
			Warnf("install history not updated for %s: %v", r.Path, err)
		}
	}
}

func printDiffs(results []edit.Result, before map[string]snapshot) {
	for _, r := range results {
		if !r.Installed {
			continue
		}
		after, err := os.ReadFile(r.Path)
		if err != nil {
			Warnf("cannot read %s: %v", r.Path, err)
			continue
		}
		fmt.Print(report.GenerateUnifiedDiff(r.Path, before[r.Path].data, after))
	}
}

// openHistory opens the journal, creating it when create is set
func openHistory(path string, create bool) (*storage.Storage, error) {
	if !create {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}

	if !create {
		initialized, err := db.IsInitialized()
		if err == nil && !initialized {
			err = fmt.Errorf("%s is not an install journal: %w", path, fs.ErrNotExist)
		}
		if err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
