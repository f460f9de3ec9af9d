package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/stagedit/internal/report"
	"github.com/illarion/stagedit/internal/storage"
)

// History lists recorded installs, optionally for a single file
func History(cfg *Config, file string) {
	path := ""
	if file != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			HandleError(err)
		}
		path = abs
	}

	db, err := openHistory(cfg.HistoryDB, false)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println("No installs recorded yet")
		return
	}
	if err != nil {
		HandleError(err)
	}
	defer db.Close()

	if err := writeHistory(os.Stdout, db, path); err != nil {
		HandleError(err)
	}
}

// writeHistory prints the journal entries for path, or all entries when
// path is empty, under a header with the time of the last install.
func writeHistory(w io.Writer, db *storage.Storage, path string) error {
	entries, err := db.History(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No installs recorded yet")
		return nil
	}

	if modified, err := db.GetModified(); err == nil {
		fmt.Fprintf(w, "Last install at %s\n\n", modified.Local().Format(time.RFC3339))
	}

	for _, e := range entries {
		action := "modified"
		if e.Created {
			action = "created"
		}
		fmt.Fprintf(w, "%5d  %s  %-8s  %s (%d bytes, %s)\n",
			e.Seq, e.InstalledAt.Local().Format(time.RFC3339), action, e.Path, e.Size, e.Hash[:12])
	}
	return nil
}

// Diff shows what each file's latest install changed and whether the file
// was modified since
func Diff(cfg *Config, files []string) {
	if len(files) == 0 {
		Errorf("no files given")
		fmt.Fprintf(os.Stderr, "Usage: stagedit diff <file> [file...]\n")
		os.Exit(1)
	}

	db, err := openHistory(cfg.HistoryDB, false)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println("No installs recorded yet")
		return
	}
	if err != nil {
		HandleError(err)
	}
	defer db.Close()

	for _, file := range files {
		path, err := filepath.Abs(file)
		if err != nil {
			HandleError(err)
		}

		latest, err := db.Latest(path)
		if err != nil {
			Warnf("%v", err)
			continue
		}

		current, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			Warnf("cannot read %s: %v", path, err)
			continue
		}
		if storage.HashContent(current) != latest.Hash {
			Warnf("%s changed since it was installed on %s", path, latest.InstalledAt.Local().Format(time.RFC3339))
		}

		previous, _, err := db.Previous(path)
		if err != nil {
			Warnf("cannot load previous content of %s: %v", path, err)
			continue
		}

		out := report.GenerateUnifiedDiff(path, previous, current)
		if out == "" {
			fmt.Printf("%s: no changes\n", path)
			continue
		}
		inserted, deleted := report.Summary(previous, current)
		fmt.Print(out)
		fmt.Printf("%s: %d insertions(+), %d deletions(-)\n", path, inserted, deleted)
	}
}
