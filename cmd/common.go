package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/illarion/stagedit/internal/edit"
	"github.com/illarion/stagedit/internal/security"
	"github.com/illarion/stagedit/internal/storage"
)

var (
	errorPrefix   = color.New(color.FgRed, color.Bold).Sprint("error:")
	warningPrefix = color.New(color.FgYellow, color.Bold).Sprint("warning:")
)

// Errorf prints an error line to stderr
func Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorPrefix, fmt.Sprintf(format, args...))
}

// Warnf prints a warning line to stderr
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", warningPrefix, fmt.Sprintf(format, args...))
}

// NewLogger returns the logger shared by the edit pipeline.
// verbose enables debug output, quiet limits output to warnings.
func NewLogger(w io.Writer, verbose, quiet bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})

	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	case quiet:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// HandleError prints err with a hint where one helps, then exits
func HandleError(err error) {
	var exitErr *edit.EditorExitError

	switch {
	case errors.Is(err, edit.ErrNoEditor):
		Errorf("no editor available")
		fmt.Fprintf(os.Stderr, "Set $%s, $EDITOR or $VISUAL to the editor you want to use\n", edit.EnvEditorOverride)
	case errors.Is(err, edit.ErrEditorExec):
		Errorf("%s", err)
		fmt.Fprintf(os.Stderr, "Check $%s, $EDITOR and $VISUAL\n", edit.EnvEditorOverride)
	case errors.As(err, &exitErr):
		Errorf("%s, no files were installed", err)
	case errors.Is(err, edit.ErrNoFiles):
		Errorf("no files to edit")
		fmt.Fprintf(os.Stderr, "Run 'stagedit help edit' for usage\n")
	case errors.Is(err, security.ErrPathEscapes):
		Errorf("%s", err)
		fmt.Fprintf(os.Stderr, "Paths must stay inside the --root directory\n")
	case errors.Is(err, storage.ErrNotRecorded):
		Errorf("%s", err)
		fmt.Fprintf(os.Stderr, "Use 'stagedit history' to see recorded installs\n")
	default:
		Errorf("%s", err)
	}
	os.Exit(1)
}
