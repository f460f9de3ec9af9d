package edit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// EnvEditorOverride is the tool-specific editor variable. It takes precedence
// over $EDITOR, which takes precedence over $VISUAL.
const EnvEditorOverride = "STAGEDIT_EDITOR"

// editorWaitDelay bounds how long Run waits for the editor's stdio after the
// context is cancelled and SIGTERM is sent.
const editorWaitDelay = 5 * time.Second

// EditorVars lists the variables consulted by Resolve, in priority order.
var EditorVars = []string{EnvEditorOverride, "EDITOR", "VISUAL"}

// DefaultFallbacks are tried in order when none of EditorVars is set.
var DefaultFallbacks = []string{"editor", "nano", "vim", "vi"}

// Launcher resolves and runs the external editor.
type Launcher struct {
	Getenv    func(string) string
	LookPath  func(string) (string, error)
	Fallbacks []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLauncher returns a Launcher bound to the process environment and stdio.
func NewLauncher() *Launcher {
	return &Launcher{
		Getenv:    os.Getenv,
		LookPath:  exec.LookPath,
		Fallbacks: DefaultFallbacks,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Resolve returns the editor commands to try. When an override variable is
// set, it is the only candidate and override is true.
func (l *Launcher) Resolve() (candidates [][]string, override bool) {
	for _, name := range EditorVars {
		value := l.Getenv(name)
		if value == "" {
			continue
		}
		// Whitespace splitting only: no quoting, globbing or expansion
		if fields := strings.Fields(value); len(fields) > 0 {
			return [][]string{fields}, true
		}
	}

	for _, name := range l.Fallbacks {
		candidates = append(candidates, []string{name})
	}
	return candidates, false
}

// Args builds the editor's trailing arguments. A +LINE argument is added only
// for a single request, since with several files it would be ambiguous.
func Args(requests []Request) []string {
	var args []string
	if len(requests) == 1 && requests[0].Line > 1 {
		args = append(args, "+"+strconv.Itoa(requests[0].Line))
	}
	for _, r := range requests {
		args = append(args, r.StagingPath)
	}
	return args
}

// Run launches the editor over the staging files of requests and waits for it
// to exit. A non-zero exit status is returned as exitCode, not as an error.
func (l *Launcher) Run(ctx context.Context, requests []Request) (exitCode int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	candidates, override := l.Resolve()
	args := Args(requests)

	for _, candidate := range candidates {
		path, err := l.LookPath(candidate[0])
		if err != nil {
			if override {
				return 0, fmt.Errorf("%w '%s': %w", ErrEditorExec, candidate[0], err)
			}
			// Keep trying the remaining well-known editors
			if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return 0, fmt.Errorf("%w '%s': %w", ErrEditorExec, candidate[0], err)
		}

		argv := append(candidate[1:len(candidate):len(candidate)], args...)
		return l.exec(ctx, path, argv)
	}

	return 0, ErrNoEditor
}

func (l *Launcher) exec(ctx context.Context, path string, argv []string) (int, error) {
	cmd := exec.CommandContext(ctx, path, argv...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	cmd.SysProcAttr = editorSysProcAttr()
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = editorWaitDelay

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w '%s': %w", ErrEditorExec, path, err)
	}
	editorsRunning.Add(1)
	err := cmd.Wait()
	editorsRunning.Add(-1)
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return exitErr.ExitCode(), ctxErr
		}
		return exitErr.ExitCode(), nil
	}
	return 0, fmt.Errorf("%w '%s': %w", ErrEditorExec, path, err)
}
