package edit

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testMarkerStart = "### Anything between here and the comment below will become the contents of the file"
	testMarkerEnd   = "### Edits below this comment will be discarded"
)

// writeEditor writes a shell script acting as the editor. The script sees
// the editor arguments as "$@" and the last argument as $last.
func writeEditor(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script editors are not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "fake-editor")
	script := "#!/bin/sh\nfor f; do last=$f; done\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func envLauncher(env map[string]string) *Launcher {
	l := NewLauncher()
	l.Getenv = func(key string) string { return env[key] }
	l.Stdin = nil
	l.Stdout = io.Discard
	l.Stderr = io.Discard
	return l
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
