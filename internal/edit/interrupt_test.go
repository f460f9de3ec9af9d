//go:build unix

package edit

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyInterrupt_EditorOwnsCtrlC(t *testing.T) {
	ctx, stop := NotifyInterrupt(t.Context())
	defer stop()

	// The editor interrupts its parent, as a terminal Ctrl-C would reach
	// the whole foreground process group.
	editor := writeEditor(t, `kill -INT $PPID
sleep 0.3
printf 'edited\n' > "$last"`)
	staging := filepath.Join(t.TempDir(), "staging")

	l := envLauncher(map[string]string{EnvEditorOverride: editor})
	code, err := l.Run(ctx, []Request{{StagingPath: staging}})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.NoError(t, ctx.Err(), "interrupt during the editor must not cancel the session")
	assert.Equal(t, "edited\n", readFile(t, staging))

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("interrupt outside the editor should cancel the context")
	}
}
