package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/stagedit/internal/edit"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateEnv(t)
	state := os.Getenv("XDG_STATE_HOME")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultMarkerStart, cfg.MarkerStart)
	assert.Equal(t, DefaultMarkerEnd, cfg.MarkerEnd)
	assert.Equal(t, edit.DefaultFallbacks, cfg.FallbackEditors)
	assert.Equal(t, filepath.Join(state, "stagedit", "history.db"), cfg.HistoryDB)
	assert.False(t, cfg.Strict)
	assert.False(t, cfg.NoHistory)
}

func TestLoadConfigFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
marker_start: "# begin"
marker_end: "# end"
remove_empty_parent: true
fallback_editors:
  - micro
  - vi
diff: true
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "# begin", cfg.MarkerStart)
	assert.Equal(t, "# end", cfg.MarkerEnd)
	assert.True(t, cfg.RemoveEmptyParent)
	assert.Equal(t, []string{"micro", "vi"}, cfg.FallbackEditors)
	assert.True(t, cfg.Diff)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	isolateEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	isolateEnv(t)
	base, err := os.UserConfigDir()
	require.NoError(t, err)
	dir := filepath.Join(base, "stagedit")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("strict: true\n"), 0600))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
}

func TestLoadConfigPrecedence(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "diff: false\nstrict: false\nhistory_db: /from/file.db\n")
	t.Setenv("STAGEDIT_DIFF", "true")
	t.Setenv("STAGEDIT_HISTORY_DB", "/from/env.db")

	fs := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	fs.Bool("strict", false, "")
	fs.String("history-db", "", "")
	require.NoError(t, fs.Parse([]string{"--strict", "--history-db", "/from/flag.db"}))

	cfg, err := LoadConfig(path, fs)
	require.NoError(t, err)

	assert.True(t, cfg.Diff, "environment should override the config file")
	assert.True(t, cfg.Strict, "flag should override the config file")
	assert.Equal(t, "/from/flag.db", cfg.HistoryDB, "flag should override the environment")
}

func TestLoadConfigUnsetFlagKeepsFileValue(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "no_history: true\n")

	fs := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	fs.Bool("no-history", false, "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := LoadConfig(path, fs)
	require.NoError(t, err)
	assert.True(t, cfg.NoHistory)
}

func TestLoadConfigMarkerPair(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "marker_start: \"# begin\"\nmarker_end: \"\"\n")

	_, err := LoadConfig(path, nil)
	assert.ErrorIs(t, err, edit.ErrMarkerPair)
}
