package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/illarion/stagedit/internal/edit"
)

const (
	DefaultMarkerStart = "### Anything between here and the comment below will become the contents of the file"
	DefaultMarkerEnd   = "### Edits below this comment will be discarded"
	envPrefix          = "STAGEDIT"
	appName            = "stagedit"
)

// Config holds settings read from the config file, the environment and flags,
// in increasing order of precedence.
type Config struct {
	MarkerStart       string   `mapstructure:"marker_start"`
	MarkerEnd         string   `mapstructure:"marker_end"`
	RemoveEmptyParent bool     `mapstructure:"remove_empty_parent"`
	FallbackEditors   []string `mapstructure:"fallback_editors"`
	HistoryDB         string   `mapstructure:"history_db"`
	Diff              bool     `mapstructure:"diff"`
	Strict            bool     `mapstructure:"strict"`
	NoHistory         bool     `mapstructure:"no_history"`
}

// flagKeys maps flag names to config keys
var flagKeys = map[string]string{
	"remove-empty-parent": "remove_empty_parent",
	"diff":                "diff",
	"strict":              "strict",
	"no-history":          "no_history",
	"history-db":          "history_db",
}

// LoadConfig reads the config file at path, or the default location when path
// is empty, and overlays STAGEDIT_* variables and flags set in fs.
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("marker_start", DefaultMarkerStart)
	v.SetDefault("marker_end", DefaultMarkerEnd)
	v.SetDefault("remove_empty_parent", false)
	v.SetDefault("fallback_editors", edit.DefaultFallbacks)
	v.SetDefault("history_db", defaultHistoryDB())
	v.SetDefault("diff", false)
	v.SetDefault("strict", false)
	v.SetDefault("no_history", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if (cfg.MarkerStart == "") != (cfg.MarkerEnd == "") {
		return nil, edit.ErrMarkerPair
	}
	return cfg, nil
}

func defaultHistoryDB() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName, "history.db")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", appName, "history.db")
	}
	return filepath.Join(os.TempDir(), appName, "history.db")
}
