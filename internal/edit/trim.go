package edit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// TrimResult classifies a staging file after the editor returned
type TrimResult int

const (
	TrimEmpty     TrimResult = iota // Nothing left to install
	TrimUnchanged                   // Already normalized, file untouched
	TrimChanged                     // Rewritten with the trimmed content
)

func (t TrimResult) String() string {
	switch t {
	case TrimEmpty:
		return "empty"
	case TrimUnchanged:
		return "unchanged"
	case TrimChanged:
		return "changed"
	default:
		return fmt.Sprintf("TrimResult(%d)", int(t))
	}
}

// Trim reduces the file at path to the content between markerStart and
// markerEnd, strips surrounding whitespace and ends it with a single newline.
// Empty markers keep the whole file. A missing marker is tolerated: without a
// start marker the content starts at the top, without an end marker it runs
// to the end of the file.
func Trim(path, markerStart, markerEnd string) (TrimResult, error) {
	old, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// The editor removed the staging file
		return TrimEmpty, nil
	}
	if err != nil {
		return TrimEmpty, fmt.Errorf("failed to read temporary file %s: %w", path, err)
	}

	content := extractBetween(string(old), markerStart, markerEnd)
	content = strings.Trim(content, whitespace)
	if content == "" {
		return TrimEmpty, nil
	}

	trimmed := content + "\n"
	if trimmed == string(old) {
		return TrimUnchanged, nil
	}

	if err := os.WriteFile(path, []byte(trimmed), FilePerm); err != nil {
		return TrimEmpty, fmt.Errorf("failed to modify temporary file %s: %w", path, err)
	}
	return TrimChanged, nil
}

func extractBetween(s, start, end string) string {
	if start == "" || end == "" {
		return s
	}
	if i := strings.Index(s, start); i >= 0 {
		s = s[i+len(start):]
	}
	if i := strings.Index(s, end); i >= 0 {
		s = s[:i]
	}
	return s
}
