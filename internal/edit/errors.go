package edit

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPath       = errors.New("empty path not allowed")
	ErrRelativePath    = errors.New("target path must be absolute")
	ErrMarkerPair      = errors.New("edit markers must be given as a start and end pair")
	ErrMarkersRequired = errors.New("reference paths require edit markers")
	ErrNoFiles         = errors.New("got no files to edit")
	ErrNoEditor        = errors.New("cannot edit files, no editor available; please set either $" + EnvEditorOverride + ", $EDITOR or $VISUAL")
	ErrEditorExec      = errors.New("failed to execute editor")
)

// EditorExitError reports an editor that exited with a non-zero status.
type EditorExitError struct {
	Code int
}

func (e *EditorExitError) Error() string {
	return fmt.Sprintf("editor exited with code %d", e.Code)
}
