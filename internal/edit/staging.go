package edit

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	stagingPrefix    = ".#"
	stagingRandBytes = 8
	maxNameLen       = 255
	contentStartLine = 4 // header, start marker, blank line, content
	whitespace       = " \t\n\r"
)

// Stage creates a staging file for every request that does not have one yet.
// On error, files staged so far are left for Close.
func (s *Session) Stage(ctx context.Context) error {
	for _, r := range s.requests {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.StagingPath != "" {
			continue
		}
		if err := s.stage(r); err != nil {
			return err
		}
		s.log.Debugf("Staged %s as %s", r.Path, r.StagingPath)
	}
	return nil
}

func (s *Session) stage(r *Request) error {
	staging, err := stagingPath(r.Path)
	if err != nil {
		return fmt.Errorf("failed to determine temporary filename for %s: %w", r.Path, err)
	}

	if err := s.parents.MkdirParents(r.Path, DirPerm); err != nil {
		return fmt.Errorf("failed to create parent directories for %s: %w", r.Path, err)
	}

	line := 1
	switch {
	case r.ReferencePaths != nil:
		content, err := s.annotatedContent(r)
		if err != nil {
			return err
		}
		if err := s.createStaging(r, staging, bytes.NewReader(content)); err != nil {
			return err
		}
		line = contentStartLine
	case r.OriginalPath != "":
		if err := s.copyOriginal(r, staging); err != nil {
			return err
		}
	default:
		if err := s.createStaging(r, staging, nil); err != nil {
			return err
		}
	}

	r.StagingPath = staging
	r.Line = line
	return nil
}

// stagingPath returns a fresh path next to target so the final rename stays
// on one filesystem.
func stagingPath(target string) (string, error) {
	b := make([]byte, stagingRandBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	dir, base := filepath.Split(target)
	base = truncateName(base, maxNameLen-len(stagingPrefix)-2*stagingRandBytes)
	return filepath.Join(dir, stagingPrefix+base+hex.EncodeToString(b)), nil
}

// truncateName cuts name to at most max bytes without splitting a UTF-8
// sequence.
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}

// copyOriginal seeds the staging file from the request's original. A missing
// original produces an empty staging file.
func (s *Session) copyOriginal(r *Request, staging string) error {
	src, err := os.Open(r.OriginalPath)
	if errors.Is(err, fs.ErrNotExist) {
		return s.createStaging(r, staging, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to open original file %s: %w", r.OriginalPath, err)
	}
	defer src.Close()

	return s.createStaging(r, staging, src)
}

// createStaging creates the staging file with FilePerm and fills it from src.
// Only the creation itself runs inside the label scope.
func (s *Session) createStaging(r *Request, staging string, src io.Reader) (err error) {
	f, err := s.createLabeled(r.Path, staging)
	if err != nil {
		return fmt.Errorf("failed to create temporary file %s: %w", staging, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to create temporary file %s: %w", staging, cerr)
		}
		if err != nil {
			os.Remove(staging)
		}
	}()

	// Creation mode is subject to umask
	if err := f.Chmod(FilePerm); err != nil {
		return fmt.Errorf("failed to change mode of temporary file %s: %w", staging, err)
	}

	if src != nil {
		if _, err := io.Copy(f, src); err != nil {
			return fmt.Errorf("failed to write temporary file for %s: %w", r.Path, err)
		}
	}
	return nil
}

func (s *Session) createLabeled(target, staging string) (*os.File, error) {
	if err := s.labeler.Prepare(target, FilePerm); err != nil {
		return nil, err
	}
	defer s.labeler.Clear()

	return os.OpenFile(staging, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerm)
}

// annotatedContent renders the marker layout: a header naming the target, the
// target's current content between the markers, then each reference file as
// commented context.
func (s *Session) annotatedContent(r *Request) ([]byte, error) {
	current, err := os.ReadFile(r.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read target file %s: %w", r.Path, err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "### Editing %s\n%s\n\n", r.Path, s.markerStart)
	buf.Write(current)
	if !bytes.HasSuffix(current, []byte("\n")) {
		buf.WriteByte('\n')
	}
	fmt.Fprintf(&buf, "\n%s\n", s.markerEnd)

	for _, ref := range r.ReferencePaths {
		// The target itself is already shown between the markers
		if filepath.Clean(ref) == r.Path {
			continue
		}

		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to read reference file %s: %w", ref, err)
		}

		fmt.Fprintf(&buf, "\n\n### %s", ref)
		if len(data) > 0 {
			commented := strings.ReplaceAll(strings.Trim(string(data), whitespace), "\n", "\n# ")
			fmt.Fprintf(&buf, "\n# %s", commented)
		}
	}

	return buf.Bytes(), nil
}
