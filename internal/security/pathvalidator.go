package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPathEscapes = errors.New("path escapes root directory")
	ErrEmptyPath   = errors.New("empty path not allowed")
)

// PathValidator confines edited files to a root directory using the os.Root
// API. Paths given by the user are interpreted relative to the root, so
// "/etc/app.conf" under root "/mnt" resolves to "/mnt/etc/app.conf".
type PathValidator struct {
	root     *os.Root
	rootPath string
}

// New creates a PathValidator for the directory at rootPath
func New(rootPath string) (*PathValidator, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open root directory: %w", err)
	}

	return &PathValidator{
		root:     root,
		rootPath: absPath,
	}, nil
}

// Close releases the root directory handle
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// RootPath returns the absolute root directory
func (pv *PathValidator) RootPath() string {
	return pv.rootPath
}

// Normalize validates a user path and returns it relative to the root.
// Absolute paths are taken as relative to the root. It rejects:
// - Empty paths
// - Paths that escape the root (using ..)
// - The root itself
func (pv *PathValidator) Normalize(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	local := filepath.Clean(userPath)
	if filepath.IsAbs(local) {
		local = strings.TrimLeft(local[len(filepath.VolumeName(local)):], `/\`)
	}

	if local == "" || local == "." || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	return local, nil
}

// Resolve maps a user path to the absolute host path inside the root.
func (pv *PathValidator) Resolve(userPath string) (string, error) {
	local, err := pv.Normalize(userPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(pv.rootPath, local), nil
}

// relative converts an absolute host path back into a root-relative one.
func (pv *PathValidator) relative(hostPath string) (string, error) {
	rel, err := filepath.Rel(pv.rootPath, hostPath)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, hostPath)
	}
	return rel, nil
}

// MkdirParents creates the parent directories of hostPath through os.Root,
// so symlinks inside the tree cannot redirect creation outside of it.
func (pv *PathValidator) MkdirParents(hostPath string, perm os.FileMode) error {
	rel, err := pv.relative(hostPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(rel)
	if dir == "." {
		return nil
	}
	return pv.root.MkdirAll(dir, perm)
}

// ReadFileInRoot reads a file given as an absolute host path inside the root.
func (pv *PathValidator) ReadFileInRoot(hostPath string) ([]byte, error) {
	rel, err := pv.relative(hostPath)
	if err != nil {
		return nil, err
	}
	return pv.root.ReadFile(rel)
}
