package edit

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
)

const (
	FilePerm = 0644 // Staging and newly created target files
	DirPerm  = 0755 // Parent directories created for targets
)

// Request is one file to edit
type Request struct {
	Path         string // Absolute target path
	OriginalPath string // Seeds the staging file when set

	// ReferencePaths selects the marker layout when non-nil. Each entry is
	// appended to the staging file as commented context.
	ReferencePaths []string

	StagingPath string // Transient working copy, empty until staged
	Line        int    // 1-based line the editor opens at
}

// Labeler assigns a security context to files created for a target.
// Prepare is called right before a staging file is created and Clear right
// after, on every path.
type Labeler interface {
	Prepare(path string, mode os.FileMode) error
	Clear()
}

// ParentMaker ensures the parent directories of a path exist.
type ParentMaker interface {
	MkdirParents(path string, perm os.FileMode) error
}

type nopLabeler struct{}

func (nopLabeler) Prepare(string, os.FileMode) error { return nil }
func (nopLabeler) Clear()                            {}

type osParentMaker struct{}

func (osParentMaker) MkdirParents(path string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(path), perm)
}

// Session is an ordered batch of edit requests sharing one editor invocation.
// A Session is not safe for concurrent use.
type Session struct {
	requests []*Request

	markerStart       string
	markerEnd         string
	removeEmptyParent bool
	strictExit        bool

	labeler  Labeler
	parents  ParentMaker
	launcher *Launcher
	log      logrus.FieldLogger
}

// Option configures a Session
type Option func(*Session)

// WithMarkers sets the delimiters bounding the editable region.
func WithMarkers(start, end string) Option {
	return func(s *Session) {
		s.markerStart = start
		s.markerEnd = end
	}
}

// WithRemoveEmptyParent prunes each target's parent directory on Close when it is empty.
func WithRemoveEmptyParent(remove bool) Option {
	return func(s *Session) { s.removeEmptyParent = remove }
}

// WithStrictExit makes a non-zero editor exit status abort the session before install.
func WithStrictExit(strict bool) Option {
	return func(s *Session) { s.strictExit = strict }
}

// WithLabeler sets the hook bracketing staging file creation.
func WithLabeler(l Labeler) Option {
	return func(s *Session) { s.labeler = l }
}

// WithParentMaker sets how missing parent directories of targets are created.
func WithParentMaker(p ParentMaker) Option {
	return func(s *Session) { s.parents = p }
}

// WithLauncher replaces the default editor launcher.
func WithLauncher(l *Launcher) Option {
	return func(s *Session) { s.launcher = l }
}

// WithLogger sets the logger for progress and warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

// New creates an empty Session
func New(opts ...Option) (*Session, error) {
	s := &Session{
		labeler: nopLabeler{},
		parents: osParentMaker{},
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if (s.markerStart == "") != (s.markerEnd == "") {
		return nil, ErrMarkerPair
	}
	if s.launcher == nil {
		s.launcher = NewLauncher()
	}

	return s, nil
}

// HasMarkers reports whether edit markers are configured
func (s *Session) HasMarkers() bool {
	return s.markerStart != ""
}

// Add registers a file to edit. It returns false without error when path is
// already part of the session.
func (s *Session) Add(path, originalPath string, referencePaths []string) (bool, error) {
	if path == "" {
		return false, ErrEmptyPath
	}
	if !filepath.IsAbs(path) {
		return false, fmt.Errorf("%w: %s", ErrRelativePath, path)
	}
	if referencePaths != nil && !s.HasMarkers() {
		return false, ErrMarkersRequired
	}

	if s.Contains(path) {
		return false, nil
	}

	s.requests = append(s.requests, &Request{
		Path:           filepath.Clean(path),
		OriginalPath:   originalPath,
		ReferencePaths: slices.Clone(referencePaths),
		Line:           1,
	})
	return true, nil
}

// Contains reports whether path is already registered
func (s *Session) Contains(path string) bool {
	path = filepath.Clean(path)
	for _, r := range s.requests {
		if r.Path == path {
			return true
		}
	}
	return false
}

// Len returns the number of registered requests
func (s *Session) Len() int {
	return len(s.requests)
}

// Requests returns a snapshot of the registered requests in insertion order.
func (s *Session) Requests() []Request {
	out := make([]Request, len(s.requests))
	for i, r := range s.requests {
		out[i] = *r
		out[i].ReferencePaths = slices.Clone(r.ReferencePaths)
	}
	return out
}

// Close removes outstanding staging files and, when configured, empty parent
// directories. Errors are ignored; Close always returns nil.
func (s *Session) Close() error {
	for _, r := range s.requests {
		if r.StagingPath != "" {
			if err := os.Remove(r.StagingPath); err != nil && !os.IsNotExist(err) {
				s.log.WithError(err).Debugf("Failed to remove staging file %s, ignoring", r.StagingPath)
			}
			r.StagingPath = ""
		}

		if s.removeEmptyParent {
			// rmdir leaves non-empty directories alone
			_ = os.Remove(filepath.Dir(r.Path))
		}
	}
	return nil
}
