package edit

import (
	"context"
	"fmt"
	"os"
)

// Result reports what happened to one request
type Result struct {
	Path      string
	Trim      TrimResult
	Installed bool
}

// Run stages every request, runs the editor once over the batch and installs
// the files that still carry content. Files installed before an error stay
// installed. The caller must still Close the session.
func (s *Session) Run(ctx context.Context) ([]Result, error) {
	if len(s.requests) == 0 {
		return nil, ErrNoFiles
	}

	if err := s.Stage(ctx); err != nil {
		return nil, err
	}

	if err := s.Edit(ctx); err != nil {
		return nil, err
	}

	return s.Install(ctx)
}

// Edit runs the editor over all staged requests. A non-zero exit status is
// logged and only treated as an error in strict mode.
func (s *Session) Edit(ctx context.Context) error {
	requests := s.Requests()
	for _, r := range requests {
		if r.StagingPath == "" {
			return fmt.Errorf("%s has not been staged", r.Path)
		}
	}

	s.log.Debugf("Launching editor over %d file(s): %v", len(requests), Args(requests))
	code, err := s.launcher.Run(ctx, requests)
	if err != nil {
		return err
	}
	if code != 0 {
		if s.strictExit {
			return &EditorExitError{Code: code}
		}
		s.log.Warnf("Editor exited with code %d, installing edits anyway", code)
	}
	return nil
}

// Install trims every staged request and renames the ones with content over
// their targets. It stops at the first failure and returns the results
// gathered so far.
func (s *Session) Install(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(s.requests))

	for _, r := range s.requests {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if r.StagingPath == "" {
			return results, fmt.Errorf("%s has not been staged", r.Path)
		}

		// Always trim, it also tells whether the staging file is empty
		trim, err := Trim(r.StagingPath, s.markerStart, s.markerEnd)
		if err != nil {
			return results, err
		}
		if trim == TrimEmpty {
			s.log.Debugf("%s carries no changes, not installing", r.Path)
			results = append(results, Result{Path: r.Path, Trim: trim})
			continue
		}

		if err := os.Rename(r.StagingPath, r.Path); err != nil {
			return results, fmt.Errorf("failed to install %s: %w", r.Path, err)
		}
		r.StagingPath = ""

		s.log.Infof("Successfully installed edited file '%s'.", r.Path)
		results = append(results, Result{Path: r.Path, Trim: trim, Installed: true})
	}

	return results, nil
}
