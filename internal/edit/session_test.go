package edit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MarkerPair(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"no markers", "", "", false},
		{"both markers", "<<", ">>", false},
		{"start only", "<<", "", true},
		{"end only", "", ">>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(WithMarkers(tt.start, tt.end))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMarkerPair)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start != "", s.HasMarkers())
		})
	}
}

func TestAdd_DuplicateIsNoop(t *testing.T) {
	s := newSession(t)
	target := filepath.Join(t.TempDir(), "unit.conf")

	added, err := s.Add(target, "", nil)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(target, "/some/original", nil)
	require.NoError(t, err)
	assert.False(t, added)

	// Same file spelled differently
	added, err = s.Add(filepath.Join(filepath.Dir(target), ".", "unit.conf"), "", nil)
	require.NoError(t, err)
	assert.False(t, added)

	requests := s.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, target, requests[0].Path)
	assert.Empty(t, requests[0].OriginalPath)
	assert.Empty(t, requests[0].StagingPath)
	assert.Equal(t, 1, requests[0].Line)
}

func TestAdd_PreservesOrder(t *testing.T) {
	s := newSession(t)
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "c"),
		filepath.Join(dir, "a"),
		filepath.Join(dir, "b"),
	}
	for _, p := range paths {
		_, err := s.Add(p, "", nil)
		require.NoError(t, err)
	}

	got := make([]string, 0, s.Len())
	for _, r := range s.Requests() {
		got = append(got, r.Path)
	}
	assert.Equal(t, paths, got)
	assert.True(t, s.Contains(paths[1]))
	assert.False(t, s.Contains(filepath.Join(dir, "d")))
}

func TestAdd_Validation(t *testing.T) {
	s := newSession(t)

	_, err := s.Add("", "", nil)
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = s.Add("relative/file", "", nil)
	assert.ErrorIs(t, err, ErrRelativePath)

	_, err = s.Add(filepath.Join(t.TempDir(), "x"), "", []string{})
	assert.ErrorIs(t, err, ErrMarkersRequired)

	assert.Equal(t, 0, s.Len())
}

func TestRequests_IsSnapshot(t *testing.T) {
	s := newSession(t, WithMarkers("<<", ">>"))
	target := filepath.Join(t.TempDir(), "x")
	_, err := s.Add(target, "", []string{"/etc/a"})
	require.NoError(t, err)

	snap := s.Requests()
	snap[0].Path = "/elsewhere"
	snap[0].ReferencePaths[0] = "/etc/b"

	again := s.Requests()
	assert.Equal(t, target, again[0].Path)
	assert.Equal(t, []string{"/etc/a"}, again[0].ReferencePaths)
}

func TestClose_RemovesStagingFiles(t *testing.T) {
	s, err := New(WithLogger(quietLogger()))
	require.NoError(t, err)

	dir := t.TempDir()
	target := filepath.Join(dir, "file")
	_, err = s.Add(target, "", nil)
	require.NoError(t, err)
	require.NoError(t, s.Stage(t.Context()))

	staging := s.Requests()[0].StagingPath
	require.FileExists(t, staging)

	require.NoError(t, s.Close())
	assert.NoFileExists(t, staging)
	assert.Empty(t, s.Requests()[0].StagingPath)
	assert.DirExists(t, dir)

	// A second Close has nothing left to do
	assert.NoError(t, s.Close())
}

func TestClose_RemoveEmptyParent(t *testing.T) {
	s, err := New(WithLogger(quietLogger()), WithRemoveEmptyParent(true))
	require.NoError(t, err)

	root := t.TempDir()
	emptyDir := filepath.Join(root, "empty.d")
	busyDir := filepath.Join(root, "busy.d")
	require.NoError(t, os.MkdirAll(busyDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(busyDir, "keep"), []byte("x"), 0644))

	_, err = s.Add(filepath.Join(emptyDir, "override.conf"), "", nil)
	require.NoError(t, err)
	_, err = s.Add(filepath.Join(busyDir, "override.conf"), "", nil)
	require.NoError(t, err)
	require.NoError(t, s.Stage(t.Context()))

	require.NoError(t, s.Close())
	assert.NoDirExists(t, emptyDir)
	assert.DirExists(t, busyDir)
	assert.FileExists(t, filepath.Join(busyDir, "keep"))
}
