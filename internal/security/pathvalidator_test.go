package security

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestPathValidator_Normalize(t *testing.T) {
	tmpDir := t.TempDir()

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	tests := []struct {
		name    string
		input   string
		want    string
		errType error
	}{
		// Valid paths
		{"simple file", "test.conf", "test.conf", nil},
		{"file in subdirectory", "subdir/test.conf", filepath.Join("subdir", "test.conf"), nil},
		{"hidden file", ".env", ".env", nil},
		{"absolute path is rooted", "/etc/app/app.conf", filepath.Join("etc", "app", "app.conf"), nil},

		// Clean should normalize these
		{"dot slash", "./test.conf", "test.conf", nil},
		{"redundant slashes", "a//b///c/test.conf", filepath.Join("a", "b", "c", "test.conf"), nil},
		{"dot segments", "a/./b/../test.conf", filepath.Join("a", "test.conf"), nil},
		{"absolute dot dot is clamped", "/../etc/app.conf", filepath.Join("etc", "app.conf"), nil},

		// Rejected
		{"empty path", "", "", ErrEmptyPath},
		{"parent directory", "../test.conf", "", ErrPathEscapes},
		{"nested parent", "a/../../test.conf", "", ErrPathEscapes},
		{"root itself", "/", "", ErrPathEscapes},
		{"current directory", ".", "", ErrPathEscapes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.Normalize(tt.input)

			if tt.errType != nil {
				if err == nil {
					t.Errorf("Expected error for input %q, got none", tt.input)
					return
				}
				if !strings.Contains(err.Error(), tt.errType.Error()) {
					t.Errorf("Expected error type %v, got %v", tt.errType, err)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error for input %q: %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	tmpDir := t.TempDir()

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	got, err := validator.Resolve("/etc/app.conf")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := filepath.Join(validator.RootPath(), "etc", "app.conf")
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Result should be absolute, got %q", got)
	}
}

func TestPathValidator_MkdirParents(t *testing.T) {
	tmpDir := t.TempDir()

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	root := validator.RootPath()
	tests := []struct {
		name      string
		path      string
		wantDir   string
		shouldErr bool
	}{
		{"file at root", filepath.Join(root, "top.conf"), root, false},
		{"nested file", filepath.Join(root, "a", "b", "c.conf"), filepath.Join(root, "a", "b"), false},
		{"outside root", filepath.Join(filepath.Dir(root), "evil", "x.conf"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.MkdirParents(tt.path, 0755)

			if tt.shouldErr {
				if err == nil {
					t.Errorf("Expected error when creating parents of %q, got none", tt.path)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error creating parents of %q: %v", tt.path, err)
				return
			}

			if info, statErr := os.Stat(tt.wantDir); statErr != nil || !info.IsDir() {
				t.Errorf("Directory was not created at %q", tt.wantDir)
			}
			if _, statErr := os.Stat(tt.path); statErr == nil {
				t.Errorf("MkdirParents must not create the file itself: %q", tt.path)
			}
		})
	}
}

func TestPathValidator_ReadFileInRoot(t *testing.T) {
	tmpDir := t.TempDir()

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	root := validator.RootPath()
	if err := os.WriteFile(filepath.Join(root, "test.conf"), []byte("test content"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	data, err := validator.ReadFileInRoot(filepath.Join(root, "test.conf"))
	if err != nil {
		t.Fatalf("Unexpected error reading file: %v", err)
	}
	if string(data) != "test content" {
		t.Errorf("Content mismatch: got %q, want %q", data, "test content")
	}

	if _, err := validator.ReadFileInRoot(filepath.Join(root, "missing.conf")); err == nil {
		t.Error("Expected error reading missing file, got none")
	}
	if _, err := validator.ReadFileInRoot(filepath.Join(filepath.Dir(root), "outside.conf")); err == nil {
		t.Error("Expected error reading outside root, got none")
	}
}

// Test that os.Root actually prevents escaping through a symlink
func TestPathValidator_SymlinkEscapePrevention(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}

	tmpDir := t.TempDir()
	outsideDir := t.TempDir()

	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	defer validator.Close()

	root := validator.RootPath()
	if err := os.Symlink(outsideDir, filepath.Join(root, "link")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	err = validator.MkdirParents(filepath.Join(root, "link", "sub", "file.conf"), 0755)
	if err == nil {
		t.Error("Expected error when creating directories through a symlink leaving the root, got none")
	}

	// Verify nothing was created outside
	if _, statErr := os.Stat(filepath.Join(outsideDir, "sub")); statErr == nil {
		t.Error("Directory was created outside root - security breach!")
	}
}
