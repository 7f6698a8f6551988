package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines uploads and generated files to the work directory
type PathValidator struct {
	workDirectory string
}

// NewPathValidator creates a new path validator for the given work directory
func NewPathValidator(workDirectory string) (*PathValidator, error) {
	if workDirectory == "" {
		return nil, fmt.Errorf("work directory cannot be empty")
	}

	absDir, err := filepath.Abs(workDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory: %w", err)
	}

	return &PathValidator{
		workDirectory: filepath.Clean(absDir),
	}, nil
}

// ValidatePath checks that path lies inside the work directory, following
// symlinks for paths that exist
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a null byte")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if !v.IsPathWithinDirectory(absPath) {
		return fmt.Errorf("path is outside work directory: %s", path)
	}
	return nil
}

// IsPathWithinDirectory reports whether an absolute path is inside the work
// directory both lexically and after resolving symlinks
func (v *PathValidator) IsPathWithinDirectory(absPath string) bool {
	if !within(v.workDirectory, filepath.Clean(absPath)) {
		return false
	}

	realDir := v.workDirectory
	if resolved, err := filepath.EvalSymlinks(realDir); err == nil {
		realDir = resolved
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing on disk to follow yet
			return true
		}
		return false
	}
	return within(realDir, realPath)
}

// within reports whether path equals dir or is nested below it
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// GetConfiguredDirectory returns the work directory
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.workDirectory
}

// NormalizePath returns an absolute path inside the work directory.
// Relative paths are taken relative to the work directory.
func (v *PathValidator) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.workDirectory, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}

	return absPath, nil
}
