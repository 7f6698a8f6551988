package pdf

import (
	"errors"
	"fmt"
)

// PackageError ties a packaging failure to the attachment that caused it
type PackageError struct {
	Op   string `json:"operation"`
	File string `json:"file,omitempty"`
	Err  error  `json:"error"`
}

func (e *PackageError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("package %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("package %s failed for %s: %v", e.Op, e.File, e.Err)
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrLegacyWordFormat = errors.New("legacy .doc files carry no extractable text")
	ErrNotWordDocument  = errors.New("file is not a Word document")
	ErrFileTooLarge     = errors.New("file too large")
)
