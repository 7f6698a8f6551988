package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder for DecodeConfig
	_ "image/png"  // register PNG decoder for DecodeConfig
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/a3tai/irb-packager/internal/submission"
)

// Validator handles upload validation
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new upload validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateUpload checks that an upload exists, fits the size limit and
// parses as the kind its name and media type claim
func (v *Validator) ValidateUpload(req UploadValidateRequest) (*UploadValidateResult, error) {
	att := submission.Attachment{Path: req.Path, MediaType: req.MediaType}
	result := &UploadValidateResult{
		Path:  req.Path,
		Valid: false,
	}

	data, err := v.readUpload(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}
	result.Size = int64(len(data))
	result.MediaType = att.ResolveMediaType()

	kind := att.Kind()
	result.Kind = kind.String()

	pages, err := v.validateContent(kind, data)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // Return result with validation error, not a processing error
	}

	result.Pages = pages
	result.Valid = true
	return result, nil
}

// readUpload stats and reads an upload, enforcing the size limit
func (v *Validator) readUpload(filePath string) ([]byte, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	return data, nil
}

// ValidateFileInfo performs basic validation on file info without reading the file
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)",
			ErrFileTooLarge, fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// validateContent parses data as kind and returns its page count for PDFs
func (v *Validator) validateContent(kind submission.Kind, data []byte) (int, error) {
	switch kind {
	case submission.KindPDF:
		if err := api.Validate(bytes.NewReader(data), newConfiguration()); err != nil {
			return 0, fmt.Errorf("invalid PDF file: %w", err)
		}
		return PageCount(data)
	case submission.KindPNG, submission.KindJPEG:
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return 0, fmt.Errorf("invalid %s image: %w", kind, err)
		}
		return 0, nil
	case submission.KindWord:
		if !IsWordDocument(data) {
			return 0, ErrNotWordDocument
		}
		return 0, nil
	case submission.KindUnsupportedImage:
		return 0, fmt.Errorf("unsupported image type")
	default:
		return 0, fmt.Errorf("unsupported file type")
	}
}
