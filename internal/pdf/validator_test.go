package pdf

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateUpload(t *testing.T) {
	validator := NewValidator(64 * 1024)
	tempDir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		data      []byte
		mediaType string
		wantValid bool
		wantKind  string
		wantPages int
		wantMsg   string
	}{
		{name: "pdf", file: "protocol.pdf", data: pdfFixture(t, "one", "two"), wantValid: true, wantKind: "pdf", wantPages: 2},
		{name: "png", file: "scan.png", data: pngFixture(t, 8, 8), wantValid: true, wantKind: "png"},
		{name: "jpeg", file: "photo.jpg", data: jpegFixture(t, 8, 8), wantValid: true, wantKind: "jpeg"},
		{name: "docx", file: "consent.docx", data: docxFixture(t, "text"), wantValid: true, wantKind: "word"},
		{name: "media type wins over extension", file: "upload.bin", data: pngFixture(t, 8, 8), mediaType: "image/png", wantValid: true, wantKind: "png"},
		{name: "corrupt pdf", file: "broken.pdf", data: make([]byte, 512), wantKind: "pdf", wantMsg: "invalid PDF file"},
		{name: "png with wrong content", file: "fake.png", data: []byte("not an image at all"), wantKind: "png", wantMsg: "invalid png image"},
		{name: "docx that is not a zip", file: "fake.docx", data: []byte("plain"), wantKind: "word", wantMsg: ErrNotWordDocument.Error()},
		{name: "gif", file: "anim.gif", data: []byte("GIF89a..."), wantKind: "unsupported_image", wantMsg: "unsupported image type"},
		{name: "text", file: "notes.txt", data: []byte("plain notes"), wantKind: "unknown", wantMsg: "unsupported file type"},
		{name: "too large", file: "big.pdf", data: make([]byte, 65*1024), wantMsg: "file too large"},
		{name: "empty", file: "empty.pdf", data: []byte{}, wantMsg: "file is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tempDir, tt.file, tt.data)

			result, err := validator.ValidateUpload(UploadValidateRequest{Path: path, MediaType: tt.mediaType})
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, result.Valid, result.Message)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, result.Kind)
			}
			assert.Equal(t, tt.wantPages, result.Pages)
			if tt.wantMsg != "" {
				assert.Contains(t, result.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidator_ValidateUploadMissing(t *testing.T) {
	validator := NewValidator(1024)

	result, err := validator.ValidateUpload(UploadValidateRequest{Path: "/non/existent/file.pdf"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Message, "file does not exist")

	result, err = validator.ValidateUpload(UploadValidateRequest{})
	require.NoError(t, err)
	assert.Contains(t, result.Message, "path cannot be empty")
}

func TestValidator_ValidateFileInfo(t *testing.T) {
	validator := NewValidator(1024)
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "regular file", path: writeFixture(t, tempDir, "ok.pdf", make([]byte, 100))},
		{name: "directory", path: tempDir, wantErr: "path is a directory"},
		{name: "empty", path: writeFixture(t, tempDir, "empty.pdf", nil), wantErr: "file is empty"},
		{name: "too large", path: writeFixture(t, tempDir, "large.pdf", make([]byte, 2048)), wantErr: "file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := os.Stat(tt.path)
			require.NoError(t, err)

			err = validator.ValidateFileInfo(tt.path, info)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
