package submission

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind classifies an attachment by how it is added to the package.
type Kind int

const (
	KindUnknown Kind = iota
	KindPNG
	KindJPEG
	KindUnsupportedImage
	KindPDF
	KindWord
)

// String returns a short name for the kind
func (k Kind) String() string {
	switch k {
	case KindPNG:
		return "png"
	case KindJPEG:
		return "jpeg"
	case KindUnsupportedImage:
		return "unsupported_image"
	case KindPDF:
		return "pdf"
	case KindWord:
		return "word"
	default:
		return "unknown"
	}
}

// Supported reports whether attachments of this kind end up in the package.
func (k Kind) Supported() bool {
	return k == KindPNG || k == KindJPEG || k == KindPDF || k == KindWord
}

// Attachment is one uploaded file.
type Attachment struct {
	Path      string `yaml:"path" json:"path"`
	Name      string `yaml:"name,omitempty" json:"name,omitempty"`
	MediaType string `yaml:"media_type,omitempty" json:"media_type,omitempty"`
}

// DisplayName returns Name, falling back to the base of Path.
func (a Attachment) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return filepath.Base(a.Path)
}

// ResolveMediaType returns the declared media type, or one derived from the
// file extension, or one sniffed from the first bytes of the file.
func (a Attachment) ResolveMediaType() string {
	if a.MediaType != "" {
		return strings.ToLower(a.MediaType)
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(a.DisplayName()))); byExt != "" {
		return strings.ToLower(byExt)
	}
	return sniffMediaType(a.Path)
}

// Kind classifies the attachment. Images other than PNG and JPEG are
// reported as unsupported; Word files are recognised by media type or by a
// .doc/.docx name.
func (a Attachment) Kind() Kind {
	return DetectKind(a.DisplayName(), a.ResolveMediaType())
}

// DetectKind classifies a file from its name and media type.
func DetectKind(name, mediaType string) Kind {
	mediaType = strings.ToLower(mediaType)
	lowerName := strings.ToLower(name)

	switch {
	case strings.Contains(mediaType, "image"):
		switch {
		case strings.Contains(mediaType, "png"):
			return KindPNG
		case strings.Contains(mediaType, "jpeg"), strings.Contains(mediaType, "jpg"):
			return KindJPEG
		default:
			return KindUnsupportedImage
		}
	case strings.Contains(mediaType, "pdf"):
		return KindPDF
	case strings.Contains(mediaType, "word"),
		strings.HasSuffix(lowerName, ".doc"),
		strings.HasSuffix(lowerName, ".docx"):
		return KindWord
	}
	return KindUnknown
}

// sniffMediaType detects the media type from the file content. OOXML
// containers are told apart, so an extensionless .docx is reported as Word.
func sniffMediaType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt.String())
}
