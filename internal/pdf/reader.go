package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const defaultMaxTextSize = 10 * 1024 * 1024 // 10MB text limit

// TextReader extracts plain text from attached PDFs for readability scoring
type TextReader struct {
	maxTextSize int
}

// NewTextReader creates a new text reader
func NewTextReader() *TextReader {
	return &TextReader{
		maxTextSize: defaultMaxTextSize,
	}
}

// ExtractText returns the text of every page joined by blank lines.
// Pages that fail to decode are skipped.
func (r *TextReader) ExtractText(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	return r.extractTextContent(pdfReader), nil
}

// extractTextContent concatenates page text up to maxTextSize bytes
func (r *TextReader) extractTextContent(pdfReader *pdf.Reader) (text string) {
	var builder strings.Builder
	totalLength := 0

	defer func() {
		// Malformed content streams can panic inside the decoder
		if recover() != nil {
			text = builder.String()
		}
	}()

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if totalLength+len(content) > r.maxTextSize {
			remaining := r.maxTextSize - totalLength
			if remaining > 0 {
				builder.WriteString(content[:remaining])
			}
			break
		}

		builder.WriteString(content)
		totalLength += len(content)

		if pageNum < pdfReader.NumPage() {
			builder.WriteString("\n\n")
		}
	}

	return builder.String()
}
