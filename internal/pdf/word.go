package pdf

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordDocumentPart = "word/document.xml"

// oleSignature starts every legacy binary .doc file
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ExtractWordText returns the raw paragraph text of a .docx document.
// Legacy .doc files return ErrLegacyWordFormat and anything else
// ErrNotWordDocument.
func ExtractWordText(data []byte) (string, error) {
	if bytes.HasPrefix(data, oleSignature) {
		return "", ErrLegacyWordFormat
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ErrNotWordDocument
	}

	for _, f := range zr.File {
		if f.Name != wordDocumentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", wordDocumentPart, err)
		}
		defer rc.Close()
		return paragraphText(rc)
	}

	return "", ErrNotWordDocument
}

// paragraphText collects w:t runs, one line per w:p paragraph
func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		builder strings.Builder
		inText  bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", wordDocumentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				builder.WriteByte('\t')
			case "br", "cr":
				builder.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				builder.Write(t)
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// IsWordDocument reports whether data looks like a .docx or legacy .doc file
func IsWordDocument(data []byte) bool {
	if bytes.HasPrefix(data, oleSignature) {
		return true
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == wordDocumentPart {
			return true
		}
	}
	return false
}
