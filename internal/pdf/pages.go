package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Page layout in points, measured from the upper left corner of an A4 page.
const (
	paperSize      = "A4P"
	defaultFont    = "Helvetica"
	titleFontSize  = 16
	bodyFontSize   = 12
	coverMarginX   = 57
	coverTitleY    = 57
	coverFieldY    = 113
	coverLineStep  = 28
	noticeMarginX  = 50
	noticeTopY     = 100
	summaryTopY    = 50
	summaryLineGap = 20

	// Images are centred and scaled to fit the page keeping their aspect ratio.
	imageImportDetails = "formsize:A4, position:c, scalefactor:1.0 rel"
)

// TextLine is one line of text placed on a generated page
type TextLine struct {
	Text string
	Size int
	X, Y float64
}

// TextPage is a generated page made of text lines
type TextPage struct {
	Lines []TextLine
}

// The structs below mirror the JSON page description accepted by api.Create.
type layoutDoc struct {
	Paper  string              `json:"paper"`
	Origin string              `json:"origin"`
	Pages  map[string]pageSpec `json:"pages"`
}

type pageSpec struct {
	Content pageContent `json:"content"`
}

type pageContent struct {
	Text []textSpec `json:"text"`
}

type textSpec struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  fontSpec   `json:"font"`
}

type fontSpec struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// newConfiguration returns the pdfcpu configuration used for every operation
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// layoutJSON encodes pages into the api.Create JSON format
func layoutJSON(pages []TextPage) ([]byte, error) {
	doc := layoutDoc{
		Paper:  paperSize,
		Origin: "UpperLeft",
		Pages:  make(map[string]pageSpec, len(pages)),
	}

	for i, page := range pages {
		spec := pageSpec{}
		for _, line := range page.Lines {
			size := line.Size
			if size == 0 {
				size = bodyFontSize
			}
			spec.Content.Text = append(spec.Content.Text, textSpec{
				Value: line.Text,
				Pos:   [2]float64{line.X, line.Y},
				Font:  fontSpec{Name: defaultFont, Size: size},
			})
		}
		doc.Pages[strconv.Itoa(i+1)] = spec
	}

	return json.Marshal(doc)
}

// RenderTextPages renders text-only pages into a standalone PDF
func RenderTextPages(pages ...TextPage) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to render")
	}

	layout, err := layoutJSON(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page layout: %w", err)
	}

	var buf bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(layout), &buf, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to render pages: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImagePage places one PNG or JPEG image on a new page
func RenderImagePage(img io.Reader) ([]byte, error) {
	imp, err := pdfcpu.ParseImportDetails(imageImportDetails, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("invalid image import settings: %w", err)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, []io.Reader{img}, imp, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to embed image: %w", err)
	}
	return buf.Bytes(), nil
}

// MergeDocuments concatenates the pages of all documents in order
func MergeDocuments(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to merge")
	}

	readers := make([]io.ReadSeeker, len(docs))
	for i, doc := range docs {
		readers[i] = bytes.NewReader(doc)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to merge documents: %w", err)
	}
	return buf.Bytes(), nil
}

// PageCount returns the number of pages of a PDF held in memory
func PageCount(doc []byte) (int, error) {
	ctx, err := api.ReadContext(bytes.NewReader(doc), newConfiguration())
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}

// CoverPage lays out the form fields the way the paper form lists them
func CoverPage(name, email, contact, query string) TextPage {
	page := TextPage{Lines: []TextLine{
		{Text: "IRB Submission Form", Size: titleFontSize, X: coverMarginX, Y: coverTitleY},
	}}
	fields := []string{
		"Name: " + name,
		"Email: " + email,
		"Contact: " + contact,
		"Query: " + query,
	}
	for i, field := range fields {
		page.Lines = append(page.Lines, TextLine{
			Text: field,
			Size: bodyFontSize,
			X:    coverMarginX,
			Y:    float64(coverFieldY + i*coverLineStep),
		})
	}
	return page
}

// WordNoticePage marks where a Word document was attached
func WordNoticePage(fileName string) TextPage {
	return TextPage{Lines: []TextLine{
		{Text: "Word document attached: " + fileName, Size: bodyFontSize, X: noticeMarginX, Y: noticeTopY},
	}}
}

// SummaryPage lists the given lines from the top of the page
func SummaryPage(lines ...string) TextPage {
	page := TextPage{}
	for i, line := range lines {
		page.Lines = append(page.Lines, TextLine{
			Text: line,
			Size: bodyFontSize,
			X:    noticeMarginX,
			Y:    float64(summaryTopY + i*summaryLineGap),
		})
	}
	return page
}
