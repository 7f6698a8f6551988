package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/irb-packager/internal/readability"
	"github.com/a3tai/irb-packager/internal/submission"
)

const (
	originalPrefix = "original-"
	outputFilePerm = 0o644
)

// Assembler merges a submission's cover page, attachments and readability
// summary into one PDF package
type Assembler struct {
	trigger    *readability.Trigger
	textReader *TextReader
	validator  *Validator
	logger     *slog.Logger
}

// NewAssembler creates an assembler. A nil logger uses slog.Default().
func NewAssembler(trigger *readability.Trigger, maxFileSize int64, logger *slog.Logger) *Assembler {
	if trigger == nil {
		trigger = readability.NewTrigger(nil, readability.TriggerConfig{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		trigger:    trigger,
		textReader: NewTextReader(),
		validator:  NewValidator(maxFileSize),
		logger:     logger,
	}
}

// packageState accumulates the pieces of a package while attachments are processed
type packageState struct {
	docs      [][]byte
	texts     []string
	originals []originalCopy
	result    *PackageBuildResult
	outputDir string
}

// originalCopy is a Word upload copied beside the package once it is written
type originalCopy struct {
	name string
	path string
	data []byte
}

// Assemble builds the package for sub and writes it to outPath. Attachments
// are added in order; unsupported ones are skipped and reported. The context
// is checked between attachments.
func (a *Assembler) Assemble(ctx context.Context, sub *submission.Submission, outPath string) (*PackageBuildResult, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	state := &packageState{
		result:    &PackageBuildResult{OutputPath: outPath},
		outputDir: filepath.Dir(outPath),
	}

	form := sub.Form
	cover, err := RenderTextPages(CoverPage(form.Name, form.Email, form.Contact, form.Query))
	if err != nil {
		return nil, &PackageError{Op: "cover", Err: err}
	}
	state.docs = append(state.docs, cover)

	for _, att := range sub.Attachments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.addAttachment(state, att); err != nil {
			return nil, err
		}
	}

	a.addReadability(state, form)

	merged, err := MergeDocuments(state.docs)
	if err != nil {
		return nil, &PackageError{Op: "merge", Err: err}
	}

	pages, err := PageCount(merged)
	if err != nil {
		return nil, &PackageError{Op: "merge", Err: err}
	}

	if err := os.WriteFile(outPath, merged, outputFilePerm); err != nil {
		return nil, &PackageError{Op: "write", File: outPath, Err: err}
	}
	if err := state.writeOriginals(); err != nil {
		os.Remove(outPath)
		return nil, err
	}

	state.result.Pages = pages
	state.result.Size = int64(len(merged))

	a.logger.Info("submission package written",
		"path", outPath,
		"pages", pages,
		"included", len(state.result.Included),
		"skipped", len(state.result.Skipped),
		"reading_level", state.result.Readability.Label)

	return state.result, nil
}

// addAttachment dispatches one attachment on its kind
func (a *Assembler) addAttachment(state *packageState, att submission.Attachment) error {
	name := att.DisplayName()
	kind := att.Kind()

	if !kind.Supported() {
		reason := "unsupported file type"
		if kind == submission.KindUnsupportedImage {
			reason = "unsupported image type: " + att.ResolveMediaType()
		}
		a.logger.Warn("skipping attachment", "file", name, "reason", reason)
		state.result.Skipped = append(state.result.Skipped, SkippedAttachment{
			Name:   name,
			Kind:   kind.String(),
			Reason: reason,
		})
		return nil
	}

	data, err := a.validator.readUpload(att.Path)
	if err != nil {
		return &PackageError{Op: "read", File: name, Err: err}
	}

	switch kind {
	case submission.KindPNG, submission.KindJPEG:
		return a.addImage(state, name, kind, data)
	case submission.KindPDF:
		return a.addPDF(state, name, data)
	case submission.KindWord:
		return a.addWord(state, name, data)
	}
	return nil
}

func (a *Assembler) addImage(state *packageState, name string, kind submission.Kind, data []byte) error {
	page, err := RenderImagePage(bytes.NewReader(data))
	if err != nil {
		return &PackageError{Op: "embed_image", File: name, Err: err}
	}
	state.docs = append(state.docs, page)
	state.include(name, kind, 1)
	return nil
}

func (a *Assembler) addPDF(state *packageState, name string, data []byte) error {
	pages, err := PageCount(data)
	if err != nil {
		return &PackageError{Op: "load_pdf", File: name, Err: err}
	}
	state.docs = append(state.docs, data)
	state.include(name, submission.KindPDF, pages)

	text, err := a.textReader.ExtractText(data)
	if err != nil {
		state.warn(a.logger, fmt.Sprintf("no text extracted from %s: %v", name, err))
		return nil
	}
	state.addText(text)
	return nil
}

func (a *Assembler) addWord(state *packageState, name string, data []byte) error {
	notice, err := RenderTextPages(WordNoticePage(name))
	if err != nil {
		return &PackageError{Op: "word_notice", File: name, Err: err}
	}
	state.docs = append(state.docs, notice)
	state.include(name, submission.KindWord, 1)

	// Extraction failures never abort the package
	text, err := ExtractWordText(data)
	switch {
	case errors.Is(err, ErrLegacyWordFormat):
		state.warn(a.logger, fmt.Sprintf("%s: %v", name, err))
	case err != nil:
		state.warn(a.logger, fmt.Sprintf("no text extracted from %s: %v", name, err))
	default:
		state.addText(text)
	}

	state.originals = append(state.originals, originalCopy{
		name: name,
		path: filepath.Join(state.outputDir, originalPrefix+filepath.Base(name)),
		data: data,
	})
	return nil
}

// addReadability scores the consent and study texts and appends the summary page
func (a *Assembler) addReadability(state *packageState, form submission.Form) {
	fb := a.trigger.Changed(form.ConsentText, form.StudyInfoText)
	state.result.Readability = fb

	lines := []string{"Document Reading Level: " + fb.Label}
	if fb.Available {
		lines = append(lines, fmt.Sprintf("Flesch-Kincaid grade level: %.2f", fb.Grade))
	}

	if len(state.texts) > 0 {
		all := append([]string{form.FieldText(), form.ConsentText, form.StudyInfoText}, state.texts...)
		combined := a.trigger.Evaluate(strings.Join(all, " "))
		state.result.Combined = &combined
		lines = append(lines, "Combined Reading Level: "+combined.Label)
	}

	summary, err := RenderTextPages(SummaryPage(lines...))
	if err != nil {
		state.warn(a.logger, fmt.Sprintf("reading level page omitted: %v", err))
		return
	}
	state.docs = append(state.docs, summary)
}

// writeOriginals copies the Word uploads beside the package. On failure the
// copies already written are removed.
func (s *packageState) writeOriginals() error {
	for i, orig := range s.originals {
		if err := os.WriteFile(orig.path, orig.data, outputFilePerm); err != nil {
			for _, written := range s.originals[:i+1] {
				os.Remove(written.path)
			}
			s.result.Originals = nil
			return &PackageError{Op: "copy_original", File: orig.name, Err: err}
		}
		s.result.Originals = append(s.result.Originals, orig.path)
	}
	return nil
}

func (s *packageState) include(name string, kind submission.Kind, pages int) {
	s.result.Included = append(s.result.Included, IncludedAttachment{
		Name:  name,
		Kind:  kind.String(),
		Pages: pages,
	})
}

func (s *packageState) addText(text string) {
	if strings.TrimSpace(text) != "" {
		s.texts = append(s.texts, text)
	}
}

func (s *packageState) warn(logger *slog.Logger, msg string) {
	logger.Warn(msg)
	s.result.Warnings = append(s.result.Warnings, msg)
}
