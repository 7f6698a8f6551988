package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/a3tai/irb-packager/internal/pdf/security"
	"github.com/a3tai/irb-packager/internal/readability"
	"github.com/a3tai/irb-packager/internal/submission"
)

// Recorder stores a record of every package built
type Recorder interface {
	RecordPackage(ctx context.Context, result *PackageBuildResult, applicant, email string) error
}

// ServiceOptions configures a Service
type ServiceOptions struct {
	MaxFileSize   int64
	WorkDirectory string
	OutputName    string
	Trigger       readability.TriggerConfig
	Recorder      Recorder // optional
	Logger        *slog.Logger
}

// Service handles submission packaging by orchestrating the packaging components
type Service struct {
	maxFileSize   int64
	outputName    string
	scorer        *readability.Scorer
	trigger       *readability.Trigger
	validator     *Validator
	assembler     *Assembler
	pathValidator *security.PathValidator
	recorder      Recorder
	logger        *slog.Logger
}

// NewService creates a new packaging service with all components
func NewService(opts ServiceOptions) (*Service, error) {
	pathValidator, err := security.NewPathValidator(opts.WorkDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("maximum file size must be positive")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	outputName := opts.OutputName
	if outputName == "" {
		outputName = "submission-package.pdf"
	}

	scorer := readability.NewScorer()
	trigger := readability.NewTrigger(scorer, opts.Trigger)

	return &Service{
		maxFileSize:   opts.MaxFileSize,
		outputName:    outputName,
		scorer:        scorer,
		trigger:       trigger,
		validator:     NewValidator(opts.MaxFileSize),
		assembler:     NewAssembler(trigger, opts.MaxFileSize, logger),
		pathValidator: pathValidator,
		recorder:      opts.Recorder,
		logger:        logger,
	}, nil
}

// BuildPackage assembles the submission package inside the work directory
func (s *Service) BuildPackage(ctx context.Context, req PackageBuildRequest) (*PackageBuildResult, error) {
	sub := req.Submission
	sub.Attachments = append([]submission.Attachment(nil), req.Submission.Attachments...)
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	for i, att := range sub.Attachments {
		normalized, err := s.pathValidator.NormalizePath(att.Path)
		if err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
		sub.Attachments[i].Path = normalized
	}

	outputName := req.OutputName
	if outputName == "" {
		outputName = s.outputName
	}
	if filepath.Base(outputName) != outputName {
		return nil, fmt.Errorf("output name must be a plain file name: %q", outputName)
	}
	outPath := filepath.Join(s.pathValidator.GetConfiguredDirectory(), outputName)

	result, err := s.assembler.Assemble(ctx, &sub, outPath)
	if err != nil {
		return nil, err
	}
	result.SubmissionID = uuid.NewString()

	if s.recorder != nil {
		if err := s.recorder.RecordPackage(ctx, result, sub.Form.Name, sub.Form.Email); err != nil {
			// The package is already on disk; a ledger failure is only reported
			s.logger.Error("failed to record package", "path", outPath, "error", err)
			result.Warnings = append(result.Warnings, "package not recorded in ledger: "+err.Error())
		}
	}

	return result, nil
}

// ValidateUpload validates one uploaded file inside the work directory
func (s *Service) ValidateUpload(req UploadValidateRequest) (*UploadValidateResult, error) {
	normalized, err := s.pathValidator.NormalizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = normalized
	return s.validator.ValidateUpload(req)
}

// ScoreText computes the readability of a single text
func (s *Service) ScoreText(req ReadabilityRequest) *ReadabilityResult {
	stats, err := s.scorer.Analyze(req.Text)
	if errors.Is(err, readability.ErrInsufficientText) {
		return &ReadabilityResult{Label: readability.BandUnavailable, Stats: stats}
	}
	return &ReadabilityResult{
		Available: true,
		Grade:     stats.GradeLevel,
		Label:     readability.Band(stats.GradeLevel),
		Stats:     stats,
	}
}

// Feedback recomputes the live feedback for the current consent and study texts
func (s *Service) Feedback(req FeedbackRequest) readability.Feedback {
	return s.trigger.Changed(req.ConsentText, req.StudyInfoText)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// WorkDirectory returns the directory uploads are read from and packages written to
func (s *Service) WorkDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// OutputName returns the default package file name
func (s *Service) OutputName() string {
	return s.outputName
}

// Threshold returns the grade level at which feedback switches to the high color
func (s *Service) Threshold() float64 {
	return s.trigger.Threshold()
}
