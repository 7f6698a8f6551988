package pdf

import (
	"github.com/a3tai/irb-packager/internal/readability"
	"github.com/a3tai/irb-packager/internal/submission"
)

// Request Types

// PackageBuildRequest represents a request to assemble a submission package
type PackageBuildRequest struct {
	Submission submission.Submission `json:"submission"`
	OutputName string                `json:"output_name,omitempty"` // defaults to the configured name
}

// UploadValidateRequest represents a request to validate one uploaded file
type UploadValidateRequest struct {
	Path      string `json:"path"`
	MediaType string `json:"media_type,omitempty"`
}

// ReadabilityRequest represents a request to score a single text
type ReadabilityRequest struct {
	Text string `json:"text"`
}

// FeedbackRequest carries the current values of the two scored form fields
type FeedbackRequest struct {
	ConsentText   string `json:"consent_text"`
	StudyInfoText string `json:"study_info_text"`
}

// Response Types

// IncludedAttachment describes an attachment that made it into the package
type IncludedAttachment struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Pages int    `json:"pages"`
}

// SkippedAttachment describes an attachment left out of the package
type SkippedAttachment struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// PackageBuildResult represents the result of assembling a submission package
type PackageBuildResult struct {
	SubmissionID string                `json:"submission_id"`
	OutputPath   string                `json:"output_path"`
	Pages        int                   `json:"pages"`
	Size         int64                 `json:"size"`
	Readability  readability.Feedback  `json:"readability"`
	Combined     *readability.Feedback `json:"combined_readability,omitempty"` // form plus extracted attachment text
	Included     []IncludedAttachment  `json:"included"`
	Skipped      []SkippedAttachment   `json:"skipped,omitempty"`
	Originals    []string              `json:"originals,omitempty"` // Word files copied beside the package
	Warnings     []string              `json:"warnings,omitempty"`
}

// UploadValidateResult represents the result of validating an upload
type UploadValidateResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
	Pages     int    `json:"pages,omitempty"` // PDFs only
	Message   string `json:"message,omitempty"`
}

// ReadabilityResult represents the score of a single text
type ReadabilityResult struct {
	Available bool              `json:"available"`
	Grade     float64           `json:"grade"`
	Label     string            `json:"label"`
	Stats     readability.Stats `json:"stats"`
}

// UploadFileInfo describes an upload found in the work directory
type UploadFileInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Kind         string `json:"kind"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ToolInfo describes one MCP tool for server_info
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}

// ServerInfoResult represents the server_info response
type ServerInfoResult struct {
	ServerName       string           `json:"server_name"`
	Version          string           `json:"version"`
	WorkDirectory    string           `json:"work_directory"`
	OutputName       string           `json:"output_name"`
	MaxFileSize      int64            `json:"max_file_size"`
	Threshold        float64          `json:"threshold"`
	LedgerEnabled    bool             `json:"ledger_enabled"`
	AvailableTools   []ToolInfo       `json:"available_tools"`
	Uploads          []UploadFileInfo `json:"uploads"`
	UploadsTruncated bool             `json:"uploads_truncated,omitempty"`
	SupportedFormats []string         `json:"supported_formats"`
	UsageGuidance    string           `json:"usage_guidance"`
}
