package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/irb-packager/internal/config"
	"github.com/a3tai/irb-packager/internal/descriptions"
	"github.com/a3tai/irb-packager/internal/ledger"
	"github.com/a3tai/irb-packager/internal/pdf"
	"github.com/a3tai/irb-packager/internal/readability"
	"github.com/a3tai/irb-packager/internal/submission"
)

const shutdownTimeout = 5 * time.Second

// History lists previously built packages
type History interface {
	Recent(ctx context.Context, limit int) ([]ledger.Entry, error)
}

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	serverInfo *pdf.ServerInfo
	history    History // nil when the ledger is disabled
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// NewServer creates a new MCP server instance. history may be nil.
func NewServer(cfg *config.Config, pdfService *pdf.Service, history History) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		serverInfo: pdf.NewServerInfo(pdfService),
		history:    history,
		mcpServer:  mcpServer,
		logger:     slog.Default().With("component", "mcp"),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"readability_score",
		mcp.WithDescription(descriptions.GetToolDescription("readability_score")),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to score"),
		),
	), s.handleReadabilityScore)

	s.mcpServer.AddTool(mcp.NewTool(
		"readability_feedback",
		mcp.WithDescription(descriptions.GetToolDescription("readability_feedback")),
		mcp.WithString("consent_text",
			mcp.Description("Current value of the consent form field"),
		),
		mcp.WithString("study_info_text",
			mcp.Description("Current value of the study information field"),
		),
	), s.handleReadabilityFeedback)

	s.mcpServer.AddTool(packageBuildTool(), s.handlePackageBuild)

	s.mcpServer.AddTool(mcp.NewTool(
		"upload_validate",
		mcp.WithDescription(descriptions.GetToolDescription("upload_validate")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Upload path, relative to the work directory or absolute inside it"),
		),
		mcp.WithString("media_type",
			mcp.Description("Media type reported by the browser, if known"),
		),
	), s.handleUploadValidate)

	s.mcpServer.AddTool(mcp.NewTool(
		"submission_history",
		mcp.WithDescription(descriptions.GetToolDescription("submission_history")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries (default 20)"),
		),
	), s.handleSubmissionHistory)

	s.mcpServer.AddTool(mcp.NewTool(
		"server_info",
		mcp.WithDescription(descriptions.GetToolDescription("server_info")),
	), s.handleServerInfo)
}

// Handler functions
func (s *Server) handleReadabilityScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.pdfService.ScoreText(pdf.ReadabilityRequest{Text: text})
	return mcp.NewToolResultText(s.formatReadabilityResult(result)), nil
}

func (s *Server) handleReadabilityFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fb := s.pdfService.Feedback(pdf.FeedbackRequest{
		ConsentText:   stringArg(args, "consent_text"),
		StudyInfoText: stringArg(args, "study_info_text"),
	})
	return mcp.NewToolResultText(s.formatFeedback(fb)), nil
}

func (s *Server) handlePackageBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	attachments, err := attachmentsArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	notRobot, _ := args["not_robot"].(bool)
	req := pdf.PackageBuildRequest{
		Submission: submission.Submission{
			Form: submission.Form{
				Name:          stringArg(args, "name"),
				Email:         stringArg(args, "email"),
				Contact:       stringArg(args, "contact"),
				Query:         stringArg(args, "query"),
				ConsentText:   stringArg(args, "consent_text"),
				StudyInfoText: stringArg(args, "study_info_text"),
				NotRobot:      notRobot,
			},
			Attachments: attachments,
		},
		OutputName: stringArg(args, "output_name"),
	}

	result, err := s.pdfService.BuildPackage(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.serverInfo.Invalidate()

	return mcp.NewToolResultText(s.formatPackageBuildResult(result)), nil
}

func (s *Server) handleUploadValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.UploadValidateRequest{
		Path:      path,
		MediaType: stringArg(request.GetArguments(), "media_type"),
	}
	result, err := s.pdfService.ValidateUpload(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Upload %s is valid (%s, %d bytes)", result.Path, result.Kind, result.Size)
		if result.Pages > 0 {
			responseText += fmt.Sprintf(", %d page(s)", result.Pages)
		}
	} else {
		responseText = fmt.Sprintf("Upload validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSubmissionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultText("Submission ledger is disabled; start the server with --ledger to record packages"), nil
	}

	limit := ledger.DefaultRecentLimit
	if l, ok := request.GetArguments()["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	entries, err := s.history.Recent(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatHistory(entries)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.serverInfo.GetServerInfo(ctx, s.config.ServerName, s.config.Version, s.history != nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// Argument helpers

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// attachmentsArg accepts an array of paths or of {path, name, media_type} objects
// attachmentItemSchema accepts a bare path or an object with an optional
// display name and media type
var attachmentItemSchema = map[string]any{
	"anyOf": []any{
		map[string]any{"type": "string"},
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":       map[string]any{"type": "string"},
				"name":       map[string]any{"type": "string"},
				"media_type": map[string]any{"type": "string"},
			},
			"required": []string{"path"},
		},
	},
}

func packageBuildTool() mcp.Tool {
	return mcp.NewTool(
		"package_build",
		mcp.WithDescription(descriptions.GetToolDescription("package_build")),
		mcp.WithString("name", mcp.Description("Applicant name")),
		mcp.WithString("email", mcp.Description("Applicant email")),
		mcp.WithString("contact", mcp.Description("Contact details")),
		mcp.WithString("query", mcp.Description("Query for the IRB office")),
		mcp.WithString("consent_text", mcp.Description("Consent form text")),
		mcp.WithString("study_info_text", mcp.Description("Study information text")),
		mcp.WithBoolean("not_robot",
			mcp.Required(),
			mcp.Description("Applicant confirmed they are not a robot"),
		),
		mcp.WithArray("attachments",
			mcp.Required(),
			mcp.Description("Uploads inside the work directory, in package order: a path, or {path, name, media_type}"),
			mcp.Items(attachmentItemSchema),
		),
		mcp.WithString("output_name",
			mcp.Description("Package file name (defaults to the configured name)"),
		),
	)
}

func attachmentsArg(args map[string]any) ([]submission.Attachment, error) {
	raw, ok := args["attachments"].([]any)
	if !ok {
		return nil, fmt.Errorf("attachments must be an array of paths or objects")
	}

	attachments := make([]submission.Attachment, 0, len(raw))
	for i, item := range raw {
		switch v := item.(type) {
		case string:
			attachments = append(attachments, submission.Attachment{Path: v})
		case map[string]any:
			att := submission.Attachment{
				Path:      stringArg(v, "path"),
				Name:      stringArg(v, "name"),
				MediaType: stringArg(v, "media_type"),
			}
			if att.Path == "" {
				return nil, fmt.Errorf("attachment %d: path is required", i+1)
			}
			attachments = append(attachments, att)
		default:
			return nil, fmt.Errorf("attachment %d: expected a path or an object", i+1)
		}
	}
	return attachments, nil
}

// Formatting methods
func (s *Server) formatReadabilityResult(result *pdf.ReadabilityResult) string {
	text := fmt.Sprintf("Reading Level: %s\n", result.Label)
	if result.Available {
		text += fmt.Sprintf("Flesch-Kincaid grade: %.2f\n", result.Grade)
	}
	text += fmt.Sprintf("Sentences: %d\n", result.Stats.Sentences)
	text += fmt.Sprintf("Words: %d\n", result.Stats.Words)
	text += fmt.Sprintf("Syllables: %d\n", result.Stats.Syllables)
	return text
}

func (s *Server) formatFeedback(fb readability.Feedback) string {
	text := fmt.Sprintf("Reading Level: %s\n", fb.Label)
	if fb.Available {
		text += fmt.Sprintf("Flesch-Kincaid grade: %.2f\n", fb.Grade)
		if fb.Grade >= s.pdfService.Threshold() {
			text += fmt.Sprintf("⚠️  At or above grade %.0f; consider simplifying the text\n", s.pdfService.Threshold())
		}
	}
	text += fmt.Sprintf("Color: %s\n", fb.Color)
	return text
}

func (s *Server) formatPackageBuildResult(result *pdf.PackageBuildResult) string {
	text := fmt.Sprintf("Submission package written: %s\n", result.OutputPath)
	text += fmt.Sprintf("Submission ID: %s\n", result.SubmissionID)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Document Reading Level: %s\n", result.Readability.Label)
	if result.Combined != nil {
		text += fmt.Sprintf("Combined Reading Level: %s\n", result.Combined.Label)
	}

	if len(result.Included) > 0 {
		text += "\nIncluded:\n"
		for i, att := range result.Included {
			text += fmt.Sprintf("%d. %s (%s, %d page(s))\n", i+1, att.Name, att.Kind, att.Pages)
		}
	}
	if len(result.Skipped) > 0 {
		text += "\nSkipped:\n"
		for _, att := range result.Skipped {
			text += fmt.Sprintf("• %s: %s\n", att.Name, att.Reason)
		}
	}
	if len(result.Originals) > 0 {
		text += "\nOriginals copied:\n"
		for _, path := range result.Originals {
			text += fmt.Sprintf("• %s\n", path)
		}
	}
	if len(result.Warnings) > 0 {
		text += "\nWarnings:\n"
		for _, w := range result.Warnings {
			text += fmt.Sprintf("• %s\n", w)
		}
	}
	return text
}

func (s *Server) formatHistory(entries []ledger.Entry) string {
	if len(entries) == 0 {
		return "No submission packages recorded yet"
	}

	text := fmt.Sprintf("Recent submission packages (%d):\n", len(entries))
	for i, e := range entries {
		text += fmt.Sprintf("\n%d. %s\n", i+1, e.Applicant)
		text += fmt.Sprintf("   ID: %s\n", e.ID)
		text += fmt.Sprintf("   Built: %s\n", e.CreatedAt.Format(time.RFC3339))
		text += fmt.Sprintf("   Reading Level: %s\n", e.Label)
		text += fmt.Sprintf("   Output: %s (%d pages, %d attachments)\n", e.OutputPath, e.PageCount, e.AttachmentCount)
	}
	return text
}

func (s *Server) formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Work Directory: %s\n", result.WorkDirectory)
	text += fmt.Sprintf("📄 Package Name: %s\n", result.OutputName)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("📖 Reading Level Threshold: grade %.1f\n", result.Threshold)
	text += fmt.Sprintf("🗂️  Ledger: %s\n\n", enabledText(result.LedgerEnabled))

	if len(result.Uploads) > 0 {
		text += fmt.Sprintf("📂 Uploads (%d found):\n", len(result.Uploads))
		for i, file := range result.Uploads {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.Uploads)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%s, %d bytes)\n", i+1, file.Name, file.Kind, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Uploads: No supported files found in the work directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n📎 Supported Formats: " + strings.Join(result.SupportedFormats, ", ") + "\n"
	text += "\n" + result.UsageGuidance

	return text
}

func enabledText(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug("starting MCP server in stdio mode", "work_directory", s.config.WorkDirectory)

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server in SSE mode", "address", addr)
		errCh <- sseServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}
