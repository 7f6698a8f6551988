package descriptions

// Tool descriptions with practical examples and use cases

const (
	// Readability Tools
	ReadabilityScoreDescription = `Score the reading level of a piece of text with the Flesch-Kincaid grade formula.

**When to use:** Need the grade level of one paragraph or document, such as a draft consent form.

**Why it's useful:** IRB reviewers expect participant-facing text at a plain reading level. The score shows how far a draft is from that target.

**Examples:**
• Check a consent paragraph: "Score the risks section of the consent form"
• Compare drafts: "Score both versions of the study summary and keep the simpler one"

**Returns:** grade level, band label such as "7-8 grade", and the sentence, word and syllable counts behind it. Text without a sentence or a word returns "No score available".`

	ReadabilityFeedbackDescription = `Recompute the live reading-level feedback for the consent and study information fields.

**When to use:** After every edit to either field, the way the submission form updates its label on each keystroke.

**Why it's useful:** Scores the two fields together, the same text the package summary page uses, and flags levels at or above the configured threshold.

**Examples:**
• Live feedback: "The consent text now reads ..., what level is the form at?"
• Threshold check: "Is the combined text still below grade 12?"

**Returns:** label, grade, display color and whether a score was available.`

	// Packaging Tools
	PackageBuildDescription = `Assemble an IRB submission package: cover page, attachments and a reading-level summary in one PDF.

**When to use:** The form is complete, the robot confirmation is ticked and the uploads are in the work directory.

**Why it's useful:** Produces the single PDF the IRB office accepts. Images become one page each, PDFs are merged in order, Word documents get a notice page and their original is copied beside the package.

**Examples:**
• Build a package: "Package the protocol.pdf and consent.docx uploads for Ada Lovelace"
• Custom name: "Build the package as lovelace-2026.pdf"

**Common workflows:**
1. upload_validate each file → readability_feedback on the text → package_build
2. package_build → submission_history to confirm it was recorded

**Best practices:** Validate uploads first. Unsupported files are skipped and listed in the response rather than failing the build.`

	UploadValidateDescription = `Check that an uploaded file can be packaged.

**When to use:** Before package_build, for each file the applicant attached.

**Why it's useful:** Catches corrupt PDFs, wrong extensions, oversize files and unsupported image types before the package is assembled.

**Examples:**
• Verify an upload: "Validate uploads/protocol.pdf"
• Check an image: "Is scan.gif something the package can include?"

**Returns:** the detected kind, media type, size, page count for PDFs and a message when invalid.`

	// History and Info Tools
	SubmissionHistoryDescription = `List recently built submission packages, newest first.

**When to use:** Need to confirm a package was built or find the output path of an earlier submission.

**Returns:** id, time, applicant, reading level and output path of each package. Empty when the ledger is disabled.`

	ServerInfoDescription = `Describe the server, its tools and the uploads currently in the work directory.

**When to use:** At the start of a session to discover the work directory and what can be attached.

**Returns:** server name and version, work directory, size limit, readability threshold, tool list, supported formats and a usage guide.`
)

// ToolNames lists the tools in the order they are registered
var ToolNames = []string{
	"readability_score",
	"readability_feedback",
	"package_build",
	"upload_validate",
	"submission_history",
	"server_info",
}

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"readability_score":    ReadabilityScoreDescription,
	"readability_feedback": ReadabilityFeedbackDescription,
	"package_build":        PackageBuildDescription,
	"upload_validate":      UploadValidateDescription,
	"submission_history":   SubmissionHistoryDescription,
	"server_info":          ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetSummary returns the first line of a tool description
func GetSummary(toolName string) string {
	desc := GetToolDescription(toolName)
	for i, r := range desc {
		if r == '\n' {
			return desc[:i]
		}
	}
	return desc
}

// GetAllToolNames returns a copy of the tool names in registration order
func GetAllToolNames() []string {
	return append([]string(nil), ToolNames...)
}
