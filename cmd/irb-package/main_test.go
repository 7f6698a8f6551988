package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/irb-packager/internal/ledger"
	"github.com/a3tai/irb-packager/internal/pdf"
)

const testManifest = `form:
  name: Ada Lovelace
  email: ada@example.org
  consent_text: You may stop at any time. We keep your answers safe.
  study_info_text: The study lasts two weeks.
  not_robot: true
attachments:
  - path: protocol.pdf
  - path: notes.txt
`

func writeManifestDir(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()

	protocol, err := pdf.RenderTextPages(pdf.SummaryPage("Protocol"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "protocol.pdf"), protocol, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "submission.yaml"), []byte(manifest), 0o644))
	return dir
}

func TestRunText(t *testing.T) {
	dir := writeManifestDir(t, testManifest)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{filepath.Join(dir, "submission.yaml")}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Package: "+filepath.Join(dir, "submission-package.pdf"))
	assert.Contains(t, out, "Pages: 3")
	assert.Contains(t, out, "  + protocol.pdf (pdf, 1 page(s))")
	assert.Contains(t, out, "  - notes.txt: unsupported file type")
	assert.FileExists(t, filepath.Join(dir, "submission-package.pdf"))
}

func TestRunJSONWithLedger(t *testing.T) {
	dir := writeManifestDir(t, testManifest)
	ledgerPath := filepath.Join(t.TempDir(), "ledger.db")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{
		"--format", "json",
		"--output", "ada.pdf",
		"--ledger", ledgerPath,
		filepath.Join(dir, "submission.yaml"),
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var result pdf.PackageBuildResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, filepath.Join(dir, "ada.pdf"), result.OutputPath)
	assert.Len(t, result.Included, 1)
	assert.Len(t, result.Skipped, 1)

	l, err := ledger.Open(ledgerPath)
	require.NoError(t, err)
	defer l.Close()
	entries, err := l.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.SubmissionID, entries[0].ID)
	assert.Equal(t, "Ada Lovelace", entries[0].Applicant)
}

func TestRunErrors(t *testing.T) {
	robotless := writeManifestDir(t, `form:
  name: Ada
attachments:
  - path: protocol.pdf
`)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "no manifest", args: nil, wantCode: 2, wantErr: "exactly one manifest file is required"},
		{name: "bad format", args: []string{"--format", "xml", "m.yaml"}, wantCode: 2, wantErr: "invalid format"},
		{name: "unknown flag", args: []string{"--nope", "m.yaml"}, wantCode: 2},
		{name: "zero threshold", args: []string{"--threshold", "0", "m.yaml"}, wantCode: 2, wantErr: "threshold must be positive"},
		{name: "negative threshold", args: []string{"--threshold=-4", "m.yaml"}, wantCode: 2, wantErr: "threshold must be positive"},
		{name: "missing manifest", args: []string{filepath.Join(t.TempDir(), "missing.yaml")}, wantCode: 1, wantErr: "read manifest"},
		{name: "robot not confirmed", args: []string{filepath.Join(robotless, "submission.yaml")}, wantCode: 1, wantErr: "not a robot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantErr != "" {
				assert.Contains(t, stderr.String(), tt.wantErr)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--help"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "irb-package [OPTIONS] <manifest.yaml>")
}
