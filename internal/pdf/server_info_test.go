package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/irb-packager/internal/descriptions"
)

func TestUploadScanner_Scan(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "protocol.pdf", []byte("%PDF-1.7"))
	writeFixture(t, root, "scan.png", pngFixture(t, 4, 4))
	writeFixture(t, root, "notes.txt", []byte("notes"))
	writeFixture(t, root, "original-consent.docx", docxFixture(t, "copy"))
	writeFixture(t, root, ".hidden.pdf", []byte("%PDF-1.7"))

	nested := filepath.Join(root, "appendix")
	require.NoError(t, os.Mkdir(nested, 0o755))
	writeFixture(t, nested, "consent.docx", docxFixture(t, "text"))

	result, err := NewUploadScanner(3, 0, 0).Scan(context.Background(), root)
	require.NoError(t, err)

	names := map[string]string{}
	for _, f := range result.Files {
		names[f.Name] = f.Kind
	}
	assert.Equal(t, map[string]string{
		"protocol.pdf": "pdf",
		"scan.png":     "png",
		"consent.docx": "word",
	}, names)
	assert.False(t, result.Truncated)
}

func TestUploadScanner_Exclude(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "protocol.pdf", []byte("%PDF-1.7"))
	writeFixture(t, root, "submission-package.pdf", []byte("%PDF-1.7"))
	nested := filepath.Join(root, "drafts")
	require.NoError(t, os.Mkdir(nested, 0o755))
	writeFixture(t, nested, "submission-package.pdf", []byte("%PDF-1.7"))

	result, err := NewUploadScanner(3, 0, 0).Exclude("submission-package.pdf").Scan(context.Background(), root)
	require.NoError(t, err)

	var paths []string
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "protocol.pdf"),
		filepath.Join(nested, "submission-package.pdf"),
	}, paths)
}

func TestUploadScanner_Limits(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		writeFixture(t, root, name, []byte("%PDF-1.7"))
	}
	deep := filepath.Join(root, "one", "two")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	writeFixture(t, deep, "deep.pdf", []byte("%PDF-1.7"))

	t.Run("file limit", func(t *testing.T) {
		result, err := NewUploadScanner(0, 2, 0).Scan(context.Background(), root)
		require.NoError(t, err)
		assert.Len(t, result.Files, 2)
		assert.True(t, result.Truncated)
	})

	t.Run("depth limit", func(t *testing.T) {
		result, err := NewUploadScanner(2, 0, 0).Scan(context.Background(), root)
		require.NoError(t, err)
		for _, f := range result.Files {
			assert.NotEqual(t, "deep.pdf", f.Name)
		}
		assert.Len(t, result.Files, 3)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewUploadScanner(0, 0, 0).Scan(ctx, root)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDirectoryCache(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cache := NewDirectoryCache(time.Minute)
	cache.now = func() time.Time { return now }

	assert.Nil(t, cache.Get("/work"))

	cache.Set("/work", &ScanResult{Files: []UploadFileInfo{{Name: "a.pdf"}}})
	got := cache.Get("/work")
	require.NotNil(t, got)
	assert.True(t, got.FromCache)
	assert.Len(t, got.Files, 1)

	now = now.Add(2 * time.Minute)
	assert.Nil(t, cache.Get("/work"), "entry should expire after the TTL")

	cache.Set("/work", &ScanResult{})
	cache.Invalidate("/work")
	assert.Nil(t, cache.Get("/work"))
}

func TestServerInfo_GetServerInfo(t *testing.T) {
	svc, dir := newTestService(t, nil)
	writeFixture(t, dir, "protocol.pdf", []byte("%PDF-1.7"))
	writeFixture(t, dir, svc.OutputName(), []byte("%PDF-1.7"))

	info := NewServerInfo(svc)
	result, err := info.GetServerInfo(context.Background(), "irb-packager", "1.2.3", true)
	require.NoError(t, err)

	assert.Equal(t, "irb-packager", result.ServerName)
	assert.Equal(t, "1.2.3", result.Version)
	assert.Equal(t, svc.WorkDirectory(), result.WorkDirectory)
	assert.Equal(t, "submission-package.pdf", result.OutputName)
	assert.True(t, result.LedgerEnabled)
	assert.Equal(t, []string{"png", "jpeg", "pdf", "word"}, result.SupportedFormats)
	require.Len(t, result.Uploads, 1)
	assert.Equal(t, "protocol.pdf", result.Uploads[0].Name)

	require.Len(t, result.AvailableTools, len(descriptions.ToolNames))
	for i, tool := range result.AvailableTools {
		assert.Equal(t, descriptions.ToolNames[i], tool.Name)
		assert.NotEmpty(t, tool.Parameters, tool.Name)
	}
	assert.Contains(t, result.UsageGuidance, svc.WorkDirectory())

	// Cached until invalidated
	writeFixture(t, dir, "second.pdf", []byte("%PDF-1.7"))
	result, err = info.GetServerInfo(context.Background(), "irb-packager", "1.2.3", true)
	require.NoError(t, err)
	assert.Len(t, result.Uploads, 1)

	info.Invalidate()
	result, err = info.GetServerInfo(context.Background(), "irb-packager", "1.2.3", true)
	require.NoError(t, err)
	assert.Len(t, result.Uploads, 2)
}
