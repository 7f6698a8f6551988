package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a3tai/irb-packager/internal/descriptions"
	"github.com/a3tai/irb-packager/internal/submission"
)

const (
	uploadCacheTTL   = time.Minute
	uploadScanDepth  = 3
	uploadScanLimit  = 100
	uploadScanTime   = 2 * time.Second
	modifiedTimeForm = "2006-01-02 15:04:05"
)

// DirectoryCache keeps upload listings for a short time
type DirectoryCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

type cacheEntry struct {
	scan       *ScanResult
	lastUpdate time.Time
}

// ScanResult is the outcome of one work directory scan
type ScanResult struct {
	Files     []UploadFileInfo
	FromCache bool
	Truncated bool
}

// NewDirectoryCache creates a cache whose entries expire after ttl
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached scan for path, or nil when missing or expired
func (c *DirectoryCache) Get(path string) *ScanResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || c.now().Sub(entry.lastUpdate) > c.ttl {
		return nil
	}
	cached := *entry.scan
	cached.FromCache = true
	return &cached
}

// Set stores a scan for path
func (c *DirectoryCache) Set(path string, scan *ScanResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{scan: scan, lastUpdate: c.now()}
}

// Invalidate drops the cached scan for path
func (c *DirectoryCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// UploadScanner lists files the packager can attach, with depth, count and time limits
type UploadScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
	excluded  map[string]bool
}

// NewUploadScanner creates a scanner with the given limits; zero disables a limit
func NewUploadScanner(maxDepth, fileLimit int, timeLimit time.Duration) *UploadScanner {
	return &UploadScanner{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
	}
}

// Exclude skips the given paths, relative to the scanned root
func (s *UploadScanner) Exclude(paths ...string) *UploadScanner {
	if s.excluded == nil {
		s.excluded = make(map[string]bool, len(paths))
	}
	for _, p := range paths {
		s.excluded[filepath.Clean(p)] = true
	}
	return s
}

// Scan walks root and returns supported uploads. Hidden entries, symlinks,
// original-* copies and excluded paths such as the package itself are skipped.
func (s *UploadScanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	result := &ScanResult{}
	start := time.Now()

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are left out of the listing
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if s.timeLimit > 0 && time.Since(start) > s.timeLimit {
			result.Truncated = true
			return filepath.SkipAll
		}

		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			if s.maxDepth > 0 && strings.Count(rel, string(filepath.Separator))+1 >= s.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if rel, _ := filepath.Rel(root, path); s.excluded[rel] || strings.HasPrefix(d.Name(), originalPrefix) {
			return nil
		}
		att := submission.Attachment{Path: path}
		kind := submission.DetectKind(d.Name(), att.ResolveMediaType())
		if !kind.Supported() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		result.Files = append(result.Files, UploadFileInfo{
			Name:         d.Name(),
			Path:         path,
			Kind:         kind.String(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format(modifiedTimeForm),
		})

		if s.fileLimit > 0 && len(result.Files) >= s.fileLimit {
			result.Truncated = true
			return filepath.SkipAll
		}
		return nil
	})

	return result, err
}

// ServerInfo builds server_info responses for a Service
type ServerInfo struct {
	service *Service
	cache   *DirectoryCache
	scanner *UploadScanner
}

// NewServerInfo creates a server info handler for service
func NewServerInfo(service *Service) *ServerInfo {
	return &ServerInfo{
		service: service,
		cache:   NewDirectoryCache(uploadCacheTTL),
		scanner: NewUploadScanner(uploadScanDepth, uploadScanLimit, uploadScanTime).Exclude(service.OutputName()),
	}
}

// GetServerInfo describes the server, its tools and the uploads in the work directory
func (p *ServerInfo) GetServerInfo(ctx context.Context, serverName, version string, ledgerEnabled bool) (*ServerInfoResult, error) {
	dir := p.service.WorkDirectory()

	scan := p.cache.Get(dir)
	if scan == nil {
		var err error
		scan, err = p.scanner.Scan(ctx, dir)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			scan = &ScanResult{}
		}
		p.cache.Set(dir, scan)
	}

	return &ServerInfoResult{
		ServerName:       serverName,
		Version:          version,
		WorkDirectory:    dir,
		OutputName:       p.service.OutputName(),
		MaxFileSize:      p.service.GetMaxFileSize(),
		Threshold:        p.service.Threshold(),
		LedgerEnabled:    ledgerEnabled,
		AvailableTools:   availableTools(),
		Uploads:          scan.Files,
		UploadsTruncated: scan.Truncated,
		SupportedFormats: SupportedFormats(),
		UsageGuidance:    p.usageGuidance(),
	}, nil
}

// Invalidate forgets the cached upload listing, e.g. after a package was written
func (p *ServerInfo) Invalidate() {
	p.cache.Invalidate(p.service.WorkDirectory())
}

// SupportedFormats lists the attachment kinds that make it into a package
func SupportedFormats() []string {
	return []string{
		submission.KindPNG.String(),
		submission.KindJPEG.String(),
		submission.KindPDF.String(),
		submission.KindWord.String(),
	}
}

func availableTools() []ToolInfo {
	params := map[string]string{
		"readability_score":    "text (required): text to score",
		"readability_feedback": "consent_text, study_info_text: current values of the two scored fields",
		"package_build": "name, email, contact, query, consent_text, study_info_text, " +
			"not_robot (required, must be true), attachments (required): paths inside the work directory, " +
			"output_name (optional)",
		"upload_validate":    "path (required): upload path, relative to the work directory or absolute inside it",
		"submission_history": "limit (optional): number of entries, newest first",
		"server_info":        "No parameters required",
	}

	tools := make([]ToolInfo, 0, len(descriptions.ToolNames))
	for _, name := range descriptions.ToolNames {
		tools = append(tools, ToolInfo{
			Name:        name,
			Description: descriptions.GetSummary(name),
			Parameters:  params[name],
		})
	}
	return tools
}

func (p *ServerInfo) usageGuidance() string {
	return fmt.Sprintf(`IRB Packager Usage Guide:

1. Place uploads in the work directory (%s).
2. Check each upload with 'upload_validate'. Files over %dMB are rejected.
3. Draft the consent and study information text with 'readability_feedback'.
   Labels at or above grade %.0f are flagged.
4. Build the package with 'package_build'. The robot confirmation and at
   least one attachment are required.
5. Review earlier packages with 'submission_history'.

Images become one page each, PDFs are merged in order and Word documents get a
notice page with the original copied beside the package.`,
		p.service.WorkDirectory(), p.service.GetMaxFileSize()/(1024*1024), p.service.Threshold())
}
