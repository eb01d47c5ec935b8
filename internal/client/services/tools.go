package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/files"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/client/quota"
	"github.com/dmitrijs2005/pdfier/internal/common"
	"github.com/dmitrijs2005/pdfier/internal/filex"
	"github.com/dmitrijs2005/pdfier/internal/logging"
	"github.com/dmitrijs2005/pdfier/internal/netx"
)

// ToolService runs the quota-limited PDF tools over the current selection.
//
// Every run validates locally first, then reserves one unit of quota, then
// uploads. A confirmed backend rejection gives the unit back. The selection
// is cleared only when the run succeeds.
type ToolService interface {
	Merge(ctx context.Context) (*ToolOutcome, error)
	Compress(ctx context.Context, level string) (*ToolOutcome, error)
	Protect(ctx context.Context, password, confirm string, perms models.Permissions) (*ToolOutcome, error)
	Download(ctx context.Context, item models.DownloadItem) (string, error)
}

// ToolOutcome lists the result files. Saved holds paths of results the
// backend returned inline, already written to the download directory.
type ToolOutcome struct {
	Tool    models.Tool
	Items   []models.DownloadItem
	Saved   []string
	Message string
}

// Accountant is the quota contract used by the tools.
type Accountant interface {
	Reserve(ctx context.Context) (*quota.Reservation, error)
	Reconcile(ctx context.Context, usage *models.UsageMetrics)
}

type toolService struct {
	api         client.ToolsAPI
	downloads   client.DownloadAPI
	acct        Accountant
	selection   *files.Selection
	downloadDir string
	log         logging.Logger
}

// NewToolService wires the tools to the backend, the quota accountant and
// the shared file selection. Results are saved under downloadDir.
func NewToolService(api client.ToolsAPI, downloads client.DownloadAPI, acct Accountant, sel *files.Selection, downloadDir string, log logging.Logger) ToolService {
	if log == nil {
		log = logging.Nop()
	}
	return &toolService{
		api:         api,
		downloads:   downloads,
		acct:        acct,
		selection:   sel,
		downloadDir: downloadDir,
		log:         log.With("component", "tools"),
	}
}

func (s *toolService) Merge(ctx context.Context) (*ToolOutcome, error) {
	selected := s.selection.List()
	if len(selected) < 2 {
		return nil, fmt.Errorf("%w: select at least two PDF files to merge", common.ErrValidation)
	}
	return s.run(ctx, models.ToolMerge, selected, func(ups []client.Upload) (*models.ToolResult, error) {
		return s.api.Merge(ctx, ups)
	})
}

func (s *toolService) Compress(ctx context.Context, level string) (*ToolOutcome, error) {
	selected := s.selection.List()
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: select at least one PDF file to compress", common.ErrValidation)
	}
	lvl, err := models.ParseCompressionLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return s.run(ctx, models.ToolCompress, selected, func(ups []client.Upload) (*models.ToolResult, error) {
		return s.api.Compress(ctx, ups, lvl)
	})
}

func (s *toolService) Protect(ctx context.Context, password, confirm string, perms models.Permissions) (*ToolOutcome, error) {
	selected := s.selection.List()
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: select at least one PDF file to protect", common.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if password != confirm {
		return nil, common.ErrPasswordMismatch
	}
	if perms.Printing == "" {
		perms.Printing = models.PrintingHigh
	}
	return s.run(ctx, models.ToolProtect, selected, func(ups []client.Upload) (*models.ToolResult, error) {
		return s.api.Protect(ctx, ups, password, perms)
	})
}

func (s *toolService) run(ctx context.Context, tool models.Tool, selected []files.File, call func([]client.Upload) (*models.ToolResult, error)) (*ToolOutcome, error) {
	uploads, err := files.ReadUploads(selected)
	if err != nil {
		return nil, err
	}

	res, err := s.acct.Reserve(ctx)
	if err != nil {
		return nil, err
	}

	result, err := call(uploads)
	if err != nil {
		res.Settle(ctx, err)
		s.log.Warn(ctx, "tool failed", "tool", tool, "files", len(uploads), "error", err)
		return nil, fmt.Errorf("%s failed: %w", tool, err)
	}

	s.acct.Reconcile(ctx, result.UserUsage)

	out := &ToolOutcome{Tool: tool, Message: result.Message}
	if len(result.Inline) > 0 {
		path, err := s.saveInline(tool, result)
		if err != nil {
			return nil, err
		}
		out.Saved = append(out.Saved, path)
	}
	for i, u := range result.DownloadURLs {
		out.Items = append(out.Items, s.describe(ctx, tool, i, u))
	}

	s.selection.Clear()
	s.log.Info(ctx, "tool done", "tool", tool, "files", len(uploads), "results", len(out.Items)+len(out.Saved))
	return out, nil
}

// resultName follows the "<tool>ed-document-N.pdf" naming of the download
// page.
func resultName(tool models.Tool, i int) string {
	verb := strings.TrimSuffix(string(tool), "e") + "ed"
	return fmt.Sprintf("%s-document-%d.pdf", verb, i+1)
}

func (s *toolService) describe(ctx context.Context, tool models.Tool, i int, rawURL string) models.DownloadItem {
	item := models.DownloadItem{
		URL:      netx.WithScheme(rawURL),
		FileName: resultName(tool, i),
	}
	kb, pages, err := s.downloads.FileMetadata(ctx, item.URL)
	if err != nil {
		s.log.Debug(ctx, "result metadata unavailable", "url", item.URL, "error", err)
	}
	item.SizeKB, item.EstimatedPages = kb, pages
	return item
}

func (s *toolService) saveInline(tool models.Tool, result *models.ToolResult) (string, error) {
	dir, err := filex.EnsureDir(s.downloadDir)
	if err != nil {
		return "", err
	}
	name := result.InlineName
	if name == "" {
		name = resultName(tool, 0)
	}
	path := filex.FreePath(dir, name)
	if err := os.WriteFile(path, result.Inline, 0o600); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

// Download saves one result file into the download directory and returns
// its path. A partial file is removed on failure.
func (s *toolService) Download(ctx context.Context, item models.DownloadItem) (string, error) {
	dir, err := filex.EnsureDir(s.downloadDir)
	if err != nil {
		return "", err
	}
	name := item.FileName
	if name == "" {
		name = netx.BaseName(item.URL)
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	path := filex.FreePath(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := s.downloads.Download(ctx, item.URL, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
