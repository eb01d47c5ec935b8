package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/client/services"
)

func (a *App) Merge(ctx context.Context) error {
	out, err := a.toolService.Merge(ctx)
	if err != nil {
		return err
	}
	a.showOutcome(out)
	return nil
}

// Compress takes an optional level: low, medium or high.
func (a *App) Compress(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usage("compress [low|medium|high]")
	}
	level := ""
	if len(args) == 1 {
		level = args[0]
	}
	out, err := a.toolService.Compress(ctx, level)
	if err != nil {
		return err
	}
	a.showOutcome(out)
	return nil
}

// Protect reads the document password twice. Permissions come from the
// arguments: a printing level (none, low, high) and any of modify, copy,
// forms.
func (a *App) Protect(ctx context.Context, args []string) error {
	perms, err := parsePermissions(args)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Document password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Repeat password")
	if err != nil {
		return err
	}

	out, err := a.toolService.Protect(ctx, password, confirm, perms)
	if err != nil {
		return err
	}
	a.showOutcome(out)
	return nil
}

func parsePermissions(args []string) (models.Permissions, error) {
	perms := models.DefaultPermissions()
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "none":
			perms.Printing = models.PrintingNone
		case "low":
			perms.Printing = models.PrintingLow
		case "high":
			perms.Printing = models.PrintingHigh
		case "modify":
			perms.Modifying = true
		case "copy":
			perms.Copying = true
		case "forms":
			perms.FormFilling = true
		default:
			return perms, usage("protect [none|low|high] [modify] [copy] [forms]")
		}
	}
	return perms, nil
}

func (a *App) showOutcome(out *services.ToolOutcome) {
	if out.Message != "" {
		a.printf("%s\n", out.Message)
	}
	for _, p := range out.Saved {
		a.printf("Saved %s\n", p)
	}
	a.lastItems = out.Items
	for i, it := range out.Items {
		a.printf("%2d. %s  %s, ~%d pages\n", i+1, it.FileName, humanSize(it.SizeKB*1024), it.EstimatedPages)
	}
	if len(out.Items) > 0 {
		a.printf("Use 'download <n>' or 'download all' to save the results\n")
	}
}

// Download saves results of the last tool run.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(a.lastItems) == 0 {
		a.printf("Nothing to download, run a tool first\n")
		return nil
	}
	if len(args) != 1 {
		return usage("download <n|all>")
	}

	var picked []models.DownloadItem
	if args[0] == "all" {
		picked = a.lastItems
	} else {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(a.lastItems) {
			return usage(fmt.Sprintf("download <1..%d|all>", len(a.lastItems)))
		}
		picked = a.lastItems[n-1 : n]
	}

	for _, it := range picked {
		path, err := a.toolService.Download(ctx, it)
		if err != nil {
			return err
		}
		a.printf("Saved %s\n", path)
	}
	return nil
}

func humanSize(b int64) string {
	switch {
	case b < 0:
		return "?"
	case b < 1024:
		return fmt.Sprintf("%d B", b)
	case b < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(b)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(b)/(1024*1024))
	}
}
