package cli

import (
	"context"
)

// AddFiles puts PDFs on the selection. Non-PDF paths are reported and skipped.
func (a *App) AddFiles(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("add <file.pdf>...")
	}
	added, rejected := a.selection.Add(args...)
	for _, r := range rejected {
		a.printf("Skipped %s: %s\n", r.Path, r.Reason)
	}
	for _, f := range added {
		a.printf("Added %s (%s)\n", f.Name, humanSize(f.Size))
	}
	return nil
}

func (a *App) ListFiles(ctx context.Context) error {
	list := a.selection.List()
	if len(list) == 0 {
		a.printf("No files selected\n")
		return nil
	}
	for i, f := range list {
		a.printf("%2d. %-40s %10s  %s\n", i+1, f.Name, humanSize(f.Size), f.ID[:8])
	}
	return nil
}

// RemoveFile takes a 1-based position or an id prefix.
func (a *App) RemoveFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("remove <n|id>")
	}
	f, ok := a.selection.Remove(args[0])
	if !ok {
		a.printf("No such file: %s\n", args[0])
		return nil
	}
	a.printf("Removed %s\n", f.Name)
	return nil
}

// MoveFile changes the merge order by one position.
func (a *App) MoveFile(ctx context.Context, args []string, up bool) error {
	if len(args) != 1 {
		if up {
			return usage("up <n|id>")
		}
		return usage("down <n|id>")
	}
	var moved bool
	if up {
		moved = a.selection.MoveUp(args[0])
	} else {
		moved = a.selection.MoveDown(args[0])
	}
	if !moved {
		a.printf("Cannot move %s\n", args[0])
		return nil
	}
	return a.ListFiles(ctx)
}

func (a *App) ClearFiles(ctx context.Context) error {
	a.selection.Clear()
	a.printf("Selection cleared\n")
	return nil
}
