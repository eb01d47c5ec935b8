package cli

import (
	"context"
	"strings"
)

const recentLimit = 5

// Recent lists the newest documents of the dashboard.
func (a *App) Recent(ctx context.Context) error {
	list, err := a.chatService.RecentFiles(ctx, recentLimit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No documents yet\n")
		return nil
	}
	for _, f := range list {
		created := "unknown date"
		if c := f.Created(); !c.IsZero() {
			created = c.Format(dateLayout)
		}
		a.printf("%-40s %s  %s\n", f.DisplayName(), created, f.URL)
	}
	return nil
}

func (a *App) Conversations(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("conversations <collection>")
	}
	list, err := a.chatService.Conversations(ctx, args[0])
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No conversations\n")
	}
	for _, c := range list {
		a.printf("%s  %s\n", c.ID, c.Title)
	}
	return nil
}

func (a *App) NewConversation(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("newconv <collection> [title]")
	}
	conv, err := a.chatService.NewConversation(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	a.printf("Created conversation %s (%s)\n", conv.ID, conv.Title)
	return nil
}

func (a *App) Documents(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("docs <collection>")
	}
	list, err := a.chatService.Documents(ctx, args[0])
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No documents in the collection\n")
	}
	for _, d := range list {
		a.printf("%s  %-40s %s\n", d.ID, d.FileName, d.Status)
	}
	return nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("upload <collection> <file.pdf>")
	}
	if _, err := a.chatService.Upload(ctx, args[0], args[1]); err != nil {
		return err
	}
	a.printf("Uploaded %s\n", args[1])
	return nil
}

func (a *App) Messages(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("messages <conversation>")
	}
	list, err := a.chatService.Messages(ctx, args[0])
	if err != nil {
		return err
	}
	for _, m := range list {
		a.printf("[%s] %s\n", m.Author(), m.Content())
	}
	return nil
}

// Ask sends a question. A conversation id of "-" lets the backend start a
// new one.
func (a *App) Ask(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usage("ask <collection> <conversation|-> <question>")
	}
	conv := args[1]
	if conv == "-" {
		conv = ""
	}
	answer, err := a.chatService.Ask(ctx, args[0], conv, strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	a.printf("%s\n", answer)
	return nil
}
