package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isReady() bool

	Status(ctx context.Context) error
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Forgot(ctx context.Context) error
	Logout(ctx context.Context) error

	AddFiles(ctx context.Context, args []string) error
	ListFiles(ctx context.Context) error
	RemoveFile(ctx context.Context, args []string) error
	MoveFile(ctx context.Context, args []string, up bool) error
	ClearFiles(ctx context.Context) error

	Merge(ctx context.Context) error
	Compress(ctx context.Context, args []string) error
	Protect(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error

	Recent(ctx context.Context) error
	Conversations(ctx context.Context, args []string) error
	NewConversation(ctx context.Context, args []string) error
	Documents(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Messages(ctx context.Context, args []string) error
	Ask(ctx context.Context, args []string) error
}

const (
	helpCommon = "Available commands: status, add, files, remove, up, down, clear, merge, compress, protect, download, exit"
	helpGuest  = "Account: login, signup, forgot"
	helpMember = "Account: logout | Library: recent, conversations, newconv, docs, upload, messages, ask"
)

// sessionCommands either change who is logged in or spend quota, so they
// wait until the session has settled as a guest or a member.
var sessionCommands = map[string]bool{
	"login": true, "signup": true, "register": true, "forgot": true, "logout": true,
	"merge": true, "compress": true, "protect": true, "upload": true, "ask": true,
}

// errUsage marks a command called with the wrong arguments.
var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by handlers are printed and the loop continues. Backend
// rejections are shown by their detail message.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pdfier %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if sessionCommands[cmd] && !a.isReady() {
			printlnFn("Session is still initializing, try again in a moment")
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpCommon)
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}

		case "status":
			cmdErr = a.Status(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "signup", "register":
			cmdErr = a.Signup(ctx)
		case "forgot":
			cmdErr = a.Forgot(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)

		case "add":
			cmdErr = a.AddFiles(ctx, args)
		case "files", "ls":
			cmdErr = a.ListFiles(ctx)
		case "remove", "rm":
			cmdErr = a.RemoveFile(ctx, args)
		case "up":
			cmdErr = a.MoveFile(ctx, args, true)
		case "down":
			cmdErr = a.MoveFile(ctx, args, false)
		case "clear":
			cmdErr = a.ClearFiles(ctx)

		case "merge":
			cmdErr = a.Merge(ctx)
		case "compress":
			cmdErr = a.Compress(ctx, args)
		case "protect":
			cmdErr = a.Protect(ctx, args)
		case "download":
			cmdErr = a.Download(ctx, args)

		case "recent":
			cmdErr = a.Recent(ctx)
		case "conversations":
			cmdErr = a.Conversations(ctx, args)
		case "newconv":
			cmdErr = a.NewConversation(ctx, args)
		case "docs":
			cmdErr = a.Documents(ctx, args)
		case "upload":
			cmdErr = a.Upload(ctx, args)
		case "messages":
			cmdErr = a.Messages(ctx, args)
		case "ask":
			cmdErr = a.Ask(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", client.Message(cmdErr))
		}
	}
}
