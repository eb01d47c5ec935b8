package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/config"
	"github.com/dmitrijs2005/pdfier/internal/client/credentials"
	"github.com/dmitrijs2005/pdfier/internal/client/files"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/client/quota"
	"github.com/dmitrijs2005/pdfier/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdfier/internal/client/services"
	"github.com/dmitrijs2005/pdfier/internal/client/session"
	"github.com/dmitrijs2005/pdfier/internal/client/storage"
	"github.com/dmitrijs2005/pdfier/internal/logging"
)

// sessionView is what the REPL needs from the session.
type sessionView interface {
	InitializeAuth(ctx context.Context) models.State
	State() models.State
}

type App struct {
	config    *config.Config
	db        *sql.DB
	log       logging.Logger
	session   sessionView
	scheduler *quota.Scheduler

	authService services.AuthService
	toolService services.ToolService
	chatService services.ChatService
	selection   *files.Selection

	// results of the last tool run, numbered for "download"
	lastItems []models.DownloadItem

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and wires the session, quota and services
// to the backend named in c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogFormat, os.Stderr, c.Debug)

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	creds := credentials.NewCookieStore(db, credentials.Options{
		Secure:     c.Production(),
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	})
	api := client.NewHTTPClient(c.BackendURL, creds)

	mgr := session.NewManager(ctx, session.Config{
		Credentials: creds,
		API:         api,
		Store:       session.NewMetadataStore(metadata.NewSQLiteRepository(db)),
		Logger:      log,
		GuestLimit:  c.GuestDailyLimit,
		Reloader: session.ReloadFunc(func(ctx context.Context) {
			log.Info(ctx, "access token refreshed, reloading session")
		}),
	})

	acct := quota.NewAccountant(mgr, log, nil)
	sel := files.NewSelection()

	return &App{
		config:      c,
		db:          db,
		log:         log,
		session:     mgr,
		scheduler:   quota.NewScheduler(acct, log, time.Local),
		authService: services.NewAuthService(api, mgr),
		toolService: services.NewToolService(api, api, acct, sel, c.DownloadDir, log),
		chatService: services.NewChatService(api, mgr),
		selection:   sel,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run starts session initialization in the background and blocks in the
// REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("start quota scheduler: %w", err)
	}
	defer a.scheduler.Stop()

	printlnFn("Welcome to pdfier CLI (type 'help' for commands)")

	go a.session.InitializeAuth(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsLoggedIn
}

// isReady reports whether initialization has settled the session as a guest
// or a member.
func (a *App) isReady() bool {
	switch a.session.State().Phase() {
	case "initializing", "uninitialized":
		return false
	}
	return true
}

// getStatus renders the prompt decoration: the lifecycle phase while it is
// not settled, then who is using the client.
func (a *App) getStatus() string {
	st := a.session.State()
	switch st.Phase() {
	case "initializing", "uninitialized":
		return "(initializing)"
	case "guest":
		u := st.User.Guest.UsageMetrics
		return fmt.Sprintf("(guest %d/%d)", u.PDFProcessedToday, u.PDFProcessedLimitDaily)
	default:
		return fmt.Sprintf("(%s %s)", st.User.DisplayName(), st.User.Plan())
	}
}
