// Package devserver runs a self-contained pdfier backend for local work
// and end-to-end tests. Accounts, tokens, results and chat history live in
// memory and are lost on exit.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pdfier/internal/devserver/config"
	"github.com/dmitrijs2005/pdfier/internal/devserver/handlers"
	"github.com/dmitrijs2005/pdfier/internal/devserver/store"
	"github.com/dmitrijs2005/pdfier/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	store  *store.Store
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, os.Stdout, false)
	return &App{config: c, logger: logger, store: store.New(time.Now)}, nil
}

// NewRouter builds the gin engine serving the API from st.
func NewRouter(c *config.Config, log logging.Logger, st *store.Store) *gin.Engine {
	router := gin.New()
	router.Use(handlers.RequestID(), handlers.Logger(log), gin.Recovery())
	handlers.NewHandlerSet(c, log, st).Register(router)
	return router
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddr,
		Handler:           NewRouter(app.config, app.logger.With("module", "http_server"), app.store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr, "public_url", app.config.PublicURL)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	gin.SetMode(gin.ReleaseMode)
	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
