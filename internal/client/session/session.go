// Package session holds the process-wide session: who the visitor is, whether
// they are logged in, and the guest's local usage counter. It restores the
// session at startup by validating the access token, refreshing it when it
// has expired and falling back to a guest otherwise.
package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/logging"
	"github.com/dmitrijs2005/pdfier/internal/timex"
)

// Session is the contract consumed by services and the CLI.
type Session interface {
	InitializeAuth(ctx context.Context) models.State
	Login(ctx context.Context, user models.User, refreshToken, accessToken string) error
	Logout(ctx context.Context)
	UpdateUserUsage(ctx context.Context, m models.UsageMetrics)
	UpdateGuestUsage(ctx context.Context, n int)
	ResetGuestUsage(ctx context.Context, day time.Time)
	State() models.State
}

// API is the part of the backend the initializer talks to.
type API interface {
	Me(ctx context.Context, accessToken string) (*models.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Credentials is the part of the credential store the session needs.
type Credentials interface {
	SetAccess(ctx context.Context, token string) error
	SetPair(ctx context.Context, refresh, access string) error
	Clear(ctx context.Context) error
	Access(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// Reloader is told when a refreshed access token was stored and the
// session is about to be re-established with it.
type Reloader interface {
	Reload(ctx context.Context)
}

// ReloadFunc adapts a function to Reloader.
type ReloadFunc func(ctx context.Context)

func (f ReloadFunc) Reload(ctx context.Context) { f(ctx) }

// DefaultGuestLimit is the guest's daily PDF allowance.
const DefaultGuestLimit = 10

// Config carries the Manager's dependencies. Store, Logger, Now and Reloader
// are optional.
type Config struct {
	Credentials Credentials
	API         API
	Store       StateStore
	Logger      logging.Logger
	Now         func() time.Time
	GuestLimit  int
	Reloader    Reloader
}

// Manager implements Session. All state access goes through mu.
type Manager struct {
	creds      Credentials
	api        API
	store      StateStore
	log        logging.Logger
	now        func() time.Time
	guestLimit int
	reloader   Reloader

	group singleflight.Group

	mu    sync.Mutex
	state models.State
}

var _ Session = (*Manager)(nil)

// NewManager builds the manager and rehydrates the last persisted state.
func NewManager(ctx context.Context, cfg Config) *Manager {
	m := &Manager{
		creds:      cfg.Credentials,
		api:        cfg.API,
		store:      cfg.Store,
		log:        cfg.Logger,
		now:        cfg.Now,
		guestLimit: cfg.GuestLimit,
		reloader:   cfg.Reloader,
	}
	if m.log == nil {
		m.log = logging.Nop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.guestLimit <= 0 {
		m.guestLimit = DefaultGuestLimit
	}
	if m.reloader == nil {
		m.reloader = ReloadFunc(func(context.Context) {})
	}
	m.log = m.log.With("component", "session")
	m.rehydrate(ctx)
	return m
}

func (m *Manager) rehydrate(ctx context.Context) {
	if m.store == nil {
		return
	}
	saved, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn(ctx, "persisted session unreadable, starting empty", "error", err)
		return
	}
	if saved == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = saved.Clone()
	if m.state.IsInitializing {
		m.log.Info(ctx, "clearing stale initializing flag")
		m.state.IsInitializing = false
	}
	if m.state.User.IsGuest() {
		m.state.User.Guest.UsageMetrics.PDFProcessedLimitDaily = m.guestLimit
	}
	if m.state.User == nil {
		m.state.IsLoggedIn = false
	}
}

// State returns a deep copy of the current state.
func (m *Manager) State() models.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// mutate applies fn under the lock and persists the result when fn reports a
// change. Persistence errors are logged.
func (m *Manager) mutate(ctx context.Context, fn func(s *models.State) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !fn(&m.state) {
		return
	}
	if m.store == nil {
		return
	}
	if err := m.store.Save(ctx, m.state.Clone()); err != nil {
		m.log.Error(ctx, "persist session failed", "error", err)
	}
}

func (m *Manager) newGuest() *models.SessionUser {
	return models.GuestSession(*models.NewGuestUser(m.guestLimit, m.now()))
}

// becomeGuest sets a logged-out guest state. An existing guest record is
// kept with its counters so re-initializing cannot reset the allowance.
func (m *Manager) becomeGuest(s *models.State) {
	s.IsLoggedIn = false
	if !s.User.IsGuest() {
		s.User = m.newGuest()
	}
}

// Login stores both tokens, then commits the member as logged in. It makes
// no network call. Nothing changes when the tokens cannot be stored.
func (m *Manager) Login(ctx context.Context, user models.User, refreshToken, accessToken string) error {
	if err := m.creds.SetPair(ctx, refreshToken, accessToken); err != nil {
		m.log.Error(ctx, "store credentials failed", "error", err)
		return err
	}
	m.mutate(ctx, func(s *models.State) bool {
		s.User = models.MemberSession(user)
		s.IsLoggedIn = true
		return true
	})
	m.log.Info(ctx, "logged in", "user", user.Name, "plan", user.PlanType)
	return nil
}

// Logout clears the tokens and leaves a guest behind. It never fails and
// can be called any number of times.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.creds.Clear(ctx); err != nil {
		m.log.Error(ctx, "clear credentials failed", "error", err)
	}
	m.mutate(ctx, func(s *models.State) bool {
		m.becomeGuest(s)
		return true
	})
	m.log.Info(ctx, "logged out")
}

// UpdateUserUsage replaces a member's usage and bumps updated_at. Guests and
// an empty session are left alone.
func (m *Manager) UpdateUserUsage(ctx context.Context, metrics models.UsageMetrics) {
	m.mutate(ctx, func(s *models.State) bool {
		if !s.User.IsMember() {
			return false
		}
		s.User.Member.UsageMetrics = metrics
		s.User.Member.UpdatedAt = models.NewTimestamp(m.now())
		return true
	})
}

// UpdateGuestUsage sets the guest's processed-today counter. Members are
// left alone.
func (m *Manager) UpdateGuestUsage(ctx context.Context, n int) {
	m.mutate(ctx, func(s *models.State) bool {
		if !s.User.IsGuest() {
			return false
		}
		s.User.Guest.UsageMetrics.PDFProcessedToday = n
		return true
	})
}

// ResetGuestUsage zeroes the guest's daily counter and stamps day as the
// reset date.
func (m *Manager) ResetGuestUsage(ctx context.Context, day time.Time) {
	m.mutate(ctx, func(s *models.State) bool {
		if !s.User.IsGuest() {
			return false
		}
		s.User.Guest.UsageMetrics.PDFProcessedToday = 0
		s.User.Guest.UsageMetrics.LastQuotaResetDate = models.NewTimestamp(timex.StartOfDay(day))
		return true
	})
}
