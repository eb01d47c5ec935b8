// Package credentials keeps the access and refresh tokens as cookies in the
// local cookie jar. Nothing is cached in memory: every read goes to the jar,
// so a write made by another process on the same database is seen on the
// next call.
package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pdfier/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/pdfier/internal/common"
	"github.com/dmitrijs2005/pdfier/internal/dbx"
)

// Store is the credential contract used by the session and the transport.
// Getters return "" when the cookie is absent or expired.
type Store interface {
	SetAccess(ctx context.Context, token string) error
	SetRefresh(ctx context.Context, token string) error
	SetPair(ctx context.Context, refresh, access string) error
	Clear(ctx context.Context) error
	Access(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
	Cookies(ctx context.Context) ([]*http.Cookie, error)
}

// Options controls cookie attributes.
type Options struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// CookieStore is the Store over the SQLite cookie jar.
type CookieStore struct {
	db   *sql.DB
	jar  cookies.Repository
	opts Options
}

// NewCookieStore builds a store on db. Zero TTLs fall back to 7h and 90 days.
func NewCookieStore(db *sql.DB, opts Options) *CookieStore {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 7 * time.Hour
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 90 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CookieStore{db: db, jar: cookies.NewSQLiteRepository(db), opts: opts}
}

func (s *CookieStore) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  s.opts.Now().Add(ttl),
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *CookieStore) SetAccess(ctx context.Context, token string) error {
	return s.jar.Put(ctx, s.cookie(common.AccessTokenCookie, token, s.opts.AccessTTL))
}

func (s *CookieStore) SetRefresh(ctx context.Context, token string) error {
	return s.jar.Put(ctx, s.cookie(common.RefreshTokenCookie, token, s.opts.RefreshTTL))
}

// SetPair writes both cookies in one transaction.
func (s *CookieStore) SetPair(ctx context.Context, refresh, access string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		jar := cookies.NewSQLiteRepository(tx)
		if err := jar.Put(ctx, s.cookie(common.RefreshTokenCookie, refresh, s.opts.RefreshTTL)); err != nil {
			return err
		}
		return jar.Put(ctx, s.cookie(common.AccessTokenCookie, access, s.opts.AccessTTL))
	})
}

// Clear removes both cookies. Missing cookies are not an error.
func (s *CookieStore) Clear(ctx context.Context) error {
	return s.jar.Delete(ctx, common.AccessTokenCookie, common.RefreshTokenCookie)
}

func (s *CookieStore) Access(ctx context.Context) (string, error) {
	return s.read(ctx, common.AccessTokenCookie)
}

func (s *CookieStore) Refresh(ctx context.Context) (string, error) {
	return s.read(ctx, common.RefreshTokenCookie)
}

func (s *CookieStore) read(ctx context.Context, name string) (string, error) {
	c, err := s.jar.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if c == nil {
		return "", nil
	}
	if s.expired(c) {
		if err := s.jar.Delete(ctx, name); err != nil {
			return "", fmt.Errorf("purge %s: %w", name, err)
		}
		return "", nil
	}
	return c.Value, nil
}

func (s *CookieStore) expired(c *http.Cookie) bool {
	return !c.Expires.IsZero() && !s.opts.Now().Before(c.Expires)
}

// Cookies returns the unexpired cookies of the jar.
func (s *CookieStore) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	all, err := s.jar.List(ctx)
	if err != nil {
		return nil, err
	}
	live := make([]*http.Cookie, 0, len(all))
	for _, c := range all {
		if !s.expired(c) {
			live = append(live, c)
		}
	}
	return live, nil
}
