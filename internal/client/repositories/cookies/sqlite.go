package cookies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pdfier/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, c *http.Cookie) error {
	path := c.Path
	if path == "" {
		path = "/"
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (name, value, path, expires_at, secure, same_site)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			path = excluded.path,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			same_site = excluded.same_site
	`, c.Name, c.Value, path, c.Expires.UnixMilli(), c.Secure, sameSiteName(c.SameSite))
	if err != nil {
		return fmt.Errorf("failed to put cookie[%s]: %w", c.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) (*http.Cookie, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, value, path, expires_at, secure, same_site FROM cookies WHERE name = ?
	`, name)
	c, err := scanCookie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie[%s]: %w", name, err)
	}
	return c, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name); err != nil {
			return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*http.Cookie, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, value, path, expires_at, secure, same_site FROM cookies ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer rows.Close()

	var result []*http.Cookie
	for rows.Next() {
		c, err := scanCookie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCookie(s scanner) (*http.Cookie, error) {
	var (
		c        http.Cookie
		expires  int64
		sameSite string
	)
	if err := s.Scan(&c.Name, &c.Value, &c.Path, &expires, &c.Secure, &sameSite); err != nil {
		return nil, err
	}
	c.Expires = time.UnixMilli(expires)
	c.SameSite = parseSameSite(sameSite)
	return &c, nil
}

func sameSiteName(m http.SameSite) string {
	switch m {
	case http.SameSiteStrictMode:
		return "Strict"
	case http.SameSiteNoneMode:
		return "None"
	default:
		return "Lax"
	}
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
