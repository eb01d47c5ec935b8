// Package cookies is the persistent cookie jar of the client. Rows live in the
// local SQLite database, so every process opened on the same file observes the
// same cookies on its next read.
package cookies

import (
	"context"
	"net/http"
)

// Repository stores cookies by name. Get returns (nil, nil) when the cookie is
// absent. Expiry is not interpreted here.
type Repository interface {
	Put(ctx context.Context, c *http.Cookie) error
	Get(ctx context.Context, name string) (*http.Cookie, error)
	Delete(ctx context.Context, names ...string) error
	List(ctx context.Context) ([]*http.Cookie, error)
}
