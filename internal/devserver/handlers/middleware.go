package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/pdfier/internal/common"
	"github.com/dmitrijs2005/pdfier/internal/devserver/auth"
	"github.com/dmitrijs2005/pdfier/internal/logging"
)

const (
	userIDKey       = "user_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID tags the request context with an id for log correlation. An id
// sent by the caller is kept.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithFields(c.Request.Context(), "request_id", id))
		c.Next()
	}
}

// Logger logs one line per request at a level chosen by the status.
func Logger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.Error(ctx, "http request", args...)
		case status >= 400:
			log.Warn(ctx, "http request", args...)
		default:
			log.Info(ctx, "http request", args...)
		}
	}
}

// bearer returns the token of an "Authorization: Bearer <token>" header.
func bearer(c *gin.Context) string {
	header := c.GetHeader(common.AuthorizationHeader)
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
}

// authenticate resolves the bearer token. ok is false after an error answer
// has been written.
func (h *HandlerSet) authenticate(c *gin.Context, required bool) (ok bool) {
	token := bearer(c)
	if token == "" {
		if required {
			fail(c, http.StatusUnauthorized, "Not authenticated")
			return false
		}
		return true
	}

	userID, err := auth.GetUserIDFromToken(token, h.secret)
	if err != nil {
		detail := "Could not validate credentials"
		if errors.Is(err, common.ErrTokenExpired) {
			detail = "Token has expired"
		}
		fail(c, http.StatusUnauthorized, detail)
		return false
	}
	if _, err := h.store.GetUser(userID); err != nil {
		fail(c, http.StatusUnauthorized, "Could not validate credentials")
		return false
	}

	c.Set(userIDKey, userID)
	return true
}

// RequireUser rejects requests without a valid access token.
func (h *HandlerSet) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.authenticate(c, true) {
			c.Next()
		}
	}
}

// OptionalUser lets anonymous requests through. A token that is present
// must still be valid.
func (h *HandlerSet) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.authenticate(c, false) {
			c.Next()
		}
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
