package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

// InitializeAuth restores the session. It validates the access token with
// /users/me, refreshes it once on 401 and otherwise falls back to a guest.
// It never fails: every path ends with a member or a guest and with
// IsInitializing false. Concurrent callers share one run and get the same
// resulting state.
func (m *Manager) InitializeAuth(ctx context.Context) models.State {
	v, _, _ := m.group.Do("initialize", func() (any, error) {
		m.initialize(context.WithoutCancel(ctx))
		return m.State(), nil
	})
	return v.(models.State)
}

func (m *Manager) setInitializing(ctx context.Context, on bool) {
	m.mutate(ctx, func(s *models.State) bool {
		s.IsInitializing = on
		return true
	})
}

func (m *Manager) initialize(ctx context.Context) {
	m.setInitializing(ctx, true)
	defer m.setInitializing(ctx, false)

	user, err := m.fetchMe(ctx)
	if err == nil {
		m.becomeMember(ctx, *user)
		return
	}
	if !isStatus(err, http.StatusUnauthorized) {
		m.demote(ctx, "current user lookup failed", err)
		return
	}

	refresh, err := m.creds.Refresh(ctx)
	if err != nil {
		m.demote(ctx, "read refresh token failed", err)
		return
	}
	if refresh == "" {
		m.demote(ctx, "access token rejected and no refresh token", nil)
		return
	}

	access, err := m.api.Refresh(ctx, refresh)
	if err != nil {
		m.demote(ctx, "token refresh failed", err)
		return
	}
	if err := m.creds.SetAccess(ctx, access); err != nil {
		m.demote(ctx, "store refreshed access token failed", err)
		return
	}

	m.log.Info(ctx, "access token refreshed, reloading session")
	m.reloader.Reload(ctx)

	user, err = m.fetchMe(ctx)
	if err != nil {
		m.demote(ctx, "current user lookup after refresh failed", err)
		return
	}
	m.becomeMember(ctx, *user)
}

// fetchMe reads the access token from the jar and asks the backend who it
// belongs to. A missing token is sent as an empty bearer.
func (m *Manager) fetchMe(ctx context.Context) (*models.User, error) {
	access, err := m.creds.Access(ctx)
	if err != nil {
		m.log.Warn(ctx, "read access token failed", "error", err)
		access = ""
	}
	return m.api.Me(ctx, access)
}

func (m *Manager) becomeMember(ctx context.Context, user models.User) {
	m.mutate(ctx, func(s *models.State) bool {
		s.User = models.MemberSession(user)
		s.IsLoggedIn = true
		return true
	})
	m.log.Info(ctx, "session restored", "user", user.Name, "plan", user.PlanType)
}

// demote clears the tokens and falls back to a guest.
func (m *Manager) demote(ctx context.Context, reason string, cause error) {
	if cause != nil {
		m.log.Warn(ctx, reason+", continuing as guest", "error", cause)
	} else {
		m.log.Info(ctx, reason+", continuing as guest")
	}

	if err := m.creds.Clear(ctx); err != nil {
		m.log.Error(ctx, "clear credentials failed", "error", err)
	}
	m.mutate(ctx, func(s *models.State) bool {
		m.becomeGuest(s)
		return true
	})
}

func isStatus(err error, status int) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
