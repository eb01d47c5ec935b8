// Package store keeps the development backend's data in memory: accounts,
// refresh tokens, one-time codes, tool results and the chat library.
// Everything is lost on restart.
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/common"
)

var (
	ErrExists       = errors.New("already registered")
	ErrInvalidCode  = errors.New("invalid or expired code")
	ErrLimitReached = errors.New("limit reached")
)

// User is an account record. Usage follows the wire shape of /users/me.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	Verified     bool
	Plan         models.PlanType
	Usage        models.UsageMetrics
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View renders u as the /users/me body.
func (u User) View() models.User {
	return models.User{
		Name:         u.Username,
		Verified:     u.Verified,
		PlanType:     u.Plan,
		UsageMetrics: u.Usage,
		CreatedAt:    models.NewTimestamp(u.CreatedAt),
		UpdatedAt:    models.NewTimestamp(u.UpdatedAt),
	}
}

// Result is a stored tool output served under /files/{id}.
type Result struct {
	ID    string
	Owner string
	Name  string
	Data  []byte
}

type expiring struct {
	value   string
	purpose Purpose
	expires time.Time
}

// Purpose tells what a one-time code unlocks.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeReset  Purpose = "reset"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users   map[string]*User
	byLogin map[string]string

	refresh map[string]expiring // token -> user id
	otps    map[string]expiring // user id -> code
	resets  map[string]time.Time

	results   map[string]Result
	userFiles map[string][]models.UserFile

	conversations map[string]models.Conversation
	documents     map[string][]models.DocumentItem
	messages      map[string][]models.MessageItem
}

func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:           now,
		users:         map[string]*User{},
		byLogin:       map[string]string{},
		refresh:       map[string]expiring{},
		otps:          map[string]expiring{},
		resets:        map[string]time.Time{},
		results:       map[string]Result{},
		userFiles:     map[string][]models.UserFile{},
		conversations: map[string]models.Conversation{},
		documents:     map[string][]models.DocumentItem{},
		messages:      map[string][]models.MessageItem{},
	}
}

func loginKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreateUser registers an unverified account. Username and email share one
// namespace, so either may be used to log in.
func (s *Store) CreateUser(username, email string, hash []byte, plan models.PlanType, usage models.UsageMetrics) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range []string{loginKey(username), loginKey(email)} {
		if _, ok := s.byLogin[k]; ok {
			return User{}, fmt.Errorf("%q: %w", k, ErrExists)
		}
	}

	now := s.now()
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Plan:         plan,
		Usage:        usage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	s.byLogin[loginKey(username)] = u.ID
	s.byLogin[loginKey(email)] = u.ID
	return *u, nil
}

func (s *Store) FindByLogin(login string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byLogin[loginKey(login)]
	if !ok {
		return User{}, common.ErrorNotFound
	}
	return *s.users[id], nil
}

func (s *Store) GetUser(id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, common.ErrorNotFound
	}
	return *u, nil
}

// UpdateUser applies fn to the stored record under the lock.
func (s *Store) UpdateUser(id string, fn func(u *User) error) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, common.ErrorNotFound
	}
	next := *u
	if err := fn(&next); err != nil {
		return *u, err
	}
	next.UpdatedAt = s.now()
	*u = next
	return next, nil
}

// SaveRefreshToken remembers an opaque refresh token for ttl.
func (s *Store) SaveRefreshToken(token, userID string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[token] = expiring{value: userID, expires: s.now().Add(ttl)}
}

// LookupRefreshToken returns the owner of token. Expired tokens are dropped.
func (s *Store) LookupRefreshToken(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.refresh[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	if !s.now().Before(e.expires) {
		delete(s.refresh, token)
		return "", common.ErrTokenExpired
	}
	return e.value, nil
}

// SetOTP replaces the pending code of userID.
func (s *Store) SetOTP(userID, code string, purpose Purpose, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[userID] = expiring{value: code, purpose: purpose, expires: s.now().Add(ttl)}
}

// PendingPurpose returns what the pending code of userID is for.
func (s *Store) PendingPurpose(userID string) (Purpose, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.otps[userID]
	return e.purpose, ok
}

// CheckOTP consumes the pending code when it matches and returns its purpose.
func (s *Store) CheckOTP(userID, code string) (Purpose, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.otps[userID]
	if !ok || e.value != code || !s.now().Before(e.expires) {
		return "", ErrInvalidCode
	}
	delete(s.otps, userID)
	return e.purpose, nil
}

// AllowReset opens a password reset window for userID.
func (s *Store) AllowReset(userID string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[userID] = s.now().Add(ttl)
}

// ConsumeReset closes the window. It reports whether one was open.
func (s *Store) ConsumeReset(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.resets[userID]
	delete(s.resets, userID)
	return ok && s.now().Before(until)
}

// SaveResult stores a tool output and lists it among the owner's files.
// An empty owner keeps the result out of any file list.
func (s *Store) SaveResult(owner, name string, data []byte, publicURL string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Result{ID: uuid.NewString(), Owner: owner, Name: name, Data: data}
	s.results[r.ID] = r
	if owner != "" {
		s.userFiles[owner] = append(s.userFiles[owner], models.UserFile{
			ID:        r.ID,
			Name:      name,
			URL:       publicURL + "/files/" + r.ID,
			CreatedAt: s.now().UTC().Format(time.RFC3339),
		})
	}
	return r
}

func (s *Store) GetResult(id string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.results[id]
	if !ok {
		return Result{}, common.ErrorNotFound
	}
	return r, nil
}

func (s *Store) UserFiles(userID string) []models.UserFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UserFile{}, s.userFiles[userID]...)
}
