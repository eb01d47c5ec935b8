package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

// ---- fake credentials ----

type fakeCreds struct {
	mu       sync.Mutex
	access   string
	refresh  string
	setErr   error
	clearErr error
	clears   int
}

func (f *fakeCreds) SetAccess(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.access = token
	return nil
}

func (f *fakeCreds) SetPair(_ context.Context, refresh, access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.refresh, f.access = refresh, access
	return nil
}

func (f *fakeCreds) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.access, f.refresh = "", ""
	return nil
}

func (f *fakeCreds) Access(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access, nil
}

func (f *fakeCreds) Refresh(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh, nil
}

// ---- fake API ----

// outcome is one scripted backend answer.
type outcome int

const (
	ok outcome = iota
	unauthorized
	serverError
	netError
)

func (o outcome) String() string {
	return [...]string{"200", "401", "500", "network"}[o]
}

func (o outcome) err() error {
	switch o {
	case unauthorized:
		return &client.APIError{Status: 401, Detail: "Not authenticated"}
	case serverError:
		return &client.APIError{Status: 500}
	case netError:
		return fmt.Errorf("%w: connection refused", client.ErrUnavailable)
	default:
		return nil
	}
}

type fakeAPI struct {
	mu sync.Mutex

	// me answers are consumed in order; the last one repeats.
	me      []outcome
	refresh outcome
	user    models.User
	token   string

	meCalls      atomic.Int32
	refreshCalls atomic.Int32
	meTokens     []string

	block  chan struct{}
	ctxErr error
}

func (f *fakeAPI) Me(ctx context.Context, access string) (*models.User, error) {
	if f.block != nil {
		<-f.block
	}
	n := int(f.meCalls.Add(1)) - 1

	f.mu.Lock()
	if err := ctx.Err(); err != nil {
		f.ctxErr = err
	}
	f.meTokens = append(f.meTokens, access)
	answer := ok
	if len(f.me) > 0 {
		answer = f.me[min(n, len(f.me)-1)]
	}
	f.mu.Unlock()

	if err := answer.err(); err != nil {
		return nil, err
	}
	u := f.user
	return &u, nil
}

func (f *fakeAPI) Refresh(_ context.Context, refresh string) (string, error) {
	f.refreshCalls.Add(1)
	if refresh == "" {
		return "", errors.New("empty refresh token")
	}
	if err := f.refresh.err(); err != nil {
		return "", err
	}
	return f.token, nil
}

// ---- fake state store ----

type memStore struct {
	mu    sync.Mutex
	saved *models.State
	saves int
	err   error
}

func (s *memStore) Load(context.Context) (*models.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return nil, s.err
	}
	st := s.saved.Clone()
	return &st, s.err
}

func (s *memStore) Save(_ context.Context, st models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	cp := st.Clone()
	s.saved = &cp
	return nil
}

// ---- helpers ----

var testNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func member() models.User {
	return models.User{
		Name:     "alice",
		Verified: true,
		PlanType: models.PlanBasic,
		UsageMetrics: models.UsageMetrics{
			PDFProcessedToday:      1,
			PDFProcessedLimitDaily: 20,
		},
	}
}
