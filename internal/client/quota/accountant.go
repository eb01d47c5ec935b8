// Package quota enforces the guest's daily PDF allowance on the client and
// keeps a member's counters in step with what the backend reports.
package quota

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/common"
	"github.com/dmitrijs2005/pdfier/internal/logging"
	"github.com/dmitrijs2005/pdfier/internal/timex"
)

// Session is the part of the session the accountant drives.
type Session interface {
	State() models.State
	UpdateUserUsage(ctx context.Context, m models.UsageMetrics)
	UpdateGuestUsage(ctx context.Context, n int)
	ResetGuestUsage(ctx context.Context, day time.Time)
}

// ExceededError is returned by Reserve when the guest is at the limit.
type ExceededError struct {
	Limit int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("daily limit of %d PDF operations reached, log in to continue", e.Limit)
}

func (e *ExceededError) Unwrap() error { return common.ErrQuotaExceeded }

// Accountant serializes check-and-increment of the guest counter.
type Accountant struct {
	mu      sync.Mutex
	session Session
	now     func() time.Time
	log     logging.Logger
}

func NewAccountant(s Session, log logging.Logger, now func() time.Time) *Accountant {
	if log == nil {
		log = logging.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Accountant{session: s, now: now, log: log.With("component", "quota")}
}

// Reservation is one unit taken by Reserve. Members get a reservation that
// holds nothing.
type Reservation struct {
	acct  *Accountant
	guest bool
	// window the unit was taken from
	day      time.Time
	refunded atomic.Bool
}

// Reserve checks the guest allowance and takes one unit before the caller
// talks to the backend. At the limit it returns *ExceededError and changes
// nothing. Until initialization has settled the session as a guest or a
// member it returns common.ErrSessionNotReady.
func (a *Accountant) Reserve(ctx context.Context) (*Reservation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.session.State()
	if st.User == nil || st.IsInitializing {
		return nil, common.ErrSessionNotReady
	}
	if !st.User.IsGuest() {
		return &Reservation{acct: a}, nil
	}

	usage := a.rollover(ctx, st.User.Guest.UsageMetrics)
	if usage.Exhausted() {
		a.log.Info(ctx, "guest quota exhausted", "used", usage.PDFProcessedToday, "limit", usage.PDFProcessedLimitDaily)
		return nil, &ExceededError{Limit: usage.PDFProcessedLimitDaily}
	}

	a.session.UpdateGuestUsage(ctx, usage.PDFProcessedToday+1)
	return &Reservation{acct: a, guest: true, day: usage.LastQuotaResetDate.Time}, nil
}

// Rollover resets the guest counter when the last reset was on another day.
func (a *Accountant) Rollover(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.session.State()
	if st.User.IsGuest() {
		a.rollover(ctx, st.User.Guest.UsageMetrics)
	}
}

func (a *Accountant) rollover(ctx context.Context, usage models.GuestUsage) models.GuestUsage {
	now := a.now()
	if timex.SameDay(now, usage.LastQuotaResetDate.Time) {
		return usage
	}
	a.session.ResetGuestUsage(ctx, now)
	a.log.Debug(ctx, "guest quota window rolled over")
	usage.PDFProcessedToday = 0
	usage.LastQuotaResetDate = models.NewTimestamp(timex.StartOfDay(now))
	return usage
}

// Reconcile applies the counters the backend returned. Guests are never
// reconciled; the session ignores member usage for them.
func (a *Accountant) Reconcile(ctx context.Context, usage *models.UsageMetrics) {
	if usage == nil {
		return
	}
	a.session.UpdateUserUsage(ctx, *usage)
}

// Refund gives the unit back. Only the first call has an effect, and nothing
// is returned once the window the unit came from has rolled over.
func (r *Reservation) Refund(ctx context.Context) {
	if r == nil || !r.guest || !r.refunded.CompareAndSwap(false, true) {
		return
	}
	a := r.acct
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.session.State()
	if !st.User.IsGuest() {
		return
	}
	usage := st.User.Guest.UsageMetrics
	if !usage.LastQuotaResetDate.Equal(r.day) {
		a.log.Debug(ctx, "refund skipped, quota window rolled over")
		return
	}
	if n := usage.PDFProcessedToday; n > 0 {
		a.session.UpdateGuestUsage(ctx, n-1)
	}
}

// Settle refunds when err is a confirmed backend rejection. After a
// transport failure the outcome is unknown and the unit stays spent.
func (r *Reservation) Settle(ctx context.Context, err error) {
	if err != nil && client.IsRejection(err) {
		r.Refund(ctx)
	}
}
