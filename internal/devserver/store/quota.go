package store

import (
	"time"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/timex"
)

// ConsumePDF counts one PDF operation against the user's daily limit. The
// daily counters start over when the last reset was on another day.
func (s *Store) ConsumePDF(userID string) (models.UsageMetrics, error) {
	u, err := s.UpdateUser(userID, func(u *User) error {
		rollDaily(&u.Usage, s.now())
		if u.Usage.PDFProcessedToday >= u.Usage.PDFProcessedLimitDaily {
			return ErrLimitReached
		}
		u.Usage.PDFProcessedToday++
		return nil
	})
	return u.Usage, err
}

// ConsumeQuery counts one chat query against the monthly limit.
func (s *Store) ConsumeQuery(userID string) (models.UsageMetrics, error) {
	u, err := s.UpdateUser(userID, func(u *User) error {
		now := s.now()
		rollDaily(&u.Usage, now)
		if u.Usage.RAGQueriesThisMonth >= u.Usage.RAGQueriesLimitMonthly {
			return ErrLimitReached
		}
		u.Usage.RAGQueriesThisMonth++
		return nil
	})
	return u.Usage, err
}

// rollDaily clears the daily counters, and on the first day of a new month
// the monthly one as well.
func rollDaily(m *models.UsageMetrics, now time.Time) {
	last := m.LastQuotaResetDate.Time
	if !last.IsZero() && timex.SameDay(now, last) {
		return
	}
	if last.IsZero() || last.Year() != now.Year() || last.Month() != now.Month() {
		m.RAGQueriesThisMonth = 0
	}
	m.PDFProcessedToday = 0
	m.WordConversionsToday = 0
	m.LastQuotaResetDate = models.NewTimestamp(timex.StartOfDay(now))
}

// Current returns the user with counters rolled to today.
func (s *Store) Current(userID string) (User, error) {
	return s.UpdateUser(userID, func(u *User) error {
		rollDaily(&u.Usage, s.now())
		return nil
	})
}
