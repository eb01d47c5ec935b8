// Package models holds the data shapes shared by the pdfier client: the
// session user (member or guest), the persisted session state and the DTOs
// exchanged with the backend.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pdfier/internal/common"
)

// PlanType is the subscription tier of a session user.
type PlanType string

const (
	PlanGuest   PlanType = "guest"
	PlanBasic   PlanType = "basic"
	PlanPremium PlanType = "premium"
)

const (
	GuestName  = "Guest"
	GuestEmail = "guest@example.com"
)

// UsageMetrics are the server-authoritative counters of a member. Field names
// match the backend JSON exactly.
type UsageMetrics struct {
	PDFProcessedToday         int       `json:"pdf_processed_today"`
	PDFProcessedLimitDaily    int       `json:"pdf_processed_limit_daily"`
	RAGQueriesThisMonth       int       `json:"rag_queries_this_month"`
	RAGQueriesLimitMonthly    int       `json:"rag_queries_limit_monthly"`
	RAGIndexedDocumentsCount  int       `json:"rag_indexed_documents_count"`
	RAGIndexedDocumentsLimit  int       `json:"rag_indexed_documents_limit"`
	WordConversionsToday      int       `json:"word_conversions_today"`
	WordConversionsLimitDaily int       `json:"word_conversions_limit_daily"`
	LastQuotaResetDate        Timestamp `json:"last_quota_reset_date"`
}

// User is an authenticated account as returned by /api/v1/users/me.
type User struct {
	Name         string       `json:"name"`
	Verified     bool         `json:"verified"`
	IPAddress    string       `json:"ip_address,omitempty"`
	PlanType     PlanType     `json:"plan_type"`
	UsageMetrics UsageMetrics `json:"usage_metrics"`
	CreatedAt    Timestamp    `json:"created_at"`
	UpdatedAt    Timestamp    `json:"updated_at"`
}

// GuestUsage is the locally tracked allowance of an anonymous visitor.
type GuestUsage struct {
	PDFProcessedToday      int       `json:"pdf_processed_today"`
	PDFProcessedLimitDaily int       `json:"pdf_processed_limit_daily"`
	LastQuotaResetDate     Timestamp `json:"last_quota_reset_date"`
}

// Exhausted reports whether the daily allowance is used up.
func (g GuestUsage) Exhausted() bool {
	return g.PDFProcessedToday >= g.PDFProcessedLimitDaily
}

// GuestUser is the sentinel record of an anonymous visitor.
type GuestUser struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Verified     bool       `json:"verified"`
	PlanType     PlanType   `json:"plan_type"`
	UsageMetrics GuestUsage `json:"usage_metrics"`
}

// NewGuestUser returns a fresh guest with zero usage and the given daily
// limit, stamped with the start of now's day.
func NewGuestUser(limit int, now time.Time) *GuestUser {
	y, m, d := now.Date()
	return &GuestUser{
		ID:       common.GuestID,
		Name:     GuestName,
		Email:    GuestEmail,
		PlanType: PlanGuest,
		UsageMetrics: GuestUsage{
			PDFProcessedLimitDaily: limit,
			LastQuotaResetDate:     NewTimestamp(time.Date(y, m, d, 0, 0, 0, 0, now.Location())),
		},
	}
}

// SessionUser is either a Member or a Guest. Exactly one field is set.
type SessionUser struct {
	Member *User
	Guest  *GuestUser
}

// MemberSession wraps an authenticated user.
func MemberSession(u User) *SessionUser {
	return &SessionUser{Member: &u}
}

// GuestSession wraps a guest record.
func GuestSession(g GuestUser) *SessionUser {
	return &SessionUser{Guest: &g}
}

func (s *SessionUser) IsGuest() bool {
	return s != nil && s.Guest != nil
}

func (s *SessionUser) IsMember() bool {
	return s != nil && s.Member != nil
}

// Plan returns the plan type of whichever variant is set.
func (s *SessionUser) Plan() PlanType {
	switch {
	case s.IsMember():
		return s.Member.PlanType
	case s.IsGuest():
		return PlanGuest
	default:
		return ""
	}
}

func (s *SessionUser) DisplayName() string {
	switch {
	case s.IsMember():
		return s.Member.Name
	case s.IsGuest():
		return s.Guest.Name
	default:
		return ""
	}
}

// Clone returns a deep copy. Both variants contain only value fields.
func (s *SessionUser) Clone() *SessionUser {
	if s == nil {
		return nil
	}
	out := &SessionUser{}
	if s.Member != nil {
		m := *s.Member
		out.Member = &m
	}
	if s.Guest != nil {
		g := *s.Guest
		out.Guest = &g
	}
	return out
}

var errEmptySessionUser = errors.New("session user has neither member nor guest set")

func (s SessionUser) MarshalJSON() ([]byte, error) {
	switch {
	case s.Member != nil:
		return json.Marshal(s.Member)
	case s.Guest != nil:
		g := *s.Guest
		g.PlanType = PlanGuest
		return json.Marshal(g)
	default:
		return nil, errEmptySessionUser
	}
}

func (s *SessionUser) UnmarshalJSON(b []byte) error {
	var head struct {
		PlanType PlanType `json:"plan_type"`
		ID       string   `json:"id"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}

	if head.PlanType == PlanGuest || head.ID == common.GuestID {
		var g GuestUser
		if err := json.Unmarshal(b, &g); err != nil {
			return fmt.Errorf("decode guest user: %w", err)
		}
		*s = SessionUser{Guest: &g}
		return nil
	}

	var u User
	if err := json.Unmarshal(b, &u); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}
	*s = SessionUser{Member: &u}
	return nil
}
