package cli

import (
	"context"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

const dateLayout = "2006-01-02"

// Status prints who is using the client and the remaining allowance.
func (a *App) Status(ctx context.Context) error {
	st := a.session.State()
	a.printf("Session: %s\n", st.Phase())

	switch {
	case st.User.IsMember():
		u := st.User.Member
		a.printf("User: %s (%s plan, verified: %t)\n", u.Name, u.PlanType, u.Verified)
		printMemberUsage(a, u.UsageMetrics)
	case st.User.IsGuest():
		g := st.User.Guest.UsageMetrics
		a.printf("User: %s\n", st.User.DisplayName())
		a.printf("PDF operations today: %d of %d\n", g.PDFProcessedToday, g.PDFProcessedLimitDaily)
		if !g.LastQuotaResetDate.IsZero() {
			a.printf("Window started: %s\n", g.LastQuotaResetDate.Format(dateLayout))
		}
		if g.Exhausted() {
			a.printf("Daily limit reached, log in to continue\n")
		}
	}

	a.printf("Selected files: %d\n", a.selection.Len())
	return nil
}

func printMemberUsage(a *App, m models.UsageMetrics) {
	a.printf("PDF operations today: %d of %d\n", m.PDFProcessedToday, m.PDFProcessedLimitDaily)
	a.printf("Chat queries this month: %d of %d\n", m.RAGQueriesThisMonth, m.RAGQueriesLimitMonthly)
	a.printf("Indexed documents: %d of %d\n", m.RAGIndexedDocumentsCount, m.RAGIndexedDocumentsLimit)
	a.printf("Word conversions today: %d of %d\n", m.WordConversionsToday, m.WordConversionsLimitDaily)
}
