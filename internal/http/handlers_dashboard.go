package http

import (
	"net/http"

	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/log"
)

type dashboardPage struct {
	TotalIncome  string
	TotalExpense string
	CashFlow     string
	CashFlowNeg  bool
	SavingRate   string
	Band         string

	Currency  string
	Budget    string
	BudgetSet bool

	Latest []transactionView
}

// handleDashboard renders the aggregate cards and the five most recent
// transactions.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	settings := s.userSettings(r, uid)

	summary, err := s.summarize(r.Context(), uid)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard summary error", "error", err, "user_id", uid)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	recent, err := s.transactions.List(r.Context(), uid, core.TransactionFilter{}, core.SortDateDesc)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard list error", "error", err, "user_id", uid)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	page := dashboardPage{
		TotalIncome:  summary.TotalIncome.Format(settings.Currency),
		TotalExpense: summary.TotalExpense.Format(settings.Currency),
		CashFlow:     summary.CashFlow.Format(settings.Currency),
		CashFlowNeg:  summary.CashFlow.Cents < 0,
		SavingRate:   formatRate(summary.SavingRate),
		Band:         string(summary.Band()),
		Currency:     string(settings.Currency),
		Latest:       viewTransactions(core.Latest(recent, 5), settings.Currency),
	}
	if settings.MonthlyBudget != nil {
		page.Budget = settings.MonthlyBudget.Format(settings.Currency)
		page.BudgetSet = true
	}

	s.render(w, r, "dashboard.html", page)
}
