package http

import (
	"net/http"
	"strings"

	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/log"
)

type settingsPage struct {
	Currency   string
	Currencies []string
	// Budget is the raw number shown in the input, empty when unset.
	Budget string
}

var supportedCurrencies = []string{
	string(core.IDR), string(core.USD), string(core.SGD), string(core.EUR),
}

func (s *Server) settingsData(r *http.Request, uid string) settingsPage {
	settings := s.userSettings(r, uid)
	page := settingsPage{
		Currency:   string(settings.Currency),
		Currencies: supportedCurrencies,
	}
	if settings.MonthlyBudget != nil {
		page.Budget = settings.MonthlyBudget.Decimal().String()
	}
	return page
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "settings.html", s.settingsData(r, userID(r.Context())))
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	if err := r.ParseForm(); err != nil {
		s.toast(w, http.StatusBadRequest, "error", "Invalid request")
		return
	}

	currency, err := core.ParseCurrency(r.Form.Get("currency"))
	if err != nil {
		s.toast(w, http.StatusUnprocessableEntity, "error", "Unsupported currency")
		return
	}

	settings := core.UserSettings{UserID: uid, Currency: currency}
	if v := strings.TrimSpace(r.Form.Get("monthly_budget")); v != "" {
		budget, err := core.ParseAmount(v)
		if err != nil {
			s.toast(w, http.StatusUnprocessableEntity, "error", "Budget must be a positive number")
			return
		}
		settings.MonthlyBudget = &budget
	}

	if err := s.settings.Upsert(r.Context(), settings); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save settings", "error", err, "user_id", uid)
		s.toast(w, http.StatusInternalServerError, "error", "Error saving settings")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Settings saved",
		"user_id", uid,
		"currency", string(currency),
		"budget_set", settings.MonthlyBudget != nil)
	s.toast(w, http.StatusOK, "success", "Settings saved")
}

// handleClearTransactions wipes the user's ledger. The page asks for
// confirmation before posting here.
func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	if err := s.transactions.Clear(r.Context(), uid); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to clear transactions", "error", err, "user_id", uid)
		s.toast(w, http.StatusInternalServerError, "error", "Error clearing transactions")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "All transactions cleared", "user_id", uid)
	s.invalidateSummary(uid)
	notifyChanged(w)
	s.toast(w, http.StatusOK, "success", "All transactions deleted")
}
