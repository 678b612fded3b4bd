package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance"
	"github.com/parliyanto/Cash-Tracker/internal/log"
)

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseFilter reads the list controls from query parameters. Invalid values
// degrade to "no filter" rather than failing the page.
func parseFilter(r *http.Request) (core.TransactionFilter, core.Sort) {
	var f core.TransactionFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		if tt, err := core.ParseTransactionType(v); err == nil {
			f.Type = tt
		}
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		if m, err := core.ParseMonth(v); err == nil {
			f.Month = m
		}
	}
	return f, core.ParseSort(q.Get("sort"))
}

// userSettings loads the user's settings, falling back to defaults for users
// who never saved any.
func (s *Server) userSettings(r *http.Request, uid string) core.UserSettings {
	settings, err := s.settings.Get(r.Context(), uid)
	if errors.Is(err, finance.ErrNotFound) {
		return core.UserSettings{UserID: uid, Currency: core.DefaultCurrency}
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load settings", "error", err)
		return core.UserSettings{UserID: uid, Currency: core.DefaultCurrency}
	}
	return settings
}

// transactionView is the row shape the templates render.
type transactionView struct {
	ID       string
	Type     string
	IsIncome bool
	Category string
	Amount   string
	// AmountRaw is the plain decimal value the edit form prefills, without
	// currency formatting.
	AmountRaw string
	Date      string
}

func viewTransactions(ts []core.Transaction, currency core.Currency) []transactionView {
	out := make([]transactionView, 0, len(ts))
	for _, t := range ts {
		out = append(out, transactionView{
			ID:        t.ID,
			Type:      string(t.Type),
			IsIncome:  t.Type == core.Income,
			Category:  t.Category,
			Amount:    t.Amount.Format(currency),
			AmountRaw: t.Amount.Decimal().String(),
			Date:      t.CreatedAt.Format("02 Jan 2006 15:04"),
		})
	}
	return out
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64)
}

// toast writes an htmx-swappable notification fragment.
func (s *Server) toast(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="toast ` + kind + `">` + template.HTMLEscapeString(message) + `</div>`))
}

// notifyChanged tells the page that the transaction set changed so dependent
// partials refetch.
func notifyChanged(w http.ResponseWriter) {
	w.Header().Set("HX-Trigger", `{"transactions:changed": {}}`)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		if status == http.StatusOK {
			http.Error(w, "render failed", http.StatusInternalServerError)
		}
	}
}
