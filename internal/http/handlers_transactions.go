package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance"
	"github.com/parliyanto/Cash-Tracker/internal/log"
)

type transactionsPage struct {
	FilterType  string
	FilterMonth string
	Sort        string
	Currency    string
	Rows        []transactionView
	Empty       bool
}

func (s *Server) transactionsData(r *http.Request, uid string) (transactionsPage, error) {
	f, order := parseFilter(r)
	settings := s.userSettings(r, uid)

	rows, err := s.transactions.List(r.Context(), uid, f, order)
	if err != nil {
		return transactionsPage{}, err
	}

	return transactionsPage{
		FilterType:  string(f.Type),
		FilterMonth: f.Month.String(),
		Sort:        string(order),
		Currency:    string(settings.Currency),
		Rows:        viewTransactions(rows, settings.Currency),
		Empty:       len(rows) == 0,
	}, nil
}

func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	page, err := s.transactionsData(r, uid)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transactions list error", "error", err, "user_id", uid)
		http.Error(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "transactions.html", page)
}

// handleTransactionList renders the table partial that htmx swaps in when
// filters change or a mutation fires transactions:changed.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	page, err := s.transactionsData(r, uid)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Transactions partial error", "error", err, "user_id", uid)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div id="transaction-list" class="placeholder">Error loading transactions</div>`))
		return
	}
	s.render(w, r, "transaction_list.html", page)
}

// parseTransactionForm validates the shared create/update form fields.
func parseTransactionForm(r *http.Request) (core.TransactionType, string, core.Money, string) {
	typeStr := sanitizeInput(r.Form.Get("type"))
	category := sanitizeInput(r.Form.Get("category"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))

	if typeStr == "" || category == "" || amountStr == "" {
		return "", "", core.Money{}, "Please fill all fields"
	}

	tt, err := core.ParseTransactionType(typeStr)
	if err != nil {
		return "", "", core.Money{}, "Invalid transaction type"
	}
	amount, err := core.ParseAmount(amountStr)
	if err != nil {
		return "", "", core.Money{}, "Amount must be a positive number"
	}
	return tt, category, amount, ""
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	if err := r.ParseForm(); err != nil {
		s.toast(w, http.StatusBadRequest, "error", "Invalid request")
		return
	}

	tt, category, amount, msg := parseTransactionForm(r)
	if msg != "" {
		s.toast(w, http.StatusUnprocessableEntity, "error", msg)
		return
	}

	created, err := s.transactions.Create(r.Context(), core.Transaction{
		UserID:   uid,
		Type:     tt,
		Category: category,
		Amount:   amount,
	})
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save transaction",
			"error", err,
			"user_id", uid,
			log.FieldCategory, category,
			log.FieldAmountCents, amount.Cents)
		s.toast(w, http.StatusInternalServerError, "error", "Error saving transaction")
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		"user_id", uid,
		log.FieldTransactionID, created.ID,
		log.FieldCategory, created.Category,
		log.FieldAmountCents, created.Amount.Cents)

	s.invalidateSummary(uid)
	notifyChanged(w)
	s.toast(w, http.StatusOK, "success", "Transaction added")
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		s.toast(w, http.StatusBadRequest, "error", "Invalid request")
		return
	}

	tt, category, amount, msg := parseTransactionForm(r)
	if msg != "" {
		s.toast(w, http.StatusUnprocessableEntity, "error", msg)
		return
	}

	err := s.transactions.Update(r.Context(), uid, id, finance.TransactionUpdate{
		Type:     tt,
		Category: category,
		Amount:   amount,
	})
	if errors.Is(err, finance.ErrNotFound) {
		s.toast(w, http.StatusNotFound, "error", "Transaction not found")
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to update transaction",
			"error", err, "user_id", uid, log.FieldTransactionID, id)
		s.toast(w, http.StatusInternalServerError, "error", "Error saving transaction")
		return
	}

	s.invalidateSummary(uid)
	notifyChanged(w)
	s.toast(w, http.StatusOK, "success", "Transaction updated")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	id := r.PathValue("id")

	err := s.transactions.Delete(r.Context(), uid, id)
	if errors.Is(err, finance.ErrNotFound) {
		s.toast(w, http.StatusNotFound, "error", "Transaction not found")
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete transaction",
			"error", err, "user_id", uid, log.FieldTransactionID, id)
		s.toast(w, http.StatusInternalServerError, "error", "Error deleting transaction")
		return
	}

	s.invalidateSummary(uid)
	notifyChanged(w)
	s.toast(w, http.StatusOK, "success", "Transaction deleted")
}
