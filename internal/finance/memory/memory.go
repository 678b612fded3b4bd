// Package memory holds in-memory implementations of the finance ports, used
// by handler and service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance"
)

// TransactionStore implements finance.TransactionRepository.
type TransactionStore struct {
	mu    sync.Mutex
	items []core.Transaction

	// now lets tests control assigned timestamps.
	now func() time.Time
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{now: time.Now}
}

// SetClock overrides the timestamp source for deterministic tests.
func (s *TransactionStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *TransactionStore) List(_ context.Context, userID string, f core.TransactionFilter, order core.Sort) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, t := range s.items {
		if t.UserID != userID || !f.Matches(t) {
			continue
		}
		out = append(out, t)
	}
	sortTransactions(out, order)
	return out, nil
}

func sortTransactions(ts []core.Transaction, order core.Sort) {
	switch order {
	case core.SortDateAsc:
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].CreatedAt.Before(ts[j].CreatedAt) })
	case core.SortAmountDesc:
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].Amount.Cents > ts[j].Amount.Cents })
	case core.SortAmountAsc:
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].Amount.Cents < ts[j].Amount.Cents })
	default:
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].CreatedAt.After(ts[j].CreatedAt) })
	}
}

func (s *TransactionStore) Get(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.UserID == userID && t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, finance.ErrNotFound
}

func (s *TransactionStore) Create(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = s.now().UTC()
	s.items = append(s.items, t)
	return t, nil
}

func (s *TransactionStore) Update(_ context.Context, userID, id string, upd finance.TransactionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.UserID != userID || t.ID != id {
			continue
		}
		t.Type = upd.Type
		t.Category = upd.Category
		t.Amount = upd.Amount
		if err := t.Validate(); err != nil {
			return err
		}
		s.items[i] = t
		return nil
	}
	return finance.ErrNotFound
}

func (s *TransactionStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.UserID == userID && t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return finance.ErrNotFound
}

func (s *TransactionStore) DeleteAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, t := range s.items {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	s.items = kept
	return nil
}

func (s *TransactionStore) UserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, t := range s.items {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		out = append(out, t.UserID)
	}
	sort.Strings(out)
	return out, nil
}

// SettingsStore implements finance.SettingsRepository.
type SettingsStore struct {
	mu   sync.Mutex
	rows map[string]core.UserSettings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{rows: make(map[string]core.UserSettings)}
}

func (s *SettingsStore) Get(_ context.Context, userID string) (core.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rows[userID]
	if !ok {
		return core.UserSettings{}, finance.ErrNotFound
	}
	return st, nil
}

func (s *SettingsStore) Upsert(_ context.Context, st core.UserSettings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[st.UserID] = st
	return nil
}

// UserStore implements finance.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[string]core.User // keyed by lowercased email
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]core.User)}
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return core.User{}, finance.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) Create(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := s.users[key]; ok {
		return finance.ErrAlreadyExists
	}
	s.users[key] = u
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, u := range s.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			s.users[key] = u
			return nil
		}
	}
	return finance.ErrNotFound
}
