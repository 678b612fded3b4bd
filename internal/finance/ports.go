// Package finance defines the repository ports the views depend on. Storage
// backends implement them; tests substitute the in-memory fake.
package finance

import (
	"context"
	"errors"

	"github.com/parliyanto/Cash-Tracker/internal/core"
)

var (
	// ErrNotFound is returned when a row does not exist for the given key.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a uniqueness constraint is violated.
	ErrAlreadyExists = errors.New("already exists")
)

type (
	// TransactionUpdate carries the only fields the update path may touch.
	// CreatedAt is server-assigned at insert and immutable thereafter.
	TransactionUpdate struct {
		Type     core.TransactionType
		Category string
		Amount   core.Money
	}

	TransactionRepository interface {
		// List returns the user's transactions narrowed by the filter, in the
		// requested order.
		List(ctx context.Context, userID string, f core.TransactionFilter, s core.Sort) ([]core.Transaction, error)
		Get(ctx context.Context, userID, id string) (core.Transaction, error)
		// Create assigns the id and creation timestamp and returns the stored row.
		Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
		Update(ctx context.Context, userID, id string, upd TransactionUpdate) error
		Delete(ctx context.Context, userID, id string) error
		// DeleteAll removes every transaction belonging to the user.
		DeleteAll(ctx context.Context, userID string) error
		// UserIDs returns the ids of every user with at least one transaction.
		// Snapshot jobs use it to know which exports to rebuild.
		UserIDs(ctx context.Context) ([]string, error)
	}

	SettingsRepository interface {
		// Get returns ErrNotFound when the user has never saved settings.
		Get(ctx context.Context, userID string) (core.UserSettings, error)
		// Upsert inserts or updates the single settings row keyed by user id.
		Upsert(ctx context.Context, s core.UserSettings) error
	}

	UserStore interface {
		FindByEmail(ctx context.Context, email string) (core.User, error)
		Create(ctx context.Context, u core.User) error
		UpdatePassword(ctx context.Context, userID, passwordHash string) error
	}
)
