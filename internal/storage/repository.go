// Package storage is the SQLite persistence layer behind the finance ports.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance"
)

// Open opens (creating if needed) the database at dbPath and brings the
// schema up to date.
func Open(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// TransactionRepository implements finance.TransactionRepository on SQLite.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = "id, user_id, type, category, amount_cents, created_at"

// orderClauses is the only source of ORDER BY text; sort input never reaches
// the SQL string directly.
var orderClauses = map[core.Sort]string{
	core.SortDateDesc:   "created_at DESC",
	core.SortDateAsc:    "created_at ASC",
	core.SortAmountDesc: "amount_cents DESC, created_at DESC",
	core.SortAmountAsc:  "amount_cents ASC, created_at DESC",
}

func (r *TransactionRepository) List(ctx context.Context, userID string, f core.TransactionFilter, order core.Sort) ([]core.Transaction, error) {
	var b strings.Builder
	b.WriteString("SELECT " + transactionColumns + " FROM transactions WHERE user_id = ?")
	args := []any{userID}

	if f.Type != "" {
		b.WriteString(" AND type = ?")
		args = append(args, string(f.Type))
	}
	if !f.Month.IsZero() {
		start, end := f.Month.Range()
		b.WriteString(" AND created_at >= ? AND created_at < ?")
		args = append(args, start.UnixNano(), end.UnixNano())
	}

	clause, ok := orderClauses[order]
	if !ok {
		clause = orderClauses[core.SortDateDesc]
	}
	b.WriteString(" ORDER BY " + clause)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *TransactionRepository) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? AND id = ?", userID, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, finance.ErrNotFound
	}
	return t, err
}

func (r *TransactionRepository) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions (id, user_id, type, category, amount_cents, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, string(t.Type), t.Category, t.Amount.Cents, t.CreatedAt.UnixNano())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", string(t.Type),
		"category", t.Category,
		"amount_cents", t.Amount.Cents)
	return t, nil
}

// Update touches only type, category and amount; created_at is immutable.
func (r *TransactionRepository) Update(ctx context.Context, userID, id string, upd finance.TransactionUpdate) error {
	if !upd.Type.Valid() {
		return core.ErrInvalidType
	}
	if strings.TrimSpace(upd.Category) == "" {
		return core.ErrEmptyCategory
	}
	if err := upd.Amount.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET type = ?, category = ?, amount_cents = ? WHERE user_id = ? AND id = ?",
		string(upd.Type), upd.Category, upd.Amount.Cents, userID, id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE user_id = ? AND id = ?", userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *TransactionRepository) DeleteAll(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		slog.InfoContext(ctx, "All transactions deleted", "user_id", userID, "rows", n)
	}
	return nil
}

func (r *TransactionRepository) UserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT user_id FROM transactions ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		typ       string
		createdAt int64
	)
	if err := row.Scan(&t.ID, &t.UserID, &typ, &t.Category, &t.Amount.Cents, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	return t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return finance.ErrNotFound
	}
	return nil
}

// SettingsRepository implements finance.SettingsRepository on SQLite.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, userID string) (core.UserSettings, error) {
	var (
		s      core.UserSettings
		budget sql.NullInt64
		cur    string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, monthly_budget_cents, currency FROM user_settings WHERE user_id = ?", userID).
		Scan(&s.UserID, &budget, &cur)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserSettings{}, finance.ErrNotFound
	}
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("get settings: %w", err)
	}
	if budget.Valid {
		s.MonthlyBudget = &core.Money{Cents: budget.Int64}
	}
	s.Currency = core.Currency(cur)
	return s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s core.UserSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	var budget sql.NullInt64
	if s.MonthlyBudget != nil {
		budget = sql.NullInt64{Int64: s.MonthlyBudget.Cents, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, monthly_budget_cents, currency)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_budget_cents = excluded.monthly_budget_cents,
			currency = excluded.currency`,
		s.UserID, budget, string(s.Currency))
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// UserRepository implements finance.UserStore on SQLite.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (core.User, error) {
	var (
		u         core.User
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, finance.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("find user by email: %w", err)
	}
	u.CreatedAt = time.Unix(0, createdAt).UTC()
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Email, u.PasswordHash, u.CreatedAt.UnixNano())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return finance.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}
