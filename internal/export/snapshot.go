package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance"
)

// Snapshotter rewrites per-user CSV snapshots from the transaction store.
// Each snapshot is a full rewrite in date-descending order, so a lost event
// is repaired by the next one (or by the scheduled run).
type Snapshotter struct {
	repo finance.TransactionRepository
	dir  string
}

func NewSnapshotter(repo finance.TransactionRepository, dir string) *Snapshotter {
	return &Snapshotter{repo: repo, dir: dir}
}

// Path returns the snapshot file path for the user.
func (s *Snapshotter) Path(userID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("transactions-%s.csv", userID))
}

// Snapshot rewrites the user's snapshot file. The file is written to a temp
// path first and renamed into place so readers never see a partial file.
func (s *Snapshotter) Snapshot(ctx context.Context, userID string) error {
	transactions, err := s.repo.List(ctx, userID, core.TransactionFilter{}, core.SortDateDesc)
	if err != nil {
		return fmt.Errorf("list transactions for snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "snapshot-*.csv")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteTransactions(tmp, transactions); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path(userID)); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot written",
		"user_id", userID,
		"rows", len(transactions),
		"path", s.Path(userID))
	return nil
}

// SnapshotAll rewrites a snapshot for every user with transactions. Errors
// are collected per user so one bad export does not stop the rest.
func (s *Snapshotter) SnapshotAll(ctx context.Context) error {
	userIDs, err := s.repo.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users for snapshot: %w", err)
	}

	var failed int
	for _, userID := range userIDs {
		if err := s.Snapshot(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "Snapshot failed", "user_id", userID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d snapshots failed", failed, len(userIDs))
	}
	return nil
}
