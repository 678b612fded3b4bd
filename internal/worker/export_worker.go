// Package worker turns ledger events into refreshed CSV snapshots.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parliyanto/Cash-Tracker/internal/amqp"
	"github.com/parliyanto/Cash-Tracker/internal/export"
)

// ExportWorker keeps per-user CSV exports in step with the ledger. Every
// event triggers a full snapshot rewrite for that user, so ordering between
// events for the same user does not matter.
type ExportWorker struct {
	snapshotter *export.Snapshotter
}

func NewExportWorker(snapshotter *export.Snapshotter) *ExportWorker {
	return &ExportWorker{snapshotter: snapshotter}
}

// HandleLedgerEvent processes a single ledger event from AMQP.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"op", event.Op,
		"user_id", event.UserID,
		"transaction_id", event.TransactionID)

	if err := w.snapshotter.Snapshot(ctx, event.UserID); err != nil {
		return fmt.Errorf("snapshot after %s event: %w", event.Op, err)
	}
	return nil
}

// StartupCheck rebuilds every snapshot at worker start. This recovers from
// events missed while the worker was down.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Rebuilding snapshots on startup")
	if err := w.snapshotter.SnapshotAll(ctx); err != nil {
		return fmt.Errorf("startup snapshot check: %w", err)
	}
	return nil
}

// ScheduledSnapshot is the cron entry point for the periodic full rebuild.
func (w *ExportWorker) ScheduledSnapshot(ctx context.Context) {
	if err := w.snapshotter.SnapshotAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Scheduled snapshot failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Scheduled snapshot completed")
}
