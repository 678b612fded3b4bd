package worker

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parliyanto/Cash-Tracker/internal/amqp"
	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/export"
	"github.com/parliyanto/Cash-Tracker/internal/finance/memory"
)

func TestHandleLedgerEventWritesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	created, err := store.Create(ctx, core.Transaction{
		UserID: "u1", Type: core.Income, Category: "Salary", Amount: core.Money{Cents: 500000000},
	})
	require.NoError(t, err)

	snap := export.NewSnapshotter(store, t.TempDir())
	w := NewExportWorker(snap)

	require.NoError(t, w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.OpCreated, "u1", created.ID)))

	f, err := os.Open(snap.Path("u1"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := export.ReadTransactions(f)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, created.ID, rows[0].ID)
}

func TestClearedEventEmptiesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	_, err := store.Create(ctx, core.Transaction{
		UserID: "u1", Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 100},
	})
	require.NoError(t, err)

	snap := export.NewSnapshotter(store, t.TempDir())
	w := NewExportWorker(snap)
	require.NoError(t, w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.OpCreated, "u1", "x")))

	require.NoError(t, store.DeleteAll(ctx, "u1"))
	require.NoError(t, w.HandleLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.OpCleared, "u1", "")))

	data, err := os.ReadFile(snap.Path("u1"))
	require.NoError(t, err)
	assert.Equal(t, export.Header+"\n", string(data))
}

func TestStartupCheckRebuildsAllUsers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTransactionStore()
	for _, userID := range []string{"u1", "u2"} {
		_, err := store.Create(ctx, core.Transaction{
			UserID: userID, Type: core.Expense, Category: "Food", Amount: core.Money{Cents: 100},
		})
		require.NoError(t, err)
	}

	snap := export.NewSnapshotter(store, t.TempDir())
	w := NewExportWorker(snap)
	require.NoError(t, w.StartupCheck(ctx))

	for _, userID := range []string{"u1", "u2"} {
		_, err := os.Stat(snap.Path(userID))
		assert.NoError(t, err)
	}
}
