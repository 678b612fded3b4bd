// Package services orchestrates repository mutations with the event pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parliyanto/Cash-Tracker/internal/amqp"
	"github.com/parliyanto/Cash-Tracker/internal/core"
	"github.com/parliyanto/Cash-Tracker/internal/finance"
)

// EventPublisher is satisfied by *amqp.Client. A nil publisher disables the
// pipeline entirely.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// TransactionService applies mutations and emits one ledger event per
// successful change. Event publishing is best-effort: the mutation has
// already been committed locally, so a publish failure is logged and
// swallowed.
type TransactionService struct {
	repo      finance.TransactionRepository
	publisher EventPublisher
}

func NewTransactionService(repo finance.TransactionRepository, publisher EventPublisher) *TransactionService {
	return &TransactionService{repo: repo, publisher: publisher}
}

func (s *TransactionService) List(ctx context.Context, userID string, f core.TransactionFilter, order core.Sort) ([]core.Transaction, error) {
	return s.repo.List(ctx, userID, f, order)
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpCreated, created.UserID, created.ID))
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, upd finance.TransactionUpdate) error {
	if err := s.repo.Update(ctx, userID, id, upd); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpUpdated, userID, id))
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpDeleted, userID, id))
	return nil
}

// Clear removes every transaction for the user and emits a single cleared
// event rather than one per row.
func (s *TransactionService) Clear(ctx context.Context, userID string) error {
	if err := s.repo.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpCleared, userID, ""))
	return nil
}

func (s *TransactionService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"op", event.Op,
			"transaction_id", event.TransactionID,
			"error", err)
	}
}
