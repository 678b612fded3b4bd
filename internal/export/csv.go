// Package export renders a user's ledger as a CSV snapshot on disk.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/parliyanto/Cash-Tracker/internal/core"
)

// Header is the CSV header for a transactions snapshot.
const Header = "id,created_at,type,category,amount"

const (
	numFields  = 5
	timeFormat = time.RFC3339Nano

	colID       = 0
	colCreated  = 1
	colType     = 2
	colCategory = 3
	colAmount   = 4
)

// WriteTransactions writes the transactions to w (including header).
// Amounts are written in major units with two decimal places.
func WriteTransactions(w io.Writer, transactions []core.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range transactions {
		if err := cw.Write(marshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadTransactions reads a snapshot back. User id is not part of the file;
// snapshots are stored per user.
func ReadTransactions(r io.Reader) ([]core.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading snapshot CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var out []core.Transaction
	for i, rec := range records[1:] {
		t, err := unmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func marshalTransaction(t core.Transaction) []string {
	return []string{
		t.ID,
		t.CreatedAt.UTC().Format(timeFormat),
		string(t.Type),
		t.Category,
		decimal.New(t.Amount.Cents, -2).StringFixed(2),
	}
}

func unmarshalTransaction(rec []string) (core.Transaction, error) {
	createdAt, err := time.Parse(timeFormat, rec[colCreated])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parsing created_at %q: %w", rec[colCreated], err)
	}

	typ, err := core.ParseTransactionType(rec[colType])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parsing type %q: %w", rec[colType], err)
	}

	amount, err := decimal.NewFromString(rec[colAmount])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}
	cents := amount.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return core.Transaction{}, fmt.Errorf("amount %q out of range", rec[colAmount])
	}

	return core.Transaction{
		ID:        rec[colID],
		Type:      typ,
		Category:  rec[colCategory],
		Amount:    core.Money{Cents: cents.BigInt().Int64()},
		CreatedAt: createdAt.UTC(),
	}, nil
}
