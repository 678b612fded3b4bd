package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	IDR Currency = "IDR"
	USD Currency = "USD"
	SGD Currency = "SGD"
	EUR Currency = "EUR"
)

// DefaultCurrency is used when a user has never saved settings.
const DefaultCurrency = IDR

type (
	TransactionType string

	Currency string

	Transaction struct {
		ID        string
		UserID    string
		Type      TransactionType
		Category  string
		Amount    Money
		CreatedAt time.Time // server-assigned at insert, immutable on update
	}

	UserSettings struct {
		UserID        string
		MonthlyBudget *Money // nil means unset
		Currency      Currency
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCurrency = errors.New("invalid currency")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType accepts exactly "income" or "expense".
func ParseTransactionType(s string) (TransactionType, error) {
	tt := TransactionType(strings.TrimSpace(s))
	if !tt.Valid() {
		return "", ErrInvalidType
	}
	return tt, nil
}

func (c Currency) Valid() bool {
	switch c {
	case IDR, USD, SGD, EUR:
		return true
	default:
		return false
	}
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Category) > 100 {
		return errors.New("category too long (max 100 characters)")
	}
	return t.Amount.Validate()
}

func (s UserSettings) Validate() error {
	if !s.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if s.MonthlyBudget != nil {
		if err := s.MonthlyBudget.Validate(); err != nil {
			return err
		}
	}
	return nil
}
