// Package core holds the finance domain: transactions, settings, money
// arithmetic and the dashboard summary.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents of the account currency. Stored transactions
// always carry a strictly positive amount; derived values such as cash flow
// may be negative.
type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to Money. It accepts both dot and
// comma decimal separators, rounds half-up beyond two decimals, and rejects
// empty, non-numeric, zero and negative input.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.BigInt().IsInt64() {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Cents: cents.IntPart()}
	if m.Cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Cents).Div(hundred)
}

// Sub returns m minus other. The result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// currency display rules: symbol, thousands separator, decimal separator,
// number of decimal digits shown.
type currencyFormat struct {
	symbol   string
	thouSep  string
	decSep   string
	decimals int
}

var currencyFormats = map[Currency]currencyFormat{
	IDR: {symbol: "Rp ", thouSep: ".", decSep: ",", decimals: 0},
	USD: {symbol: "$", thouSep: ",", decSep: ".", decimals: 2},
	SGD: {symbol: "S$", thouSep: ",", decSep: ".", decimals: 2},
	EUR: {symbol: "€", thouSep: ".", decSep: ",", decimals: 2},
}

// Format renders the amount for display in the given currency, e.g.
// "Rp 5.000.000" or "$1,234.56". Negative amounts keep the leading minus.
func (m Money) Format(c Currency) string {
	f, ok := currencyFormats[c]
	if !ok {
		f = currencyFormats[DefaultCurrency]
	}

	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100

	grouped := groupDigits(strconv.FormatInt(units, 10), f.thouSep)
	out := f.symbol + grouped
	if f.decimals > 0 {
		out += f.decSep + twoDigits(rem)
	}
	if neg {
		return "-" + out
	}
	return out
}

func groupDigits(s, sep string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
