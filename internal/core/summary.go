package core

import "math"

const (
	BandHigh   SavingBand = "high"   // saving rate >= 30
	BandMedium SavingBand = "medium" // saving rate >= 10
	BandLow    SavingBand = "low"    // saving rate < 10
)

type (
	// SavingBand is the visual tier for the saving rate card.
	SavingBand string

	// Summary holds the dashboard aggregates for a transaction set.
	Summary struct {
		TotalIncome  Money
		TotalExpense Money
		CashFlow     Money
		// SavingRate is the cash flow as a percentage of total income,
		// rounded to one decimal. Zero when there is no income.
		SavingRate float64
	}
)

// Summarize computes the dashboard aggregates over the full set, no paging.
func Summarize(ts []Transaction) Summary {
	var s Summary
	for _, t := range ts {
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.CashFlow = s.TotalIncome.Sub(s.TotalExpense)
	if s.TotalIncome.Cents > 0 {
		rate := float64(s.CashFlow.Cents) / float64(s.TotalIncome.Cents) * 100
		s.SavingRate = math.Round(rate*10) / 10
	}
	return s
}

// Band classifies the rounded saving rate into its visual tier.
func (s Summary) Band() SavingBand {
	switch {
	case s.SavingRate >= 30:
		return BandHigh
	case s.SavingRate >= 10:
		return BandMedium
	default:
		return BandLow
	}
}

// Latest returns the first n entries of a set already ordered newest-first.
func Latest(ts []Transaction, n int) []Transaction {
	if len(ts) <= n {
		return ts
	}
	return ts[:n]
}
