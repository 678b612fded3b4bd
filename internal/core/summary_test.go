package core

import (
	"testing"
	"time"
)

func trx(typ TransactionType, cents int64) Transaction {
	return Transaction{
		ID:        "t",
		Type:      typ,
		Category:  "Misc",
		Amount:    Money{Cents: cents},
		CreatedAt: time.Now(),
	}
}

func TestSummarizeCashFlowIdentity(t *testing.T) {
	sets := [][]Transaction{
		nil,
		{trx(Income, 100000)},
		{trx(Expense, 70000)},
		{trx(Income, 100000), trx(Expense, 70000), trx(Income, 2500), trx(Expense, 199)},
	}
	for _, ts := range sets {
		s := Summarize(ts)
		if s.TotalIncome.Sub(s.TotalExpense) != s.CashFlow {
			t.Fatalf("income %d - expense %d != cashflow %d",
				s.TotalIncome.Cents, s.TotalExpense.Cents, s.CashFlow.Cents)
		}
	}
}

func TestSummarizeNoIncome(t *testing.T) {
	s := Summarize([]Transaction{trx(Expense, 50000), trx(Expense, 1)})
	if s.SavingRate != 0 {
		t.Fatalf("saving rate with zero income = %v, want 0", s.SavingRate)
	}
	if s.CashFlow.Cents != -50001 {
		t.Fatalf("cash flow = %d, want -50001", s.CashFlow.Cents)
	}
}

func TestSummarizeSingleSalary(t *testing.T) {
	// One income of 5,000,000 on an empty account.
	s := Summarize([]Transaction{trx(Income, 500000000)})
	if s.TotalIncome.Cents != 500000000 {
		t.Fatalf("total income = %d", s.TotalIncome.Cents)
	}
	if s.CashFlow.Cents != 500000000 {
		t.Fatalf("cash flow = %d", s.CashFlow.Cents)
	}
	if s.SavingRate != 100.0 {
		t.Fatalf("saving rate = %v, want 100.0", s.SavingRate)
	}
}

func TestSummarizeBands(t *testing.T) {
	cases := []struct {
		income, expense int64
		rate            float64
		band            SavingBand
	}{
		{100000, 70000, 30.0, BandHigh},
		{100000, 85000, 15.0, BandMedium},
		{100000, 95000, 5.0, BandLow},
		{0, 100000, 0.0, BandLow},
		{300000, 100000, 66.7, BandHigh},
	}
	for _, tc := range cases {
		var ts []Transaction
		if tc.income > 0 {
			ts = append(ts, trx(Income, tc.income))
		}
		if tc.expense > 0 {
			ts = append(ts, trx(Expense, tc.expense))
		}
		s := Summarize(ts)
		if s.SavingRate != tc.rate {
			t.Fatalf("income=%d expense=%d rate=%v, want %v", tc.income, tc.expense, s.SavingRate, tc.rate)
		}
		if s.Band() != tc.band {
			t.Fatalf("income=%d expense=%d band=%s, want %s", tc.income, tc.expense, s.Band(), tc.band)
		}
	}
}

func TestLatest(t *testing.T) {
	var ts []Transaction
	for i := 0; i < 7; i++ {
		ts = append(ts, trx(Income, int64(i+1)))
	}
	if got := Latest(ts, 5); len(got) != 5 || got[0].Amount.Cents != 1 {
		t.Fatalf("Latest should keep the first five entries in order")
	}
	if got := Latest(ts[:3], 5); len(got) != 3 {
		t.Fatalf("Latest must not pad short sets")
	}
}
