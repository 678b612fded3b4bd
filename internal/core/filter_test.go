package core

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	start, end := m.Range()
	if !start.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v, want first instant of March", end)
	}

	if _, err := ParseMonth("2025-13"); err == nil {
		t.Fatal("expected error for month 13")
	}
	if _, err := ParseMonth(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestMonthBoundaries(t *testing.T) {
	m := Month{Year: 2025, Month: time.January}

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !m.Matches(first) {
		t.Fatal("first instant of the month must be included")
	}
	nextFirst := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if m.Matches(nextFirst) {
		t.Fatal("first instant of the next month must be excluded")
	}
	lastNano := nextFirst.Add(-time.Nanosecond)
	if !m.Matches(lastNano) {
		t.Fatal("last instant of the month must be included")
	}
}

func TestFilterMatches(t *testing.T) {
	jan := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)
	income := Transaction{Type: Income, Category: "Salary", Amount: Money{Cents: 100}, CreatedAt: jan}
	expense := Transaction{Type: Expense, Category: "Food", Amount: Money{Cents: 50}, CreatedAt: feb}

	all := TransactionFilter{}
	if !all.Matches(income) || !all.Matches(expense) {
		t.Fatal("empty filter must match everything")
	}

	byType := TransactionFilter{Type: Income}
	if !byType.Matches(income) || byType.Matches(expense) {
		t.Fatal("type filter must be an exact match")
	}

	byMonth := TransactionFilter{Month: Month{Year: 2025, Month: time.January}}
	if !byMonth.Matches(income) || byMonth.Matches(expense) {
		t.Fatal("month filter mismatch")
	}
}

func TestParseSortDefaults(t *testing.T) {
	cases := map[string]Sort{
		"":            SortDateDesc,
		"date_desc":   SortDateDesc,
		"date_asc":    SortDateAsc,
		"amount_desc": SortAmountDesc,
		"amount_asc":  SortAmountAsc,
		"bogus":       SortDateDesc,
	}
	for in, want := range cases {
		if got := ParseSort(in); got != want {
			t.Fatalf("ParseSort(%q) = %s, want %s", in, got, want)
		}
	}
}
