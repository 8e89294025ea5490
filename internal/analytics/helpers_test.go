package analytics

import (
	"testing"
	"time"

	"financas/internal/core"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func clockAt(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 12, 0, 0, 0, time.UTC) }
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	dt, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", s, err)
	}
	return dt
}

func income(t *testing.T, date, amount, category string) core.Transaction {
	t.Helper()
	return core.Transaction{
		Date:        mustDate(t, date),
		Description: category,
		Category:    category,
		Amount:      d(amount),
		Kind:        core.Income,
		Method:      "PIX",
	}
}

func expense(t *testing.T, date, amount, category, description string) core.Transaction {
	t.Helper()
	return core.Transaction{
		Date:        mustDate(t, date),
		Description: description,
		Category:    category,
		Amount:      d(amount),
		Kind:        core.Expense,
		Method:      "PIX",
	}
}

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Fatalf("%s: expected %s, got %s", field, want, got)
	}
}
