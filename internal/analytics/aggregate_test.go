package analytics

import (
	"testing"

	"financas/internal/core"
)

func TestSum(t *testing.T) {
	assertDecimal(t, "empty", Sum(nil), "0")
	txs := []core.Transaction{
		expense(t, "2025-01-01", "10.10", "A", "x"),
		expense(t, "2025-01-02", "0.20", "A", "y"),
		income(t, "2025-01-03", "5", "B"),
	}
	assertDecimal(t, "sum", Sum(txs), "15.30")
}

func TestGroupSum(t *testing.T) {
	txs := []core.Transaction{
		expense(t, "2025-01-01", "10", "Lazer", "x"),
		expense(t, "2025-02-01", "5", "Lazer", "y"),
		expense(t, "2025-02-03", "7", "Moradia", "z"),
	}
	byCat := GroupSum(txs, func(tx core.Transaction) string { return tx.Category })
	if len(byCat) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(byCat))
	}
	assertDecimal(t, "Lazer", byCat["Lazer"], "15")
	assertDecimal(t, "Moradia", byCat["Moradia"], "7")

	byMonth := GroupSum(txs, monthOfTx)
	assertDecimal(t, "feb", byMonth[Month{Year: 2025, Month: 2}], "12")
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		num, den, want string
	}{
		{"400", "1000", "40"},
		{"1", "3", "33.33"},
		{"2", "3", "66.67"},
		{"-200", "1000", "-20"},
		{"500", "0", "0"},
		{"0", "0", "0"},
	}
	for _, tc := range cases {
		assertDecimal(t, tc.num+"/"+tc.den, Percentage(d(tc.num), d(tc.den)), tc.want)
	}
}

func TestMean(t *testing.T) {
	assertDecimal(t, "zero buckets", Mean(d("100"), 0), "0")
	assertDecimal(t, "thirds", Mean(d("100"), 3), "33.33")
}

func TestTotalsBalanceIsExact(t *testing.T) {
	sets := [][]core.Transaction{
		{income(t, "2025-01-01", "1000.10", "S"), expense(t, "2025-01-02", "999.99", "A", "x")},
		{expense(t, "2025-01-02", "0.01", "A", "x")},
		{income(t, "2025-01-01", "0.30", "S"), income(t, "2025-01-01", "0.60", "S"), expense(t, "2025-01-02", "0.90", "A", "x")},
	}
	for i, txs := range sets {
		tot := TotalsOf(txs)
		if !tot.Balance.Equal(tot.Income.Sub(tot.Expenses)) {
			t.Fatalf("set %d: saldo %s != %s - %s", i, tot.Balance, tot.Income, tot.Expenses)
		}
	}
}

func TestSavingsRateZeroWithoutIncome(t *testing.T) {
	tot := TotalsOf([]core.Transaction{expense(t, "2025-01-02", "250", "A", "x")})
	assertDecimal(t, "percentual_economia", tot.SavingsRate, "0")
	assertDecimal(t, "saldo", tot.Balance, "-250")
	if tot.Outcome != Loss {
		t.Fatalf("expected prejuizo, got %s", tot.Outcome)
	}
}
