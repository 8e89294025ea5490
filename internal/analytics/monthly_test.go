package analytics

import (
	"testing"
	"time"

	"financas/internal/core"
)

func TestMonthlyScenario(t *testing.T) {
	e := New(DefaultOptions(), clockAt(2025, time.June, 1))
	got := e.Monthly([]core.Transaction{
		income(t, "2025-01-05", "1000", "Salário"),
		expense(t, "2025-01-20", "600", "Moradia", "Aluguel"),
	})
	if len(got) != 1 {
		t.Fatalf("expected one month, got %d", len(got))
	}
	jan := got[0]
	if jan.Month != 1 || jan.Year != 2025 {
		t.Fatalf("expected 1/2025, got %d/%d", jan.Month, jan.Year)
	}
	assertDecimal(t, "total_receitas", jan.Income, "1000")
	assertDecimal(t, "total_despesas", jan.Expenses, "600")
	assertDecimal(t, "saldo", jan.Balance, "400")
	assertDecimal(t, "percentual_economia", jan.SavingsRate, "40.0")
	if jan.Outcome != Profit {
		t.Fatalf("expected lucro, got %s", jan.Outcome)
	}
}

func TestMonthlyOrderingAndOutcome(t *testing.T) {
	e := New(DefaultOptions(), nil)
	got := e.Monthly([]core.Transaction{
		expense(t, "2025-02-01", "50", "Lazer", "x"),
		income(t, "2024-12-01", "100", "Salário"),
		expense(t, "2024-12-15", "100", "Lazer", "y"),
		income(t, "2024-11-30", "10", "Salário"),
		expense(t, "2024-11-01", "20", "Lazer", "z"),
	})
	want := []struct {
		mes, ano int
		outcome  Outcome
	}{
		{11, 2024, Loss},
		{12, 2024, Profit}, // saldo 0 counts as lucro
		{2, 2025, Loss},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Month != w.mes || got[i].Year != w.ano || got[i].Outcome != w.outcome {
			t.Fatalf("position %d: expected %d/%d %s, got %d/%d %s",
				i, w.mes, w.ano, w.outcome, got[i].Month, got[i].Year, got[i].Outcome)
		}
	}
}

func TestSummarizeMonths(t *testing.T) {
	e := New(DefaultOptions(), nil)
	months := e.Monthly([]core.Transaction{
		income(t, "2025-01-05", "1000", "Salário"),
		expense(t, "2025-01-20", "600", "Moradia", "Aluguel"),
		income(t, "2025-02-05", "500", "Salário"),
		expense(t, "2025-02-20", "700", "Moradia", "Aluguel"),
	})
	st := SummarizeMonths(months)
	if st.Months != 2 || st.ProfitMonths != 1 || st.LossMonths != 1 {
		t.Fatalf("unexpected counts %+v", st)
	}
	assertDecimal(t, "total_receitas", st.TotalIncome, "1500")
	assertDecimal(t, "total_despesas", st.TotalExpenses, "1300")
	assertDecimal(t, "saldo_total", st.TotalBalance, "200")
	assertDecimal(t, "media_receitas", st.AverageIncome, "750")
	assertDecimal(t, "media_despesas", st.AverageExpenses, "650")
	assertDecimal(t, "media_saldo", st.AverageBalance, "100")
}

func TestSummarizeMonthsEmpty(t *testing.T) {
	if got := New(DefaultOptions(), nil).Monthly(nil); len(got) != 0 || got == nil {
		t.Fatalf("expected empty non-nil sequence, got %#v", got)
	}
	st := SummarizeMonths(nil)
	if st.Months != 0 {
		t.Fatalf("expected zero months, got %d", st.Months)
	}
	assertDecimal(t, "media_receitas", st.AverageIncome, "0")
	assertDecimal(t, "media_saldo", st.AverageBalance, "0")
}
