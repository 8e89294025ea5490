package analytics

import (
	"testing"
	"time"

	"financas/internal/core"
)

func projectionFixture(t *testing.T) []core.Transaction {
	t.Helper()
	return []core.Transaction{
		expense(t, "2024-12-10", "5000", "Moradia", "fora da janela"),
		income(t, "2025-01-05", "1000", "Salário"),
		expense(t, "2025-01-10", "1200", "Moradia", "Aluguel"),
		income(t, "2025-02-05", "1000", "Salário"),
		expense(t, "2025-02-10", "1200", "Moradia", "Aluguel"),
		income(t, "2025-03-05", "1000", "Salário"),
		expense(t, "2025-03-10", "1200", "Moradia", "Aluguel"),
		income(t, "2025-04-02", "99999", "Vendas"),
	}
}

func TestProjectionDecliningScenario(t *testing.T) {
	e := New(DefaultOptions(), clockAt(2025, time.April, 10))
	p := e.Projection(projectionFixture(t))

	assertDecimal(t, "media_receitas", p.AverageIncome, "1000")
	assertDecimal(t, "media_despesas", p.AverageExpenses, "1200")
	assertDecimal(t, "saldo_projetado", p.ProjectedBalance, "-200")
	if p.Trend != Decline {
		t.Fatalf("expected declinio, got %s", p.Trend)
	}
	if p.InsufficientData {
		t.Fatal("expected data to be sufficient")
	}
	if p.From != "2025-01-01" || p.To != "2025-03-31" {
		t.Fatalf("unexpected window %s..%s", p.From, p.To)
	}
	if len(p.Months) != 6 {
		t.Fatalf("expected 6 projected months, got %d", len(p.Months))
	}
	for i, m := range p.Months {
		if m.Month != i+1 {
			t.Fatalf("expected mes %d, got %d", i+1, m.Month)
		}
		assertDecimal(t, "receita_estimada", m.Income, "1000")
		assertDecimal(t, "despesa_estimada", m.Expenses, "1200")
		assertDecimal(t, "saldo_estimado", m.Balance, "-200")
	}
}

func TestProjectionIncludingCurrentMonth(t *testing.T) {
	opts := DefaultOptions()
	opts.ProjectionIncludesCurrentMonth = true
	p := New(opts, clockAt(2025, time.April, 10)).Projection(projectionFixture(t))

	assertDecimal(t, "media_receitas", p.AverageIncome, "33999.67")
	assertDecimal(t, "media_despesas", p.AverageExpenses, "800")
	assertDecimal(t, "saldo_projetado", p.ProjectedBalance, "33199.67")
	if p.Trend != Growth {
		t.Fatalf("expected crescimento, got %s", p.Trend)
	}
}

func TestProjectionAveragesActiveMonths(t *testing.T) {
	e := New(DefaultOptions(), clockAt(2025, time.April, 10))
	p := e.Projection([]core.Transaction{
		income(t, "2025-01-05", "900", "Salário"),
		income(t, "2025-03-05", "1100", "Salário"),
	})
	assertDecimal(t, "media_receitas", p.AverageIncome, "1000")
	assertDecimal(t, "media_despesas", p.AverageExpenses, "0")
}

func TestProjectionBalanceReconcilesWithRoundedMeans(t *testing.T) {
	e := New(DefaultOptions(), clockAt(2025, time.April, 10))
	p := e.Projection([]core.Transaction{
		income(t, "2025-01-05", "0.50", "Salário"),
		income(t, "2025-02-05", "0.50", "Salário"),
		expense(t, "2025-03-10", "0.02", "Moradia", "Tarifa"),
	})
	assertDecimal(t, "media_receitas", p.AverageIncome, "0.33")
	assertDecimal(t, "media_despesas", p.AverageExpenses, "0.01")
	assertDecimal(t, "saldo_projetado", p.ProjectedBalance, "0.32")
	assertDecimal(t, "saldo_estimado", p.Months[0].Balance, "0.32")
}

func TestProjectionNoData(t *testing.T) {
	e := New(DefaultOptions(), clockAt(2025, time.April, 10))
	for name, txs := range map[string][]core.Transaction{
		"empty":           nil,
		"only old data":   {income(t, "2020-01-01", "1000", "Salário")},
		"only this month": {income(t, "2025-04-01", "1000", "Salário")},
	} {
		t.Run(name, func(t *testing.T) {
			p := e.Projection(txs)
			assertDecimal(t, "media_receitas", p.AverageIncome, "0")
			assertDecimal(t, "media_despesas", p.AverageExpenses, "0")
			if p.Trend != Neutral {
				t.Fatalf("expected neutro, got %s", p.Trend)
			}
			if !p.InsufficientData {
				t.Fatal("expected dados_insuficientes")
			}
			if len(p.Months) != 6 {
				t.Fatalf("expected 6 entries, got %d", len(p.Months))
			}
			for _, m := range p.Months {
				assertDecimal(t, "saldo_estimado", m.Balance, "0")
			}
		})
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		balance, band string
		want          Trend
	}{
		{"0.01", "0", Growth},
		{"-0.01", "0", Decline},
		{"0", "0", Neutral},
		{"-200", "250", Neutral},
		{"250", "250", Neutral},
		{"250.01", "250", Growth},
		{"-250.01", "-250", Decline},
	}
	for _, tc := range cases {
		if got := ClassifyTrend(d(tc.balance), d(tc.band)); got != tc.want {
			t.Fatalf("balance %s band %s: expected %s, got %s", tc.balance, tc.band, tc.want, got)
		}
	}
}

func TestProjectionNeutralBand(t *testing.T) {
	opts := DefaultOptions()
	opts.NeutralBand = d("250")
	p := New(opts, clockAt(2025, time.April, 10)).Projection(projectionFixture(t))
	if p.Trend != Neutral {
		t.Fatalf("expected neutro inside the band, got %s", p.Trend)
	}
	assertDecimal(t, "saldo_projetado", p.ProjectedBalance, "-200")
}
