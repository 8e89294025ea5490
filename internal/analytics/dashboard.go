package analytics

import (
	"sort"

	"financas/internal/core"

	"github.com/shopspring/decimal"
)

// MonthBucket is one month of the dashboard evolution series. Buckets are
// independent; balances are never carried over.
type MonthBucket struct {
	Month    int             `json:"mes"`
	Year     int             `json:"ano"`
	Income   decimal.Decimal `json:"receitas"`
	Expenses decimal.Decimal `json:"despesas"`
	Balance  decimal.Decimal `json:"saldo"`
}

// CategoryValue is one slice of the expense distribution.
type CategoryValue struct {
	Category string          `json:"categoria"`
	Value    decimal.Decimal `json:"valor"`
}

// DashboardSnapshot is the dashboard payload for one period.
type DashboardSnapshot struct {
	Period     PeriodKind `json:"periodo"`
	From       string     `json:"data_inicio,omitempty"`
	To         string     `json:"data_fim,omitempty"`
	Totals
	Evolution    []MonthBucket   `json:"evolucao_mensal"`
	Distribution []CategoryValue `json:"categorias_distribuicao"`
}

// Dashboard builds the snapshot for period p. Totals and the category
// distribution cover the period window; the evolution series always spans
// the configured trailing months so it is not hollowed out by the filter.
func (e *Engine) Dashboard(txs []core.Transaction, p Period) DashboardSnapshot {
	now := e.now()
	w := p.Window(now)
	scoped := Filter(txs, w)

	anchor := MonthOf(now)
	if !e.opts.EvolutionIncludesCurrentMonth {
		anchor = anchor.Add(-1)
	}
	if p.Kind == PeriodCustom {
		anchor = MonthOf(p.End.Time)
	}

	kind := p.Kind
	if kind == "" {
		kind = PeriodTotal
	}
	_, expenses := Split(scoped)
	return DashboardSnapshot{
		Period:       kind,
		From:         w.From.String(),
		To:           w.To.String(),
		Totals:       TotalsOf(scoped),
		Evolution:    Evolution(txs, anchor, e.opts.EvolutionMonths),
		Distribution: Distribution(expenses),
	}
}

// Evolution returns n ascending monthly buckets ending at last, including
// months without activity.
func Evolution(txs []core.Transaction, last Month, n int) []MonthBucket {
	if n < 1 {
		n = 1
	}
	first := last.Add(-(n - 1))
	buckets := make([]MonthBucket, n)
	for i := range buckets {
		m := first.Add(i)
		buckets[i] = MonthBucket{
			Month:    int(m.Month),
			Year:     m.Year,
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
			Balance:  decimal.Zero,
		}
	}
	for _, tx := range txs {
		m := monthOfTx(tx)
		if m.Before(first) || last.Before(m) {
			continue
		}
		b := &buckets[(m.Year*12+int(m.Month))-(first.Year*12+int(first.Month))]
		switch tx.Kind {
		case core.Income:
			b.Income = b.Income.Add(tx.Amount)
		case core.Expense:
			b.Expenses = b.Expenses.Add(tx.Amount)
		}
	}
	for i := range buckets {
		buckets[i].Balance = buckets[i].Income.Sub(buckets[i].Expenses)
	}
	return buckets
}

// Distribution sums expenses per category name, largest first. Categories
// totalling zero are omitted. Names are taken as-is, so a transaction whose
// category no longer exists still forms its own slice.
func Distribution(expenses []core.Transaction) []CategoryValue {
	sums := GroupSum(expenses, func(tx core.Transaction) string { return tx.Category })
	out := make([]CategoryValue, 0, len(sums))
	for name, v := range sums {
		if v.IsZero() {
			continue
		}
		out = append(out, CategoryValue{Category: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
