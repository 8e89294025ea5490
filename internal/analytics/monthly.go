package analytics

import (
	"sort"

	"financas/internal/core"

	"github.com/shopspring/decimal"
)

// MonthlySummary totals one calendar month.
type MonthlySummary struct {
	Month int `json:"mes"`
	Year  int `json:"ano"`
	Totals
}

// MonthlyStats aggregates a sequence of monthly summaries.
type MonthlyStats struct {
	Months          int             `json:"meses"`
	TotalIncome     decimal.Decimal `json:"total_receitas"`
	TotalExpenses   decimal.Decimal `json:"total_despesas"`
	TotalBalance    decimal.Decimal `json:"saldo_total"`
	AverageIncome   decimal.Decimal `json:"media_receitas"`
	AverageExpenses decimal.Decimal `json:"media_despesas"`
	AverageBalance  decimal.Decimal `json:"media_saldo"`
	ProfitMonths    int             `json:"meses_lucro"`
	LossMonths      int             `json:"meses_prejuizo"`
}

// Monthly returns one summary per month with at least one transaction,
// oldest first.
func (e *Engine) Monthly(txs []core.Transaction) []MonthlySummary {
	byMonth := make(map[Month][]core.Transaction)
	for _, tx := range txs {
		m := monthOfTx(tx)
		byMonth[m] = append(byMonth[m], tx)
	}

	months := make([]Month, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]MonthlySummary, 0, len(months))
	for _, m := range months {
		out = append(out, MonthlySummary{
			Month:  int(m.Month),
			Year:   m.Year,
			Totals: TotalsOf(byMonth[m]),
		})
	}
	return out
}

// SummarizeMonths computes totals and per-month means. An empty input
// yields zero values with Months == 0.
func SummarizeMonths(summaries []MonthlySummary) MonthlyStats {
	st := MonthlyStats{
		Months:        len(summaries),
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, s := range summaries {
		st.TotalIncome = st.TotalIncome.Add(s.Income)
		st.TotalExpenses = st.TotalExpenses.Add(s.Expenses)
		if s.Outcome == Profit {
			st.ProfitMonths++
		} else {
			st.LossMonths++
		}
	}
	st.TotalBalance = st.TotalIncome.Sub(st.TotalExpenses)
	st.AverageIncome = Mean(st.TotalIncome, st.Months)
	st.AverageExpenses = Mean(st.TotalExpenses, st.Months)
	st.AverageBalance = Mean(st.TotalBalance, st.Months)
	return st
}
