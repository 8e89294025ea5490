package analytics

import (
	"financas/internal/core"

	"github.com/shopspring/decimal"
)

// Trend classifies the projected balance.
type Trend string

const (
	Growth  Trend = "crescimento"
	Decline Trend = "declinio"
	Neutral Trend = "neutro"
)

// ProjectedMonth is one step of the flat projection. Month is a 1-based
// offset from now, not a calendar month.
type ProjectedMonth struct {
	Month    int             `json:"mes"`
	Income   decimal.Decimal `json:"receita_estimada"`
	Expenses decimal.Decimal `json:"despesa_estimada"`
	Balance  decimal.Decimal `json:"saldo_estimado"`
}

type Projection struct {
	AverageIncome    decimal.Decimal  `json:"media_receitas"`
	AverageExpenses  decimal.Decimal  `json:"media_despesas"`
	ProjectedBalance decimal.Decimal  `json:"saldo_projetado"`
	Trend            Trend            `json:"tendencia"`
	Months           []ProjectedMonth `json:"projecao_6_meses"`
	// InsufficientData is set when the trailing window has no transactions.
	InsufficientData bool   `json:"dados_insuficientes"`
	From             string `json:"base_inicio"`
	To               string `json:"base_fim"`
}

// ClassifyTrend maps a balance to a trend using a symmetric neutral band.
func ClassifyTrend(balance, band decimal.Decimal) Trend {
	band = band.Abs()
	switch {
	case balance.GreaterThan(band):
		return Growth
	case balance.LessThan(band.Neg()):
		return Decline
	default:
		return Neutral
	}
}

// ProjectionWindow returns the trailing months averaged by Projection.
func (e *Engine) ProjectionWindow() Window {
	last := MonthOf(e.now())
	if !e.opts.ProjectionIncludesCurrentMonth {
		last = last.Add(-1)
	}
	return MonthsWindow(last, e.opts.ProjectionMonths)
}

// Projection averages monthly income and expenses over the trailing window
// and extrapolates them, unchanged, over the horizon. Means are taken over
// the months of the window that have any activity.
func (e *Engine) Projection(txs []core.Transaction) Projection {
	w := e.ProjectionWindow()
	scoped := Filter(txs, w)

	active := make(map[Month]struct{})
	for _, tx := range scoped {
		active[monthOfTx(tx)] = struct{}{}
	}
	income, expenses := Split(scoped)

	n := decimal.NewFromInt(int64(len(active)))
	avgIn, avgOut := decimal.Zero, decimal.Zero
	if len(active) > 0 {
		avgIn = Sum(income).Div(n)
		avgOut = Sum(expenses).Div(n)
	}
	avgIn, avgOut = avgIn.Round(2), avgOut.Round(2)
	// the balance is taken from the rounded means so it always reconciles
	balance := avgIn.Sub(avgOut)

	p := Projection{
		AverageIncome:    avgIn,
		AverageExpenses:  avgOut,
		ProjectedBalance: balance,
		Trend:            ClassifyTrend(balance, e.opts.NeutralBand),
		Months:           make([]ProjectedMonth, e.opts.ProjectionHorizon),
		InsufficientData: len(active) == 0,
		From:             w.From.String(),
		To:               w.To.String(),
	}
	for i := range p.Months {
		p.Months[i] = ProjectedMonth{
			Month:    i + 1,
			Income:   p.AverageIncome,
			Expenses: p.AverageExpenses,
			Balance:  p.ProjectedBalance,
		}
	}
	return p
}
