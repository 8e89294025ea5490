package analytics

import (
	"financas/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Sum returns the total amount of txs. Empty input yields zero.
func Sum(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// GroupSum totals amounts per key. Iteration order of the result is
// unspecified; callers that render it sort explicitly.
func GroupSum[K comparable](txs []core.Transaction, key func(core.Transaction) K) map[K]decimal.Decimal {
	out := make(map[K]decimal.Decimal)
	for _, tx := range txs {
		k := key(tx)
		out[k] = out[k].Add(tx.Amount)
	}
	return out
}

// Percentage returns numerator/denominator*100 rounded to two places,
// or zero when the denominator is zero.
func Percentage(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Mul(hundred).Div(denominator).Round(2)
}

// Mean divides total by n rounded to two places. n <= 0 yields zero.
func Mean(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// Split partitions txs by kind, preserving order.
func Split(txs []core.Transaction) (income, expenses []core.Transaction) {
	for _, tx := range txs {
		switch tx.Kind {
		case core.Income:
			income = append(income, tx)
		case core.Expense:
			expenses = append(expenses, tx)
		}
	}
	return income, expenses
}

// Outcome labels a balance as profit or loss.
type Outcome string

const (
	Profit Outcome = "lucro"
	Loss   Outcome = "prejuizo"
)

// OutcomeOf returns Profit for non-negative balances.
func OutcomeOf(balance decimal.Decimal) Outcome {
	if balance.IsNegative() {
		return Loss
	}
	return Profit
}

// Totals holds the income/expense reduction shared by every view.
type Totals struct {
	Income      decimal.Decimal `json:"total_receitas"`
	Expenses    decimal.Decimal `json:"total_despesas"`
	Balance     decimal.Decimal `json:"saldo"`
	SavingsRate decimal.Decimal `json:"percentual_economia"`
	Outcome     Outcome         `json:"lucro_prejuizo"`
}

// TotalsOf reduces txs into income, expense, balance and savings rate.
func TotalsOf(txs []core.Transaction) Totals {
	income, expenses := Split(txs)
	in, out := Sum(income), Sum(expenses)
	balance := in.Sub(out)
	return Totals{
		Income:      in,
		Expenses:    out,
		Balance:     balance,
		SavingsRate: Percentage(balance, in),
		Outcome:     OutcomeOf(balance),
	}
}
