package analytics

import (
	"sort"
	"strings"

	"financas/internal/core"

	"github.com/shopspring/decimal"
)

// Frequency describes how often a category or description occurs.
type Frequency struct {
	Category    string          `json:"categoria,omitempty"`
	Description string          `json:"descricao,omitempty"`
	Occurrences int             `json:"ocorrencias"`
	Total       decimal.Decimal `json:"valor_total"`
	Average     decimal.Decimal `json:"valor_medio"`
}

// CategoryAverage is the per-category spending overview.
type CategoryAverage struct {
	Category    string          `json:"categoria"`
	Average     decimal.Decimal `json:"media_gasto"`
	Total       decimal.Decimal `json:"total_gasto"`
	Occurrences int             `json:"ocorrencias"`
}

// RecurrenceReport groups expenses to surface spending habits.
type RecurrenceReport struct {
	FrequentCategories    []Frequency       `json:"categorias_mais_frequentes"`
	RecurringDescriptions []Frequency       `json:"descricoes_recorrentes"`
	CategoryAverages      []CategoryAverage `json:"media_por_categoria"`
}

type group struct {
	label string
	count int
	total decimal.Decimal
}

// Recurring analyzes expense history. Income transactions are ignored.
//
// Ranked lists are ordered by occurrences, then total, then label, and are
// capped at Options.RecurringTopN. Descriptions are compared after trimming,
// collapsing inner whitespace and lowercasing; only descriptions seen at
// least twice are reported.
func (e *Engine) Recurring(txs []core.Transaction) RecurrenceReport {
	_, expenses := Split(txs)

	byCategory := groupBy(expenses, func(tx core.Transaction) (string, string) {
		return tx.Category, tx.Category
	})
	byDescription := groupBy(expenses, func(tx core.Transaction) (string, string) {
		label := strings.Join(strings.Fields(tx.Description), " ")
		return strings.ToLower(label), label
	})

	report := RecurrenceReport{
		FrequentCategories:    make([]Frequency, 0, len(byCategory)),
		RecurringDescriptions: make([]Frequency, 0),
		CategoryAverages:      make([]CategoryAverage, 0, len(byCategory)),
	}

	for _, g := range byCategory {
		report.FrequentCategories = append(report.FrequentCategories, Frequency{
			Category:    g.label,
			Occurrences: g.count,
			Total:       g.total,
			Average:     Mean(g.total, g.count),
		})
		report.CategoryAverages = append(report.CategoryAverages, CategoryAverage{
			Category:    g.label,
			Average:     Mean(g.total, g.count),
			Total:       g.total,
			Occurrences: g.count,
		})
	}
	for _, g := range byDescription {
		if g.count < 2 {
			continue
		}
		report.RecurringDescriptions = append(report.RecurringDescriptions, Frequency{
			Description: g.label,
			Occurrences: g.count,
			Total:       g.total,
			Average:     Mean(g.total, g.count),
		})
	}

	rankFrequencies(report.FrequentCategories, func(f Frequency) string { return f.Category })
	rankFrequencies(report.RecurringDescriptions, func(f Frequency) string { return f.Description })
	sort.Slice(report.CategoryAverages, func(i, j int) bool {
		a, b := report.CategoryAverages[i], report.CategoryAverages[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})

	if n := e.opts.RecurringTopN; n > 0 {
		if len(report.FrequentCategories) > n {
			report.FrequentCategories = report.FrequentCategories[:n]
		}
		if len(report.RecurringDescriptions) > n {
			report.RecurringDescriptions = report.RecurringDescriptions[:n]
		}
	}
	return report
}

// groupBy buckets txs by key. The label of a group is the one produced by
// its first transaction.
func groupBy(txs []core.Transaction, key func(core.Transaction) (k, label string)) map[string]*group {
	out := make(map[string]*group)
	for _, tx := range txs {
		k, label := key(tx)
		g, ok := out[k]
		if !ok {
			g = &group{label: label, total: decimal.Zero}
			out[k] = g
		}
		g.count++
		g.total = g.total.Add(tx.Amount)
	}
	return out
}

func rankFrequencies(fs []Frequency, label func(Frequency) string) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].Occurrences != fs[j].Occurrences {
			return fs[i].Occurrences > fs[j].Occurrences
		}
		if c := fs[i].Total.Cmp(fs[j].Total); c != 0 {
			return c > 0
		}
		return label(fs[i]) < label(fs[j])
	})
}
