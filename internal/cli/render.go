package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"financas/internal/analytics"
	"financas/internal/core"
	"financas/internal/services"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// titledTable is one pterm table with a heading. The first row is the
// header.
type titledTable struct {
	Title string
	Data  pterm.TableData
}

// Render writes a report in the requested format.
func Render(w io.Writer, format string, report any) error {
	switch format {
	case OutputTable, "":
		return renderTables(w, tablesFor(report))
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case OutputYAML:
		return renderYAML(w, report)
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// renderYAML goes through the JSON encoding so the field names match the
// API payloads.
func renderYAML(w io.Writer, report any) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func renderTables(w io.Writer, tables []titledTable) error {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, pterm.FgLightCyan.Sprint(t.Title))
		if len(t.Data) < 2 {
			fmt.Fprintln(w, pterm.FgGray.Sprint("  (sem dados)"))
			continue
		}
		out, err := pterm.DefaultTable.WithHasHeader().WithData(t.Data).Srender()
		if err != nil {
			return fmt.Errorf("render %s: %w", t.Title, err)
		}
		fmt.Fprintln(w, out)
	}
	return nil
}

func tablesFor(report any) []titledTable {
	switch r := report.(type) {
	case analytics.DashboardSnapshot:
		return dashboardTables(r)
	case services.MonthlyReport:
		return monthlyTables(r)
	case analytics.RecurrenceReport:
		return recurringTables(r)
	case analytics.Projection:
		return projectionTables(r)
	}
	return nil
}

func brl(d decimal.Decimal) string { return core.FormatBRL(d) }

func percent(d decimal.Decimal) string { return d.StringFixed(2) + "%" }

func monthLabel(month, year int) string { return fmt.Sprintf("%02d/%d", month, year) }

func totalsRow(t analytics.Totals) []string {
	return []string{brl(t.Income), brl(t.Expenses), brl(t.Balance), percent(t.SavingsRate), string(t.Outcome)}
}

func dashboardTables(s analytics.DashboardSnapshot) []titledTable {
	title := "Resumo (" + string(s.Period)
	if s.From != "" || s.To != "" {
		title += " " + s.From + " a " + s.To
	}
	title += ")"

	summary := pterm.TableData{
		{"Receitas", "Despesas", "Saldo", "Economia", "Resultado"},
		totalsRow(s.Totals),
	}

	evolution := pterm.TableData{{"Mês", "Receitas", "Despesas", "Saldo"}}
	for _, b := range s.Evolution {
		evolution = append(evolution, []string{monthLabel(b.Month, b.Year), brl(b.Income), brl(b.Expenses), brl(b.Balance)})
	}

	distribution := pterm.TableData{{"Categoria", "Valor"}}
	for _, c := range s.Distribution {
		distribution = append(distribution, []string{c.Category, brl(c.Value)})
	}

	return []titledTable{
		{Title: title, Data: summary},
		{Title: "Evolução mensal", Data: evolution},
		{Title: "Despesas por categoria", Data: distribution},
	}
}

func monthlyTables(r services.MonthlyReport) []titledTable {
	months := pterm.TableData{{"Mês", "Receitas", "Despesas", "Saldo", "Economia", "Resultado"}}
	for _, m := range r.Months {
		months = append(months, append([]string{monthLabel(m.Month, m.Year)}, totalsRow(m.Totals)...))
	}

	st := r.Stats
	stats := pterm.TableData{
		{"Indicador", "Valor"},
		{"Meses", strconv.Itoa(st.Months)},
		{"Total de receitas", brl(st.TotalIncome)},
		{"Total de despesas", brl(st.TotalExpenses)},
		{"Saldo total", brl(st.TotalBalance)},
		{"Média de receitas", brl(st.AverageIncome)},
		{"Média de despesas", brl(st.AverageExpenses)},
		{"Média de saldo", brl(st.AverageBalance)},
		{"Meses com lucro", strconv.Itoa(st.ProfitMonths)},
		{"Meses com prejuízo", strconv.Itoa(st.LossMonths)},
	}

	return []titledTable{
		{Title: "Resumo mensal", Data: months},
		{Title: "Estatísticas", Data: stats},
	}
}

func frequencyTable(header string, rows []analytics.Frequency, label func(analytics.Frequency) string) pterm.TableData {
	data := pterm.TableData{{header, "Ocorrências", "Total", "Média"}}
	for _, f := range rows {
		data = append(data, []string{label(f), strconv.Itoa(f.Occurrences), brl(f.Total), brl(f.Average)})
	}
	return data
}

func recurringTables(r analytics.RecurrenceReport) []titledTable {
	averages := pterm.TableData{{"Categoria", "Média", "Total", "Ocorrências"}}
	for _, a := range r.CategoryAverages {
		averages = append(averages, []string{a.Category, brl(a.Average), brl(a.Total), strconv.Itoa(a.Occurrences)})
	}

	return []titledTable{
		{Title: "Categorias mais frequentes", Data: frequencyTable("Categoria", r.FrequentCategories,
			func(f analytics.Frequency) string { return f.Category })},
		{Title: "Descrições recorrentes", Data: frequencyTable("Descrição", r.RecurringDescriptions,
			func(f analytics.Frequency) string { return f.Description })},
		{Title: "Média por categoria", Data: averages},
	}
}

func projectionTables(p analytics.Projection) []titledTable {
	title := "Projeção"
	if p.From != "" {
		title += " (base " + p.From + " a " + p.To + ")"
	}
	if p.InsufficientData {
		title += " - dados insuficientes"
	}

	summary := pterm.TableData{
		{"Média de receitas", "Média de despesas", "Saldo projetado", "Tendência"},
		{brl(p.AverageIncome), brl(p.AverageExpenses), brl(p.ProjectedBalance), string(p.Trend)},
	}

	months := pterm.TableData{{"Mês", "Receita estimada", "Despesa estimada", "Saldo estimado"}}
	for _, m := range p.Months {
		months = append(months, []string{"+" + strconv.Itoa(m.Month), brl(m.Income), brl(m.Expenses), brl(m.Balance)})
	}

	return []titledTable{
		{Title: title, Data: summary},
		{Title: "Próximos meses", Data: months},
	}
}
