package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"financas/internal/analytics"
	"financas/internal/services"
	"financas/internal/storage/memory"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

func newTestStack(t *testing.T) *stack {
	t.Helper()
	issuer, err := NewIssuer(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	return newStack(memory.New(), issuer, NewEngine(testConfig()))
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

	n, err := SeedDemo(ctx, st, "Usuário Demo", "demo@financas.local", "Demo@2024!", 4, now)
	if err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	// 4 months of the monthly entries plus the every-other-month ones at
	// offsets 0 and 2.
	if want := 4*4 + 2*2; n != want {
		t.Errorf("created %d transactions, want %d", n, want)
	}

	sess, err := sessionFor(ctx, st.store, "  DEMO@financas.local ")
	if err != nil {
		t.Fatalf("sessionFor: %v", err)
	}
	rep, err := st.reports.Monthly(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Months) != 4 {
		t.Fatalf("months = %d, want 4", len(rep.Months))
	}
	if first := rep.Months[0]; first.Month != 3 || first.Year != 2024 {
		t.Errorf("first month = %02d/%d, want 03/2024", first.Month, first.Year)
	}
	if rep.Stats.LossMonths != 0 {
		t.Errorf("loss months = %d, want 0", rep.Stats.LossMonths)
	}

	rec, err := st.reports.Recurring(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, d := range rec.RecurringDescriptions {
		if d.Description == "Aluguel" {
			found = d.Occurrences == 4
		}
	}
	if !found {
		t.Errorf("aluguel not reported as recurring 4 times: %+v", rec.RecurringDescriptions)
	}
}

func TestSeedDemoRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	st := newTestStack(t)
	now := time.Now()

	if _, err := SeedDemo(ctx, st, "Demo", "demo@financas.local", "Demo@2024!", 0, now); err == nil {
		t.Error("expected error for zero months")
	}
	_, err := SeedDemo(ctx, st, "Demo", "demo@financas.local", "fraca", 1, now)
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSessionForUnknownUser(t *testing.T) {
	st := newTestStack(t)
	if _, err := sessionFor(context.Background(), st.store, "ninguem@financas.local"); err == nil {
		t.Error("expected error for unknown user")
	}
	if _, err := sessionFor(context.Background(), st.store, " "); err == nil {
		t.Error("expected error for empty email")
	}
}

func sampleProjection() analytics.Projection {
	return analytics.Projection{
		AverageIncome:    decimal.NewFromInt(5000),
		AverageExpenses:  decimal.NewFromInt(3000),
		ProjectedBalance: decimal.NewFromInt(2000),
		Trend:            analytics.Growth,
		Months: []analytics.ProjectedMonth{
			{Month: 1, Income: decimal.NewFromInt(5000), Expenses: decimal.NewFromInt(3000), Balance: decimal.NewFromInt(2000)},
		},
		From: "2024-03-01",
		To:   "2024-05-31",
	}
}

func TestRenderFormats(t *testing.T) {
	p := sampleProjection()

	var js bytes.Buffer
	if err := Render(&js, OutputJSON, p); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["tendencia"] != "crescimento" {
		t.Errorf("tendencia = %v", decoded["tendencia"])
	}

	var ym bytes.Buffer
	if err := Render(&ym, OutputYAML, p); err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(ym.Bytes(), &doc); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if doc["tendencia"] != "crescimento" || doc["base_inicio"] != "2024-03-01" {
		t.Errorf("yaml doc = %v", doc)
	}

	var tbl bytes.Buffer
	if err := Render(&tbl, OutputTable, p); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tbl.String(), "R$ 2.000,00") {
		t.Errorf("table output missing projected balance:\n%s", tbl.String())
	}

	if err := Render(&bytes.Buffer{}, "xml", p); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestTablesFor(t *testing.T) {
	snap := analytics.DashboardSnapshot{
		Period: analytics.PeriodTotal,
		Totals: analytics.Totals{
			Income:      decimal.NewFromInt(5000),
			Expenses:    decimal.RequireFromString("1500.5"),
			Balance:     decimal.RequireFromString("3499.5"),
			SavingsRate: decimal.RequireFromString("69.99"),
			Outcome:     analytics.Profit,
		},
		Evolution:    []analytics.MonthBucket{{Month: 6, Year: 2024}},
		Distribution: []analytics.CategoryValue{{Category: "Moradia", Value: decimal.RequireFromString("1500.5")}},
	}

	tests := []struct {
		name   string
		report any
		titles []string
		row    []string
	}{
		{
			name:   "dashboard",
			report: snap,
			titles: []string{"Resumo (total)", "Evolução mensal", "Despesas por categoria"},
			row:    []string{"R$ 5.000,00", "R$ 1.500,50", "R$ 3.499,50", "69.99%", "lucro"},
		},
		{
			name: "monthly",
			report: services.MonthlyReport{
				Months: []analytics.MonthlySummary{{Month: 3, Year: 2024, Totals: snap.Totals}},
				Stats:  analytics.MonthlyStats{Months: 1, ProfitMonths: 1},
			},
			titles: []string{"Resumo mensal", "Estatísticas"},
			row:    []string{"03/2024", "R$ 5.000,00", "R$ 1.500,50", "R$ 3.499,50", "69.99%", "lucro"},
		},
		{
			name: "recurring",
			report: analytics.RecurrenceReport{
				FrequentCategories: []analytics.Frequency{{Category: "Moradia", Occurrences: 3, Total: decimal.NewFromInt(4500), Average: decimal.NewFromInt(1500)}},
			},
			titles: []string{"Categorias mais frequentes", "Descrições recorrentes", "Média por categoria"},
			row:    []string{"Moradia", "3", "R$ 4.500,00", "R$ 1.500,00"},
		},
		{
			name:   "projection",
			report: sampleProjection(),
			titles: []string{"Projeção (base 2024-03-01 a 2024-05-31)", "Próximos meses"},
			row:    []string{"R$ 5.000,00", "R$ 3.000,00", "R$ 2.000,00", "crescimento"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := tablesFor(tt.report)
			if len(tables) != len(tt.titles) {
				t.Fatalf("got %d tables, want %d", len(tables), len(tt.titles))
			}
			for i, title := range tt.titles {
				if tables[i].Title != title {
					t.Errorf("table %d title = %q, want %q", i, tables[i].Title, title)
				}
			}
			if got := tables[0].Data[1]; strings.Join(got, "|") != strings.Join(tt.row, "|") {
				t.Errorf("first row = %v, want %v", got, tt.row)
			}
		})
	}

	if tablesFor("unsupported") != nil {
		t.Error("unsupported report produced tables")
	}
}

func TestAppCommands(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("LOG_LEVEL", "error")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"migrate memory is a no-op", []string{"migrate"}, ""},
		{"report needs a known user", []string{"report", "resumo", "--email", "x@financas.local"}, "no user registered"},
		{"report needs an email", []string{"report", "projecoes"}, "--email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewApp("test")
			var out bytes.Buffer
			app.SetOutput(&out)
			app.SetArgs(tt.args)

			err := app.Execute(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Execute: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
