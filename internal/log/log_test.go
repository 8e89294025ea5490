package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf}).WithComponent(ComponentLedger)

	fields := NewFields().
		WithUser("u-1").
		WithTransaction("tx-1", "despesa", decimal.RequireFromString("12.5"), "Lazer").
		WithError(errors.New("boom"), ErrorTypeDatabase)
	l.Info("transaction stored", fields.ToSlice()...)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log: %v (%s)", err, buf.String())
	}
	want := map[string]any{
		FieldComponent:     ComponentLedger,
		FieldUserID:        "u-1",
		FieldTransactionID: "tx-1",
		FieldAmount:        "12.50",
		FieldCategory:      "Lazer",
		FieldError:         "boom",
		FieldErrorType:     ErrorTypeDatabase,
	}
	for k, v := range want {
		if rec[k] != v {
			t.Fatalf("field %s: expected %v, got %v", k, v, rec[k])
		}
	}
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	h := HTTPMiddleware(base, func(*http.Request) string { return "req-42" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()).Component() != ComponentHTTP {
				t.Errorf("request logger not installed")
			}
			w.WriteHeader(http.StatusNotFound)
		}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/receitas?mes=3", nil))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log: %v (%s)", err, buf.String())
	}
	if rec["level"] != "WARN" || rec[FieldStatusCode] != float64(404) || rec[FieldRequestID] != "req-42" {
		t.Fatalf("unexpected record %v", rec)
	}
	if rec[FieldQuery] != "mes=3" {
		t.Fatalf("expected query to be logged, got %v", rec[FieldQuery])
	}
}
