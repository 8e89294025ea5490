package analytics

import (
	"errors"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		name       string
		kind       string
		start, end string
		want       PeriodKind
		err        error
	}{
		{"empty is total", "", "", "", PeriodTotal, nil},
		{"total", "total", "", "", PeriodTotal, nil},
		{"last month", "ultimo_mes", "", "", PeriodLastMonth, nil},
		{"last six", " ULTIMOS_6_MESES ", "", "", PeriodLastSixMonths, nil},
		{"custom", "customizado", "2025-01-01", "2025-01-31", PeriodCustom, nil},
		{"custom same day", "customizado", "2025-01-01", "2025-01-01", PeriodCustom, nil},
		{"custom missing end", "customizado", "2025-01-01", "", "", ErrInvalidWindow},
		{"custom bad date", "customizado", "2025-01-01", "31/01/2025", "", ErrInvalidWindow},
		{"custom reversed", "customizado", "2025-02-01", "2025-01-01", "", ErrInvalidWindow},
		{"unknown", "ano_passado", "", "", "", ErrUnknownPeriod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePeriod(tc.kind, tc.start, tc.end)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Kind != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, p.Kind)
			}
		})
	}
}

func TestPeriodWindow(t *testing.T) {
	now := clockAt(2025, time.March, 15)()
	cases := []struct {
		p        Period
		from, to string
	}{
		{Period{Kind: PeriodTotal}, "", ""},
		{Period{Kind: PeriodLastMonth}, "2025-03-01", "2025-03-31"},
		{Period{Kind: PeriodLastSixMonths}, "2024-10-01", "2025-03-31"},
		{Period{Kind: PeriodCustom, Start: mustDate(t, "2025-01-10"), End: mustDate(t, "2025-02-05")}, "2025-01-10", "2025-02-05"},
	}
	for _, tc := range cases {
		w := tc.p.Window(now)
		if w.From.String() != tc.from || w.To.String() != tc.to {
			t.Fatalf("%s: expected %s..%s, got %s..%s", tc.p.Kind, tc.from, tc.to, w.From, w.To)
		}
	}
}

func TestWindowContainsIsInclusive(t *testing.T) {
	w := Window{From: mustDate(t, "2025-01-10"), To: mustDate(t, "2025-01-20")}
	for date, want := range map[string]bool{
		"2025-01-09": false,
		"2025-01-10": true,
		"2025-01-15": true,
		"2025-01-20": true,
		"2025-01-21": false,
	} {
		if got := w.Contains(mustDate(t, date)); got != want {
			t.Fatalf("%s: expected %v", date, want)
		}
	}
}

func TestMonthArithmetic(t *testing.T) {
	m := Month{Year: 2025, Month: time.January}
	if got := m.Add(-1); got != (Month{Year: 2024, Month: time.December}) {
		t.Fatalf("got %s", got)
	}
	if got := m.Add(13); got != (Month{Year: 2026, Month: time.February}) {
		t.Fatalf("got %s", got)
	}
	if got := (Month{Year: 2024, Month: time.February}).Last().String(); got != "2024-02-29" {
		t.Fatalf("got %s", got)
	}
}
