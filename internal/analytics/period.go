package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"financas/internal/core"
)

// PeriodKind is the dashboard period selector.
type PeriodKind string

const (
	PeriodTotal         PeriodKind = "total"
	PeriodLastMonth     PeriodKind = "ultimo_mes"
	PeriodLastSixMonths PeriodKind = "ultimos_6_meses"
	PeriodCustom        PeriodKind = "customizado"
)

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrInvalidWindow = errors.New("invalid date window")
)

// Period selects the transactions a dashboard covers. Start and End are
// only meaningful for PeriodCustom.
type Period struct {
	Kind  PeriodKind
	Start core.Date
	End   core.Date
}

// ParsePeriod validates a selector and, for customizado, its inclusive
// YYYY-MM-DD bounds. An empty selector means total.
func ParsePeriod(kind, start, end string) (Period, error) {
	k := PeriodKind(strings.ToLower(strings.TrimSpace(kind)))
	switch k {
	case "":
		return Period{Kind: PeriodTotal}, nil
	case PeriodTotal, PeriodLastMonth, PeriodLastSixMonths:
		return Period{Kind: k}, nil
	case PeriodCustom:
		if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
			return Period{}, fmt.Errorf("%w: customizado requires data_inicio and data_fim", ErrInvalidWindow)
		}
		s, err := core.ParseDate(start)
		if err != nil {
			return Period{}, fmt.Errorf("%w: data_inicio: %v", ErrInvalidWindow, err)
		}
		e, err := core.ParseDate(end)
		if err != nil {
			return Period{}, fmt.Errorf("%w: data_fim: %v", ErrInvalidWindow, err)
		}
		if e.Before(s.Time) {
			return Period{}, fmt.Errorf("%w: data_inicio after data_fim", ErrInvalidWindow)
		}
		return Period{Kind: PeriodCustom, Start: s, End: e}, nil
	default:
		return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, kind)
	}
}

// Window is an inclusive day range. The zero Window is unbounded.
type Window struct {
	From core.Date
	To   core.Date
}

// Bounded reports whether w restricts dates at all.
func (w Window) Bounded() bool {
	return !w.From.IsZero() || !w.To.IsZero()
}

func (w Window) Contains(d core.Date) bool {
	if !w.From.IsZero() && d.Before(w.From.Time) {
		return false
	}
	if !w.To.IsZero() && d.After(w.To.Time) {
		return false
	}
	return true
}

// MonthsWindow covers n whole calendar months ending with last.
func MonthsWindow(last Month, n int) Window {
	if n < 1 {
		n = 1
	}
	return Window{From: last.Add(-(n - 1)).First(), To: last.Last()}
}

// Window resolves p against the reference time now.
func (p Period) Window(now time.Time) Window {
	ref := MonthOf(now)
	switch p.Kind {
	case PeriodLastMonth:
		return MonthsWindow(ref, 1)
	case PeriodLastSixMonths:
		return MonthsWindow(ref, 6)
	case PeriodCustom:
		return Window{From: p.Start, To: p.End}
	default:
		return Window{}
	}
}

// Filter returns the transactions of txs dated inside w.
func Filter(txs []core.Transaction, w Window) []core.Transaction {
	if !w.Bounded() {
		return txs
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if w.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}
