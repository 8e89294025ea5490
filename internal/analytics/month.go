package analytics

import (
	"fmt"
	"time"

	"financas/internal/core"
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Add returns the month n months after m (n may be negative).
func (m Month) Add(n int) Month {
	idx := m.Year*12 + int(m.Month) - 1 + n
	return Month{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// First returns the first day of the month.
func (m Month) First() core.Date {
	return core.NewDate(m.Year, int(m.Month), 1)
}

// Last returns the last day of the month.
func (m Month) Last() core.Date {
	return core.Date{Time: m.Add(1).First().AddDate(0, 0, -1)}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func monthOfTx(tx core.Transaction) Month {
	return MonthOf(tx.Date.Time)
}
