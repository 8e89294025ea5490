package memory

import (
	"context"
	"sync"

	"financas/internal/core"
	"financas/internal/sheets"
)

// Mirror is an in-process sheets.Mirror. Removed rows are blanked rather
// than dropped so row positions stay stable, like a real sheet.
type Mirror struct {
	mu   sync.Mutex
	rows [][]any
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

func (m *Mirror) Upsert(_ context.Context, tx core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := sheets.Row(tx)
	if i := m.find(tx.ID); i >= 0 {
		m.rows[i] = row
		return nil
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *Mirror) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.find(id); i >= 0 {
		m.rows[i] = nil
	}
	return nil
}

// Rows returns a copy of the current rows, blanks included.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.rows))
	copy(out, m.rows)
	return out
}

// Row returns the row for id, if any.
func (m *Mirror) Row(id string) ([]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.find(id); i >= 0 {
		return m.rows[i], true
	}
	return nil, false
}

func (m *Mirror) find(id string) int {
	for i, r := range m.rows {
		if len(r) > 0 && r[0] == id {
			return i
		}
	}
	return -1
}
