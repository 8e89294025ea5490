// Package sheets mirrors transactions into a spreadsheet. Rows are keyed by
// transaction id in the first column.
package sheets

import (
	"context"

	"financas/internal/core"
)

// Mirror keeps an external copy of the ledger in sync.
type Mirror interface {
	// Upsert rewrites the row of tx, appending one if it is not present.
	Upsert(ctx context.Context, tx core.Transaction) error
	// Remove clears the row with the given transaction id. Missing rows are
	// not an error.
	Remove(ctx context.Context, id string) error
}

// Header is the first row written to an empty sheet.
var Header = []any{"id", "data", "tipo", "descricao", "categoria", "valor", "forma", "usuario"}

// Row renders tx in Header order.
func Row(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.String(),
		string(tx.Kind),
		tx.Description,
		tx.Category,
		tx.Amount.StringFixed(2),
		tx.Method,
		tx.UserID,
	}
}
