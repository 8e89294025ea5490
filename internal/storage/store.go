// Package storage persists users, categories and transactions.
//
// Transactions reference categories by id. Implementations enforce that the
// referenced category exists, belongs to the same user and has the same
// kind, and refuse to delete a category that still has transactions.
package storage

import (
	"context"

	"financas/internal/core"
)

type UserStore interface {
	// CreateUser stores u together with its initial categories, atomically.
	// A duplicate email yields core.ErrEmailTaken.
	CreateUser(ctx context.Context, u core.User, categories []core.Category) error
	UserByEmail(ctx context.Context, email string) (core.User, error)
	UserByID(ctx context.Context, id string) (core.User, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) error
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error
	CategoryByID(ctx context.Context, userID, id string) (core.Category, error)
	CategoryByName(ctx context.Context, userID string, kind core.Kind, name string) (core.Category, error)
	// ListCategories returns the user's categories ordered by kind and
	// name. An empty kind lists both.
	ListCategories(ctx context.Context, userID string, kind core.Kind) ([]core.Category, error)
}

type TransactionStore interface {
	// CreateTransaction stores tx and returns it with the category name
	// resolved.
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	// DeleteTransaction removes a transaction of the given kind and
	// returns what was deleted.
	DeleteTransaction(ctx context.Context, userID string, kind core.Kind, id string) (core.Transaction, error)
	TransactionByID(ctx context.Context, userID, id string) (core.Transaction, error)
	// ListTransactions returns matching transactions, newest first.
	ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	UserStore
	CategoryStore
	TransactionStore
	Ping(ctx context.Context) error
	Close() error
}

// TransactionFilter narrows ListTransactions. Zero fields do not filter.
// Month without Year matches that month in every year.
type TransactionFilter struct {
	Kind  core.Kind
	From  core.Date
	To    core.Date
	Month int
	Year  int
}

// Bounds folds Year/Month into the From/To range where possible.
func (f TransactionFilter) Bounds() (from, to core.Date) {
	from, to = f.From, f.To
	if f.Year == 0 {
		return from, to
	}
	var lo, hi core.Date
	if f.Month >= 1 && f.Month <= 12 {
		lo = core.NewDate(f.Year, f.Month, 1)
		hi = core.Date{Time: lo.AddDate(0, 1, -1)}
	} else {
		lo = core.NewDate(f.Year, 1, 1)
		hi = core.NewDate(f.Year, 12, 31)
	}
	if from.IsZero() || lo.After(from.Time) {
		from = lo
	}
	if to.IsZero() || hi.Before(to.Time) {
		to = hi
	}
	return from, to
}

// Match reports whether tx satisfies every field of f.
func (f TransactionFilter) Match(tx core.Transaction) bool {
	if f.Kind != "" && tx.Kind != f.Kind {
		return false
	}
	from, to := f.Bounds()
	if !from.IsZero() && tx.Date.Before(from.Time) {
		return false
	}
	if !to.IsZero() && tx.Date.After(to.Time) {
		return false
	}
	if f.Month != 0 && tx.Month() != f.Month {
		return false
	}
	return true
}
