// Package storagetest holds the behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/storage"

	"github.com/shopspring/decimal"
)

// Run exercises store against the storage contract. newStore must return
// an empty store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("filters", func(t *testing.T) { testFilters(t, newStore(t)) })
}

// SeedUser creates user id with one income and two expense categories
// (<id>-sal, <id>-ali, <id>-tra).
func SeedUser(t *testing.T, s storage.Store, id string) {
	t.Helper()
	u := core.User{
		ID:           id,
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	cats := []core.Category{
		{ID: id + "-sal", Name: "Salário", Kind: core.Income},
		{ID: id + "-ali", Name: "Alimentação", Kind: core.Expense, Color: "#EF4444"},
		{ID: id + "-tra", Name: "Transporte", Kind: core.Expense},
	}
	if err := s.CreateUser(context.Background(), u, cats); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func tx(user, id string, kind core.Kind, cat, date, amount string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:          id,
		UserID:      user,
		Kind:        kind,
		Date:        d,
		Description: "tx " + id,
		CategoryID:  cat,
		Amount:      decimal.RequireFromString(amount),
		Method:      "PIX",
	}
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	SeedUser(t, s, "u1")

	got, err := s.UserByEmail(ctx, " U1@Example.com ")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if got.ID != "u1" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if !got.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("created_at = %v", got.CreatedAt)
	}
	if _, err := s.UserByID(ctx, "u1"); err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if _, err := s.UserByID(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	dup := core.User{ID: "u2", Name: "Dup", Email: "u1@example.com", PasswordHash: "x", CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, dup, nil); !errors.Is(err, core.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	cats, err := s.ListCategories(ctx, "u1", "")
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 seeded categories, got %d", len(cats))
	}
	// despesa sorts before receita
	if cats[0].Name != "Alimentação" || cats[2].Kind != core.Income {
		t.Fatalf("unexpected order: %+v", cats)
	}
	if cats[1].Color != core.DefaultCategoryColor {
		t.Fatalf("expected default color, got %q", cats[1].Color)
	}
}

func testCategories(t *testing.T, s storage.Store) {
	ctx := context.Background()
	SeedUser(t, s, "u1")
	SeedUser(t, s, "u2")

	c := core.Category{ID: "lazer", UserID: "u1", Name: "Lazer", Kind: core.Expense, Color: "#10B981"}
	if err := s.CreateCategory(ctx, c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := s.CreateCategory(ctx, core.Category{ID: "lazer2", UserID: "u1", Name: "Lazer", Kind: core.Expense}); !errors.Is(err, core.ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists, got %v", err)
	}
	// same name, other kind is allowed
	if err := s.CreateCategory(ctx, core.Category{ID: "lazer-r", UserID: "u1", Name: "Lazer", Kind: core.Income}); err != nil {
		t.Fatalf("same name other kind: %v", err)
	}

	got, err := s.CategoryByName(ctx, "u1", core.Expense, "Lazer")
	if err != nil || got.ID != "lazer" {
		t.Fatalf("CategoryByName = %+v, %v", got, err)
	}
	if _, err := s.CategoryByID(ctx, "u2", "lazer"); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("other user's category must not resolve, got %v", err)
	}

	c.Name = "Diversão"
	if err := s.UpdateCategory(ctx, c); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	c.Name = "Transporte"
	if err := s.UpdateCategory(ctx, c); !errors.Is(err, core.ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists on rename clash, got %v", err)
	}

	if _, err := s.CreateTransaction(ctx, tx("u1", "t1", core.Expense, "lazer", "2024-03-10", "20.00")); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	moved := core.Category{ID: "lazer", UserID: "u1", Name: "Diversão", Kind: core.Income}
	if err := s.UpdateCategory(ctx, moved); !errors.Is(err, core.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse on kind change, got %v", err)
	}
	if err := s.DeleteCategory(ctx, "u1", "lazer"); !errors.Is(err, core.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse on delete, got %v", err)
	}
	if _, err := s.DeleteTransaction(ctx, "u1", core.Expense, "t1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteCategory(ctx, "u1", "lazer"); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := s.DeleteCategory(ctx, "u1", "lazer"); !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func testTransactions(t *testing.T, s storage.Store) {
	ctx := context.Background()
	SeedUser(t, s, "u1")
	SeedUser(t, s, "u2")

	created, err := s.CreateTransaction(ctx, tx("u1", "t1", core.Expense, "u1-ali", "2024-03-10", "1234.56"))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.Category != "Alimentação" {
		t.Fatalf("category not resolved: %q", created.Category)
	}

	tests := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"unknown category", tx("u1", "x1", core.Expense, "nope", "2024-03-10", "1"), core.ErrCategoryNotFound},
		{"foreign category", tx("u1", "x2", core.Expense, "u2-ali", "2024-03-10", "1"), core.ErrCategoryNotFound},
		{"kind mismatch", tx("u1", "x3", core.Income, "u1-ali", "2024-03-10", "1"), core.ErrCategoryKindMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateTransaction(ctx, tt.tx); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	got, err := s.TransactionByID(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("TransactionByID: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("1234.56")) || got.Date.String() != "2024-03-10" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if _, err := s.TransactionByID(ctx, "u2", "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("other user must not read t1, got %v", err)
	}

	upd := tx("u1", "t1", core.Expense, "u1-tra", "2024-03-11", "10.50")
	upd.Description = "Ônibus"
	updated, err := s.UpdateTransaction(ctx, upd)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Category != "Transporte" {
		t.Fatalf("updated category = %q", updated.Category)
	}
	if _, err := s.UpdateTransaction(ctx, tx("u1", "t1", core.Income, "u1-sal", "2024-03-11", "1")); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("updating through the wrong kind must fail, got %v", err)
	}

	if _, err := s.DeleteTransaction(ctx, "u1", core.Income, "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete with wrong kind: %v", err)
	}
	deleted, err := s.DeleteTransaction(ctx, "u1", core.Expense, "t1")
	if err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if deleted.Description != "Ônibus" {
		t.Fatalf("deleted = %+v", deleted)
	}
	if _, err := s.TransactionByID(ctx, "u1", "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func testFilters(t *testing.T, s storage.Store) {
	ctx := context.Background()
	SeedUser(t, s, "u1")
	SeedUser(t, s, "u2")
	for _, x := range []core.Transaction{
		tx("u1", "a", core.Expense, "u1-ali", "2023-03-05", "10"),
		tx("u1", "b", core.Expense, "u1-ali", "2024-03-20", "20"),
		tx("u1", "c", core.Income, "u1-sal", "2024-03-01", "3000"),
		tx("u1", "d", core.Expense, "u1-tra", "2024-04-02", "5"),
		tx("u2", "e", core.Expense, "u2-ali", "2024-03-20", "99"),
	} {
		if _, err := s.CreateTransaction(ctx, x); err != nil {
			t.Fatalf("seed %s: %v", x.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter storage.TransactionFilter
		want   []string
	}{
		{"all newest first", storage.TransactionFilter{}, []string{"d", "b", "c", "a"}},
		{"kind", storage.TransactionFilter{Kind: core.Expense}, []string{"d", "b", "a"}},
		{"year and month", storage.TransactionFilter{Year: 2024, Month: 3}, []string{"b", "c"}},
		{"month in any year", storage.TransactionFilter{Month: 3}, []string{"b", "c", "a"}},
		{"year", storage.TransactionFilter{Year: 2023}, []string{"a"}},
		{"range", storage.TransactionFilter{From: core.NewDate(2024, 3, 2), To: core.NewDate(2024, 4, 2)}, []string{"d", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTransactions(ctx, "u1", tt.filter)
			if err != nil {
				t.Fatalf("ListTransactions: %v", err)
			}
			ids := make([]string, len(got))
			for i, x := range got {
				ids[i] = x.ID
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", ids, tt.want)
				}
			}
		})
	}
}
