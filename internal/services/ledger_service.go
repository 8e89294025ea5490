package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"financas/internal/amqp"
	"financas/internal/auth"
	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"

	"github.com/google/uuid"
)

// CategoryInput is a category as submitted by a client.
type CategoryInput struct {
	Name  string
	Kind  string
	Color string
}

// TransactionInput is a receita or despesa as submitted by a client. The
// category may be given by id or by name; Amount is the raw decimal text.
type TransactionInput struct {
	Date        string
	Description string
	CategoryID  string
	Category    string
	Amount      string
	Method      string
}

// LedgerService owns writes to categories and transactions. Every
// successful write drops the user's cached views and, when a publisher is
// configured, announces transaction changes.
type LedgerService struct {
	store  storage.Store
	views  cache.ViewCache
	events EventPublisher
	logger *log.Logger
}

// NewLedgerService wires the service. views and events may be nil.
func NewLedgerService(store storage.Store, views cache.ViewCache, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  store,
		views:  views,
		events: events,
		logger: log.ForComponent(log.ComponentLedger),
	}
}

func (s *LedgerService) ListCategories(ctx context.Context, sess auth.Session, kind string) ([]core.Category, error) {
	var k core.Kind
	if strings.TrimSpace(kind) != "" {
		parsed, err := core.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		k = parsed
	}
	return s.store.ListCategories(ctx, sess.UserID, k)
}

func (s *LedgerService) CreateCategory(ctx context.Context, sess auth.Session, in CategoryInput) (core.Category, error) {
	c, err := categoryFrom(sess.UserID, uuid.NewString(), in)
	if err != nil {
		return core.Category{}, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx, sess.UserID)
	return s.store.CategoryByID(ctx, sess.UserID, c.ID)
}

func (s *LedgerService) UpdateCategory(ctx context.Context, sess auth.Session, id string, in CategoryInput) (core.Category, error) {
	c, err := categoryFrom(sess.UserID, id, in)
	if err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx, sess.UserID)
	return s.store.CategoryByID(ctx, sess.UserID, id)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, sess auth.Session, id string) error {
	if err := s.store.DeleteCategory(ctx, sess.UserID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(ctx, sess.UserID)
	return nil
}

// ListTransactions returns the user's transactions of kind, newest first.
// Zero month or year does not filter.
func (s *LedgerService) ListTransactions(ctx context.Context, sess auth.Session, kind core.Kind, month, year int) ([]core.Transaction, error) {
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("%w: mes must be between 1 and 12", ErrInvalidInput)
	}
	if year < 0 {
		return nil, fmt.Errorf("%w: ano must be positive", ErrInvalidInput)
	}
	return s.store.ListTransactions(ctx, sess.UserID, storage.TransactionFilter{Kind: kind, Month: month, Year: year})
}

func (s *LedgerService) CreateTransaction(ctx context.Context, sess auth.Session, kind core.Kind, in TransactionInput) (core.Transaction, error) {
	tx, err := s.transactionFrom(ctx, sess.UserID, uuid.NewString(), kind, in)
	if err != nil {
		return core.Transaction{}, err
	}
	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.committed(ctx, amqp.ActionCreated, created, log.OpCreate)
	return created, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, sess auth.Session, kind core.Kind, id string, in TransactionInput) (core.Transaction, error) {
	tx, err := s.transactionFrom(ctx, sess.UserID, id, kind, in)
	if err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.committed(ctx, amqp.ActionUpdated, updated, log.OpUpdate)
	return updated, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, sess auth.Session, kind core.Kind, id string) error {
	deleted, err := s.store.DeleteTransaction(ctx, sess.UserID, kind, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.committed(ctx, amqp.ActionDeleted, deleted, log.OpDelete)
	return nil
}

func (s *LedgerService) committed(ctx context.Context, action amqp.Action, tx core.Transaction, op string) {
	fields := log.NewFields().
		WithUser(tx.UserID).
		WithOperation(op).
		WithTransaction(tx.ID, string(tx.Kind), tx.Amount, tx.Category)
	s.logger.InfoContext(ctx, "Transaction saved", fields.ToSlice()...)

	s.invalidate(ctx, tx.UserID)
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, tx)); err != nil {
		// the write is committed; consumers catch up on the next event
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			fields.WithError(err, log.ErrorTypeNetwork).ToSlice()...)
	}
}

func (s *LedgerService) invalidate(ctx context.Context, userID string) {
	if s.views == nil {
		return
	}
	if err := s.views.Invalidate(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate cached views",
			log.NewFields().WithUser(userID).WithError(err).ToSlice()...)
	}
}

func categoryFrom(userID, id string, in CategoryInput) (core.Category, error) {
	kind, err := core.ParseKind(in.Kind)
	if err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	c := core.Category{
		ID:     id,
		UserID: userID,
		Name:   strings.TrimSpace(in.Name),
		Kind:   kind,
		Color:  strings.TrimSpace(in.Color),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return c, nil
}

func (s *LedgerService) transactionFrom(ctx context.Context, userID, id string, kind core.Kind, in TransactionInput) (core.Transaction, error) {
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	tx := core.Transaction{
		ID:          id,
		UserID:      userID,
		Kind:        kind,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Category:    strings.TrimSpace(in.Category),
		Amount:      amount,
		Method:      strings.TrimSpace(in.Method),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if tx.CategoryID == "" {
		cat, err := s.store.CategoryByName(ctx, userID, kind, tx.Category)
		if errors.Is(err, core.ErrCategoryNotFound) {
			return core.Transaction{}, fmt.Errorf("category %q: %w", tx.Category, err)
		}
		if err != nil {
			return core.Transaction{}, fmt.Errorf("resolve category: %w", err)
		}
		tx.CategoryID = cat.ID
	}
	return tx, nil
}
