// Package memory is an in-process storage.Store used for development and
// tests. Data lives only as long as the process.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"financas/internal/core"
	"financas/internal/storage"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]core.User
	emails     map[string]string
	categories map[string]core.Category
	txs        map[string]core.Transaction
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      map[string]core.User{},
		emails:     map[string]string{},
		categories: map[string]core.Category{},
		txs:        map[string]core.Transaction{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) CreateUser(_ context.Context, u core.User, categories []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	if _, ok := s.emails[u.Email]; ok {
		return core.ErrEmailTaken
	}
	seen := map[string]struct{}{}
	for _, c := range categories {
		key := string(c.Kind) + "\x00" + c.Name
		if _, ok := seen[key]; ok {
			return core.ErrCategoryExists
		}
		seen[key] = struct{}{}
	}
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
	for _, c := range categories {
		c.UserID = u.ID
		if c.Color == "" {
			c.Color = core.DefaultCategoryColor
		}
		s.categories[c.ID] = c
	}
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) UserByID(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(c) {
		return core.ErrCategoryExists
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.categories[c.ID]
	if !ok || current.UserID != c.UserID {
		return core.ErrCategoryNotFound
	}
	if current.Kind != c.Kind && s.inUse(c.ID) {
		return core.ErrCategoryInUse
	}
	if s.nameTaken(c) {
		return core.ErrCategoryExists
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	s.categories[c.ID] = c
	for id, tx := range s.txs {
		if tx.CategoryID == c.ID {
			tx.Category = c.Name
			s.txs[id] = tx
		}
	}
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.categories[id]
	if !ok || current.UserID != userID {
		return core.ErrCategoryNotFound
	}
	if s.inUse(id) {
		return core.ErrCategoryInUse
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CategoryByID(_ context.Context, userID, id string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return c, nil
}

func (s *Store) CategoryByName(_ context.Context, userID string, kind core.Kind, name string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.UserID == userID && c.Kind == kind && c.Name == name {
			return c, nil
		}
	}
	return core.Category{}, core.ErrCategoryNotFound
}

func (s *Store) ListCategories(_ context.Context, userID string, kind core.Kind) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Category{}
	for _, c := range s.categories {
		if c.UserID != userID || (kind != "" && c.Kind != kind) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, err := s.checkCategory(tx)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Category = cat.Name
	s.txs[tx.ID] = tx
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.txs[tx.ID]
	if !ok || current.UserID != tx.UserID || current.Kind != tx.Kind {
		return core.Transaction{}, core.ErrNotFound
	}
	cat, err := s.checkCategory(tx)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Category = cat.Name
	s.txs[tx.ID] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID string, kind core.Kind, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID || tx.Kind != kind {
		return core.Transaction{}, core.ErrNotFound
	}
	delete(s.txs, id)
	return tx, nil
}

func (s *Store) TransactionByID(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Transaction{}
	for _, tx := range s.txs {
		if tx.UserID == userID && f.Match(tx) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) checkCategory(tx core.Transaction) (core.Category, error) {
	cat, ok := s.categories[tx.CategoryID]
	if !ok || cat.UserID != tx.UserID {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if cat.Kind != tx.Kind {
		return core.Category{}, core.ErrCategoryKindMismatch
	}
	return cat, nil
}

// nameTaken reports whether another category of the same user and kind
// already uses c.Name.
func (s *Store) nameTaken(c core.Category) bool {
	for id, other := range s.categories {
		if id != c.ID && other.UserID == c.UserID && other.Kind == c.Kind && other.Name == c.Name {
			return true
		}
	}
	return false
}

func (s *Store) inUse(categoryID string) bool {
	for _, tx := range s.txs {
		if tx.CategoryID == categoryID {
			return true
		}
	}
	return false
}
