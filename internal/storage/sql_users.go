package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"financas/internal/core"
)

func (r *SQLRepository) CreateUser(ctx context.Context, u core.User, categories []core.Category) error {
	return r.inTx(ctx, func(q queryer) error {
		_, err := q.ExecContext(ctx, r.rebind(
			`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`),
			u.ID, u.Name, strings.ToLower(u.Email), u.PasswordHash, r.timeArg(u.CreatedAt))
		if isUniqueViolation(err) {
			return core.ErrEmailTaken
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		for _, c := range categories {
			c.UserID = u.ID
			if err := r.insertCategory(ctx, q, c); err != nil {
				return err
			}
		}
		return nil
	})
}

const userColumns = `id, name, email, password_hash, created_at`

func (r *SQLRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *SQLRepository) UserByID(ctx context.Context, id string) (core.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *SQLRepository) getUser(ctx context.Context, query string, arg any) (core.User, error) {
	var (
		u       core.User
		created dbTime
	)
	err := r.db.QueryRowContext(ctx, r.rebind(query), arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = created.Time
	return u, nil
}
