package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financas/internal/core"
)

const categoryColumns = `id, user_id, name, kind, color`

func (r *SQLRepository) insertCategory(ctx context.Context, q queryer, c core.Category) error {
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	_, err := q.ExecContext(ctx, r.rebind(
		`INSERT INTO categories (id, user_id, name, kind, color) VALUES (?, ?, ?, ?, ?)`),
		c.ID, c.UserID, c.Name, string(c.Kind), c.Color)
	if isUniqueViolation(err) {
		return core.ErrCategoryExists
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *SQLRepository) CreateCategory(ctx context.Context, c core.Category) error {
	return r.insertCategory(ctx, r.db, c)
}

func (r *SQLRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	return r.inTx(ctx, func(q queryer) error {
		current, err := r.categoryByID(ctx, q, c.UserID, c.ID)
		if err != nil {
			return err
		}
		if current.Kind != c.Kind {
			n, err := r.countCategoryUse(ctx, q, c.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return core.ErrCategoryInUse
			}
		}
		_, err = q.ExecContext(ctx, r.rebind(
			`UPDATE categories SET name = ?, kind = ?, color = ? WHERE id = ? AND user_id = ?`),
			c.Name, string(c.Kind), c.Color, c.ID, c.UserID)
		if isUniqueViolation(err) {
			return core.ErrCategoryExists
		}
		if err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		return nil
	})
}

func (r *SQLRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	return r.inTx(ctx, func(q queryer) error {
		if _, err := r.categoryByID(ctx, q, userID, id); err != nil {
			return err
		}
		n, err := r.countCategoryUse(ctx, q, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return core.ErrCategoryInUse
		}
		if _, err := q.ExecContext(ctx, r.rebind(`DELETE FROM categories WHERE id = ? AND user_id = ?`), id, userID); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func (r *SQLRepository) CategoryByID(ctx context.Context, userID, id string) (core.Category, error) {
	return r.categoryByID(ctx, r.db, userID, id)
}

func (r *SQLRepository) CategoryByName(ctx context.Context, userID string, kind core.Kind, name string) (core.Category, error) {
	return r.scanCategory(r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND kind = ? AND name = ?`),
		userID, string(kind), name))
}

func (r *SQLRepository) ListCategories(ctx context.Context, userID string, kind core.Kind) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ?`
	args := []any{userID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY kind, name`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var (
			c    core.Category
			kind string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &kind, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.Kind(kind)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLRepository) categoryByID(ctx context.Context, q queryer, userID, id string) (core.Category, error) {
	return r.scanCategory(q.QueryRowContext(ctx, r.rebind(
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`), id, userID))
}

func (r *SQLRepository) scanCategory(row *sql.Row) (core.Category, error) {
	var (
		c    core.Category
		kind string
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &kind, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Kind = core.Kind(kind)
	return c, nil
}

func (r *SQLRepository) countCategoryUse(ctx context.Context, q queryer, id string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, r.rebind(`SELECT COUNT(*) FROM transactions WHERE category_id = ?`), id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count category use: %w", err)
	}
	return n, nil
}
