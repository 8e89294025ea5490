package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"financas/internal/core"
)

const transactionSelect = `SELECT t.id, t.user_id, t.kind, t.date, t.description, t.category_id,
	COALESCE(c.name, ''), t.amount, t.method
FROM transactions t LEFT JOIN categories c ON c.id = t.category_id`

// checkCategory loads the category tx references and verifies ownership
// and kind.
func (r *SQLRepository) checkCategory(ctx context.Context, q queryer, tx core.Transaction) (core.Category, error) {
	cat, err := r.categoryByID(ctx, q, tx.UserID, tx.CategoryID)
	if err != nil {
		return core.Category{}, err
	}
	if cat.Kind != tx.Kind {
		return core.Category{}, core.ErrCategoryKindMismatch
	}
	return cat, nil
}

func (r *SQLRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	err := r.inTx(ctx, func(q queryer) error {
		cat, err := r.checkCategory(ctx, q, tx)
		if err != nil {
			return err
		}
		tx.Category = cat.Name
		_, err = q.ExecContext(ctx, r.rebind(
			`INSERT INTO transactions (id, user_id, kind, date, description, category_id, amount, method)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			tx.ID, tx.UserID, string(tx.Kind), r.dateArg(tx.Date), tx.Description, tx.CategoryID,
			tx.Amount.StringFixed(2), tx.Method)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (r *SQLRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	err := r.inTx(ctx, func(q queryer) error {
		current, err := r.transactionByID(ctx, q, tx.UserID, tx.ID)
		if err != nil {
			return err
		}
		if current.Kind != tx.Kind {
			return core.ErrNotFound
		}
		cat, err := r.checkCategory(ctx, q, tx)
		if err != nil {
			return err
		}
		tx.Category = cat.Name
		_, err = q.ExecContext(ctx, r.rebind(
			`UPDATE transactions SET date = ?, description = ?, category_id = ?, amount = ?, method = ?
			 WHERE id = ? AND user_id = ?`),
			r.dateArg(tx.Date), tx.Description, tx.CategoryID, tx.Amount.StringFixed(2), tx.Method,
			tx.ID, tx.UserID)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (r *SQLRepository) DeleteTransaction(ctx context.Context, userID string, kind core.Kind, id string) (core.Transaction, error) {
	var deleted core.Transaction
	err := r.inTx(ctx, func(q queryer) error {
		current, err := r.transactionByID(ctx, q, userID, id)
		if err != nil {
			return err
		}
		if current.Kind != kind {
			return core.ErrNotFound
		}
		if _, err := q.ExecContext(ctx, r.rebind(`DELETE FROM transactions WHERE id = ? AND user_id = ?`), id, userID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		deleted = current
		return nil
	})
	return deleted, err
}

func (r *SQLRepository) TransactionByID(ctx context.Context, userID, id string) (core.Transaction, error) {
	return r.transactionByID(ctx, r.db, userID, id)
}

func (r *SQLRepository) transactionByID(ctx context.Context, q queryer, userID, id string) (core.Transaction, error) {
	rows, err := q.QueryContext(ctx, r.rebind(transactionSelect+` WHERE t.id = ? AND t.user_id = ?`), id, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	txs, err := scanTransactions(rows)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(txs) == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return txs[0], nil
}

func (r *SQLRepository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error) {
	query := transactionSelect + ` WHERE t.user_id = ?`
	args := []any{userID}
	if f.Kind != "" {
		query += ` AND t.kind = ?`
		args = append(args, string(f.Kind))
	}
	from, to := f.Bounds()
	if !from.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, r.dateArg(from))
	}
	if !to.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, r.dateArg(to))
	}
	query += ` ORDER BY t.date DESC, t.id`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if f.Month == 0 || f.Year != 0 {
		return txs, nil
	}
	out := txs[:0]
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	out := []core.Transaction{}
	for rows.Next() {
		var (
			tx   core.Transaction
			kind string
			date dbDate
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &kind, &date, &tx.Description, &tx.CategoryID,
			&tx.Category, &tx.Amount, &tx.Method); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = core.Kind(kind)
		tx.Date = date.Date
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
