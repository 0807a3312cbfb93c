// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"tripcatalog/internal/models"
	"tripcatalog/internal/ordering"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// orderedTable holds the SQL shared by every catalog table: slug probing,
// the dense sort_order sequence and visibility flags. Every statement that
// changes sort_order runs in a transaction holding a per-table advisory
// lock, so concurrent writers cannot interleave and leave gaps.
type orderedTable struct {
	db    *sql.DB
	table string
}

// isUniqueViolation reports whether err is a unique index conflict.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// lock takes the table's transaction-scoped advisory lock.
func (t orderedTable) lock(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, t.table); err != nil {
		return fmt.Errorf("lock %s: %w", t.table, err)
	}
	return nil
}

// inOrderTx runs fn in a transaction that holds the table lock.
func (t orderedTable) inOrderTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := t.lock(ctx, tx); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (t orderedTable) slugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := t.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+t.table+` WHERE slug = $1 AND id <> $2)`,
		slug, exclude,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s slug: %w", t.table, err)
	}
	return exists, nil
}

func (t orderedTable) maxOrder(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}) (int, error) {
	var maxOrder int
	if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order), 0) FROM `+t.table).Scan(&maxOrder); err != nil {
		return 0, fmt.Errorf("max %s order: %w", t.table, err)
	}
	return maxOrder, nil
}

// insert resolves the order of a new row, opens a slot for it when an
// explicit position was requested, and runs ins with the final order.
func (t orderedTable) insert(ctx context.Context, requested int, ins func(tx *sql.Tx, order int) error) (int, error) {
	var order int
	err := t.inOrderTx(ctx, func(tx *sql.Tx) error {
		maxOrder, err := t.maxOrder(ctx, tx)
		if err != nil {
			return err
		}
		var shift bool
		order, shift = ordering.InsertAt(maxOrder, requested)
		if shift {
			if _, err := tx.ExecContext(ctx,
				`UPDATE `+t.table+` SET sort_order = sort_order + 1 WHERE sort_order >= $1`, order,
			); err != nil {
				return fmt.Errorf("shift %s order: %w", t.table, err)
			}
		}
		return ins(tx, order)
	})
	if isUniqueViolation(err) {
		return 0, models.ErrDuplicateSlug
	}
	return order, err
}

// delete removes a row and shifts everything after it up by one.
func (t orderedTable) delete(ctx context.Context, id uuid.UUID) (bool, error) {
	found := true
	err := t.inOrderTx(ctx, func(tx *sql.Tx) error {
		var removed int
		err := tx.QueryRowContext(ctx,
			`DELETE FROM `+t.table+` WHERE id = $1 RETURNING sort_order`, id,
		).Scan(&removed)
		if err == sql.ErrNoRows {
			found = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete %s: %w", t.table, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE `+t.table+` SET sort_order = sort_order - 1 WHERE sort_order > $1`, removed,
		); err != nil {
			return fmt.Errorf("compact %s order: %w", t.table, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// setVisibility updates is_visible on each id. Rows already holding the
// value are counted as matched but left untouched, updated_at included.
func (t orderedTable) setVisibility(ctx context.Context, ids []uuid.UUID, visible bool, now time.Time) (models.BatchResult, error) {
	res := models.BatchResult{Requested: len(ids)}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		var current bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_visible FROM `+t.table+` WHERE id = $1 FOR UPDATE`, id,
		).Scan(&current)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("load %s %s: %w", t.table, id, err)
		}
		res.Matched++
		if current == visible {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE `+t.table+` SET is_visible = $1, updated_at = $2 WHERE id = $3`, visible, now, id,
		); err != nil {
			return res, fmt.Errorf("set %s visibility %s: %w", t.table, id, err)
		}
		res.Modified++
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit visibility: %w", err)
	}
	return res, nil
}

func (t orderedTable) snapshot(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}) ([]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, sort_order FROM `+t.table+` ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("load %s order: %w", t.table, err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.Order); err != nil {
			return nil, fmt.Errorf("scan %s order: %w", t.table, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// reorder validates items against the locked snapshot and writes only the
// rows whose order changes. Either every change lands or none does.
func (t orderedTable) reorder(ctx context.Context, items []models.OrderItem, now time.Time) (int, error) {
	var modified int
	err := t.inOrderTx(ctx, func(tx *sql.Tx) error {
		snap, err := t.snapshot(ctx, tx)
		if err != nil {
			return err
		}
		current := make(map[uuid.UUID]int, len(snap))
		for _, it := range snap {
			current[it.ID] = it.Order
		}
		changes, err := ordering.Plan(current, items)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx,
			`UPDATE `+t.table+` SET sort_order = $1, updated_at = $2 WHERE id = $3`)
		if err != nil {
			return fmt.Errorf("prepare reorder: %w", err)
		}
		defer stmt.Close()

		for _, ch := range changes {
			if _, err := stmt.ExecContext(ctx, ch.Order, now, ch.ID); err != nil {
				return fmt.Errorf("reorder %s %s: %w", t.table, ch.ID, err)
			}
		}
		modified = len(changes)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

// where accumulates SQL conditions with numbered placeholders. Each "?" in
// a condition is replaced by the next $n in argument order.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an argument appended after the
// conditions (LIMIT, OFFSET).
func (w *where) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

// likePattern wraps s for a substring ILIKE match, escaping LIKE wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// count runs SELECT COUNT(*) with the given conditions.
func (t orderedTable) count(ctx context.Context, w *where) (int, error) {
	var total int
	if err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.table+w.String(), w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.table, err)
	}
	return total, nil
}
