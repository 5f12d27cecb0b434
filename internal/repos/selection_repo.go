package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"seenstudio/internal/apperr"
	"seenstudio/internal/selection"
)

// HomeSelectionRepo stores the homepage Discover strip.
type HomeSelectionRepo struct{ db *sqlx.DB }

func NewHomeSelectionRepo(db *sqlx.DB) *HomeSelectionRepo { return &HomeSelectionRepo{db: db} }

func (r *HomeSelectionRepo) List(ctx context.Context, _ selection.Surface) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `SELECT product_id FROM home_selections ORDER BY position ASC`)
	return ids, err
}

// Replace clears the strip and stores ids at positions 0..n-1 in one transaction.
func (r *HomeSelectionRepo) Replace(ctx context.Context, _ selection.Surface, ids []string) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := requireIDs(ctx, tx, "products", ids); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM home_selections`); err != nil {
			return err
		}
		ts := now()
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, `
			  INSERT INTO home_selections(product_id, position, created_at) VALUES (?, ?, ?)
			  ON CONFLICT(product_id) DO UPDATE SET position = excluded.position`, id, i, ts); err != nil {
				return err
			}
		}
		return nil
	})
}

// requireIDs fails with NOT_FOUND naming the first id missing from table.
func requireIDs(ctx context.Context, tx *sqlx.Tx, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In(`SELECT id FROM `+table+` WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	var found []string
	if err := tx.SelectContext(ctx, &found, tx.Rebind(q), args...); err != nil {
		return err
	}
	have := make(map[string]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	for _, id := range ids {
		if !have[id] {
			return apperr.New(apperr.CodeNotFound, fmt.Sprintf("%s %s not found", singular(table), id)).
				WithDetails(map[string]string{"id": id})
		}
	}
	return nil
}

func singular(table string) string {
	switch table {
	case "products":
		return "product"
	case "instagram_posts":
		return "post"
	}
	return table
}
