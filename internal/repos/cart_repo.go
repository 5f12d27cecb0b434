package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"seenstudio/internal/cart"
	"seenstudio/internal/domain"
	applog "seenstudio/internal/log"
)

// CartRepo persists ledger snapshots per shopper session.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartItemRow struct {
	VariantKey string          `db:"variant_key"`
	ProductID  string          `db:"product_id"`
	Name       string          `db:"name"`
	ImagesJSON string          `db:"images_json"`
	ColorsJSON string          `db:"colors_json"`
	Price      decimal.Decimal `db:"price"`
	ColorName  string          `db:"color_name"`
	ColorValue string          `db:"color_value"`
	Size       string          `db:"size"`
	Quantity   int             `db:"quantity"`
}

// Load returns the session's lines priced and pictured from the live catalog. Lines whose
// product is no longer active are left out.
func (r *CartRepo) Load(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	var rows []cartItemRow
	err := r.db.SelectContext(ctx, &rows, `
	  SELECT ci.variant_key, ci.product_id, p.name, p.images_json, p.colors_json, p.price,
	         ci.color_name, ci.color_value, ci.size, ci.quantity
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  WHERE ci.session_id = ? AND p.is_active = 1
	  ORDER BY ci.position ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]cart.LineItem, 0, len(rows))
	for _, row := range rows {
		var p domain.Product
		if err := decodeJSON(row.ImagesJSON, &p.Images); err != nil {
			applog.L().Warn().Err(err).Str("action", "cart.load.decode").Str("product_id", row.ProductID).Str("field", "images").Send()
		}
		if err := decodeJSON(row.ColorsJSON, &p.Colors); err != nil {
			applog.L().Warn().Err(err).Str("action", "cart.load.decode").Str("product_id", row.ProductID).Str("field", "colors").Send()
		}
		out = append(out, cart.LineItem{
			Key:        row.VariantKey,
			ProductID:  row.ProductID,
			Name:       row.Name,
			Image:      p.ImageForColor(row.ColorName),
			UnitPrice:  row.Price,
			ColorName:  row.ColorName,
			ColorValue: row.ColorValue,
			Size:       row.Size,
			Quantity:   row.Quantity,
		})
	}
	return out, nil
}

// Save replaces the session's stored lines with items, keeping their order.
func (r *CartRepo) Save(ctx context.Context, sessionID string, items []cart.LineItem) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = ?`, sessionID); err != nil {
			return err
		}
		ts := now()
		for i, it := range items {
			if _, err := tx.ExecContext(ctx, `
			  INSERT INTO cart_items(session_id, variant_key, product_id, color_name, color_value, size, quantity, position, updated_at)
			  VALUES (?,?,?,?,?,?,?,?,?)`,
				sessionID, it.Key, it.ProductID, it.ColorName, it.ColorValue, it.Size, it.Quantity, i, ts); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = ?`, sessionID)
	return err
}
