package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
)

type FavouriteRepo struct{ db *sqlx.DB }

func NewFavouriteRepo(db *sqlx.DB) *FavouriteRepo { return &FavouriteRepo{db: db} }

// Add saves a favourite. Duplicates are VALIDATION_ERROR, unknown products NOT_FOUND.
func (r *FavouriteRepo) Add(ctx context.Context, userID, productID string) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE id = ? AND is_active = 1`, productID); err != nil {
			return err
		}
		if n == 0 {
			return apperr.New(apperr.CodeNotFound, "Product not found")
		}
		res, err := tx.ExecContext(ctx, `
		  INSERT INTO user_favourites(user_id, product_id, created_at)
		  VALUES (?, ?, ?)
		  ON CONFLICT(user_id, product_id) DO NOTHING`, userID, productID, now())
		if err != nil {
			return err
		}
		if added, _ := res.RowsAffected(); added == 0 {
			return apperr.New(apperr.CodeValidation, "Product already in favourites").
				WithDetails(map[string]string{"productId": "already a favourite"})
		}
		return nil
	})
}

func (r *FavouriteRepo) Remove(ctx context.Context, userID, productID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_favourites WHERE user_id = ? AND product_id = ?`, userID, productID)
	return mustAffect(res, err, "favourite")
}

type favouriteRow struct {
	FavCreatedAt string `db:"fav_created_at"`
	productRow
}

// List returns the user's favourites joined with their active products, newest first.
func (r *FavouriteRepo) List(ctx context.Context, userID string) ([]domain.Favourite, error) {
	var rows []favouriteRow
	err := r.db.SelectContext(ctx, &rows, `
	  SELECT f.created_at AS fav_created_at,
	         p.id, p.name, p.description, p.product_details, p.price, p.images_json, p.colors_json,
	         p.sizes_json, p.size_chart_json, p.category, p.is_active, p.created_at, p.updated_at
	  FROM user_favourites f
	  JOIN products p ON p.id = f.product_id
	  WHERE f.user_id = ? AND p.is_active = 1
	  ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Favourite, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Favourite{ProductID: p.ID, CreatedAt: row.FavCreatedAt, Product: p})
	}
	return out, nil
}
