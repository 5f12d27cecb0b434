package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"seenstudio/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

type CategoryCount struct {
	Category domain.Category `db:"category" json:"category"`
	Count    int             `db:"count" json:"count"`
}

// List returns every known category with its number of active products,
// including categories that currently have none.
func (r *CategoryRepo) List(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	if err := r.db.SelectContext(ctx, &rows, `
	  SELECT category, COUNT(*) AS count
	  FROM products
	  WHERE is_active = 1
	  GROUP BY category`); err != nil {
		return nil, err
	}
	counts := make(map[domain.Category]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	out := make([]CategoryCount, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out, nil
}
