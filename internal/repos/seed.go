package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"seenstudio/internal/auth"
	"seenstudio/internal/domain"
	applog "seenstudio/internal/log"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	// BcryptCost 0 uses auth.DefaultCost.
	BcryptCost int
}

func intp(i int) *int { return &i }

var sizeChartBasic = domain.SizeChart{
	{"Size", "Bust", "Waist", "Hips", "Length"},
	{"XS", "80", "62", "86", "92"},
	{"S", "84", "66", "90", "93"},
	{"M", "88", "70", "94", "94"},
	{"L", "94", "76", "100", "95"},
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{
			ID: "prd-silk-slip", Name: "Silk Slip Dress", Category: domain.CategoryDresses,
			Description:    "Bias cut slip dress in washed silk.",
			ProductDetails: "100% silk. Dry clean only.",
			Price:          decimal.RequireFromString("129.00"),
			Images:         []string{"/images/silk-slip-black.jpg", "/images/silk-slip-ivory.jpg"},
			Colors: []domain.ColorVariant{
				{Name: "Black", Value: "#000000", ImageIndex: intp(0)},
				{Name: "Ivory", Value: "#FFFFF0", ImageIndex: intp(1)},
			},
			Sizes: []string{"XS", "S", "M", "L"}, SizeChart: sizeChartBasic, IsActive: true,
		},
		{
			ID: "prd-linen-shirt", Name: "Linen Boxy Shirt", Category: domain.CategoryTops,
			Description: "Relaxed shirt in midweight linen.",
			Price:       decimal.RequireFromString("79.50"),
			Images:      []string{"/images/linen-shirt.jpg"},
			Colors:      []domain.ColorVariant{{Name: "Sand", Value: "#C2B280"}, {Name: "White", Value: "#FFFFFF"}},
			Sizes:       []string{"S", "M", "L"}, IsActive: true,
		},
		{
			ID: "prd-wide-trouser", Name: "Wide Leg Trouser", Category: domain.CategoryBottoms,
			Description: "High waisted trouser with pressed pleats.",
			Price:       decimal.RequireFromString("98.00"),
			Images:      []string{"/images/wide-trouser.jpg"},
			Colors:      []domain.ColorVariant{{Name: "Charcoal", Value: "#36454F"}},
			Sizes:       []string{"XS", "S", "M", "L", "XL"}, SizeChart: sizeChartBasic, IsActive: true,
		},
		{
			ID: "prd-knit-set", Name: "Ribbed Knit Set", Category: domain.CategorySets,
			Description: "Matching ribbed top and skirt.",
			Price:       decimal.RequireFromString("149.99"),
			Images:      []string{"/images/knit-set.jpg"},
			Colors:      []domain.ColorVariant{{Name: "Oat", Value: "#DFD3C3"}},
			Sizes:       []string{"S", "M"}, IsActive: true,
		},
		{
			ID: "prd-leather-belt", Name: "Leather Waist Belt", Category: domain.CategoryAccessories,
			Description: "Vegetable tanned leather belt.",
			Price:       decimal.RequireFromString("45.00"),
			Images:      []string{"/images/leather-belt.jpg"},
			Colors:      []domain.ColorVariant{{Name: "Tan", Value: "#D2B48C"}, {Name: "Black", Value: "#000000"}},
			Sizes:       []string{"One Size"}, IsActive: true,
		},
	}
}

// Seed inserts the admin user, sample products, the home strip and a few
// Instagram posts. Rows that already exist are left alone.
func Seed(ctx context.Context, db *sqlx.DB, opts SeedOptions) error {
	l := applog.L()
	products := NewProductRepo(db)
	for _, p := range seedProducts() {
		if _, err := products.GetAny(ctx, p.ID); err == nil {
			continue
		}
		if _, err := products.Create(ctx, p); err != nil {
			return err
		}
		l.Info().Str("action", "db.seed").Str("product_id", p.ID).Msg("inserted product")
	}

	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		users := NewUserRepo(db)
		if _, err := users.ByEmail(ctx, opts.AdminEmail); err != nil {
			hash, err := auth.HashPassword(opts.AdminPassword, opts.BcryptCost)
			if err != nil {
				return err
			}
			if _, err := users.Create(ctx, domain.User{Email: opts.AdminEmail, Hash: hash, DisplayName: "Admin", IsAdmin: true}); err != nil {
				return err
			}
			l.Info().Str("action", "db.seed").Str("email", opts.AdminEmail).Msg("inserted admin user")
		}
	}

	home := NewHomeSelectionRepo(db)
	if ids, err := home.List(ctx, ""); err == nil && len(ids) == 0 {
		if err := home.Replace(ctx, "", []string{"prd-silk-slip", "prd-linen-shirt", "prd-wide-trouser", "prd-knit-set"}); err != nil {
			return err
		}
	}

	posts := NewInstagramRepo(db)
	if all, err := posts.All(ctx); err == nil && len(all) == 0 {
		for _, id := range []string{"ig-1", "ig-2", "ig-3", "ig-4"} {
			if _, err := posts.Create(ctx, id, "/images/instagram/"+id+".jpg", "https://instagram.com/p/"+id); err != nil {
				return err
			}
		}
		if err := posts.Replace(ctx, "desktop", []string{"ig-1", "ig-2", "ig-3"}); err != nil {
			return err
		}
		if err := posts.Replace(ctx, "mobile", []string{"ig-1", "ig-2", "ig-3", "ig-4"}); err != nil {
			return err
		}
	}
	return nil
}
