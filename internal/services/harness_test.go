package services

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"seenstudio/internal/auth"
	"seenstudio/internal/cart"
	"seenstudio/internal/checkout"
	"seenstudio/internal/repos"
	"seenstudio/internal/selection"
)

type harness struct {
	db        *sqlx.DB
	catalog   *CatalogService
	carts     *CartService
	checkout  *CheckoutService
	home      *HomeDiscoverService
	instagram *InstagramService
	accounts  *AccountService
	favs      *FavouriteService
	orders    *OrderService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	db, err := repos.OpenMigrated(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.Seed(ctx, db, repos.SeedOptions{
		AdminEmail: "admin@seen.test", AdminPassword: "Passw0rd!", BcryptCost: bcrypt.MinCost,
	}))

	prods := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	addresses := repos.NewAddressRepo(db)
	carts := NewCartService(repos.NewCartRepo(db), prods, cart.DefaultPricing(), nil)
	ids, err := NewOrderIDs(ctx, orderRepo)
	require.NoError(t, err)
	placer := &checkout.Placer{
		Processor: checkout.SimulatedProcessor{},
		Recorder:  orderRepo,
		Pricing:   cart.DefaultPricing(),
		Timeout:   time.Second,
		IDs:       ids,
	}
	homeStore := selection.New("home", repos.NewHomeSelectionRepo(db), map[selection.Surface]int{selection.SurfaceHome: selection.HomeCap})
	posts := repos.NewInstagramRepo(db)
	igStore := selection.New("instagram", posts, map[selection.Surface]int{
		selection.SurfaceDesktop: selection.DesktopCap,
		selection.SurfaceMobile:  selection.MobileCap,
	})
	return &harness{
		db:        db,
		catalog:   NewCatalogService(repos.NewCategoryRepo(db), prods),
		carts:     carts,
		checkout:  NewCheckoutService(carts, addresses, placer, nil),
		home:      NewHomeDiscoverService(homeStore, prods),
		instagram: NewInstagramService(igStore, posts),
		accounts: NewAccountService(repos.NewUserRepo(db), addresses,
			auth.TokenConfig{Secret: "test-secret", Issuer: "seenstudio-test", TTL: time.Hour}, bcrypt.MinCost),
		favs:   NewFavouriteService(repos.NewFavouriteRepo(db)),
		orders: NewOrderService(orderRepo),
	}
}

func qty(n int) *int { return &n }
