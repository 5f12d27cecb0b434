package handlers

import (
	"context"

	"github.com/jmoiron/sqlx"

	"seenstudio/internal/auth"
	"seenstudio/internal/cache"
	"seenstudio/internal/cart"
	"seenstudio/internal/checkout"
	"seenstudio/internal/config"
	"seenstudio/internal/metrics"
	"seenstudio/internal/repos"
	"seenstudio/internal/selection"
	"seenstudio/internal/services"
)

type Deps struct {
	Tokens auth.TokenConfig

	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	HomeHandler      *HomeDiscoverHandler
	InstagramHandler *InstagramHandler
	AuthHandler      *AuthHandler
	FavouriteHandler *FavouriteHandler
	CartHandler      *CartHandler
	CheckoutHandler  *CheckoutHandler
	OrderHandler     *OrderHandler
	AdminHandler     *AdminHandler
	HealthHandler    *HealthHandler
}

// NewDeps wires repositories and services over db. listCache backs the
// selection read fallback; nil keeps it in process.
func NewDeps(ctx context.Context, db *sqlx.DB, cfg config.Config, m *metrics.Metrics, listCache cache.ListCache) (*Deps, error) {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)
	addrRepo := repos.NewAddressRepo(db)
	favRepo := repos.NewFavouriteRepo(db)
	postRepo := repos.NewInstagramRepo(db)

	if listCache == nil {
		listCache = cache.NewMemory()
	}
	homeStore := selection.New("home", repos.NewHomeSelectionRepo(db),
		map[selection.Surface]int{selection.SurfaceHome: selection.HomeCap},
		selection.WithCache(listCache), selection.WithMetrics(m))
	igStore := selection.New("instagram", postRepo,
		map[selection.Surface]int{selection.SurfaceDesktop: selection.DesktopCap, selection.SurfaceMobile: selection.MobileCap},
		selection.WithCache(listCache), selection.WithMetrics(m))

	pricing := cart.Pricing{ShippingRate: cfg.ShippingRate, TaxRate: cfg.TaxRate}
	ids, err := services.NewOrderIDs(ctx, orderRepo)
	if err != nil {
		return nil, err
	}
	placer := &checkout.Placer{
		Processor: checkout.SimulatedProcessor{Delay: cfg.CheckoutDelay},
		Recorder:  orderRepo,
		Pricing:   pricing,
		Timeout:   cfg.CheckoutTimeout,
		IDs:       ids,
	}
	tokens := auth.TokenConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL}

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo, pricing, m)
	checkoutSvc := services.NewCheckoutService(cartSvc, addrRepo, placer, m)
	accountSvc := services.NewAccountService(userRepo, addrRepo, tokens, cfg.BcryptCost)
	orderSvc := services.NewOrderService(orderRepo)

	return &Deps{
		Tokens:           tokens,
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		HomeHandler:      &HomeDiscoverHandler{Home: services.NewHomeDiscoverService(homeStore, prodRepo)},
		InstagramHandler: &InstagramHandler{Posts: services.NewInstagramService(igStore, postRepo)},
		AuthHandler:      &AuthHandler{Accounts: accountSvc},
		FavouriteHandler: &FavouriteHandler{Favs: services.NewFavouriteService(favRepo)},
		CartHandler:      &CartHandler{Cart: cartSvc},
		CheckoutHandler:  &CheckoutHandler{Checkout: checkoutSvc, Accounts: accountSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		AdminHandler:     &AdminHandler{Orders: orderSvc, Accounts: accountSvc},
		HealthHandler:    &HealthHandler{DB: db},
	}, nil
}
