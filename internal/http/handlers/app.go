package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seenstudio/internal/apperr"
	"seenstudio/internal/config"
	applog "seenstudio/internal/log"
)

// NewApp builds the fiber app with middleware and every route. gatherer backs
// /metrics and may be nil.
func NewApp(cfg config.Config, d *Deps, gatherer prometheus.Gatherer) *fiber.App {
	bodyLimit := cfg.BodyLimitByte
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}
	app := fiber.New(fiber.Config{
		AppName:               "seenstudio",
		ErrorHandler:          ErrorHandler,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(applog.Access())
	app.Use(helmet.New())
	corsCfg := cors.Config{
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + cartHeader,
		ExposeHeaders: cartHeader,
	}
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = strings.Join(origins, ",")
		corsCfg.AllowCredentials = true
	}
	app.Use(cors.New(corsCfg))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return cfg.RateLimit <= 0 || c.Path() == "/healthz" || c.Path() == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return apperr.New(apperr.CodeRateLimit, "rate limit exceeded, retry soon")
		},
	}))
	app.Use(Authenticate(d.Tokens))

	// ---------- Health & metrics ----------
	app.Get("/healthz", d.HealthHandler.Health)
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Get("/health", d.HealthHandler.Health)

	admin := RequireAdmin()
	user := RequireUser()

	// Catalog
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/search/:term", d.ProductHandler.Search)
	api.Get("/products/category/:category", d.ProductHandler.ByCategory)
	api.Get("/products/:id", d.ProductHandler.Get)
	api.Post("/products", admin, d.ProductHandler.Create)
	api.Put("/products/:id", admin, d.ProductHandler.Update)
	api.Delete("/products/:id", admin, d.ProductHandler.Delete)

	// Home discover strip
	api.Get("/home-discover", d.HomeHandler.Get)
	api.Get("/home-discover/products", d.HomeHandler.Products)
	api.Put("/home-discover", admin, d.HomeHandler.Replace)

	// Instagram gallery
	api.Get("/instagram-posts", d.InstagramHandler.List)
	api.Get("/instagram-posts/featured", d.InstagramHandler.Featured)
	api.Post("/instagram-posts", admin, d.InstagramHandler.Create)
	api.Put("/instagram-posts/reorder", admin, d.InstagramHandler.Reorder)
	api.Patch("/instagram-posts/:id", admin, d.InstagramHandler.Patch)
	api.Delete("/instagram-posts/:id", admin, d.InstagramHandler.Delete)

	// Accounts (login throttled)
	loginLimit := cfg.LoginRate
	if loginLimit <= 0 {
		loginLimit = 5
	}
	api.Post("/auth/register", d.AuthHandler.Register)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        loginLimit,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return apperr.New(apperr.CodeRateLimit, "Too many attempts. Please try again later.")
		},
	}), d.AuthHandler.Login)
	api.Get("/auth/profile", user, d.AuthHandler.Profile)
	api.Put("/auth/profile", user, d.AuthHandler.UpdateProfile)
	api.Get("/auth/addresses", user, d.AuthHandler.ListAddresses)
	api.Post("/auth/addresses", user, d.AuthHandler.CreateAddress)
	api.Put("/auth/addresses/:id", user, d.AuthHandler.UpdateAddress)
	api.Delete("/auth/addresses/:id", user, d.AuthHandler.DeleteAddress)

	// Favourites
	api.Get("/favourites", user, d.FavouriteHandler.List)
	api.Post("/favourites", user, d.FavouriteHandler.Add)
	api.Delete("/favourites/:productId", user, d.FavouriteHandler.Remove)

	// Cart
	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart/items", d.CartHandler.Add)
	api.Patch("/cart/items/:key", d.CartHandler.Update)
	api.Delete("/cart/items/:key", d.CartHandler.Remove)
	api.Delete("/cart", d.CartHandler.Clear)

	// Checkout
	api.Post("/checkout", d.CheckoutHandler.Start)
	api.Get("/checkout/:id", d.CheckoutHandler.Get)
	api.Post("/checkout/:id/shipping", d.CheckoutHandler.Shipping)
	api.Post("/checkout/:id/shipping/from-address/:addressId", user, d.CheckoutHandler.ShippingFromAddress)
	api.Post("/checkout/:id/payment", d.CheckoutHandler.Payment)
	api.Post("/checkout/:id/edit", d.CheckoutHandler.Edit)
	api.Post("/checkout/:id/place", d.CheckoutHandler.Place)

	// Orders
	api.Get("/orders", user, d.OrderHandler.History)
	api.Get("/orders/:id", user, d.OrderHandler.Get)

	// Admin
	adm := api.Group("/admin", admin)
	adm.Get("/orders", d.AdminHandler.ListOrders)
	adm.Get("/users", d.AdminHandler.ListUsers)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.New(apperr.CodeNotFound, "Route not found")
	})
	return app
}
