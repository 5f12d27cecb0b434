package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Env  string `envconfig:"SEEN_ENV" default:"dev"`
	Port string `envconfig:"SEEN_PORT" default:"8080"`

	DBDSN         string `envconfig:"SEEN_DB_DSN" default:"seenstudio.db"`
	DBAutoMigrate bool   `envconfig:"SEEN_DB_AUTO_MIGRATE" default:"true"`
	DBSeed        bool   `envconfig:"SEEN_DB_SEED" default:"false"`

	LogLevel  string `envconfig:"SEEN_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"SEEN_LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"SEEN_LOG_FILE"`

	JWTSecret string        `envconfig:"SEEN_JWT_SECRET" default:"change-me-in-production"`
	JWTIssuer string        `envconfig:"SEEN_JWT_ISSUER" default:"seenstudio"`
	JWTTTL    time.Duration `envconfig:"SEEN_JWT_TTL" default:"168h"`
	// BcryptCost 0 means auth.DefaultCost.
	BcryptCost int `envconfig:"SEEN_BCRYPT_COST" default:"12"`

	AdminEmail    string `envconfig:"SEEN_ADMIN_EMAIL" default:"admin@seenstudio.local"`
	AdminPassword string `envconfig:"SEEN_ADMIN_PASSWORD"`

	// Empty RedisURL keeps the selection cache in process.
	RedisURL      string        `envconfig:"SEEN_REDIS_URL"`
	SelectionTTL  time.Duration `envconfig:"SEEN_SELECTION_CACHE_TTL" default:"24h"`
	CORSOrigins   string        `envconfig:"SEEN_CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	RateLimit     int           `envconfig:"SEEN_RATE_LIMIT" default:"120"`
	LoginRate     int           `envconfig:"SEEN_LOGIN_RATE_LIMIT" default:"5"`
	BodyLimitByte int           `envconfig:"SEEN_BODY_LIMIT" default:"1048576"`

	CheckoutDelay   time.Duration `envconfig:"SEEN_CHECKOUT_DELAY" default:"2s"`
	CheckoutTimeout time.Duration `envconfig:"SEEN_CHECKOUT_TIMEOUT" default:"30s"`
	ShippingRateRaw string        `envconfig:"SEEN_SHIPPING_FLAT_RATE" default:"10"`
	TaxRateRaw      string        `envconfig:"SEEN_TAX_RATE" default:"0.10"`

	ShippingRate decimal.Decimal `ignored:"true"`
	TaxRate      decimal.Decimal `ignored:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.parseRates(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) parseRates() error {
	ship, err := decimal.NewFromString(strings.TrimSpace(c.ShippingRateRaw))
	if err != nil || ship.IsNegative() {
		return fmt.Errorf("SEEN_SHIPPING_FLAT_RATE: invalid amount %q", c.ShippingRateRaw)
	}
	tax, err := decimal.NewFromString(strings.TrimSpace(c.TaxRateRaw))
	if err != nil || tax.IsNegative() || tax.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("SEEN_TAX_RATE: invalid rate %q", c.TaxRateRaw)
	}
	c.ShippingRate = ship
	c.TaxRate = tax
	return nil
}

func (c Config) IsDev() bool { return strings.EqualFold(c.Env, "dev") }

// AllowedOrigins splits the comma separated CORS origin list.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Test returns a configuration suitable for in-memory test servers.
func Test() Config {
	return Config{
		Env:             "test",
		Port:            "0",
		DBDSN:           ":memory:",
		DBAutoMigrate:   true,
		LogLevel:        "debug",
		LogFormat:       "json",
		JWTSecret:       "test-secret",
		JWTIssuer:       "seenstudio-test",
		JWTTTL:          time.Hour,
		BcryptCost:      4,
		AdminEmail:      "admin@seen.test",
		AdminPassword:   "Passw0rd!",
		SelectionTTL:    time.Hour,
		RateLimit:       1000,
		LoginRate:       1000,
		BodyLimitByte:   1 << 20,
		CheckoutDelay:   0,
		CheckoutTimeout: 2 * time.Second,
		ShippingRate:    decimal.NewFromInt(10),
		TaxRate:         decimal.RequireFromString("0.10"),
	}
}
