package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEEN_PORT", "9090")
	t.Setenv("SEEN_CHECKOUT_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, 2*time.Second, cfg.CheckoutDelay)
	assert.Equal(t, "10", cfg.ShippingRate.String())
	assert.Equal(t, "0.1", cfg.TaxRate.String())
	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
}

func TestLoadRejectsBadRates(t *testing.T) {
	t.Setenv("SEEN_TAX_RATE", "1.5")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SEEN_TAX_RATE", "0.2")
	t.Setenv("SEEN_SHIPPING_FLAT_RATE", "ten")
	_, err = Load()
	require.Error(t, err)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}
