package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_TTL", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 3*time.Second, cfg.PriceTimeout)
	assert.Equal(t, time.Duration(0), cfg.PriceWarmInterval)
	assert.False(t, cfg.MailSendEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("MAIL_SEND_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, int32(10), cfg.DBMaxConns, "invalid ints fall back to the default")
	assert.True(t, cfg.MailSendEnabled)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.PostgresDSN())
}

func TestPairsAndLists(t *testing.T) {
	cfg := &Config{
		PriceCryptoIDs:     "btc=bitcoin, eth = ethereum,broken,=x",
		PriceStatic:        "BTC=120,AAPL=190.5",
		CORSAllowedOrigins: " http://a.test ,,http://b.test",
	}

	assert.Equal(t, map[string]string{"BTC": "bitcoin", "ETH": "ethereum"}, cfg.CryptoIDs())
	assert.Equal(t, map[string]string{"BTC": "120", "AAPL": "190.5"}, cfg.StaticPrices())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}
