package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"SESSION_COOKIE_NAME", "SESSION_COOKIE_AGE", "KAFKA_BROKERS", "DB_DRIVER", "RATELIMIT_REQUESTS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	require.Equal(t, "sessionid", cfg.SessionCookieName)
	require.Equal(t, 1209600*time.Second, cfg.SessionCookieAge)
	require.False(t, cfg.SessionSaveEveryRequest)
	require.False(t, cfg.SessionExpireAtBrowserClose)
	require.Equal(t, "mysql", cfg.DBDriver)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, 5, cfg.RateLimitRequests)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SESSION_COOKIE_AGE", "60")
	t.Setenv("SESSION_EXPIRE_AT_BROWSER_CLOSE", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	cfg := LoadConfig()
	require.Equal(t, time.Minute, cfg.SessionCookieAge)
	require.True(t, cfg.SessionExpireAtBrowserClose)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"mysql", "u:p@tcp(h:3306)/app?parseTime=true"},
		{"postgres", "host=h user=u password=p dbname=app port=3306 sslmode=disable"},
		{"sqlite", "app"},
	}
	for _, tt := range tests {
		cfg := &Config{DBDriver: tt.driver, DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "app"}
		require.Equal(t, tt.want, cfg.DSN(), tt.driver)
	}
}
