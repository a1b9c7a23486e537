package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	APIBaseURL      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MerchantName    string
	Currency        string
}

func Load() Config {
	return Config{
		HTTPPort:        getenv("HTTP_PORT", "8080"),
		APIBaseURL:      getenv("API_BASE_URL", "https://ddkmaapi-ewcndnazfmfnhkfv.centralus-01.azurewebsites.net"),
		RequestTimeout:  parseDuration(getenv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
		ShutdownTimeout: parseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		MerchantName:    getenv("MERCHANT_NAME", "Dulce Tentación"),
		Currency:        getenv("CURRENCY", "mxn"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
