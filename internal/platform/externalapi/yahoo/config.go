// Package yahoo provides a client for the Yahoo Finance chart API.
package yahoo

import (
	"os"
	"time"
)

// DefaultBaseURL is the public chart endpoint host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Config holds configuration for the Yahoo chart client.
type Config struct {
	BaseURL   string            // Base URL for the API
	UserAgent string            // Yahoo rejects requests without a browser-like agent
	Timeout   time.Duration     // HTTP request timeout
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// LoadConfig loads Yahoo configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:   os.Getenv("YAHOO_BASE_URL"),
		UserAgent: os.Getenv("YAHOO_USER_AGENT"),
		Timeout:   30 * time.Second,
		SymbolMap: map[string]string{
			"SPX":    "^GSPC",
			"SPX500": "^GSPC",
			"NDX":    "^NDX",
			"VIX":    "^VIX",
		},
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0"
	}
	return cfg
}
