// Package config loads the gateway's configuration: ERP credentials, server
// settings, and CORS allow-list, from the environment with a local
// credentials file as fallback.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything cmd/server needs to construct the gateway.
type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string

	AccountID      string
	ConsumerKey    string
	ConsumerSecret string
	TokenID        string
	TokenSecret    string
	BaseURL        string

	MaxPageRows       int
	RequestsPerSecond float64
}

// credentialsFile is the shape of the optional local JSON fallback, tried
// for any of the five ERP credential fields left unset by the environment.
type credentialsFile struct {
	AccountID      string `json:"accountId"`
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`
	TokenID        string `json:"tokenId"`
	TokenSecret    string `json:"tokenSecret"`
	BaseURL        string `json:"baseUrl"`
}

// Load builds a Config from the environment, falling back to a local JSON
// credentials file (path from CREDENTIALS_FILE, default "credentials.json")
// for any ERP credential the environment leaves unset. Env always wins; the
// file path is never logged since it may be a sensitive local secret.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		AccountID:      os.Getenv("ERP_ACCOUNT_ID"),
		ConsumerKey:    os.Getenv("ERP_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("ERP_CONSUMER_SECRET"),
		TokenID:        os.Getenv("ERP_TOKEN_ID"),
		TokenSecret:    os.Getenv("ERP_TOKEN_SECRET"),
		BaseURL:        os.Getenv("ERP_BASE_URL"),

		MaxPageRows:       getEnvInt("ERP_MAX_PAGE_ROWS", 100_000),
		RequestsPerSecond: getEnvFloat("ERP_REQUESTS_PER_SECOND", 10),
	}

	if err := cfg.fillFromFile(getEnv("CREDENTIALS_FILE", "credentials.json")); err != nil {
		return nil, fmt.Errorf("config: reading credentials file: %w", err)
	}

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	} else {
		for _, o := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillFromFile reads path, if it exists, and fills any credential field cfg
// doesn't already have from the environment. A missing file is not an
// error — the file is a fallback, not a requirement.
func (c *Config) fillFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		// Never format the underlying *PathError: its Error() string embeds
		// the path itself, which maskPath exists specifically to keep out of
		// logs and error responses.
		return fmt.Errorf("reading %s: unreadable", maskPath(path))
	}

	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("parsing %s: %w", maskPath(path), err)
	}

	if c.AccountID == "" {
		c.AccountID = creds.AccountID
	}
	if c.ConsumerKey == "" {
		c.ConsumerKey = creds.ConsumerKey
	}
	if c.ConsumerSecret == "" {
		c.ConsumerSecret = creds.ConsumerSecret
	}
	if c.TokenID == "" {
		c.TokenID = creds.TokenID
	}
	if c.TokenSecret == "" {
		c.TokenSecret = creds.TokenSecret
	}
	if c.BaseURL == "" {
		c.BaseURL = creds.BaseURL
	}
	return nil
}

// maskPath never surfaces the configured file path itself in an error
// message, only a generic marker, since the path may encode something
// about the deployment the operator doesn't want in logs.
func maskPath(string) string { return "<credentials file>" }

func (c *Config) validate() error {
	missing := []string{}
	if c.AccountID == "" {
		missing = append(missing, "ERP_ACCOUNT_ID")
	}
	if c.ConsumerKey == "" {
		missing = append(missing, "ERP_CONSUMER_KEY")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "ERP_CONSUMER_SECRET")
	}
	if c.TokenID == "" {
		missing = append(missing, "ERP_TOKEN_ID")
	}
	if c.TokenSecret == "" {
		missing = append(missing, "ERP_TOKEN_SECRET")
	}
	if c.BaseURL == "" {
		missing = append(missing, "ERP_BASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required ERP credentials (set via env or credentials file): %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
