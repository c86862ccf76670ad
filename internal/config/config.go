package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"costbook/internal/core"
)

type Config struct {
	// Database
	DataDir   string
	DBName    string
	DBVersion uint

	// Exchange rate provider
	RatesURL     string
	FetchTimeout time.Duration

	// Reporting
	ReportCurrency string
}

func Load() *Config {
	cfg := &Config{
		DataDir:   getEnv("COSTBOOK_DATA_DIR", "./data"),
		DBName:    getEnv("COSTBOOK_DB_NAME", "costbook"),
		DBVersion: uint(getEnvInt("COSTBOOK_DB_VERSION", 1)),

		RatesURL:     getEnv("COSTBOOK_RATES_URL", ""),
		FetchTimeout: getEnvDuration("COSTBOOK_FETCH_TIMEOUT", 15*time.Second),

		ReportCurrency: getEnv("COSTBOOK_REPORT_CURRENCY", string(core.USD)),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid.
// An empty rates URL is allowed here: the rates client reports the missing
// source as a precondition failure when a report is actually requested.
func (c *Config) Validate() error {
	var errors []string

	if c.DBName == "" {
		errors = append(errors, "database name cannot be empty")
	} else if strings.ContainsAny(c.DBName, `/\`) {
		errors = append(errors, fmt.Sprintf("invalid database name '%s': must not contain path separators", c.DBName))
	}

	if c.DBVersion < 1 {
		errors = append(errors, fmt.Sprintf("invalid database version %d: must be at least 1", c.DBVersion))
	}

	if c.RatesURL != "" {
		if parsedURL, err := url.Parse(c.RatesURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid rates URL '%s': %v", c.RatesURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid rates URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	} else if c.FetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 5 minutes", c.FetchTimeout))
	}

	if _, err := core.ParseCurrency(c.ReportCurrency); err != nil {
		errors = append(errors, fmt.Sprintf("invalid report currency '%s': must be one of %v", c.ReportCurrency, core.Currencies))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
