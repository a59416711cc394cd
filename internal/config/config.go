package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Database
	SQLiteDBPath string
	DBMaxConns   int

	// AMQP (optional; empty URL disables messaging)
	AMQPURL      string
	AMQPExchange string
	AMQPJobQueue string

	// Pipeline
	PeriodSchemaStart string // "YYYY-MM" start of the 12-month column set
	IngestTimeout     time.Duration
	DryRunDir         string
}

func Load() *Config {
	return &Config{
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/propfi.db"),
		DBMaxConns:   getEnvInt("DB_MAX_CONNS", 3),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "propfi"),
		AMQPJobQueue: getEnv("AMQP_JOB_QUEUE", "ingest_jobs"),

		PeriodSchemaStart: getEnv("PERIOD_SCHEMA_START", "2024-08"),
		IngestTimeout:     getEnvDuration("INGEST_TIMEOUT", 2*time.Minute),
		DryRunDir:         getEnv("DRY_RUN_DIR", "./data/dryrun"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.DBMaxConns < 1 {
		errors = append(errors, fmt.Sprintf("invalid db max conns %d: must be at least 1", c.DBMaxConns))
	} else if c.DBMaxConns > 64 {
		errors = append(errors, fmt.Sprintf("invalid db max conns %d: must be at most 64", c.DBMaxConns))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPJobQueue == "" {
			errors = append(errors, "AMQP job queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PeriodSchemaStart != "" {
		if _, err := time.Parse("2006-01", c.PeriodSchemaStart); err != nil {
			errors = append(errors, fmt.Sprintf("invalid period schema start '%s': must be YYYY-MM", c.PeriodSchemaStart))
		}
	}

	if c.IngestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid ingest timeout %v: must be at least 1 second", c.IngestTimeout))
	} else if c.IngestTimeout > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid ingest timeout %v: must be at most 1 hour", c.IngestTimeout))
	}

	if c.DryRunDir == "" {
		errors = append(errors, "dry run directory cannot be empty")
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
