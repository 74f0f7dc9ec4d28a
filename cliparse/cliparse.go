// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	AppPassword   string
	SessionSecret string
	UploadDir     string
	TimezoneName  string
}

// Location resolves the configured timezone used for timer day boundaries.
// Unknown names fall back to the local zone.
func (c Config) Location() *time.Location {
	if c.TimezoneName == "" || c.TimezoneName == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimezoneName)
	if err != nil {
		return time.Local
	}
	return loc
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("liftlog", flag.ContinueOnError)

	// Network and storage config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite file path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.UploadDir, "upload-dir", "", "Directory for uploaded photos")
	fs.StringVar(&cfg.TimezoneName, "tz", "", "IANA timezone for timer day boundaries")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AppPassword, "password", "", "Shared app password (prefer env)")
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "liftlog.db"
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = os.Getenv("UPLOAD_DIR")
		if cfg.UploadDir == "" {
			cfg.UploadDir = "uploads"
		}
	}

	if cfg.TimezoneName == "" {
		cfg.TimezoneName = os.Getenv("TZ_NAME")
		if cfg.TimezoneName == "" {
			cfg.TimezoneName = "Local"
		}
	}

	// Secrets - MUST be provided
	if cfg.AppPassword == "" {
		cfg.AppPassword = os.Getenv("APP_PASSWORD")
	}
	if cfg.AppPassword == "" {
		return Config{}, errors.New("APP_PASSWORD required")
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	return cfg, nil
}
