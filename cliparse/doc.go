// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file path or PostgreSQL connection string
  - DatabaseType: sqlite (default) or postgres
  - AppPassword: Shared password for the session gate (required)
  - SessionSecret: Secret for session token HMAC (required)
  - UploadDir: Directory for uploaded progress photos (default: uploads)
  - TimezoneName: IANA zone used for timer day boundaries (default: Local)

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-password        Shared app password
	-session-secret  Session signing secret
	-upload-dir      Upload directory
	-tz              Timezone name

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	APP_PASSWORD   → -password
	SESSION_SECRET → -session-secret
	UPLOAD_DIR     → -upload-dir
	TZ_NAME        → -tz

CLI flags take precedence over environment variables. main loads a .env
file (if present) before parsing, so values there behave like regular
environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - APP_PASSWORD must be provided
  - SESSION_SECRET must be provided
  - DATABASE_URL must be provided when DATABASE_TYPE is postgres

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse
