// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "file:test.db")
	os.Setenv("APP_PASSWORD", "hunter2")
	os.Setenv("SESSION_SECRET", "test-secret")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("expected default upload dir, got %s", cfg.UploadDir)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-password", "pw", "-session-secret", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.AppPassword != "pw" {
		t.Errorf("expected password from CLI, got %q", cfg.AppPassword)
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	defer os.Clearenv()
	os.Clearenv()

	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error when APP_PASSWORD is missing")
	}

	if _, err := ParseFlags([]string{"-password", "pw"}); err == nil {
		t.Error("expected error when SESSION_SECRET is missing")
	}
}

func TestParseFlags_PostgresNeedsURL(t *testing.T) {
	defer os.Clearenv()
	os.Clearenv()

	_, err := ParseFlags([]string{"-t", "postgres", "-password", "pw", "-session-secret", "s"})
	if err == nil {
		t.Error("expected error for postgres without a database URL")
	}

	_, err = ParseFlags([]string{"-t", "mysql", "-password", "pw", "-session-secret", "s"})
	if err == nil {
		t.Error("expected error for unsupported database type")
	}
}

func TestConfigLocation(t *testing.T) {
	cfg := Config{TimezoneName: "UTC"}
	if cfg.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", cfg.Location())
	}

	cfg = Config{TimezoneName: "Not/AZone"}
	if cfg.Location() != time.Local {
		t.Errorf("expected fallback to local, got %v", cfg.Location())
	}
}
