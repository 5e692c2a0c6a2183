package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var serviceKeys = []string{
	"SERVICE_CONFIG_FILE",
	"SERVICE_HTTP_PORT",
	"SERVICE_DB_FILE",
	"SERVICE_TEST_DB_FILE",
	"SERVICE_DB_MAX_CONNECTIONS",
	"SERVICE_DB_TIMEOUT_MS",
	"SERVICE_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range serviceKeys {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg != defaults() {
			t.Fatalf("expected defaults, got %+v", cfg)
		}
		if cfg.DBFile != "db/planner.db" || cfg.DBTimeout != 5*time.Second || cfg.DBMaxConnections != 1 {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("parses numeric fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERVICE_HTTP_PORT", "9090")
		t.Setenv("SERVICE_DB_FILE", "/tmp/planner.db")
		t.Setenv("SERVICE_TEST_DB_FILE", "/tmp/planner_test.db")
		t.Setenv("SERVICE_DB_MAX_CONNECTIONS", "4")
		t.Setenv("SERVICE_DB_TIMEOUT_MS", "250")
		t.Setenv("SERVICE_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		want := Config{
			HTTPPort:         9090,
			DBFile:           "/tmp/planner.db",
			TestDBFile:       "/tmp/planner_test.db",
			DBMaxConnections: 4,
			DBTimeout:        250 * time.Millisecond,
			LogLevel:         slog.LevelDebug,
		}
		if cfg != want {
			t.Fatalf("expected %+v, got %+v", want, cfg)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERVICE_HTTP_PORT", "eighty")
		t.Setenv("SERVICE_DB_MAX_CONNECTIONS", "0")
		t.Setenv("SERVICE_DB_TIMEOUT_MS", "-1")
		t.Setenv("SERVICE_LOG_LEVEL", "loud")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "環境変数の値が不正です: SERVICE_HTTP_PORT, SERVICE_DB_MAX_CONNECTIONS, SERVICE_DB_TIMEOUT_MS, SERVICE_LOG_LEVEL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}

func TestLoader_ConfigFile(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERVICE_CONFIG_FILE", writeConfigFile(t, `
http_port: 7070
db:
  file: data/from-file.db
  max_connections: 2
  timeout_ms: 1500
log_level: warn
`))

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 7070 || cfg.DBFile != "data/from-file.db" || cfg.DBMaxConnections != 2 {
			t.Fatalf("unexpected config: %+v", cfg)
		}
		if cfg.DBTimeout != 1500*time.Millisecond || cfg.LogLevel != slog.LevelWarn {
			t.Fatalf("unexpected config: %+v", cfg)
		}
		if cfg.TestDBFile != "db/planner_test.db" {
			t.Fatalf("expected default test db, got %q", cfg.TestDBFile)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERVICE_CONFIG_FILE", writeConfigFile(t, "http_port: 7070\ndb:\n  file: from-file.db\n"))
		t.Setenv("SERVICE_HTTP_PORT", "9091")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPPort != 9091 {
			t.Fatalf("expected env port 9091, got %d", cfg.HTTPPort)
		}
		if cfg.DBFile != "from-file.db" {
			t.Fatalf("expected file db path, got %q", cfg.DBFile)
		}
	})

	t.Run("invalid file values are reported", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERVICE_CONFIG_FILE", writeConfigFile(t, "http_port: -1\nlog_level: chatty\n"))

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "http_port") || !strings.Contains(err.Error(), "log_level") {
			t.Fatalf("expected invalid file keys, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERVICE_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing config file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SERVICE_CONFIG_FILE", writeConfigFile(t, "db: [unclosed\n"))

		if _, err := Load(); err == nil {
			t.Fatalf("expected parse error")
		}
	})
}
