package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/dateplanner/internal/logging"
)

// Config captures the settings of the planner service.
type Config struct {
	HTTPPort         int
	DBFile           string
	TestDBFile       string
	DBMaxConnections int
	DBTimeout        time.Duration
	LogLevel         slog.Level
}

// fileConfig is the optional YAML file named by SERVICE_CONFIG_FILE. Unset
// or zero entries keep the defaults.
type fileConfig struct {
	HTTPPort int `yaml:"http_port"`
	DB       struct {
		File           string `yaml:"file"`
		TestFile       string `yaml:"test_file"`
		MaxConnections int    `yaml:"max_connections"`
		TimeoutMS      int    `yaml:"timeout_ms"`
	} `yaml:"db"`
	LogLevel string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		HTTPPort:         8080,
		DBFile:           "db/planner.db",
		TestDBFile:       "db/planner_test.db",
		DBMaxConnections: 1,
		DBTimeout:        5 * time.Second,
		LogLevel:         slog.LevelInfo,
	}
}

// Load reads the optional config file and then the SERVICE_* environment
// variables, which take precedence. Invalid values are reported together.
func Load() (Config, error) {
	cfg := defaults()
	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("SERVICE_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path, &invalid); err != nil {
			return Config{}, err
		}
	}

	if portValue := env("SERVICE_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "SERVICE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if file := env("SERVICE_DB_FILE"); file != "" {
		cfg.DBFile = file
	}
	if file := env("SERVICE_TEST_DB_FILE"); file != "" {
		cfg.TestDBFile = file
	}

	if maxValue := env("SERVICE_DB_MAX_CONNECTIONS"); maxValue != "" {
		max, err := strconv.Atoi(maxValue)
		if err != nil || max <= 0 {
			invalid = append(invalid, "SERVICE_DB_MAX_CONNECTIONS")
		} else {
			cfg.DBMaxConnections = max
		}
	}

	if timeoutValue := env("SERVICE_DB_TIMEOUT_MS"); timeoutValue != "" {
		ms, err := strconv.Atoi(timeoutValue)
		if err != nil || ms < 0 {
			invalid = append(invalid, "SERVICE_DB_TIMEOUT_MS")
		} else {
			cfg.DBTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	if levelValue := env("SERVICE_LOG_LEVEL"); levelValue != "" {
		level, err := logging.ParseLevel(levelValue)
		if err != nil {
			invalid = append(invalid, "SERVICE_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func applyFile(cfg *Config, path string, invalid *[]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルを読み込めません: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("設定ファイルの形式が不正です (%s): %w", path, err)
	}

	switch {
	case fc.HTTPPort < 0 || fc.HTTPPort > 65535:
		*invalid = append(*invalid, "http_port")
	case fc.HTTPPort > 0:
		cfg.HTTPPort = fc.HTTPPort
	}
	if fc.DB.File != "" {
		cfg.DBFile = fc.DB.File
	}
	if fc.DB.TestFile != "" {
		cfg.TestDBFile = fc.DB.TestFile
	}
	switch {
	case fc.DB.MaxConnections < 0:
		*invalid = append(*invalid, "db.max_connections")
	case fc.DB.MaxConnections > 0:
		cfg.DBMaxConnections = fc.DB.MaxConnections
	}
	switch {
	case fc.DB.TimeoutMS < 0:
		*invalid = append(*invalid, "db.timeout_ms")
	case fc.DB.TimeoutMS > 0:
		cfg.DBTimeout = time.Duration(fc.DB.TimeoutMS) * time.Millisecond
	}
	if fc.LogLevel != "" {
		level, err := logging.ParseLevel(fc.LogLevel)
		if err != nil {
			*invalid = append(*invalid, "log_level")
		} else {
			cfg.LogLevel = level
		}
	}
	return nil
}
