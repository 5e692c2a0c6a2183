package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/dateplanner/internal/model"
	"github.com/example/dateplanner/internal/testfixtures"
)

func setEnv(t *testing.T, dbPath string) {
	t.Helper()
	for _, key := range []string{"SERVICE_CONFIG_FILE", "SERVICE_HTTP_PORT", "SERVICE_TEST_DB_FILE",
		"SERVICE_DB_MAX_CONNECTIONS", "SERVICE_DB_TIMEOUT_MS", "SERVICE_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("SERVICE_DB_FILE", dbPath)
}

func TestRun_MigrateOnlyWithSeed(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "planner.db")
	setEnv(t, dbPath)

	seed := filepath.Join(dir, "seed.sql")
	script := `INSERT INTO plan (name, url_id, ctime) VALUES ('Trip', 'seeded01', '2024-01-02T15:04:05.000000Z');`
	if err := os.WriteFile(seed, []byte(script), 0o600); err != nil {
		t.Fatalf("failed to write seed script: %v", err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-migrate-only", "-seed", seed}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "seed script applied") {
		t.Fatalf("expected seed log line, got %s", out.String())
	}

	mm := model.NewManager(testfixtures.NewStoreAtExisting(t, dbPath))
	plan, err := model.Plans.GetByURLID(context.Background(), mm, "seeded01")
	if err != nil {
		t.Fatalf("seeded plan not found: %v", err)
	}
	if plan.Name != "Trip" {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("invalid configuration", func(t *testing.T) {
		setEnv(t, filepath.Join(t.TempDir(), "planner.db"))
		t.Setenv("SERVICE_HTTP_PORT", "not-a-port")

		err := run(context.Background(), []string{"-migrate-only"}, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "SERVICE_HTTP_PORT") {
			t.Fatalf("expected configuration error, got %v", err)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		setEnv(t, filepath.Join(t.TempDir(), "planner.db"))

		if err := run(context.Background(), []string{"-bogus"}, &bytes.Buffer{}); err == nil {
			t.Fatalf("expected flag error")
		}
	})

	t.Run("failing seed script", func(t *testing.T) {
		dir := t.TempDir()
		setEnv(t, filepath.Join(dir, "planner.db"))
		seed := filepath.Join(dir, "seed.sql")
		if err := os.WriteFile(seed, []byte("INSERT INTO missing_table VALUES (1);"), 0o600); err != nil {
			t.Fatalf("failed to write seed script: %v", err)
		}

		err := run(context.Background(), []string{"-migrate-only", "-seed", seed}, &bytes.Buffer{})
		if err == nil || !strings.Contains(err.Error(), "seed database") {
			t.Fatalf("expected seed error, got %v", err)
		}
	})
}

func TestNewHandler_CreatesPlan(t *testing.T) {
	mm, _, _ := testfixtures.NewManager(t)
	handler := newHandler(mm, testfixtures.DiscardLogger())

	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(`{"name":"Trip"}`))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.HasPrefix(recorder.Header().Get("HX-Redirect"), "plan/") {
		t.Fatalf("unexpected redirect %q", recorder.Header().Get("HX-Redirect"))
	}
}
