package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DATASET_URL", "DATASET_SOURCE", "HTTP_ADDR", "FETCH_TIMEOUT_SEC", "MAX_RETRIES"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	if cfg.DatasetURL != defaultDatasetURL {
		t.Errorf("DatasetURL: got %q, want %q", cfg.DatasetURL, defaultDatasetURL)
	}
	if cfg.DatasetSource != SourceCSV {
		t.Errorf("DatasetSource: got %q, want %q", cfg.DatasetSource, SourceCSV)
	}
	if cfg.HTTPAddr != ":8050" {
		t.Errorf("HTTPAddr: got %q, want :8050", cfg.HTTPAddr)
	}
	if cfg.FetchTimeout != 60*time.Second {
		t.Errorf("FetchTimeout: got %v, want 60s", cfg.FetchTimeout)
	}
	if cfg.MaxRetries != 10 {
		t.Errorf("MaxRetries: got %d, want 10", cfg.MaxRetries)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("FETCH_TIMEOUT_SEC", "5")
	t.Setenv("MAX_CONCURRENCY", "not-a-number")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr: got %q, want :9999", cfg.HTTPAddr)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout: got %v, want 5s", cfg.FetchTimeout)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency: invalid value should fall back to 4, got %d", cfg.MaxConcurrency)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "houses", PostgresSSLMode: "require",
	}
	want := "host=db port=5433 user=u password=p dbname=houses sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
