package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LUMI_API_URL", "REACT_APP_BACKEND_URL", "LUMI_STATE_DIR", "LUMI_LOG_LEVEL", "LUMI_HTTP_TIMEOUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LUMI_STATE_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.LogLevel != zerolog.InfoLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("LUMI_API_URL", "https://notes.example.com/")
	t.Setenv("LUMI_STATE_DIR", dir)
	t.Setenv("LUMI_LOG_LEVEL", "DEBUG")
	t.Setenv("LUMI_HTTP_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://notes.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.LogLevel != zerolog.DebugLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.CredentialPath() != filepath.Join(dir, "session.yaml") {
		t.Errorf("CredentialPath = %q", cfg.CredentialPath())
	}
}

func TestLoadFallsBackToBackendURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("LUMI_STATE_DIR", t.TempDir())
	t.Setenv("REACT_APP_BACKEND_URL", "http://10.0.0.2:3001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://10.0.0.2:3001" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestLoadDotenvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("LUMI_API_URL=http://from-file:9000\nLUMI_STATE_DIR="+dir+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("LUMI_API_URL")
		os.Unsetenv("LUMI_STATE_DIR")
	})

	cfg, err := Load(envFile, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://from-file:9000" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	bad := map[string]string{
		"LUMI_API_URL":      "not a url",
		"LUMI_LOG_LEVEL":    "loud",
		"LUMI_HTTP_TIMEOUT": "-1s",
	}
	for k, v := range bad {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LUMI_STATE_DIR", t.TempDir())
			t.Setenv(k, v)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%q accepted", k, v)
			}
		})
	}
}
