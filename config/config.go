// client/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DefaultAPIURL  = "http://localhost:3001"
	DefaultTimeout = 15 * time.Second
	defaultDirName = ".lumi"
)

type Config struct {
	APIURL   string
	StateDir string
	LogLevel zerolog.Level
	Timeout  time.Duration
}

// Load reads the environment, after merging any of the given dotenv files
// that exist. Variables already set in the process win over the files.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		APIURL:   DefaultAPIURL,
		LogLevel: zerolog.InfoLevel,
		Timeout:  DefaultTimeout,
	}

	apiURL := os.Getenv("LUMI_API_URL")
	if apiURL == "" {
		apiURL = os.Getenv("REACT_APP_BACKEND_URL")
	}
	if apiURL != "" {
		u, err := url.Parse(apiURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Config{}, fmt.Errorf("invalid LUMI_API_URL %q", apiURL)
		}
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}

	cfg.StateDir = os.Getenv("LUMI_STATE_DIR")
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve state dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, defaultDirName)
	}

	if lvl := os.Getenv("LUMI_LOG_LEVEL"); lvl != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(lvl))
		if err != nil {
			return Config{}, fmt.Errorf("invalid LUMI_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = parsed
	}

	if t := os.Getenv("LUMI_HTTP_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid LUMI_HTTP_TIMEOUT %q", t)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// CredentialPath is where the session token is kept.
func (c Config) CredentialPath() string {
	return filepath.Join(c.StateDir, "session.yaml")
}
