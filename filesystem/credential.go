// client/filesystem/credential.go
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type credentialDoc struct {
	Token   string    `yaml:"token"`
	SavedAt time.Time `yaml:"saved_at"`
}

// CredentialFile keeps the bearer token in a small YAML file readable only
// by the owner. A missing file means no credential.
type CredentialFile struct {
	path string
	mu   sync.Mutex
}

func NewCredentialFile(path string) *CredentialFile {
	return &CredentialFile{path: path}
}

func (c *CredentialFile) Path() string { return c.path }

func (c *CredentialFile) Load() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var doc credentialDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse credential file: %w", err)
	}
	return doc.Token, nil
}

func (c *CredentialFile) Save(token string) error {
	if token == "" {
		return c.Clear()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := yaml.Marshal(credentialDoc{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}

func (c *CredentialFile) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
