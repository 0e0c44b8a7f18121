package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenSource supplies the bearer token. An empty token means anonymous.
type TokenSource interface {
	Token() (string, error)
}

type StaticToken string

func (s StaticToken) Token() (string, error) { return string(s), nil }

// FileToken keeps the access token in a file under the user's config dir.
type FileToken struct {
	Path string
}

// DefaultTokenPath is $XDG_CONFIG_HOME/urnav/token or its platform equivalent.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "urnav", "token"), nil
}

func (f FileToken) Token() (string, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (f FileToken) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (f FileToken) Clear() error {
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
