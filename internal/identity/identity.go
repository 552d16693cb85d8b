// Package identity resolves the id of the user whose matches are shown.
package identity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/matchdeck/internal/secrets"
)

// EnvUserID is the environment variable consulted by Env.
const EnvUserID = "MATCHDECK_USER_ID"

// ErrNoIdentity is returned when no provider yields a user id.
var ErrNoIdentity = errors.New("no user identity available")

// Provider returns the current user id.
type Provider interface {
	Name() string
	UserID(ctx context.Context) (string, error)
}

// Static is a user id taken from configuration or flags.
type Static string

func (s Static) Name() string { return "config" }

func (s Static) UserID(context.Context) (string, error) {
	id := strings.TrimSpace(string(s))
	if id == "" {
		return "", ErrNoIdentity
	}
	return id, nil
}

// Env reads the user id from an environment variable, EnvUserID when empty.
type Env string

func (e Env) Name() string { return "env" }

func (e Env) UserID(context.Context) (string, error) {
	key := string(e)
	if key == "" {
		key = EnvUserID
	}

	id := strings.TrimSpace(os.Getenv(key))
	if id == "" {
		return "", ErrNoIdentity
	}
	return id, nil
}

// File reads a user id cached by a previous session.
type File string

func (f File) Name() string { return "file" }

func (f File) UserID(context.Context) (string, error) {
	path := strings.TrimSpace(string(f))
	if path == "" {
		return "", ErrNoIdentity
	}

	id, err := secrets.Load(secrets.Source{Name: "user id", File: path})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoIdentity
		}
		return "", err
	}
	return id, nil
}

// Remember caches the id so later sessions can start without configuration.
func (f File) Remember(id string) error {
	path := strings.TrimSpace(string(f))
	if path == "" {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating directory for %q: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(strings.TrimSpace(id)+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing user id to %q: %w", path, err)
	}
	return nil
}

// Chain tries providers in order and returns the first id found.
type Chain struct {
	Providers []Provider
	Logger    *zap.Logger
}

func (c Chain) Name() string { return "chain" }

func (c Chain) UserID(ctx context.Context) (string, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, p := range c.Providers {
		id, err := p.UserID(ctx)
		if errors.Is(err, ErrNoIdentity) {
			logger.Debug("identity provider has no user id", zap.String("provider", p.Name()))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%s provider: %w", p.Name(), err)
		}

		logger.Debug("resolved user id", zap.String("provider", p.Name()))
		return id, nil
	}

	return "", ErrNoIdentity
}
