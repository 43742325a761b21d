package webdav

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/pkg/models"
)

// ErrNotConfigured is returned by every remote operation for a user without
// a saved WebDAV config. The check runs before any network access.
var ErrNotConfigured = errors.New("webdav is not configured")

// SaveConfig stores a user's WebDAV target, encrypting the password under the
// user's vault key. The previous config, if any, is overwritten wholesale.
func (s *Service) SaveConfig(ctx context.Context, userID string, cfg models.WebDAVConfig) error {
	if cfg.URL == "" || cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("%w: url, username and password are required", ErrInvalidConfig)
	}
	encrypted, err := s.vault.EncryptField(userID, cfg.Password)
	if err != nil {
		return fmt.Errorf("encrypting webdav password: %w", err)
	}
	cfg.Password = encrypted

	value, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling webdav config: %w", err)
	}
	return s.store.Put(ctx, configKey(userID), value, 0)
}

// ErrInvalidConfig marks a config save with missing fields.
var ErrInvalidConfig = errors.New("invalid webdav config")

// Config returns the stored config with the password still ciphertext, or
// ErrNotConfigured.
func (s *Service) Config(ctx context.Context, userID string) (*models.WebDAVConfig, error) {
	value, err := s.store.Get(ctx, configKey(userID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	var cfg models.WebDAVConfig
	if err := json.Unmarshal(value, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling webdav config: %w", err)
	}
	return &cfg, nil
}

// credentials returns the stored config with the password decrypted for use
// in Basic auth. Never exposed outside this package.
func (s *Service) credentials(ctx context.Context, userID string) (*models.WebDAVConfig, error) {
	cfg, err := s.Config(ctx, userID)
	if err != nil {
		return nil, err
	}
	password, _ := s.vault.DecryptField(userID, cfg.Password)
	cfg.Password = password
	return cfg, nil
}

func configKey(userID string) string {
	return "webdav:" + userID
}
