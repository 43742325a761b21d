package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/pkg/models"
)

const tokenPrefix = "pvs_"

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Gate maps opaque bearer tokens to session records with a fixed TTL.
// Sessions live in the KV store under a SHA-256 hash of the token, so a
// store dump never yields usable bearer credentials.
type Gate struct {
	store storage.Backend
	ttl   time.Duration
}

// NewGate creates a Gate backed by the given storage. ttl <= 0 uses DefaultTTL.
func NewGate(store storage.Backend, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{store: store, ttl: ttl}
}

// Create mints a new opaque token for the given identity and persists the
// session. The plaintext token is shown once to the caller.
func (g *Gate) Create(ctx context.Context, rec models.SessionRecord) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := tokenPrefix + base64.RawURLEncoding.EncodeToString(raw)

	rec.LoginAt = time.Now().UTC().Format(time.RFC3339)
	value, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshaling session: %w", err)
	}
	if err := g.store.Put(ctx, sessionKey(token), value, g.ttl); err != nil {
		return "", fmt.Errorf("persisting session: %w", err)
	}
	return token, nil
}

// Verify resolves a bearer token to its session record. An unknown or
// expired token yields (nil, nil); errors are reserved for store failures.
func (g *Gate) Verify(ctx context.Context, token string) (*models.SessionRecord, error) {
	if token == "" {
		return nil, nil
	}
	value, err := g.store.Get(ctx, sessionKey(token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var rec models.SessionRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling session: %w", err)
	}
	return &rec, nil
}

// Evict removes a session. Evicting an unknown token is a no-op.
func (g *Gate) Evict(ctx context.Context, token string) error {
	return g.store.Delete(ctx, sessionKey(token))
}

func sessionKey(token string) string {
	h := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(h[:])
}
