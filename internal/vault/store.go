package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/org/passvault/internal/crypto"
	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/pkg/models"
)

// ErrInvalid marks a request with missing or malformed fields.
var ErrInvalid = errors.New("invalid credential fields")

// fallbackCategory is the sort label applied to records without a category.
// It collates among genuine categories rather than before or after them.
const fallbackCategory = "uncategorized"

// hkdfSalt is the fixed salt for the migration-path derivation. Changing it
// orphans every ciphertext written under kdf: hkdf.
var hkdfSalt = []byte("passvault-vault-salt-v1")

// Store implements credential CRUD over the KV backend. Every operation is
// scoped by the caller's userId; there is no cross-user access path. Writes
// are single-key puts with last-write-wins semantics.
type Store struct {
	store   storage.Backend
	useHKDF bool
}

// NewStore creates a Store. useHKDF switches newly written password fields to
// the HKDF-derived key; reads then try HKDF first and fall back to the legacy
// derivation so pre-migration ciphertexts stay readable.
func NewStore(store storage.Backend, useHKDF bool) *Store {
	return &Store{store: store, useHKDF: useHKDF}
}

// EncryptField seals a field value under the user's vault key.
func (s *Store) EncryptField(userID, plaintext string) (string, error) {
	if s.useHKDF {
		key, err := crypto.DeriveKeyHKDF(userID, hkdfSalt)
		if err != nil {
			return "", err
		}
		return crypto.Encrypt(plaintext, key)
	}
	return crypto.Encrypt(plaintext, crypto.DeriveKey(userID))
}

// DecryptField opens a field value sealed by EncryptField. ok=false means the
// blob came back unchanged; callers pass it through per the fallback policy.
func (s *Store) DecryptField(userID, blob string) (string, bool) {
	if s.useHKDF {
		if key, err := crypto.DeriveKeyHKDF(userID, hkdfSalt); err == nil {
			if value, ok := crypto.Decrypt(blob, key); ok {
				return value, true
			}
		}
	}
	return crypto.Decrypt(blob, crypto.DeriveKey(userID))
}

// Create stores a new credential and returns it with the password masked.
func (s *Store) Create(ctx context.Context, userID string, f models.CredentialFields) (models.CredentialRecord, error) {
	if err := requireFields(f); err != nil {
		return models.CredentialRecord{}, err
	}

	encrypted, err := s.EncryptField(userID, *f.Password)
	if err != nil {
		return models.CredentialRecord{}, fmt.Errorf("encrypting password: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rec := models.CredentialRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		SiteName:  *f.SiteName,
		Username:  *f.Username,
		Password:  encrypted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if f.Category != nil {
		rec.Category = *f.Category
	}
	if f.URL != nil {
		rec.URL = *f.URL
	}
	if f.Notes != nil {
		rec.Notes = *f.Notes
	}

	if err := s.put(ctx, rec); err != nil {
		return models.CredentialRecord{}, err
	}
	return rec.Masked(), nil
}

// Get returns a record as stored, password still ciphertext. Intended for
// internal use; external listings go through List or Masked.
func (s *Store) Get(ctx context.Context, userID, id string) (models.CredentialRecord, error) {
	value, err := s.store.Get(ctx, credentialKey(userID, id))
	if err != nil {
		return models.CredentialRecord{}, err
	}
	var rec models.CredentialRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return models.CredentialRecord{}, fmt.Errorf("unmarshaling credential %s: %w", id, err)
	}
	return rec, nil
}

// Reveal decrypts and returns only the plaintext password for one record.
func (s *Store) Reveal(ctx context.Context, userID, id string) (string, error) {
	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	plaintext, ok := s.DecryptField(userID, rec.Password)
	if !ok {
		// Fallback policy: the stored value is returned as-is. Warn so
		// operators can spot legacy or corrupted entries.
		log.Warn().Str("credential_id", id).Msg("password field failed to decrypt, returning stored value")
	}
	return plaintext, nil
}

// List returns every record for the user with passwords masked, sorted by
// (category, siteName) with locale-aware collation. Records without a
// category sort under the fallback label. Full prefix scan, no pagination.
func (s *Store) List(ctx context.Context, userID string) ([]models.CredentialRecord, error) {
	keys, err := s.store.List(ctx, credentialPrefix(userID))
	if err != nil {
		return nil, err
	}

	records := make([]models.CredentialRecord, 0, len(keys))
	for _, key := range keys {
		value, err := s.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue // deleted between scan and fetch
			}
			return nil, err
		}
		var rec models.CredentialRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling credential at %s: %w", key, err)
		}
		records = append(records, rec.Masked())
	}

	sortRecords(records)
	return records, nil
}

// Update shallow-merges the given fields onto the stored record. The password
// is re-encrypted only when the partial payload carries a new plaintext one.
func (s *Store) Update(ctx context.Context, userID, id string, f models.CredentialFields) (models.CredentialRecord, error) {
	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.CredentialRecord{}, err
	}

	if f.SiteName != nil {
		rec.SiteName = *f.SiteName
	}
	if f.Username != nil {
		rec.Username = *f.Username
	}
	if f.Password != nil {
		encrypted, err := s.EncryptField(userID, *f.Password)
		if err != nil {
			return models.CredentialRecord{}, fmt.Errorf("encrypting password: %w", err)
		}
		rec.Password = encrypted
	}
	if f.Category != nil {
		rec.Category = *f.Category
	}
	if f.URL != nil {
		rec.URL = *f.URL
	}
	if f.Notes != nil {
		rec.Notes = *f.Notes
	}
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.put(ctx, rec); err != nil {
		return models.CredentialRecord{}, err
	}
	return rec.Masked(), nil
}

// Delete removes a credential. Deleting an absent id succeeds.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, credentialKey(userID, id))
}

// Dump returns every record for the user with passwords decrypted. Only the
// snapshot codec calls this, and only transiently for export and backup.
func (s *Store) Dump(ctx context.Context, userID string) ([]models.CredentialRecord, error) {
	keys, err := s.store.List(ctx, credentialPrefix(userID))
	if err != nil {
		return nil, err
	}
	records := make([]models.CredentialRecord, 0, len(keys))
	for _, key := range keys {
		value, err := s.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		var rec models.CredentialRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling credential at %s: %w", key, err)
		}
		plaintext, ok := s.DecryptField(userID, rec.Password)
		if !ok {
			log.Warn().Str("credential_id", rec.ID).Msg("password field failed to decrypt during dump")
		}
		rec.Password = plaintext
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) put(ctx context.Context, rec models.CredentialRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling credential: %w", err)
	}
	return s.store.Put(ctx, credentialKey(rec.UserID, rec.ID), value, 0)
}

func requireFields(f models.CredentialFields) error {
	switch {
	case f.SiteName == nil || *f.SiteName == "":
		return fmt.Errorf("%w: siteName is required", ErrInvalid)
	case f.Username == nil || *f.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalid)
	case f.Password == nil || *f.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalid)
	}
	return nil
}

func sortRecords(records []models.CredentialRecord) {
	// Collators are not safe for concurrent use; build one per sort.
	coll := collate.New(language.Und)
	sort.SliceStable(records, func(i, j int) bool {
		ci, cj := records[i].Category, records[j].Category
		if ci == "" {
			ci = fallbackCategory
		}
		if cj == "" {
			cj = fallbackCategory
		}
		if cmp := coll.CompareString(ci, cj); cmp != 0 {
			return cmp < 0
		}
		return coll.CompareString(records[i].SiteName, records[j].SiteName) < 0
	})
}

func credentialKey(userID, id string) string {
	return credentialPrefix(userID) + id
}

func credentialPrefix(userID string) string {
	return "credential:" + userID + ":"
}
