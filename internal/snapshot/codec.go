package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/org/passvault/internal/crypto"
	"github.com/org/passvault/internal/vault"
	"github.com/org/passvault/pkg/models"
)

// ErrDecryptFailed is returned when an envelope cannot be opened with the
// supplied passphrase. The message is deliberately generic: callers never
// learn whether decoding, authentication, or parsing failed.
var ErrDecryptFailed = errors.New("decryption failed, check your password")

// Codec serializes a whole vault into a versioned envelope and seals it as a
// single blob under a passphrase-derived key. Export and backup envelopes
// differ only in their date field; their keys are derived independently from
// whatever passphrase the caller supplies.
type Codec struct {
	vault *vault.Store
}

// NewCodec creates a Codec over the given vault store.
func NewCodec(v *vault.Store) *Codec {
	return &Codec{vault: v}
}

// Export assembles and seals the user's full vault under the passphrase,
// stamping exportDate.
func (c *Codec) Export(ctx context.Context, userID, passphrase string) (*models.EncryptedEnvelope, error) {
	return c.seal(ctx, userID, passphrase, false)
}

// Backup is Export with backupDate stamped instead of exportDate.
func (c *Codec) Backup(ctx context.Context, userID, passphrase string) (*models.EncryptedEnvelope, error) {
	return c.seal(ctx, userID, passphrase, true)
}

func (c *Codec) seal(ctx context.Context, userID, passphrase string, backup bool) (*models.EncryptedEnvelope, error) {
	records, err := c.vault.Dump(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("dumping vault: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	env := models.SnapshotEnvelope{
		Version:   models.SnapshotVersion,
		User:      userID,
		Passwords: make([]models.SnapshotEntry, 0, len(records)),
	}
	if backup {
		env.BackupDate = now
	} else {
		env.ExportDate = now
	}
	for _, rec := range records {
		env.Passwords = append(env.Passwords, models.SnapshotEntry{
			SiteName: rec.SiteName,
			Username: rec.Username,
			Password: rec.Password,
			Category: rec.Category,
			URL:      rec.URL,
			Notes:    rec.Notes,
		})
	}

	plaintext, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling envelope: %w", err)
	}
	data, err := crypto.Encrypt(string(plaintext), crypto.DeriveKey(passphrase))
	if err != nil {
		return nil, fmt.Errorf("encrypting envelope: %w", err)
	}

	out := &models.EncryptedEnvelope{Encrypted: true, Data: data}
	if backup {
		out.BackupDate = now
	} else {
		out.ExportDate = now
	}
	return out, nil
}

// Import opens the envelope and writes its entries into the user's vault.
// An outer decrypt or parse failure aborts atomically with ErrDecryptFailed
// and nothing written. Entries are then processed independently: each gets a
// fresh id and a password re-encrypted under the importing user's vault key;
// a malformed entry increments the error count without stopping the rest.
func (c *Codec) Import(ctx context.Context, userID string, env *models.EncryptedEnvelope, passphrase string) (models.ImportResult, error) {
	plaintext, ok := crypto.Decrypt(env.Data, crypto.DeriveKey(passphrase))
	if !ok {
		return models.ImportResult{}, ErrDecryptFailed
	}

	var snapshot models.SnapshotEnvelope
	if err := json.Unmarshal([]byte(plaintext), &snapshot); err != nil {
		return models.ImportResult{}, ErrDecryptFailed
	}

	var result models.ImportResult
	for _, entry := range snapshot.Passwords {
		fields := fieldsFromEntry(entry)
		if _, err := c.vault.Create(ctx, userID, fields); err != nil {
			result.Errors++
			continue
		}
		result.Imported++
	}
	return result, nil
}

func fieldsFromEntry(e models.SnapshotEntry) models.CredentialFields {
	f := models.CredentialFields{
		SiteName: &e.SiteName,
		Username: &e.Username,
		Password: &e.Password,
	}
	if e.Category != "" {
		f.Category = &e.Category
	}
	if e.URL != "" {
		f.URL = &e.URL
	}
	if e.Notes != "" {
		f.Notes = &e.Notes
	}
	return f
}
