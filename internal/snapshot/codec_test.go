package snapshot

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/org/passvault/internal/crypto"
	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/internal/vault"
	"github.com/org/passvault/pkg/models"
)

func strPtr(s string) *string { return &s }

func newTestCodec(t *testing.T) (*Codec, *vault.Store) {
	t.Helper()
	v := vault.NewStore(storage.NewMemoryBackend(), false)
	return NewCodec(v), v
}

func seed(t *testing.T, v *vault.Store, userID string, entries [][3]string) {
	t.Helper()
	for _, e := range entries {
		_, err := v.Create(context.Background(), userID, models.CredentialFields{
			SiteName: strPtr(e[0]),
			Username: strPtr(e[1]),
			Password: strPtr(e[2]),
		})
		require.NoError(t, err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	codec, v := newTestCodec(t)
	ctx := context.Background()

	seed(t, v, "u1", [][3]string{
		{"a.com", "alice", "pw-a"},
		{"b.com", "bob", "pw-b"},
	})

	env, err := codec.Export(ctx, "u1", "travel-pass")
	require.NoError(t, err)
	assert.True(t, env.Encrypted)
	assert.NotEmpty(t, env.ExportDate)
	assert.Empty(t, env.BackupDate)
	assert.NotEmpty(t, env.Data)

	// Import into a different user's empty vault
	result, err := codec.Import(ctx, "u2", env, "travel-pass")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Errors)

	records, err := v.Dump(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byName := map[string]string{}
	for _, r := range records {
		byName[r.SiteName] = r.Password
		assert.NotEmpty(t, r.ID)
	}
	assert.Equal(t, "pw-a", byName["a.com"])
	assert.Equal(t, "pw-b", byName["b.com"])
}

func TestBackupStampsBackupDate(t *testing.T) {
	codec, v := newTestCodec(t)
	seed(t, v, "u1", [][3]string{{"a.com", "alice", "x"}})

	env, err := codec.Backup(context.Background(), "u1", "pass")
	require.NoError(t, err)
	assert.NotEmpty(t, env.BackupDate)
	assert.Empty(t, env.ExportDate)
}

func TestImportWrongPassphraseIsAtomic(t *testing.T) {
	codec, v := newTestCodec(t)
	ctx := context.Background()

	seed(t, v, "u1", [][3]string{{"a.com", "alice", "x"}})
	env, err := codec.Export(ctx, "u1", "right")
	require.NoError(t, err)

	_, err = codec.Import(ctx, "u2", env, "wrong")
	assert.ErrorIs(t, err, ErrDecryptFailed)

	// Nothing written for the target user
	records, err := v.Dump(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestImportGarbageDataIsAtomic(t *testing.T) {
	codec, v := newTestCodec(t)
	ctx := context.Background()

	// Valid ciphertext of something that is not a snapshot envelope
	blob, err := crypto.Encrypt("this is not json", crypto.DeriveKey("pass"))
	require.NoError(t, err)

	_, err = codec.Import(ctx, "u1", &models.EncryptedEnvelope{Encrypted: true, Data: blob}, "pass")
	assert.ErrorIs(t, err, ErrDecryptFailed)

	records, err := v.Dump(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestImportTolerantPerEntry(t *testing.T) {
	codec, v := newTestCodec(t)
	ctx := context.Background()

	// Hand-build an envelope: three valid entries and one missing its password
	env := models.SnapshotEnvelope{
		Version:    models.SnapshotVersion,
		ExportDate: "2026-01-01T00:00:00Z",
		User:       "origin",
		Passwords: []models.SnapshotEntry{
			{SiteName: "a.com", Username: "a", Password: "1"},
			{SiteName: "b.com", Username: "b", Password: "2"},
			{SiteName: "broken.com", Username: "c"},
			{SiteName: "d.com", Username: "d", Password: "4"},
		},
	}
	plaintext, err := json.Marshal(env)
	require.NoError(t, err)
	data, err := crypto.Encrypt(string(plaintext), crypto.DeriveKey("pass"))
	require.NoError(t, err)

	result, err := codec.Import(ctx, "u1", &models.EncryptedEnvelope{Encrypted: true, Data: data}, "pass")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.Errors)

	records, err := v.Dump(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestImportedRecordsGetFreshIDs(t *testing.T) {
	codec, v := newTestCodec(t)
	ctx := context.Background()

	seed(t, v, "u1", [][3]string{{"a.com", "alice", "x"}})
	originals, err := v.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, originals, 1)

	env, err := codec.Export(ctx, "u1", "pass")
	require.NoError(t, err)
	_, err = codec.Import(ctx, "u1", env, "pass")
	require.NoError(t, err)

	// Importing back into the same vault duplicates the record under a new id
	records, err := v.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	ids := []string{records[0].ID, records[1].ID}
	assert.Contains(t, ids, originals[0].ID)
}
