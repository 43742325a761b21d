package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/pkg/models"
)

func strPtr(s string) *string { return &s }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewMemoryBackend(), false)
}

func fields(site, user, pass string) models.CredentialFields {
	return models.CredentialFields{
		SiteName: strPtr(site),
		Username: strPtr(user),
		Password: strPtr(pass),
	}
}

func TestCreateMasksPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, "u1", fields("example.com", "alice", "hunter2"))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, models.MaskedPassword, rec.Password)
	assert.NotEmpty(t, rec.CreatedAt)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	// Stored form is ciphertext, not plaintext and not the mask
	stored, err := s.Get(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored.Password)
	assert.NotEqual(t, models.MaskedPassword, stored.Password)
}

func TestCreateRequiresFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := []models.CredentialFields{
		{Username: strPtr("alice"), Password: strPtr("x")},
		{SiteName: strPtr("a.com"), Password: strPtr("x")},
		{SiteName: strPtr("a.com"), Username: strPtr("alice")},
		{SiteName: strPtr(""), Username: strPtr("alice"), Password: strPtr("x")},
	}
	for _, f := range cases {
		_, err := s.Create(ctx, "u1", f)
		assert.ErrorIs(t, err, ErrInvalid)
	}
}

func TestRevealRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, "u1", fields("example.com", "alice", "s3cret!"))
	require.NoError(t, err)

	plaintext, err := s.Reveal(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "s3cret!", plaintext)
}

func TestRevealHKDFDualRead(t *testing.T) {
	backend := storage.NewMemoryBackend()
	legacy := NewStore(backend, false)
	ctx := context.Background()

	// Written under the legacy derivation
	rec, err := legacy.Create(ctx, "u1", fields("example.com", "alice", "old-pass"))
	require.NoError(t, err)

	// Still readable after switching to hkdf
	migrated := NewStore(backend, true)
	plaintext, err := migrated.Reveal(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "old-pass", plaintext)

	// New writes use hkdf and read back fine
	rec2, err := migrated.Create(ctx, "u1", fields("other.com", "bob", "new-pass"))
	require.NoError(t, err)
	plaintext, err = migrated.Reveal(ctx, "u1", rec2.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-pass", plaintext)
}

func TestListMasksAndSorts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "u1", models.CredentialFields{
		SiteName: strPtr("zebra.com"), Username: strPtr("a"), Password: strPtr("x"),
		Category: strPtr("work"),
	})
	require.NoError(t, err)
	_, err = s.Create(ctx, "u1", models.CredentialFields{
		SiteName: strPtr("apple.com"), Username: strPtr("a"), Password: strPtr("x"),
		Category: strPtr("work"),
	})
	require.NoError(t, err)
	_, err = s.Create(ctx, "u1", models.CredentialFields{
		SiteName: strPtr("bank.com"), Username: strPtr("a"), Password: strPtr("x"),
		Category: strPtr("finance"),
	})
	require.NoError(t, err)
	// No category: sorts under the fallback label
	_, err = s.Create(ctx, "u1", fields("misc.org", "a", "x"))
	require.NoError(t, err)

	records, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 4)

	var got []string
	for _, r := range records {
		assert.Equal(t, models.MaskedPassword, r.Password)
		got = append(got, r.SiteName)
	}
	// finance < uncategorized < work; within work: apple < zebra
	assert.Equal(t, []string{"bank.com", "misc.org", "apple.com", "zebra.com"}, got)
}

func TestListScopedByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "u1", fields("a.com", "alice", "x"))
	require.NoError(t, err)
	_, err = s.Create(ctx, "u2", fields("b.com", "bob", "y"))
	require.NoError(t, err)

	records, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a.com", records[0].SiteName)
}

func TestListUserIDWithWildcardChars(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "a_c" must not see "abc" even though '_' is a pattern wildcard in some
	// backends' scan implementations.
	_, err := s.Create(ctx, "a_c", fields("underscore.com", "u", "x"))
	require.NoError(t, err)
	_, err = s.Create(ctx, "abc", fields("plain.com", "u", "y"))
	require.NoError(t, err)
	_, err = s.Create(ctx, "a%c", fields("percent.com", "u", "z"))
	require.NoError(t, err)

	records, err := s.List(ctx, "a_c")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "underscore.com", records[0].SiteName)

	records, err = s.List(ctx, "a%c")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "percent.com", records[0].SiteName)
}

func TestUpdateMergesFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, "u1", fields("example.com", "alice", "old"))
	require.NoError(t, err)
	before, err := s.Get(ctx, "u1", rec.ID)
	require.NoError(t, err)

	// Partial update without password: ciphertext untouched
	updated, err := s.Update(ctx, "u1", rec.ID, models.CredentialFields{
		Username: strPtr("alice2"),
		Notes:    strPtr("rotated soon"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "rotated soon", updated.Notes)
	assert.Equal(t, "example.com", updated.SiteName)
	assert.Equal(t, models.MaskedPassword, updated.Password)

	after, err := s.Get(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Password, after.Password)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	// Update with password: re-encrypted, reveals the new value
	_, err = s.Update(ctx, "u1", rec.ID, models.CredentialFields{Password: strPtr("new")})
	require.NoError(t, err)
	plaintext, err := s.Reveal(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", plaintext)
}

func TestUpdateUnknownID(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Update(context.Background(), "u1", "missing", models.CredentialFields{Notes: strPtr("x")})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, "u1", fields("example.com", "alice", "x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "u1", rec.ID))
	require.NoError(t, s.Delete(ctx, "u1", rec.ID))
	require.NoError(t, s.Delete(ctx, "u1", "never-existed"))

	records, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDumpDecryptsPasswords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "u1", fields("example.com", "alice", "plain-pw"))
	require.NoError(t, err)

	records, err := s.Dump(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "plain-pw", records[0].Password)
}

func TestCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Empty list, not nil, for a fresh user
	cats, err := s.Categories(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)

	cats, err = s.AddCategory(ctx, "u1", "work")
	require.NoError(t, err)
	cats, err = s.AddCategory(ctx, "u1", "finance")
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "finance"}, cats)

	// Duplicate add is a no-op
	cats, err = s.AddCategory(ctx, "u1", "work")
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "finance"}, cats)

	cats, err = s.RemoveCategory(ctx, "u1", "work")
	require.NoError(t, err)
	assert.Equal(t, []string{"finance"}, cats)

	// Removing an absent name succeeds
	cats, err = s.RemoveCategory(ctx, "u1", "nope")
	require.NoError(t, err)
	assert.Equal(t, []string{"finance"}, cats)

	_, err = s.AddCategory(ctx, "u1", "")
	assert.ErrorIs(t, err, ErrInvalid)
}
