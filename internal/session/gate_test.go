package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/org/passvault/internal/storage"
	"github.com/org/passvault/pkg/models"
)

func TestCreateAndVerify(t *testing.T) {
	g := NewGate(storage.NewMemoryBackend(), 0)
	ctx := context.Background()

	token, err := g.Create(ctx, models.SessionRecord{UserID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(token, "pvs_") {
		t.Errorf("token = %q, want pvs_ prefix", token)
	}

	rec, err := g.Verify(ctx, token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rec == nil {
		t.Fatal("Verify returned nil for valid token")
	}
	if rec.UserID != "u1" || rec.Username != "alice" {
		t.Errorf("Verify = %+v, want userId u1 / username alice", rec)
	}
	if rec.LoginAt == "" {
		t.Error("LoginAt not stamped")
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	g := NewGate(storage.NewMemoryBackend(), 0)

	rec, err := g.Verify(context.Background(), "pvs_bogus")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rec != nil {
		t.Errorf("Verify unknown token = %+v, want nil", rec)
	}

	rec, err = g.Verify(context.Background(), "")
	if err != nil || rec != nil {
		t.Errorf("Verify empty token = (%+v, %v), want (nil, nil)", rec, err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	g := NewGate(storage.NewMemoryBackend(), 10*time.Millisecond)
	ctx := context.Background()

	token, err := g.Create(ctx, models.SessionRecord{UserID: "u1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	rec, err := g.Verify(ctx, token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rec != nil {
		t.Errorf("Verify expired token = %+v, want nil", rec)
	}
}

func TestEvict(t *testing.T) {
	g := NewGate(storage.NewMemoryBackend(), 0)
	ctx := context.Background()

	token, _ := g.Create(ctx, models.SessionRecord{UserID: "u1"})
	if err := g.Evict(ctx, token); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	rec, _ := g.Verify(ctx, token)
	if rec != nil {
		t.Errorf("Verify after evict = %+v, want nil", rec)
	}

	// Evicting again is a no-op
	if err := g.Evict(ctx, token); err != nil {
		t.Errorf("Evict of absent token: %v, want nil", err)
	}
}

func TestTokensAreUnique(t *testing.T) {
	g := NewGate(storage.NewMemoryBackend(), 0)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := g.Create(ctx, models.SessionRecord{UserID: "u1"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token on iteration %d", i)
		}
		seen[token] = true
	}
}
