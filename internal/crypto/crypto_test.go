package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestDeriveKey(t *testing.T) {
	key := DeriveKey("user-42")
	if len(key) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(key))
	}
	if string(key) != "user-42"+strings.Repeat("0", 25) {
		t.Errorf("short identifier should be right-padded with '0': %q", key)
	}

	long := strings.Repeat("a", 40)
	key2 := DeriveKey(long)
	if string(key2) != strings.Repeat("a", 32) {
		t.Errorf("long identifier should be truncated to 32 bytes: %q", key2)
	}

	// Deterministic
	if !bytes.Equal(DeriveKey("user-42"), key) {
		t.Error("derivation should be deterministic")
	}
}

func TestDeriveKeyHKDF(t *testing.T) {
	key, err := DeriveKeyHKDF("user-42", []byte("salt"))
	if err != nil {
		t.Fatalf("DeriveKeyHKDF failed: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("expected 32 bytes, got %d", len(key))
	}
	if bytes.Equal(key, DeriveKey("user-42")) {
		t.Error("HKDF derivation must not collide with legacy derivation")
	}
	key2, _ := DeriveKeyHKDF("user-42", []byte("salt"))
	if !bytes.Equal(key, key2) {
		t.Error("HKDF derivation should be deterministic")
	}
	key3, _ := DeriveKeyHKDF("user-42", []byte("other salt"))
	if bytes.Equal(key, key3) {
		t.Error("different salts should yield different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey("roundtrip-user")
	for _, plaintext := range []string{
		"",
		"Secr3t!",
		"多字节密码 with mixed content",
		string([]byte{0, 1, 2, 255, 254}),
	} {
		blob, err := Encrypt(plaintext, key)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", plaintext, err)
		}
		got, ok := Decrypt(blob, key)
		if !ok {
			t.Fatalf("Decrypt(%q) reported fallback", plaintext)
		}
		if got != plaintext {
			t.Errorf("round trip mismatch: got %q want %q", got, plaintext)
		}
	}
}

func TestEncryptNonceFreshness(t *testing.T) {
	key := DeriveKey("nonce-user")
	a, err := Encrypt("same plaintext", key)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt("same plaintext", key)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of identical plaintext should differ")
	}
}

func TestDecryptFallback(t *testing.T) {
	key := DeriveKey("fallback-user")

	// Garbage that is not even base64
	got, ok := Decrypt("not base64!!!", key)
	if ok || got != "not base64!!!" {
		t.Errorf("expected unchanged fallback, got %q ok=%v", got, ok)
	}

	// Valid base64 but too short to hold a nonce
	got, ok = Decrypt("YWJj", key)
	if ok || got != "YWJj" {
		t.Errorf("expected unchanged fallback for short input, got %q ok=%v", got, ok)
	}

	// Valid ciphertext under a different key
	blob, _ := Encrypt("secret", DeriveKey("someone else"))
	got, ok = Decrypt(blob, key)
	if ok || got != blob {
		t.Errorf("wrong-key decrypt should fall back to input, got %q ok=%v", got, ok)
	}
}

func TestContextKeysIndependent(t *testing.T) {
	// Vault, export and backup keys are all derived with the same rule but
	// from different identifiers; a blob sealed under one must not open
	// under another.
	vaultKey := DeriveKey("github-user-1001")
	exportKey := DeriveKey("my export passphrase")

	blob, err := Encrypt("hunter2", vaultKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Decrypt(blob, exportKey); ok {
		t.Error("blob sealed under vault key opened under export key")
	}
}
