package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the AES-256 key length. Every derivation context produces
// exactly this many bytes.
const KeySize = 32

const nonceSize = 12

// DeriveKey derives a 32-byte key from an identifier string: the first 32
// characters, right-padded with ASCII '0' when shorter.
//
// This is NOT a sound KDF — no salt, no stretching, and the identifier may be
// attacker-influenced. It is kept bit-for-bit because existing ciphertexts
// were produced under it; see DeriveKeyHKDF for the migration path.
func DeriveKey(identifier string) []byte {
	key := make([]byte, KeySize)
	b := []byte(identifier)
	if len(b) > KeySize {
		b = b[:KeySize]
	}
	copy(key, b)
	for i := len(b); i < KeySize; i++ {
		key[i] = '0'
	}
	return key
}

// DeriveKeyHKDF derives a 32-byte key from an identifier via HKDF-SHA256.
// The successor to DeriveKey for newly written records when the server is
// configured with kdf: hkdf. Incompatible with DeriveKey output.
func DeriveKeyHKDF(identifier string, salt []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(identifier), salt, []byte("passvault-field-key-v1"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under key with AES-256-GCM and a fresh 12-byte
// random nonce, returning base64(nonce || ciphertext+tag). Two calls with
// identical inputs produce different blobs.
func Encrypt(plaintext string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("creating GCM: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. On any failure — bad base64, short input, failed
// authentication — it returns the input unchanged with ok=false instead of an
// error. Legacy stores hold values that were never encrypted and must pass
// through verbatim; callers must not treat a fallback result as plaintext.
func Decrypt(blob string, key []byte) (value string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil || len(raw) < nonceSize {
		return blob, false
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return blob, false
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return blob, false
	}
	plaintext, err := gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return blob, false
	}
	return string(plaintext), true
}
