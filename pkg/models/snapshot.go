package models

// SnapshotVersion tags every envelope this codebase produces.
const SnapshotVersion = "1.0"

// SnapshotEntry is one fully decrypted credential inside an envelope.
// Ids are intentionally absent: imports always mint fresh ones.
type SnapshotEntry struct {
	SiteName string `json:"siteName"`
	Username string `json:"username"`
	Password string `json:"password"`
	Category string `json:"category,omitempty"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// SnapshotEnvelope bundles a user's decrypted credentials plus metadata.
// It exists only transiently between serialization and encryption.
type SnapshotEnvelope struct {
	Version    string          `json:"version"`
	ExportDate string          `json:"exportDate,omitempty"`
	BackupDate string          `json:"backupDate,omitempty"`
	User       string          `json:"user,omitempty"`
	Passwords  []SnapshotEntry `json:"passwords"`
}

// EncryptedEnvelope is the wire and storage form of a SnapshotEnvelope.
// Data is the keyed-blob ciphertext of the envelope JSON.
type EncryptedEnvelope struct {
	Encrypted  bool   `json:"encrypted"`
	Data       string `json:"data"`
	ExportDate string `json:"exportDate,omitempty"`
	BackupDate string `json:"backupDate,omitempty"`
}

// ImportResult reports per-entry import accounting.
type ImportResult struct {
	Imported int `json:"imported"`
	Errors   int `json:"errors"`
}
