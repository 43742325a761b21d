package models

// MaskedPassword is the fixed placeholder returned in place of a stored
// password on every external read.
const MaskedPassword = "••••••••"

// CredentialRecord is one stored credential. Password holds keyed-blob
// ciphertext at rest and is only ever decrypted inside a reveal, export or
// backup operation.
type CredentialRecord struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	SiteName  string `json:"siteName"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Category  string `json:"category,omitempty"`
	URL       string `json:"url,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Masked returns a copy with the password replaced by the placeholder.
func (c CredentialRecord) Masked() CredentialRecord {
	c.Password = MaskedPassword
	return c
}

// CredentialFields carries caller-supplied fields for create and update.
// Pointers distinguish "absent" from "set to empty" on partial updates.
type CredentialFields struct {
	SiteName *string `json:"siteName,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Category *string `json:"category,omitempty"`
	URL      *string `json:"url,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}
