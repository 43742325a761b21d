package models

// WebDAVConfig is a user's remote backup target. Password is stored as
// keyed-blob ciphertext under the user's vault key; at most one config
// exists per user and saves overwrite it wholesale.
type WebDAVConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}
