package models

// SessionRecord is the identity attached to a bearer token. The session gate
// owns its lifecycle; the rest of the system reads it to scope every
// operation by UserID.
type SessionRecord struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	LoginAt  string `json:"loginAt"`
}
