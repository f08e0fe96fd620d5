package models

import "time"

// SessionState is the authorization state of the console.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionAuthenticated   SessionState = "authenticated"
)

// Credential is the opaque bearer token of an authenticated session.
type Credential struct {
	Token    string    `json:"-"`
	StoredAt time.Time `json:"stored_at"`
}

// Present reports whether the credential carries a token.
func (c Credential) Present() bool {
	return c.Token != ""
}

// TokenInfo is best-effort, unverified metadata read from a JWT-shaped token.
type TokenInfo struct {
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

// SessionStatus summarises the session for status views.
type SessionStatus struct {
	State    SessionState `json:"state"`
	StoredAt *time.Time   `json:"stored_at,omitempty"`
	Token    *TokenInfo   `json:"token,omitempty"`
}
