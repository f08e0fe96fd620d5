package models

// LoginRequest holds credentials exchanged for an access token.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse is the backend reply to a login exchange.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Message     string `json:"message,omitempty"`
}

// RegisterResponse is the backend reply to a registration.
type RegisterResponse struct {
	Message string `json:"message"`
}

// AuthResult reports the outcome of a session operation without failing the caller.
type AuthResult struct {
	OK       bool         `json:"ok"`
	Message  string       `json:"message,omitempty"`
	Navigate string       `json:"navigate,omitempty"`
	State    SessionState `json:"state"`
	Err      error        `json:"-"`
}
