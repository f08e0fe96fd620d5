package models

// Profile is the account profile of the signed-in user.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileUpdate changes the email and optionally the password.
type ProfileUpdate struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}
