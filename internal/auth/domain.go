package auth

import "time"

// User represents an account that owns farm records.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	DeviceToken  string    `json:"deviceToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest creates an account. Email and phone are both required.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"required,min=6,max=20"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DeviceToken string `json:"deviceToken" validate:"max=512"`
}

// LoginRequest identifies the account by email or phone; one of them is
// required.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=20"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the bearer token issued on login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
