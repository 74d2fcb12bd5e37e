// internal/auth/models.go
// Data structures for the authentication system.

package auth

import (
    "time"
)

// User represents an account in the system
// Tags like `json` control JSON serialization, `db` maps to database columns
type User struct {
    ID           int64     `json:"id" db:"id"`
    Email        string    `json:"email" db:"email"`
    Username     string    `json:"username" db:"username"`
    PasswordHash string    `json:"-" db:"password_hash"`
    DisplayName  *string   `json:"display_name" db:"display_name"`
    Gender       *string   `json:"gender" db:"gender"`
    BirthDate    *time.Time `json:"birth_date" db:"birth_date"`
    IsVerified   bool      `json:"is_verified" db:"is_verified"`
    IsAdmin      bool      `json:"is_admin" db:"is_admin"`
    IsBanned     bool      `json:"-" db:"is_banned"`
    CreatedAt    time.Time `json:"created_at" db:"created_at"`
    UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SignupRequest is what the client sends to create an account
// Validation tags ensure data quality at the API boundary
type SignupRequest struct {
    Email           string `json:"email" validate:"required,email"`
    Username        string `json:"username" validate:"required,min=3,max=30,alphanum"`
    Password        string `json:"password" validate:"required,min=8,max=100"`
    ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest handles email login
type LoginRequest struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest to get a new access token
type RefreshTokenRequest struct {
    RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is what we send back after successful authentication
type AuthResponse struct {
    User         *User  `json:"user"`
    AccessToken  string `json:"access_token"`
    RefreshToken string `json:"refresh_token"`
    ExpiresIn    int    `json:"expires_in"`
    TokenType    string `json:"token_type"`
}
