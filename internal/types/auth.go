package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuth is the credential view of a user row.
type UserAuth struct {
	ID           string    `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"` // Unique identifier (UUID).
	Email        *string   `json:"email,omitempty" example:"jane@example.com"`        // Optional when a phone is given.
	Phone        *string   `json:"phone,omitempty" example:"+919999999999"`           // Optional when an email is given.
	PasswordHash string    `json:"-"`                                                 // bcrypt hash, never exposed.
	CreatedAt    time.Time `json:"created_at"`
}

// SignupRequest and LoginRequest need at least one of email or phone.
type SignupRequest struct {
	Email    string `json:"email,omitempty" example:"jane@example.com"`
	Phone    string `json:"phone,omitempty" example:"+919999999999"`
	Password string `json:"password" example:"s3cret-pass"`
}

type LoginRequest struct {
	Email    string `json:"email,omitempty" example:"jane@example.com"`
	Phone    string `json:"phone,omitempty" example:"+919999999999"`
	Password string `json:"password" example:"s3cret-pass"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"bearer"`
}

// Claims carries the user id both as subject and as an explicit claim.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
