package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/db/models"
)

// RegisterInput is the account signup payload.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
}

// VerifyOTPInput carries the emailed verification code back to us.
type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=4,max=10"`
}

// LoginInput is the credential payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResendOTPInput requests a fresh verification code.
type ResendOTPInput struct {
	Email string `json:"email" validate:"required,email"`
}

// UserDTO is the client-facing account shape. The password hash never leaves
// the service layer.
type UserDTO struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionDTO is the login response: a bearer token plus the account it grants.
type SessionDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

func toUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       string(user.Role),
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}
}
