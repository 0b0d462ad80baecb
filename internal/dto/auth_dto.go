package dto

import (
	"time"

	"github.com/aulamax/aulamax-api/internal/models"
)

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Name     string                 `json:"name" validate:"required,min=2,max=255"`
	Email    string                 `json:"email" validate:"required,email"`
	Password string                 `json:"password" validate:"required,min=8"`
	Role     string                 `json:"role" validate:"required,oneof=admin professor associate_teacher student"`
	Profile  map[string]interface{} `json:"profile"`
}

// LoginRequest is the payload for credential exchange.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse serializes an account without credentials.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Role:      string(model.Role),
		CreatedAt: model.CreatedAt,
	}
}
