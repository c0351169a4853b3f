package auth

import (
	"context"

	"github.com/curiohub/curiohub/internal/models"
)

// AuthServiceInterface is the contract the HTTP layer depends on.
type AuthServiceInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GenerateToken(user *models.User) (*AuthResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) (*models.PasswordReset, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

var _ AuthServiceInterface = (*Service)(nil)
