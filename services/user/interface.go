package user

import (
	"context"

	"taskhive/models"
)

// UserService manages accounts and bearer-token sessions.
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to its caller, rejecting revoked tokens.
	Authenticate(ctx context.Context, token string) (models.Actor, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
}
