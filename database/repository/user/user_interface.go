package userRepo

import (
	"context"
	"time"

	"taskhive/models"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	// Create returns repository.ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
	CountCreatedBetween(ctx context.Context, role models.Role, start, end time.Time) (int64, error)
}
