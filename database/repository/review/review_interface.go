package reviewRepo

import (
	"context"

	"taskhive/models"
)

// Query selects one page of approved reviews for a service or a provider.
type Query struct {
	ServiceID  string
	ProviderID string
	Page       int
	Limit      int
	SortField  string
	Descending bool
	// WithService joins the reviewed service's name and category.
	WithService bool
}

// RatingStats summarises the approved reviews of one service.
type RatingStats struct {
	Average float64
	Count   int
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	// Create returns repository.ErrDuplicate when the booking already has a review.
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (*models.Review, error)
	List(ctx context.Context, q Query) ([]models.ReviewWithService, int64, error)
	IncrementHelpful(ctx context.Context, id string) (*models.Review, error)
	SetStatus(ctx context.Context, id string, status models.ReviewStatus) (*models.Review, error)
	RatingStats(ctx context.Context, serviceID string) (RatingStats, error)
}
