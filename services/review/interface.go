package review

import (
	"context"

	"taskhive/models"
)

// ReviewService manages reviews and the ratings derived from them.
type ReviewService interface {
	Create(ctx context.Context, actor models.Actor, bookingID string, req models.CreateReviewRequest) (*models.Review, error)
	ListByService(ctx context.Context, serviceID string, page, limit int, sort string) (*models.ReviewPage, error)
	ListByProvider(ctx context.Context, providerID string, page, limit int) (*models.ReviewPage, error)
	Recommended(ctx context.Context) ([]models.Service, error)
	MarkHelpful(ctx context.Context, reviewID string) (*models.Review, error)
	Moderate(ctx context.Context, actor models.Actor, reviewID string, status models.ReviewStatus) (*models.Review, error)
}
