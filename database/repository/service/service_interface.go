package serviceRepo

import (
	"context"

	"taskhive/models"
)

// RecommendationQuery bounds the recommended-services aggregation.
type RecommendationQuery struct {
	MinAverage float64
	MinReviews int
	Limit      int
}

// ServiceRepository defines persistence operations for catalogue services.
type ServiceRepository interface {
	Create(ctx context.Context, svc *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error)
	ListAll(ctx context.Context) ([]models.Service, error)
	Update(ctx context.Context, svc *models.Service) error
	Delete(ctx context.Context, id string) error
	UpdateRating(ctx context.Context, id string, average float64, count int) error
	Recommended(ctx context.Context, q RecommendationQuery) ([]models.Service, error)
}
