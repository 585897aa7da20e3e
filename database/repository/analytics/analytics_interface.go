package analyticsRepo

import (
	"context"
	"time"

	"taskhive/models"
)

// AnalyticsRepository stores one snapshot per calendar day.
type AnalyticsRepository interface {
	// Upsert replaces the snapshot for doc.Date.
	Upsert(ctx context.Context, doc *models.Analytics) error
	GetByDate(ctx context.Context, day time.Time) (*models.Analytics, error)
	// Range returns snapshots within the optional bounds, newest first.
	Range(ctx context.Context, start, end *time.Time) ([]models.Analytics, error)
}
