package analytics

import (
	"context"
	"time"

	"taskhive/models"
)

// AnalyticsService produces and serves the daily marketplace snapshots.
type AnalyticsService interface {
	// Rollup computes and stores the snapshot for the calendar day containing day.
	Rollup(ctx context.Context, day time.Time) (*models.Analytics, error)
	// RollupNow rolls up the current day.
	RollupNow(ctx context.Context) (*models.Analytics, error)
	// RollupPreviousDay rolls up the day that ended at the last midnight.
	RollupPreviousDay(ctx context.Context) (*models.Analytics, error)
	Dashboard(ctx context.Context) (*models.DashboardSummary, error)
	Range(ctx context.Context, start, end *time.Time) ([]models.Analytics, error)
}
