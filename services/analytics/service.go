package analytics

import (
	"context"
	"errors"
	"time"

	"taskhive/database/repository"
	analyticsRepo "taskhive/database/repository/analytics"
	bookingRepo "taskhive/database/repository/booking"
	serviceRepo "taskhive/database/repository/service"
	userRepo "taskhive/database/repository/user"
	"taskhive/models"
	"taskhive/utils"

	"go.uber.org/zap"
)

const (
	trendDays       = 7
	topServiceCount = 5
)

// DefaultAnalyticsService is the production AnalyticsService.
type DefaultAnalyticsService struct {
	Analytics analyticsRepo.AnalyticsRepository
	Bookings  bookingRepo.BookingRepository
	Services  serviceRepo.ServiceRepository
	Users     userRepo.UserRepository
	Logger    *zap.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultAnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *DefaultAnalyticsService) Rollup(ctx context.Context, day time.Time) (*models.Analytics, error) {
	start := StartOfDay(day)
	end := start.AddDate(0, 0, 1)

	bookings, err := s.Bookings.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, utils.Internal("failed to load bookings", err)
	}
	services, err := s.Services.ListAll(ctx)
	if err != nil {
		return nil, utils.Internal("failed to load services", err)
	}
	newProviders, err := s.Users.CountCreatedBetween(ctx, models.RoleProvider, start, end)
	if err != nil {
		return nil, utils.Internal("failed to count new providers", err)
	}
	newCustomers, err := s.Users.CountCreatedBetween(ctx, models.RoleCustomer, start, end)
	if err != nil {
		return nil, utils.Internal("failed to count new customers", err)
	}

	doc := &models.Analytics{
		Date:           start,
		Metrics:        computeMetrics(bookings),
		ServiceMetrics: computeServiceMetrics(bookings, services),
	}
	doc.Metrics.NewRegistrations = models.NewRegistrations{
		Providers: int(newProviders),
		Customers: int(newCustomers),
	}
	if err := s.Analytics.Upsert(ctx, doc); err != nil {
		return nil, utils.Internal("failed to store analytics", err)
	}

	s.Logger.Info("analytics rolled up",
		zap.Time("date", start),
		zap.Int("totalBookings", doc.Metrics.TotalBookings),
		zap.Float64("totalRevenue", doc.Metrics.TotalRevenue))
	return doc, nil
}

func (s *DefaultAnalyticsService) RollupNow(ctx context.Context) (*models.Analytics, error) {
	return s.Rollup(ctx, s.now())
}

func (s *DefaultAnalyticsService) RollupPreviousDay(ctx context.Context) (*models.Analytics, error) {
	return s.Rollup(ctx, StartOfDay(s.now()).AddDate(0, 0, -1))
}

// Dashboard returns today's snapshot, the trends over the last week and
// the services earning the most across all bookings.
func (s *DefaultAnalyticsService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	today := StartOfDay(s.now())

	current, err := s.Analytics.GetByDate(ctx, today)
	if errors.Is(err, repository.ErrNotFound) {
		current = nil
	} else if err != nil {
		return nil, utils.Internal("failed to load today's analytics", err)
	}

	weekStart := today.AddDate(0, 0, -trendDays)
	week, err := s.Analytics.Range(ctx, &weekStart, &today)
	if err != nil {
		return nil, utils.Internal("failed to load weekly analytics", err)
	}
	// Range is newest first; trends read oldest to newest.
	bookings := make([]float64, len(week))
	revenue := make([]float64, len(week))
	for i, doc := range week {
		j := len(week) - 1 - i
		bookings[j] = float64(doc.Metrics.TotalBookings)
		revenue[j] = doc.Metrics.TotalRevenue
	}

	top, err := s.Bookings.TopServicesByRevenue(ctx, topServiceCount)
	if err != nil {
		return nil, utils.Internal("failed to rank services", err)
	}
	if top == nil {
		top = []models.TopService{}
	}

	return &models.DashboardSummary{
		Today: current,
		Trends: models.Trends{
			Bookings: CalculateTrend(bookings),
			Revenue:  CalculateTrend(revenue),
		},
		TopServices: top,
	}, nil
}

func (s *DefaultAnalyticsService) Range(ctx context.Context, start, end *time.Time) ([]models.Analytics, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, utils.Validation("startDate must not be after endDate", map[string]any{
			"startDate": start.Format(time.RFC3339),
			"endDate":   end.Format(time.RFC3339),
		})
	}
	docs, err := s.Analytics.Range(ctx, start, end)
	if err != nil {
		return nil, utils.Internal("failed to load analytics", err)
	}
	if docs == nil {
		docs = []models.Analytics{}
	}
	return docs, nil
}

// CalculateTrend returns the percentage change from the first to the last
// value. A series starting at zero counts as 100% growth once anything
// non-zero follows.
func CalculateTrend(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	first, last := values[0], values[len(values)-1]
	if first == 0 {
		for _, v := range values[1:] {
			if v != 0 {
				return 100
			}
		}
		return 0
	}
	return (last - first) / first * 100
}

func computeMetrics(bookings []models.BookingWithService) models.DailyMetrics {
	var m models.DailyMetrics
	providers := map[string]struct{}{}
	customers := map[string]struct{}{}

	for _, b := range bookings {
		m.TotalBookings++
		switch b.Status {
		case models.BookingCompleted:
			m.CompletedBookings++
			m.TotalRevenue += price(b)
		case models.BookingCancelled:
			m.CancelledBookings++
		}
		providers[b.ProviderID] = struct{}{}
		customers[b.CustomerID] = struct{}{}
	}
	m.ActiveProviders = len(providers)
	m.ActiveCustomers = len(customers)
	return m
}

// computeServiceMetrics reports every service, including those without
// bookings on the day.
func computeServiceMetrics(bookings []models.BookingWithService, services []models.Service) []models.ServiceMetric {
	byService := make(map[string]*models.ServiceMetric, len(services))
	out := make([]models.ServiceMetric, len(services))
	for i, svc := range services {
		out[i] = models.ServiceMetric{ServiceID: svc.ID, ServiceName: svc.Name}
		byService[svc.ID] = &out[i]
	}
	for _, b := range bookings {
		sm, ok := byService[b.ServiceID]
		if !ok {
			continue
		}
		sm.Bookings++
		if b.Status == models.BookingCompleted {
			sm.Revenue += price(b)
		}
	}
	return out
}

func price(b models.BookingWithService) float64 {
	if b.Service == nil {
		return 0
	}
	return b.Service.Price
}
