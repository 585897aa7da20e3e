package review

import (
	"context"
	"errors"
	"math"
	"strings"

	"taskhive/database/repository"
	bookingRepo "taskhive/database/repository/booking"
	reviewRepo "taskhive/database/repository/review"
	serviceRepo "taskhive/database/repository/service"
	"taskhive/models"
	"taskhive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	recommendMinAverage = 4
	recommendMinReviews = 5
	recommendLimit      = 10
)

var sortableFields = map[string]bool{"createdAt": true, "rating": true, "helpfulVotes": true}

// DefaultReviewService is the production ReviewService.
type DefaultReviewService struct {
	Reviews     reviewRepo.ReviewRepository
	Bookings    bookingRepo.BookingRepository
	Services    serviceRepo.ServiceRepository
	Cache       RecommendationCache
	AutoApprove bool
	Logger      *zap.Logger
}

// Create stores the customer's review of a completed booking and refreshes
// the service rating. The unique bookingId index rejects second reviews.
func (s *DefaultReviewService) Create(ctx context.Context, actor models.Actor, bookingID string, req models.CreateReviewRequest) (*models.Review, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("booking")
	}
	if err != nil {
		return nil, utils.Internal("failed to load booking", err)
	}
	if actor.ID != b.CustomerID {
		return nil, utils.Forbidden("only the booking's customer can review it")
	}
	if b.Status != models.BookingCompleted {
		return nil, utils.Validation("can only review completed bookings", map[string]any{"status": b.Status})
	}

	req.Review = strings.TrimSpace(req.Review)
	if err := utils.ValidateStruct(&req); err != nil {
		return nil, err
	}

	status := models.ReviewPending
	if s.AutoApprove {
		status = models.ReviewApproved
	}
	images := req.Images
	if images == nil {
		images = []string{}
	}
	rev := &models.Review{
		ID:         uuid.New().String(),
		ServiceID:  b.ServiceID,
		CustomerID: b.CustomerID,
		ProviderID: b.ProviderID,
		BookingID:  b.ID,
		Rating:     req.Rating,
		Text:       req.Review,
		Images:     images,
		Status:     status,
	}
	if err := s.Reviews.Create(ctx, rev); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Conflict("review already exists for this booking")
		}
		return nil, utils.Internal("failed to create review", err)
	}

	s.Logger.Info("review created",
		zap.String("reviewId", rev.ID),
		zap.String("serviceId", rev.ServiceID),
		zap.Int("rating", rev.Rating),
		zap.String("status", string(rev.Status)))
	s.refreshRating(ctx, rev.ServiceID)
	return rev, nil
}

// ListByService pages through a service's approved reviews. sort names one
// of createdAt, rating or helpfulVotes, with a leading "-" for descending.
func (s *DefaultReviewService) ListByService(ctx context.Context, serviceID string, page, limit int, sort string) (*models.ReviewPage, error) {
	field, desc, err := parseSort(sort)
	if err != nil {
		return nil, err
	}
	page, limit = normalizePaging(page, limit)
	return s.list(ctx, reviewRepo.Query{
		ServiceID:  serviceID,
		Page:       page,
		Limit:      limit,
		SortField:  field,
		Descending: desc,
	})
}

// ListByProvider pages through a provider's approved reviews, newest first,
// each carrying the reviewed service's name and category.
func (s *DefaultReviewService) ListByProvider(ctx context.Context, providerID string, page, limit int) (*models.ReviewPage, error) {
	page, limit = normalizePaging(page, limit)
	return s.list(ctx, reviewRepo.Query{
		ProviderID:  providerID,
		Page:        page,
		Limit:       limit,
		SortField:   "createdAt",
		Descending:  true,
		WithService: true,
	})
}

func (s *DefaultReviewService) list(ctx context.Context, q reviewRepo.Query) (*models.ReviewPage, error) {
	reviews, total, err := s.Reviews.List(ctx, q)
	if err != nil {
		return nil, utils.Internal("failed to list reviews", err)
	}
	if reviews == nil {
		reviews = []models.ReviewWithService{}
	}
	return &models.ReviewPage{
		Reviews:     reviews,
		TotalPages:  int(math.Ceil(float64(total) / float64(q.Limit))),
		CurrentPage: q.Page,
	}, nil
}

// Recommended returns the best rated active services, served from cache
// when possible.
func (s *DefaultReviewService) Recommended(ctx context.Context) ([]models.Service, error) {
	cached, ok, err := s.Cache.Get(ctx)
	if err != nil {
		s.Logger.Warn("recommendation cache read failed", zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	services, err := s.Services.Recommended(ctx, serviceRepo.RecommendationQuery{
		MinAverage: recommendMinAverage,
		MinReviews: recommendMinReviews,
		Limit:      recommendLimit,
	})
	if err != nil {
		return nil, utils.Internal("failed to compute recommendations", err)
	}
	if services == nil {
		services = []models.Service{}
	}
	if err := s.Cache.Set(ctx, services); err != nil {
		s.Logger.Warn("recommendation cache write failed", zap.Error(err))
	}
	return services, nil
}

func (s *DefaultReviewService) MarkHelpful(ctx context.Context, reviewID string) (*models.Review, error) {
	rev, err := s.Reviews.IncrementHelpful(ctx, reviewID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("review")
	}
	if err != nil {
		return nil, utils.Internal("failed to record vote", err)
	}
	return rev, nil
}

// Moderate approves or rejects a review and refreshes the service rating.
func (s *DefaultReviewService) Moderate(ctx context.Context, actor models.Actor, reviewID string, status models.ReviewStatus) (*models.Review, error) {
	if !actor.IsAdmin() {
		return nil, utils.Forbidden("only admins can moderate reviews")
	}
	if status != models.ReviewApproved && status != models.ReviewRejected {
		return nil, utils.Validation("status must be approved or rejected", map[string]any{"status": status})
	}
	rev, err := s.Reviews.SetStatus(ctx, reviewID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("review")
	}
	if err != nil {
		return nil, utils.Internal("failed to moderate review", err)
	}

	s.Logger.Info("review moderated", zap.String("reviewId", rev.ID), zap.String("status", string(status)), zap.String("by", actor.ID))
	s.refreshRating(ctx, rev.ServiceID)
	return rev, nil
}

// refreshRating recomputes the service's denormalised rating from its
// approved reviews. Failures are logged; the review write stands.
func (s *DefaultReviewService) refreshRating(ctx context.Context, serviceID string) {
	stats, err := s.Reviews.RatingStats(ctx, serviceID)
	if err != nil {
		s.Logger.Error("failed to compute service rating", zap.String("serviceId", serviceID), zap.Error(err))
		return
	}
	if err := s.Services.UpdateRating(ctx, serviceID, stats.Average, stats.Count); err != nil {
		s.Logger.Error("failed to update service rating", zap.String("serviceId", serviceID), zap.Error(err))
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.Logger.Warn("recommendation cache invalidation failed", zap.Error(err))
	}
}

func parseSort(sort string) (field string, desc bool, err error) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return "createdAt", true, nil
	}
	if strings.HasPrefix(sort, "-") {
		desc = true
		sort = sort[1:]
	}
	if !sortableFields[sort] {
		return "", false, utils.Validation("unsupported sort field", map[string]any{"sort": sort})
	}
	return sort, desc, nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
