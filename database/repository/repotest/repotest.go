// Package repotest provides in-memory repositories for service and handler tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskhive/database/repository"
	analyticsRepo "taskhive/database/repository/analytics"
	bookingRepo "taskhive/database/repository/booking"
	reviewRepo "taskhive/database/repository/review"
	serviceRepo "taskhive/database/repository/service"
	userRepo "taskhive/database/repository/user"
	"taskhive/models"
)

// Store backs every fake repository with shared maps so joins behave like the
// Mongo aggregations.
type Store struct {
	mu        sync.Mutex
	Services  map[string]*models.Service
	Bookings  map[string]*models.Booking
	Reviews   map[string]*models.Review
	Analytics map[time.Time]*models.Analytics
	Users     map[string]*models.User

	// Err, when set, is returned by every repository call.
	Err error
}

func NewStore() *Store {
	return &Store{
		Services:  map[string]*models.Service{},
		Bookings:  map[string]*models.Booking{},
		Reviews:   map[string]*models.Review{},
		Analytics: map[time.Time]*models.Analytics{},
		Users:     map[string]*models.User{},
	}
}

func (s *Store) ServiceRepo() serviceRepo.ServiceRepository       { return &services{s} }
func (s *Store) BookingRepo() bookingRepo.BookingRepository       { return &bookings{s} }
func (s *Store) ReviewRepo() reviewRepo.ReviewRepository          { return &reviews{s} }
func (s *Store) AnalyticsRepo() analyticsRepo.AnalyticsRepository { return &analytics{s} }
func (s *Store) UserRepo() userRepo.UserRepository                { return &users{s} }

// PutService stores a copy of svc.
func (s *Store) PutService(svc models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Services[svc.ID] = &svc
}

// PutBooking stores a copy of b.
func (s *Store) PutBooking(b models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Bookings[b.ID] = &b
}

// PutReview stores a copy of r.
func (s *Store) PutReview(r models.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reviews[r.ID] = &r
}

// PutUser stores a copy of u.
func (s *Store) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users[u.ID] = &u
}

// Booking returns a copy of the stored booking.
func (s *Store) Booking(id string) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.Bookings[id]
}

// Service returns a copy of the stored service.
func (s *Store) Service(id string) models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.Services[id]
}

func notFound(kind, id string) error {
	return fmt.Errorf("fetch %s %s: %w", kind, id, repository.ErrNotFound)
}

// --- services ---

type services struct{ s *Store }

func (r *services) Create(_ context.Context, svc *models.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	now := time.Now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	cp := *svc
	r.s.Services[svc.ID] = &cp
	return nil
}

func (r *services) GetByID(_ context.Context, id string) (*models.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	svc, ok := r.s.Services[id]
	if !ok {
		return nil, notFound("service", id)
	}
	cp := *svc
	return &cp, nil
}

func (r *services) List(_ context.Context, f models.ServiceFilter) ([]models.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []models.Service{}
	for _, svc := range r.s.Services {
		if f.Category != "" && svc.Category != f.Category {
			continue
		}
		if f.Status != "" && svc.Status != f.Status {
			continue
		}
		if f.ProviderID != "" && svc.ProviderID != f.ProviderID {
			continue
		}
		out = append(out, *svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *services) ListAll(ctx context.Context) ([]models.Service, error) {
	return r.List(ctx, models.ServiceFilter{})
}

func (r *services) Update(_ context.Context, svc *models.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.Services[svc.ID]; !ok {
		return notFound("service", svc.ID)
	}
	cp := *svc
	r.s.Services[svc.ID] = &cp
	return nil
}

func (r *services) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Services[id]; !ok {
		return notFound("service", id)
	}
	delete(r.s.Services, id)
	return nil
}

func (r *services) UpdateRating(_ context.Context, id string, average float64, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	svc, ok := r.s.Services[id]
	if !ok {
		return notFound("service", id)
	}
	svc.AverageRating = average
	svc.ReviewCount = count
	return nil
}

func (r *services) Recommended(_ context.Context, q serviceRepo.RecommendationQuery) ([]models.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []models.Service{}
	for _, svc := range r.s.Services {
		if svc.Status != models.ServiceActive {
			continue
		}
		sum, n := 0, 0
		for _, rev := range r.s.Reviews {
			if rev.ServiceID == svc.ID && rev.Status == models.ReviewApproved {
				sum += rev.Rating
				n++
			}
		}
		if n == 0 {
			continue
		}
		avg := float64(sum) / float64(n)
		if avg < q.MinAverage || n < q.MinReviews {
			continue
		}
		cp := *svc
		cp.AverageRating, cp.ReviewCount = avg, n
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageRating != out[j].AverageRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		return out[i].ReviewCount > out[j].ReviewCount
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// --- bookings ---

type bookings struct{ s *Store }

func (r *bookings) Create(_ context.Context, b *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.s.Bookings[b.ID] = &cp
	return nil
}

func (r *bookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	b, ok := r.s.Bookings[id]
	if !ok {
		return nil, notFound("booking", id)
	}
	cp := *b
	return &cp, nil
}

func (r *bookings) GetWithService(_ context.Context, id string) (*models.BookingWithService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	b, ok := r.s.Bookings[id]
	if !ok {
		return nil, notFound("booking", id)
	}
	out := r.join(*b)
	return &out, nil
}

func (r *bookings) join(b models.Booking) models.BookingWithService {
	out := models.BookingWithService{Booking: b}
	if svc, ok := r.s.Services[b.ServiceID]; ok {
		cp := *svc
		out.Service = &cp
	}
	return out
}

func (r *bookings) UpdateStatus(_ context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	b, ok := r.s.Bookings[id]
	if !ok || b.Status != from {
		return nil, fmt.Errorf("update booking %s: %w", id, repository.ErrStale)
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (r *bookings) UpdatePaymentStatus(_ context.Context, id string, from, to models.PaymentStatus) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	b, ok := r.s.Bookings[id]
	if !ok || b.PaymentStatus != from {
		return nil, fmt.Errorf("update booking %s: %w", id, repository.ErrStale)
	}
	b.PaymentStatus = to
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (r *bookings) SetPaymentIntent(_ context.Context, id, intentID string, amount int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	b, ok := r.s.Bookings[id]
	if !ok {
		return notFound("booking", id)
	}
	b.PaymentIntentID = intentID
	b.PaymentAmount = amount
	return nil
}

func (r *bookings) ListByParticipant(_ context.Context, who bookingRepo.Participant, userID string) ([]models.BookingWithService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []models.BookingWithService{}
	for _, b := range r.s.Bookings {
		if (who == bookingRepo.AsCustomer && b.CustomerID == userID) ||
			(who == bookingRepo.AsProvider && b.ProviderID == userID) {
			out = append(out, r.join(*b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *bookings) ListCreatedBetween(_ context.Context, start, end time.Time) ([]models.BookingWithService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []models.BookingWithService{}
	for _, b := range r.s.Bookings {
		if !b.CreatedAt.Before(start) && b.CreatedAt.Before(end) {
			out = append(out, r.join(*b))
		}
	}
	return out, nil
}

func (r *bookings) TopServicesByRevenue(_ context.Context, limit int) ([]models.TopService, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	byService := map[string]*models.TopService{}
	for _, b := range r.s.Bookings {
		svc, ok := r.s.Services[b.ServiceID]
		if !ok {
			continue
		}
		t, ok := byService[svc.ID]
		if !ok {
			t = &models.TopService{ServiceID: svc.ID, Name: svc.Name}
			byService[svc.ID] = t
		}
		t.Bookings++
		if b.Status == models.BookingCompleted {
			t.Revenue += svc.Price
		}
	}
	out := []models.TopService{}
	for _, t := range byService {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Bookings > out[j].Bookings
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- reviews ---

type reviews struct{ s *Store }

func (r *reviews) Create(_ context.Context, rev *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.Reviews {
		if existing.BookingID == rev.BookingID {
			return fmt.Errorf("create review: %w", repository.ErrDuplicate)
		}
	}
	now := time.Now()
	rev.CreatedAt, rev.UpdatedAt = now, now
	cp := *rev
	r.s.Reviews[rev.ID] = &cp
	return nil
}

func (r *reviews) GetByID(_ context.Context, id string) (*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rev, ok := r.s.Reviews[id]
	if !ok {
		return nil, notFound("review", id)
	}
	cp := *rev
	return &cp, nil
}

func (r *reviews) List(_ context.Context, q reviewRepo.Query) ([]models.ReviewWithService, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var matched []models.Review
	for _, rev := range r.s.Reviews {
		if rev.Status != models.ReviewApproved {
			continue
		}
		if q.ServiceID != "" && rev.ServiceID != q.ServiceID {
			continue
		}
		if q.ProviderID != "" && rev.ProviderID != q.ProviderID {
			continue
		}
		matched = append(matched, *rev)
	}
	sort.Slice(matched, func(i, j int) bool {
		less := lessBy(q.SortField, matched[i], matched[j])
		if q.Descending {
			return lessBy(q.SortField, matched[j], matched[i])
		}
		return less
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := []models.ReviewWithService{}
	for _, rev := range matched[start:end] {
		item := models.ReviewWithService{Review: rev}
		if q.WithService {
			if svc, ok := r.s.Services[rev.ServiceID]; ok {
				item.Service = &models.ServiceSummary{ID: svc.ID, Name: svc.Name, Category: svc.Category}
			}
		}
		out = append(out, item)
	}
	return out, total, nil
}

func lessBy(field string, a, b models.Review) bool {
	switch field {
	case "rating":
		return a.Rating < b.Rating
	case "helpfulVotes":
		return a.HelpfulVotes < b.HelpfulVotes
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (r *reviews) IncrementHelpful(_ context.Context, id string) (*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rev, ok := r.s.Reviews[id]
	if !ok {
		return nil, notFound("review", id)
	}
	rev.HelpfulVotes++
	cp := *rev
	return &cp, nil
}

func (r *reviews) SetStatus(_ context.Context, id string, status models.ReviewStatus) (*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rev, ok := r.s.Reviews[id]
	if !ok {
		return nil, notFound("review", id)
	}
	rev.Status = status
	cp := *rev
	return &cp, nil
}

func (r *reviews) RatingStats(_ context.Context, serviceID string) (reviewRepo.RatingStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return reviewRepo.RatingStats{}, r.s.Err
	}
	sum, n := 0, 0
	for _, rev := range r.s.Reviews {
		if rev.ServiceID == serviceID && rev.Status == models.ReviewApproved {
			sum += rev.Rating
			n++
		}
	}
	if n == 0 {
		return reviewRepo.RatingStats{}, nil
	}
	return reviewRepo.RatingStats{Average: float64(sum) / float64(n), Count: n}, nil
}

// --- analytics ---

type analytics struct{ s *Store }

func (r *analytics) Upsert(_ context.Context, doc *models.Analytics) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	now := time.Now()
	if existing, ok := r.s.Analytics[doc.Date]; ok {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	} else {
		doc.ID = fmt.Sprintf("analytics-%s", doc.Date.Format("2006-01-02"))
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	cp := *doc
	r.s.Analytics[doc.Date] = &cp
	return nil
}

func (r *analytics) GetByDate(_ context.Context, day time.Time) (*models.Analytics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	doc, ok := r.s.Analytics[day]
	if !ok {
		return nil, notFound("analytics", day.Format("2006-01-02"))
	}
	cp := *doc
	return &cp, nil
}

func (r *analytics) Range(_ context.Context, start, end *time.Time) ([]models.Analytics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []models.Analytics{}
	for _, doc := range r.s.Analytics {
		if start != nil && doc.Date.Before(*start) {
			continue
		}
		if end != nil && doc.Date.After(*end) {
			continue
		}
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// --- users ---

type users struct{ s *Store }

func (r *users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.Users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", repository.ErrDuplicate)
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.s.Users[u.ID] = &cp
	return nil
}

func (r *users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.Users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user", email)
}

func (r *users) UpdateFCMToken(_ context.Context, id, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.Users[id]
	if !ok {
		return notFound("user", id)
	}
	u.FCMToken = token
	return nil
}

func (r *users) CountCreatedBetween(_ context.Context, role models.Role, start, end time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var n int64
	for _, u := range r.s.Users {
		if u.Role == role && !u.CreatedAt.Before(start) && u.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}
