package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"taskhive/database/repository"
	serviceRepo "taskhive/database/repository/service"
	"taskhive/models"
	"taskhive/utils"

	"go.uber.org/zap"
)

type mockServiceRepo struct {
	services  map[string]*models.Service
	createErr error
	updateErr error
	lastList  models.ServiceFilter
}

func newMockServiceRepo() *mockServiceRepo {
	return &mockServiceRepo{services: map[string]*models.Service{}}
}

func (m *mockServiceRepo) Create(_ context.Context, svc *models.Service) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *svc
	m.services[svc.ID] = &cp
	return nil
}

func (m *mockServiceRepo) GetByID(_ context.Context, id string) (*models.Service, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, fmt.Errorf("fetch service %s: %w", id, repository.ErrNotFound)
	}
	cp := *svc
	return &cp, nil
}

func (m *mockServiceRepo) List(_ context.Context, f models.ServiceFilter) ([]models.Service, error) {
	m.lastList = f
	var out []models.Service
	for _, s := range m.services {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockServiceRepo) ListAll(ctx context.Context) ([]models.Service, error) {
	return m.List(ctx, models.ServiceFilter{})
}

func (m *mockServiceRepo) Update(_ context.Context, svc *models.Service) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.services[svc.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *svc
	m.services[svc.ID] = &cp
	return nil
}

func (m *mockServiceRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.services, id)
	return nil
}

func (m *mockServiceRepo) UpdateRating(context.Context, string, float64, int) error { return nil }

func (m *mockServiceRepo) Recommended(context.Context, serviceRepo.RecommendationQuery) ([]models.Service, error) {
	return nil, nil
}

type mockImageStore struct {
	uploaded []string
	deleted  []string
	failAt   int
}

func (m *mockImageStore) Upload(_ context.Context, r io.Reader) (string, error) {
	if m.failAt > 0 && len(m.uploaded)+1 == m.failAt {
		return "", errors.New("cloudinary unavailable")
	}
	b, _ := io.ReadAll(r)
	url := "https://res.cloudinary.com/demo/image/upload/v1/services/" + string(b) + ".jpg"
	m.uploaded = append(m.uploaded, url)
	return url, nil
}

func (m *mockImageStore) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

func validInput() models.ServiceInput {
	return models.ServiceInput{
		Name:        "Deep Clean",
		Description: "Whole home cleaning",
		Category:    "Cleaning",
		Price:       80,
		Duration:    120,
		Location:    models.GeoLocation{Coordinates: []float64{36.8, -1.28}, Address: "Nairobi"},
		Availability: []models.DayAvailability{
			{Day: "Monday", Slots: []models.TimeSlot{{Start: "09:00", End: "17:00"}}},
		},
		Tags: []string{"Eco"},
	}
}

func newService() (*DefaultCatalogService, *mockServiceRepo, *mockImageStore) {
	repo := newMockServiceRepo()
	images := &mockImageStore{}
	return &DefaultCatalogService{Repo: repo, Images: images, Logger: zap.NewNop()}, repo, images
}

var provider = models.Actor{ID: "prov-1", Role: models.RoleProvider}

func TestCreateService(t *testing.T) {
	svc, repo, images := newService()

	created, err := svc.Create(context.Background(), provider, validInput(), []io.Reader{strings.NewReader("a"), strings.NewReader("b")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != models.ServiceActive {
		t.Errorf("status = %q, want active", created.Status)
	}
	if created.ProviderID != provider.ID {
		t.Errorf("providerId = %q", created.ProviderID)
	}
	if created.Location.Type != "Point" {
		t.Errorf("location type = %q", created.Location.Type)
	}
	if len(created.Images) != 2 || len(images.uploaded) != 2 {
		t.Errorf("expected 2 uploaded images, got %v", created.Images)
	}
	if len(created.SearchKeywords) == 0 || created.SearchKeywords[0] != "deep" {
		t.Errorf("keywords not derived: %v", created.SearchKeywords)
	}
	if _, ok := repo.services[created.ID]; !ok {
		t.Error("service not persisted")
	}
}

func TestCreateServiceValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ServiceInput)
		field  string
	}{
		{"missing name", func(in *models.ServiceInput) { in.Name = "" }, "name"},
		{"negative price", func(in *models.ServiceInput) { in.Price = -1 }, "price"},
		{"short duration", func(in *models.ServiceInput) { in.Duration = 10 }, "duration"},
		{"bad coordinates", func(in *models.ServiceInput) { in.Location.Coordinates = []float64{1} }, "location.coordinates"},
		{"bad day", func(in *models.ServiceInput) { in.Availability[0].Day = "Funday" }, "availability[0].day"},
		{"bad status", func(in *models.ServiceInput) { in.Status = "archived" }, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService()
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), provider, in, nil)
			appErr := utils.AsAppError(err)
			if appErr.Code != utils.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := appErr.Details[tt.field]; !ok {
				t.Errorf("expected details for %q, got %v", tt.field, appErr.Details)
			}
			if len(repo.services) != 0 {
				t.Error("invalid service must not be persisted")
			}
		})
	}
}

func TestCreateServiceRequiresProvider(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.Create(context.Background(), models.Actor{ID: "c1", Role: models.RoleCustomer}, validInput(), nil)
	if !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateServiceUploadFailureCleansUp(t *testing.T) {
	svc, repo, images := newService()
	images.failAt = 2

	_, err := svc.Create(context.Background(), provider, validInput(), []io.Reader{strings.NewReader("a"), strings.NewReader("b")})
	if !utils.IsCode(err, utils.CodeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(images.deleted) != 1 {
		t.Errorf("expected the first upload to be removed, deleted=%v", images.deleted)
	}
	if len(repo.services) != 0 {
		t.Error("service must not be persisted")
	}
}

func TestPersistFailureRemovesUploads(t *testing.T) {
	tests := []struct {
		name string
		run  func(*DefaultCatalogService, *mockServiceRepo) error
	}{
		{
			name: "create",
			run: func(svc *DefaultCatalogService, repo *mockServiceRepo) error {
				repo.createErr = errors.New("mongo unavailable")
				_, err := svc.Create(context.Background(), provider, validInput(), []io.Reader{strings.NewReader("a"), strings.NewReader("b")})
				return err
			},
		},
		{
			name: "update",
			run: func(svc *DefaultCatalogService, repo *mockServiceRepo) error {
				created, err := svc.Create(context.Background(), provider, validInput(), nil)
				if err != nil {
					return err
				}
				repo.updateErr = errors.New("mongo unavailable")
				_, err = svc.Update(context.Background(), provider, created.ID, models.ServiceUpdate{}, []io.Reader{strings.NewReader("a"), strings.NewReader("b")})
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, images := newService()

			err := tt.run(svc, repo)
			if !utils.IsCode(err, utils.CodeInternal) {
				t.Fatalf("expected internal error, got %v", err)
			}
			if len(images.uploaded) != 2 || len(images.deleted) != 2 {
				t.Errorf("uploads not removed: uploaded=%v deleted=%v", images.uploaded, images.deleted)
			}
		})
	}
}

func TestUpdateService(t *testing.T) {
	svc, repo, images := newService()
	created, _ := svc.Create(context.Background(), provider, validInput(), []io.Reader{strings.NewReader("old")})

	newName := "Spring Clean"
	updated, err := svc.Update(context.Background(), provider, created.ID, models.ServiceUpdate{Name: &newName}, []io.Reader{strings.NewReader("new")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != newName || repo.services[created.ID].Name != newName {
		t.Errorf("name not updated")
	}
	if updated.SearchKeywords[0] != "spring" {
		t.Errorf("keywords not recomputed: %v", updated.SearchKeywords)
	}
	if len(updated.Images) != 1 || !strings.Contains(updated.Images[0], "new") {
		t.Errorf("images not replaced: %v", updated.Images)
	}
	if len(images.deleted) != 1 || !strings.Contains(images.deleted[0], "old") {
		t.Errorf("old image not cleaned up: %v", images.deleted)
	}
}

func TestUpdateServiceKeepsImagesWhenNoneSupplied(t *testing.T) {
	svc, _, _ := newService()
	created, _ := svc.Create(context.Background(), provider, validInput(), []io.Reader{strings.NewReader("keep")})

	price := 99.0
	updated, err := svc.Update(context.Background(), provider, created.ID, models.ServiceUpdate{Price: &price}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Images) != 1 {
		t.Errorf("images should be kept, got %v", updated.Images)
	}
}

func TestUpdateServiceErrors(t *testing.T) {
	svc, _, _ := newService()
	created, _ := svc.Create(context.Background(), provider, validInput(), nil)

	_, err := svc.Update(context.Background(), provider, "missing", models.ServiceUpdate{}, nil)
	if !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	other := models.Actor{ID: "prov-2", Role: models.RoleProvider}
	_, err = svc.Update(context.Background(), other, created.ID, models.ServiceUpdate{}, nil)
	if !utils.IsCode(err, utils.CodeForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	bad := -5.0
	_, err = svc.Update(context.Background(), provider, created.ID, models.ServiceUpdate{Price: &bad}, nil)
	if !utils.IsCode(err, utils.CodeValidation) {
		t.Errorf("expected validation, got %v", err)
	}
}

func TestDeleteService(t *testing.T) {
	svc, repo, images := newService()
	created, _ := svc.Create(context.Background(), provider, validInput(), []io.Reader{strings.NewReader("x")})

	if err := svc.Delete(context.Background(), models.Actor{ID: "prov-2", Role: models.RoleProvider}, created.ID); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), provider, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.services) != 0 {
		t.Error("service not removed")
	}
	if len(images.deleted) != 1 {
		t.Errorf("images not cleaned up: %v", images.deleted)
	}
	if err := svc.Delete(context.Background(), provider, created.ID); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestListServiceFilters(t *testing.T) {
	svc, repo, _ := newService()
	lat := -1.28

	if _, err := svc.List(context.Background(), models.ServiceFilter{Query: "clean", Lat: &lat, Lng: &lat}); !utils.IsCode(err, utils.CodeValidation) {
		t.Errorf("expected validation for text+geo, got %v", err)
	}
	if _, err := svc.List(context.Background(), models.ServiceFilter{Lat: &lat}); !utils.IsCode(err, utils.CodeValidation) {
		t.Errorf("expected validation for half a coordinate, got %v", err)
	}
	if _, err := svc.List(context.Background(), models.ServiceFilter{Category: "Cleaning"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastList.Category != "Cleaning" {
		t.Errorf("filter not forwarded: %+v", repo.lastList)
	}
}
