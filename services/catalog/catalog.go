package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"taskhive/database/repository"
	serviceRepo "taskhive/database/repository/service"
	"taskhive/models"
	"taskhive/services/storage"
	"taskhive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxImages caps the images attached to one service.
const MaxImages = 5

// CatalogService manages the services providers list.
type CatalogService interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error)
	Get(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, actor models.Actor, input models.ServiceInput, images []io.Reader) (*models.Service, error)
	Update(ctx context.Context, actor models.Actor, id string, input models.ServiceUpdate, images []io.Reader) (*models.Service, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// DefaultCatalogService is the production implementation.
type DefaultCatalogService struct {
	Repo   serviceRepo.ServiceRepository
	Images storage.ImageStore
	Logger *zap.Logger
}

func (s *DefaultCatalogService) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	if filter.Query != "" && filter.Lat != nil {
		return nil, utils.Validation("text search cannot be combined with a location filter", nil)
	}
	if (filter.Lat == nil) != (filter.Lng == nil) {
		return nil, utils.Validation("lat and lng must be supplied together", nil)
	}
	services, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, utils.Internal("failed to list services", err)
	}
	return services, nil
}

func (s *DefaultCatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return svc, nil
}

func (s *DefaultCatalogService) Create(ctx context.Context, actor models.Actor, input models.ServiceInput, images []io.Reader) (*models.Service, error) {
	if actor.Role != models.RoleProvider {
		return nil, utils.Forbidden("only providers can list services")
	}

	svc := &models.Service{
		ID:           uuid.New().String(),
		ProviderID:   actor.ID,
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Price:        input.Price,
		Duration:     input.Duration,
		Images:       input.Images,
		Location:     input.Location,
		Availability: input.Availability,
		Tags:         input.Tags,
		Status:       input.Status,
	}
	if svc.Status == "" {
		svc.Status = models.ServiceActive
	}
	normalize(svc)
	if err := utils.ValidateStruct(svc); err != nil {
		return nil, err
	}

	var uploaded []string
	if len(images) > 0 {
		urls, err := s.upload(ctx, images)
		if err != nil {
			return nil, err
		}
		uploaded = urls
		svc.Images = urls
	}
	if len(svc.Images) > MaxImages {
		return nil, utils.Validation(fmt.Sprintf("at most %d images are allowed", MaxImages), nil)
	}

	if err := s.Repo.Create(ctx, svc); err != nil {
		s.cleanup(ctx, uploaded)
		return nil, utils.Internal("failed to create service", err)
	}
	s.Logger.Info("service created", zap.String("serviceId", svc.ID), zap.String("providerId", svc.ProviderID))
	return svc, nil
}

func (s *DefaultCatalogService) Update(ctx context.Context, actor models.Actor, id string, input models.ServiceUpdate, images []io.Reader) (*models.Service, error) {
	svc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if svc.ProviderID != actor.ID && !actor.IsAdmin() {
		return nil, utils.Forbidden("only the owning provider can edit this service")
	}

	applyUpdate(svc, input)
	normalize(svc)
	if err := utils.ValidateStruct(svc); err != nil {
		return nil, err
	}

	var uploaded, replaced []string
	if len(images) > 0 {
		urls, err := s.upload(ctx, images)
		if err != nil {
			return nil, err
		}
		uploaded, replaced = urls, svc.Images
		svc.Images = urls
	}
	if len(svc.Images) > MaxImages {
		return nil, utils.Validation(fmt.Sprintf("at most %d images are allowed", MaxImages), nil)
	}

	if err := s.Repo.Update(ctx, svc); err != nil {
		s.cleanup(ctx, uploaded)
		return nil, mapRepoErr(err)
	}
	s.cleanup(ctx, replaced)
	return svc, nil
}

func (s *DefaultCatalogService) Delete(ctx context.Context, actor models.Actor, id string) error {
	svc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if svc.ProviderID != actor.ID && !actor.IsAdmin() {
		return utils.Forbidden("only the owning provider can delete this service")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.cleanup(ctx, svc.Images)
	return nil
}

func (s *DefaultCatalogService) upload(ctx context.Context, images []io.Reader) ([]string, error) {
	if len(images) > MaxImages {
		return nil, utils.Validation(fmt.Sprintf("at most %d images are allowed", MaxImages), nil)
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := s.Images.Upload(ctx, img)
		if err != nil {
			s.cleanup(ctx, urls)
			if errors.Is(err, storage.ErrDisabled) {
				return nil, utils.Validation("image uploads are not available", nil)
			}
			return nil, utils.Upstream("failed to upload image", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// cleanup removes images that are no longer referenced. Failures are logged only.
func (s *DefaultCatalogService) cleanup(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.Images.Delete(ctx, url); err != nil {
			s.Logger.Warn("failed to delete image", zap.String("url", url), zap.Error(err))
		}
	}
}

func applyUpdate(svc *models.Service, in models.ServiceUpdate) {
	if in.Name != nil {
		svc.Name = *in.Name
	}
	if in.Description != nil {
		svc.Description = *in.Description
	}
	if in.Category != nil {
		svc.Category = *in.Category
	}
	if in.Price != nil {
		svc.Price = *in.Price
	}
	if in.Duration != nil {
		svc.Duration = *in.Duration
	}
	if in.Images != nil {
		svc.Images = in.Images
	}
	if in.Location != nil {
		svc.Location = *in.Location
	}
	if in.Availability != nil {
		svc.Availability = in.Availability
	}
	if in.Tags != nil {
		svc.Tags = in.Tags
	}
	if in.Status != nil {
		svc.Status = *in.Status
	}
}

// normalize fills derived fields before every write.
func normalize(svc *models.Service) {
	svc.Location.Type = "Point"
	if svc.Images == nil {
		svc.Images = []string{}
	}
	if svc.Tags == nil {
		svc.Tags = []string{}
	}
	if svc.Availability == nil {
		svc.Availability = []models.DayAvailability{}
	}
	svc.SearchKeywords = BuildSearchKeywords(svc.Name, svc.Description, svc.Category, svc.Tags)
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NotFound("service")
	}
	return utils.Internal("service store failure", err)
}
