package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// CatalogService manages the bookable services
type CatalogService struct {
	services ServiceStore
	logger   *logrus.Logger
}

// NewCatalogService creates a catalog service
func NewCatalogService(services ServiceStore, logger *logrus.Logger) *CatalogService {
	return &CatalogService{services: services, logger: logger}
}

// List returns every service ordered by name
func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	return s.services.List(ctx)
}

// Get returns one service
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrServiceNotFound)
	}
	return svc, nil
}

// Create adds a service. Names are unique because providers reference them by name.
func (s *CatalogService) Create(ctx context.Context, req models.ServiceRequest) (*models.Service, error) {
	svc := &models.Service{}
	apply(svc, req)

	if err := s.services.Create(ctx, svc); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrServiceExists
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"service_id": svc.ID, "name": svc.Name}).Info("Service created")
	return svc, nil
}

// Update replaces a service's fields
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, req models.ServiceRequest) (*models.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(svc, req)

	if err := s.services.Update(ctx, svc); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, ErrServiceExists
		case errors.Is(err, database.ErrNotFound):
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

// Delete removes a service that no booking references
func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.services.Delete(ctx, id)
	switch {
	case errors.Is(err, database.ErrInUse):
		return ErrServiceInUse
	case err != nil:
		return notFound(err, ErrServiceNotFound)
	}
	s.logger.WithField("service_id", id).Info("Service deleted")
	return nil
}

func apply(svc *models.Service, req models.ServiceRequest) {
	svc.Name = strings.TrimSpace(req.Name)
	svc.Description = strings.TrimSpace(req.Description)
	svc.BasePrice = req.BasePrice
	svc.MaxPrice = req.MaxPrice
	svc.Icon = req.Icon
}
