package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/models"
)

const serviceColumns = `id, name, description, base_price, max_price, icon, created_at`

// ServiceRepository handles the service catalog
type ServiceRepository struct {
	db DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// List returns every service ordered by name
func (r *ServiceRepository) List(ctx context.Context) ([]models.Service, error) {
	services := []models.Service{}
	query := `SELECT ` + serviceColumns + ` FROM services ORDER BY name`

	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// GetByID retrieves a service by ID
func (r *ServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", mapError(err))
	}
	return &service, nil
}

// GetByName retrieves a service by its exact name
func (r *ServiceRepository) GetByName(ctx context.Context, name string) (*models.Service, error) {
	var service models.Service
	query := `SELECT ` + serviceColumns + ` FROM services WHERE name = $1`

	if err := r.db.GetContext(ctx, &service, query, name); err != nil {
		return nil, fmt.Errorf("failed to get service by name: %w", mapError(err))
	}
	return &service, nil
}

// Create inserts a service
func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	if service.CreatedAt.IsZero() {
		service.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO services (id, name, description, base_price, max_price, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		service.ID, service.Name, service.Description, service.BasePrice,
		service.MaxPrice, service.Icon, service.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", mapError(err))
	}
	return nil
}

// Update overwrites the editable fields of a service
func (r *ServiceRepository) Update(ctx context.Context, service *models.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, base_price = $3, max_price = $4, icon = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		service.Name, service.Description, service.BasePrice,
		service.MaxPrice, service.Icon, service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", mapError(err))
	}
	return requireAffected(result)
}

// Delete removes a service
func (r *ServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", mapError(err))
	}
	return requireAffected(result)
}
