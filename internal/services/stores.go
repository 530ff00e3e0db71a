package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/models"
)

// Storage contracts consumed by the services. The database package provides
// the Postgres implementations.

type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetDetail(ctx context.Context, id uuid.UUID) (*models.BookingDetail, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error)
	ListStale(ctx context.Context, status models.BookingStatus, before time.Time, limit int) ([]models.BookingDetail, error)
	TouchWaiting(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus, providerID uuid.NullUUID) error
	SetRating(ctx context.Context, id uuid.UUID, rating int, review *string) error
	ProviderRatingStats(ctx context.Context, providerID uuid.UUID) (*database.RatingStats, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProviderStore interface {
	CreateWithUser(ctx context.Context, user *models.User, p *models.Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Provider, error)
	ListBySkill(ctx context.Context, skill string) ([]models.Provider, error)
	List(ctx context.Context, pendingOnly bool) ([]models.Provider, error)
	FindBestCandidate(ctx context.Context, skill, area string) (*models.Provider, error)
	Update(ctx context.Context, id uuid.UUID, u models.ProviderUpdate) error
	SetApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) error
	SetRating(ctx context.Context, id uuid.UUID, rating float64) error
	SetPushToken(ctx context.Context, userID uuid.UUID, token string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPhotos(ctx context.Context, providerIDs ...uuid.UUID) (map[uuid.UUID][]models.ProviderPhoto, error)
	AddPhoto(ctx context.Context, photo *models.ProviderPhoto) error
	DeletePhoto(ctx context.Context, providerID, photoID uuid.UUID) error
}

type ServiceStore interface {
	List(ctx context.Context) ([]models.Service, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	GetByName(ctx context.Context, name string) (*models.Service, error)
	Create(ctx context.Context, s *models.Service) error
	Update(ctx context.Context, s *models.Service) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

var (
	_ BookingStore      = (*database.BookingRepository)(nil)
	_ ProviderStore     = (*database.ProviderRepository)(nil)
	_ ServiceStore      = (*database.ServiceRepository)(nil)
	_ UserStore         = (*database.UserRepository)(nil)
	_ NotificationStore = (*database.NotificationRepository)(nil)
)
