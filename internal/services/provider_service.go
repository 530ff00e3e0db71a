package services

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/internal/utils"
	"github.com/localbookr/marketplace-backend/pkg/storage"
	"github.com/sirupsen/logrus"
)

// ProviderService covers provider onboarding, admin review and self-service
type ProviderService struct {
	providers ProviderStore
	services  ServiceStore
	auth      *AuthService
	uploader  storage.ImageUploader
	logger    *logrus.Logger
}

// NewProviderService creates a provider service. A nil uploader disables
// direct photo uploads; already-hosted URLs can still be attached.
func NewProviderService(
	providers ProviderStore,
	services ServiceStore,
	auth *AuthService,
	uploader storage.ImageUploader,
	logger *logrus.Logger,
) *ProviderService {
	return &ProviderService{
		providers: providers,
		services:  services,
		auth:      auth,
		uploader:  uploader,
		logger:    logger,
	}
}

// checkSkill requires the skill to name an existing service
func (s *ProviderService) checkSkill(ctx context.Context, skill string) error {
	if _, err := s.services.GetByName(ctx, skill); err != nil {
		return notFound(err, ErrUnknownSkill)
	}
	return nil
}

// Register creates a provider account awaiting admin approval
func (s *ProviderService) Register(ctx context.Context, req models.ProviderRegisterRequest) (*models.Provider, error) {
	provider, err := s.openAccount(ctx, newAccount{
		name:       req.Name,
		email:      req.Email,
		phone:      req.Phone,
		password:   req.Password,
		skill:      req.Skill,
		area:       req.Area,
		bio:        req.Bio,
		experience: req.ExperienceYears,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"provider_id": provider.ID,
		"user_id":     provider.UserID,
		"skill":       provider.Skill,
	}).Info("Provider registered, awaiting approval")

	return s.Get(ctx, provider.ID)
}

// Create opens a provider account on behalf of an admin. Like
// self-registration it starts PENDING and inactive until approved.
func (s *ProviderService) Create(ctx context.Context, req models.CreateProviderRequest) (*models.Provider, error) {
	password := req.Password
	if password == "" {
		secret, err := utils.GenerateSecret(16)
		if err != nil {
			return nil, err
		}
		password = secret
	}

	provider, err := s.openAccount(ctx, newAccount{
		name:       req.Name,
		email:      req.Email,
		phone:      req.Phone,
		password:   password,
		skill:      req.Skill,
		area:       req.Area,
		bio:        req.Bio,
		experience: req.ExperienceYears,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"provider_id": provider.ID,
		"user_id":     provider.UserID,
	}).Info("Provider created by admin")

	return s.Get(ctx, provider.ID)
}

type newAccount struct {
	name, email, phone, password string
	skill, area                  string
	bio                          *string
	experience                   *int
}

// openAccount inserts a PROVIDER user and its PENDING provider row together
func (s *ProviderService) openAccount(ctx context.Context, a newAccount) (*models.Provider, error) {
	skill := strings.TrimSpace(a.skill)
	if err := s.checkSkill(ctx, skill); err != nil {
		return nil, err
	}
	phone, err := s.auth.NormalizePhone(a.phone)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(a.email)
	if email == "" {
		email = phone + "@provider.local"
	}

	hash, err := s.auth.HashPassword(a.password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(a.name),
		Email:        email,
		Phone:        phone,
		Role:         models.RoleProvider,
		PasswordHash: hash,
	}
	provider := &models.Provider{
		Skill:           skill,
		Area:            strings.TrimSpace(a.area),
		ApprovalStatus:  models.ApprovalPending,
		Bio:             a.bio,
		ExperienceYears: a.experience,
	}

	if err := s.providers.CreateWithUser(ctx, user, provider); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return provider, nil
}

// Get returns a provider with its photos
func (s *ProviderService) Get(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProviderNotFound)
	}
	s.attachPhotos(ctx, []*models.Provider{p})
	return p, nil
}

// Me returns the provider profile of a signed-in user
func (s *ProviderService) Me(ctx context.Context, userID uuid.UUID) (*models.Provider, error) {
	p, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrProviderNotFound)
	}
	s.attachPhotos(ctx, []*models.Provider{p})
	return p, nil
}

// List returns providers for the admin console
func (s *ProviderService) List(ctx context.Context, pendingOnly bool) ([]models.Provider, error) {
	providers, err := s.providers.List(ctx, pendingOnly)
	if err != nil {
		return nil, err
	}
	refs := make([]*models.Provider, len(providers))
	for i := range providers {
		refs[i] = &providers[i]
	}
	s.attachPhotos(ctx, refs)
	return providers, nil
}

// Update applies an admin edit
func (s *ProviderService) Update(ctx context.Context, id uuid.UUID, u models.ProviderUpdate) (*models.Provider, error) {
	if u.Skill != nil {
		trimmed := strings.TrimSpace(*u.Skill)
		if err := s.checkSkill(ctx, trimmed); err != nil {
			return nil, err
		}
		u.Skill = &trimmed
	}
	if u.ApprovalStatus != nil && !u.ApprovalStatus.IsValid() {
		return nil, ErrInvalidApproval
	}
	if u.Rating != nil && (*u.Rating < 0 || *u.Rating > 5) {
		return nil, ErrInvalidRating
	}

	if err := s.providers.Update(ctx, id, u); err != nil {
		return nil, notFound(err, ErrProviderNotFound)
	}
	return s.Get(ctx, id)
}

// Approve makes a provider eligible for matching
func (s *ProviderService) Approve(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	return s.decide(ctx, id, models.ApprovalActive)
}

// Reject keeps a provider out of matching
func (s *ProviderService) Reject(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	return s.decide(ctx, id, models.ApprovalRejected)
}

func (s *ProviderService) decide(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) (*models.Provider, error) {
	if err := s.providers.SetApproval(ctx, id, status); err != nil {
		return nil, notFound(err, ErrProviderNotFound)
	}
	s.logger.WithFields(logrus.Fields{
		"provider_id": id,
		"status":      status,
	}).Info("Provider approval updated")
	return s.Get(ctx, id)
}

// Delete removes a provider from matching; existing bookings keep their reference
func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.providers.Delete(ctx, id); err != nil {
		return notFound(err, ErrProviderNotFound)
	}
	s.logger.WithField("provider_id", id).Info("Provider deleted")
	return nil
}

// SetPushToken stores the web push subscription of the signed-in provider.
// An empty token unsubscribes.
func (s *ProviderService) SetPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.providers.SetPushToken(ctx, userID, strings.TrimSpace(token)); err != nil {
		return notFound(err, ErrProviderNotFound)
	}
	return nil
}

// AddPhoto attaches an already-hosted image to the signed-in provider
func (s *ProviderService) AddPhoto(ctx context.Context, userID uuid.UUID, req models.AddPhotoRequest) (*models.ProviderPhoto, error) {
	p, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	photo := &models.ProviderPhoto{
		ProviderID: p.ID,
		URL:        req.URL,
		Caption:    req.Caption,
	}
	if err := s.providers.AddPhoto(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// UploadPhoto stores the image with the configured uploader and attaches it
func (s *ProviderService) UploadPhoto(ctx context.Context, userID uuid.UUID, file io.Reader, filename string, caption *string) (*models.ProviderPhoto, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	p, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.uploader.Upload(ctx, file, p.ID.String(), filename)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"provider_id": p.ID,
		"public_id":   uploaded.PublicID,
	}).Info("Provider photo uploaded")

	return s.AddPhoto(ctx, userID, models.AddPhotoRequest{URL: uploaded.URL, Caption: caption})
}

// DeletePhoto removes one of the signed-in provider's photos
func (s *ProviderService) DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) error {
	p, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.providers.DeletePhoto(ctx, p.ID, photoID); err != nil {
		return notFound(err, ErrPhotoNotFound)
	}
	return nil
}

func (s *ProviderService) attachPhotos(ctx context.Context, providers []*models.Provider) {
	if len(providers) == 0 {
		return
	}
	ids := make([]uuid.UUID, len(providers))
	for i, p := range providers {
		ids[i] = p.ID
	}

	photos, err := s.providers.ListPhotos(ctx, ids...)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load provider photos")
	}
	for _, p := range providers {
		p.Photos = photos[p.ID]
		if p.Photos == nil {
			p.Photos = []models.ProviderPhoto{}
		}
	}
}
