package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/pkg/location"
	"github.com/sirupsen/logrus"
)

// MatchingService finds providers for a service in an area
type MatchingService struct {
	providers  ProviderStore
	normalizer *location.Normalizer
	logger     *logrus.Logger
}

// NewMatchingService creates a matching service. A nil normalizer uses the
// built-in alias table.
func NewMatchingService(providers ProviderStore, normalizer *location.Normalizer, logger *logrus.Logger) *MatchingService {
	if normalizer == nil {
		normalizer = location.NewDefault()
	}
	return &MatchingService{
		providers:  providers,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Search returns the eligible providers whose skill is exactly serviceName and
// whose normalized area relates to the normalized query. Photos are attached.
// An empty result is not an error.
func (s *MatchingService) Search(ctx context.Context, serviceName, areaQuery string) ([]models.Provider, error) {
	candidates, err := s.providers.ListBySkill(ctx, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to search providers: %w", err)
	}

	matched := make([]models.Provider, 0, len(candidates))
	for _, p := range candidates {
		if p.Skill != serviceName || !p.IsEligible() {
			continue
		}
		if !s.normalizer.Matches(p.Area, areaQuery) {
			continue
		}
		matched = append(matched, p)
	}

	if len(matched) == 0 {
		return matched, nil
	}

	ids := make([]uuid.UUID, 0, len(matched))
	for _, p := range matched {
		ids = append(ids, p.ID)
	}
	photos, err := s.providers.ListPhotos(ctx, ids...)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load provider photos for search")
		return matched, nil
	}
	for i := range matched {
		matched[i].Photos = photos[matched[i].ID]
		if matched[i].Photos == nil {
			matched[i].Photos = []models.ProviderPhoto{}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"service": serviceName,
		"area":    areaQuery,
		"matches": len(matched),
	}).Debug("Provider search")

	return matched, nil
}

// BestCandidate picks the provider the auto-assign sweep should use: exact
// skill, active and approved, area related to the raw booking area by
// case-insensitive containment, highest rating first. Returns nil when nobody
// qualifies.
func (s *MatchingService) BestCandidate(ctx context.Context, serviceName, rawArea string) (*models.Provider, error) {
	p, err := s.providers.FindBestCandidate(ctx, serviceName, strings.TrimSpace(rawArea))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Normalizer exposes the area normalizer in use
func (s *MatchingService) Normalizer() *location.Normalizer {
	return s.normalizer
}
