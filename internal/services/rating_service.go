package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RatingService keeps a provider's stored rating equal to the rounded mean of
// every rating on its bookings
type RatingService struct {
	bookings  BookingStore
	providers ProviderStore
	logger    *logrus.Logger
}

// NewRatingService creates a rating aggregator
func NewRatingService(bookings BookingStore, providers ProviderStore, logger *logrus.Logger) *RatingService {
	return &RatingService{
		bookings:  bookings,
		providers: providers,
		logger:    logger,
	}
}

// RoundRating rounds to one decimal place, halves away from zero
func RoundRating(x float64) float64 {
	return math.Round(x*10) / 10
}

// Recompute recalculates the provider's rating from scratch. With no ratings
// the stored value is left alone and ok is false.
func (s *RatingService) Recompute(ctx context.Context, providerID uuid.UUID) (rating float64, ok bool, err error) {
	stats, err := s.bookings.ProviderRatingStats(ctx, providerID)
	if err != nil {
		return 0, false, err
	}
	if stats.Count == 0 {
		return 0, false, nil
	}

	rating = RoundRating(stats.Average)
	if err := s.providers.SetRating(ctx, providerID, rating); err != nil {
		return 0, false, fmt.Errorf("failed to store provider rating: %w", notFound(err, ErrProviderNotFound))
	}

	s.logger.WithFields(logrus.Fields{
		"provider_id": providerID,
		"rating":      rating,
		"ratings":     stats.Count,
	}).Info("Provider rating recomputed")

	return rating, true, nil
}
