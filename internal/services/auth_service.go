package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/pkg/jwt"
	"github.com/localbookr/marketplace-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers and signs in users
type AuthService struct {
	users      UserStore
	jwtService *jwt.Service
	bcryptCost int
	phones     *validator.PhoneValidator
	logger     *logrus.Logger
}

// NewAuthService creates an auth service
func NewAuthService(users UserStore, jwtService *jwt.Service, bcryptCost int, logger *logrus.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
		phones:     validator.NewPhoneValidator(),
		logger:     logger,
	}
}

// HashPassword hashes a plain password with the configured cost
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// NormalizePhone validates a mobile number and returns its 10 digits
func (s *AuthService) NormalizePhone(phone string) (string, error) {
	digits, err := s.phones.Validate(phone)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	return digits, nil
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	phone, err := s.NormalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        phone,
		Role:         models.RoleCustomer,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return s.issue(user)
}

// Login verifies credentials. Unknown email and wrong password look the same.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new access token. The role is
// read again so promotions take effect.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}

	access, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken: access,
		ExpiresIn:   int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:        user,
	}, nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// ListUsers pages through accounts for the admin console
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	access, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:         user,
	}, nil
}
