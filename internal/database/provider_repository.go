package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/localbookr/marketplace-backend/internal/models"
)

const providerSelect = `
	SELECT p.id, p.user_id, p.skill, p.area, p.rating, p.is_active, p.approval_status,
		p.experience_years, p.bio, p.is_deleted, p.push_token, p.created_at,
		u.name, u.email, u.phone
	FROM providers p
	JOIN users u ON u.id = p.user_id`

const photoColumns = `id, provider_id, url, caption, position, created_at`

// ProviderRepository handles providers and their portfolio photos
type ProviderRepository struct {
	db DB
}

// NewProviderRepository creates a new provider repository
func NewProviderRepository(db DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

// ============================================================================
// PROVIDERS
// ============================================================================

// CreateWithUser inserts a user and its provider profile in one transaction
func (r *ProviderRepository) CreateWithUser(ctx context.Context, user *models.User, p *models.Provider) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Name, user.Email, user.Phone, user.Role, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create provider user: %w", mapError(err))
	}

	p.UserID = user.ID
	prepareProvider(p)
	if _, err = tx.ExecContext(ctx, insertProviderQuery, providerInsertArgs(p)...); err != nil {
		return fmt.Errorf("failed to create provider: %w", mapError(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit provider registration: %w", err)
	}

	p.Name, p.Email, p.Phone = user.Name, user.Email, user.Phone
	return nil
}

const insertProviderQuery = `
	INSERT INTO providers (
		id, user_id, skill, area, rating, is_active, approval_status,
		experience_years, bio, is_deleted, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func prepareProvider(p *models.Provider) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = models.ApprovalPending
	}
	p.Skill = strings.TrimSpace(p.Skill)
	p.Area = strings.TrimSpace(p.Area)
}

func providerInsertArgs(p *models.Provider) []interface{} {
	return []interface{}{
		p.ID, p.UserID, p.Skill, p.Area, p.Rating, p.IsActive, p.ApprovalStatus,
		p.ExperienceYears, p.Bio, p.IsDeleted, p.CreatedAt,
	}
}

// GetByID retrieves a provider with its user fields
func (r *ProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	var p models.Provider
	if err := r.db.GetContext(ctx, &p, providerSelect+` WHERE p.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", mapError(err))
	}
	return &p, nil
}

// GetByUserID retrieves the provider profile owned by a user
func (r *ProviderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Provider, error) {
	var p models.Provider
	query := providerSelect + ` WHERE p.user_id = $1 AND NOT p.is_deleted`
	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get provider by user: %w", mapError(err))
	}
	return &p, nil
}

// ListBySkill returns every non-deleted provider whose skill equals the service name
func (r *ProviderRepository) ListBySkill(ctx context.Context, skill string) ([]models.Provider, error) {
	providers := []models.Provider{}
	query := providerSelect + ` WHERE p.skill = $1 AND NOT p.is_deleted ORDER BY p.rating DESC, p.created_at ASC`
	if err := r.db.SelectContext(ctx, &providers, query, skill); err != nil {
		return nil, fmt.Errorf("failed to list providers by skill: %w", err)
	}
	return providers, nil
}

// List returns non-deleted providers, optionally only those awaiting approval
func (r *ProviderRepository) List(ctx context.Context, pendingOnly bool) ([]models.Provider, error) {
	providers := []models.Provider{}
	query := providerSelect + ` WHERE NOT p.is_deleted`
	args := []interface{}{}
	if pendingOnly {
		query += ` AND p.approval_status = $1`
		args = append(args, models.ApprovalPending)
	}
	query += ` ORDER BY p.created_at DESC`

	if err := r.db.SelectContext(ctx, &providers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

// FindBestCandidate returns the highest-rated eligible provider for a skill whose
// area and the requested area contain one another, case-insensitively.
// Ties go to the oldest provider. Returns ErrNotFound when nobody qualifies.
func (r *ProviderRepository) FindBestCandidate(ctx context.Context, skill, area string) (*models.Provider, error) {
	query := providerSelect + `
		WHERE p.skill = $1
			AND p.is_active
			AND p.approval_status = 'ACTIVE'
			AND NOT p.is_deleted
			AND p.area <> ''
			AND (
				strpos(lower(trim(p.area)), lower(trim($2))) > 0
				OR strpos(lower(trim($2)), lower(trim(p.area))) > 0
			)
		ORDER BY p.rating DESC, p.created_at ASC, p.id ASC
		LIMIT 1`

	var p models.Provider
	if err := r.db.GetContext(ctx, &p, query, skill, area); err != nil {
		return nil, fmt.Errorf("failed to find provider candidate: %w", mapError(err))
	}
	return &p, nil
}

// Update applies the non-nil fields of u
func (r *ProviderRepository) Update(ctx context.Context, id uuid.UUID, u models.ProviderUpdate) error {
	if u.IsEmpty() {
		return nil
	}

	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	if u.ApprovalStatus != nil {
		add("approval_status", *u.ApprovalStatus)
	}
	if u.Skill != nil {
		add("skill", strings.TrimSpace(*u.Skill))
	}
	if u.Area != nil {
		add("area", strings.TrimSpace(*u.Area))
	}
	if u.Rating != nil {
		add("rating", *u.Rating)
	}
	if u.Bio != nil {
		add("bio", *u.Bio)
	}
	if u.ExperienceYears != nil {
		add("experience_years", *u.ExperienceYears)
	}
	if u.PushToken != nil {
		add("push_token", *u.PushToken)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE providers SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	return requireAffected(result)
}

// SetApproval records an admin decision. Only ACTIVE providers are active.
func (r *ProviderRepository) SetApproval(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) error {
	query := `UPDATE providers SET approval_status = $1, is_active = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, status == models.ApprovalActive, id)
	if err != nil {
		return fmt.Errorf("failed to set provider approval: %w", err)
	}
	return requireAffected(result)
}

// SetRating overwrites the aggregate rating
func (r *ProviderRepository) SetRating(ctx context.Context, id uuid.UUID, rating float64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE providers SET rating = $1 WHERE id = $2`, rating, id)
	if err != nil {
		return fmt.Errorf("failed to set provider rating: %w", err)
	}
	return requireAffected(result)
}

// SetPushToken stores the web-push subscription of the provider owned by userID
func (r *ProviderRepository) SetPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	var value interface{}
	if token != "" {
		value = token
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE providers SET push_token = $1 WHERE user_id = $2 AND NOT is_deleted`, value, userID)
	if err != nil {
		return fmt.Errorf("failed to set push token: %w", err)
	}
	return requireAffected(result)
}

// Delete soft-deletes a provider, falling back to a hard delete when the
// soft update fails.
func (r *ProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE providers SET is_deleted = TRUE, is_active = FALSE WHERE id = $1`, id)
	if err == nil {
		return requireAffected(result)
	}

	result, hardErr := r.db.ExecContext(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if hardErr != nil {
		return fmt.Errorf("failed to delete provider: %w (soft delete: %v)", hardErr, err)
	}
	return requireAffected(result)
}

// ============================================================================
// PHOTOS
// ============================================================================

// ListPhotos returns the photos of the given providers keyed by provider ID
func (r *ProviderRepository) ListPhotos(ctx context.Context, providerIDs ...uuid.UUID) (map[uuid.UUID][]models.ProviderPhoto, error) {
	byProvider := make(map[uuid.UUID][]models.ProviderPhoto, len(providerIDs))
	if len(providerIDs) == 0 {
		return byProvider, nil
	}

	ids := make([]string, len(providerIDs))
	for i, id := range providerIDs {
		ids[i] = id.String()
	}

	photos := []models.ProviderPhoto{}
	query := `SELECT ` + photoColumns + ` FROM provider_photos
		WHERE provider_id = ANY($1::uuid[])
		ORDER BY provider_id, position, created_at`
	if err := r.db.SelectContext(ctx, &photos, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list provider photos: %w", err)
	}

	for _, photo := range photos {
		byProvider[photo.ProviderID] = append(byProvider[photo.ProviderID], photo)
	}
	return byProvider, nil
}

// AddPhoto appends a photo after the provider's last position
func (r *ProviderRepository) AddPhoto(ctx context.Context, photo *models.ProviderPhoto) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}

	query := `
		INSERT INTO provider_photos (id, provider_id, url, caption, position, created_at)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM provider_photos WHERE provider_id = $2),
			NOW())
		RETURNING position, created_at`

	err := r.db.QueryRowxContext(ctx, query, photo.ID, photo.ProviderID, photo.URL, photo.Caption).
		Scan(&photo.Position, &photo.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add provider photo: %w", mapError(err))
	}
	return nil
}

// DeletePhoto removes one photo owned by the provider
func (r *ProviderRepository) DeletePhoto(ctx context.Context, providerID, photoID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM provider_photos WHERE id = $1 AND provider_id = $2`, photoID, providerID)
	if err != nil {
		return fmt.Errorf("failed to delete provider photo: %w", err)
	}
	return requireAffected(result)
}
