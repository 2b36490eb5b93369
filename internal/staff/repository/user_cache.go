package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolhub/schoolhub-backend/pkg/database"
)

// CachedUser is a local projection of an identity-service user, kept in sync
// by the user event consumer. Only what the staff views need.
type CachedUser struct {
	UserID    string    `db:"user_id" json:"user_id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UserCacheRepository maintains the local user projection
type UserCacheRepository struct {
	db *database.DB
}

// NewUserCacheRepository creates a new user cache repository
func NewUserCacheRepository(db *database.DB) *UserCacheRepository {
	return &UserCacheRepository{db: db}
}

// Upsert writes a user into the cache, replacing any previous projection.
func (r *UserCacheRepository) Upsert(ctx context.Context, user *CachedUser) error {
	query := `
		INSERT INTO user_cache (user_id, tenant_id, email, name, role, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query,
		user.UserID, user.TenantID, user.Email, user.Name, user.Role,
	); err != nil {
		return fmt.Errorf("failed to upsert cached user: %w", err)
	}

	return nil
}

// UpdateFields applies a partial update from a user.updated event. Unknown
// fields are ignored.
func (r *UserCacheRepository) UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	name, hasName := fields["name"].(string)
	email, hasEmail := fields["email"].(string)
	role, hasRole := fields["role"].(string)

	if !hasName && !hasEmail && !hasRole {
		return nil
	}

	query := `
		UPDATE user_cache SET
			name = COALESCE(NULLIF($1, ''), name),
			email = COALESCE(NULLIF($2, ''), email),
			role = COALESCE(NULLIF($3, ''), role),
			updated_at = NOW()
		WHERE user_id = $4
	`
	if _, err := r.db.ExecContext(ctx, query, name, email, role, userID); err != nil {
		return fmt.Errorf("failed to update cached user: %w", err)
	}

	return nil
}

// Delete removes a user from the cache.
func (r *UserCacheRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_cache WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete cached user: %w", err)
	}

	return nil
}
