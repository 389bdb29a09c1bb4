package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

const adminColumns = `id, email, password_hash, full_name, role, active, last_login, created_at, updated_at`

// AdminRepository provides database access for admin credentials.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByEmail returns an admin by email address.
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	return r.findOne(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE email = $1 LIMIT 1`, email)
}

// FindByID returns an admin by identifier.
func (r *AdminRepository) FindByID(ctx context.Context, id int) (*models.AdminUser, error) {
	return r.findOne(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id = $1 LIMIT 1`, id)
}

func (r *AdminRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.GetContext(ctx, &admin, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}

// UpdateLastLogin records a successful login.
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id int, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE admin_users SET last_login = $2, updated_at = $3 WHERE id = $1`, id, ts, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int, passwordHash string, updatedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE admin_users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
