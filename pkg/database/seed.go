package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/pkg/config"
)

const insertSectionQuery = `
INSERT INTO sections (name, description, capacity, min_age, max_age, registration_fee, termly_fee, annual_fee)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (name) DO NOTHING`

const insertAdminQuery = `
INSERT INTO admin_users (email, password_hash, full_name, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO NOTHING`

// Seed inserts the section catalog and the bootstrap admin. Existing rows are left alone.
func Seed(ctx context.Context, db *sqlx.DB, seed config.AdminSeedConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	inserted := int64(0)
	for _, s := range models.SectionCatalog {
		res, execErr := tx.ExecContext(ctx, insertSectionQuery,
			s.Name, s.Description, s.Capacity, s.MinAge, s.MaxAge,
			decimal.NewFromInt(s.RegistrationFee), decimal.NewFromInt(s.TermlyFee), decimal.NewFromInt(s.AnnualFee),
		)
		if execErr != nil {
			err = fmt.Errorf("seed section %s: %w", s.Name, execErr)
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted += n
		}
	}

	if seed.Email != "" && seed.Password != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			err = fmt.Errorf("hash seed password: %w", hashErr)
			return err
		}
		name := strings.TrimSpace(seed.FullName)
		if name == "" {
			name = "Administrator"
		}
		res, execErr := tx.ExecContext(ctx, insertAdminQuery, seed.Email, string(hash), name, models.RoleSuperAdmin)
		if execErr != nil {
			err = fmt.Errorf("seed admin: %w", execErr)
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			logger.Info("seeded admin user", zap.String("email", seed.Email))
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	logger.Info("section catalog ready", zap.Int64("inserted", inserted), zap.Int("catalog", len(models.SectionCatalog)))
	return nil
}
