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

const sectionColumns = `id, name, description, capacity, current_enrollment, min_age, max_age, registration_fee, termly_fee, annual_fee, active, created_at, updated_at`

// SectionRepository manages the section catalog and its enrollment counters.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// List returns sections ordered by id. activeOnly hides closed sections.
func (r *SectionRepository) List(ctx context.Context, activeOnly bool) ([]models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY id`
	sections := []models.Section{}
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// FindByName returns a section by its unique name.
func (r *SectionRepository) FindByName(ctx context.Context, name string) (*models.Section, error) {
	var section models.Section
	if err := r.db.GetContext(ctx, &section, `SELECT `+sectionColumns+` FROM sections WHERE name = $1`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find section: %w", err)
	}
	return &section, nil
}

// Update applies the non-nil fields of upd under a row lock. Capacity can never
// drop below the current enrollment.
func (r *SectionRepository) Update(ctx context.Context, name string, upd models.SectionUpdate) (section *models.Section, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin section update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Section
	if err = tx.GetContext(ctx, &current, `SELECT `+sectionColumns+` FROM sections WHERE name = $1 FOR UPDATE`, name); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("lock section: %w", err)
		}
		return nil, err
	}

	applySectionUpdate(&current, upd)
	if current.Capacity < current.CurrentEnrollment {
		err = ErrCapacityBelowEnrollment
		return nil, err
	}
	if current.MinAge > current.MaxAge {
		err = ErrInvalidAgeRange
		return nil, err
	}
	current.UpdatedAt = time.Now().UTC()

	const update = `UPDATE sections SET description = $2, capacity = $3, min_age = $4, max_age = $5,
        registration_fee = $6, termly_fee = $7, annual_fee = $8, active = $9, updated_at = $10 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, update, current.ID, current.Description, current.Capacity, current.MinAge, current.MaxAge,
		current.RegistrationFee, current.TermlyFee, current.AnnualFee, current.Active, current.UpdatedAt); err != nil {
		err = fmt.Errorf("update section: %w", err)
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("commit section update: %w", err)
		return nil, err
	}
	return &current, nil
}

func applySectionUpdate(s *models.Section, upd models.SectionUpdate) {
	if upd.Description != nil {
		s.Description = *upd.Description
	}
	if upd.Capacity != nil {
		s.Capacity = *upd.Capacity
	}
	if upd.MinAge != nil {
		s.MinAge = *upd.MinAge
	}
	if upd.MaxAge != nil {
		s.MaxAge = *upd.MaxAge
	}
	if upd.RegistrationFee != nil {
		s.RegistrationFee = *upd.RegistrationFee
	}
	if upd.TermlyFee != nil {
		s.TermlyFee = *upd.TermlyFee
	}
	if upd.AnnualFee != nil {
		s.AnnualFee = *upd.AnnualFee
	}
	if upd.Active != nil {
		s.Active = *upd.Active
	}
}
