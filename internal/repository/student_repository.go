package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

const studentColumns = `id, student_name, student_age, parent_name, phone, email, section, payment_plan, comments, status, payment_status, created_at, updated_at`

// StudentRepository manages persistence for registrations.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Register stores a new registration and takes one slot of its section in a
// single transaction. The section row stays locked until commit so concurrent
// registrations for the same section are serialised.
func (r *StudentRepository) Register(ctx context.Context, student *models.Student) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT 1 FROM students WHERE student_name = $1 AND parent_name = $2 AND phone = $3 LIMIT 1`,
		student.StudentName, student.ParentName, student.Phone)
	switch {
	case err == nil:
		err = ErrDuplicateRegistration
		return err
	case !errors.Is(err, sql.ErrNoRows):
		err = fmt.Errorf("check duplicate registration: %w", err)
		return err
	}

	var section models.Section
	err = tx.GetContext(ctx, &section, `SELECT id, name, capacity, current_enrollment, active FROM sections WHERE name = $1 FOR UPDATE`, student.Section)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrSectionUnavailable
			return err
		}
		err = fmt.Errorf("lock section: %w", err)
		return err
	}
	if !section.Active {
		err = ErrSectionUnavailable
		return err
	}
	if section.IsFull() {
		err = ErrSectionFull
		return err
	}

	now := time.Now().UTC()
	student.Status = models.RegistrationStatusPending
	student.PaymentStatus = models.PaymentStatusUnpaid
	student.CreatedAt = now
	student.UpdatedAt = now

	const insert = `INSERT INTO students (student_name, student_age, parent_name, phone, email, section, payment_plan, comments, status, payment_status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err = tx.QueryRowxContext(ctx, insert,
		student.StudentName, student.StudentAge, student.ParentName, student.Phone, student.Email,
		student.Section, student.PaymentPlan, student.Comments, student.Status, student.PaymentStatus,
		student.CreatedAt, student.UpdatedAt,
	).Scan(&student.ID)
	if err != nil {
		if isUniqueViolation(err) {
			err = ErrDuplicateRegistration
			return err
		}
		err = fmt.Errorf("insert registration: %w", err)
		return err
	}

	res, err := tx.ExecContext(ctx, `UPDATE sections SET current_enrollment = current_enrollment + 1, updated_at = $2 WHERE name = $1 AND current_enrollment < capacity`,
		student.Section, now)
	if err != nil {
		err = fmt.Errorf("increment enrollment: %w", err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		err = fmt.Errorf("increment enrollment: %w", err)
		return err
	}
	if affected != 1 {
		err = ErrSectionFull
		return err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("commit registration: %w", err)
		return err
	}
	return nil
}

func studentWhere(filter models.StudentFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Section != "" {
		args = append(args, filter.Section)
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(student_name) LIKE $%d OR LOWER(parent_name) LIKE $%d OR phone LIKE $%d)", n, n, n))
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List returns one page of registrations, newest first, plus the total match count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where, args := studentWhere(filter)
	page, limit := models.NormalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT %s FROM students %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`, studentColumns, where, limit, offset)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns every registration matching filter, newest first, up to max rows.
func (r *StudentRepository) ListAll(ctx context.Context, filter models.StudentFilter, max int) ([]models.Student, error) {
	where, args := studentWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM students %s ORDER BY created_at DESC, id DESC LIMIT %d`, studentColumns, where, max)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("export students: %w", err)
	}
	return students, nil
}

// Recent returns the latest registrations.
func (r *StudentRepository) Recent(ctx context.Context, limit int) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students ORDER BY created_at DESC, id DESC LIMIT %d`, studentColumns, limit)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("recent students: %w", err)
	}
	return students, nil
}

// FindByID fetches a registration by row id.
func (r *StudentRepository) FindByID(ctx context.Context, id int) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// UpdateStatus sets the review status. It returns sql.ErrNoRows when id is unknown.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus groups registrations by review status.
func (r *StudentRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return groupCount(ctx, r.db, `SELECT status AS key, COUNT(*) AS count FROM students GROUP BY status`)
}

// CountByPaymentStatus groups registrations by payment status.
func (r *StudentRepository) CountByPaymentStatus(ctx context.Context) (map[string]int, error) {
	return groupCount(ctx, r.db, `SELECT payment_status AS key, COUNT(*) AS count FROM students GROUP BY payment_status`)
}

type countRow struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

func groupCount(ctx context.Context, db *sqlx.DB, query string) (map[string]int, error) {
	var rows []countRow
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("group count: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}
