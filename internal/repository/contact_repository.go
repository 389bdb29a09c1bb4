package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

// ContactRepository persists contact form messages.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository constructs a ContactRepository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts an unread message and fills its id and timestamps.
func (r *ContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	now := time.Now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if msg.Status == "" {
		msg.Status = models.ContactStatusUnread
	}
	const query = `INSERT INTO contact_messages (name, email, phone, subject, message, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Message, msg.Status, msg.CreatedAt, msg.UpdatedAt).
		Scan(&msg.ID); err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}

// List returns messages newest first with the total match count.
func (r *ContactRepository) List(ctx context.Context, filter models.ContactFilter) ([]models.ContactMessage, int, error) {
	where := "WHERE 1=1"
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	page, limit := models.NormalizePage(filter.Page, filter.Limit)

	query := fmt.Sprintf(`SELECT id, name, email, phone, subject, message, status, created_at, updated_at FROM contact_messages %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		where, limit, (page-1)*limit)
	messages := []models.ContactMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list contact messages: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM contact_messages "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count contact messages: %w", err)
	}
	return messages, total, nil
}

// UpdateStatus changes the handling status. It returns sql.ErrNoRows when id is unknown.
func (r *ContactRepository) UpdateStatus(ctx context.Context, id int, status models.ContactStatus, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update contact status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contact status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus groups messages by handling status.
func (r *ContactRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return groupCount(ctx, r.db, `SELECT status AS key, COUNT(*) AS count FROM contact_messages GROUP BY status`)
}
