package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mbu-admin-api/internal/models"
)

func TestCreateContactMessage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContactRepository(db)

	mock.ExpectQuery("INSERT INTO contact_messages").
		WithArgs("Zainab", "zainab@example.com", nil, "Fees", "What are the Tahfiz fees?", models.ContactStatusUnread, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))

	msg := &models.ContactMessage{Name: "Zainab", Email: "zainab@example.com", Subject: "Fees", Message: "What are the Tahfiz fees?"}
	require.NoError(t, repo.Create(context.Background(), msg))
	assert.Equal(t, 8, msg.ID)
	assert.Equal(t, models.ContactStatusUnread, msg.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListContactMessages(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContactRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "subject", "message", "status", "created_at", "updated_at"}).
		AddRow(1, "Zainab", "zainab@example.com", nil, "Fees", "What are the fees?", "unread", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM contact_messages WHERE 1=1 AND status = $1 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.ContactStatusUnread).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM contact_messages WHERE 1=1 AND status = $1")).
		WithArgs(models.ContactStatusUnread).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	messages, total, err := repo.List(context.Background(), models.ContactFilter{Status: models.ContactStatusUnread})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, messages, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContactStatusMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContactRepository(db)

	mock.ExpectExec("UPDATE contact_messages SET status").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 77, models.ContactStatusRead, time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
