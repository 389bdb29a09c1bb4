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

var sectionRowColumns = []string{"id", "name", "description", "capacity", "current_enrollment", "min_age", "max_age", "registration_fee", "termly_fee", "annual_fee", "active", "created_at", "updated_at"}

func sectionRow(rows *sqlmock.Rows, id int, name string, capacity, enrolled int) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, name, name+" track", capacity, enrolled, 5, 30, "5000.00", "35000.00", "100000.00", true, now, now)
}

func TestListActiveSections(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	rows := sectionRow(sqlmock.NewRows(sectionRowColumns), 3, "Tahfiz", 25, 24)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sections WHERE active = TRUE ORDER BY id")).WillReturnRows(rows)

	sections, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, 1, sections[0].Available())
	assert.Equal(t, "100000", sections[0].AnnualFee.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSectionCapacity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sections WHERE name = $1 FOR UPDATE")).
		WithArgs("Tahfiz").
		WillReturnRows(sectionRow(sqlmock.NewRows(sectionRowColumns), 3, "Tahfiz", 25, 20))
	mock.ExpectExec("UPDATE sections SET description").
		WithArgs(3, "Tahfiz track", 30, 5, 30, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	capacity := 30
	section, err := repo.Update(context.Background(), "Tahfiz", models.SectionUpdate{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 30, section.Capacity)
	assert.Equal(t, 10, section.Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSectionCapacityBelowEnrollment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sectionRow(sqlmock.NewRows(sectionRowColumns), 3, "Tahfiz", 25, 20))
	mock.ExpectRollback()

	capacity := 19
	_, err := repo.Update(context.Background(), "Tahfiz", models.SectionUpdate{Capacity: &capacity})
	assert.ErrorIs(t, err, ErrCapacityBelowEnrollment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSectionInvalidAgeRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sectionRow(sqlmock.NewRows(sectionRowColumns), 3, "Tahfiz", 25, 20))
	mock.ExpectRollback()

	minAge := 31
	_, err := repo.Update(context.Background(), "Tahfiz", models.SectionUpdate{MinAge: &minAge})
	assert.ErrorIs(t, err, ErrInvalidAgeRange)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUnknownSection(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	active := false
	_, err := repo.Update(context.Background(), "Chess", models.SectionUpdate{Active: &active})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
