package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/internal/repository"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
)

type fakeSectionRepo struct {
	sections  []models.Section
	updates   int
	updateErr error
}

func (f *fakeSectionRepo) List(_ context.Context, activeOnly bool) ([]models.Section, error) {
	var out []models.Section
	for _, s := range f.sections {
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSectionRepo) Update(_ context.Context, name string, upd models.SectionUpdate) (*models.Section, error) {
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.sections {
		s := &f.sections[i]
		if s.Name != name {
			continue
		}
		if upd.Capacity != nil {
			s.Capacity = *upd.Capacity
		}
		if upd.Active != nil {
			s.Active = *upd.Active
		}
		if upd.TermlyFee != nil {
			s.TermlyFee = *upd.TermlyFee
		}
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func sectionFixture() *fakeSectionRepo {
	return &fakeSectionRepo{sections: []models.Section{
		{Name: "Tahfiz", Capacity: 25, CurrentEnrollment: 24, Active: true},
		{Name: "Adult", Capacity: 20, CurrentEnrollment: 20, Active: true},
		{Name: "Arabic", Capacity: 30, Active: false},
	}}
}

func TestSectionListReportsAvailability(t *testing.T) {
	svc := NewSectionService(sectionFixture(), nil, nil, nil)

	sections, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, 1, sections[0].Available)
	assert.Equal(t, 0, sections[1].Available)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSectionUpdate(t *testing.T) {
	repo := sectionFixture()
	cacheRepo := newMemoryCache()
	cacheRepo.entries[DashboardStatsKey] = []byte(`{}`)
	svc := NewSectionService(repo, NewCacheService(cacheRepo, nil, 0, nil, true), nil, nil)

	capacity := 30
	fee := decimal.NewFromInt(40000)
	resp, err := svc.Update(context.Background(), "Tahfiz", dto.SectionUpdateRequest{Capacity: &capacity, TermlyFee: &fee})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.Capacity)
	assert.Equal(t, 6, resp.Available)
	assert.True(t, fee.Equal(resp.TermlyFee))
	assert.False(t, cacheRepo.has(DashboardStatsKey))
}

func TestSectionUpdateValidation(t *testing.T) {
	repo := sectionFixture()
	svc := NewSectionService(repo, nil, nil, nil)

	_, err := svc.Update(context.Background(), "Tahfiz", dto.SectionUpdateRequest{})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(context.Background(), "Tahfiz", dto.SectionUpdateRequest{AnnualFee: &negative})
	appErr := appErrors.FromError(err)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "annualFee", appErr.Details[0].Field)

	tooBig := 20000
	_, err = svc.Update(context.Background(), "Tahfiz", dto.SectionUpdateRequest{Capacity: &tooBig})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Zero(t, repo.updates)
}

func TestSectionUpdateRepositoryErrors(t *testing.T) {
	capacity := 5
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing", sql.ErrNoRows, http.StatusNotFound},
		{"below enrollment", repository.ErrCapacityBelowEnrollment, http.StatusConflict},
		{"age range", repository.ErrInvalidAgeRange, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := sectionFixture()
			repo.updateErr = tc.err
			svc := NewSectionService(repo, nil, nil, nil)
			_, err := svc.Update(context.Background(), "Tahfiz", dto.SectionUpdateRequest{Capacity: &capacity})
			assert.Equal(t, tc.status, appErrors.FromError(err).Status)
		})
	}
}
