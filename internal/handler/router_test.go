package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/internal/service"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
)

type testEnvelope struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code"`
	Data       json.RawMessage        `json:"data"`
	Errors     []appErrors.FieldError `json:"errors"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type fakeTokens struct{}

func (fakeTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "admin-token" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	return &models.JWTClaims{UserID: 5, Role: models.RoleAdmin, Email: "admin@mbu.school"}, nil
}

type fakeRegistrations struct{ err error }

func (f *fakeRegistrations) Submit(_ context.Context, req dto.RegistrationRequest) (*dto.RegistrationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.RegistrationResult{RegistrationID: "MBU000001", StudentID: 1, Section: req.Section, PaymentPlan: req.PaymentPlan}, nil
}

type fakeStudents struct {
	filter   models.StudentFilter
	statusID int
	status   models.RegistrationStatus
}

func (f *fakeStudents) List(_ context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	f.filter = filter
	return []models.Student{{ID: 3, StudentName: "Aisha Bello", Section: "Tahfiz"}}, models.NewPagination(1, 20, 1), nil
}

func (f *fakeStudents) Get(_ context.Context, id int) (*models.Student, error) {
	if id != 12 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &models.Student{ID: 12}, nil
}

func (f *fakeStudents) SetStatus(_ context.Context, id int, status models.RegistrationStatus) (*models.Student, error) {
	f.statusID, f.status = id, status
	return &models.Student{ID: id, Status: status}, nil
}

type fakePayments struct{ adminID, studentID int }

func (f *fakePayments) Record(_ context.Context, studentID, adminID int, req dto.PaymentRequest) (*dto.PaymentSummary, error) {
	f.studentID, f.adminID = studentID, adminID
	return &dto.PaymentSummary{Payment: models.Payment{StudentID: studentID, Amount: req.Amount}, PaymentStatus: models.PaymentStatusPartial}, nil
}

func (f *fakePayments) List(context.Context, int) ([]models.Payment, error) {
	return []models.Payment{}, nil
}

type fakeSections struct{ activeOnly *bool }

func (f *fakeSections) List(_ context.Context, activeOnly bool) ([]dto.SectionResponse, error) {
	f.activeOnly = &activeOnly
	return []dto.SectionResponse{{Name: "Tahfiz", Capacity: 25, Available: 25, Active: true}}, nil
}

func (f *fakeSections) Update(_ context.Context, name string, _ dto.SectionUpdateRequest) (*dto.SectionResponse, error) {
	if name != "Tahfiz" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return &dto.SectionResponse{Name: name}, nil
}

type fakeContacts struct{}

func (fakeContacts) Submit(context.Context, dto.ContactRequest) (*models.ContactMessage, error) {
	return &models.ContactMessage{ID: 8}, nil
}

func (fakeContacts) List(context.Context, models.ContactFilter) ([]models.ContactMessage, *models.Pagination, error) {
	return []models.ContactMessage{}, models.NewPagination(1, 20, 0), nil
}

func (fakeContacts) SetStatus(context.Context, int, dto.ContactStatusRequest) error { return nil }

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "s3cret-pass" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "admin-token", TokenType: "Bearer"}, nil
}

func (fakeAuth) Me(_ context.Context, id int) (*models.AdminInfo, error) {
	return &models.AdminInfo{ID: id, Email: "admin@mbu.school"}, nil
}

func (fakeAuth) ChangePassword(context.Context, int, models.ChangePasswordRequest) error { return nil }

type fakeDashboard struct{}

func (fakeDashboard) Stats(context.Context) (*dto.DashboardStats, bool, error) {
	return &dto.DashboardStats{Students: dto.StudentTotals{Total: 4}}, true, nil
}

type fakeExports struct{ filter models.StudentFilter }

func (f *fakeExports) Students(_ context.Context, filter models.StudentFilter, format string) (*service.ExportFile, error) {
	f.filter = filter
	if format == "xlsx" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of csv, json, pdf")
	}
	return &service.ExportFile{Filename: "students_20260201_100405.csv", ContentType: "text/csv", Data: []byte("Registration ID\nMBU000003\n"), Rows: 1}, nil
}

type routerFixture struct {
	router        *gin.Engine
	registrations *fakeRegistrations
	students      *fakeStudents
	payments      *fakePayments
	sections      *fakeSections
	exports       *fakeExports
}

func newRouterFixture(readyErr error) *routerFixture {
	gin.SetMode(gin.TestMode)
	f := &routerFixture{
		registrations: &fakeRegistrations{},
		students:      &fakeStudents{},
		payments:      &fakePayments{},
		sections:      &fakeSections{},
		exports:       &fakeExports{},
	}
	metrics := service.NewMetricsService()
	f.router = NewRouter(RouterConfig{APIPrefix: "/api/v1", Metrics: metrics, Tokens: fakeTokens{}}, Handlers{
		Registration: NewRegistrationHandler(f.registrations),
		Students:     NewStudentHandler(f.students, "MBU"),
		Payments:     NewPaymentHandler(f.payments, "MBU"),
		Sections:     NewSectionHandler(f.sections),
		Contacts:     NewContactHandler(fakeContacts{}),
		Auth:         NewAuthHandler(fakeAuth{}),
		Dashboard:    NewDashboardHandler(fakeDashboard{}),
		Export:       NewExportHandler(f.exports),
		Metrics: NewMetricsHandler(metrics, map[string]ReadinessCheck{
			"database": func(context.Context) error { return readyErr },
		}),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env testEnvelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRegistrationEndpoint(t *testing.T) {
	f := newRouterFixture(nil)

	rec, env := f.do(t, http.MethodPost, "/api/v1/registrations", "", map[string]interface{}{
		"parentName": "Musa Bello", "phone": "08012345678", "studentName": "Aisha Bello",
		"studentAge": 7, "section": "Primary", "paymentPlan": "Termly Plan",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Registration submitted successfully", env.Message)
	assert.JSONEq(t, `{"registrationId":"MBU000001","studentId":1,"section":"Primary","paymentPlan":"Termly Plan"}`, string(env.Data))

	rec, env = f.do(t, http.MethodPost, "/api/v1/registrations", "", `{"parentName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	f.registrations.err = appErrors.Clone(appErrors.ErrCapacityExceeded, "section Tahfiz is full")
	rec, env = f.do(t, http.MethodPost, "/api/v1/registrations", "", map[string]string{"section": "Tahfiz"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", env.Code)
	assert.Equal(t, "section Tahfiz is full", env.Message)

	f.registrations.err = errors.New("pq: deadlock detected")
	rec, env = f.do(t, http.MethodPost, "/api/v1/registrations", "", map[string]string{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, env.Message, "deadlock")
}

func TestPublicSectionsAreActiveOnly(t *testing.T) {
	f := newRouterFixture(nil)
	rec, env := f.do(t, http.MethodGet, "/api/v1/sections", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.sections.activeOnly)
	assert.True(t, *f.sections.activeOnly)
	assert.Contains(t, string(env.Data), `"Tahfiz"`)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/admin/sections", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *f.sections.activeOnly)

	rec, env = f.do(t, http.MethodPatch, "/api/v1/admin/sections/Chess", "admin-token", map[string]int{"capacity": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(nil)

	rec, env := f.do(t, http.MethodGet, "/api/v1/admin/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	rec, env = f.do(t, http.MethodGet, "/api/v1/admin/students", "forged", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", env.Code)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/admin/students/12/status", "forged", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, f.students.statusID)
}

func TestStudentEndpoints(t *testing.T) {
	f := newRouterFixture(nil)

	rec, env := f.do(t, http.MethodGet, "/api/v1/admin/students?status=Pending&section=Tahfiz&page=2&limit=5&search=bello", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RegistrationStatusPending, f.students.filter.Status)
	assert.Equal(t, 2, f.students.filter.Page)
	assert.Equal(t, 5, f.students.filter.Limit)
	assert.Equal(t, "bello", f.students.filter.Search)
	require.NotNil(t, env.Pagination)
	assert.Contains(t, string(env.Data), `"registration_id":"MBU000003"`)

	rec, env = f.do(t, http.MethodPatch, "/api/v1/admin/students/MBU000012/status", "admin-token", map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, f.students.statusID)
	assert.Equal(t, models.RegistrationStatusApproved, f.students.status)
	assert.Equal(t, "Status updated to approved", env.Message)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/admin/students/abc", "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/admin/students/77", "admin-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentEndpointUsesCallerID(t *testing.T) {
	f := newRouterFixture(nil)

	rec, env := f.do(t, http.MethodPost, "/api/v1/admin/students/12/payments", "admin-token", map[string]interface{}{"amount": "15000", "method": "cash"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 5, f.payments.adminID)
	assert.Equal(t, 12, f.payments.studentID)

	var summary dto.PaymentSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.True(t, decimal.NewFromInt(15000).Equal(summary.Payment.Amount))
}

func TestContactAndAuthEndpoints(t *testing.T) {
	f := newRouterFixture(nil)

	rec, env := f.do(t, http.MethodPost, "/api/v1/contact", "", map[string]string{"name": "Halima"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":8}`, string(env.Data))

	rec, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@mbu.school", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)

	rec, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@mbu.school", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "admin-token")

	rec, env = f.do(t, http.MethodGet, "/api/v1/auth/me", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"id":5`)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/auth/change-password", "admin-token", map[string]string{"old_password": "a", "new_password": "bbbbbbbb"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/admin/contacts/x/status", "admin-token", map[string]string{"status": "read"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardCarriesCacheMeta(t *testing.T) {
	f := newRouterFixture(nil)
	rec, env := f.do(t, http.MethodGet, "/api/v1/admin/dashboard", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestExportEndpoint(t *testing.T) {
	f := newRouterFixture(nil)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/admin/export/students?format=csv&status=approved&page=3", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students_20260201_100405.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get("X-Export-Rows"))
	assert.Contains(t, rec.Body.String(), "MBU000003")
	assert.Equal(t, models.RegistrationStatusApproved, f.exports.filter.Status)
	assert.Zero(t, f.exports.filter.Page)

	rec, env := f.do(t, http.MethodGet, "/api/v1/admin/export/students?format=xlsx", "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	f := newRouterFixture(nil)
	rec, _ := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	rec, env := f.do(t, http.MethodGet, "/api/v1/admin/system", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "requests_total")

	down := newRouterFixture(errors.New("connection refused"))
	rec, _ = down.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
