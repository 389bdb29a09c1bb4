package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/internal/dto"
	"github.com/noah-isme/mbu-admin-api/internal/models"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
)

const recentRegistrationLimit = 5

type dashboardStudentSource interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountByPaymentStatus(ctx context.Context) (map[string]int, error)
	Recent(ctx context.Context, limit int) ([]models.Student, error)
}

type dashboardSectionSource interface {
	List(ctx context.Context, activeOnly bool) ([]models.Section, error)
}

type dashboardContactSource interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students   dashboardStudentSource
	Sections   dashboardSectionSource
	Contacts   dashboardContactSource
	Cache      *CacheService
	Metrics    *MetricsService
	CacheTTL   time.Duration
	SchoolCode string
	Logger     *zap.Logger
}

// DashboardService composes the admin overview and caches it.
type DashboardService struct {
	students   dashboardStudentSource
	sections   dashboardSectionSource
	contacts   dashboardContactSource
	cache      *CacheService
	metrics    *MetricsService
	ttl        time.Duration
	schoolCode string
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(p DashboardServiceParams) *DashboardService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &DashboardService{
		students:   p.Students,
		sections:   p.Sections,
		contacts:   p.Contacts,
		cache:      p.Cache,
		metrics:    p.Metrics,
		ttl:        p.CacheTTL,
		schoolCode: p.SchoolCode,
		logger:     p.Logger,
		now:        time.Now,
	}
}

// Stats returns the dashboard payload and whether it came from cache.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, bool, error) {
	var cached dto.DashboardStats
	if s.cache.Get(ctx, DashboardStatsKey, &cached) {
		return &cached, true, nil
	}

	stats, err := s.build(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	s.cache.Set(ctx, DashboardStatsKey, stats, s.ttl)
	return stats, false, nil
}

func (s *DashboardService) build(ctx context.Context) (*dto.DashboardStats, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("dashboard_stats", time.Since(start)) }()

	byStatus, err := s.students.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPayment, err := s.students.CountByPaymentStatus(ctx)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	sections, err := s.sections.List(ctx, false)
	if err != nil {
		return nil, err
	}
	recent, err := s.students.Recent(ctx, recentRegistrationLimit)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStats{
		Students: dto.StudentTotals{
			Pending:  byStatus[string(models.RegistrationStatusPending)],
			Approved: byStatus[string(models.RegistrationStatusApproved)],
			Rejected: byStatus[string(models.RegistrationStatusRejected)],
		},
		PaymentStatus:       withKeys(byPayment, string(models.PaymentStatusUnpaid), string(models.PaymentStatusPartial), string(models.PaymentStatusPaid)),
		Contacts:            withKeys(contacts, string(models.ContactStatusUnread), string(models.ContactStatusRead), string(models.ContactStatusReplied)),
		Sections:            make([]dto.SectionOccupancy, len(sections)),
		RecentRegistrations: dto.NewStudentResponses(s.schoolCode, recent),
		GeneratedAt:         s.now().UTC(),
	}
	for _, n := range byStatus {
		stats.Students.Total += n
	}
	for i, sec := range sections {
		stats.Sections[i] = dto.NewSectionOccupancy(sec)
	}
	return stats, nil
}

func withKeys(counts map[string]int, keys ...string) map[string]int {
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		out[k] = counts[k]
	}
	return out
}
