package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/mbu-admin-api/internal/models"
	"github.com/noah-isme/mbu-admin-api/pkg/jobs"
	"github.com/noah-isme/mbu-admin-api/pkg/mailer"
)

const emailJobType = "email"

// EmailPayload is the body of a queued email job.
type EmailPayload struct {
	To      string
	Subject string
	Body    string
}

// NotificationConfig identifies the sender side of outgoing mail.
type NotificationConfig struct {
	SchoolName string
	SchoolCode string
	AdminEmail string
	Queue      jobs.QueueConfig
}

// NotificationService renders school emails and delivers them in the background.
type NotificationService struct {
	notifier mailer.Notifier
	queue    *jobs.Queue
	metrics  *MetricsService
	cfg      NotificationConfig
	logger   *zap.Logger
}

// NewNotificationService builds the service and its delivery queue. The queue
// must be started before notifications are accepted.
func NewNotificationService(notifier mailer.Notifier, cfg NotificationConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SchoolName == "" {
		cfg.SchoolName = "MBU Islamic School"
	}
	svc := &NotificationService{notifier: notifier, metrics: metrics, cfg: cfg, logger: logger}

	qcfg := cfg.Queue
	qcfg.Logger = logger
	qcfg.OnResult = svc.recordResult
	svc.queue = jobs.NewQueue("notifications", svc.deliver, qcfg)
	return svc
}

// Start begins background delivery.
func (s *NotificationService) Start(ctx context.Context) error {
	return s.queue.Start(ctx)
}

// Stop waits for in-flight deliveries and stops the queue.
func (s *NotificationService) Stop(ctx context.Context) {
	s.queue.Stop(ctx)
}

// RegistrationConfirmed queues the confirmation email for a new registration.
// Students without an email address are skipped.
func (s *NotificationService) RegistrationConfirmed(student models.Student) error {
	if student.Email == nil || *student.Email == "" {
		return nil
	}
	regID := models.FormatRegistrationID(s.cfg.SchoolCode, student.ID)
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", student.ParentName)
	fmt.Fprintf(&b, "Thank you for registering %s with %s.\n\n", student.StudentName, s.cfg.SchoolName)
	fmt.Fprintf(&b, "Registration ID: %s\n", regID)
	fmt.Fprintf(&b, "Section: %s\n", student.Section)
	fmt.Fprintf(&b, "Payment plan: %s\n\n", student.PaymentPlan)
	b.WriteString("Your registration is pending review. We will contact you once it has been processed.\n\n")
	fmt.Fprintf(&b, "%s Admissions\n", s.cfg.SchoolName)

	return s.enqueue(*student.Email, fmt.Sprintf("%s registration received (%s)", s.cfg.SchoolName, regID), b.String())
}

// StatusChanged queues an email telling the parent about a review decision.
func (s *NotificationService) StatusChanged(student models.Student) error {
	if student.Email == nil || *student.Email == "" {
		return nil
	}
	regID := models.FormatRegistrationID(s.cfg.SchoolCode, student.ID)
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", student.ParentName)
	switch student.Status {
	case models.RegistrationStatusApproved:
		fmt.Fprintf(&b, "We are pleased to confirm that the registration of %s for the %s section has been approved.\n", student.StudentName, student.Section)
	case models.RegistrationStatusRejected:
		fmt.Fprintf(&b, "We regret that the registration of %s for the %s section could not be accepted.\n", student.StudentName, student.Section)
	default:
		fmt.Fprintf(&b, "The registration of %s for the %s section is pending review.\n", student.StudentName, student.Section)
	}
	fmt.Fprintf(&b, "\nRegistration ID: %s\n\n%s Admissions\n", regID, s.cfg.SchoolName)

	return s.enqueue(*student.Email, fmt.Sprintf("Registration %s is %s", regID, student.Status), b.String())
}

// ContactReceived acknowledges a contact message and alerts the admin inbox.
// Both deliveries are attempted; the first enqueue failure is returned.
func (s *NotificationService) ContactReceived(msg models.ContactMessage) error {
	ack := fmt.Sprintf("Dear %s,\n\nWe have received your message \"%s\" and will reply shortly.\n\n%s\n",
		msg.Name, msg.Subject, s.cfg.SchoolName)
	firstErr := s.enqueue(msg.Email, "We received your message", ack)

	if s.cfg.AdminEmail != "" {
		phone := "-"
		if msg.Phone != nil {
			phone = *msg.Phone
		}
		alert := fmt.Sprintf("New contact message #%d\n\nFrom: %s <%s>\nPhone: %s\nSubject: %s\n\n%s\n",
			msg.ID, msg.Name, msg.Email, phone, msg.Subject, msg.Message)
		if err := s.enqueue(s.cfg.AdminEmail, "New contact message: "+msg.Subject, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *NotificationService) enqueue(to, subject, body string) error {
	err := s.queue.Enqueue(jobs.Job{Type: emailJobType, Payload: EmailPayload{To: to, Subject: subject, Body: body}})
	if err != nil {
		s.metrics.RecordNotification(OutcomeDropped)
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(EmailPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	return s.notifier.Send(ctx, payload.To, payload.Subject, payload.Body)
}

func (s *NotificationService) recordResult(job jobs.Job, err error) {
	if err != nil {
		s.metrics.RecordNotification(OutcomeFailed)
		s.logger.Error("email delivery failed", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err))
		return
	}
	s.metrics.RecordNotification(OutcomeSent)
}
