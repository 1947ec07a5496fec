package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/salon-call-agent/internal/business"
	"github.com/wolfman30/salon-call-agent/internal/notify"
	"github.com/wolfman30/salon-call-agent/internal/observability/metrics"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// Hours validates appointment times. *business.Catalog satisfies it.
type Hours interface {
	At(date, clock string) (time.Time, error)
	CheckOpen(t time.Time) error
	HoursOn(t time.Time) string
}

// Notifier delivers a committed appointment to the team.
type Notifier interface {
	NotifyAppointment(ctx context.Context, appt notify.Appointment) error
}

// Committer is what the HTTP layer needs from Service.
type Committer interface {
	Commit(ctx context.Context, req Request) (*Appointment, error)
}

// Deps are the collaborators of Service. Hours, Notifier and Repository are
// required.
type Deps struct {
	Hours        Hours
	Notifier     Notifier
	Repository   Repository
	Reservations Reservations
	DedupeTTL    time.Duration
	Metrics      *metrics.DialogueMetrics
	Logger       *logging.Logger
	Tracer       trace.Tracer
}

// Service commits appointment requests: normalize, validate, check opening
// hours, dedupe, mail the team, persist.
type Service struct {
	hours        Hours
	notifier     Notifier
	repo         Repository
	reservations Reservations
	dedupeTTL    time.Duration
	metrics      *metrics.DialogueMetrics
	logger       *logging.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

const defaultDedupeTTL = 10 * time.Minute

// NewService wires a committer.
func NewService(d Deps) *Service {
	if d.Hours == nil || d.Notifier == nil || d.Repository == nil {
		panic("appointments: hours, notifier and repository are required")
	}
	if d.Reservations == nil {
		d.Reservations = NewMemoryReservations()
	}
	if d.DedupeTTL <= 0 {
		d.DedupeTTL = defaultDedupeTTL
	}
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	if d.Tracer == nil {
		d.Tracer = otel.Tracer("salon.internal.appointments")
	}
	return &Service{
		hours:        d.Hours,
		notifier:     d.Notifier,
		repo:         d.Repository,
		reservations: d.Reservations,
		dedupeTTL:    d.DedupeTTL,
		metrics:      d.Metrics,
		logger:       d.Logger,
		tracer:       d.Tracer,
		now:          time.Now,
	}
}

// Commit validates and delivers one appointment request. Validation
// failures are *ValidationError (wrapping ErrInvalidRequest); a repeated
// request within the dedupe window is ErrDuplicate; a failed mail is
// ErrDelivery. A failed insert after a successful mail is logged only, the
// team already has the request.
func (s *Service) Commit(ctx context.Context, req Request) (*Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "appointments.commit")
	defer span.End()

	appt, status, err := s.commit(ctx, req)
	s.metrics.ObserveCommit(status)
	span.SetAttributes(attribute.String("appointments.status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		return nil, err
	}
	return appt, nil
}

func (s *Service) commit(ctx context.Context, req Request) (*Appointment, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "invalid", err
	}

	at, err := s.hours.At(req.Date, req.Time)
	if err != nil {
		return nil, "invalid", &ValidationError{Field: "date", Reason: "Ungültiges Datum."}
	}
	if err := s.hours.CheckOpen(at); err != nil {
		switch {
		case errors.Is(err, business.ErrClosed):
			return nil, "closed", &ValidationError{Field: "date", Reason: "An diesem Tag geschlossen."}
		case errors.Is(err, business.ErrOutsideHours):
			return nil, "closed", &ValidationError{
				Field:  "time",
				Reason: fmt.Sprintf("Außerhalb der Öffnungszeiten (%s).", s.hours.HoursOn(at)),
			}
		default:
			return nil, "error", fmt.Errorf("appointments: check hours: %w", err)
		}
	}

	key := Fingerprint(req)
	reserved, err := s.reservations.Reserve(ctx, key, s.dedupeTTL)
	if err != nil {
		// Without the dedupe store a commit is still better than none.
		s.logger.Warn("appointments: reservation unavailable", "error", err)
		reserved = true
	}
	if !reserved {
		return nil, "duplicate", ErrDuplicate
	}

	appt := &Appointment{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Date:         req.Date,
		Time:         req.Time,
		Contact:      req.Contact,
		Email:        req.Email,
		Phone:        req.Phone,
		Service:      req.Service,
		Notes:        req.Notes,
		Source:       req.Source,
		ScheduledFor: at.UTC(),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.notifier.NotifyAppointment(ctx, toNotice(appt)); err != nil {
		if relErr := s.reservations.Release(ctx, key); relErr != nil {
			s.logger.Warn("appointments: release reservation failed", "error", relErr)
		}
		s.logger.Error("appointments: delivery failed", "error", err, "appointment_id", appt.ID)
		return nil, "delivery_failed", fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		s.logger.Error("appointments: persist failed", "error", err, "appointment_id", appt.ID)
	}

	s.logger.Info("appointment committed", "appointment_id", appt.ID, "source", appt.Source, "date", appt.Date)
	return appt, "sent", nil
}

func toNotice(a *Appointment) notify.Appointment {
	return notify.Appointment{
		ID:      a.ID,
		Name:    a.Name,
		Date:    a.Date,
		Time:    a.Time,
		Contact: a.Contact,
		Email:   a.Email,
		Phone:   a.Phone,
		Service: a.Service,
		Notes:   a.Notes,
	}
}

var _ Committer = (*Service)(nil)
