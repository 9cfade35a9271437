// Package booking owns the appointment ledger rules: slot resolution, the booking
// transaction, customer identity resolution and the owner-driven lifecycle.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/md-rashed-zaman/apptcrm/libs/clock"
	"github.com/md-rashed-zaman/apptcrm/libs/validation"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/metrics"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/outbox"
)

// Repository is the ledger store. Methods called inside WithTx must join the transaction
// carried on ctx.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	GetBusiness(ctx context.Context, id string) (model.Business, error)
	GetBusinessBySlug(ctx context.Context, slug string) (model.Business, error)
	GetService(ctx context.Context, businessID, serviceID string) (model.Service, error)

	// LockBusinessDay serializes writers for one business and date until the transaction ends.
	LockBusinessDay(ctx context.Context, businessID, date string) error
	ListActiveAppointments(ctx context.Context, businessID, date string) ([]model.Appointment, error)
	CreateAppointment(ctx context.Context, appt model.Appointment) (model.Appointment, error)
	GetAppointmentForUpdate(ctx context.Context, businessID, appointmentID string) (model.Appointment, error)
	GetAppointmentView(ctx context.Context, businessID, appointmentID string) (model.AppointmentView, error)
	UpdateAppointmentStatus(ctx context.Context, businessID, appointmentID string, status model.Status, at time.Time) error
	DeleteAppointment(ctx context.Context, businessID, appointmentID string) error
	ListAppointments(ctx context.Context, businessID string, filter model.AppointmentFilter) ([]model.AppointmentView, error)
	DashboardCounts(ctx context.Context, businessID, today string, monthStart time.Time) (model.DashboardStats, error)

	FindCustomer(ctx context.Context, phone, email string) (model.Customer, error)
	// CreateCustomer returns the stored row, which is the existing one when phone already exists.
	CreateCustomer(ctx context.Context, c model.Customer) (model.Customer, error)

	// LockIdempotencyKey claims key for businessID, recording requestHash on first use, and
	// returns what the first request stored under it.
	LockIdempotencyKey(ctx context.Context, businessID, key, requestHash string) (model.IdempotencyRecord, error)
	FinalizeIdempotency(ctx context.Context, businessID, key, appointmentID string) error
}

type EventWriter interface {
	Insert(ctx context.Context, evt outbox.Event) error
}

type Config struct {
	SlotStep time.Duration
	// Location decides what "today" means for dashboard stats.
	Location *time.Location
}

type Service struct {
	repo      Repository
	events    EventWriter
	clock     clock.Clock
	validator *validation.Validator
	metrics   *metrics.BookingMetrics
	logger    *slog.Logger
	tracer    trace.Tracer
	step      time.Duration
	loc       *time.Location
}

func NewService(repo Repository, events EventWriter, clk clock.Clock, logger *slog.Logger, m *metrics.BookingMetrics, cfg Config) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SlotStep <= 0 {
		cfg.SlotStep = availability.DefaultStep
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		repo:      repo,
		events:    events,
		clock:     clk,
		validator: validation.New(),
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("booking-service/booking"),
		step:      cfg.SlotStep,
		loc:       cfg.Location,
	}
}

type SlotsQuery struct {
	BusinessSlug string `json:"-" validate:"required"`
	ServiceID    string `json:"serviceId" validate:"required"`
	Date         string `json:"date" validate:"required,isodate"`
}

// Slots resolves the bookable start times for one service on one date. Reads are not
// serialized with writers; Book re-checks the chosen slot.
func (s *Service) Slots(ctx context.Context, q SlotsQuery) (availability.Result, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveSlotResolution(time.Since(start)) }()

	q.BusinessSlug = strings.ToLower(strings.TrimSpace(q.BusinessSlug))
	q.ServiceID = strings.TrimSpace(q.ServiceID)
	q.Date = strings.TrimSpace(q.Date)
	if err := s.validator.Validate(q); err != nil {
		return availability.Result{}, err
	}
	day, err := model.ParseDate(q.Date)
	if err != nil {
		return availability.Result{}, err
	}

	biz, err := s.repo.GetBusinessBySlug(ctx, q.BusinessSlug)
	if err != nil {
		return availability.Result{}, err
	}
	svc, err := s.repo.GetService(ctx, biz.ID, q.ServiceID)
	if err != nil {
		return availability.Result{}, err
	}
	appts, err := s.repo.ListActiveAppointments(ctx, biz.ID, q.Date)
	if err != nil {
		return availability.Result{}, err
	}
	return availability.Resolve(biz.WorkingHours, day, svc.Duration(), s.step, availability.BusyIntervals(day, appts)), nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan marks only unexpected failures as span errors.
func endSpan(span trace.Span, err error) {
	if err != nil && !isBusinessOutcome(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isBusinessOutcome(err error) bool {
	return errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrConflict) ||
		errors.Is(err, model.ErrClosedDay) ||
		errors.Is(err, model.ErrValidation) ||
		errors.Is(err, model.ErrInvalidTransition) ||
		errors.Is(err, model.ErrIdempotencyReused)
}
