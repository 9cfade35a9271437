package booking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/md-rashed-zaman/apptcrm/libs/validation"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/outbox"
)

type BookInput struct {
	// Exactly one of BusinessSlug (public page) or BusinessID (owner) is set.
	BusinessSlug string `json:"-"`
	BusinessID   string `json:"-"`

	ServiceID     string `json:"serviceId" validate:"required"`
	Date          string `json:"date" validate:"required,isodate"`
	Time          string `json:"time" validate:"required,hhmm"`
	CustomerName  string `json:"customerName" validate:"required,max=200"`
	CustomerPhone string `json:"customerPhone" validate:"required,phone"`
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email,max=320"`
	Notes         string `json:"notes" validate:"max=2000"`

	IdempotencyKey string `json:"-" validate:"max=200"`
}

func (in *BookInput) normalize() {
	in.BusinessSlug = strings.ToLower(strings.TrimSpace(in.BusinessSlug))
	in.BusinessID = strings.TrimSpace(in.BusinessID)
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.Notes = strings.TrimSpace(in.Notes)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
}

// requestHash fingerprints the booking fields so a reused idempotency key can be told
// apart from a retry. Call after normalize.
func (in BookInput) requestHash(start string) string {
	b, _ := json.Marshal([]string{
		in.ServiceID,
		in.Date,
		start,
		in.CustomerName,
		model.NormalizePhone(in.CustomerPhone),
		strings.ToLower(in.CustomerEmail),
		in.Notes,
	})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

type BookResult struct {
	Appointment model.AppointmentView
	// Replayed is set when an earlier request with the same idempotency key already booked.
	Replayed bool
}

type bookedPayload struct {
	AppointmentID   string `json:"appointmentId"`
	BusinessID      string `json:"businessId"`
	CustomerID      string `json:"customerId"`
	ServiceID       string `json:"serviceId"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
}

// Book validates and commits a Pending appointment. The slot is re-checked against the
// ledger under a per-business-day lock, so at most one of several concurrent requests for
// overlapping times succeeds and the rest get model.ErrConflict.
func (s *Service) Book(ctx context.Context, in BookInput) (res BookResult, err error) {
	in.normalize()
	ctx, span := s.startSpan(ctx, "booking.Book",
		attribute.String("business.slug", in.BusinessSlug),
		attribute.String("appointment.date", in.Date),
		attribute.String("appointment.time", in.Time),
	)
	defer func() {
		if !res.Replayed {
			s.metrics.ObserveBooking(err)
		}
		endSpan(span, err)
	}()

	if in.BusinessSlug == "" && in.BusinessID == "" {
		return BookResult{}, validation.Field("business", "is required")
	}
	if err := s.validator.Validate(in); err != nil {
		return BookResult{}, err
	}
	day, err := model.ParseDate(in.Date)
	if err != nil {
		return BookResult{}, err
	}
	start, err := model.At(day, in.Time)
	if err != nil {
		return BookResult{}, validation.Field("time", "must be a time in HH:MM format")
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		biz, err := s.resolveBusiness(ctx, in)
		if err != nil {
			return err
		}

		if in.IdempotencyKey != "" {
			hash := in.requestHash(start.Format("15:04"))
			prior, err := s.repo.LockIdempotencyKey(ctx, biz.ID, in.IdempotencyKey, hash)
			if err != nil {
				return fmt.Errorf("lock idempotency key: %w", err)
			}
			if prior.RequestHash != "" && prior.RequestHash != hash {
				return model.ErrIdempotencyReused
			}
			if prior.AppointmentID != "" {
				// An appointment deleted since the first request replays as not found.
				view, err := s.repo.GetAppointmentView(ctx, biz.ID, prior.AppointmentID)
				if err != nil {
					return fmt.Errorf("replay idempotency key: %w", err)
				}
				res = BookResult{Appointment: view, Replayed: true}
				return nil
			}
		}

		svc, err := s.repo.GetService(ctx, biz.ID, in.ServiceID)
		if err != nil {
			return err
		}

		if err := s.repo.LockBusinessDay(ctx, biz.ID, in.Date); err != nil {
			return fmt.Errorf("lock business day: %w", err)
		}
		active, err := s.repo.ListActiveAppointments(ctx, biz.ID, in.Date)
		if err != nil {
			return err
		}
		if err := availability.CheckSlot(biz.WorkingHours, day, start, svc.Duration(), availability.BusyIntervals(day, active)); err != nil {
			return err
		}

		customer, err := s.findOrCreateCustomer(ctx, in.CustomerName, in.CustomerPhone, in.CustomerEmail)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		appt, err := s.repo.CreateAppointment(ctx, model.Appointment{
			ID:              uuid.NewString(),
			BusinessID:      biz.ID,
			CustomerID:      customer.ID,
			ServiceID:       svc.ID,
			Date:            in.Date,
			Time:            start.Format("15:04"),
			DurationMinutes: svc.DurationMinutes,
			Status:          model.StatusPending,
			Notes:           in.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		evt, err := outbox.NewEvent(outbox.TypeAppointmentBooked, appt.ID, bookedPayload{
			AppointmentID:   appt.ID,
			BusinessID:      appt.BusinessID,
			CustomerID:      appt.CustomerID,
			ServiceID:       appt.ServiceID,
			Date:            appt.Date,
			Time:            appt.Time,
			DurationMinutes: appt.DurationMinutes,
			Status:          appt.Status.String(),
		})
		if err != nil {
			return err
		}
		if err := s.events.Insert(ctx, evt); err != nil {
			return fmt.Errorf("write outbox event: %w", err)
		}

		if in.IdempotencyKey != "" {
			if err := s.repo.FinalizeIdempotency(ctx, biz.ID, in.IdempotencyKey, appt.ID); err != nil {
				return fmt.Errorf("finalize idempotency key: %w", err)
			}
		}

		res = BookResult{Appointment: model.AppointmentView{Appointment: appt, Customer: &customer, Service: &svc}}
		return nil
	})
	if err != nil {
		s.logBookingFailure(in, err)
		return BookResult{}, err
	}

	a := res.Appointment
	s.logger.Info("appointment booked",
		"appointment_id", a.ID,
		"business_id", a.BusinessID,
		"date", a.Date,
		"time", a.Time,
		"replayed", res.Replayed,
	)
	return res, nil
}

func (s *Service) resolveBusiness(ctx context.Context, in BookInput) (model.Business, error) {
	if in.BusinessID != "" {
		return s.repo.GetBusiness(ctx, in.BusinessID)
	}
	return s.repo.GetBusinessBySlug(ctx, in.BusinessSlug)
}

func (s *Service) logBookingFailure(in BookInput, err error) {
	attrs := []any{"business_slug", in.BusinessSlug, "business_id", in.BusinessID, "date", in.Date, "time", in.Time, "err", err}
	switch {
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrClosedDay):
		s.logger.Warn("booking rejected", attrs...)
	case isBusinessOutcome(err):
		s.logger.Info("booking rejected", attrs...)
	default:
		s.logger.Error("booking failed", attrs...)
	}
}
