package booking

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/outbox"
)

type statusChangedPayload struct {
	AppointmentID string    `json:"appointmentId"`
	BusinessID    string    `json:"businessId"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ChangedAt     time.Time `json:"changedAt"`
}

type deletedPayload struct {
	AppointmentID string `json:"appointmentId"`
	BusinessID    string `json:"businessId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
}

// Transition moves an appointment owned by businessID to status to. Illegal moves return
// model.ErrInvalidTransition and leave the stored status unchanged.
func (s *Service) Transition(ctx context.Context, businessID, appointmentID string, to model.Status) (appt model.Appointment, err error) {
	ctx, span := s.startSpan(ctx, "booking.Transition",
		attribute.String("appointment.id", appointmentID),
		attribute.String("appointment.to", to.String()),
	)
	defer func() {
		s.metrics.ObserveTransition(to, err)
		endSpan(span, err)
	}()

	if !to.Valid() {
		return model.Appointment{}, &model.ValidationError{Fields: map[string]string{"status": "is invalid"}}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetAppointmentForUpdate(ctx, businessID, appointmentID)
		if err != nil {
			return err
		}
		from := current.Status
		if !from.CanTransitionTo(to) {
			return fmt.Errorf("%w: %s to %s", model.ErrInvalidTransition, from, to)
		}

		now := s.clock.Now()
		if err := s.repo.UpdateAppointmentStatus(ctx, businessID, appointmentID, to, now); err != nil {
			return err
		}

		evt, err := outbox.NewEvent(outbox.TypeAppointmentStatusChanged, appointmentID, statusChangedPayload{
			AppointmentID: appointmentID,
			BusinessID:    businessID,
			From:          from.String(),
			To:            to.String(),
			ChangedAt:     now,
		})
		if err != nil {
			return err
		}
		if err := s.events.Insert(ctx, evt); err != nil {
			return fmt.Errorf("write outbox event: %w", err)
		}

		current.Status = to
		current.UpdatedAt = now
		appt = current
		return nil
	})
	if err != nil {
		return model.Appointment{}, err
	}

	s.logger.Info("appointment status changed", "appointment_id", appointmentID, "business_id", businessID, "status", to.String())
	return appt, nil
}

// Delete hard-removes an appointment in any state.
func (s *Service) Delete(ctx context.Context, businessID, appointmentID string) (err error) {
	ctx, span := s.startSpan(ctx, "booking.Delete", attribute.String("appointment.id", appointmentID))
	defer func() { endSpan(span, err) }()

	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetAppointmentForUpdate(ctx, businessID, appointmentID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteAppointment(ctx, businessID, appointmentID); err != nil {
			return err
		}
		evt, err := outbox.NewEvent(outbox.TypeAppointmentDeleted, appointmentID, deletedPayload{
			AppointmentID: current.ID,
			BusinessID:    current.BusinessID,
			Date:          current.Date,
			Time:          current.Time,
			Status:        current.Status.String(),
		})
		if err != nil {
			return err
		}
		return s.events.Insert(ctx, evt)
	})
	if err != nil {
		return err
	}
	s.logger.Info("appointment deleted", "appointment_id", appointmentID, "business_id", businessID)
	return nil
}
