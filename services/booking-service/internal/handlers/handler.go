// Package handlers is the HTTP surface: the public booking page API and the owner API.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/apptcrm/libs/httpx"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/profile"
)

type Bookings interface {
	Slots(ctx context.Context, q booking.SlotsQuery) (availability.Result, error)
	Book(ctx context.Context, in booking.BookInput) (booking.BookResult, error)
	Transition(ctx context.Context, businessID, appointmentID string, to model.Status) (model.Appointment, error)
	Delete(ctx context.Context, businessID, appointmentID string) error
	ListAppointments(ctx context.Context, businessID string, filter model.AppointmentFilter) ([]model.AppointmentView, error)
	GetAppointment(ctx context.Context, businessID, appointmentID string) (model.AppointmentView, error)
	Dashboard(ctx context.Context, businessID string) (model.DashboardStats, error)
}

type Profiles interface {
	GetPublicProfile(ctx context.Context, slug string) (model.PublicProfile, error)
	GetProfile(ctx context.Context, businessID string) (model.Business, error)
	UpsertProfile(ctx context.Context, businessID string, in profile.ProfileInput) (model.Business, error)
	ListServices(ctx context.Context, businessID string) ([]model.Service, error)
	CreateService(ctx context.Context, businessID string, in profile.ServiceInput) (model.Service, error)
	UpdateService(ctx context.Context, businessID, serviceID string, in profile.ServiceInput) (model.Service, error)
	DeleteService(ctx context.Context, businessID, serviceID string) error
	ListCustomers(ctx context.Context, businessID string) ([]model.Customer, error)
}

type Handler struct {
	bookings Bookings
	profiles Profiles
	logger   *slog.Logger
}

func New(bookings Bookings, profiles Profiles, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{bookings: bookings, profiles: profiles, logger: logger}
}

// writeError maps domain outcomes to status codes. Anything unrecognized is logged and
// reported as a bare 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{Error: "validation failed", Code: "validation_error", Fields: verr.Fields})
	case errors.Is(err, httpx.ErrBadJSON):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, model.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, model.ErrSlugTaken):
		httpx.WriteError(w, http.StatusConflict, "slug_taken", "slug is already in use")
	case errors.Is(err, model.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", "time slot is no longer available")
	case errors.Is(err, model.ErrClosedDay):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "closed_day", "business is closed on that day")
	case errors.Is(err, model.ErrIdempotencyReused):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "idempotency_key_reused", "idempotency key was already used for a different request")
	case errors.Is(err, model.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(w, http.StatusServiceUnavailable, "timeout", "request timed out")
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", httpx.RequestIDFromContext(r.Context()),
			"err", err,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
