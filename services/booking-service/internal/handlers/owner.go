package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/md-rashed-zaman/apptcrm/libs/auth"
	"github.com/md-rashed-zaman/apptcrm/libs/httpx"
	"github.com/md-rashed-zaman/apptcrm/libs/validation"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/profile"
)

// Every owner route runs behind auth.RequireOwner, so the business id is always present.
func ownerID(r *http.Request) string {
	return auth.BusinessIDFromContext(r.Context())
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	b, err := h.profiles.GetProfile(r.Context(), ownerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var in profile.ProfileInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.profiles.UpsertProfile(r.Context(), ownerID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.profiles.ListServices(r.Context(), ownerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, services)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var in profile.ServiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	svc, err := h.profiles.CreateService(r.Context(), ownerID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, svc)
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var in profile.ServiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	svc, err := h.profiles.UpdateService(r.Context(), ownerID(r), chi.URLParam(r, "serviceID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.DeleteService(r.Context(), ownerID(r), chi.URLParam(r, "serviceID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAppointments supports ?date=YYYY-MM-DD, ?status= and ?limit=.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.AppointmentFilter{Date: strings.TrimSpace(q.Get("date"))}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		st, err := model.ParseStatus(raw)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.Status = st
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, validation.Field("limit", "must be an integer"))
			return
		}
		filter.Limit = n
	}
	appts, err := h.bookings.ListAppointments(r.Context(), ownerID(r), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appts)
}

// CreateAppointment books on the owner's behalf through the same path as the public page.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var in booking.BookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.BusinessSlug = ""
	in.BusinessID = ownerID(r)
	in.IdempotencyKey = r.Header.Get(HeaderIdempotencyKey)
	h.book(w, r, in)
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	v, err := h.bookings.GetAppointment(r.Context(), ownerID(r), chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	to, err := model.ParseStatus(req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appt, err := h.bookings.Transition(r.Context(), ownerID(r), chi.URLParam(r, "appointmentID"), to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, appt)
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.bookings.Delete(r.Context(), ownerID(r), chi.URLParam(r, "appointmentID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.profiles.ListCustomers(r.Context(), ownerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, customers)
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bookings.Dashboard(r.Context(), ownerID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}
