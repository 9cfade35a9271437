package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/md-rashed-zaman/apptcrm/libs/httpx"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/booking"
)

// HeaderDayClosed marks an empty slot list that comes from a closed day rather than a full one.
const HeaderDayClosed = "X-Day-Closed"

const HeaderIdempotencyKey = "Idempotency-Key"

// GetBusiness serves the public booking page data.
// GET /api/v1/businesses/{slug}
func (h *Handler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetPublicProfile(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

// AvailableSlots returns the bookable "HH:MM" start times.
// GET /api/v1/businesses/{slug}/available-slots?serviceId=&date=
func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.bookings.Slots(r.Context(), booking.SlotsQuery{
		BusinessSlug: chi.URLParam(r, "slug"),
		ServiceID:    strings.TrimSpace(q.Get("serviceId")),
		Date:         strings.TrimSpace(q.Get("date")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	slots := res.Slots
	if slots == nil {
		slots = []string{}
	}
	if res.Closed {
		w.Header().Set(HeaderDayClosed, "true")
	}
	httpx.WriteJSON(w, http.StatusOK, slots)
}

// Book creates a Pending appointment for a visitor of the public page.
// POST /api/v1/businesses/{slug}/book
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var in booking.BookInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.BusinessSlug = chi.URLParam(r, "slug")
	in.BusinessID = ""
	in.IdempotencyKey = r.Header.Get(HeaderIdempotencyKey)
	h.book(w, r, in)
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request, in booking.BookInput) {
	res, err := h.bookings.Book(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Replayed {
		w.Header().Set("Idempotency-Replayed", "true")
		status = http.StatusOK
	}
	httpx.WriteJSON(w, status, res.Appointment)
}
