package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

// BookingMetrics counts booking outcomes, lifecycle transitions and slot resolution latency.
// A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	slotLatency      prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apptcrm",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apptcrm",
			Subsystem: "booking",
			Name:      "status_transitions_total",
			Help:      "Appointment status changes by target status and outcome",
		}, []string{"to", "outcome"}),
		slotLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apptcrm",
			Subsystem: "booking",
			Name:      "slot_resolution_seconds",
			Help:      "Latency of available slot resolution",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.transitionsTotal, m.slotLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(err error) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(Outcome(err)).Inc()
}

func (m *BookingMetrics) ObserveTransition(to model.Status, err error) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(to.String(), Outcome(err)).Inc()
}

func (m *BookingMetrics) ObserveSlotResolution(d time.Duration) {
	if m == nil {
		return
	}
	m.slotLatency.Observe(d.Seconds())
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	case errors.Is(err, model.ErrClosedDay):
		return "closed_day"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, model.ErrIdempotencyReused):
		return "idempotency_reused"
	default:
		return "error"
	}
}
