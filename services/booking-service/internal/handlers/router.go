package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/md-rashed-zaman/apptcrm/libs/auth"
	"github.com/md-rashed-zaman/apptcrm/libs/httpx"
)

type RouterConfig struct {
	JWTSecret string
	// PublicLimiter guards the anonymous booking page routes. Nil disables it.
	PublicLimiter httpx.Middleware
}

// Routes mounts the public and owner APIs under /api/v1.
func (h *Handler) Routes(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/businesses/{slug}", func(r chi.Router) {
			if cfg.PublicLimiter != nil {
				r.Use(cfg.PublicLimiter)
			}
			r.Get("/", h.GetBusiness)
			r.Get("/available-slots", h.AvailableSlots)
			r.Post("/book", h.Book)
		})

		r.Route("/owner", func(r chi.Router) {
			r.Use(auth.RequireOwner(cfg.JWTSecret))

			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpsertProfile)

			r.Get("/services", h.ListServices)
			r.Post("/services", h.CreateService)
			r.Put("/services/{serviceID}", h.UpdateService)
			r.Delete("/services/{serviceID}", h.DeleteService)

			r.Get("/appointments", h.ListAppointments)
			r.Post("/appointments", h.CreateAppointment)
			r.Get("/appointments/{appointmentID}", h.GetAppointment)
			r.Patch("/appointments/{appointmentID}/status", h.UpdateAppointmentStatus)
			r.Delete("/appointments/{appointmentID}", h.DeleteAppointment)

			r.Get("/customers", h.ListCustomers)
			r.Get("/dashboard/stats", h.DashboardStats)
		})
	})
	return r
}
