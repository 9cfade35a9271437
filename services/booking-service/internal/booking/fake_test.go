package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/outbox"
)

type txMarker struct{}

// fakeRepo is an in-memory ledger. WithTx serializes transactions and restores the
// previous state when fn fails.
type fakeRepo struct {
	txMu sync.Mutex

	mu           sync.Mutex
	businesses   map[string]model.Business
	services     map[string]model.Service
	customers    map[string]model.Customer
	appointments map[string]model.Appointment
	idempotency  map[string]model.IdempotencyRecord
	events       []outbox.Event

	failCreateAppointment error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		businesses:   map[string]model.Business{},
		services:     map[string]model.Service{},
		customers:    map[string]model.Customer{},
		appointments: map[string]model.Appointment{},
		idempotency:  map[string]model.IdempotencyRecord{},
	}
}

type snapshot struct {
	customers    map[string]model.Customer
	appointments map[string]model.Appointment
	idempotency  map[string]model.IdempotencyRecord
	events       []outbox.Event
}

func (r *fakeRepo) snapshot() snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := snapshot{
		customers:    make(map[string]model.Customer, len(r.customers)),
		appointments: make(map[string]model.Appointment, len(r.appointments)),
		idempotency:  make(map[string]model.IdempotencyRecord, len(r.idempotency)),
		events:       append([]outbox.Event(nil), r.events...),
	}
	for k, v := range r.customers {
		s.customers[k] = v
	}
	for k, v := range r.appointments {
		s.appointments[k] = v
	}
	for k, v := range r.idempotency {
		s.idempotency[k] = v
	}
	return s
}

func (r *fakeRepo) restore(s snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers, r.appointments, r.idempotency, r.events = s.customers, s.appointments, s.idempotency, s.events
}

func (r *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	r.txMu.Lock()
	defer r.txMu.Unlock()

	before := r.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		r.restore(before)
		return err
	}
	return nil
}

func (r *fakeRepo) GetBusiness(_ context.Context, id string) (model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.businesses[id]
	if !ok {
		return model.Business{}, fmt.Errorf("business: %w", model.ErrNotFound)
	}
	return b, nil
}

func (r *fakeRepo) GetBusinessBySlug(_ context.Context, slug string) (model.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.businesses {
		if b.Slug == slug {
			return b, nil
		}
	}
	return model.Business{}, fmt.Errorf("business: %w", model.ErrNotFound)
}

func (r *fakeRepo) GetService(_ context.Context, businessID, serviceID string) (model.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[serviceID]
	if !ok || s.BusinessID != businessID {
		return model.Service{}, fmt.Errorf("service: %w", model.ErrNotFound)
	}
	return s, nil
}

func (r *fakeRepo) LockBusinessDay(context.Context, string, string) error { return nil }

func (r *fakeRepo) ListActiveAppointments(_ context.Context, businessID, date string) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Appointment
	for _, a := range r.appointments {
		if a.BusinessID == businessID && a.Date == date && a.Status.IsActive() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateAppointment(_ context.Context, appt model.Appointment) (model.Appointment, error) {
	if r.failCreateAppointment != nil {
		return model.Appointment{}, r.failCreateAppointment
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[appt.ID] = appt
	return appt, nil
}

func (r *fakeRepo) GetAppointmentForUpdate(_ context.Context, businessID, id string) (model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.BusinessID != businessID {
		return model.Appointment{}, fmt.Errorf("appointment: %w", model.ErrNotFound)
	}
	return a, nil
}

func (r *fakeRepo) GetAppointmentView(ctx context.Context, businessID, id string) (model.AppointmentView, error) {
	a, err := r.GetAppointmentForUpdate(ctx, businessID, id)
	if err != nil {
		return model.AppointmentView{}, err
	}
	return r.view(a), nil
}

func (r *fakeRepo) view(a model.Appointment) model.AppointmentView {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := model.AppointmentView{Appointment: a}
	if c, ok := r.customers[a.CustomerID]; ok {
		v.Customer = &c
	}
	if s, ok := r.services[a.ServiceID]; ok {
		v.Service = &s
	}
	return v
}

func (r *fakeRepo) UpdateAppointmentStatus(_ context.Context, businessID, id string, status model.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.BusinessID != businessID {
		return model.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = at
	r.appointments[id] = a
	return nil
}

func (r *fakeRepo) DeleteAppointment(_ context.Context, businessID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appointments[id]; !ok || a.BusinessID != businessID {
		return model.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeRepo) ListAppointments(_ context.Context, businessID string, filter model.AppointmentFilter) ([]model.AppointmentView, error) {
	r.mu.Lock()
	var matched []model.Appointment
	for _, a := range r.appointments {
		if a.BusinessID != businessID {
			continue
		}
		if filter.Date != "" && a.Date != filter.Date {
			continue
		}
		if filter.Status != 0 && a.Status != filter.Status {
			continue
		}
		matched = append(matched, a)
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date < matched[j].Date
		}
		return matched[i].Time < matched[j].Time
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	out := make([]model.AppointmentView, 0, len(matched))
	for _, a := range matched {
		out = append(out, r.view(a))
	}
	return out, nil
}

func (r *fakeRepo) DashboardCounts(_ context.Context, businessID, today string, monthStart time.Time) (model.DashboardStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats model.DashboardStats
	seen := map[string]bool{}
	revenue := 0.0
	for _, a := range r.appointments {
		if a.BusinessID != businessID {
			continue
		}
		stats.TotalAppointments++
		if a.Date == today {
			stats.TodayAppointments++
		}
		if c, ok := r.customers[a.CustomerID]; ok && !seen[c.ID] && !c.CreatedAt.Before(monthStart) {
			seen[c.ID] = true
			stats.NewCustomers++
		}
		if a.Status == model.StatusCompleted {
			if s, ok := r.services[a.ServiceID]; ok {
				f, _ := s.Price.Float64()
				revenue += f
			}
		}
	}
	stats.Revenue = fmt.Sprintf("%.2f", revenue)
	return stats, nil
}

func (r *fakeRepo) FindCustomer(_ context.Context, phone, email string) (model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Phone == phone || (email != "" && c.Email == email) {
			return c, nil
		}
	}
	return model.Customer{}, fmt.Errorf("customer: %w", model.ErrNotFound)
}

func (r *fakeRepo) CreateCustomer(_ context.Context, c model.Customer) (model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.customers {
		if existing.Phone == c.Phone {
			return existing, nil
		}
	}
	r.customers[c.ID] = c
	return c, nil
}

func (r *fakeRepo) LockIdempotencyKey(_ context.Context, businessID, key, requestHash string) (model.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := businessID + "/" + key
	rec, ok := r.idempotency[k]
	if !ok {
		rec = model.IdempotencyRecord{RequestHash: requestHash}
		r.idempotency[k] = rec
	}
	return rec, nil
}

func (r *fakeRepo) FinalizeIdempotency(_ context.Context, businessID, key, appointmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := businessID + "/" + key
	rec := r.idempotency[k]
	rec.AppointmentID = appointmentID
	r.idempotency[k] = rec
	return nil
}

// Insert makes fakeRepo its own outbox.
func (r *fakeRepo) Insert(_ context.Context, evt outbox.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *fakeRepo) appointmentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appointments)
}

func (r *fakeRepo) customerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.customers)
}

func (r *fakeRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}
