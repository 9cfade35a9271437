package handlers

import (
	"context"
	"errors"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/profile"
)

var errUnexpected = errors.New("unexpected call")

type stubBookings struct {
	slots      func(booking.SlotsQuery) (availability.Result, error)
	book       func(booking.BookInput) (booking.BookResult, error)
	transition func(businessID, id string, to model.Status) (model.Appointment, error)
	del        func(businessID, id string) error
	list       func(businessID string, f model.AppointmentFilter) ([]model.AppointmentView, error)
	get        func(businessID, id string) (model.AppointmentView, error)
	dashboard  func(businessID string) (model.DashboardStats, error)
}

func (s *stubBookings) Slots(_ context.Context, q booking.SlotsQuery) (availability.Result, error) {
	if s.slots == nil {
		return availability.Result{}, errUnexpected
	}
	return s.slots(q)
}

func (s *stubBookings) Book(_ context.Context, in booking.BookInput) (booking.BookResult, error) {
	if s.book == nil {
		return booking.BookResult{}, errUnexpected
	}
	return s.book(in)
}

func (s *stubBookings) Transition(_ context.Context, businessID, id string, to model.Status) (model.Appointment, error) {
	if s.transition == nil {
		return model.Appointment{}, errUnexpected
	}
	return s.transition(businessID, id, to)
}

func (s *stubBookings) Delete(_ context.Context, businessID, id string) error {
	if s.del == nil {
		return errUnexpected
	}
	return s.del(businessID, id)
}

func (s *stubBookings) ListAppointments(_ context.Context, businessID string, f model.AppointmentFilter) ([]model.AppointmentView, error) {
	if s.list == nil {
		return nil, errUnexpected
	}
	return s.list(businessID, f)
}

func (s *stubBookings) GetAppointment(_ context.Context, businessID, id string) (model.AppointmentView, error) {
	if s.get == nil {
		return model.AppointmentView{}, errUnexpected
	}
	return s.get(businessID, id)
}

func (s *stubBookings) Dashboard(_ context.Context, businessID string) (model.DashboardStats, error) {
	if s.dashboard == nil {
		return model.DashboardStats{}, errUnexpected
	}
	return s.dashboard(businessID)
}

type stubProfiles struct {
	public        func(slug string) (model.PublicProfile, error)
	get           func(businessID string) (model.Business, error)
	upsert        func(businessID string, in profile.ProfileInput) (model.Business, error)
	listServices  func(businessID string) ([]model.Service, error)
	createService func(businessID string, in profile.ServiceInput) (model.Service, error)
	updateService func(businessID, id string, in profile.ServiceInput) (model.Service, error)
	deleteService func(businessID, id string) error
	customers     func(businessID string) ([]model.Customer, error)
}

func (s *stubProfiles) GetPublicProfile(_ context.Context, slug string) (model.PublicProfile, error) {
	if s.public == nil {
		return model.PublicProfile{}, errUnexpected
	}
	return s.public(slug)
}

func (s *stubProfiles) GetProfile(_ context.Context, businessID string) (model.Business, error) {
	if s.get == nil {
		return model.Business{}, errUnexpected
	}
	return s.get(businessID)
}

func (s *stubProfiles) UpsertProfile(_ context.Context, businessID string, in profile.ProfileInput) (model.Business, error) {
	if s.upsert == nil {
		return model.Business{}, errUnexpected
	}
	return s.upsert(businessID, in)
}

func (s *stubProfiles) ListServices(_ context.Context, businessID string) ([]model.Service, error) {
	if s.listServices == nil {
		return nil, errUnexpected
	}
	return s.listServices(businessID)
}

func (s *stubProfiles) CreateService(_ context.Context, businessID string, in profile.ServiceInput) (model.Service, error) {
	if s.createService == nil {
		return model.Service{}, errUnexpected
	}
	return s.createService(businessID, in)
}

func (s *stubProfiles) UpdateService(_ context.Context, businessID, id string, in profile.ServiceInput) (model.Service, error) {
	if s.updateService == nil {
		return model.Service{}, errUnexpected
	}
	return s.updateService(businessID, id, in)
}

func (s *stubProfiles) DeleteService(_ context.Context, businessID, id string) error {
	if s.deleteService == nil {
		return errUnexpected
	}
	return s.deleteService(businessID, id)
}

func (s *stubProfiles) ListCustomers(_ context.Context, businessID string) ([]model.Customer, error) {
	if s.customers == nil {
		return nil, errUnexpected
	}
	return s.customers(businessID)
}
