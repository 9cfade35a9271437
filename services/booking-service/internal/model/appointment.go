package model

import "time"

type Appointment struct {
	ID         string `json:"id"`
	BusinessID string `json:"businessId"`
	CustomerID string `json:"customerId"`
	ServiceID  string `json:"serviceId"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	// DurationMinutes is copied from the service at booking time.
	DurationMinutes int       `json:"durationMinutes"`
	Status          Status    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Minutes returns the half-open [start, end) occupancy in minutes after midnight.
func (a Appointment) Minutes() (start, end int, err error) {
	start, err = ParseClock(a.Time)
	if err != nil {
		return 0, 0, err
	}
	return start, start + a.DurationMinutes, nil
}

// AppointmentView joins an appointment with its customer and service for owner screens.
// Service is nil when the service was deleted after booking.
type AppointmentView struct {
	Appointment
	Customer *Customer `json:"customer,omitempty"`
	Service  *Service  `json:"service,omitempty"`
}

type AppointmentFilter struct {
	Date   string
	Status Status
	Limit  int
}

type DashboardStats struct {
	TotalAppointments int               `json:"totalAppointments"`
	TodayAppointments int               `json:"todayAppointments"`
	NewCustomers      int               `json:"newCustomers"`
	Revenue           string            `json:"revenue"`
	TodaySchedule     []AppointmentView `json:"todaySchedule"`
}

// IdempotencyRecord is the state a booking request left under its idempotency key.
// AppointmentID is empty until the booking commits.
type IdempotencyRecord struct {
	AppointmentID string
	RequestHash   string
}
