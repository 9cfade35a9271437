package booking

import (
	"context"
	"strings"
	"time"

	"github.com/md-rashed-zaman/apptcrm/libs/validation"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

const maxListLimit = 500

// ListAppointments returns the owner's appointments ordered by date and time.
func (s *Service) ListAppointments(ctx context.Context, businessID string, filter model.AppointmentFilter) ([]model.AppointmentView, error) {
	filter.Date = strings.TrimSpace(filter.Date)
	if filter.Date != "" {
		if _, err := model.ParseDate(filter.Date); err != nil {
			return nil, err
		}
	}
	if filter.Limit < 0 {
		return nil, validation.Field("limit", "must be greater than or equal to 0")
	}
	if filter.Limit == 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.repo.ListAppointments(ctx, businessID, filter)
}

func (s *Service) GetAppointment(ctx context.Context, businessID, appointmentID string) (model.AppointmentView, error) {
	return s.repo.GetAppointmentView(ctx, businessID, appointmentID)
}

// Dashboard summarizes the owner's ledger. Revenue counts Completed appointments only.
func (s *Service) Dashboard(ctx context.Context, businessID string) (model.DashboardStats, error) {
	now := s.clock.Now().In(s.loc)
	today := now.Format(validation.DateLayout)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)

	stats, err := s.repo.DashboardCounts(ctx, businessID, today, monthStart)
	if err != nil {
		return model.DashboardStats{}, err
	}
	schedule, err := s.repo.ListAppointments(ctx, businessID, model.AppointmentFilter{Date: today, Limit: maxListLimit})
	if err != nil {
		return model.DashboardStats{}, err
	}
	stats.TodaySchedule = schedule
	if stats.TodaySchedule == nil {
		stats.TodaySchedule = []model.AppointmentView{}
	}
	return stats, nil
}
