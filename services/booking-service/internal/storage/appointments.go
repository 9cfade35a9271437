package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/md-rashed-zaman/apptcrm/libs/db"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

const appointmentColumns = `a.id::text, a.business_id::text, a.customer_id::text, a.service_id::text,
	to_char(a.date, 'YYYY-MM-DD'), a.start_minute, a.duration_minutes, a.status, a.notes, a.created_at, a.updated_at`

const viewColumns = appointmentColumns + `,
	c.id::text, c.name, c.email, c.phone, c.created_at,
	s.id::text, s.name, s.description, s.duration_minutes, s.price::text, s.created_at`

const viewFrom = `
	FROM appointments a
	JOIN customers c ON c.id = a.customer_id
	LEFT JOIN services s ON s.id = a.service_id`

func appointmentDest(a *model.Appointment, startMinute *int, status *string) []any {
	return []any{&a.ID, &a.BusinessID, &a.CustomerID, &a.ServiceID, &a.Date, startMinute, &a.DurationMinutes, status, &a.Notes, &a.CreatedAt, &a.UpdatedAt}
}

func finishAppointment(a *model.Appointment, startMinute int, status string) error {
	st, err := model.ParseStatus(status)
	if err != nil {
		return fmt.Errorf("decode status %q: %w", status, err)
	}
	a.Status = st
	a.Time = model.FormatClock(startMinute)
	return nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	var startMinute int
	var status string
	if err := row.Scan(appointmentDest(&a, &startMinute, &status)...); err != nil {
		return model.Appointment{}, err
	}
	return a, finishAppointment(&a, startMinute, status)
}

func scanView(row pgx.Row) (model.AppointmentView, error) {
	var v model.AppointmentView
	var startMinute int
	var status string
	var c model.Customer
	var (
		svcID, svcName, svcDesc, svcPrice *string
		svcDuration                       *int
		svcCreated                        *time.Time
	)
	dest := appointmentDest(&v.Appointment, &startMinute, &status)
	dest = append(dest, &c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt,
		&svcID, &svcName, &svcDesc, &svcDuration, &svcPrice, &svcCreated)
	if err := row.Scan(dest...); err != nil {
		return model.AppointmentView{}, err
	}
	if err := finishAppointment(&v.Appointment, startMinute, status); err != nil {
		return model.AppointmentView{}, err
	}
	v.Customer = &c
	if svcID != nil {
		s := model.Service{ID: *svcID, BusinessID: v.BusinessID}
		if svcName != nil {
			s.Name = *svcName
		}
		if svcDesc != nil {
			s.Description = *svcDesc
		}
		if svcDuration != nil {
			s.DurationMinutes = *svcDuration
		}
		if svcPrice != nil {
			p, err := decimal.NewFromString(*svcPrice)
			if err != nil {
				return model.AppointmentView{}, fmt.Errorf("decode price %q: %w", *svcPrice, err)
			}
			s.Price = p
		}
		if svcCreated != nil {
			s.CreatedAt = *svcCreated
		}
		v.Service = &s
	}
	return v, nil
}

// LockBusinessDay takes a transaction-scoped advisory lock on (business, date).
func (r *Repository) LockBusinessDay(ctx context.Context, businessID, date string) error {
	tx := db.TxFromContext(ctx)
	if tx == nil {
		return errNoTx
	}
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))`, businessID, date)
	return mapErr("lock business day", err)
}

func (r *Repository) ListActiveAppointments(ctx context.Context, businessID, date string) ([]model.Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		WHERE a.business_id = $1
			AND a.date = $2::date
			AND a.status = ANY($3)
		ORDER BY a.start_minute
	`, businessID, date, model.ActiveStatuses())
	if err != nil {
		return nil, mapErr("list active appointments", err)
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, mapErr("list active appointments", err)
		}
		appts = append(appts, a)
	}
	if rows.Err() != nil {
		return nil, mapErr("list active appointments", rows.Err())
	}
	return appts, nil
}

// CreateAppointment maps an overlap caught by the exclusion constraint to model.ErrConflict.
func (r *Repository) CreateAppointment(ctx context.Context, a model.Appointment) (model.Appointment, error) {
	startMinute, err := model.ParseClock(a.Time)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("create appointment: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments
			(id, business_id, customer_id, service_id, date, start_minute, duration_minutes, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.BusinessID, a.CustomerID, a.ServiceID, a.Date, startMinute, a.DurationMinutes, a.Status.String(), a.Notes, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return model.Appointment{}, mapErr("create appointment", err)
	}
	return a, nil
}

func (r *Repository) GetAppointmentForUpdate(ctx context.Context, businessID, appointmentID string) (model.Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments a
		WHERE a.id = $1 AND a.business_id = $2
		FOR UPDATE
	`, appointmentID, businessID))
	return a, mapErr("get appointment", err)
}

func (r *Repository) GetAppointmentView(ctx context.Context, businessID, appointmentID string) (model.AppointmentView, error) {
	v, err := scanView(r.conn(ctx).QueryRow(ctx, `
		SELECT `+viewColumns+viewFrom+`
		WHERE a.id = $1 AND a.business_id = $2
	`, appointmentID, businessID))
	return v, mapErr("get appointment", err)
}

func (r *Repository) UpdateAppointmentStatus(ctx context.Context, businessID, appointmentID string, status model.Status, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments
		SET status = $3,
			updated_at = $4
		WHERE id = $1 AND business_id = $2
	`, appointmentID, businessID, status.String(), at)
	if err != nil {
		return mapErr("update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update appointment status: %w", model.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteAppointment(ctx context.Context, businessID, appointmentID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1 AND business_id = $2
	`, appointmentID, businessID)
	if err != nil {
		return mapErr("delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete appointment: %w", model.ErrNotFound)
	}
	return nil
}

func (r *Repository) ListAppointments(ctx context.Context, businessID string, filter model.AppointmentFilter) ([]model.AppointmentView, error) {
	status := ""
	if filter.Status.Valid() {
		status = filter.Status.String()
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+viewColumns+viewFrom+`
		WHERE a.business_id = $1
			AND ($2::text = '' OR a.date = NULLIF($2::text, '')::date)
			AND ($3::text = '' OR a.status = $3::text)
		ORDER BY a.date, a.start_minute
		LIMIT $4
	`, businessID, filter.Date, status, filter.Limit)
	if err != nil {
		return nil, mapErr("list appointments", err)
	}
	defer rows.Close()

	views := []model.AppointmentView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, mapErr("list appointments", err)
		}
		views = append(views, v)
	}
	if rows.Err() != nil {
		return nil, mapErr("list appointments", rows.Err())
	}
	return views, nil
}

// DashboardCounts fills every DashboardStats field except TodaySchedule.
func (r *Repository) DashboardCounts(ctx context.Context, businessID, today string, monthStart time.Time) (model.DashboardStats, error) {
	var stats model.DashboardStats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE a.date = $2::date),
			(
				SELECT count(DISTINCT c.id)
				FROM customers c
				JOIN appointments ca ON ca.customer_id = c.id
				WHERE ca.business_id = $1 AND c.created_at >= $3
			),
			COALESCE(sum(s.price) FILTER (WHERE a.status = 'Completed'), 0)::numeric(14, 2)::text
		FROM appointments a
		LEFT JOIN services s ON s.id = a.service_id
		WHERE a.business_id = $1
	`, businessID, today, monthStart).Scan(&stats.TotalAppointments, &stats.TodayAppointments, &stats.NewCustomers, &stats.Revenue)
	return stats, mapErr("dashboard counts", err)
}
