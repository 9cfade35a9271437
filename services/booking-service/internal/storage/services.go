package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

const serviceColumns = `id::text, business_id::text, name, description, duration_minutes, price::text, created_at`

func scanService(row pgx.Row) (model.Service, error) {
	var s model.Service
	var price string
	if err := row.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Description, &s.DurationMinutes, &price, &s.CreatedAt); err != nil {
		return model.Service{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return model.Service{}, fmt.Errorf("decode price %q: %w", price, err)
	}
	s.Price = p
	return s, nil
}

// GetService only returns services owned by businessID.
func (r *Repository) GetService(ctx context.Context, businessID, serviceID string) (model.Service, error) {
	s, err := scanService(r.conn(ctx).QueryRow(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1 AND business_id = $2
	`, serviceID, businessID))
	return s, mapErr("get service", err)
}

func (r *Repository) ListServices(ctx context.Context, businessID string) ([]model.Service, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE business_id = $1
		ORDER BY created_at, name
	`, businessID)
	if err != nil {
		return nil, mapErr("list services", err)
	}
	defer rows.Close()

	services := []model.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, mapErr("list services", err)
		}
		services = append(services, s)
	}
	if rows.Err() != nil {
		return nil, mapErr("list services", rows.Err())
	}
	return services, nil
}

func (r *Repository) CreateService(ctx context.Context, s model.Service) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO services (id, business_id, name, description, duration_minutes, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)
	`, s.ID, s.BusinessID, s.Name, s.Description, s.DurationMinutes, s.Price.String(), s.CreatedAt)
	return mapErr("create service", err)
}

func (r *Repository) UpdateService(ctx context.Context, s model.Service) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE services
		SET name = $3,
			description = $4,
			duration_minutes = $5,
			price = $6::numeric
		WHERE id = $1 AND business_id = $2
	`, s.ID, s.BusinessID, s.Name, s.Description, s.DurationMinutes, s.Price.String())
	if err != nil {
		return mapErr("update service", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update service: %w", model.ErrNotFound)
	}
	return nil
}

// DeleteService leaves appointments that reference the service untouched.
func (r *Repository) DeleteService(ctx context.Context, businessID, serviceID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM services
		WHERE id = $1 AND business_id = $2
	`, serviceID, businessID)
	if err != nil {
		return mapErr("delete service", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete service: %w", model.ErrNotFound)
	}
	return nil
}
