package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

const businessColumns = `id::text, name, business_name, phone, location, description, slug, working_hours, created_at, updated_at`

func scanBusiness(row pgx.Row) (model.Business, error) {
	var b model.Business
	var hours []byte
	if err := row.Scan(&b.ID, &b.Name, &b.BusinessName, &b.Phone, &b.Location, &b.Description, &b.Slug, &hours, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return model.Business{}, err
	}
	b.WorkingHours = model.WorkingHours{}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &b.WorkingHours); err != nil {
			return model.Business{}, fmt.Errorf("decode working hours: %w", err)
		}
	}
	return b, nil
}

func (r *Repository) GetBusiness(ctx context.Context, id string) (model.Business, error) {
	b, err := scanBusiness(r.conn(ctx).QueryRow(ctx, `
		SELECT `+businessColumns+`
		FROM businesses
		WHERE id = $1
	`, id))
	return b, mapErr("get business", err)
}

func (r *Repository) GetBusinessBySlug(ctx context.Context, slug string) (model.Business, error) {
	b, err := scanBusiness(r.conn(ctx).QueryRow(ctx, `
		SELECT `+businessColumns+`
		FROM businesses
		WHERE slug = $1
	`, slug))
	return b, mapErr("get business by slug", err)
}

// SlugExists reports whether another business than excludeID already uses slug.
func (r *Repository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM businesses WHERE slug = $1 AND id::text <> $2)
	`, slug, excludeID).Scan(&exists)
	return exists, mapErr("check slug", err)
}

func (r *Repository) CreateBusiness(ctx context.Context, b model.Business) error {
	hours, err := json.Marshal(b.WorkingHours)
	if err != nil {
		return fmt.Errorf("encode working hours: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO businesses (id, name, business_name, phone, location, description, slug, working_hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, b.ID, b.Name, b.BusinessName, b.Phone, b.Location, b.Description, b.Slug, hours, b.CreatedAt, b.UpdatedAt)
	return mapErr("create business", err)
}

func (r *Repository) UpdateBusiness(ctx context.Context, b model.Business) error {
	hours, err := json.Marshal(b.WorkingHours)
	if err != nil {
		return fmt.Errorf("encode working hours: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE businesses
		SET name = $2,
			business_name = $3,
			phone = $4,
			location = $5,
			description = $6,
			slug = $7,
			working_hours = $8,
			updated_at = $9
		WHERE id = $1
	`, b.ID, b.Name, b.BusinessName, b.Phone, b.Location, b.Description, b.Slug, hours, b.UpdatedAt)
	if err != nil {
		return mapErr("update business", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update business: %w", model.ErrNotFound)
	}
	return nil
}
