package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/apptcrm/libs/db"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

const customerColumns = `id::text, name, email, phone, created_at`

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	return c, err
}

// FindCustomer matches on phone, or on email when email is not empty. A phone match wins.
func (r *Repository) FindCustomer(ctx context.Context, phone, email string) (model.Customer, error) {
	c, err := scanCustomer(r.conn(ctx).QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE phone = $1 OR ($2 <> '' AND email = $2)
		ORDER BY (phone = $1) DESC, created_at
		LIMIT 1
	`, phone, email))
	return c, mapErr("find customer", err)
}

// CreateCustomer inserts c unless its phone is already known, in which case the stored
// customer is returned unchanged.
func (r *Repository) CreateCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	created, err := scanCustomer(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO customers (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO NOTHING
		RETURNING `+customerColumns+`
	`, c.ID, c.Name, c.Email, c.Phone, c.CreatedAt))
	if err == nil {
		return created, nil
	}
	if !db.IsNoRows(err) {
		return model.Customer{}, mapErr("create customer", err)
	}
	return r.FindCustomer(ctx, c.Phone, "")
}

// ListCustomers returns the distinct customers that booked with businessID.
func (r *Repository) ListCustomers(ctx context.Context, businessID string) ([]model.Customer, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers c
		WHERE EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.customer_id = c.id AND a.business_id = $1
		)
		ORDER BY c.created_at DESC, c.name
	`, businessID)
	if err != nil {
		return nil, mapErr("list customers", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, mapErr("list customers", err)
		}
		customers = append(customers, c)
	}
	if rows.Err() != nil {
		return nil, mapErr("list customers", rows.Err())
	}
	return customers, nil
}
