package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/md-rashed-zaman/apptcrm/libs/db"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

const constraintSlug = "businesses_slug_key"

// Repository is the Postgres store for businesses, services, customers and appointments.
// Every method joins the transaction on ctx when there is one.
type Repository struct {
	pool db.TxBeginner
}

func NewRepository(pool db.TxBeginner) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

func (r *Repository) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

var errNoTx = errors.New("storage: operation requires a transaction")

// mapErr translates driver errors into domain outcomes and wraps everything else.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsNoRows(err), db.IsInvalidText(err):
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	case db.IsExclusionViolation(err):
		return fmt.Errorf("%s: %w", op, model.ErrConflict)
	case db.IsUniqueViolation(err) && db.ConstraintName(err) == constraintSlug:
		return fmt.Errorf("%s: %w", op, model.ErrSlugTaken)
	default:
		return fmt.Errorf("storage: %s: %w", op, err)
	}
}
