package storage

import (
	"context"

	"github.com/md-rashed-zaman/apptcrm/libs/db"
	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

// LockIdempotencyKey inserts the key if needed and locks its row for the rest of the
// transaction. Concurrent requests with the same key wait here.
func (r *Repository) LockIdempotencyKey(ctx context.Context, businessID, key, requestHash string) (model.IdempotencyRecord, error) {
	tx := db.TxFromContext(ctx)
	if tx == nil {
		return model.IdempotencyRecord{}, errNoTx
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (business_id, idempotency_key, request_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (business_id, idempotency_key) DO NOTHING
	`, businessID, key, requestHash); err != nil {
		return model.IdempotencyRecord{}, mapErr("insert idempotency key", err)
	}

	var rec model.IdempotencyRecord
	err := tx.QueryRow(ctx, `
		SELECT COALESCE(appointment_id::text, ''), request_hash
		FROM booking_idempotency_keys
		WHERE business_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, businessID, key).Scan(&rec.AppointmentID, &rec.RequestHash)
	if err != nil {
		return model.IdempotencyRecord{}, mapErr("lock idempotency key", err)
	}
	return rec, nil
}

func (r *Repository) FinalizeIdempotency(ctx context.Context, businessID, key, appointmentID string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET appointment_id = $3,
			updated_at = now()
		WHERE business_id = $1 AND idempotency_key = $2
	`, businessID, key, appointmentID)
	return mapErr("finalize idempotency key", err)
}
