package model

import (
	"errors"

	"github.com/md-rashed-zaman/apptcrm/libs/validation"
)

// Business-rule outcomes. Anything else returned by the core is an internal failure.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("time slot already booked")
	ErrClosedDay         = errors.New("requested time is outside working hours")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSlugTaken         = errors.New("slug already in use")
	ErrIdempotencyReused = errors.New("idempotency key already used for a different booking request")
	ErrValidation        = validation.ErrInvalid
)

// ValidationError carries per-field problems and matches ErrValidation.
type ValidationError = validation.Error
