package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID              string          `json:"id"`
	BusinessID      string          `json:"businessId"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	DurationMinutes int             `json:"durationMinutes"`
	Price           decimal.Decimal `json:"price"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
