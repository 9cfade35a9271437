package outbox

import (
	"encoding/json"
	"fmt"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	AggregateAppointment = "appointment"

	TypeAppointmentBooked        = "appointment.booked.v1"
	TypeAppointmentStatusChanged = "appointment.status_changed.v1"
	TypeAppointmentDeleted       = "appointment.deleted.v1"
)

// NewEvent marshals payload into an appointment event.
func NewEvent(eventType, aggregateID string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("outbox: marshal %s: %w", eventType, err)
	}
	return Event{
		AggregateType: AggregateAppointment,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       b,
	}, nil
}
