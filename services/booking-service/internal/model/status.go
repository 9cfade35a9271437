package model

import (
	"fmt"
	"strings"
)

// Status is the closed set of appointment lifecycle states.
type Status uint8

const (
	StatusPending Status = iota + 1
	StatusConfirmed
	StatusRejected
	StatusCompleted
)

var statusNames = map[Status]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusRejected:  "Rejected",
	StatusCompleted: "Completed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus accepts the stored names case-insensitively.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for s, name := range statusNames {
		if strings.EqualFold(name, raw) {
			return s, nil
		}
	}
	return 0, &ValidationError{Fields: map[string]string{"status": "must be one of: Pending Confirmed Rejected Completed"}}
}

// IsActive reports whether the appointment occupies its time slot.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// CanTransitionTo encodes the owner-driven lifecycle:
// Pending to Confirmed or Rejected, Confirmed to Completed.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusRejected
	case StatusConfirmed:
		return next == StatusCompleted
	case StatusRejected, StatusCompleted:
		return false
	default:
		return false
	}
}

// ActiveStatuses lists the states that block a slot, in storage form.
func ActiveStatuses() []string {
	return []string{StatusPending.String(), StatusConfirmed.String()}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
