package availability

import (
	"testing"
	"time"
)

func TestAvailableSlots_Basic(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, loc)
	windowStart := time.Date(2026, 1, 28, 9, 0, 0, 0, loc)
	windowEnd := time.Date(2026, 1, 28, 10, 0, 0, 0, loc)

	busy := []Interval{
		{Start: day.Add(9*time.Hour + 15*time.Minute), End: day.Add(9*time.Hour + 45*time.Minute)},
	}

	slots := AvailableSlots(windowStart, windowEnd, 15*time.Minute, 15*time.Minute, busy)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("expected first slot 09:00, got %s", slots[0].Format(time.RFC3339))
	}
	if !slots[1].Equal(day.Add(9*time.Hour + 45*time.Minute)) {
		t.Fatalf("expected second slot 09:45, got %s", slots[1].Format(time.RFC3339))
	}
}

func TestAvailableSlots_DurationMustFit(t *testing.T) {
	day := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	slots := AvailableSlots(day.Add(9*time.Hour), day.Add(10*time.Hour), 90*time.Minute, 30*time.Minute, nil)
	if len(slots) != 0 {
		t.Fatalf("expected no slots when duration exceeds window, got %d", len(slots))
	}
}

func TestAvailableSlots_InvalidInput(t *testing.T) {
	day := time.Date(2026, 1, 28, 9, 0, 0, 0, time.UTC)
	if AvailableSlots(day, day.Add(time.Hour), 0, time.Minute, nil) != nil {
		t.Fatal("zero duration must yield nil")
	}
	if AvailableSlots(day, day.Add(time.Hour), time.Minute, 0, nil) != nil {
		t.Fatal("zero step must yield nil")
	}
	if AvailableSlots(day.Add(time.Hour), day, time.Minute, time.Minute, nil) != nil {
		t.Fatal("inverted window must yield nil")
	}
}
