package model

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/apptcrm/libs/validation"
)

// ParseDate parses a business-local calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(validation.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, validation.Field("date", "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// ParseClock converts "HH:MM" to minutes after midnight.
func ParseClock(s string) (int, error) {
	if !validation.ValidTime(s) {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	t, err := time.Parse(validation.TimeLayout, s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// At returns the naive local instant for clock on day.
func At(day time.Time, clock string) (time.Time, error) {
	mins, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(mins) * time.Minute), nil
}
