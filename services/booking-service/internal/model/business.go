package model

import (
	"sort"
	"strings"
	"time"
)

// Weekdays are the working-hours keys, indexed by time.Weekday.
var Weekdays = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

type DayHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// WorkingHours maps a lowercase weekday name to that day's opening hours.
type WorkingHours map[string]DayHours

// ForWeekday returns the enabled hours for d, or false when the business is closed.
func (wh WorkingHours) ForWeekday(d time.Weekday) (DayHours, bool) {
	h, ok := wh[Weekdays[d]]
	if !ok || !h.Enabled {
		return DayHours{}, false
	}
	return h, true
}

// Validate checks weekday keys and that every enabled day opens before it closes.
func (wh WorkingHours) Validate() error {
	fields := map[string]string{}
	keys := make([]string, 0, len(wh))
	for k := range wh {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, day := range keys {
		h := wh[day]
		path := "workingHours." + day
		if !isWeekday(day) {
			fields[path] = "is not a weekday name"
			continue
		}
		if !h.Enabled {
			continue
		}
		start, err := ParseClock(h.Start)
		if err != nil {
			fields[path+".start"] = "must be a time in HH:MM format"
			continue
		}
		end, err := ParseClock(h.End)
		if err != nil {
			fields[path+".end"] = "must be a time in HH:MM format"
			continue
		}
		if end <= start {
			fields[path+".end"] = "must be after start"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Normalize lowercases weekday keys.
func (wh WorkingHours) Normalize() WorkingHours {
	out := make(WorkingHours, len(wh))
	for k, v := range wh {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func DefaultWorkingHours() WorkingHours {
	wh := WorkingHours{}
	for i, day := range Weekdays {
		weekday := time.Weekday(i)
		wh[day] = DayHours{
			Enabled: weekday != time.Saturday && weekday != time.Sunday,
			Start:   "09:00",
			End:     "17:00",
		}
	}
	return wh
}

func isWeekday(s string) bool {
	for _, d := range Weekdays {
		if d == s {
			return true
		}
	}
	return false
}

type Business struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	BusinessName string       `json:"businessName"`
	Phone        string       `json:"phone,omitempty"`
	Location     string       `json:"location,omitempty"`
	Description  string       `json:"description,omitempty"`
	Slug         string       `json:"slug"`
	WorkingHours WorkingHours `json:"workingHours"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// PublicProfile is what an anonymous visitor of the booking page sees.
type PublicProfile struct {
	Business Business  `json:"business"`
	Services []Service `json:"services"`
}
