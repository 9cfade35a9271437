package availability

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/apptcrm/services/booking-service/internal/model"
)

// DefaultStep is the slot grid granularity.
const DefaultStep = 30 * time.Minute

// Result distinguishes a closed day from an open day with every slot taken.
type Result struct {
	Closed bool
	Slots  []string
}

func (r Result) NoSlots() bool { return !r.Closed && len(r.Slots) == 0 }

// Window returns the opening hours of day, or false when the business is closed.
func Window(hours model.WorkingHours, day time.Time) (Interval, bool) {
	h, ok := hours.ForWeekday(day.Weekday())
	if !ok {
		return Interval{}, false
	}
	start, err := model.At(day, h.Start)
	if err != nil {
		return Interval{}, false
	}
	end, err := model.At(day, h.End)
	if err != nil || !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// Resolve lists "HH:MM" starts on day where duration fits before closing and does not
// overlap busy. It is a pure function of its inputs.
func Resolve(hours model.WorkingHours, day time.Time, duration, step time.Duration, busy []Interval) Result {
	win, ok := Window(hours, day)
	if !ok {
		return Result{Closed: true, Slots: []string{}}
	}
	if step <= 0 {
		step = DefaultStep
	}
	starts := AvailableSlots(win.Start, win.End, duration, step, busy)
	out := make([]string, 0, len(starts))
	for _, s := range starts {
		out = append(out, s.Format("15:04"))
	}
	return Result{Slots: out}
}

// CheckSlot validates a concrete booking at start. It returns model.ErrClosedDay when the
// interval is not inside opening hours and model.ErrConflict when it overlaps busy.
// Starts off the slot grid are accepted.
func CheckSlot(hours model.WorkingHours, day, start time.Time, duration time.Duration, busy []Interval) error {
	win, ok := Window(hours, day)
	if !ok {
		return fmt.Errorf("%w: closed on %s", model.ErrClosedDay, model.Weekdays[day.Weekday()])
	}
	end := start.Add(duration)
	if start.Before(win.Start) || end.After(win.End) {
		return fmt.Errorf("%w: open %s-%s", model.ErrClosedDay, win.Start.Format("15:04"), win.End.Format("15:04"))
	}
	if overlapsAny(start, end, busy) {
		return model.ErrConflict
	}
	return nil
}

// BusyIntervals converts the active appointments of day into occupied intervals.
func BusyIntervals(day time.Time, appts []model.Appointment) []Interval {
	busy := make([]Interval, 0, len(appts))
	for _, a := range appts {
		if !a.Status.IsActive() {
			continue
		}
		start, end, err := a.Minutes()
		if err != nil || end <= start {
			continue
		}
		busy = append(busy, Interval{
			Start: day.Add(time.Duration(start) * time.Minute),
			End:   day.Add(time.Duration(end) * time.Minute),
		})
	}
	return busy
}
