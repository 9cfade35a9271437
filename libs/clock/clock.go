package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant; tests can move it with Set.
type Fixed struct {
	t time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{t: t} }

func (f *Fixed) Now() time.Time { return f.t }

func (f *Fixed) Set(t time.Time) { f.t = t }
