// Package clock formats wall-clock time for the page and drives the
// once-per-second ticker bound to a view's lifetime.
package clock

import (
	"context"
	"strings"
	"time"
)

// DefaultInterval is the tick period of the page clock.
const DefaultInterval = time.Second

// Placeholder is rendered before the first tick.
const Placeholder = "00:00:00 p.m."

// Tick is one clock reading.
type Tick struct {
	At      time.Time
	Time    string // ex: "3:04:05 p.m."
	Weekday string // ex: "Sunday"
}

// Format renders t as "H:MM:SS a.m." / "HH:MM:SS p.m." (12-hour, hour not padded).
func Format(t time.Time) string {
	s := t.Format("3:04:05 pm")
	return strings.TrimSuffix(s, "m") + ".m."
}

// Weekday returns the English weekday name of t.
func Weekday(t time.Time) string {
	return t.Weekday().String()
}

// Ticker emits a Tick immediately and then once per Interval until its
// context is cancelled. Drift is not corrected.
type Ticker struct {
	Interval time.Duration
	Location *time.Location
	Now      func() time.Time // for testing, defaults to time.Now
}

// NewTicker returns a Ticker for loc ticking every DefaultInterval.
func NewTicker(loc *time.Location) *Ticker {
	if loc == nil {
		loc = time.Local
	}
	return &Ticker{
		Interval: DefaultInterval,
		Location: loc,
		Now:      time.Now,
	}
}

// Read returns the current reading without waiting.
func (t *Ticker) Read() Tick {
	now := t.now().In(t.location())
	return Tick{
		At:      now,
		Time:    Format(now),
		Weekday: Weekday(now),
	}
}

// Run blocks, calling emit with a reading on every tick, until ctx is done.
func (t *Ticker) Run(ctx context.Context, emit func(Tick)) {
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	emit(t.Read())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emit(t.Read())
		}
	}
}

func (t *Ticker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Ticker) location() *time.Location {
	if t.Location != nil {
		return t.Location
	}
	return time.Local
}

// LoadLocation resolves a zone name; "" and "Local" mean the host zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
