package clock

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"
)

var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2} (a|p)\.m\.$`)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{name: "afternoon", at: time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC), want: "3:04:05 p.m."},
		{name: "morning two digit hour", at: time.Date(2026, 10, 18, 10, 0, 9, 0, time.UTC), want: "10:00:09 a.m."},
		{name: "midnight", at: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), want: "12:00:00 a.m."},
		{name: "noon", at: time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC), want: "12:30:00 p.m."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.at)
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
			if !timePattern.MatchString(got) {
				t.Errorf("Format() = %q does not match %s", got, timePattern)
			}
		})
	}
}

func TestFormatAlwaysMatchesPattern(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for m := 0; m < 24*60; m += 7 {
		at := start.Add(time.Duration(m)*time.Minute + 13*time.Second)
		if got := Format(at); !timePattern.MatchString(got) {
			t.Fatalf("Format(%v) = %q does not match", at, got)
		}
	}
}

func TestWeekday(t *testing.T) {
	if got := Weekday(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)); got != "Sunday" {
		t.Errorf("Weekday() = %q, want Sunday", got)
	}
}

func TestTickerRunStopsOnCancel(t *testing.T) {
	ticker := NewTicker(time.UTC)
	ticker.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var ticks []Tick
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker.Run(ctx, func(tk Tick) {
			mu.Lock()
			ticks = append(ticks, tk)
			mu.Unlock()
		})
	}()

	time.Sleep(55 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ticks) < 2 {
		t.Fatalf("expected at least 2 ticks, got %d", len(ticks))
	}
	for _, tk := range ticks {
		if !timePattern.MatchString(tk.Time) {
			t.Errorf("tick %q does not match pattern", tk.Time)
		}
	}
}

func TestTickerEmitsImmediately(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 9, 5, 1, 0, time.UTC)
	ticker := &Ticker{Interval: time.Hour, Location: time.UTC, Now: func() time.Time { return fixed }}

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan Tick, 1)
	go ticker.Run(ctx, func(tk Tick) {
		select {
		case got <- tk:
		default:
		}
	})
	defer cancel()

	select {
	case tk := <-got:
		if tk.Time != "9:05:01 a.m." || tk.Weekday != "Sunday" {
			t.Errorf("first tick = %+v", tk)
		}
	case <-time.After(time.Second):
		t.Fatal("no immediate tick")
	}
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	if err != nil || loc != time.Local {
		t.Errorf("LoadLocation(\"\") = %v, %v", loc, err)
	}
	if _, err := LoadLocation("UTC"); err != nil {
		t.Errorf("LoadLocation(UTC) error = %v", err)
	}
	if _, err := LoadLocation("Not/AZone"); err == nil {
		t.Error("LoadLocation() should fail for unknown zones")
	}
}
