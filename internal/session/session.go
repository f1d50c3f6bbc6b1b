// Package session gates trading on wall-clock conditions: weekends and the
// daily New York rollover.
package session

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"FXSentinel/internal/model"
)

const (
	DefaultDisplayZone  = "Europe/Riga"
	DefaultRolloverZone = "America/New_York"
	DefaultRolloverFrom = "16:50"
	DefaultRolloverTo   = "18:05"
)

// Gate decides whether the clock alone rules out trading.
type Gate struct {
	DisplayZone  *time.Location // weekday is read here
	RolloverZone *time.Location // rollover window is read here
	RolloverFrom int            // minutes since midnight, inclusive
	RolloverTo   int            // minutes since midnight, exclusive
}

// NewGate resolves zone names and "HH:MM" window bounds.
func NewGate(displayZone, rolloverZone, from, to string) (*Gate, error) {
	display, err := time.LoadLocation(displayZone)
	if err != nil {
		return nil, fmt.Errorf("display zone: %w", err)
	}
	rollover, err := time.LoadLocation(rolloverZone)
	if err != nil {
		return nil, fmt.Errorf("rollover zone: %w", err)
	}
	fromMin, err := ParseClock(from)
	if err != nil {
		return nil, fmt.Errorf("rollover start: %w", err)
	}
	toMin, err := ParseClock(to)
	if err != nil {
		return nil, fmt.Errorf("rollover end: %w", err)
	}
	if toMin <= fromMin {
		return nil, fmt.Errorf("rollover window %s-%s is empty", from, to)
	}
	return &Gate{
		DisplayZone:  display,
		RolloverZone: rollover,
		RolloverFrom: fromMin,
		RolloverTo:   toMin,
	}, nil
}

// Default returns the Riga weekend / New York 16:50-18:05 gate.
func Default() *Gate {
	g, err := NewGate(DefaultDisplayZone, DefaultRolloverZone, DefaultRolloverFrom, DefaultRolloverTo)
	if err != nil {
		panic(err) // zones are embedded
	}
	return g
}

// Status evaluates the gate at now. Weekend takes precedence over rollover.
func (g *Gate) Status(now time.Time) model.TradingWindowStatus {
	switch now.In(g.DisplayZone).Weekday() {
	case time.Saturday, time.Sunday:
		return model.WindowWeekend
	}

	et := now.In(g.RolloverZone)
	timeOfDay := et.Hour()*60 + et.Minute()
	if timeOfDay >= g.RolloverFrom && timeOfDay < g.RolloverTo {
		return model.WindowRollover
	}
	return model.WindowOpen
}

// Describe renders a status as a reason string.
func (g *Gate) Describe(status model.TradingWindowStatus) string {
	switch status {
	case model.WindowWeekend:
		return fmt.Sprintf("Weekend in %s, FX market closed", g.DisplayZone)
	case model.WindowRollover:
		return fmt.Sprintf("Daily rollover %s-%s %s, spreads widen",
			formatClock(g.RolloverFrom), formatClock(g.RolloverTo), g.RolloverZone)
	default:
		return "Trading window open"
	}
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
