package model

import "time"

// Direction of a tracked signal.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Status of a tracked signal. COMPLETED and STOPPED are terminal.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusStopped   Status = "STOPPED"
)

// Level identifies one price threshold on a signal.
type Level string

const (
	LevelTP1  Level = "tp1"
	LevelTP2  Level = "tp2"
	LevelTP3  Level = "tp3"
	LevelStop Level = "stop_loss"
)

// Definition is the signal description handed over by the producer.
type Definition struct {
	Symbol       string
	Direction    Direction
	EntryPrice   float64
	StopLoss     float64
	TP1          float64
	TP2          float64
	TP3          float64
	QualityScore float64
}

// Allocation is the position split across the three targets, fixed at
// registration time and immutable afterwards.
type Allocation struct {
	TP1 float64
	TP2 float64
	TP3 float64
}

// DefaultAllocation closes 25% at TP1, 50% at TP2 and 25% at TP3.
var DefaultAllocation = Allocation{TP1: 0.25, TP2: 0.50, TP3: 0.25}

// Of returns the fraction closed at a take-profit level.
func (a Allocation) Of(level Level) float64 {
	switch level {
	case LevelTP1:
		return a.TP1
	case LevelTP2:
		return a.TP2
	case LevelTP3:
		return a.TP3
	}
	return 0
}

// Valid reports whether the fractions are positive and sum to 1.
func (a Allocation) Valid() bool {
	if a.TP1 <= 0 || a.TP2 <= 0 || a.TP3 <= 0 {
		return false
	}
	sum := a.TP1 + a.TP2 + a.TP3
	return sum > 0.999 && sum < 1.001
}

// Fill records one partial close of the position.
type Fill struct {
	Level     Level
	Price     float64
	Fraction  float64 // share of the position closed by this fill
	ReturnPct float64 // raw percent return at the fill price
	Weighted  float64 // ReturnPct * Fraction
	Time      time.Time
}

// Event is produced when a price crosses a not-yet-hit threshold.
type Event struct {
	SignalID  string
	Level     Level
	Price     float64
	ReturnPct float64
}

// Signal is a tracked position from registration until a target or the
// stop closes it.
type Signal struct {
	ID           string
	Symbol       string
	Direction    Direction
	EntryPrice   float64
	StopLoss     float64
	TP1          float64
	TP2          float64
	TP3          float64
	TP1Hit       bool
	TP2Hit       bool
	TP3Hit       bool
	SLHit        bool
	Fills        []Fill
	CurrentROI   float64
	Status       Status
	QualityScore float64
	Allocation   Allocation
	EntryTime    time.Time
	CloseTime    time.Time
}

// Hit reports whether the level already fired on this signal.
func (s *Signal) Hit(level Level) bool {
	switch level {
	case LevelTP1:
		return s.TP1Hit
	case LevelTP2:
		return s.TP2Hit
	case LevelTP3:
		return s.TP3Hit
	case LevelStop:
		return s.SLHit
	}
	return false
}

// ClosedFraction is the share of the position already closed by fills.
func (s *Signal) ClosedFraction() float64 {
	var closed float64
	for _, f := range s.Fills {
		closed += f.Fraction
	}
	return closed
}

// OpenFraction is the share of the position still open.
func (s *Signal) OpenFraction() float64 {
	open := 1.0 - s.ClosedFraction()
	if open < 0 {
		return 0
	}
	return open
}

// Terminal reports whether the signal left the ACTIVE state.
func (s *Signal) Terminal() bool {
	return s.Status != StatusActive
}

// Clone returns a deep copy safe to hand outside the owning monitor.
func (s *Signal) Clone() *Signal {
	cp := *s
	cp.Fills = make([]Fill, len(s.Fills))
	copy(cp.Fills, s.Fills)
	return &cp
}
