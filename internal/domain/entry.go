package domain

import (
	"math"
	"time"
)

const (
	MinScale = 1.0
	MaxScale = 10.0
)

// ObservableEntry is a single time-stamped observation supplied by the memory
// store. Entries are read-only to the engine.
type ObservableEntry struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	Mood      *float64        `json:"mood,omitempty"`   // 1 to 10
	Energy    *float64        `json:"energy,omitempty"` // 1 to 10
	Symptoms  []string        `json:"symptoms,omitempty"`
	Cosmic    *CosmicSnapshot `json:"cosmic,omitempty"`
}

// CosmicSnapshot carries the auxiliary tags attached by the cosmic calculators.
// The engine treats every tag as opaque.
type CosmicSnapshot struct {
	Card  *CardReading  `json:"card,omitempty"`
	Solar *SolarReading `json:"solar,omitempty"`
	Moon  *MoonReading  `json:"moon,omitempty"`
	Gate  *GateReading  `json:"gate,omitempty"`
}

type CardReading struct {
	Planet string `json:"planet,omitempty"`
}

type SolarReading struct {
	Kp *float64 `json:"kp,omitempty"` // geomagnetic index
}

type MoonReading struct {
	Phase string `json:"phase,omitempty"`
}

type GateReading struct {
	Sun     int `json:"sun,omitempty"`      // 1 to 64
	SunLine int `json:"sun_line,omitempty"` // 1 to 6
}

// MoodValue returns the mood rating if present and on the 1-10 scale.
func (e ObservableEntry) MoodValue() (float64, bool) {
	return scaleValue(e.Mood)
}

// EnergyValue returns the energy rating if present and on the 1-10 scale.
func (e ObservableEntry) EnergyValue() (float64, bool) {
	return scaleValue(e.Energy)
}

func (e ObservableEntry) Planet() string {
	if e.Cosmic == nil || e.Cosmic.Card == nil {
		return ""
	}
	return e.Cosmic.Card.Planet
}

func (e ObservableEntry) Kp() (float64, bool) {
	if e.Cosmic == nil || e.Cosmic.Solar == nil || e.Cosmic.Solar.Kp == nil {
		return 0, false
	}
	kp := *e.Cosmic.Solar.Kp
	if math.IsNaN(kp) || math.IsInf(kp, 0) {
		return 0, false
	}
	return kp, true
}

func (e ObservableEntry) MoonPhase() string {
	if e.Cosmic == nil || e.Cosmic.Moon == nil {
		return ""
	}
	return e.Cosmic.Moon.Phase
}

// SunGate returns the sun gate tag, or 0 when absent or outside 1-64.
func (e ObservableEntry) SunGate() int {
	if e.Cosmic == nil || e.Cosmic.Gate == nil {
		return 0
	}
	g := e.Cosmic.Gate.Sun
	if g < 1 || g > 64 {
		return 0
	}
	return g
}

// SunLine returns the sun gate line, or 0 when absent or outside 1-6.
func (e ObservableEntry) SunLine() int {
	if e.SunGate() == 0 {
		return 0
	}
	l := e.Cosmic.Gate.SunLine
	if l < 1 || l > 6 {
		return 0
	}
	return l
}

func scaleValue(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || *v < MinScale || *v > MaxScale {
		return 0, false
	}
	return *v, true
}
