package domain

import (
	"encoding/json"
	"fmt"
)

// PatternType identifies which detector produced a pattern.
type PatternType string

const (
	PatternInterPeriodMoodVariance   PatternType = "INTER_PERIOD_MOOD_VARIANCE"
	PatternInterPeriodEnergyVariance PatternType = "INTER_PERIOD_ENERGY_VARIANCE"
	PatternPeriodThemeAlignment      PatternType = "PERIOD_THEME_ALIGNMENT"
	PatternSymptomPeriodCluster      PatternType = "SYMPTOM_PERIOD_CLUSTER"
	PatternSolarCorrelation          PatternType = "SOLAR_CORRELATION"
	PatternSolarEnergyCorrelation    PatternType = "SOLAR_ENERGY_CORRELATION"
	PatternLunarPhaseMood            PatternType = "LUNAR_PHASE_MOOD"
	PatternTimeOfDayMood             PatternType = "TIME_OF_DAY_MOOD"
	PatternTimeOfDayEnergy           PatternType = "TIME_OF_DAY_ENERGY"
	PatternDayOfWeekMood             PatternType = "DAY_OF_WEEK_MOOD"
	PatternGateMoodVariance          PatternType = "GATE_MOOD_VARIANCE"
)

func ValidPatternType(s string) bool {
	switch PatternType(s) {
	case PatternInterPeriodMoodVariance, PatternInterPeriodEnergyVariance, PatternPeriodThemeAlignment,
		PatternSymptomPeriodCluster, PatternSolarCorrelation, PatternSolarEnergyCorrelation,
		PatternLunarPhaseMood, PatternTimeOfDayMood, PatternTimeOfDayEnergy, PatternDayOfWeekMood,
		PatternGateMoodVariance:
		return true
	}
	return false
}

// Pattern is a statistically flagged finding from one detection cycle.
// Patterns are created fresh each cycle and never mutated.
type Pattern struct {
	Type         PatternType  `json:"type"`
	Confidence   float64      `json:"confidence"` // 1 - p_value
	Description  string       `json:"description"`
	PValue       float64      `json:"p_value"`
	EffectSize   float64      `json:"effect_size"`
	EvidenceType EvidenceType `json:"evidence_type"`
	DataPoints   int          `json:"data_points"`

	// Context for the group the pattern singles out
	Planet    string `json:"planet,omitempty"`
	SunGate   int    `json:"sun_gate,omitempty"`
	GateLine  int    `json:"gate_line,omitempty"`
	MoonPhase string `json:"moon_phase,omitempty"`
	HourOfDay *int   `json:"hour_of_day,omitempty"` // start hour of the 4-hour block
	DayOfWeek *int   `json:"day_of_week,omitempty"` // 0 = Sunday

	Data PatternData `json:"data,omitempty"`
}

// PatternData is the detector-specific payload of a pattern. Add a variant
// here rather than growing untyped keys.
type PatternData interface {
	patternData()
}

// GroupStat summarizes one group in a group comparison.
type GroupStat struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// GroupComparison backs every ANOVA-based pattern.
type GroupComparison struct {
	Metric     string      `json:"metric"` // mood or energy
	Dimension  string      `json:"dimension"`
	Groups     []GroupStat `json:"groups"`
	Best       string      `json:"best"`
	Worst      string      `json:"worst"`
	FStatistic float64     `json:"f_statistic"`
}

// CorrelationData backs the Pearson-based patterns.
type CorrelationData struct {
	XMetric string  `json:"x_metric"`
	YMetric string  `json:"y_metric"`
	R       float64 `json:"r"`
	N       int     `json:"n"`
}

// ThemeAlignment backs keyword-alignment patterns.
type ThemeAlignment struct {
	Matched      []string `json:"matched"`
	KeywordCount int      `json:"keyword_count"`
	Ratio        float64  `json:"ratio"`
	Threshold    float64  `json:"threshold"`
}

// SymptomCluster backs symptom-rate patterns.
type SymptomCluster struct {
	Symptom     string  `json:"symptom"`
	GroupRate   float64 `json:"group_rate"`
	OverallRate float64 `json:"overall_rate"`
}

func (GroupComparison) patternData() {}
func (CorrelationData) patternData() {}
func (ThemeAlignment) patternData()  {}
func (SymptomCluster) patternData()  {}

// UnmarshalJSON restores the Data variant from the pattern type.
func (p *Pattern) UnmarshalJSON(b []byte) error {
	type plain Pattern
	aux := struct {
		*plain
		Data json.RawMessage `json:"data,omitempty"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	p.Data = nil
	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		return nil
	}

	var err error
	switch p.Type {
	case PatternPeriodThemeAlignment:
		var d ThemeAlignment
		err = json.Unmarshal(aux.Data, &d)
		p.Data = d
	case PatternSymptomPeriodCluster:
		var d SymptomCluster
		err = json.Unmarshal(aux.Data, &d)
		p.Data = d
	case PatternSolarCorrelation, PatternSolarEnergyCorrelation:
		var d CorrelationData
		err = json.Unmarshal(aux.Data, &d)
		p.Data = d
	case PatternInterPeriodMoodVariance, PatternInterPeriodEnergyVariance, PatternLunarPhaseMood,
		PatternTimeOfDayMood, PatternTimeOfDayEnergy, PatternDayOfWeekMood, PatternGateMoodVariance:
		var d GroupComparison
		err = json.Unmarshal(aux.Data, &d)
		p.Data = d
	default:
		return fmt.Errorf("pattern data for unknown type %q", p.Type)
	}
	return err
}
