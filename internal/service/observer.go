package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/Harshitk-cp/oracle/internal/stats"
	mstats "github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

// Observer detection thresholds
const (
	SignificanceLevel = 0.05

	MinPlanetaryPeriods   = 3
	MinPeriodEntries      = 5 // metric-bearing entries per period for the variance check
	PeriodEffectThreshold = 1.5
	MinThemeEntries       = 3
	ThemeBaseline         = 0.15
	ThemeMargin           = 0.10
	MinSymptomEntries     = 5
	SymptomRateLift       = 0.25

	MinSolarEntries           = 10
	SolarCorrelationThreshold = 0.6
	MinLunarEntries           = 15
	MinLunarPhaseEntries      = 2
	LunarEffectThreshold      = 1.0

	MinTemporalEntries       = 30
	MinTemporalBucketEntries = 3
	TemporalEffectThreshold  = 1.0
	HourBlockSize            = 4

	MinGates            = 3
	MinGateEntries      = 3
	GateEffectThreshold = 1.5
)

// PlanetKeywords are the themes each planetary period is associated with.
var PlanetKeywords = map[string][]string{
	"sun":     {"identity", "confidence", "vitality", "creative", "leadership", "pride", "recognition", "purpose"},
	"moon":    {"emotion", "home", "family", "nurture", "intuition", "comfort", "mother", "memory"},
	"mercury": {"communication", "writing", "learning", "travel", "message", "idea", "conversation", "study"},
	"venus":   {"love", "beauty", "relationship", "art", "pleasure", "money", "harmony", "friend"},
	"mars":    {"energy", "anger", "conflict", "drive", "exercise", "competition", "courage", "action"},
	"jupiter": {"growth", "luck", "expansion", "optimism", "teaching", "abundance", "opportunity", "faith"},
	"saturn":  {"discipline", "responsibility", "work", "limitation", "structure", "duty", "tired", "pressure"},
	"uranus":  {"change", "surprise", "freedom", "innovation", "rebellion", "sudden", "technology", "independence"},
	"neptune": {"dream", "spiritual", "confusion", "imagination", "escape", "music", "meditation", "compassion"},
	"pluto":   {"transformation", "power", "intensity", "control", "rebirth", "secret", "crisis", "obsession"},
}

// ObservationResult is the output of one detection cycle.
type ObservationResult struct {
	Patterns        []domain.Pattern `json:"patterns"`
	EntriesAnalyzed int              `json:"entries_analyzed"`
	DaysCovered     float64          `json:"days_covered"`
	SkippedReasons  []string         `json:"skipped_reasons"`
	MoodSummary     *MoodSummary     `json:"mood_summary,omitempty"`
}

// MoodSummary describes the mood ratings in an observed batch.
type MoodSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// Detection is what a single detection pass produces.
type Detection struct {
	Patterns []domain.Pattern
	Skipped  []string
}

func (d *Detection) skip(format string, args ...any) {
	d.Skipped = append(d.Skipped, fmt.Sprintf(format, args...))
}

type detector func(entries []domain.ObservableEntry) (Detection, error)

type observationPass struct {
	name   string
	detect detector
}

// Observer mines a batch of observable entries for statistically significant
// patterns. It holds no state between calls.
type Observer struct {
	logger *zap.Logger
	passes []observationPass
}

func NewObserver(logger *zap.Logger) *Observer {
	o := &Observer{logger: logger}
	o.passes = []observationPass{
		{name: "cyclical", detect: o.DetectCyclicalPatterns},
		{name: "cosmic", detect: o.DetectCosmicCorrelations},
		{name: "temporal", detect: o.DetectTemporalPatterns},
		{name: "gate", detect: o.DetectGatePatterns},
	}
	return o
}

// Observe runs every detection pass over entries. A pass that fails is
// recorded in SkippedReasons and never prevents the others from running.
func (o *Observer) Observe(entries []domain.ObservableEntry) *ObservationResult {
	result := &ObservationResult{
		Patterns:        []domain.Pattern{},
		EntriesAnalyzed: len(entries),
		DaysCovered:     daysCovered(entries),
		SkippedReasons:  []string{},
		MoodSummary:     summarizeMood(entries),
	}

	for _, pass := range o.passes {
		detection, err := runPass(pass.detect, entries)
		if err != nil {
			o.logger.Warn("observation pass failed",
				zap.String("pass", pass.name),
				zap.Error(err))
			result.SkippedReasons = append(result.SkippedReasons, fmt.Sprintf("%s: %v", pass.name, err))
			continue
		}
		for _, reason := range detection.Skipped {
			result.SkippedReasons = append(result.SkippedReasons, pass.name+": "+reason)
		}
		result.Patterns = append(result.Patterns, detection.Patterns...)
	}

	o.logger.Debug("observation complete",
		zap.Int("entries", result.EntriesAnalyzed),
		zap.Float64("days_covered", result.DaysCovered),
		zap.Int("patterns", len(result.Patterns)),
		zap.Int("skipped", len(result.SkippedReasons)))

	return result
}

func runPass(detect detector, entries []domain.ObservableEntry) (d Detection, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = Detection{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return detect(entries)
}

// DetectCyclicalPatterns compares planetary periods: mood and energy
// variance, keyword theme alignment, and symptom clustering.
func (o *Observer) DetectCyclicalPatterns(entries []domain.ObservableEntry) (Detection, error) {
	var d Detection

	periods := groupEntries(entries, func(e domain.ObservableEntry) (string, bool) {
		p := e.Planet()
		return p, p != ""
	})
	if len(periods) < MinPlanetaryPeriods {
		d.skip("found %d planetary periods, need %d", len(periods), MinPlanetaryPeriods)
		return d, nil
	}

	variance := []struct {
		metric      metric
		patternType domain.PatternType
	}{
		{moodMetric, domain.PatternInterPeriodMoodVariance},
		{energyMetric, domain.PatternInterPeriodEnergyVariance},
	}
	for _, v := range variance {
		cmp, err := compareGroups("planetary period", v.metric, collectValues(periods, v.metric), MinPeriodEntries, 2)
		if err != nil {
			return d, err
		}
		if cmp == nil || !cmp.significant(PeriodEffectThreshold) {
			continue
		}
		d.Patterns = append(d.Patterns, cmp.pattern(v.patternType, domain.EvidenceCyclicalAlignment,
			fmt.Sprintf("%s averages %.1f during %s periods versus %.1f during %s periods",
				capitalize(v.metric.name), cmp.best.Mean, cmp.best.Label, cmp.worst.Mean, cmp.worst.Label),
			func(p *domain.Pattern) { p.Planet = cmp.best.Label }))
	}

	d.Patterns = append(d.Patterns, detectThemeAlignment(periods)...)

	if cluster := detectSymptomCluster(periods); cluster != nil {
		d.Patterns = append(d.Patterns, *cluster)
	}

	return d, nil
}

func detectThemeAlignment(periods []entryGroup) []domain.Pattern {
	threshold := ThemeBaseline + ThemeMargin
	var patterns []domain.Pattern

	for _, g := range periods {
		keywords, ok := PlanetKeywords[strings.ToLower(g.label)]
		if !ok || len(g.entries) < MinThemeEntries {
			continue
		}

		words := make(map[string]bool)
		for _, e := range g.entries {
			for _, w := range tokenize(e.Content) {
				words[w] = true
			}
		}

		var matched []string
		for _, kw := range keywords {
			if words[kw] || words[kw+"s"] {
				matched = append(matched, kw)
			}
		}

		ratio := float64(len(matched)) / float64(len(keywords))
		if ratio <= threshold {
			continue
		}

		pValue := clampUnit(1 - ratio)
		patterns = append(patterns, domain.Pattern{
			Type:         domain.PatternPeriodThemeAlignment,
			Confidence:   1 - pValue,
			Description:  fmt.Sprintf("Entries during %s periods echo its themes: %s", g.label, strings.Join(matched, ", ")),
			PValue:       pValue,
			EffectSize:   ratio - ThemeBaseline,
			EvidenceType: domain.EvidenceThemeSuggestion,
			DataPoints:   len(g.entries),
			Planet:       g.label,
			Data: domain.ThemeAlignment{
				Matched:      matched,
				KeywordCount: len(keywords),
				Ratio:        ratio,
				Threshold:    threshold,
			},
		})
	}
	return patterns
}

// detectSymptomCluster flags the period whose symptom-report rate stands out
// most from the overall rate.
func detectSymptomCluster(periods []entryGroup) *domain.Pattern {
	total, withSymptoms := 0, 0
	for _, g := range periods {
		total += len(g.entries)
		withSymptoms += countWithSymptoms(g.entries)
	}
	if total == 0 || withSymptoms == 0 || withSymptoms == total {
		return nil
	}
	overall := float64(withSymptoms) / float64(total)

	var best *entryGroup
	bestRate := 0.0
	for i, g := range periods {
		if len(g.entries) < MinSymptomEntries {
			continue
		}
		rate := float64(countWithSymptoms(g.entries)) / float64(len(g.entries))
		if rate > bestRate {
			best, bestRate = &periods[i], rate
		}
	}
	if best == nil || bestRate-overall < SymptomRateLift || bestRate < 2*overall {
		return nil
	}

	se := math.Sqrt(overall * (1 - overall) / float64(len(best.entries)))
	pValue := clampUnit(1 - stats.NormalCDF((bestRate-overall)/se))
	if pValue >= SignificanceLevel {
		return nil
	}

	symptom := mostCommonSymptom(best.entries)

	return &domain.Pattern{
		Type:       domain.PatternSymptomPeriodCluster,
		Confidence: 1 - pValue,
		Description: fmt.Sprintf("Symptoms are reported in %.0f%% of entries during %s periods versus %.0f%% overall, most often %s",
			bestRate*100, best.label, overall*100, symptom),
		PValue:       pValue,
		EffectSize:   bestRate - overall,
		EvidenceType: domain.EvidencePatternDetection,
		DataPoints:   total,
		Planet:       best.label,
		Data: domain.SymptomCluster{
			Symptom:     symptom,
			GroupRate:   bestRate,
			OverallRate: overall,
		},
	}
}

// DetectCosmicCorrelations correlates the geomagnetic index with mood and
// energy, and compares mood across moon phases.
func (o *Observer) DetectCosmicCorrelations(entries []domain.ObservableEntry) (Detection, error) {
	var d Detection

	solar := []struct {
		metric      metric
		patternType domain.PatternType
	}{
		{moodMetric, domain.PatternSolarCorrelation},
		{energyMetric, domain.PatternSolarEnergyCorrelation},
	}
	for _, s := range solar {
		var kp, values []float64
		for _, e := range entries {
			k, okK := e.Kp()
			v, okV := s.metric.value(e)
			if okK && okV {
				kp = append(kp, k)
				values = append(values, v)
			}
		}
		if len(kp) < MinSolarEntries {
			d.skip("%d entries with kp and %s, need %d", len(kp), s.metric.name, MinSolarEntries)
			continue
		}

		r := stats.PearsonCorrelation(kp, values)
		pValue := stats.PearsonPValue(r, len(kp))
		if math.IsNaN(r) || math.Abs(r) < SolarCorrelationThreshold || pValue >= SignificanceLevel {
			continue
		}

		d.Patterns = append(d.Patterns, domain.Pattern{
			Type:         s.patternType,
			Confidence:   1 - pValue,
			Description:  fmt.Sprintf("%s %s with geomagnetic activity (r=%.2f over %d entries)", capitalize(s.metric.name), direction(r), r, len(kp)),
			PValue:       pValue,
			EffectSize:   r,
			EvidenceType: domain.EvidenceCosmicCorrelation,
			DataPoints:   len(kp),
			Data: domain.CorrelationData{
				XMetric: "kp",
				YMetric: s.metric.name,
				R:       r,
				N:       len(kp),
			},
		})
	}

	phases := groupEntries(entries, func(e domain.ObservableEntry) (string, bool) {
		p := e.MoonPhase()
		return p, p != ""
	})
	groups := collectValues(phases, moodMetric)
	if n := countValues(groups); n < MinLunarEntries {
		d.skip("%d entries with moon phase and mood, need %d", n, MinLunarEntries)
		return d, nil
	}

	cmp, err := compareGroups("moon phase", moodMetric, groups, MinLunarPhaseEntries, 2)
	if err != nil {
		return d, err
	}
	if cmp != nil && cmp.significant(LunarEffectThreshold) {
		d.Patterns = append(d.Patterns, cmp.pattern(domain.PatternLunarPhaseMood, domain.EvidenceCosmicCorrelation,
			fmt.Sprintf("Mood averages %.1f around the %s versus %.1f around the %s",
				cmp.best.Mean, cmp.best.Label, cmp.worst.Mean, cmp.worst.Label),
			func(p *domain.Pattern) { p.MoonPhase = cmp.best.Label }))
	}

	return d, nil
}

// DetectTemporalPatterns compares four-hour blocks of the day and days of the week.
func (o *Observer) DetectTemporalPatterns(entries []domain.ObservableEntry) (Detection, error) {
	var d Detection

	hourly := []struct {
		metric      metric
		patternType domain.PatternType
	}{
		{moodMetric, domain.PatternTimeOfDayMood},
		{energyMetric, domain.PatternTimeOfDayEnergy},
	}
	for _, h := range hourly {
		blocks := bucketByHourBlock(entries, h.metric)
		if n := countValues(blocks); n < MinTemporalEntries {
			d.skip("%d entries with %s, need %d for time-of-day analysis", n, h.metric.name, MinTemporalEntries)
			continue
		}
		cmp, err := compareGroups("time of day", h.metric, blocks, MinTemporalBucketEntries, 2)
		if err != nil {
			return d, err
		}
		if cmp == nil || !cmp.significant(TemporalEffectThreshold) {
			continue
		}
		hour := cmp.best.key * HourBlockSize
		d.Patterns = append(d.Patterns, cmp.pattern(h.patternType, domain.EvidenceTemporalPattern,
			fmt.Sprintf("%s averages %.1f between %s versus %.1f between %s",
				capitalize(h.metric.name), cmp.best.Mean, cmp.best.Label, cmp.worst.Mean, cmp.worst.Label),
			func(p *domain.Pattern) { p.HourOfDay = &hour }))
	}

	days := bucketByWeekday(entries, moodMetric)
	if n := countValues(days); n < MinTemporalEntries {
		d.skip("%d entries with mood, need %d for day-of-week analysis", n, MinTemporalEntries)
		return d, nil
	}
	cmp, err := compareGroups("day of week", moodMetric, days, MinTemporalBucketEntries, 2)
	if err != nil {
		return d, err
	}
	if cmp != nil && cmp.significant(TemporalEffectThreshold) {
		weekday := cmp.best.key
		d.Patterns = append(d.Patterns, cmp.pattern(domain.PatternDayOfWeekMood, domain.EvidenceTemporalPattern,
			fmt.Sprintf("Mood averages %.1f on %ss versus %.1f on %ss",
				cmp.best.Mean, cmp.best.Label, cmp.worst.Mean, cmp.worst.Label),
			func(p *domain.Pattern) { p.DayOfWeek = &weekday }))
	}

	return d, nil
}

// DetectGatePatterns compares mood across sun gates.
func (o *Observer) DetectGatePatterns(entries []domain.ObservableEntry) (Detection, error) {
	var d Detection

	byGate := make(map[int][]domain.ObservableEntry)
	for _, e := range entries {
		if g := e.SunGate(); g != 0 {
			byGate[g] = append(byGate[g], e)
		}
	}

	gates := make([]int, 0, len(byGate))
	for g := range byGate {
		gates = append(gates, g)
	}
	sort.Ints(gates)

	var groups []valueGroup
	for _, g := range gates {
		groups = append(groups, valueGroup{
			label:  fmt.Sprintf("Gate %d", g),
			key:    g,
			values: metricValues(byGate[g], moodMetric),
		})
	}

	qualifying := 0
	for _, g := range groups {
		if len(g.values) >= MinGateEntries {
			qualifying++
		}
	}
	if qualifying < MinGates {
		d.skip("found %d gates with at least %d mood entries, need %d", qualifying, MinGateEntries, MinGates)
		return d, nil
	}

	cmp, err := compareGroups("sun gate", moodMetric, groups, MinGateEntries, MinGates)
	if err != nil {
		return d, err
	}
	if cmp == nil || !cmp.significant(GateEffectThreshold) {
		return d, nil
	}

	gate := cmp.best.key
	line := mostCommonLine(byGate[gate])
	d.Patterns = append(d.Patterns, cmp.pattern(domain.PatternGateMoodVariance, domain.EvidenceGateActivation,
		fmt.Sprintf("Mood averages %.1f while the sun is in %s versus %.1f in %s",
			cmp.best.Mean, cmp.best.Label, cmp.worst.Mean, cmp.worst.Label),
		func(p *domain.Pattern) {
			p.SunGate = gate
			p.GateLine = line
		}))

	return d, nil
}

type metric struct {
	name  string
	value func(domain.ObservableEntry) (float64, bool)
}

var (
	moodMetric   = metric{name: "mood", value: domain.ObservableEntry.MoodValue}
	energyMetric = metric{name: "energy", value: domain.ObservableEntry.EnergyValue}
)

type entryGroup struct {
	label   string
	entries []domain.ObservableEntry
}

type valueGroup struct {
	label  string
	key    int
	values []float64
}

// groupEntries buckets entries by a string tag, sorted by tag for stable output.
func groupEntries(entries []domain.ObservableEntry, tag func(domain.ObservableEntry) (string, bool)) []entryGroup {
	index := make(map[string]int)
	var groups []entryGroup
	for _, e := range entries {
		label, ok := tag(e)
		if !ok {
			continue
		}
		i, seen := index[label]
		if !seen {
			i = len(groups)
			index[label] = i
			groups = append(groups, entryGroup{label: label})
		}
		groups[i].entries = append(groups[i].entries, e)
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].label < groups[b].label })
	return groups
}

func collectValues(groups []entryGroup, m metric) []valueGroup {
	out := make([]valueGroup, 0, len(groups))
	for i, g := range groups {
		out = append(out, valueGroup{label: g.label, key: i, values: metricValues(g.entries, m)})
	}
	return out
}

func metricValues(entries []domain.ObservableEntry, m metric) []float64 {
	var values []float64
	for _, e := range entries {
		if v, ok := m.value(e); ok {
			values = append(values, v)
		}
	}
	return values
}

func countValues(groups []valueGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.values)
	}
	return n
}

var hourBlockLabels = []string{"00:00-04:00", "04:00-08:00", "08:00-12:00", "12:00-16:00", "16:00-20:00", "20:00-24:00"}

// bucketByHourBlock uses each entry's own timestamp location.
func bucketByHourBlock(entries []domain.ObservableEntry, m metric) []valueGroup {
	groups := make([]valueGroup, len(hourBlockLabels))
	for i, label := range hourBlockLabels {
		groups[i] = valueGroup{label: label, key: i}
	}
	for _, e := range entries {
		if v, ok := m.value(e); ok {
			i := e.CreatedAt.Hour() / HourBlockSize
			groups[i].values = append(groups[i].values, v)
		}
	}
	return groups
}

func bucketByWeekday(entries []domain.ObservableEntry, m metric) []valueGroup {
	groups := make([]valueGroup, 7)
	for i := range groups {
		groups[i] = valueGroup{label: time.Weekday(i).String(), key: i}
	}
	for _, e := range entries {
		if v, ok := m.value(e); ok {
			i := int(e.CreatedAt.Weekday())
			groups[i].values = append(groups[i].values, v)
		}
	}
	return groups
}

type groupComparison struct {
	dimension string
	metric    string
	pValue    float64
	f         float64
	effect    float64
	groups    []domain.GroupStat
	best      groupStat
	worst     groupStat
	n         int
}

type groupStat struct {
	domain.GroupStat
	key int
}

// compareGroups runs a one-way ANOVA over the groups holding at least
// minPerGroup values. It returns nil when fewer than minGroups qualify.
func compareGroups(dimension string, m metric, groups []valueGroup, minPerGroup, minGroups int) (*groupComparison, error) {
	var eligible []valueGroup
	for _, g := range groups {
		if len(g.values) >= minPerGroup {
			eligible = append(eligible, g)
		}
	}
	if len(eligible) < minGroups || len(eligible) < 2 {
		return nil, nil
	}

	cmp := &groupComparison{dimension: dimension, metric: m.name}
	samples := make([][]float64, len(eligible))
	for i, g := range eligible {
		mean, err := mstats.Mean(g.values)
		if err != nil {
			return nil, fmt.Errorf("mean of %s %q: %w", dimension, g.label, err)
		}
		s := groupStat{GroupStat: domain.GroupStat{Label: g.label, Count: len(g.values), Mean: mean}, key: g.key}
		cmp.groups = append(cmp.groups, s.GroupStat)
		if i == 0 || s.Mean > cmp.best.Mean {
			cmp.best = s
		}
		if i == 0 || s.Mean < cmp.worst.Mean {
			cmp.worst = s
		}
		samples[i] = g.values
		cmp.n += len(g.values)
	}

	cmp.pValue, cmp.f = stats.OneWayAnova(samples)
	cmp.effect = cmp.best.Mean - cmp.worst.Mean
	return cmp, nil
}

// significant requires both statistical and practical significance.
func (c *groupComparison) significant(minEffect float64) bool {
	return c.pValue < SignificanceLevel && c.effect >= minEffect
}

func (c *groupComparison) pattern(t domain.PatternType, evidence domain.EvidenceType, description string, context func(*domain.Pattern)) domain.Pattern {
	p := domain.Pattern{
		Type:         t,
		Confidence:   1 - c.pValue,
		Description:  fmt.Sprintf("%s (p=%.3f)", description, c.pValue),
		PValue:       c.pValue,
		EffectSize:   c.effect,
		EvidenceType: evidence,
		DataPoints:   c.n,
		Data: domain.GroupComparison{
			Metric:     c.metric,
			Dimension:  c.dimension,
			Groups:     c.groups,
			Best:       c.best.Label,
			Worst:      c.worst.Label,
			FStatistic: c.f,
		},
	}
	if context != nil {
		context(&p)
	}
	return p
}

func countWithSymptoms(entries []domain.ObservableEntry) int {
	n := 0
	for _, e := range entries {
		if hasSymptom(e) {
			n++
		}
	}
	return n
}

func hasSymptom(e domain.ObservableEntry) bool {
	for _, s := range e.Symptoms {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// mostCommonSymptom assumes at least one entry has a non-blank symptom.
func mostCommonSymptom(entries []domain.ObservableEntry) string {
	counts := make(map[string]int)
	for _, e := range entries {
		for _, s := range e.Symptoms {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				counts[s]++
			}
		}
	}
	best, bestCount := "", 0
	for s, c := range counts {
		if c > bestCount || (c == bestCount && s < best) {
			best, bestCount = s, c
		}
	}
	return best
}

func mostCommonLine(entries []domain.ObservableEntry) int {
	var counts [7]int
	for _, e := range entries {
		counts[e.SunLine()]++
	}
	best := 0
	for line := 1; line <= 6; line++ {
		if counts[line] > counts[best] || (best == 0 && counts[line] > 0) {
			best = line
		}
	}
	return best
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func daysCovered(entries []domain.ObservableEntry) float64 {
	if len(entries) < 2 {
		return 0
	}
	first, last := entries[0].CreatedAt, entries[0].CreatedAt
	for _, e := range entries[1:] {
		if e.CreatedAt.Before(first) {
			first = e.CreatedAt
		}
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}
	return last.Sub(first).Hours() / 24
}

func summarizeMood(entries []domain.ObservableEntry) *MoodSummary {
	moods := metricValues(entries, moodMetric)
	if len(moods) == 0 {
		return nil
	}

	summary := &MoodSummary{Count: len(moods)}
	summary.Mean, _ = mstats.Mean(moods)
	summary.Median, _ = mstats.Median(moods)
	if len(moods) > 1 {
		summary.StdDev, _ = mstats.StandardDeviationSample(moods)
	}
	return summary
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
