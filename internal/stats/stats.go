// Package stats holds the pure statistical helpers the observer uses to decide
// whether a grouping difference is worth reporting.
//
// The p-values produced here are normal-tail approximations. They are good
// enough for exploratory significance filtering at the 0.05 level and are not
// meant to back formal statistical claims.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinCorrelationSamples is the smallest series length Pearson r is defined for here.
const MinCorrelationSamples = 3

// Mean returns the arithmetic mean of arr, or 0 for an empty slice.
func Mean(arr []float64) float64 {
	if len(arr) == 0 {
		return 0
	}
	return stat.Mean(arr, nil)
}

// StdDev returns the Bessel-corrected sample standard deviation (n-1 divisor).
// Fewer than two values yield 0.
func StdDev(arr []float64) float64 {
	if len(arr) < 2 {
		return 0
	}
	return stat.StdDev(arr, nil)
}

// PearsonCorrelation returns Pearson's r for two equally sized series.
// It returns NaN when fewer than three pairs are given, when the lengths
// differ, or when either series has zero variance.
func PearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if n < MinCorrelationSamples || len(y) != n {
		return math.NaN()
	}
	if StdDev(x) == 0 || StdDev(y) == 0 {
		return math.NaN()
	}

	r := stat.Correlation(x, y, nil)
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

// PearsonPValue returns an approximate two-tailed p-value for r over n pairs.
// t = |r|*sqrt(df/(1-r^2)) with df = n-2 is referred to the standard normal tail.
func PearsonPValue(r float64, n int) float64 {
	if math.IsNaN(r) || n < MinCorrelationSamples {
		return 1
	}
	absR := math.Abs(r)
	if absR >= 1 {
		return 0
	}

	df := float64(n - 2)
	t := absR * math.Sqrt(df/(1-r*r))
	return clampProbability(2 * (1 - NormalCDF(t)))
}

// OneWayAnovaP runs a one-way ANOVA over groups and returns an approximate
// p-value for the F statistic. Empty groups are ignored. Degenerate inputs
// (fewer than two groups, no within-group degrees of freedom, or no
// within-group variance) return 1: there is no evidence of a difference.
func OneWayAnovaP(groups [][]float64) float64 {
	p, _ := OneWayAnova(groups)
	return p
}

// OneWayAnova is OneWayAnovaP that also reports the F statistic (0 when degenerate).
func OneWayAnova(groups [][]float64) (pValue float64, f float64) {
	var nonEmpty [][]float64
	total := 0
	grandSum := 0.0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		nonEmpty = append(nonEmpty, g)
		total += len(g)
		for _, v := range g {
			grandSum += v
		}
	}

	k := len(nonEmpty)
	if k < 2 {
		return 1, 0
	}

	dfBetween := float64(k - 1)
	dfWithin := float64(total - k)
	if dfWithin <= 0 {
		return 1, 0
	}

	grandMean := grandSum / float64(total)
	var ssBetween, ssWithin float64
	for _, g := range nonEmpty {
		m := Mean(g)
		ssBetween += float64(len(g)) * (m - grandMean) * (m - grandMean)
		for _, v := range g {
			ssWithin += (v - m) * (v - m)
		}
	}
	if ssWithin == 0 {
		return 1, 0
	}

	f = (ssBetween / dfBetween) / (ssWithin / dfWithin)
	return FToPValue(f, dfBetween), f
}

// FToPValue converts an F statistic to an upper-tail p-value with the
// normal approximation z = sqrt(2F) - sqrt(2*dfBetween - 1).
func FToPValue(f, dfBetween float64) float64 {
	if f <= 0 || math.IsNaN(f) {
		return 1
	}
	z := math.Sqrt(2*f) - math.Sqrt(2*dfBetween-1)
	return clampProbability(1 - NormalCDF(z))
}

// NormalCDF is the standard normal cumulative distribution function.
func NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
