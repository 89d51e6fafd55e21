package weblog

import (
	"fmt"
	"math"
	"sort"
)

// Measure selects the central tendency used for rolling windows and
// deviation computation.
type Measure string

const (
	MeasureMean   Measure = "mean"
	MeasureMedian Measure = "median"
)

// ParseMeasure validates s against the two supported measures.
func ParseMeasure(s string) (Measure, error) {
	switch Measure(s) {
	case MeasureMean, MeasureMedian:
		return Measure(s), nil
	}
	return "", fmt.Errorf("measure must be one of [mean median], got %q", s)
}

// Rolling computes a trailing rolling measure over series. The output has
// the same length as the input; the first window-1 positions are NaN because
// the window has not filled yet.
func Rolling(series []float64, window int, m Measure) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %d", window)
	}
	if _, err := ParseMeasure(string(m)); err != nil {
		return nil, err
	}
	out := make([]float64, len(series))
	for i := range series {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		win := series[i-window+1 : i+1]
		if m == MeasureMean {
			out[i] = mean(win)
		} else {
			out[i] = median(win)
		}
	}
	return out, nil
}

// MeanAbsDeviation is the average absolute distance from the series mean.
func MeanAbsDeviation(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m := mean(series)
	sum := 0.0
	for _, v := range series {
		sum += math.Abs(v - m)
	}
	return sum / float64(len(series))
}

// MedianAbsDeviation is the median absolute distance from the series median
// (unscaled).
func MedianAbsDeviation(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	med := median(series)
	devs := make([]float64, len(series))
	for i, v := range series {
		devs[i] = math.Abs(v - med)
	}
	return median(devs)
}

// Deviation computes the whole-series spread value for the given measure.
func Deviation(series []float64, m Measure) (float64, error) {
	switch m {
	case MeasureMean:
		return MeanAbsDeviation(series), nil
	case MeasureMedian:
		return MedianAbsDeviation(series), nil
	}
	return 0, fmt.Errorf("deviation type must be one of [mean median], got %q", m)
}

// Outliers returns the indices of series points falling outside
// rolling[i] ± dev. Positions where the rolling value is NaN (unfilled
// window) are never flagged.
func Outliers(series, rolling []float64, dev float64) []int {
	var idx []int
	for i := range series {
		if i >= len(rolling) || math.IsNaN(rolling[i]) {
			continue
		}
		if series[i] < rolling[i]-dev || series[i] > rolling[i]+dev {
			idx = append(idx, i)
		}
	}
	return idx
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return (cp[mid-1] + cp[mid]) / 2
}
