package weblog

import (
	"math"
	"testing"
)

func TestParseMeasure(t *testing.T) {
	for _, s := range []string{"mean", "median"} {
		if _, err := ParseMeasure(s); err != nil {
			t.Errorf("ParseMeasure(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "mode", "bogus", "Mean"} {
		if _, err := ParseMeasure(s); err == nil {
			t.Errorf("ParseMeasure(%q): expected error", s)
		}
	}
}

func TestRollingMean(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	got, err := Rolling(series, 3, MeasureMean)
	if err != nil {
		t.Fatalf("Rolling: %v", err)
	}
	if len(got) != len(series) {
		t.Fatalf("length: got %d want %d", len(got), len(series))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("position %d: got %v, want NaN before window fills", i, got[i])
		}
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(got[i+2]-w) > 1e-9 {
			t.Errorf("position %d: got %v want %v", i+2, got[i+2], w)
		}
	}
}

func TestRollingMedian(t *testing.T) {
	series := []float64{1, 100, 2, 3, 200}
	got, err := Rolling(series, 3, MeasureMedian)
	if err != nil {
		t.Fatalf("Rolling: %v", err)
	}
	// windows: [1 100 2]=2, [100 2 3]=3, [2 3 200]=3
	want := []float64{2, 3, 3}
	for i, w := range want {
		if got[i+2] != w {
			t.Errorf("position %d: got %v want %v", i+2, got[i+2], w)
		}
	}
}

func TestRollingRejectsBadInput(t *testing.T) {
	if _, err := Rolling([]float64{1, 2}, 0, MeasureMean); err == nil {
		t.Fatalf("expected error for zero window")
	}
	if _, err := Rolling([]float64{1, 2}, 2, Measure("bogus")); err == nil {
		t.Fatalf("expected error for bogus measure")
	}
}

func TestMeanAbsDeviation(t *testing.T) {
	// mean=3, |x-3| = 2 1 0 1 2 -> mad = 1.2
	got := MeanAbsDeviation([]float64{1, 2, 3, 4, 5})
	if math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("MeanAbsDeviation: got %v want 1.2", got)
	}
}

func TestMedianAbsDeviation(t *testing.T) {
	// median=3, |x-3| = 2 1 0 1 97 -> median = 1
	got := MedianAbsDeviation([]float64{1, 2, 3, 4, 100})
	if got != 1 {
		t.Fatalf("MedianAbsDeviation: got %v want 1", got)
	}
}

func TestOutliersFlagsSingleSpike(t *testing.T) {
	series := make([]float64, 20)
	for i := range series {
		series[i] = 10
	}
	series[12] = 1000
	rolling, err := Rolling(series, 5, MeasureMedian)
	if err != nil {
		t.Fatalf("Rolling: %v", err)
	}
	dev := MedianAbsDeviation(series)
	idx := Outliers(series, rolling, dev)
	if len(idx) != 1 || idx[0] != 12 {
		t.Fatalf("Outliers: got %v, want exactly [12]", idx)
	}
}

func TestOutliersSkipsUnfilledWindow(t *testing.T) {
	series := []float64{1000, 10, 10, 10, 10}
	rolling, err := Rolling(series, 5, MeasureMean)
	if err != nil {
		t.Fatalf("Rolling: %v", err)
	}
	// Only the final position has a defined rolling value.
	idx := Outliers(series, rolling, 1)
	for _, i := range idx {
		if i < 4 {
			t.Fatalf("flagged index %d inside unfilled window", i)
		}
	}
}
