// Package uihelpers holds the pure logic of the viewer UI (option lists and
// sizing rules) so it can be unit tested without a display.
package uihelpers

import (
	"sort"

	"github.com/jletteboer/P4DS/src/charts"
	"github.com/jletteboer/P4DS/src/weblog"
)

// CountryOptions builds the country dropdown entries: the top n countries by
// hits plus the charts.AllCountries sentinel, sorted. The sentinel's leading
// '#' sorts it first.
func CountryOptions(records []weblog.Record, n int) []string {
	top := weblog.TopNBy(records, func(r weblog.Record) string { return r.Country }, n)
	options := make([]string, 0, len(top)+1)
	options = append(options, charts.AllCountries)
	for _, gc := range top {
		if gc.Key == "" {
			continue
		}
		options = append(options, gc.Key)
	}
	sort.Strings(options)
	return options
}

// ChartSize clamps a requested chart width and derives the height. Charts
// stay readable between 420 and 1400 wide.
func ChartSize(rawW int) (int, int) {
	w := rawW
	if w < 420 {
		w = 420
	}
	if w > 1400 {
		w = 1400
	}
	h := int(float32(w) * 0.8)
	if h < 320 {
		h = 320
	}
	if h > 620 {
		h = 620
	}
	return w, h
}

// ClampWindow bounds the moving-average window slider value to something the
// series can support: at least 2, at most half the series length.
func ClampWindow(window, seriesLen int) int {
	if window < 2 {
		window = 2
	}
	max := seriesLen / 2
	if max < 2 {
		max = 2
	}
	if window > max {
		window = max
	}
	return window
}
