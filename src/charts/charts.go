// Package charts renders the exploratory plots for web log analysis: paired
// country/city bar charts with highlight coloring and a moving-average line
// chart with optional deviation bounds and outlier markers. All charts are
// rendered to PNG via go-chart and returned as image.Image so they can be
// shown in a viewer or written to disk.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jletteboer/P4DS/src/weblog"
)

// AllCountries is the selector sentinel that disables country filtering for
// the city chart. The leading '#' sorts it to the top of a country list.
const AllCountries = "# All"

var (
	baseColor      = drawing.ColorFromHex("38a3d8")
	highlightColor = drawing.ColorFromHex("ffa500")
	edgeColor      = drawing.ColorBlack
	boundColor     = drawing.ColorFromHex("cc33cc")
	rollingColor   = drawing.ColorGreen
	outlierColor   = drawing.ColorRed
)

// pointStyle returns a style that renders points only (no connecting line).
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    5,
		DotColor:    col,
	}
}

// CountryCityBars renders the two bar charts of §"Geo" exploration: hits by
// city (left) and hits by country (right), both over the top n groups. When
// selectedCountry is not AllCountries the city chart only counts rows from
// that country and the matching bar of the country chart is drawn in the
// highlight color. The "Selected Country" legend is always present on the
// country chart, whatever the selection.
func CountryCityBars(rows []weblog.Record, selectedCountry string, topN int) (cityImg, countryImg image.Image, err error) {
	if topN < 1 {
		return nil, nil, fmt.Errorf("topN must be at least 1, got %d", topN)
	}

	countryCounts := weblog.TopNBy(rows, func(r weblog.Record) string { return r.Country }, topN)

	cityRows := rows
	cityTitle := fmt.Sprintf("Hits by top %d cities", topN)
	if selectedCountry != AllCountries {
		cityRows = nil
		for _, r := range rows {
			if r.Country == selectedCountry {
				cityRows = append(cityRows, r)
			}
		}
		cityTitle = fmt.Sprintf("Hits from top %d cities of %s", topN, selectedCountry)
	}
	cityCounts := weblog.TopNBy(cityRows, func(r weblog.Record) string { return r.City }, topN)

	cityImg = renderCountBars(cityTitle, cityCounts, "")
	countryImg = renderCountBars(fmt.Sprintf("Hits from top %d countries", topN), countryCounts, selectedCountry)
	countryImg = drawLegend(countryImg, highlightColor, "Selected Country")
	return cityImg, countryImg, nil
}

// renderCountBars draws one bar chart of (key, count) pairs on a log-scaled
// count axis. go-chart has no native log axis, so bars carry log-transformed
// heights and the ticks are labeled with the real counts.
func renderCountBars(title string, counts []weblog.GroupCount, highlightKey string) image.Image {
	if len(counts) == 0 {
		return blank(520, 512)
	}
	maxCount := counts[0].Count
	ticks := logTicks(maxCount)
	bars := make([]chart.Value, 0, len(counts))
	for _, gc := range counts {
		fill := baseColor
		if highlightKey != "" && gc.Key == highlightKey {
			fill = highlightColor
		}
		bars = append(bars, chart.Value{
			Value: logScale(gc.Count),
			Label: gc.Key,
			Style: chart.Style{FillColor: fill, StrokeColor: edgeColor, StrokeWidth: 1},
		})
	}
	width := len(bars)*55 + 80
	if width < 420 {
		width = 420
	}
	bc := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		Width:      width,
		Height:     512,
		BarWidth:   40,
		BarSpacing: 15,
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:  "hits (log scale)",
			Range: &chart.ContinuousRange{Min: 0, Max: ticks[len(ticks)-1].Value},
			Ticks: ticks,
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		fmt.Printf("[charts] bar chart render error: %v; showing blank fallback\n", err)
		return blank(width, 512)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		fmt.Printf("[charts] bar chart decode error: %v; showing blank fallback\n", err)
		return blank(width, 512)
	}
	return img
}

// logScale maps a hit count onto the chart axis: one unit per decade, with
// count 1 at height 1 so single-hit groups stay visible.
func logScale(count int) float64 {
	if count < 1 {
		return 0
	}
	return math.Log10(float64(count)) + 1
}

// logTicks builds count-labeled ticks at each decade up to maxCount.
func logTicks(maxCount int) []chart.Tick {
	ticks := []chart.Tick{{Value: 0, Label: "0"}}
	for k := 0; ; k++ {
		decade := math.Pow(10, float64(k))
		ticks = append(ticks, chart.Tick{Value: float64(k) + 1, Label: formatCount(decade)})
		if decade >= float64(maxCount) {
			break
		}
	}
	return ticks
}

func formatCount(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.0fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.0fk", v/1_000)
	}
	return fmt.Sprintf("%.0f", v)
}

// MovingAverageOptions configures the moving-average/anomaly chart.
type MovingAverageOptions struct {
	Window        int
	Measure       string // mean or median
	DeviationType string // mean or median absolute deviation
	ShowBounds    bool
	ShowOutliers  bool
}

// MovingAverage renders series with a trailing rolling measure, optionally a
// constant ± deviation band around it, and with ShowOutliers additionally
// the points falling outside that band as red markers. Invalid measure or
// deviation type fails before anything is computed or rendered.
func MovingAverage(series []float64, opts MovingAverageOptions) (image.Image, error) {
	measure, err := weblog.ParseMeasure(opts.Measure)
	if err != nil {
		return nil, fmt.Errorf("measure: %w", err)
	}
	devType, err := weblog.ParseMeasure(opts.DeviationType)
	if err != nil {
		return nil, fmt.Errorf("deviation type: %w", err)
	}
	rolling, err := weblog.Rolling(series, opts.Window, measure)
	if err != nil {
		return nil, err
	}
	if len(series) <= opts.Window {
		return nil, fmt.Errorf("series of %d points is too short for window %d", len(series), opts.Window)
	}

	xs := make([]float64, len(series))
	for i := range xs {
		xs[i] = float64(i)
	}

	// Rolling curve only exists from index window-1 on.
	start := opts.Window - 1
	var chartSeries []chart.Series
	chartSeries = append(chartSeries, chart.ContinuousSeries{
		Name:    fmt.Sprintf("Moving %s", measure),
		XValues: xs[start:],
		YValues: rolling[start:],
		Style:   chart.Style{StrokeColor: rollingColor, StrokeWidth: 2, StrokeDashArray: []float64{5, 3}},
	})
	chartSeries = append(chartSeries, chart.ContinuousSeries{
		Name:    "Actual values",
		XValues: xs[opts.Window:],
		YValues: series[opts.Window:],
		Style:   chart.Style{StrokeColor: baseColor, StrokeWidth: 1.5},
	})

	title := fmt.Sprintf("Moving %s with a window size of %d", measure, opts.Window)
	if opts.ShowBounds {
		dev, err := weblog.Deviation(series, devType)
		if err != nil {
			return nil, err
		}
		upper := make([]float64, len(rolling)-start)
		lower := make([]float64, len(rolling)-start)
		for i := range upper {
			upper[i] = rolling[start+i] + dev
			lower[i] = rolling[start+i] - dev
		}
		boundStyle := chart.Style{StrokeColor: boundColor, StrokeWidth: 1, StrokeDashArray: []float64{2, 4}}
		chartSeries = append(chartSeries,
			chart.ContinuousSeries{Name: "Lower bound / Upper bound", XValues: xs[start:], YValues: upper, Style: boundStyle},
			chart.ContinuousSeries{XValues: xs[start:], YValues: lower, Style: boundStyle},
		)

		if opts.ShowOutliers {
			idx := weblog.Outliers(series, rolling, dev)
			if len(idx) > 0 {
				ox := make([]float64, len(idx))
				oy := make([]float64, len(idx))
				for i, j := range idx {
					ox[i] = float64(j)
					oy[i] = series[j]
				}
				chartSeries = append(chartSeries, chart.ContinuousSeries{
					Name:    "Outliers",
					XValues: ox,
					YValues: oy,
					Style:   pointStyle(outlierColor),
				})
			}
			title = fmt.Sprintf("Moving %s with a window size of %d (outliers: %d)", measure, opts.Window, len(idx))
		}
	}

	ch := chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 28}},
		Width:      1000,
		Height:     400,
		YAxis:      chart.YAxis{Name: "hits"},
		Series:     chartSeries,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render moving average chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode moving average chart: %w", err)
	}
	return img, nil
}

// blank is the fallback surface when a chart cannot be rendered, so callers
// still get a visible update.
func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 245, G: 245, B: 245, A: 255})
		}
	}
	return img
}
