// weblogviewer is the interactive exploration GUI for downloaded web log
// exports. The Geo tab shows paired city/country bar charts with a country
// dropdown and a top-N slider; the Trend tab shows hits per hour with a
// moving average, optional deviation bounds and outlier markers.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/jletteboer/P4DS/cmd/weblogviewer/uihelpers"
	"github.com/jletteboer/P4DS/src/charts"
	"github.com/jletteboer/P4DS/src/weblog"
)

const maxTopN = 20

type uiState struct {
	app      fyne.App
	window   fyne.Window
	filePath string
	records  []weblog.Record

	// Geo tab
	selectedCountry string
	topN            int

	// Trend tab
	maWindow     int
	maMeasure    string
	maDeviation  string
	showBounds   bool
	showOutliers bool

	fileLabel        *widget.Label
	countrySelect    *widget.Select
	topNLabel        *widget.Label
	cityImgCanvas    *canvas.Image
	countryImgCanvas *canvas.Image
	trendImgCanvas   *canvas.Image
	windowLabel      *widget.Label
}

func main() {
	var fileFlag string
	flag.StringVar(&fileFlag, "file", "", "Path to a downloaded CSV export")
	flag.Parse()

	a := app.NewWithID("com.p4ds.weblogviewer")
	w := a.NewWindow("Weblog Viewer")
	w.Resize(fyne.NewSize(1200, 760))

	state := &uiState{
		app:             a,
		window:          w,
		filePath:        fileFlag,
		selectedCountry: charts.AllCountries,
		topN:            15,
		maWindow:        7,
		maMeasure:       string(weblog.MeasureMean),
		maDeviation:     string(weblog.MeasureMean),
	}

	state.fileLabel = widget.NewLabel("(no file loaded)")

	// chart placeholders
	barW, barH := uihelpers.ChartSize(540)
	state.cityImgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.cityImgCanvas.FillMode = canvas.ImageFillContain
	state.cityImgCanvas.SetMinSize(fyne.NewSize(float32(barW), float32(barH)))
	state.countryImgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.countryImgCanvas.FillMode = canvas.ImageFillContain
	state.countryImgCanvas.SetMinSize(fyne.NewSize(float32(barW), float32(barH)))
	trendW, trendH := uihelpers.ChartSize(1080)
	state.trendImgCanvas = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
	state.trendImgCanvas.FillMode = canvas.ImageFillContain
	state.trendImgCanvas.SetMinSize(fyne.NewSize(float32(trendW), float32(trendH)))

	// Geo tab controls
	state.countrySelect = widget.NewSelect([]string{charts.AllCountries}, func(v string) {
		state.selectedCountry = v
		redrawGeo(state)
	})
	state.countrySelect.Selected = charts.AllCountries

	state.topNLabel = widget.NewLabel(fmt.Sprintf("%d", state.topN))
	topSlider := widget.NewSlider(1, maxTopN)
	topSlider.Step = 1
	topSlider.Value = float64(state.topN)
	topSlider.OnChanged = func(v float64) {
		n := int(v)
		if n == state.topN {
			return
		}
		state.topN = n
		state.topNLabel.SetText(fmt.Sprintf("%d", n))
		redrawGeo(state)
	}

	geoTop := container.NewHBox(
		widget.NewLabel("Country:"), state.countrySelect,
		widget.NewLabel("Top:"), state.topNLabel,
	)
	geoTab := container.NewBorder(
		container.NewVBox(geoTop, topSlider), nil, nil, nil,
		container.NewGridWithColumns(2, state.cityImgCanvas, state.countryImgCanvas),
	)

	// Trend tab controls
	state.windowLabel = widget.NewLabel(fmt.Sprintf("%d", state.maWindow))
	windowSlider := widget.NewSlider(2, 60)
	windowSlider.Step = 1
	windowSlider.Value = float64(state.maWindow)
	windowSlider.OnChanged = func(v float64) {
		n := int(v)
		if n == state.maWindow {
			return
		}
		state.maWindow = n
		state.windowLabel.SetText(fmt.Sprintf("%d", n))
		redrawTrend(state)
	}
	measureSelect := widget.NewSelect([]string{"mean", "median"}, func(v string) {
		state.maMeasure = v
		redrawTrend(state)
	})
	measureSelect.Selected = state.maMeasure
	deviationSelect := widget.NewSelect([]string{"mean", "median"}, func(v string) {
		state.maDeviation = v
		redrawTrend(state)
	})
	deviationSelect.Selected = state.maDeviation
	boundsChk := widget.NewCheck("Bounds", func(v bool) {
		state.showBounds = v
		redrawTrend(state)
	})
	outliersChk := widget.NewCheck("Outliers", func(v bool) {
		state.showOutliers = v
		redrawTrend(state)
	})

	trendTop := container.NewHBox(
		widget.NewLabel("Window:"), state.windowLabel,
		widget.NewLabel("Measure:"), measureSelect,
		widget.NewLabel("Deviation:"), deviationSelect,
		boundsChk, outliersChk,
	)
	trendTab := container.NewBorder(
		container.NewVBox(trendTop, windowSlider), nil, nil, nil,
		container.NewVScroll(state.trendImgCanvas),
	)

	top := container.NewHBox(
		widget.NewButton("Open…", func() { openFileDialog(state) }),
		widget.NewButton("Reload", func() { loadFile(state) }),
		widget.NewLabel("File:"), state.fileLabel,
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Geo", geoTab),
		container.NewTabItem("Trend", trendTab),
	)

	w.SetContent(container.NewBorder(top, nil, nil, nil, tabs))

	if state.filePath != "" {
		loadFile(state)
	}
	w.ShowAndRun()
}

func openFileDialog(state *uiState) {
	fo := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.filePath = rc.URI().Path()
		loadFile(state)
	}, state.window)
	fo.Show()
}

func loadFile(state *uiState) {
	if state.filePath == "" {
		return
	}
	f, err := os.Open(state.filePath)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	defer f.Close()
	records, err := weblog.ReadCSV(f)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.records = records
	state.fileLabel.SetText(truncatePath(state.filePath, 48))
	fmt.Printf("[viewer] loaded %d records from %s\n", len(records), state.filePath)

	options := uihelpers.CountryOptions(records, maxTopN)
	state.countrySelect.Options = options
	if !contains(options, state.selectedCountry) {
		state.selectedCountry = charts.AllCountries
		state.countrySelect.Selected = charts.AllCountries
	}
	state.countrySelect.Refresh()

	redrawGeo(state)
	redrawTrend(state)
}

func redrawGeo(state *uiState) {
	if len(state.records) == 0 {
		return
	}
	cityImg, countryImg, err := charts.CountryCityBars(state.records, state.selectedCountry, state.topN)
	if err != nil {
		fmt.Printf("[viewer] geo charts: %v\n", err)
		return
	}
	state.cityImgCanvas.Image = cityImg
	state.cityImgCanvas.Refresh()
	state.countryImgCanvas.Image = countryImg
	state.countryImgCanvas.Refresh()
}

func redrawTrend(state *uiState) {
	if len(state.records) == 0 {
		return
	}
	_, counts := weblog.BucketCounts(state.records, time.Hour)
	if len(counts) == 0 {
		fmt.Println("[viewer] no timestamped records, trend chart skipped")
		return
	}
	window := uihelpers.ClampWindow(state.maWindow, len(counts))
	img, err := charts.MovingAverage(counts, charts.MovingAverageOptions{
		Window:        window,
		Measure:       state.maMeasure,
		DeviationType: state.maDeviation,
		ShowBounds:    state.showBounds,
		ShowOutliers:  state.showOutliers,
	})
	if err != nil {
		fmt.Printf("[viewer] trend chart: %v\n", err)
		return
	}
	state.trendImgCanvas.Image = img
	state.trendImgCanvas.Refresh()
}

func truncatePath(p string, max int) string {
	if len(p) <= max {
		return p
	}
	return "…" + p[len(p)-max:]
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
