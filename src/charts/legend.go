package charts

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawLegend overlays a small color swatch plus label in the top-right
// corner of img. Used to mark the highlighted bar, which go-chart's legend
// renderable cannot express for bar charts.
func drawLegend(img image.Image, swatch drawing.Color, text string) image.Image {
	if img == nil || text == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 51, G: 51, B: 51, A: 255})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()

	const pad = 6
	const swatchSize = 10
	x := b.Max.X - tw - swatchSize - 3*pad
	y := b.Min.Y + face.Metrics().Ascent.Ceil() + pad

	// Light background so the legend stays readable over grid lines.
	bg := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 230})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad/2, b.Max.X-pad/2, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)

	swatchCol := image.NewUniform(color.RGBA{R: swatch.R, G: swatch.G, B: swatch.B, A: swatch.A})
	swatchRect := image.Rect(x, y-swatchSize, x+swatchSize, y)
	draw.Draw(rgba, swatchRect, swatchCol, image.Point{}, draw.Over)

	dr.Dot = fixed.Point26_6{X: fixed.I(x + swatchSize + pad), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
