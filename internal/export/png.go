package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
	"honnef.co/go/curve"

	"DotDrawer/internal/state"
)

const strokeTolerance = 0.1

// PreviewOptions controls raster previews.
type PreviewOptions struct {
	Size        curve.Size
	StrokeWidth float64
	Ink         color.Color
	Paper       color.Color
}

func (o PreviewOptions) withDefaults() PreviewOptions {
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = 1
	}
	if o.Ink == nil {
		o.Ink = color.Black
	}
	if o.Paper == nil {
		o.Paper = color.White
	}
	return o
}

// RenderImage strokes the drawing into a new image of opts.Size, stretching
// the logical extent over the whole image.
func RenderImage(d state.Drawing, logical curve.Size, opts PreviewOptions) *image.RGBA {
	opts = opts.withDefaults()
	w := max(1, int(math.Ceil(opts.Size.Width)))
	h := max(1, int(math.Ceil(opts.Size.Height)))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Paper), image.Point{}, draw.Src)

	path := BuildPath(d, logical, opts.Size)
	if !path.HasSegments() {
		return img
	}

	style := curve.DefaultStroke.WithWidth(opts.StrokeWidth)
	r := vector.NewRasterizer(w, h)
	for el := range curve.StrokePath(path.Elements(), style, curve.StrokeOpts{}, strokeTolerance) {
		switch el.Kind {
		case curve.MoveToKind:
			r.MoveTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.LineToKind:
			r.LineTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.QuadToKind:
			r.QuadTo(float32(el.P0.X), float32(el.P0.Y), float32(el.P1.X), float32(el.P1.Y))
		case curve.CubicToKind:
			r.CubeTo(
				float32(el.P0.X), float32(el.P0.Y),
				float32(el.P1.X), float32(el.P1.Y),
				float32(el.P2.X), float32(el.P2.Y),
			)
		case curve.ClosePathKind:
			r.ClosePath()
		}
	}
	r.Draw(img, img.Bounds(), image.NewUniform(opts.Ink), image.Point{})
	return img
}

// RenderPNG writes RenderImage's result as PNG.
func RenderPNG(w io.Writer, d state.Drawing, logical curve.Size, opts PreviewOptions) error {
	if err := png.Encode(w, RenderImage(d, logical, opts)); err != nil {
		return fmt.Errorf("encoding png preview: %w", err)
	}
	return nil
}
