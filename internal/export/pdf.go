package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"honnef.co/go/curve"

	"DotDrawer/internal/state"
)

func newPreviewPDF(d state.Drawing, logical curve.Size) *gofpdf.Fpdf {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()
	p.SetDrawColor(0, 0, 0)
	p.SetLineWidth(0.5)
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	pw, ph := p.GetPageSize()
	left, top, right, bottom := p.GetMargins()
	target := fitSize(logical, curve.Sz(pw-left-right, ph-top-bottom))
	path := BuildPath(d, logical, target).Transform(curve.Translate(curve.Vec(left, top)))

	open := false
	for _, el := range path {
		switch el.Kind {
		case curve.MoveToKind:
			if open {
				p.DrawPath("D")
			}
			p.MoveTo(el.P0.X, el.P0.Y)
			open = false
		case curve.QuadToKind:
			p.CurveTo(el.P0.X, el.P0.Y, el.P1.X, el.P1.Y)
			open = true
		}
	}
	if open {
		p.DrawPath("D")
	}
	return p
}

// fitSize scales logical to the largest size with the same aspect ratio
// that fits into avail.
func fitSize(logical, avail curve.Size) curve.Size {
	if logical.Width <= 0 || logical.Height <= 0 {
		return avail
	}
	f := min(avail.Width/logical.Width, avail.Height/logical.Height)
	return logical.Scale(f)
}

// WritePDF renders the drawing onto a single A4 page.
func WritePDF(w io.Writer, d state.Drawing, logical curve.Size) error {
	if err := newPreviewPDF(d, logical).Output(w); err != nil {
		return fmt.Errorf("writing pdf preview: %w", err)
	}
	return nil
}

// ExportPDF renders the drawing onto a single A4 page stored at path.
func ExportPDF(path string, d state.Drawing, logical curve.Size) error {
	if err := newPreviewPDF(d, logical).OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf preview %s: %w", path, err)
	}
	return nil
}
