package state

import (
	"math"

	"honnef.co/go/curve"
)

// Grid is the regular lattice of tappable dots covering the canvas. The first
// dot sits at (Spacing, Spacing); dots keep being added along an axis while
// their leading edge is inside the canvas.
type Grid struct {
	DotSize float64
	Spacing float64
	Width   float64
	Height  float64
}

func (g Grid) stride() float64 {
	return g.DotSize + g.Spacing
}

func (g Grid) count(extent float64) int {
	if extent <= g.Spacing || g.stride() <= 0 {
		return 1
	}
	return int(math.Ceil((extent - g.Spacing) / g.stride()))
}

// Cols returns the number of dots per row.
func (g Grid) Cols() int { return g.count(g.Width) }

// Rows returns the number of dots per column.
func (g Grid) Rows() int { return g.count(g.Height) }

// Size returns the canvas extent.
func (g Grid) Size() curve.Size {
	return curve.Sz(g.Width, g.Height)
}

// DotRect returns the bounds of the dot at cell.
func (g Grid) DotRect(c Cell) curve.Rect {
	x := g.Spacing + float64(c.Col)*g.stride()
	y := g.Spacing + float64(c.Row)*g.stride()
	return curve.Rect{X0: x, Y0: y, X1: x + g.DotSize, Y1: y + g.DotSize}
}

// Midpoint returns the center of the dot at cell.
func (g Grid) Midpoint(c Cell) curve.Point {
	return g.DotRect(c).Center()
}

// CellAt returns the dot under pt. Points between dots or outside the
// lattice report false.
func (g Grid) CellAt(pt curve.Point) (Cell, bool) {
	s := g.stride()
	if s <= 0 {
		return Cell{}, false
	}
	c := Cell{
		Col: int(math.Floor((pt.X - g.Spacing) / s)),
		Row: int(math.Floor((pt.Y - g.Spacing) / s)),
	}
	if c.Col < 0 || c.Row < 0 || c.Col >= g.Cols() || c.Row >= g.Rows() {
		return Cell{}, false
	}
	if !g.DotRect(c).Contains(pt) {
		return Cell{}, false
	}
	return c, true
}
