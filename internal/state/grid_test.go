package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"honnef.co/go/curve"
)

func TestGridLayout(t *testing.T) {
	g := Grid{DotSize: 10, Spacing: 10, Width: 100, Height: 45}
	assert.Equal(t, 5, g.Cols())
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, curve.Pt(15, 15), g.Midpoint(Cell{0, 0}))
	assert.Equal(t, curve.Pt(55, 35), g.Midpoint(Cell{2, 1}))

	// a canvas narrower than the first gap still gets one dot
	assert.Equal(t, 1, Grid{DotSize: 3, Spacing: 5, Width: 4, Height: 4}.Cols())
}

func TestGridCellAt(t *testing.T) {
	g := Grid{DotSize: 10, Spacing: 10, Width: 100, Height: 100}

	f := func(pt curve.Point, want Cell, wantOK bool) {
		t.Helper()
		c, ok := g.CellAt(pt)
		assert.Equal(t, wantOK, ok, "tap at %s", pt)
		if wantOK {
			assert.Equal(t, want, c, "tap at %s", pt)
		}
	}
	f(curve.Pt(15, 15), Cell{0, 0}, true)
	f(curve.Pt(10, 10), Cell{0, 0}, true)
	f(curve.Pt(39.9, 51), Cell{1, 2}, true)
	f(curve.Pt(95, 95), Cell{4, 4}, true)
	// gaps between dots
	f(curve.Pt(25, 15), Cell{}, false)
	f(curve.Pt(15, 5), Cell{}, false)
	// outside the lattice
	f(curve.Pt(-1, 15), Cell{}, false)
	f(curve.Pt(115, 15), Cell{}, false)
}

func TestGridCellAtRoundTrip(t *testing.T) {
	g := Grid{DotSize: 3, Spacing: 0.2, Width: 390, Height: 744}
	for col := 0; col < g.Cols(); col += 7 {
		for row := 0; row < g.Rows(); row += 11 {
			c, ok := g.CellAt(g.Midpoint(Cell{col, row}))
			if assert.True(t, ok) {
				assert.Equal(t, Cell{col, row}, c)
			}
		}
	}
}
