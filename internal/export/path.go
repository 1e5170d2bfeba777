package export

import (
	"honnef.co/go/curve"

	"DotDrawer/internal/geom"
	"DotDrawer/internal/state"
)

// BuildPath turns the drawing into one subpath per stroke: a move to the
// first sample, then a quadratic curve to every following sample through its
// control point. Points are normalized from logical into target.
func BuildPath(d state.Drawing, logical, target curve.Size) curve.BezPath {
	var p curve.BezPath
	for _, st := range d {
		for i, s := range st {
			mid := geom.Normalize(s.Midpoint, logical, target)
			if i == 0 {
				p.MoveTo(mid)
				continue
			}
			p.QuadTo(geom.Normalize(s.ControlPoint, logical, target), mid)
		}
	}
	return p
}
