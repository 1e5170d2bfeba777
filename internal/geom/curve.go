package geom

import (
	"math"

	"honnef.co/go/curve"
)

// CurveMultiplier scales one unit of curve count into bend height.
const CurveMultiplier = 10.0

// Corners of the bend rectangle, numbered clockwise from the top-left corner
// as laid out before rotation.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Distance returns the euclidean distance between two points.
func Distance(p1, p2 curve.Point) float64 {
	return p1.Distance(p2)
}

// Angle returns the direction of p1 as seen from p2, in degrees within [0, 360).
func Angle(p1, p2 curve.Point) float64 {
	deg := math.Atan2(p1.Y-p2.Y, p1.X-p2.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// SectorCorners returns the corners whose rotated x and y coordinates
// respectively form the top-left of the rotated rectangle's bounding box.
// Ranges include both ends and the first match wins, so 90 maps to the first
// sector. Angles outside [0, 360] (NaN included) map to (TopLeft, TopLeft).
func SectorCorners(angle float64) (int, int) {
	switch {
	case angle >= 0 && angle <= 90:
		return BottomLeft, TopLeft
	case angle >= 90 && angle <= 180:
		return BottomRight, BottomLeft
	case angle >= 180 && angle <= 270:
		return TopRight, BottomRight
	case angle >= 270 && angle <= 360:
		return TopLeft, TopRight
	default:
		return TopLeft, TopLeft
	}
}

// BendRect returns the unrotated rectangle used to bend the segment ending at
// p1. Its right edge is centered on p1.
func BendRect(p1 curve.Point, dist, bendHeight float64) curve.Rect {
	return curve.Rect{
		X0: p1.X - dist,
		Y0: p1.Y - bendHeight/2,
		X1: p1.X,
		Y1: p1.Y + bendHeight/2,
	}
}

func corners(r curve.Rect) [4]curve.Point {
	return [4]curve.Point{
		TopLeft:     curve.Pt(r.X0, r.Y0),
		TopRight:    curve.Pt(r.X1, r.Y0),
		BottomRight: curve.Pt(r.X1, r.Y1),
		BottomLeft:  curve.Pt(r.X0, r.Y1),
	}
}

// ControlPoint returns the quadratic control point that bends the segment
// from p1 to p2 by curveCount units of CurveMultiplier.
func ControlPoint(p1, p2 curve.Point, curveCount float64) curve.Point {
	return ControlPointScaled(p1, p2, curveCount, CurveMultiplier)
}

// ControlPointScaled is like ControlPoint, but with an explicit multiplier.
//
// Non-negative curve counts pick the midpoint of the bend rectangle's top
// edge, negative ones the bottom edge. The rectangle is rotated by the
// segment angle about its right-center anchor, which sits on p1, and the
// picked midpoint follows it. A zero-length segment returns p1 and a zero
// curve count the exact segment midpoint.
func ControlPointScaled(p1, p2 curve.Point, curveCount, multiplier float64) curve.Point {
	if p1 == p2 {
		return p1
	}
	if curveCount == 0 {
		return p1.Midpoint(p2)
	}

	bendHeight := math.Abs(2 * curveCount * multiplier)
	dist := Distance(p1, p2)
	angle := Angle(p1, p2)
	r := BendRect(p1, dist, bendHeight)

	mid := curve.Pt(r.X0+dist/2, r.Y0)
	if curveCount < 0 {
		mid.Y = r.Y1
	}

	th := angle * math.Pi / 180
	rot := curve.Rotate(th)
	anchored := curve.RotateAbout(th, p1)

	var rotated [4]curve.Point
	var bounds curve.Rect
	for i, c := range corners(r) {
		rotated[i] = c.Transform(rot)
		a := c.Transform(anchored)
		if i == 0 {
			bounds = curve.Rect{X0: a.X, Y0: a.Y, X1: a.X, Y1: a.Y}
		} else {
			bounds = bounds.UnionPoint(a)
		}
	}

	cx, cy := SectorCorners(angle)
	shift := curve.Vec(bounds.MinX()-rotated[cx].X, bounds.MinY()-rotated[cy].Y)
	return mid.Transform(rot).Translate(shift)
}

// Normalize maps pt from the logical extent into the target extent. A zero
// logical dimension is treated as 1.
func Normalize(pt curve.Point, logical, target curve.Size) curve.Point {
	w, h := logical.Width, logical.Height
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return curve.Pt(pt.X/w*target.Width, pt.Y/h*target.Height)
}
