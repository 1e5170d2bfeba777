package state

import (
	"honnef.co/go/curve"
)

// Cell is the column/row index of a dot on the grid.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// DotSample is one committed tap. Samples are compared by identity, never by
// coordinates: tapping the same cell in two strokes yields two samples.
type DotSample struct {
	ID           string
	Cell         Cell
	Midpoint     curve.Point
	ControlPoint curve.Point
	CurveCount   float64 // curve count the control point was computed with
}

func (s *DotSample) clone() *DotSample {
	c := *s
	return &c
}

// Stroke is one connected run of samples, rendered as a move-to followed by
// quadratic curves.
type Stroke []*DotSample

// Drawing is the ordered list of strokes. Order is render and undo order.
type Drawing []Stroke

// PointInfo is the persisted form of a sample.
type PointInfo struct {
	Midpoint     curve.Point
	ControlPoint curve.Point
}

// Snapshot is a detached copy of the drawing, including the in-progress
// stroke as its last entry when that stroke is non-empty.
type Snapshot struct {
	Session  string
	Revision uint64
	Drawing  Drawing
}

// Points flattens the snapshot in stroke-then-sample order.
func (s Snapshot) Points() []PointInfo {
	var out []PointInfo
	for _, st := range s.Drawing {
		for _, d := range st {
			out = append(out, PointInfo{Midpoint: d.Midpoint, ControlPoint: d.ControlPoint})
		}
	}
	return out
}

// Observer is notified synchronously after every model mutation.
type Observer interface {
	DrawingChanged(Snapshot)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) DrawingChanged(s Snapshot) { f(s) }
