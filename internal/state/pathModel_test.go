package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"

	"DotDrawer/internal/geom"
)

// testGrid puts dot midpoints at 10, 30, 50, ... on both axes.
var testGrid = Grid{DotSize: 20, Spacing: 0, Width: 200, Height: 200}

var (
	cellA = Cell{0, 0} // (10,10)
	cellB = Cell{2, 0} // (50,10)
	cellC = Cell{2, 2} // (50,50)
)

func newTestModel() *PathModel {
	return NewPathModel(testGrid, 0)
}

func TestUndoOnEmptyModel(t *testing.T) {
	m := newTestModel()
	before := m.Snapshot()

	assert.Nil(t, m.Undo())
	assert.Equal(t, before, m.Snapshot())
	assert.Equal(t, 0, m.StrokeCount())
	assert.Equal(t, 0, m.CurrentLen())
}

func TestCommitComputesControlPoints(t *testing.T) {
	m := newTestModel()
	a := m.CommitSample(cellA)
	b := m.CommitSample(cellB)
	c := m.CommitSample(cellC)

	assert.Equal(t, curve.Pt(10, 10), a.Midpoint)
	assert.Equal(t, curve.Point{}, a.ControlPoint)
	assert.Equal(t, geom.ControlPoint(a.Midpoint, b.Midpoint, 0), b.ControlPoint)
	assert.Equal(t, geom.ControlPoint(b.Midpoint, c.Midpoint, 0), c.ControlPoint)
	assert.InDelta(t, 30, b.ControlPoint.X, 1e-9)
	assert.InDelta(t, 10, b.ControlPoint.Y, 1e-9)
}

func TestUndoSequence(t *testing.T) {
	m := newTestModel()
	m.CommitSample(cellA)
	b := m.CommitSample(cellB)
	c := m.CommitSample(cellC)
	bControl := b.ControlPoint

	assert.Same(t, c, m.Undo())
	snap := m.Snapshot()
	require.Len(t, snap.Drawing, 1)
	require.Len(t, snap.Drawing[0], 2)
	assert.Equal(t, bControl, snap.Drawing[0][1].ControlPoint)

	assert.Same(t, b, m.Undo())
	snap = m.Snapshot()
	require.Len(t, snap.Drawing, 1)
	require.Len(t, snap.Drawing[0], 1)
	assert.Equal(t, cellA, snap.Drawing[0][0].Cell)
	assert.Equal(t, curve.Point{}, snap.Drawing[0][0].ControlPoint)
}

func TestUndoFallsBackToFinishedStroke(t *testing.T) {
	m := newTestModel()
	m.CommitSample(cellA)
	b := m.CommitSample(cellB)
	m.StartNewStroke()
	require.Equal(t, 1, m.StrokeCount())

	assert.Same(t, b, m.Undo())
	assert.Equal(t, 0, m.StrokeCount())
	assert.Equal(t, 1, m.CurrentLen())

	// the popped stroke is in progress again and keeps growing
	m.CommitSample(cellC)
	assert.Equal(t, 2, m.CurrentLen())
}

func TestStartNewStrokeOnEmptyIsNoop(t *testing.T) {
	m := newTestModel()
	m.StartNewStroke()
	assert.Equal(t, 0, m.StrokeCount())

	m.CommitSample(cellA)
	m.StartNewStroke()
	m.StartNewStroke()
	assert.Equal(t, 1, m.StrokeCount())
	assert.Equal(t, 0, m.CurrentLen())
}

func TestAdjustCurveRoundTrip(t *testing.T) {
	m := newTestModel()
	m.CommitSample(cellA)
	b := m.CommitSample(cellB)
	straight := b.ControlPoint

	m.AdjustCurve(1)
	assert.Equal(t, 1.0, m.CurveCount())
	assert.Equal(t, 1.0, b.CurveCount)
	assert.InDelta(t, 30, b.ControlPoint.X, 1e-9)
	assert.InDelta(t, 20, b.ControlPoint.Y, 1e-9)

	m.AdjustCurve(-1)
	assert.Equal(t, straight, b.ControlPoint)
	assert.Equal(t, 0.0, m.CurveCount())
}

func TestAdjustCurveNeedsSegment(t *testing.T) {
	m := newTestModel()
	m.AdjustCurve(1)
	assert.Equal(t, 0.0, m.CurveCount())

	a := m.CommitSample(cellA)
	m.AdjustCurve(1)
	assert.Equal(t, 0.0, m.CurveCount())
	assert.Equal(t, curve.Point{}, a.ControlPoint)
}

func TestCommitResetsCurveAndUndoRestoresIt(t *testing.T) {
	m := newTestModel()
	m.CommitSample(cellA)
	b := m.CommitSample(cellB)
	m.AdjustCurve(2)
	bent := b.ControlPoint

	c := m.CommitSample(cellC)
	assert.Equal(t, 0.0, m.CurveCount())
	assert.Equal(t, 0.0, c.CurveCount)

	m.Undo()
	assert.Equal(t, 2.0, m.CurveCount())
	assert.Equal(t, bent, b.ControlPoint)
}

func TestFreezeAndThawCurve(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, 0.0, m.ThawCurve())

	m.CommitSample(cellA)
	b := m.CommitSample(cellB)
	m.AdjustCurve(-3)
	m.FreezeCurve()
	assert.Equal(t, -3.0, b.CurveCount)

	assert.Equal(t, -3.0, m.LastCurveCount())

	m.StartNewStroke()
	assert.Equal(t, 0.0, m.ThawCurve())
	assert.Equal(t, 0.0, m.LastCurveCount())
}

func TestSnapshotIsDetached(t *testing.T) {
	m := newTestModel()
	m.CommitSample(cellA)
	m.CommitSample(cellB)
	m.StartNewStroke()
	m.CommitSample(cellC)

	snap := m.Snapshot()
	require.Len(t, snap.Drawing, 2)
	assert.Len(t, snap.Drawing[0], 2)
	assert.Len(t, snap.Drawing[1], 1)
	assert.Equal(t, 1, m.StrokeCount(), "snapshot must not finish the in-progress stroke")

	snap.Drawing[0][0].Midpoint = curve.Pt(-1, -1)
	assert.Equal(t, curve.Pt(10, 10), m.Snapshot().Drawing[0][0].Midpoint)
}

func TestSerializePointsOrder(t *testing.T) {
	m := newTestModel()
	m.CommitSample(cellA)
	m.CommitSample(cellB)
	m.StartNewStroke()
	m.CommitSample(cellC)
	m.CommitSample(cellA)

	pts := m.SerializePoints()
	require.Len(t, pts, 4)
	assert.Equal(t, curve.Pt(10, 10), pts[0].Midpoint)
	assert.Equal(t, curve.Pt(50, 10), pts[1].Midpoint)
	assert.Equal(t, curve.Pt(50, 50), pts[2].Midpoint)
	assert.Equal(t, curve.Point{}, pts[2].ControlPoint)
	assert.Equal(t, curve.Pt(10, 10), pts[3].Midpoint)
	assert.Equal(t, geom.ControlPoint(pts[2].Midpoint, pts[3].Midpoint, 0), pts[3].ControlPoint)
}

func TestSamplesHaveIdentity(t *testing.T) {
	m := newTestModel()
	first := m.CommitSample(cellA)
	m.StartNewStroke()
	second := m.CommitSample(cellA)

	assert.Equal(t, first.Midpoint, second.Midpoint)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, m.Contains(cellA))
	assert.False(t, m.Contains(cellB))
}

func TestObserversSeeEveryMutation(t *testing.T) {
	m := newTestModel()
	var got []Snapshot
	cancel := m.Subscribe(ObserverFunc(func(s Snapshot) {
		got = append(got, s)
	}))

	m.CommitSample(cellA)
	m.CommitSample(cellB)
	m.AdjustCurve(1)
	m.StartNewStroke()
	m.Undo()
	require.Len(t, got, 5)
	for i, s := range got {
		assert.Equal(t, uint64(i+1), s.Revision)
		assert.NotEmpty(t, s.Session)
	}
	assert.Len(t, got[1].Drawing[0], 2)

	// no-ops don't notify
	m.AdjustCurve(0)
	assert.Len(t, got, 5)
	empty := newTestModel()
	empty.Subscribe(ObserverFunc(func(Snapshot) { t.Error("unexpected notification") }))
	empty.Undo()
	empty.StartNewStroke()

	cancel()
	m.CommitSample(cellC)
	assert.Len(t, got, 5)
}
