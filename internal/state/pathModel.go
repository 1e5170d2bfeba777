package state

import (
	"log"
	"sync"

	"DotDrawer/internal/geom"
)

// PathModel owns the drawing, the in-progress stroke and the curve count
// applied to that stroke's last segment.
type PathModel struct {
	grid       Grid
	multiplier float64
	clock      *Clock

	mu         sync.RWMutex
	drawing    Drawing
	current    Stroke
	curveCount float64

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// NewPathModel creates an empty model over grid. A non-positive multiplier
// falls back to geom.CurveMultiplier.
func NewPathModel(grid Grid, multiplier float64) *PathModel {
	if multiplier <= 0 {
		multiplier = geom.CurveMultiplier
	}
	return &PathModel{
		grid:       grid,
		multiplier: multiplier,
		clock:      NewClock(),
		observers:  make(map[int]Observer),
	}
}

// Grid returns the dot lattice the model commits samples on.
func (m *PathModel) Grid() Grid {
	return m.grid
}

// Subscribe registers o for change notifications and returns a function that
// removes it again.
func (m *PathModel) Subscribe(o Observer) (cancel func()) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = o
	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		delete(m.observers, id)
	}
}

func (m *PathModel) notify() {
	m.clock.Tick()
	snap := m.Snapshot()
	m.obsMu.Lock()
	obs := make([]Observer, 0, len(m.observers))
	for _, o := range m.observers {
		obs = append(obs, o)
	}
	m.obsMu.Unlock()
	for _, o := range obs {
		o.DrawingChanged(snap)
	}
}

// recomputeLast refreshes the control point of the last in-progress sample
// from its recorded curve count. Callers hold mu.
func (m *PathModel) recomputeLast() {
	n := len(m.current)
	if n < 2 {
		return
	}
	last := m.current[n-1]
	last.ControlPoint = geom.ControlPointScaled(m.current[n-2].Midpoint, last.Midpoint, last.CurveCount, m.multiplier)
}

// CommitSample appends a sample for cell to the in-progress stroke. Every new
// segment starts straight: the curve count is reset to zero. Rejecting cells
// already in the stroke is the caller's job.
func (m *PathModel) CommitSample(cell Cell) *DotSample {
	m.mu.Lock()
	m.curveCount = 0
	s := &DotSample{
		ID:       newSampleID(),
		Cell:     cell,
		Midpoint: m.grid.Midpoint(cell),
	}
	m.current = append(m.current, s)
	m.recomputeLast()
	m.mu.Unlock()

	log.Printf("[MODEL] Committed cell (%d,%d) at %s", cell.Col, cell.Row, s.Midpoint)
	m.notify()
	return s
}

// StartNewStroke moves a non-empty in-progress stroke into the drawing.
func (m *PathModel) StartNewStroke() {
	m.mu.Lock()
	if len(m.current) == 0 {
		m.mu.Unlock()
		return
	}
	m.drawing = append(m.drawing, m.current)
	m.current = nil
	n := len(m.drawing)
	m.mu.Unlock()

	log.Printf("[MODEL] Stroke %d finished", n)
	m.notify()
}

// AdjustCurve adds delta to the curve count of the last segment and
// recomputes its control point. It does nothing while the in-progress stroke
// has no segment.
func (m *PathModel) AdjustCurve(delta float64) {
	m.mu.Lock()
	n := len(m.current)
	if n < 2 {
		m.mu.Unlock()
		return
	}
	m.curveCount += delta
	m.current[n-1].CurveCount = m.curveCount
	m.recomputeLast()
	count := m.curveCount
	m.mu.Unlock()

	log.Printf("[MODEL] Curve count now %g", count)
	m.notify()
}

// ThawCurve loads the last in-progress sample's recorded count into the
// current curve count, or zero when the stroke is empty.
func (m *PathModel) ThawCurve() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.curveCount = 0
	if n := len(m.current); n > 0 {
		m.curveCount = m.current[n-1].CurveCount
	}
	return m.curveCount
}

// FreezeCurve records the current curve count on the last in-progress sample.
func (m *PathModel) FreezeCurve() {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.current)
	if n == 0 {
		return
	}
	m.current[n-1].CurveCount = m.curveCount
	m.recomputeLast()
}

// Undo pops the last sample of the in-progress stroke. When that stroke is
// empty the last finished stroke becomes the in-progress one first. The
// curve count is restored from the new last sample. Undo returns nil when
// there is nothing to pop.
func (m *PathModel) Undo() *DotSample {
	m.mu.Lock()
	if len(m.current) == 0 {
		if len(m.drawing) == 0 {
			m.mu.Unlock()
			return nil
		}
		m.current = m.drawing[len(m.drawing)-1]
		m.drawing = m.drawing[:len(m.drawing)-1]
	}
	n := len(m.current)
	last := m.current[n-1]
	m.current[n-1] = nil
	m.current = m.current[:n-1]
	if n > 1 {
		m.curveCount = m.current[n-2].CurveCount
		m.recomputeLast()
	}
	m.mu.Unlock()

	log.Printf("[MODEL] Undid cell (%d,%d)", last.Cell.Col, last.Cell.Row)
	m.notify()
	return last
}

// Snapshot returns a deep copy of the drawing with the in-progress stroke
// appended as the last entry.
func (m *PathModel) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d := make(Drawing, 0, len(m.drawing)+1)
	for _, st := range m.drawing {
		d = append(d, cloneStroke(st))
	}
	if len(m.current) > 0 {
		d = append(d, cloneStroke(m.current))
	}
	return Snapshot{
		Session:  m.clock.Session(),
		Revision: m.clock.Revision(),
		Drawing:  d,
	}
}

func cloneStroke(st Stroke) Stroke {
	out := make(Stroke, len(st))
	for i, s := range st {
		out[i] = s.clone()
	}
	return out
}

// SerializePoints flattens the drawing, in-progress stroke included, in
// stroke-then-sample order.
func (m *PathModel) SerializePoints() []PointInfo {
	return m.Snapshot().Points()
}

// CurveCount returns the curve count applied to the last segment.
func (m *PathModel) CurveCount() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.curveCount
}

// LastCurveCount returns the count recorded on the last in-progress sample,
// or zero when the stroke is empty.
func (m *PathModel) LastCurveCount() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.current) == 0 {
		return 0
	}
	return m.current[len(m.current)-1].CurveCount
}

// CurrentLen returns the number of samples in the in-progress stroke.
func (m *PathModel) CurrentLen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.current)
}

// StrokeCount returns the number of finished strokes.
func (m *PathModel) StrokeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.drawing)
}

// Contains reports whether cell is already part of the in-progress stroke.
func (m *PathModel) Contains(cell Cell) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.current {
		if s.Cell == cell {
			return true
		}
	}
	return false
}
