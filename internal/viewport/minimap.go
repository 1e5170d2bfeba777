package viewport

import (
	"honnef.co/go/curve"
)

// ScrollState is what the host's scroll view reports: the visible region's
// origin and size, and the size of the scrollable content.
type ScrollState struct {
	Offset   curve.Point
	Viewport curve.Size
	Content  curve.Size
}

// LaidOut reports whether the content has been given a non-zero size yet.
func (s ScrollState) LaidOut() bool {
	return s.Content.Width != 0 && s.Content.Height != 0
}

// content returns the content size, or the viewport size before layout.
func (s ScrollState) content() curve.Size {
	if !s.LaidOut() {
		return s.Viewport
	}
	return s.Content
}

func nonZero(sz curve.Size) curve.Size {
	if sz.Width == 0 {
		sz.Width = 1
	}
	if sz.Height == 0 {
		sz.Height = 1
	}
	return sz
}

// Thumb maps the visible region into overview space.
func Thumb(s ScrollState, overview curve.Size) curve.Rect {
	c := nonZero(s.content())
	origin := curve.Pt(
		overview.Width*s.Offset.X/c.Width,
		overview.Height*s.Offset.Y/c.Height,
	)
	return curve.NewRectFromOrigin(origin, curve.Sz(
		overview.Width*s.Viewport.Width/c.Width,
		overview.Height*s.Viewport.Height/c.Height,
	))
}

// ClampCenter moves mid so that a box of size bounds centered on it stays
// inside [0, parent] on each axis. The low edge wins when the box is larger
// than its parent.
func ClampCenter(mid curve.Point, bounds, parent curve.Size) curve.Point {
	out := mid
	if mid.X-bounds.Width/2 < 0 {
		out.X = bounds.Width / 2
	} else if mid.X+bounds.Width/2 > parent.Width {
		out.X = parent.Width - bounds.Width/2
	}
	if mid.Y-bounds.Height/2 < 0 {
		out.Y = bounds.Height / 2
	} else if mid.Y+bounds.Height/2 > parent.Height {
		out.Y = parent.Height - bounds.Height/2
	}
	return out
}

// ClampOrigin is ClampCenter for a box given by its origin.
func ClampOrigin(origin curve.Point, bounds, parent curve.Size) curve.Point {
	half := curve.Vec(bounds.Width/2, bounds.Height/2)
	mid := ClampCenter(origin.Translate(half), bounds, parent)
	return mid.Translate(half.Negate())
}

// ClampOffset keeps the visible region inside the content.
func ClampOffset(s ScrollState) curve.Point {
	return ClampOrigin(s.Offset, s.Viewport, s.content())
}

// toOffset scales a center point in overview space to the scroll offset
// whose viewport is centered on it.
func toOffset(center curve.Point, overview curve.Size, s ScrollState) curve.Point {
	c := s.content()
	o := nonZero(overview)
	return curve.Pt(
		c.Width/o.Width*center.X-s.Viewport.Width/2,
		c.Height/o.Height*center.Y-s.Viewport.Height/2,
	)
}

// TapToOffset returns the scroll offset that centers the viewport on the
// content point under tap, kept inside the content.
func TapToOffset(tap curve.Point, overview curve.Size, s ScrollState) curve.Point {
	c := s.content()
	o := nonZero(overview)
	scroll := curve.Pt(c.Width/o.Width*tap.X, c.Height/o.Height*tap.Y)
	mid := ClampCenter(scroll, s.Viewport, c)
	return mid.Translate(curve.Vec(-s.Viewport.Width/2, -s.Viewport.Height/2))
}

// DragToOffset moves the thumb centered on thumbCenter by delta, keeps it
// inside the overview and returns the matching scroll offset together with
// the new thumb center.
func DragToOffset(thumbCenter curve.Point, delta curve.Vec2, overview curve.Size, s ScrollState) (offset, center curve.Point) {
	size := Thumb(s, overview).Size()
	center = ClampCenter(thumbCenter.Translate(delta), size, overview)
	return toOffset(center, overview, s), center
}

// Minimap keeps the overview thumb in sync with the scroll view. The scroll
// handler calls ScrollChanged directly; renderers subscribe to thumb changes.
type Minimap struct {
	overview  curve.Size
	scroll    ScrollState
	thumb     curve.Rect
	listeners map[int]func(curve.Rect)
	next      int
}

func NewMinimap(overview curve.Size) *Minimap {
	return &Minimap{
		overview:  overview,
		listeners: make(map[int]func(curve.Rect)),
	}
}

// Subscribe registers fn to receive every new thumb rectangle.
func (m *Minimap) Subscribe(fn func(curve.Rect)) (cancel func()) {
	id := m.next
	m.next++
	m.listeners[id] = fn
	return func() { delete(m.listeners, id) }
}

// Overview returns the minimap's own size.
func (m *Minimap) Overview() curve.Size { return m.overview }

// Scroll returns the last reported scroll state.
func (m *Minimap) Scroll() ScrollState { return m.scroll }

// Thumb returns the current thumb rectangle in overview space.
func (m *Minimap) Thumb() curve.Rect { return m.thumb }

// ScrollChanged records a new scroll state, clamping its offset into the
// content, and recomputes the thumb.
func (m *Minimap) ScrollChanged(s ScrollState) {
	s.Offset = ClampOffset(s)
	m.scroll = s
	m.thumb = Thumb(s, m.overview)
	for _, fn := range m.listeners {
		fn(m.thumb)
	}
}

// Tap scrolls so the viewport is centered on the content point under pt and
// returns the new offset.
func (m *Minimap) Tap(pt curve.Point) curve.Point {
	s := m.scroll
	s.Offset = TapToOffset(pt, m.overview, s)
	m.ScrollChanged(s)
	return m.scroll.Offset
}

// Drag moves the thumb by delta and returns the new scroll offset.
func (m *Minimap) Drag(delta curve.Vec2) curve.Point {
	s := m.scroll
	s.Offset, _ = DragToOffset(m.thumb.Center(), delta, m.overview, s)
	m.ScrollChanged(s)
	return m.scroll.Offset
}
