package ui

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"

	"honnef.co/go/curve"

	"DotDrawer/internal/config"
	"DotDrawer/internal/export"
	"DotDrawer/internal/state"
	"DotDrawer/internal/viewport"
)

const (
	PreviewPNG  = "preview.png"
	PreviewPDF  = "preview.pdf"
	OverviewPNG = "overview.png"
)

// ErrDisabled is returned when a command's button is locked in the current
// mode.
var ErrDisabled = errors.New("button disabled")

// Board is the command layer between a host shell and the drawing: it owns
// the path model and the minimap and applies the button rules.
type Board struct {
	mu        sync.Mutex
	cfg       config.Config
	model     *state.PathModel
	minimap   *viewport.Minimap
	curveMode bool
}

// NewBoard builds a board for cfg. The scroll view starts with a viewport the
// size of the canvas and no content layout.
func NewBoard(cfg config.Config) *Board {
	b := &Board{
		cfg:     cfg,
		model:   state.NewPathModel(cfg.StateGrid(), cfg.Curve.Multiplier),
		minimap: viewport.NewMinimap(cfg.MinimapSize()),
	}
	b.minimap.ScrollChanged(viewport.ScrollState{Viewport: b.logical()})
	return b
}

func (b *Board) logical() curve.Size {
	return b.model.Grid().Size()
}

// Model returns the path model so observers can subscribe to it.
func (b *Board) Model() *state.PathModel { return b.model }

// Minimap returns the overview synchronizer.
func (b *Board) Minimap() *viewport.Minimap { return b.minimap }

func (b *Board) CurveMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.curveMode
}

// Enabled reports whether btn can be pressed right now.
func (b *Board) Enabled(btn Button) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return enabled(btn, b.curveMode)
}

// Tap commits the dot under pt. It returns false when the tap lands between
// dots, on a dot already in the stroke, or while curve mode is on.
func (b *Board) Tap(pt curve.Point) (state.Cell, bool) {
	cell, ok := b.model.Grid().CellAt(pt)
	if !ok {
		log.Printf("[BOARD] Tap at %s missed every dot", pt)
		return state.Cell{}, false
	}
	return cell, b.TapCell(cell)
}

// TapCell commits cell with the same rules as Tap.
func (b *Board) TapCell(cell state.Cell) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.model.Grid()
	switch {
	case b.curveMode:
		log.Printf("[BOARD] Tap on (%d,%d) ignored in curve mode", cell.Col, cell.Row)
		return false
	case cell.Col < 0 || cell.Row < 0 || cell.Col >= g.Cols() || cell.Row >= g.Rows():
		log.Printf("[BOARD] Cell (%d,%d) is off the grid", cell.Col, cell.Row)
		return false
	case b.model.Contains(cell):
		log.Printf("[BOARD] Cell (%d,%d) already in stroke", cell.Col, cell.Row)
		return false
	}
	b.model.CommitSample(cell)
	return true
}

// ToggleCurveMode enters or leaves curve mode and returns the new mode.
// Entering loads the last sample's recorded bend; leaving writes the current
// bend back to it.
func (b *Board) ToggleCurveMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.curveMode = !b.curveMode
	if b.curveMode {
		count := b.model.ThawCurve()
		log.Printf("[BOARD] Curve mode on, count %g", count)
	} else {
		b.model.FreezeCurve()
		log.Println("[BOARD] Curve mode off")
	}
	return b.curveMode
}

func (b *Board) bend(btn Button, delta float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !enabled(btn, b.curveMode) {
		return fmt.Errorf("%s: %w", btn, ErrDisabled)
	}
	b.model.AdjustCurve(delta)
	return nil
}

// CurveLeft bends the last segment one step to the left.
func (b *Board) CurveLeft() error { return b.bend(ButtonLeftCurve, 1) }

// CurveRight bends the last segment one step to the right.
func (b *Board) CurveRight() error { return b.bend(ButtonRightCurve, -1) }

// Undo removes the last committed dot.
func (b *Board) Undo() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !enabled(ButtonUndo, b.curveMode) {
		return fmt.Errorf("%s: %w", ButtonUndo, ErrDisabled)
	}
	b.model.Undo()
	return nil
}

// StartNew finishes the current stroke.
func (b *Board) StartNew() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !enabled(ButtonStartNew, b.curveMode) {
		return fmt.Errorf("%s: %w", ButtonStartNew, ErrDisabled)
	}
	b.model.StartNewStroke()
	return nil
}

// Preview renders the drawing into dir as a PNG and, when configured, a PDF.
// It returns the paths it wrote.
func (b *Board) Preview(dir string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !enabled(ButtonDraw, b.curveMode) {
		return nil, fmt.Errorf("%s: %w", ButtonDraw, ErrDisabled)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	d := b.model.Snapshot().Drawing
	logical := b.logical()

	pngPath := filepath.Join(dir, PreviewPNG)
	f, err := os.Create(pngPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", pngPath, err)
	}
	opts := export.PreviewOptions{Size: b.cfg.PreviewSize(), StrokeWidth: b.cfg.Preview.StrokeWidth}
	if err := export.RenderPNG(f, d, logical, opts); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", pngPath, err)
	}
	written := []string{pngPath}

	if b.cfg.Preview.PDF {
		pdfPath := filepath.Join(dir, PreviewPDF)
		if err := export.ExportPDF(pdfPath, d, logical); err != nil {
			return written, err
		}
		written = append(written, pdfPath)
	}
	log.Printf("[BOARD] Preview of %d strokes written to %s", len(d), dir)
	return written, nil
}

// Save writes the coordinate file into dir.
func (b *Board) Save(dir string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !enabled(ButtonSave, b.curveMode) {
		return "", fmt.Errorf("%s: %w", ButtonSave, ErrDisabled)
	}
	return export.SaveCoordinates(dir, b.model.SerializePoints())
}

// Press runs the command behind btn, writing files into dir.
func (b *Board) Press(btn Button, dir string) error {
	var err error
	switch btn {
	case ButtonUndo:
		err = b.Undo()
	case ButtonStartNew:
		err = b.StartNew()
	case ButtonDraw:
		_, err = b.Preview(dir)
	case ButtonCurve:
		b.ToggleCurveMode()
	case ButtonLeftCurve:
		err = b.CurveLeft()
	case ButtonRightCurve:
		err = b.CurveRight()
	case ButtonSave:
		_, err = b.Save(dir)
	default:
		err = fmt.Errorf("unknown button %s", btn)
	}
	return err
}

// Overview renders the drawing, in-progress stroke included, at minimap size.
// Points are normalized by the scroll content, or by the canvas before the
// content has been laid out.
func (b *Board) Overview() *image.RGBA {
	b.mu.Lock()
	s := b.minimap.Scroll()
	overview := b.minimap.Overview()
	b.mu.Unlock()

	logical := s.Content
	if !s.LaidOut() {
		logical = b.logical()
	}
	d := b.model.Snapshot().Drawing
	return export.RenderImage(d, logical, export.PreviewOptions{Size: overview, StrokeWidth: 1})
}

// SaveOverview writes the overview into dir as OverviewPNG.
func (b *Board) SaveOverview(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, OverviewPNG)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, b.Overview()); err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	return path, f.Close()
}

// Scrolled forwards a scroll view change to the minimap.
func (b *Board) Scrolled(s viewport.ScrollState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minimap.ScrollChanged(s)
}

// ScrollTo moves the scroll view to offset, keeping its sizes.
func (b *Board) ScrollTo(offset curve.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.minimap.Scroll()
	s.Offset = offset
	b.minimap.ScrollChanged(s)
}

// LayoutContent sets the scrollable content size.
func (b *Board) LayoutContent(size curve.Size) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.minimap.Scroll()
	s.Content = size
	b.minimap.ScrollChanged(s)
}

// MinimapTap centers the viewport on the content under pt and returns the
// new scroll offset.
func (b *Board) MinimapTap(pt curve.Point) curve.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.minimap.Tap(pt)
}

// MinimapDrag moves the thumb by delta and returns the new scroll offset.
func (b *Board) MinimapDrag(delta curve.Vec2) curve.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.minimap.Drag(delta)
}
