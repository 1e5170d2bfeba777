package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"honnef.co/go/curve"

	"DotDrawer/internal/state"
)

// CoordinateFile is the name of the saved point list.
const CoordinateFile = "Coordinate.txt"

type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func coordinate(pt curve.Point) Coordinate {
	return Coordinate{X: pt.X, Y: pt.Y}
}

// PointRecord is one saved sample: its midpoint and control point.
type PointRecord struct {
	P Coordinate `json:"p"`
	C Coordinate `json:"c"`
}

// Records converts samples into their saved form.
func Records(points []state.PointInfo) []PointRecord {
	out := make([]PointRecord, 0, len(points))
	for _, p := range points {
		out = append(out, PointRecord{P: coordinate(p.Midpoint), C: coordinate(p.ControlPoint)})
	}
	return out
}

// EncodeCoordinates renders points as the JSON array stored in
// CoordinateFile.
func EncodeCoordinates(points []state.PointInfo) ([]byte, error) {
	data, err := json.Marshal(Records(points))
	if err != nil {
		return nil, fmt.Errorf("encoding coordinates: %w", err)
	}
	return data, nil
}

// SaveCoordinates writes points to CoordinateFile inside dir and returns the
// file's path.
func SaveCoordinates(dir string, points []state.PointInfo) (string, error) {
	data, err := EncodeCoordinates(points)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, CoordinateFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("[EXPORT] Saved %d points to %s", len(points), path)
	return path, nil
}
