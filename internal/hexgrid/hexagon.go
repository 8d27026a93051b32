package hexgrid

import (
	"fmt"
	"math"
	"sync"
)

// Point is a pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// SharedHexagonData is the geometry shared by every cell of a grid.
// Width and Height are the pixel spacing between adjacent columns and rows,
// not the bounding box of a single cell. Read-only after construction.
type SharedHexagonData struct {
	Orientation Orientation `json:"orientation"`
	Radius      float64     `json:"radius"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
}

// NewSharedHexagonData derives cell spacing from the orientation and the
// cell radius (center to corner).
func NewSharedHexagonData(o Orientation, radius float64) *SharedHexagonData {
	sd := &SharedHexagonData{Orientation: o, Radius: radius}
	if o == FlatTop {
		sd.Width = radius * 3 / 2
		sd.Height = math.Sqrt(3) * radius
	} else {
		sd.Width = math.Sqrt(3) * radius
		sd.Height = radius * 3 / 2
	}
	return sd
}

// Center returns the pixel center of the cell at c. It does not look at any
// grid, so it is safe to call for coordinates that are not stored.
func Center(c AxialCoordinate, shared *SharedHexagonData) Point {
	x, z := float64(c.GridX), float64(c.GridZ)
	w, h := shared.Width, shared.Height
	if shared.Orientation == FlatTop {
		return Point{
			X: x*w + shared.Radius,
			Y: z*h + x*h/2 + h/2,
		}
	}
	return Point{
		X: x*w + z*w/2 + w/2,
		Y: z*h + shared.Radius,
	}
}

// Hexagon is a single cell. Its coordinate and geometry are fixed; the
// satellite slot carries caller-defined data and may be changed at any time.
type Hexagon struct {
	coord  AxialCoordinate
	center Point

	mu        sync.RWMutex
	satellite any
	hasData   bool
}

// NewHexagon creates a cell at coord. It is not stored anywhere.
func NewHexagon(shared *SharedHexagonData, coord AxialCoordinate) *Hexagon {
	return &Hexagon{
		coord:  coord,
		center: Center(coord, shared),
	}
}

// Coordinate returns the cell's axial coordinate.
func (h *Hexagon) Coordinate() AxialCoordinate { return h.coord }

// GridX returns the axial X of the cell.
func (h *Hexagon) GridX() int { return h.coord.GridX }

// GridZ returns the axial Z of the cell.
func (h *Hexagon) GridZ() int { return h.coord.GridZ }

// Center returns the pixel center, fixed at construction.
func (h *Hexagon) Center() Point { return h.center }

// CenterX returns the X of the pixel center.
func (h *Hexagon) CenterX() float64 { return h.center.X }

// CenterY returns the Y of the pixel center.
func (h *Hexagon) CenterY() float64 { return h.center.Y }

// SatelliteData returns the attached data and whether any is set.
func (h *Hexagon) SatelliteData() (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.satellite, h.hasData
}

// SetSatelliteData attaches data to the cell, replacing what was there.
func (h *Hexagon) SetSatelliteData(data any) {
	h.mu.Lock()
	h.satellite = data
	h.hasData = true
	h.mu.Unlock()
}

// ClearSatelliteData empties the satellite slot.
func (h *Hexagon) ClearSatelliteData() {
	h.mu.Lock()
	h.satellite = nil
	h.hasData = false
	h.mu.Unlock()
}

// String implements fmt.Stringer.
func (h *Hexagon) String() string {
	return fmt.Sprintf("Hexagon(%d,%d @ %.1f,%.1f)", h.coord.GridX, h.coord.GridZ, h.center.X, h.center.Y)
}
