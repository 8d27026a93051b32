package hexgrid

import (
	"errors"
	"fmt"
)

// ErrCoordinateNotFound is returned when an operation needs a stored cell
// and the coordinate is off the grid.
var ErrCoordinateNotFound = errors.New("coordinate is off the grid")

func notFound(c AxialCoordinate) error {
	return fmt.Errorf("%w: %s", ErrCoordinateNotFound, c.Key())
}

// Grid owns the coordinate-to-hexagon index of one hex grid. Every method
// is atomic on its own; sequences of calls are not.
type Grid struct {
	cfg     GridConfig
	shared  *SharedHexagonData
	storage Storage
}

// NewGrid validates cfg and fills a new grid from its layout strategy.
func NewGrid(cfg GridConfig) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{
		cfg:     cfg,
		shared:  NewSharedHexagonData(cfg.Orientation, cfg.Radius),
		storage: cfg.Storage,
	}
	if g.storage == nil {
		g.storage = NewMapStorage()
	}

	for key, h := range cfg.Layout.CreateHexagons(cfg, g.shared) {
		g.storage.Put(key, h)
	}
	return g, nil
}

// Config returns the configuration the grid was built with.
func (g *Grid) Config() GridConfig { return g.cfg }

// SharedData returns the geometry shared by every cell.
func (g *Grid) SharedData() *SharedHexagonData { return g.shared }

// Len returns the number of stored cells.
func (g *Grid) Len() int { return g.storage.Len() }

// Hexagons returns a snapshot of the index. Changing the returned map does
// not change the grid.
func (g *Grid) Hexagons() map[string]*Hexagon {
	out := make(map[string]*Hexagon, g.storage.Len())
	g.storage.Range(func(key string, h *Hexagon) bool {
		out[key] = h
		return true
	})
	return out
}

// ContainsAxialCoordinate reports whether a cell is stored at c.
func (g *Grid) ContainsAxialCoordinate(c AxialCoordinate) bool {
	return g.storage.Contains(c.Key())
}

// ByAxialCoordinate returns the cell stored at c.
func (g *Grid) ByAxialCoordinate(c AxialCoordinate) (*Hexagon, error) {
	h, ok := g.storage.Get(c.Key())
	if !ok {
		return nil, notFound(c)
	}
	return h, nil
}

// AddHexagon creates a cell at c, replacing any cell already there.
func (g *Grid) AddHexagon(c AxialCoordinate) *Hexagon {
	h := NewHexagon(g.shared, c)
	g.storage.Put(c.Key(), h)
	return h
}

// RemoveHexagon removes the cell at c and returns it.
func (g *Grid) RemoveHexagon(c AxialCoordinate) (*Hexagon, error) {
	h, ok := g.storage.Delete(c.Key())
	if !ok {
		return nil, notFound(c)
	}
	return h, nil
}

// ClearSatelliteData empties the satellite slot of every stored cell.
// The cells themselves stay in place.
func (g *Grid) ClearSatelliteData() {
	g.storage.Range(func(_ string, h *Hexagon) bool {
		h.ClearSatelliteData()
		return true
	})
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(layout=%s, orientation=%s, hexes=%d)", g.cfg.Layout.Name(), g.shared.Orientation, g.Len())
}
