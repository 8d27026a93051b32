package hexgrid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by NewGrid when the configuration cannot
// produce a grid.
var ErrInvalidConfig = errors.New("invalid grid config")

// GridConfig holds grid construction parameters.
type GridConfig struct {
	GridWidth   int         // Columns (offset X extent)
	GridHeight  int         // Rows (offset Y extent)
	Radius      float64     // Cell radius in pixels, center to corner
	Orientation Orientation // Pointy-top or flat-top
	Layout      LayoutStrategy
	Storage     Storage // Optional; a MapStorage is used when nil
}

// DefaultGridConfig returns a small rectangular pointy-top grid.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		GridWidth:   20,
		GridHeight:  20,
		Radius:      30,
		Orientation: PointyTop,
		Layout:      RectangularLayout{},
	}
}

// Validate checks the generic parameters, then the layout-specific ones.
func (cfg GridConfig) Validate() error {
	if cfg.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidConfig, cfg.Radius)
	}
	if cfg.GridWidth <= 0 || cfg.GridHeight <= 0 {
		return fmt.Errorf("%w: grid size must be positive, got %dx%d", ErrInvalidConfig, cfg.GridWidth, cfg.GridHeight)
	}
	if cfg.Orientation != PointyTop && cfg.Orientation != FlatTop {
		return fmt.Errorf("%w: unknown orientation %d", ErrInvalidConfig, cfg.Orientation)
	}
	if cfg.Layout == nil {
		return fmt.Errorf("%w: no layout strategy", ErrInvalidConfig)
	}
	if err := cfg.Layout.Validate(cfg); err != nil {
		return fmt.Errorf("%w: %s layout: %v", ErrInvalidConfig, cfg.Layout.Name(), err)
	}
	return nil
}

// LayoutStrategy decides which coordinates exist when a grid is created.
type LayoutStrategy interface {
	Name() string
	Validate(cfg GridConfig) error
	CreateHexagons(cfg GridConfig, shared *SharedHexagonData) map[string]*Hexagon
}

// LayoutByName returns the built-in strategy with the given name.
func LayoutByName(name string) (LayoutStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rectangular", "":
		return RectangularLayout{}, nil
	case "hexagonal":
		return HexagonalLayout{}, nil
	case "triangular":
		return TriangularLayout{}, nil
	case "trapezoid":
		return TrapezoidLayout{}, nil
	}
	return nil, fmt.Errorf("unknown layout %q", name)
}

func put(hexes map[string]*Hexagon, shared *SharedHexagonData, c AxialCoordinate) {
	hexes[c.Key()] = NewHexagon(shared, c)
}

// RectangularLayout fills offset columns 0..GridWidth-1 and rows
// 0..GridHeight-1, so the grid looks like a rectangle on screen.
type RectangularLayout struct{}

func (RectangularLayout) Name() string { return "rectangular" }

func (RectangularLayout) Validate(GridConfig) error { return nil }

func (RectangularLayout) CreateHexagons(cfg GridConfig, shared *SharedHexagonData) map[string]*Hexagon {
	hexes := make(map[string]*Hexagon, cfg.GridWidth*cfg.GridHeight)
	for y := 0; y < cfg.GridHeight; y++ {
		for x := 0; x < cfg.GridWidth; x++ {
			put(hexes, shared, OffsetToAxial(x, y, cfg.Orientation))
		}
	}
	return hexes
}

// HexagonalLayout fills every cell within GridWidth/2 steps of the middle
// cell. Width and height must be equal and odd.
type HexagonalLayout struct{}

func (HexagonalLayout) Name() string { return "hexagonal" }

func (HexagonalLayout) Validate(cfg GridConfig) error {
	if cfg.GridWidth != cfg.GridHeight {
		return fmt.Errorf("width and height must be equal, got %dx%d", cfg.GridWidth, cfg.GridHeight)
	}
	if cfg.GridWidth%2 == 0 {
		return fmt.Errorf("size must be odd, got %d", cfg.GridWidth)
	}
	return nil
}

func (HexagonalLayout) CreateHexagons(cfg GridConfig, shared *SharedHexagonData) map[string]*Hexagon {
	radius := cfg.GridWidth / 2
	center := OffsetToAxial(radius, radius, cfg.Orientation)
	hexes := make(map[string]*Hexagon, 1+3*radius*(radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			c := center.Add(AxialCoordinate{GridX: dx, GridZ: dz})
			if Distance(center, c) > radius {
				continue
			}
			put(hexes, shared, c)
		}
	}
	return hexes
}

// TriangularLayout fills a triangle whose sides are GridWidth cells long.
// Width and height must be equal.
type TriangularLayout struct{}

func (TriangularLayout) Name() string { return "triangular" }

func (TriangularLayout) Validate(cfg GridConfig) error {
	if cfg.GridWidth != cfg.GridHeight {
		return fmt.Errorf("width and height must be equal, got %dx%d", cfg.GridWidth, cfg.GridHeight)
	}
	return nil
}

func (TriangularLayout) CreateHexagons(cfg GridConfig, shared *SharedHexagonData) map[string]*Hexagon {
	size := cfg.GridWidth
	hexes := make(map[string]*Hexagon, size*(size+1)/2)
	for z := 0; z < size; z++ {
		for x := 0; x < size-z; x++ {
			put(hexes, shared, FromCoordinates(x, z))
		}
	}
	return hexes
}

// TrapezoidLayout fills axial X 0..GridWidth-1 and Z 0..GridHeight-1,
// which draws as a parallelogram.
type TrapezoidLayout struct{}

func (TrapezoidLayout) Name() string { return "trapezoid" }

func (TrapezoidLayout) Validate(GridConfig) error { return nil }

func (TrapezoidLayout) CreateHexagons(cfg GridConfig, shared *SharedHexagonData) map[string]*Hexagon {
	hexes := make(map[string]*Hexagon, cfg.GridWidth*cfg.GridHeight)
	for z := 0; z < cfg.GridHeight; z++ {
		for x := 0; x < cfg.GridWidth; x++ {
			put(hexes, shared, FromCoordinates(x, z))
		}
	}
	return hexes
}

// PrebuiltLayout recreates a known set of cells, each with optional
// satellite data. Used to restore a saved grid.
type PrebuiltLayout struct {
	Source  string // Name reported by Name, e.g. the layout that first built the grid
	Entries map[AxialCoordinate]any
}

func (l *PrebuiltLayout) Name() string {
	if l.Source == "" {
		return "prebuilt"
	}
	return l.Source
}

// Validate accepts any entry set. An empty set restores a grid whose
// cells were all removed.
func (l *PrebuiltLayout) Validate(GridConfig) error { return nil }

func (l *PrebuiltLayout) CreateHexagons(_ GridConfig, shared *SharedHexagonData) map[string]*Hexagon {
	hexes := make(map[string]*Hexagon, len(l.Entries))
	for c, data := range l.Entries {
		h := NewHexagon(shared, c)
		if data != nil {
			h.SetSatelliteData(data)
		}
		hexes[c.Key()] = h
	}
	return hexes
}
