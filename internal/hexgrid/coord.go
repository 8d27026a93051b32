// Package hexgrid provides the hexagonal grid storage and query engine.
// Cells are addressed by axial coordinates (x, z); the third cube
// coordinate y is derived: y = -x - z.
package hexgrid

import (
	"fmt"
	"strconv"
	"strings"
)

// AxialCoordinate identifies a cell on the grid. Two coordinates are equal
// iff their (GridX, GridZ) pairs are equal.
type AxialCoordinate struct {
	GridX int `json:"x"`
	GridZ int `json:"z"`
}

// FromCoordinates creates an axial coordinate from its two axes.
func FromCoordinates(x, z int) AxialCoordinate {
	return AxialCoordinate{GridX: x, GridZ: z}
}

// Key returns the canonical storage key "x,z".
func (c AxialCoordinate) Key() string {
	return strconv.Itoa(c.GridX) + "," + strconv.Itoa(c.GridZ)
}

// String implements fmt.Stringer.
func (c AxialCoordinate) String() string {
	return "(" + c.Key() + ")"
}

// GridY returns the implicit third cube coordinate.
func (c AxialCoordinate) GridY() int {
	return -c.GridX - c.GridZ
}

// Add returns the component-wise sum of two coordinates.
func (c AxialCoordinate) Add(o AxialCoordinate) AxialCoordinate {
	return AxialCoordinate{GridX: c.GridX + o.GridX, GridZ: c.GridZ + o.GridZ}
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (AxialCoordinate, error) {
	xs, zs, ok := strings.Cut(key, ",")
	if !ok {
		return AxialCoordinate{}, fmt.Errorf("parse key %q: missing separator", key)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return AxialCoordinate{}, fmt.Errorf("parse key %q: %w", key, err)
	}
	z, err := strconv.Atoi(zs)
	if err != nil {
		return AxialCoordinate{}, fmt.Errorf("parse key %q: %w", key, err)
	}
	return AxialCoordinate{GridX: x, GridZ: z}, nil
}

// NeighborDirections defines the six neighbor offsets in axial coordinates.
var NeighborDirections = [6]AxialCoordinate{
	{GridX: 1, GridZ: 0},
	{GridX: 1, GridZ: -1},
	{GridX: 0, GridZ: -1},
	{GridX: -1, GridZ: 0},
	{GridX: -1, GridZ: 1},
	{GridX: 0, GridZ: 1},
}

// Neighbors returns the six adjacent coordinates, in NeighborDirections order.
func (c AxialCoordinate) Neighbors() [6]AxialCoordinate {
	var result [6]AxialCoordinate
	for i, dir := range NeighborDirections {
		result[i] = c.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b AxialCoordinate) int {
	dx := abs(a.GridX - b.GridX)
	dz := abs(a.GridZ - b.GridZ)
	dy := abs(a.GridY() - b.GridY())
	// Max of the three absolute differences in cube coordinates.
	return max(dx, dy, dz)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
