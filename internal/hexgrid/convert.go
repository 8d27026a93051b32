package hexgrid

import (
	"fmt"
	"strings"
)

// Orientation is the way cells are drawn: pointy side up or flat side up.
type Orientation uint8

const (
	PointyTop Orientation = iota
	FlatTop
)

// String returns the configuration name of the orientation.
func (o Orientation) String() string {
	switch o {
	case PointyTop:
		return "pointy"
	case FlatTop:
		return "flat"
	default:
		return "unknown"
	}
}

// ParseOrientation accepts "pointy", "pointy_top", "flat" and "flat_top"
// in any case.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pointy", "pointy_top", "pointy-top":
		return PointyTop, nil
	case "flat", "flat_top", "flat-top":
		return FlatTop, nil
	}
	return PointyTop, fmt.Errorf("unknown orientation %q", s)
}

// Offset rows and columns map to axial coordinates with a shear along the
// stacking axis. Integer division truncates toward zero.

// OffsetToAxialX converts an offset (column, row) pair to the axial X axis.
func OffsetToAxialX(x, y int, o Orientation) int {
	if o == PointyTop {
		return x - y/2
	}
	return x
}

// OffsetToAxialZ converts an offset (column, row) pair to the axial Z axis.
func OffsetToAxialZ(x, y int, o Orientation) int {
	if o == FlatTop {
		return y - x/2
	}
	return y
}

// OffsetToAxial converts an offset (column, row) pair to an axial coordinate.
func OffsetToAxial(x, y int, o Orientation) AxialCoordinate {
	return AxialCoordinate{
		GridX: OffsetToAxialX(x, y, o),
		GridZ: OffsetToAxialZ(x, y, o),
	}
}

// AxialToOffset is the inverse of OffsetToAxial. It returns (column, row).
func AxialToOffset(c AxialCoordinate, o Orientation) (int, int) {
	if o == PointyTop {
		return c.GridX + c.GridZ/2, c.GridZ
	}
	return c.GridX, c.GridZ + c.GridX/2
}

// EstimateAxial guesses the cell under a pixel: it truncates the pixel
// position to an offset cell, then converts it to axial. Z is computed from
// the already-converted X. The estimate can be one cell off near borders;
// Grid.ByPixelCoordinate refines it.
func EstimateAxial(x, y float64, shared *SharedHexagonData) AxialCoordinate {
	gridX := int(x / shared.Width)
	gridZ := int(y / shared.Height)
	gridX = OffsetToAxialX(gridX, gridZ, shared.Orientation)
	gridZ = OffsetToAxialZ(gridX, gridZ, shared.Orientation)
	return AxialCoordinate{GridX: gridX, GridZ: gridZ}
}
