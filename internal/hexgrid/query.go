package hexgrid

// Range extraction is fail-fast: the first coordinate in the rectangle that
// is not stored aborts the call with ErrCoordinateNotFound. Missing cells
// are never created. Callers that want to skip holes should pre-check with
// ContainsAxialCoordinate.

// HexagonsByAxialRange returns every cell with GridZ in [from.GridZ, to.GridZ]
// and GridX in [from.GridX, to.GridX], keyed by coordinate key.
func (g *Grid) HexagonsByAxialRange(from, to AxialCoordinate) (map[string]*Hexagon, error) {
	out := make(map[string]*Hexagon)
	for z := from.GridZ; z <= to.GridZ; z++ {
		for x := from.GridX; x <= to.GridX; x++ {
			c := FromCoordinates(x, z)
			h, err := g.ByAxialCoordinate(c)
			if err != nil {
				return nil, err
			}
			out[c.Key()] = h
		}
	}
	return out, nil
}

// HexagonsByOffsetRange is HexagonsByAxialRange for offset columns
// [xFrom, xTo] and rows [yFrom, yTo]. The result is keyed by axial key.
func (g *Grid) HexagonsByOffsetRange(xFrom, xTo, yFrom, yTo int) (map[string]*Hexagon, error) {
	out := make(map[string]*Hexagon)
	for y := yFrom; y <= yTo; y++ {
		for x := xFrom; x <= xTo; x++ {
			c := OffsetToAxial(x, y, g.shared.Orientation)
			h, err := g.ByAxialCoordinate(c)
			if err != nil {
				return nil, err
			}
			out[c.Key()] = h
		}
	}
	return out, nil
}

// NeighborsOf returns the stored cells adjacent to h, between 0 and 6 of
// them, in NeighborDirections order. Missing neighbors are skipped.
func (g *Grid) NeighborsOf(h *Hexagon) []*Hexagon {
	return g.neighborsOfCoordinate(h.Coordinate())
}

// neighborsOfCoordinate works for any coordinate, stored or not.
func (g *Grid) neighborsOfCoordinate(c AxialCoordinate) []*Hexagon {
	neighbors := make([]*Hexagon, 0, len(NeighborDirections))
	for _, nc := range c.Neighbors() {
		if nh, ok := g.storage.Get(nc.Key()); ok {
			neighbors = append(neighbors, nh)
		}
	}
	return neighbors
}

// ByPixelCoordinate returns the cell whose area contains the pixel (x, y).
//
// The offset estimate can land one cell off near borders, so the estimate
// is compared with its stored neighbors and the nearest center wins. Ties
// keep the earlier candidate (the estimate first).
//
// Results are exact only for pixels at non-negative positions. The estimate
// truncates toward zero, so at negative x or y it can land two cells away,
// outside the neighbors that are checked, and a wrong cell is returned with
// a nil error. Layouts built by this package place every center in the
// non-negative quadrant; grids extended to negative coordinates with
// AddHexagon are not.
func (g *Grid) ByPixelCoordinate(x, y float64) (*Hexagon, error) {
	estimate := EstimateAxial(x, y, g.shared)
	clicked := Point{X: x, Y: y}

	// The estimate may be off the grid, so only its geometry is used here.
	smallest := clicked.DistanceTo(Center(estimate, g.shared))
	var refined *Hexagon
	for _, nh := range g.neighborsOfCoordinate(estimate) {
		if d := clicked.DistanceTo(nh.Center()); d < smallest {
			smallest = d
			refined = nh
		}
	}

	if refined == nil {
		return g.ByAxialCoordinate(estimate)
	}
	return refined, nil
}
