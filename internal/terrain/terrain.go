// Package terrain generates terrain tiles and attaches them to grid cells
// as satellite data.
package terrain

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/hexgrid/internal/hexgrid"
)

// Terrain types for hex tiles.
type Terrain uint8

const (
	Plains   Terrain = iota // Fertile lowland, the fallback type
	Forest                  // Wet uplands
	Mountain                // Above the mountain line
	Coast                   // Low land next to ocean
	River                   // Traced from highlands down to the sea
	Desert                  // Hot and dry
	Swamp                   // Wet lowland
	Tundra                  // Cold
	Ocean                   // Below sea level
)

var terrainNames = [...]string{
	Plains:   "Plains",
	Forest:   "Forest",
	Mountain: "Mountain",
	Coast:    "Coast",
	River:    "River",
	Desert:   "Desert",
	Swamp:    "Swamp",
	Tundra:   "Tundra",
	Ocean:    "Ocean",
}

// String returns a human-readable name for a terrain type.
func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "Unknown"
}

// Tile is the satellite data attached to each cell.
type Tile struct {
	Terrain     Terrain `json:"terrain"`
	Elevation   float64 `json:"elevation"`   // 0.0 (sea level) to 1.0 (peak)
	Rainfall    float64 `json:"rainfall"`    // 0.0 (arid) to 1.0 (tropical)
	Temperature float64 `json:"temperature"` // 0.0 (frozen) to 1.0 (hot)
}

// TileOf returns the tile attached to h, or nil if h carries no tile.
func TileOf(h *hexgrid.Hexagon) *Tile {
	data, ok := h.SatelliteData()
	if !ok {
		return nil
	}
	tile, _ := data.(*Tile)
	return tile
}

// DecodeTile parses a JSON-encoded tile. It is the satellite decoder used
// when restoring a saved grid.
func DecodeTile(raw json.RawMessage) (any, error) {
	var t Tile
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode tile: %w", err)
	}
	return &t, nil
}

// Counts returns a summary of terrain type distribution. Cells without a
// tile are not counted.
func Counts(g *hexgrid.Grid) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, h := range g.Hexagons() {
		if t := TileOf(h); t != nil {
			counts[t.Terrain]++
		}
	}
	return counts
}
