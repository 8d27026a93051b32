package steward

import (
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/talgya/hexgrid/internal/terrain"
)

// GridHealth holds derived signals computed from an Observation.
type GridHealth struct {
	Hexes       int
	Tiled       int // cells carrying a terrain tile
	Land        int // tiled cells that are not ocean
	Terrain     map[terrain.Terrain]int
	Fingerprint uint64 // changes whenever a cell or its terrain changes
}

// Triage computes a GridHealth from the observation's data.
func Triage(obs *Observation) *GridHealth {
	h := &GridHealth{
		Hexes:   len(obs.Hexes),
		Terrain: make(map[terrain.Terrain]int),
	}

	keys := make([]string, 0, len(obs.Hexes))
	for key, info := range obs.Hexes {
		keys = append(keys, key)
		if info.Satellite == nil {
			continue
		}
		h.Tiled++
		h.Terrain[info.Satellite.Terrain]++
		if info.Satellite.Terrain != terrain.Ocean {
			h.Land++
		}
	}
	slices.Sort(keys)

	d := xxhash.New()
	for _, key := range keys {
		d.WriteString(key)
		d.WriteString("=")
		if tile := obs.Hexes[key].Satellite; tile != nil {
			d.WriteString(strconv.Itoa(int(tile.Terrain)))
		} else {
			d.WriteString("-")
		}
		d.WriteString(";")
	}
	h.Fingerprint = d.Sum64()
	return h
}
