// Terrain generation using layered simplex noise.
// Elevation, rainfall and temperature are sampled at each cell's pixel
// center, then terrain is derived and refined with neighbor passes.
package terrain

import (
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexgrid/internal/hexgrid"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation threshold for ocean (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
	MaxRivers   int     // Upper bound on traced rivers
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:        0,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
		MaxRivers:   10,
	}
}

// Generate replaces the satellite data of every cell of g with a fresh tile
// and returns the seed that was used.
func Generate(g *hexgrid.Grid, cfg GenConfig) int64 {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Three noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	g.ClearSatelliteData()

	hexes := g.Hexagons()
	bounds := boundsOf(hexes, g.SharedData())

	for _, h := range hexes {
		// Sample noise in cell units so the texture does not depend on radius.
		x := h.CenterX() / g.SharedData().Width
		y := h.CenterY() / g.SharedData().Height

		elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
		rain := octaveNoise(rainNoise, x, y, 3, 0.06, 0.5)
		temp := octaveNoise(tempNoise, x, y, 3, 0.05, 0.5)

		// Continental shaping: reduce elevation near edges to create ocean border.
		elev *= bounds.edgeFalloff(h.Center())

		// Temperature drops with elevation and with distance from the middle row.
		temp = temp*0.6 + (1.0-bounds.latitude(h.Center()))*0.3 + (1.0-elev)*0.1

		h.SetSatelliteData(&Tile{
			Terrain:     deriveTerrain(elev, rain, temp, cfg),
			Elevation:   elev,
			Rainfall:    rain,
			Temperature: temp,
		})
	}

	// Post-pass: mark coastal cells (land cells adjacent to ocean).
	markCoastal(g)

	// Post-pass: place rivers flowing from high elevation to coast.
	placeRivers(g, seed, cfg.MaxRivers)

	return seed
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain, temp float64, cfg GenConfig) Terrain {
	if elev < cfg.SeaLevel {
		return Ocean
	}
	if elev > cfg.MountainLvl {
		return Mountain
	}
	if temp < 0.25 {
		return Tundra
	}
	if rain < 0.25 && temp > 0.5 {
		return Desert
	}
	if rain > 0.7 && elev < 0.45 {
		return Swamp
	}
	if rain > 0.45 && elev > 0.45 {
		return Forest
	}
	return Plains
}

// markCoastal converts low plains and forest next to ocean into coast.
func markCoastal(g *hexgrid.Grid) {
	var toMark []*Tile

	for _, h := range g.Hexagons() {
		tile := TileOf(h)
		if tile == nil || tile.Terrain == Ocean {
			continue
		}
		for _, n := range g.NeighborsOf(h) {
			if nt := TileOf(n); nt != nil && nt.Terrain == Ocean {
				toMark = append(toMark, tile)
				break
			}
		}
	}

	for _, tile := range toMark {
		if (tile.Terrain == Plains || tile.Terrain == Forest) && tile.Elevation < 0.5 {
			tile.Terrain = Coast
		}
	}
}

// placeRivers traces paths from high elevation toward the sea.
func placeRivers(g *hexgrid.Grid, seed int64, maxRivers int) {
	rng := rand.New(rand.NewSource(seed + 100))

	var sources []*hexgrid.Hexagon
	for _, h := range g.Hexagons() {
		if t := TileOf(h); t != nil && t.Elevation > 0.65 && t.Terrain != Ocean {
			sources = append(sources, h)
		}
	}
	// Map iteration order is random; sort so a seed always picks the same rivers.
	sort.Slice(sources, func(i, j int) bool {
		a, b := sources[i].Coordinate(), sources[j].Coordinate()
		if a.GridZ != b.GridZ {
			return a.GridZ < b.GridZ
		}
		return a.GridX < b.GridX
	})

	numRivers := len(sources) / 8
	if numRivers < 2 {
		numRivers = 2
	}
	if numRivers > maxRivers {
		numRivers = maxRivers
	}

	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})
	if len(sources) > numRivers {
		sources = sources[:numRivers]
	}

	for _, start := range sources {
		traceRiver(g, start)
	}
}

// traceRiver follows the steepest descent from a source cell until reaching
// ocean or running out of downhill path.
func traceRiver(g *hexgrid.Grid, start *hexgrid.Hexagon) {
	current := start
	visited := make(map[hexgrid.AxialCoordinate]bool)
	maxSteps := 50

	for step := 0; step < maxSteps; step++ {
		visited[current.Coordinate()] = true
		tile := TileOf(current)
		if tile == nil || tile.Terrain == Ocean {
			break
		}

		if tile.Terrain != Mountain && tile.Terrain != Coast {
			tile.Terrain = River
		}

		var best *hexgrid.Hexagon
		bestElev := tile.Elevation
		for _, n := range g.NeighborsOf(current) {
			if visited[n.Coordinate()] {
				continue
			}
			nt := TileOf(n)
			if nt == nil {
				continue
			}
			if nt.Elevation < bestElev {
				bestElev = nt.Elevation
				best = n
			}
		}

		if best == nil {
			break // No downhill path.
		}
		current = best
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// pixelBounds is the pixel-space bounding box of a set of cell centers.
type pixelBounds struct {
	minX, minY, maxX, maxY float64
}

func boundsOf(hexes map[string]*hexgrid.Hexagon, shared *hexgrid.SharedHexagonData) pixelBounds {
	b := pixelBounds{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
	for _, h := range hexes {
		b.minX = math.Min(b.minX, h.CenterX())
		b.minY = math.Min(b.minY, h.CenterY())
		b.maxX = math.Max(b.maxX, h.CenterX())
		b.maxY = math.Max(b.maxY, h.CenterY())
	}
	// Keep a degenerate (single row or column) box from dividing by zero.
	b.maxX = math.Max(b.maxX, b.minX+shared.Width)
	b.maxY = math.Max(b.maxY, b.minY+shared.Height)
	return b
}

// edgeFalloff is 1 in the middle of the box and drops toward 0 at the rim.
func (b pixelBounds) edgeFalloff(p hexgrid.Point) float64 {
	nx := (p.X-b.minX)/(b.maxX-b.minX)*2 - 1
	ny := (p.Y-b.minY)/(b.maxY-b.minY)*2 - 1
	dist := math.Sqrt(nx*nx+ny*ny) / math.Sqrt2
	f := 1.0 - math.Pow(dist, 3.5)
	if f < 0 {
		return 0
	}
	return f
}

// latitude is 0 on the middle row and 1 on the top and bottom rows.
func (b pixelBounds) latitude(p hexgrid.Point) float64 {
	return math.Abs((p.Y-b.minY)/(b.maxY-b.minY)*2 - 1)
}
