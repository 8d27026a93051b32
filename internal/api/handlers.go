package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talgya/hexgrid/internal/hexgrid"
)

// hexEntry is the wire form of a cell.
type hexEntry struct {
	Key       string  `json:"key"`
	X         int     `json:"x"`
	Z         int     `json:"z"`
	OffsetX   int     `json:"offset_x"`
	OffsetY   int     `json:"offset_y"`
	CenterX   float64 `json:"center_x"`
	CenterY   float64 `json:"center_y"`
	Satellite any     `json:"satellite,omitempty"`
}

func (s *Server) entry(h *hexgrid.Hexagon) hexEntry {
	ox, oy := hexgrid.AxialToOffset(h.Coordinate(), s.Grid.SharedData().Orientation)
	e := hexEntry{
		Key:     h.Coordinate().Key(),
		X:       h.GridX(),
		Z:       h.GridZ(),
		OffsetX: ox,
		OffsetY: oy,
		CenterX: h.CenterX(),
		CenterY: h.CenterY(),
	}
	if data, ok := h.SatelliteData(); ok {
		e.Satellite = data
	}
	return e
}

func (s *Server) entries(hexes map[string]*hexgrid.Hexagon) map[string]hexEntry {
	out := make(map[string]hexEntry, len(hexes))
	for key, h := range hexes {
		out[key] = s.entry(h)
	}
	return out
}

// writeGridError maps grid errors to HTTP status codes.
func writeGridError(w http.ResponseWriter, err error) {
	if errors.Is(err, hexgrid.ErrCoordinateNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	slog.Error("grid request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func coordParam(w http.ResponseWriter, r *http.Request) (hexgrid.AxialCoordinate, bool) {
	c, err := hexgrid.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return hexgrid.AxialCoordinate{}, false
	}
	return c, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sd := s.Grid.SharedData()
	writeJSON(w, map[string]any{
		"hexes":       s.Grid.Len(),
		"layout":      s.Grid.Config().Layout.Name(),
		"orientation": sd.Orientation.String(),
		"radius":      sd.Radius,
		"cell_width":  sd.Width,
		"cell_height": sd.Height,
	})
}

// handleHexes returns every cell for map renderers.
func (s *Server) handleHexes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.entries(s.Grid.Hexagons()))
}

func (s *Server) handleHex(w http.ResponseWriter, r *http.Request) {
	c, ok := coordParam(w, r)
	if !ok {
		return
	}
	h, err := s.Grid.ByAxialCoordinate(c)
	if err != nil {
		writeGridError(w, err)
		return
	}
	writeJSON(w, s.entry(h))
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	c, ok := coordParam(w, r)
	if !ok {
		return
	}
	h, err := s.Grid.ByAxialCoordinate(c)
	if err != nil {
		writeGridError(w, err)
		return
	}
	neighbors := s.Grid.NeighborsOf(h)
	out := make([]hexEntry, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, s.entry(n))
	}
	writeJSON(w, out)
}

func (s *Server) handlePixel(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y must be numbers", http.StatusBadRequest)
		return
	}
	h, err := s.Grid.ByPixelCoordinate(x, y)
	if err != nil {
		writeGridError(w, err)
		return
	}
	writeJSON(w, s.entry(h))
}

func (s *Server) handleAxialRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, errFrom := hexgrid.ParseKey(q.Get("from"))
	to, errTo := hexgrid.ParseKey(q.Get("to"))
	if errFrom != nil || errTo != nil {
		http.Error(w, "from and to must be axial keys like 0,0", http.StatusBadRequest)
		return
	}
	if !rangeSizeOK(w, from.GridX, to.GridX, from.GridZ, to.GridZ) {
		return
	}
	s.serveRange(w, "axial|"+from.Key()+"|"+to.Key(), func() (map[string]*hexgrid.Hexagon, error) {
		return s.Grid.HexagonsByAxialRange(from, to)
	})
}

func (s *Server) handleOffsetRange(w http.ResponseWriter, r *http.Request) {
	var bounds [4]int
	for i, name := range []string{"x0", "x1", "y0", "y1"} {
		v, err := strconv.Atoi(r.URL.Query().Get(name))
		if err != nil {
			http.Error(w, name+" must be an integer", http.StatusBadRequest)
			return
		}
		bounds[i] = v
	}
	x0, x1, y0, y1 := bounds[0], bounds[1], bounds[2], bounds[3]
	if !rangeSizeOK(w, x0, x1, y0, y1) {
		return
	}
	key := fmt.Sprintf("offset|%d|%d|%d|%d", x0, x1, y0, y1)
	s.serveRange(w, key, func() (map[string]*hexgrid.Hexagon, error) {
		return s.Grid.HexagonsByOffsetRange(x0, x1, y0, y1)
	})
}

func rangeSizeOK(w http.ResponseWriter, a0, a1, b0, b1 int) bool {
	for _, v := range []int{a0, a1, b0, b1} {
		if v > maxRangeBound || v < -maxRangeBound {
			http.Error(w, "range bound out of bounds", http.StatusBadRequest)
			return false
		}
	}
	da, db := a1-a0, b1-b0
	// Reversed bounds yield an empty range.
	if da < 0 || db < 0 {
		return true
	}
	if (da+1)*(db+1) > maxRangeCells {
		http.Error(w, fmt.Sprintf("range covers more than %d cells", maxRangeCells), http.StatusBadRequest)
		return false
	}
	return true
}

// serveRange answers from the cache when possible. Missing cells fail the
// whole request with 404; partial ranges are never returned.
func (s *Server) serveRange(w http.ResponseWriter, key string, fetch func() (map[string]*hexgrid.Hexagon, error)) {
	if body, ok := s.ranges.get(key); ok {
		w.Header().Set("X-Cache", "hit")
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	gen := s.ranges.generation()
	hexes, err := fetch()
	if err != nil {
		writeGridError(w, err)
		return
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.entries(hexes)); err != nil {
		writeGridError(w, err)
		return
	}
	s.ranges.set(gen, key, buf.Bytes())

	w.Header().Set("X-Cache", "miss")
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

func (s *Server) handleAddHex(w http.ResponseWriter, r *http.Request) {
	c, ok := coordParam(w, r)
	if !ok {
		return
	}
	h := s.Grid.AddHexagon(c)
	s.ranges.invalidate()
	slog.Info("hexagon added", "key", c.Key())

	writeJSONStatus(w, http.StatusCreated, s.entry(h))
}

func (s *Server) handleRemoveHex(w http.ResponseWriter, r *http.Request) {
	c, ok := coordParam(w, r)
	if !ok {
		return
	}
	h, err := s.Grid.RemoveHexagon(c)
	if err != nil {
		writeGridError(w, err)
		return
	}
	s.ranges.invalidate()
	slog.Info("hexagon removed", "key", c.Key())
	writeJSON(w, s.entry(h))
}

func (s *Server) handleClearSatellite(w http.ResponseWriter, r *http.Request) {
	s.Grid.ClearSatelliteData()
	s.ranges.invalidate()
	slog.Info("satellite data cleared", "hexes", s.Grid.Len())
	writeJSON(w, map[string]any{"cleared": s.Grid.Len()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	snap, err := s.DB.SaveGrid(s.Grid, s.Layout)
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}
