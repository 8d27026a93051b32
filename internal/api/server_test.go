package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/talgya/hexgrid/internal/hexgrid"
	"github.com/talgya/hexgrid/internal/persistence"
	"github.com/talgya/hexgrid/internal/terrain"
)

const testAdminKey = "secret"

type fakeDB struct {
	saves int
	err   error
}

func (f *fakeDB) SaveGrid(g *hexgrid.Grid, layout string) (persistence.Snapshot, error) {
	if f.err != nil {
		return persistence.Snapshot{}, f.err
	}
	f.saves++
	return persistence.Snapshot{ID: "snap-1", HexCount: g.Len(), Layout: layout}, nil
}

func newTestServer(t *testing.T, mod func(*Server)) (*Server, http.Handler) {
	t.Helper()
	cfg := hexgrid.DefaultGridConfig()
	cfg.Layout = hexgrid.TrapezoidLayout{}
	cfg.GridWidth, cfg.GridHeight = 3, 3
	g, err := hexgrid.NewGrid(cfg)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	s := &Server{Grid: g, AdminKey: testAdminKey, Layout: "trapezoid"}
	if mod != nil {
		mod(s)
	}
	h, err := s.Handler()
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s, h
}

func do(t *testing.T, h http.Handler, method, path string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if admin {
		req.Header.Set("Authorization", "Bearer "+testAdminKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q failed: %v", rec.Body.String(), err)
	}
	return v
}

func TestStatus(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/v1/status", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["hexes"] != float64(9) {
		t.Errorf("hexes: got %v, want 9", body["hexes"])
	}
	if body["layout"] != "trapezoid" {
		t.Errorf("layout: got %v, want trapezoid", body["layout"])
	}
}

func TestHex(t *testing.T) {
	s, h := newTestServer(t, nil)
	cell, _ := s.Grid.ByAxialCoordinate(hexgrid.FromCoordinates(1, 2))
	cell.SetSatelliteData(&terrain.Tile{Terrain: terrain.Forest})

	rec := do(t, h, http.MethodGet, "/api/v1/hex/1,2", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	got := decode[hexEntry](t, rec)
	if got.Key != "1,2" || got.X != 1 || got.Z != 2 {
		t.Errorf("entry: got %+v", got)
	}
	if got.CenterX != cell.CenterX() || got.CenterY != cell.CenterY() {
		t.Errorf("center: got (%v,%v), want (%v,%v)", got.CenterX, got.CenterY, cell.CenterX(), cell.CenterY())
	}
	sat, ok := got.Satellite.(map[string]any)
	if !ok || sat["terrain"] != float64(terrain.Forest) {
		t.Errorf("satellite: got %v", got.Satellite)
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/hex/9,9", false); rec.Code != http.StatusNotFound {
		t.Errorf("missing hex: got %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/hex/nope", false); rec.Code != http.StatusBadRequest {
		t.Errorf("bad key: got %d, want 400", rec.Code)
	}
}

func TestNeighbors(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/api/v1/hex/1,1/neighbors", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := decode[[]hexEntry](t, rec); len(got) != 6 {
		t.Errorf("neighbors of center: got %d, want 6", len(got))
	}

	rec = do(t, h, http.MethodGet, "/api/v1/hex/0,0/neighbors", false)
	if got := decode[[]hexEntry](t, rec); len(got) != 2 {
		t.Errorf("neighbors of corner: got %d, want 2", len(got))
	}
}

func TestPixel(t *testing.T) {
	s, h := newTestServer(t, nil)
	cell, _ := s.Grid.ByAxialCoordinate(hexgrid.FromCoordinates(2, 1))
	path := "/api/v1/pixel?x=" + ftoa(cell.CenterX()) + "&y=" + ftoa(cell.CenterY())

	rec := do(t, h, http.MethodGet, path, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if got := decode[hexEntry](t, rec); got.Key != "2,1" {
		t.Errorf("pixel: got %s, want 2,1", got.Key)
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/pixel?x=-900&y=-900", false); rec.Code != http.StatusNotFound {
		t.Errorf("off grid: got %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/pixel?x=abc&y=1", false); rec.Code != http.StatusBadRequest {
		t.Errorf("bad x: got %d, want 400", rec.Code)
	}
}

func TestAxialRange_FailFastAndInvalidation(t *testing.T) {
	_, h := newTestServer(t, nil)
	path := "/api/v1/range/axial?from=0,0&to=1,1"

	rec := do(t, h, http.MethodGet, path, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := decode[map[string]hexEntry](t, rec); len(got) != 4 {
		t.Fatalf("entries: got %d, want 4", len(got))
	}

	if rec := do(t, h, http.MethodDelete, "/api/v1/hex/1,1", true); rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d, want 200", rec.Code)
	}

	// A cached response from before the delete must not be served.
	if rec := do(t, h, http.MethodGet, path, false); rec.Code != http.StatusNotFound {
		t.Errorf("range with hole: got %d, want 404", rec.Code)
	}

	if rec := do(t, h, http.MethodPost, "/api/v1/hex/1,1", true); rec.Code != http.StatusCreated {
		t.Fatalf("add: got %d, want 201", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, path, false); rec.Code != http.StatusOK {
		t.Errorf("range after re-add: got %d, want 200", rec.Code)
	}
}

func TestAxialRange_BadRequests(t *testing.T) {
	_, h := newTestServer(t, nil)
	for _, path := range []string{
		"/api/v1/range/axial?from=0,0",
		"/api/v1/range/axial?from=0,0&to=500,500",
		"/api/v1/range/axial?from=0,0&to=9999999999,0",
	} {
		if rec := do(t, h, http.MethodGet, path, false); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", path, rec.Code)
		}
	}
}

func TestOffsetRange(t *testing.T) {
	_, h := newTestServer(t, nil)
	// Trapezoid cells at axial (x,z) sit at pointy offset (x+z/2, z);
	// row 0 holds offset columns 0..2.
	rec := do(t, h, http.MethodGet, "/api/v1/range/offset?x0=0&x1=2&y0=0&y1=0", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	got := decode[map[string]hexEntry](t, rec)
	for _, key := range []string{"0,0", "1,0", "2,0"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing %s in %v", key, got)
		}
	}

	if rec := do(t, h, http.MethodGet, "/api/v1/range/offset?x0=0&x1=5&y0=0&y1=0", false); rec.Code != http.StatusNotFound {
		t.Errorf("out of grid: got %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/v1/range/offset?x0=0&x1=a&y0=0&y1=0", false); rec.Code != http.StatusBadRequest {
		t.Errorf("bad bound: got %d, want 400", rec.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	_, h := newTestServer(t, nil)
	if rec := do(t, h, http.MethodPost, "/api/v1/hex/5,5", false); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rec.Code)
	}

	_, disabled := newTestServer(t, func(s *Server) { s.AdminKey = "" })
	if rec := do(t, disabled, http.MethodPost, "/api/v1/hex/5,5", true); rec.Code != http.StatusForbidden {
		t.Errorf("admin disabled: got %d, want 403", rec.Code)
	}
}

func TestRemoveMissing(t *testing.T) {
	_, h := newTestServer(t, nil)
	if rec := do(t, h, http.MethodDelete, "/api/v1/hex/7,7", true); rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestClearSatellite(t *testing.T) {
	s, h := newTestServer(t, nil)
	for _, cell := range s.Grid.Hexagons() {
		cell.SetSatelliteData(&terrain.Tile{Terrain: terrain.Desert})
	}
	rec := do(t, h, http.MethodPost, "/api/v1/satellite/clear", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	for key, cell := range s.Grid.Hexagons() {
		if _, ok := cell.SatelliteData(); ok {
			t.Errorf("cell %s still has satellite data", key)
		}
	}
	if s.Grid.Len() != 9 {
		t.Errorf("Len: got %d, want 9", s.Grid.Len())
	}
}

func TestSnapshot(t *testing.T) {
	if rec := do(t, mustHandler(t, nil), http.MethodPost, "/api/v1/snapshot", true); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("no db: got %d, want 503", rec.Code)
	}

	db := &fakeDB{}
	h := mustHandler(t, func(s *Server) { s.DB = db })
	rec := do(t, h, http.MethodPost, "/api/v1/snapshot", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	snap := decode[persistence.Snapshot](t, rec)
	if snap.ID != "snap-1" || snap.HexCount != 9 || snap.Layout != "trapezoid" {
		t.Errorf("snapshot: got %+v", snap)
	}
	if db.saves != 1 {
		t.Errorf("saves: got %d, want 1", db.saves)
	}

	failing := mustHandler(t, func(s *Server) { s.DB = &fakeDB{err: errors.New("disk full")} })
	if rec := do(t, failing, http.MethodPost, "/api/v1/snapshot", true); rec.Code != http.StatusInternalServerError {
		t.Errorf("failing db: got %d, want 500", rec.Code)
	}
}

func mustHandler(t *testing.T, mod func(*Server)) http.Handler {
	t.Helper()
	_, h := newTestServer(t, mod)
	return h
}

func TestRangeRateLimit(t *testing.T) {
	_, h := newTestServer(t, func(s *Server) { s.RateLimit = 2 })
	path := "/api/v1/range/axial?from=0,0&to=0,0"
	for i := 0; i < 2; i++ {
		if rec := do(t, h, http.MethodGet, path, false); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodGet, path, false)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: got %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	// Non-range endpoints are not limited.
	if rec := do(t, h, http.MethodGet, "/api/v1/status", false); rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Close()
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request denied")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("second request allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other IP denied")
	}
	if got := rl.RetryAfter("1.2.3.4"); got != 61 {
		t.Errorf("RetryAfter: got %d, want 61", got)
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("request after window denied")
	}
}
