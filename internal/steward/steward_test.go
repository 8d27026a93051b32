package steward

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/hexgrid/internal/api"
	"github.com/talgya/hexgrid/internal/hexgrid"
	"github.com/talgya/hexgrid/internal/persistence"
	"github.com/talgya/hexgrid/internal/terrain"
)

const adminKey = "steward-test"

type countingDB struct{ saves int }

func (c *countingDB) SaveGrid(g *hexgrid.Grid, layout string) (persistence.Snapshot, error) {
	c.saves++
	return persistence.Snapshot{ID: "snap", HexCount: g.Len(), Layout: layout}, nil
}

func newTestAPI(t *testing.T) (*hexgrid.Grid, *countingDB, string) {
	t.Helper()
	cfg := hexgrid.DefaultGridConfig()
	cfg.GridWidth, cfg.GridHeight = 3, 3
	g, err := hexgrid.NewGrid(cfg)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	for _, h := range g.Hexagons() {
		h.SetSatelliteData(&terrain.Tile{Terrain: terrain.Plains})
	}

	db := &countingDB{}
	srv := &api.Server{Grid: g, DB: db, AdminKey: adminKey, Layout: "rectangular"}
	handler, err := srv.Handler()
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return g, db, ts.URL
}

func TestRunCycle_SnapshotsOnlyOnChange(t *testing.T) {
	g, db, url := newTestAPI(t)
	memPath := filepath.Join(t.TempDir(), "memory.json")
	s := &Steward{
		Observer: NewObserver(url),
		Actor:    NewActor(url, adminKey),
		Memory:   LoadMemory(memPath),
	}
	ctx := context.Background()

	rec, err := s.RunCycle(ctx)
	if err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if rec.Action != ActionSnapshot || rec.SnapshotID != "snap" || rec.Hexes != 9 {
		t.Errorf("first cycle: got %+v", rec)
	}

	rec, err = s.RunCycle(ctx)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if rec.Action != ActionNone {
		t.Errorf("unchanged grid: got action %s, want none", rec.Action)
	}

	if _, err := g.RemoveHexagon(hexgrid.FromCoordinates(0, 0)); err != nil {
		t.Fatalf("RemoveHexagon failed: %v", err)
	}
	rec, err = s.RunCycle(ctx)
	if err != nil {
		t.Fatalf("third cycle: %v", err)
	}
	if rec.Action != ActionSnapshot || rec.Reason != "grid changed" {
		t.Errorf("changed grid: got %+v", rec)
	}

	if db.saves != 2 {
		t.Errorf("saves: got %d, want 2", db.saves)
	}
	if got := len(LoadMemory(memPath).Records); got != 3 {
		t.Errorf("persisted records: got %d, want 3", got)
	}
}

func TestRunCycle_BadAdminKey(t *testing.T) {
	_, db, url := newTestAPI(t)
	s := &Steward{
		Observer: NewObserver(url),
		Actor:    NewActor(url, "wrong"),
		Memory:   &CycleMemory{},
	}
	if _, err := s.RunCycle(context.Background()); err == nil {
		t.Fatal("expected error with a bad admin key")
	}
	if db.saves != 0 || len(s.Memory.Records) != 0 {
		t.Errorf("failed cycle left saves=%d records=%d", db.saves, len(s.Memory.Records))
	}
}

func TestTriage(t *testing.T) {
	obs := &Observation{Hexes: map[string]HexInfo{
		"0,0": {Key: "0,0", Satellite: &terrain.Tile{Terrain: terrain.Ocean}},
		"1,0": {Key: "1,0", X: 1, Satellite: &terrain.Tile{Terrain: terrain.Forest}},
		"2,0": {Key: "2,0", X: 2},
	}}
	h := Triage(obs)
	if h.Hexes != 3 || h.Tiled != 2 || h.Land != 1 {
		t.Errorf("got hexes=%d tiled=%d land=%d, want 3/2/1", h.Hexes, h.Tiled, h.Land)
	}
	if h.Terrain[terrain.Ocean] != 1 || h.Terrain[terrain.Forest] != 1 {
		t.Errorf("terrain counts: got %v", h.Terrain)
	}

	if again := Triage(obs); again.Fingerprint != h.Fingerprint {
		t.Error("fingerprint is not stable")
	}
	obs.Hexes["1,0"] = HexInfo{Key: "1,0", X: 1, Satellite: &terrain.Tile{Terrain: terrain.Desert}}
	if changed := Triage(obs); changed.Fingerprint == h.Fingerprint {
		t.Error("fingerprint did not change with terrain")
	}
}

func TestDecide(t *testing.T) {
	snapped := CycleRecord{Action: ActionSnapshot, Hexes: 9, Fingerprint: 7}
	idle := CycleRecord{Action: ActionNone, Hexes: 9, Fingerprint: 7}

	tests := []struct {
		name       string
		health     GridHealth
		records    []CycleRecord
		forceEvery int
		want       string
	}{
		{"first cycle", GridHealth{Hexes: 9, Fingerprint: 7}, nil, 0, ActionSnapshot},
		{"unchanged", GridHealth{Hexes: 9, Fingerprint: 7}, []CycleRecord{snapped, idle}, 0, ActionNone},
		{"changed", GridHealth{Hexes: 9, Fingerprint: 8}, []CycleRecord{snapped}, 0, ActionSnapshot},
		{"emptied", GridHealth{Hexes: 0, Fingerprint: 1}, []CycleRecord{snapped}, 0, ActionNone},
		{"periodic due", GridHealth{Hexes: 9, Fingerprint: 7}, []CycleRecord{snapped, idle, idle}, 2, ActionSnapshot},
		{"periodic not due", GridHealth{Hexes: 9, Fingerprint: 7}, []CycleRecord{snapped, idle}, 2, ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(&tt.health, &CycleMemory{Records: tt.records}, tt.forceEvery)
			if got.Action != tt.want {
				t.Errorf("got %s (%s), want %s", got.Action, got.Reason, tt.want)
			}
		})
	}
}

func TestCycleMemory_TrimsToMax(t *testing.T) {
	m := &CycleMemory{}
	for i := 0; i < maxRecords+5; i++ {
		m.Record(CycleRecord{Hexes: i})
	}
	if len(m.Records) != maxRecords {
		t.Fatalf("records: got %d, want %d", len(m.Records), maxRecords)
	}
	if m.Records[0].Hexes != 5 {
		t.Errorf("oldest record: got %d, want 5", m.Records[0].Hexes)
	}
	if got := m.CyclesSinceSnapshot(); got != maxRecords {
		t.Errorf("CyclesSinceSnapshot: got %d, want %d", got, maxRecords)
	}
}

func TestWaitReady(t *testing.T) {
	_, _, url := newTestAPI(t)
	if err := NewObserver(url).WaitReady(context.Background(), time.Second); err != nil {
		t.Fatalf("WaitReady on live API: %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "starting", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	if err := NewObserver(down.URL).WaitReady(context.Background(), time.Second); err == nil {
		t.Fatal("expected error from an API that never becomes ready")
	}
}
