// Package persistence provides SQLite-based grid snapshot storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexgrid/internal/hexgrid"
)

// ErrNoSnapshot is returned when the database holds no saved grid.
var ErrNoSnapshot = errors.New("no saved grid")

// DB wraps a SQLite connection for grid persistence.
type DB struct {
	conn *sqlx.DB
}

// Snapshot describes one full save of a grid.
type Snapshot struct {
	ID          string    `db:"id" json:"id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	HexCount    int       `db:"hex_count" json:"hex_count"`
	Orientation string    `db:"orientation" json:"orientation"`
	Radius      float64   `db:"radius" json:"radius"`
	Layout      string    `db:"layout" json:"layout"`
}

// SatelliteDecoder turns stored satellite JSON back into a value.
type SatelliteDecoder func(raw json.RawMessage) (any, error)

type hexRow struct {
	GridX     int            `db:"grid_x"`
	GridZ     int            `db:"grid_z"`
	Satellite sql.NullString `db:"satellite_json"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hexagons (
		grid_x INTEGER NOT NULL,
		grid_z INTEGER NOT NULL,
		satellite_json TEXT,
		PRIMARY KEY (grid_x, grid_z)
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		hex_count INTEGER NOT NULL,
		orientation TEXT NOT NULL,
		radius REAL NOT NULL,
		layout TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS grid_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveGrid writes every cell of g (full replace) and records a snapshot.
// Satellite data is stored as JSON; cells without data store NULL.
func (db *DB) SaveGrid(g *hexgrid.Grid, layout string) (Snapshot, error) {
	hexes := g.Hexagons()
	snap := Snapshot{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		HexCount:    len(hexes),
		Orientation: g.SharedData().Orientation.String(),
		Radius:      g.SharedData().Radius,
		Layout:      layout,
	}
	slog.Info("saving grid", "snapshot", snap.ID, "hexes", snap.HexCount)

	tx, err := db.conn.Beginx()
	if err != nil {
		return Snapshot{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM hexagons"); err != nil {
		return Snapshot{}, err
	}

	stmt, err := tx.Preparex(`INSERT INTO hexagons (grid_x, grid_z, satellite_json) VALUES (?, ?, ?)`)
	if err != nil {
		return Snapshot{}, err
	}
	defer stmt.Close()

	for key, h := range hexes {
		var satellite sql.NullString
		if data, ok := h.SatelliteData(); ok {
			raw, err := json.Marshal(data)
			if err != nil {
				return Snapshot{}, fmt.Errorf("encode satellite %s: %w", key, err)
			}
			satellite = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.Exec(h.GridX(), h.GridZ(), satellite); err != nil {
			return Snapshot{}, fmt.Errorf("insert hexagon %s: %w", key, err)
		}
	}

	_, err = tx.NamedExec(`INSERT INTO snapshots
		(id, created_at, hex_count, orientation, radius, layout)
		VALUES (:id, :created_at, :hex_count, :orientation, :radius, :layout)`, snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, err
	}
	slog.Info("grid saved", "snapshot", snap.ID)
	return snap, nil
}

// HasGridState returns true if a grid has been saved before.
func (db *DB) HasGridState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM snapshots"); err != nil {
		return false
	}
	return count > 0
}

// LatestSnapshot returns the most recent snapshot record.
func (db *DB) LatestSnapshot() (Snapshot, error) {
	var snap Snapshot
	err := db.conn.Get(&snap, `SELECT id, created_at, hex_count, orientation, radius, layout
		FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	return snap, err
}

// LoadLayout reads the saved cells into a layout that recreates them.
// decode is applied to every non-NULL satellite value.
func (db *DB) LoadLayout(decode SatelliteDecoder) (*hexgrid.PrebuiltLayout, error) {
	snap, err := db.LatestSnapshot()
	if err != nil {
		return nil, err
	}

	var rows []hexRow
	if err := db.conn.Select(&rows, "SELECT grid_x, grid_z, satellite_json FROM hexagons"); err != nil {
		return nil, fmt.Errorf("load hexagons: %w", err)
	}

	layout := &hexgrid.PrebuiltLayout{
		Source:  snap.Layout,
		Entries: make(map[hexgrid.AxialCoordinate]any, len(rows)),
	}
	for _, r := range rows {
		c := hexgrid.FromCoordinates(r.GridX, r.GridZ)
		var data any
		if r.Satellite.Valid && decode != nil {
			data, err = decode(json.RawMessage(r.Satellite.String))
			if err != nil {
				return nil, fmt.Errorf("hexagon %s: %w", c.Key(), err)
			}
		}
		layout.Entries[c] = data
	}
	return layout, nil
}

// SaveMeta stores a key-value pair in grid metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO grid_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM grid_meta WHERE key = ?", key)
	return value, err
}

// SaveSeed records the terrain seed so a restored grid can report it.
func (db *DB) SaveSeed(seed int64) error {
	return db.SaveMeta("terrain_seed", strconv.FormatInt(seed, 10))
}

// Seed returns the recorded terrain seed.
func (db *DB) Seed() (int64, error) {
	v, err := db.GetMeta("terrain_seed")
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}
