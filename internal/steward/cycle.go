package steward

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Steward runs observe, triage, decide and act cycles against one API.
type Steward struct {
	Observer   *Observer
	Actor      *Actor
	Memory     *CycleMemory
	ForceEvery int // snapshot after this many unchanged cycles; 0 = only on change
}

// RunCycle executes one cycle and records it in memory. Failed cycles are
// not recorded.
func (s *Steward) RunCycle(ctx context.Context) (CycleRecord, error) {
	slog.Info("steward cycle starting")

	obs, err := s.Observer.Observe(ctx)
	if err != nil {
		return CycleRecord{}, fmt.Errorf("observe: %w", err)
	}

	health := Triage(obs)
	slog.Info("observation complete",
		"hexes", health.Hexes,
		"tiled", health.Tiled,
		"land", health.Land,
		"fingerprint", fmt.Sprintf("%016x", health.Fingerprint),
	)

	decision := Decide(health, s.Memory, s.ForceEvery)
	rec := CycleRecord{
		Time:        time.Now().UTC(),
		Action:      decision.Action,
		Reason:      decision.Reason,
		Hexes:       health.Hexes,
		Land:        health.Land,
		Fingerprint: health.Fingerprint,
	}

	if decision.Action == ActionSnapshot {
		result, err := s.Actor.Snapshot(ctx)
		if err != nil {
			return CycleRecord{}, fmt.Errorf("snapshot: %w", err)
		}
		rec.SnapshotID = result.ID
		slog.Info("snapshot taken", "id", result.ID, "hexes", result.HexCount, "reason", decision.Reason)
	} else {
		slog.Info("steward cycle complete, no snapshot", "reason", decision.Reason)
	}

	s.Memory.Record(rec)
	s.Memory.Save()
	return rec, nil
}
