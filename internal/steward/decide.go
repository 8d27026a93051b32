package steward

// Actions a cycle can take.
const (
	ActionNone     = "none"
	ActionSnapshot = "snapshot"
)

// Decision is the outcome of one cycle.
type Decision struct {
	Action string
	Reason string
}

// Decide chooses whether to snapshot. A grid that lost every cell is never
// saved over the last good snapshot. forceEvery > 0 snapshots after that
// many unchanged cycles.
func Decide(health *GridHealth, mem *CycleMemory, forceEvery int) Decision {
	last, ok := mem.LastSnapshot()
	switch {
	case health.Hexes == 0 && ok && last.Hexes > 0:
		return Decision{ActionNone, "grid is empty; keeping last snapshot"}
	case !ok:
		return Decision{ActionSnapshot, "no snapshot recorded"}
	case health.Fingerprint != last.Fingerprint:
		return Decision{ActionSnapshot, "grid changed"}
	case forceEvery > 0 && mem.CyclesSinceSnapshot() >= forceEvery:
		return Decision{ActionSnapshot, "periodic"}
	}
	return Decision{ActionNone, "unchanged"}
}
