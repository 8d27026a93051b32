package steward

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"
)

const maxRecords = 50

// CycleRecord captures what happened in a single steward cycle.
type CycleRecord struct {
	Time        time.Time `json:"time"`
	Action      string    `json:"action"`
	Reason      string    `json:"reason,omitempty"`
	Hexes       int       `json:"hexes"`
	Land        int       `json:"land"`
	Fingerprint uint64    `json:"fingerprint"`
	SnapshotID  string    `json:"snapshot_id,omitempty"`
}

// CycleMemory manages a ring of recent steward cycle records.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`

	path string
}

// LoadMemory reads the memory file from disk. Returns empty memory if not found.
func LoadMemory(path string) *CycleMemory {
	data, err := os.ReadFile(path)
	if err != nil {
		return &CycleMemory{path: path}
	}
	var mem CycleMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("steward memory corrupted, starting fresh", "error", err)
		return &CycleMemory{path: path}
	}
	mem.path = path
	return &mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal steward memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		slog.Error("failed to write steward memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// LastSnapshot returns the most recent record whose cycle took a snapshot.
func (m *CycleMemory) LastSnapshot() (CycleRecord, bool) {
	for i := len(m.Records) - 1; i >= 0; i-- {
		if m.Records[i].Action == ActionSnapshot {
			return m.Records[i], true
		}
	}
	return CycleRecord{}, false
}

// CyclesSinceSnapshot counts the records after the last snapshot.
func (m *CycleMemory) CyclesSinceSnapshot() int {
	for i := len(m.Records) - 1; i >= 0; i-- {
		if m.Records[i].Action == ActionSnapshot {
			return len(m.Records) - 1 - i
		}
	}
	return len(m.Records)
}
