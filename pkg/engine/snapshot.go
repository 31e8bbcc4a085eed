package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const DefaultSnapshotPath = ".aws-analyzer-snapshot.json"

// Snapshot is a saved scan used as a baseline for drift comparison.
type Snapshot struct {
	TakenAt time.Time    `json:"taken_at"`
	Region  string       `json:"region,omitempty"`
	Results []ScanResult `json:"results"`
}

// SnapshotDiff classifies current results against a baseline.
type SnapshotDiff struct {
	New       []ScanResult `json:"new"`
	Fixed     []ScanResult `json:"fixed"`
	Unchanged []ScanResult `json:"unchanged"`
}

// SaveSnapshot writes the snapshot as indented JSON.
func SaveSnapshot(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

// CompareSnapshot keys results on (resource id, finding) and reports what
// appeared, what disappeared and what stayed.
func CompareSnapshot(current, baseline []ScanResult) SnapshotDiff {
	base := make(map[string]struct{}, len(baseline))
	for _, r := range baseline {
		base[r.Key()] = struct{}{}
	}
	cur := make(map[string]struct{}, len(current))

	diff := SnapshotDiff{
		New:       []ScanResult{},
		Fixed:     []ScanResult{},
		Unchanged: []ScanResult{},
	}
	for _, r := range current {
		key := r.Key()
		if _, dup := cur[key]; dup {
			continue
		}
		cur[key] = struct{}{}
		if _, ok := base[key]; ok {
			diff.Unchanged = append(diff.Unchanged, r)
		} else {
			diff.New = append(diff.New, r)
		}
	}
	for _, r := range baseline {
		if _, ok := cur[r.Key()]; !ok {
			diff.Fixed = append(diff.Fixed, r)
		}
	}
	return diff
}
