package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotOperations(t *testing.T) {
	baseline := []ScanResult{
		{ResourceID: "Asset1", Finding: "Finding 1", Severity: SeverityHigh}, // unchanged
		{ResourceID: "Asset2", Finding: "Finding 2", Severity: SeverityHigh}, // fixed
	}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	taken := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, SaveSnapshot(path, Snapshot{TakenAt: taken, Region: "us-east-1", Results: baseline}))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", loaded.Region)
	assert.True(t, taken.Equal(loaded.TakenAt))
	require.Len(t, loaded.Results, 2)

	current := []ScanResult{
		{ResourceID: "Asset1", Finding: "Finding 1", Severity: SeverityHigh},
		{ResourceID: "Asset3", Finding: "Finding 3", Severity: SeverityCritical}, // new
	}
	diff := CompareSnapshot(current, loaded.Results)

	require.Len(t, diff.Unchanged, 1)
	assert.Equal(t, "Asset1", diff.Unchanged[0].ResourceID)
	require.Len(t, diff.New, 1)
	assert.Equal(t, "Asset3", diff.New[0].ResourceID)
	require.Len(t, diff.Fixed, 1)
	assert.Equal(t, "Asset2", diff.Fixed[0].ResourceID)
}

func TestCompareSnapshotEmpty(t *testing.T) {
	diff := CompareSnapshot(nil, nil)
	assert.Empty(t, diff.New)
	assert.Empty(t, diff.Fixed)
	assert.Empty(t, diff.Unchanged)
	assert.NotNil(t, diff.New)
}

func TestLoadSnapshotErrors(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
