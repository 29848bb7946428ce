package export_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elephant-xyz/mvl-monitoring/internal/export"
	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	ts := func(h int) time.Time {
		return time.Date(2025, 11, 3, h, 0, 0, 0, time.UTC)
	}

	t.Run("writes sorted long-format rows", func(t *testing.T) {
		dataset := types.Dataset{
			{AccountID: "222222222222", County: "Harris", Timestamp: ts(11), Value: 0.87},
			{AccountID: "111111111111", County: "Travis", Timestamp: ts(12), Value: 0.95},
			{AccountID: "111111111111", County: "Travis", Timestamp: ts(11), Value: 0.9},
			{AccountID: "111111111111", County: "Bexar", Timestamp: ts(11), Value: 0.5},
		}

		path := filepath.Join(t.TempDir(), "metrics.csv")
		require.NoError(t, export.WriteCSV(path, dataset))

		rows := readCSV(t, path)
		require.Len(t, rows, 5)

		assert.Equal(t, []string{"account_id", "county", "timestamp", "avg_mvl_metric"}, rows[0])

		// Sorted by account, county, then timestamp.
		assert.Equal(t, []string{"111111111111", "Bexar", "2025-11-03T11:00:00Z", "0.5000"}, rows[1])
		assert.Equal(t, []string{"111111111111", "Travis", "2025-11-03T11:00:00Z", "0.9000"}, rows[2])
		assert.Equal(t, []string{"111111111111", "Travis", "2025-11-03T12:00:00Z", "0.9500"}, rows[3])
		assert.Equal(t, []string{"222222222222", "Harris", "2025-11-03T11:00:00Z", "0.8700"}, rows[4])
	})

	t.Run("empty dataset writes header only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, export.WriteCSV(path, nil))

		rows := readCSV(t, path)
		require.Len(t, rows, 1)
	})

	t.Run("does not mutate the caller's dataset", func(t *testing.T) {
		dataset := types.Dataset{
			{AccountID: "2", County: "B", Timestamp: ts(11), Value: 0.2},
			{AccountID: "1", County: "A", Timestamp: ts(11), Value: 0.1},
		}

		path := filepath.Join(t.TempDir(), "metrics.csv")
		require.NoError(t, export.WriteCSV(path, dataset))

		assert.Equal(t, "2", dataset[0].AccountID)
	})
}

func TestWriteChart(t *testing.T) {
	t.Run("rejects empty datasets", func(t *testing.T) {
		err := export.WriteChart(filepath.Join(t.TempDir(), "chart.png"), nil)
		assert.Error(t, err)
	})

	t.Run("renders a PNG for a populated dataset", func(t *testing.T) {
		ts := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
		dataset := types.Dataset{
			{AccountID: "111111111111", County: "Travis", Timestamp: ts.Add(-time.Hour), Value: 0.9},
			{AccountID: "111111111111", County: "Travis", Timestamp: ts, Value: 0.95},
			{AccountID: "222222222222", County: "Harris", Timestamp: ts.Add(-time.Hour), Value: 0.8},
			{AccountID: "222222222222", County: "Harris", Timestamp: ts, Value: 0.87},
		}

		path := filepath.Join(t.TempDir(), "chart.png")
		require.NoError(t, export.WriteChart(path, dataset))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}
