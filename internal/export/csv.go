package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

// csvHeader is the long-format header consumed by the downstream notebook
var csvHeader = []string{"account_id", "county", "timestamp", "avg_mvl_metric"}

// WriteCSV writes the dataset in long format, one row per (account, county,
// window), sorted by account, county, then timestamp. Values are formatted
// to four decimal places.
func WriteCSV(path string, dataset types.Dataset) error {
	rows := make(types.Dataset, len(dataset))
	copy(rows, dataset)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AccountID != rows[j].AccountID {
			return rows[i].AccountID < rows[j].AccountID
		}
		if rows[i].County != rows[j].County {
			return rows[i].County < rows[j].County
		}
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.AccountID,
			r.County,
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(r.Value, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			_ = f.Close()
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}

	return f.Close()
}
