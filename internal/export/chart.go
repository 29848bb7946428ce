package export

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

// WriteChart renders the dataset as a PNG time series, one line per
// account+county combination. Chart failures are the caller's problem to
// downgrade; this function just reports them.
func WriteChart(path string, dataset types.Dataset) error {
	if len(dataset) == 0 {
		return fmt.Errorf("no records to chart")
	}

	grouped := make(map[string][]types.MetricRecord)
	for _, r := range dataset {
		key := r.AccountID + " - " + r.County
		grouped[key] = append(grouped[key], r)
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := make([]chart.Series, 0, len(keys))
	for _, key := range keys {
		recs := grouped[key]
		sort.Slice(recs, func(i, j int) bool { return recs[i].Timestamp.Before(recs[j].Timestamp) })

		xs := make([]time.Time, len(recs))
		ys := make([]float64, len(recs))
		for i, r := range recs {
			xs[i] = r.Timestamp
			ys[i] = r.Value
		}

		series = append(series, chart.TimeSeries{
			Name:    key,
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  "MVL Completeness Metrics Over Time (by Account + County)",
		Width:  1600,
		Height: 800,
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeHourValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Avg MVL Metric",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file %s: %w", path, err)
	}

	if err := graph.Render(chart.PNG, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render chart: %w", err)
	}

	return f.Close()
}
