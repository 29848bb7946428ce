package collector

import (
	"time"

	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

// Windows returns count contiguous windows of the given width covering the
// period ending at now. Index 0 is the most recent window; window i covers
// [now - (i+1)*width, now - i*width], so windows[i].End == windows[i-1].Start.
func Windows(now time.Time, count int, width time.Duration) []types.TimeWindow {
	if count <= 0 || width <= 0 {
		return nil
	}

	windows := make([]types.TimeWindow, 0, count)
	for i := 0; i < count; i++ {
		end := now.Add(-time.Duration(i) * width)
		windows = append(windows, types.TimeWindow{
			Start: end.Add(-width),
			End:   end,
		})
	}
	return windows
}
