package compliance

import (
	"context"
	"math"
)

// dpCancelCheckRows is how often the DP loop polls the caller's context.
const dpCancelCheckRows = 64

// virtualPoint is one second of the planned timeline with its owning segment
// and target band. The timeline is ephemeral, rebuilt per Align call.
type virtualPoint struct {
	segment int
	lowW    float64
	highW   float64
}

func buildVirtualTimeline(segments []WorkoutSegment) []virtualPoint {
	total := 0
	for _, seg := range segments {
		total += seg.PlannedDurationSeconds
	}
	tl := make([]virtualPoint, 0, total)
	for _, seg := range segments {
		for s := 0; s < seg.PlannedDurationSeconds; s++ {
			tl = append(tl, virtualPoint{
				segment: seg.SegmentIndex,
				lowW:    seg.TargetLowWatts,
				highW:   seg.TargetHighWatts,
			})
		}
	}
	return tl
}

// localCost is the FTP-normalized distance from an actual power reading to the
// nearest edge of a planned target band. Zero inside the band.
func localCost(power float64, vp virtualPoint, ftpWatts float64) float64 {
	switch {
	case power < vp.lowW:
		return (vp.lowW - power) / ftpWatts
	case power > vp.highW:
		return (power - vp.highW) / ftpWatts
	default:
		return 0
	}
}

// bandRow holds the finite cells of one DP row. Cells outside [lo, lo+len)
// are treated as +Inf.
type bandRow struct {
	lo   int
	cost []float64
}

type dpMatrix struct {
	rows []bandRow
	m    int
}

func (d *dpMatrix) at(i, j int) float64 {
	if i < 0 || j < 0 || j >= d.m {
		return math.Inf(1)
	}
	row := d.rows[i]
	if j < row.lo || j >= row.lo+len(row.cost) {
		return math.Inf(1)
	}
	return row.cost[j-row.lo]
}

// Align computes the optimal-cost monotonic alignment between the validated
// actual stream and the per-second expansion of the planned segments. It is
// total on validated input; the only failure mode is caller cancellation,
// surfaced as *CancelledError.
//
// The DP search is bounded to a Sakoe-Chiba band around the length-scaled
// diagonal, keeping time and memory at O(n*r). The band is a performance
// bound, never widened below the length difference of the two sequences so a
// complete path always exists.
func Align(ctx context.Context, actual *ValidatedStream, segments []WorkoutSegment, ftpWatts float64, cfg Config) (*AlignmentPath, error) {
	tl := buildVirtualTimeline(segments)
	n := len(actual.Powers)
	m := len(tl)

	r := cfg.BandRadiusSeconds
	if fr := int(math.Round(cfg.BandRadiusFraction * float64(maxInt(n, m)))); fr > r {
		r = fr
	}
	if d := absInt(n - m); r < d {
		r = d
	}

	dp := &dpMatrix{rows: make([]bandRow, n), m: m}
	for i := 0; i < n; i++ {
		if i%dpCancelCheckRows == 0 {
			select {
			case <-ctx.Done():
				return nil, &CancelledError{Err: ctx.Err()}
			default:
			}
		}

		center := 0
		if n > 1 {
			center = int(math.Round(float64(i) * float64(m-1) / float64(n-1)))
		} else {
			// Degenerate single-row DP must still reach the final column.
			center = m - 1
		}
		lo := maxInt(0, center-r)
		hi := minInt(m-1, center+r)
		if n == 1 {
			lo, hi = 0, m-1
		}

		row := bandRow{lo: lo, cost: make([]float64, hi-lo+1)}
		for j := lo; j <= hi; j++ {
			lc := localCost(actual.Powers[i], tl[j], ftpWatts)
			if i == 0 && j == 0 {
				row.cost[0] = lc
				continue
			}
			best := dp.at(i-1, j-1)
			if c := dp.at(i-1, j); c < best {
				best = c
			}
			var left float64
			if j-1 >= lo {
				left = row.cost[j-1-lo]
			} else {
				left = dp.at(i, j-1) // outside current window: +Inf
			}
			if left < best {
				best = left
			}
			row.cost[j-lo] = lc + best
		}
		dp.rows[i] = row
	}

	return backtrace(dp, n, m), nil
}

// backtrace walks from (n-1, m-1) to (0, 0) following the minimum-cost
// predecessor at each step. Ties break in fixed order: diagonal first, then
// actual-advance, then planned-advance, so ambiguous pause time is always
// absorbed the same way.
func backtrace(dp *dpMatrix, n, m int) *AlignmentPath {
	buf := make([]AlignmentEdge, 0, n+m)
	i, j := n-1, m-1
	for {
		buf = append(buf, AlignmentEdge{ActualIndex: i, PlannedIndex: j})
		if i == 0 && j == 0 {
			break
		}

		pi, pj := i, j
		best := math.Inf(1)
		if c := dp.at(i-1, j-1); c < best {
			best = c
			pi, pj = i-1, j-1
		}
		if c := dp.at(i-1, j); c < best {
			best = c
			pi, pj = i-1, j
		}
		if c := dp.at(i, j-1); c < best {
			best = c
			pi, pj = i, j-1
		}
		if pi == i && pj == j {
			// No finite predecessor in the band; fall back to a hard step so
			// the walk always terminates at the origin.
			if j > 0 {
				pj = j - 1
			} else {
				pi = i - 1
			}
		}
		i, j = pi, pj
	}

	// Reverse into path order.
	for a, b := 0, len(buf)-1; a < b; a, b = a+1, b-1 {
		buf[a], buf[b] = buf[b], buf[a]
	}
	return &AlignmentPath{Edges: buf, TotalCost: dp.at(n-1, m-1)}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
