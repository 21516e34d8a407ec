package compliance

import "math"

// hardSegmentFTPFraction is the target-midpoint threshold (as a fraction of
// FTP) above which a non-work segment still counts as hard for the rollup.
const hardSegmentFTPFraction = 0.85

// Compute aggregates aligned samples per planned segment into compliance
// percentages, grades, and rollups. Segment-level data problems surface as
// warning flags, never as errors; the returned flags merge into the analysis
// quality report.
func Compute(path *AlignmentPath, actual *ValidatedStream, segments []WorkoutSegment, ftpWatts float64) (*OverallComplianceResult, []string) {
	type segAgg struct {
		sum        float64
		count      int
		lastActual int
	}
	aggs := make([]segAgg, len(segments))
	for i := range aggs {
		aggs[i].lastActual = -1
	}

	// Planned timeline index -> owning segment, via cumulative duration bounds.
	bounds := make([]int, len(segments)+1)
	for i, seg := range segments {
		bounds[i+1] = bounds[i] + seg.PlannedDurationSeconds
	}

	cursor := 0
	for _, e := range path.Edges {
		for cursor+1 < len(segments) && e.PlannedIndex >= bounds[cursor+1] {
			cursor++
		}
		agg := &aggs[cursor]
		// A sample that decided several consecutive planned points in the same
		// segment counts once for that segment.
		if agg.lastActual == e.ActualIndex {
			continue
		}
		agg.lastActual = e.ActualIndex
		agg.sum += actual.Powers[e.ActualIndex]
		agg.count++
	}

	var flags []string
	results := make([]SegmentComplianceResult, len(segments))
	for i, seg := range segments {
		res := SegmentComplianceResult{
			SegmentIndex:    seg.SegmentIndex,
			Kind:            seg.Kind,
			TargetLowWatts:  seg.TargetLowWatts,
			TargetHighWatts: seg.TargetHighWatts,
		}
		agg := aggs[i]
		if agg.count == 0 {
			flags = append(flags, FlagSegmentWithoutSamples)
			results[i] = res
			continue
		}

		res.HasData = true
		res.AlignedSampleCount = agg.count
		res.ActualAvgPowerWatts = agg.sum / float64(agg.count)

		mid := seg.TargetMidpointWatts()
		var pct float64
		switch {
		case mid > 0:
			pct = math.Round(res.ActualAvgPowerWatts / mid * 100)
		case res.ActualAvgPowerWatts == 0:
			pct = 100
			flags = append(flags, FlagZeroTargetBand)
		default:
			pct = 0
			flags = append(flags, FlagZeroTargetBand)
		}
		res.CompliancePct = &pct
		res.Grade = gradeFor(pct)
		if pct > 110 {
			flags = append(flags, FlagAboveTarget)
		}
		results[i] = res
	}

	out := &OverallComplianceResult{Segments: results}
	out.OverallCompliancePct = weightedCompliance(results, segments, func(WorkoutSegment) bool { return true })
	out.WorkCompliancePct = weightedCompliance(results, segments, func(s WorkoutSegment) bool { return s.Kind == SegmentWork })
	out.RecoveryCompliancePct = weightedCompliance(results, segments, func(s WorkoutSegment) bool { return s.Kind == SegmentRecovery })
	out.HardSegmentsAvgCompliancePct = hardSegmentsAvg(results, segments, ftpWatts)
	return out, flags
}

// gradeFor maps a rounded compliance percentage to a letter grade. Values
// above 110 stay an A; the above-target warning flag carries the nuance.
func gradeFor(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}

// weightedCompliance is the aligned-sample-count weighted average over
// segments with data that match the filter. Zero when nothing matches.
func weightedCompliance(results []SegmentComplianceResult, segments []WorkoutSegment, match func(WorkoutSegment) bool) float64 {
	sum := 0.0
	weight := 0.0
	for i, res := range results {
		if !res.HasData || res.CompliancePct == nil || !match(segments[i]) {
			continue
		}
		w := float64(res.AlignedSampleCount)
		sum += *res.CompliancePct * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return roundTo(sum/weight, 1)
}

// hardSegmentsAvg is the unweighted average over work segments plus any
// segment whose target midpoint exceeds hardSegmentFTPFraction of FTP.
func hardSegmentsAvg(results []SegmentComplianceResult, segments []WorkoutSegment, ftpWatts float64) float64 {
	sum := 0.0
	count := 0
	for i, res := range results {
		if !res.HasData || res.CompliancePct == nil {
			continue
		}
		seg := segments[i]
		if seg.Kind != SegmentWork && seg.TargetMidpointWatts() <= hardSegmentFTPFraction*ftpWatts {
			continue
		}
		sum += *res.CompliancePct
		count++
	}
	if count == 0 {
		return 0
	}
	return roundTo(sum/float64(count), 1)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
