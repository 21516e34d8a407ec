package compliance

import (
	"fmt"
	"math"
)

// Expand flattens a possibly repeat-structured planned workout into a linear
// sequence of concrete segments with absolute target bands in watts.
//
// Repeat blocks are unrolled into physically distinct segments sharing a
// repeat group id. Target percentages convert as round(pct/100*ftp). Inverted
// source bands (low > high) are swapped and reported through the returned
// warning flags rather than failing the expansion.
func Expand(plan PlannedWorkout, ftpWatts float64) ([]WorkoutSegment, []string, error) {
	if ftpWatts <= 0 || math.IsNaN(ftpWatts) || math.IsInf(ftpWatts, 0) {
		return nil, nil, &InvalidWorkoutStructureError{Reason: "ftp_watts must be a positive number"}
	}
	if len(plan.Segments) == 0 {
		return nil, nil, &InvalidWorkoutStructureError{Reason: "planned workout has no segments"}
	}

	ex := expander{ftp: ftpWatts}
	if err := ex.walk(plan.Segments, nil); err != nil {
		return nil, nil, err
	}
	if len(ex.segments) == 0 {
		return nil, nil, &InvalidWorkoutStructureError{Reason: "planned workout expands to zero segments"}
	}

	total := 0
	for _, seg := range ex.segments {
		total += seg.PlannedDurationSeconds
	}
	if total == 0 {
		return nil, nil, &InvalidWorkoutStructureError{Reason: "total planned duration is zero"}
	}

	return ex.segments, ex.flags, nil
}

type expander struct {
	ftp      float64
	segments []WorkoutSegment
	flags    []string
	groupSeq int
}

func (ex *expander) walk(steps []PlannedStep, group *int) error {
	for _, st := range steps {
		if st.Repeat != nil {
			if st.Repeat.Count <= 0 {
				return &InvalidWorkoutStructureError{Reason: fmt.Sprintf("repeat count must be positive, got %d", st.Repeat.Count)}
			}
			if len(st.Repeat.Steps) == 0 {
				return &InvalidWorkoutStructureError{Reason: "repeat block has no inner steps"}
			}
			gid := ex.groupSeq
			ex.groupSeq++
			for rep := 0; rep < st.Repeat.Count; rep++ {
				if err := ex.walk(st.Repeat.Steps, &gid); err != nil {
					return err
				}
			}
			continue
		}
		if err := ex.appendSegment(st, group); err != nil {
			return err
		}
	}
	return nil
}

func (ex *expander) appendSegment(st PlannedStep, group *int) error {
	kind, err := ParseSegmentKind(st.Kind)
	if err != nil {
		return &InvalidWorkoutStructureError{Reason: err.Error()}
	}
	if st.DurationSeconds <= 0 {
		return &InvalidWorkoutStructureError{Reason: fmt.Sprintf("segment duration must be positive, got %d", st.DurationSeconds)}
	}
	if st.PowerLowPct < 0 || st.PowerHighPct < 0 {
		return &InvalidWorkoutStructureError{Reason: "target power percentage must be non-negative"}
	}

	low := math.Round(st.PowerLowPct / 100 * ex.ftp)
	high := math.Round(st.PowerHighPct / 100 * ex.ftp)
	if low > high {
		low, high = high, low
		ex.flags = append(ex.flags, FlagInvertedTargetBand)
	}

	seg := WorkoutSegment{
		SegmentIndex:           len(ex.segments),
		Kind:                   kind,
		PlannedDurationSeconds: st.DurationSeconds,
		TargetLowWatts:         low,
		TargetHighWatts:        high,
	}
	if group != nil {
		g := *group
		seg.RepeatGroupID = &g
	}
	ex.segments = append(ex.segments, seg)
	return nil
}
