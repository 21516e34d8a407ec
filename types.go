package compliance

import "fmt"

// SegmentKind classifies one planned phase of a workout.
type SegmentKind string

const (
	SegmentWarmup   SegmentKind = "warmup"
	SegmentWork     SegmentKind = "work"
	SegmentRecovery SegmentKind = "recovery"
	SegmentCooldown SegmentKind = "cooldown"
)

// ParseSegmentKind maps a free-form kind string to the closed segment kind set.
func ParseSegmentKind(s string) (SegmentKind, error) {
	switch SegmentKind(s) {
	case SegmentWarmup, SegmentWork, SegmentRecovery, SegmentCooldown:
		return SegmentKind(s), nil
	}
	return "", fmt.Errorf("unknown segment kind %q", s)
}

// PowerSample is one recorded power reading. A NaN PowerWatts marks a missing
// reading, which is distinct from a legitimate zero.
type PowerSample struct {
	TimeOffsetSeconds float64 `json:"time_offset_seconds"`
	PowerWatts        float64 `json:"power_watts"`
}

// PlannedWorkout is the declarative planned workout as supplied by the
// workout-structure provider. Steps may nest repeat blocks.
type PlannedWorkout struct {
	Segments []PlannedStep `json:"segments"`
}

// PlannedStep is either a concrete planned segment or a repeat block.
// When Repeat is non-nil the remaining fields are ignored.
type PlannedStep struct {
	Kind            string       `json:"kind,omitempty"`
	DurationSeconds int          `json:"duration_seconds,omitempty"`
	PowerLowPct     float64      `json:"power_low_pct,omitempty"`
	PowerHighPct    float64      `json:"power_high_pct,omitempty"`
	Repeat          *RepeatBlock `json:"repeat,omitempty"`
}

// RepeatBlock repeats an inner step group Count times.
type RepeatBlock struct {
	Count int           `json:"count"`
	Steps []PlannedStep `json:"steps"`
}

// TotalPlannedSeconds sums planned durations across all steps, unrolling
// repeats. Non-positive durations and counts contribute nothing; structural
// validation happens in Expand.
func (p PlannedWorkout) TotalPlannedSeconds() int {
	return stepsTotalSeconds(p.Segments)
}

func stepsTotalSeconds(steps []PlannedStep) int {
	total := 0
	for _, st := range steps {
		if st.Repeat != nil {
			if st.Repeat.Count > 0 {
				total += st.Repeat.Count * stepsTotalSeconds(st.Repeat.Steps)
			}
			continue
		}
		if st.DurationSeconds > 0 {
			total += st.DurationSeconds
		}
	}
	return total
}

// WorkoutSegment is one concrete post-expansion segment with absolute target
// power bands in watts.
type WorkoutSegment struct {
	SegmentIndex           int         `json:"segment_index"`
	Kind                   SegmentKind `json:"kind"`
	PlannedDurationSeconds int         `json:"planned_duration_seconds"`
	TargetLowWatts         float64     `json:"target_power_low_watts"`
	TargetHighWatts        float64     `json:"target_power_high_watts"`
	RepeatGroupID          *int        `json:"repeat_group_id,omitempty"`
}

// TargetMidpointWatts returns the center of the segment's target band.
func (s WorkoutSegment) TargetMidpointWatts() float64 {
	return (s.TargetLowWatts + s.TargetHighWatts) / 2
}

// ValidatedStream is an immutable, structure-checked power stream resampled to
// one value per second.
type ValidatedStream struct {
	// Powers holds one power reading per second, previous-value held where the
	// source stream was sparse or carried missing readings.
	Powers []float64
	// RawSampleCount is the sample count of the source stream before resampling.
	RawSampleCount int
}

// Len returns the resampled sample count.
func (v *ValidatedStream) Len() int { return len(v.Powers) }

// AlignmentEdge pairs one actual sample index with one planned timeline index.
type AlignmentEdge struct {
	ActualIndex  int
	PlannedIndex int
}

// AlignmentPath is the ordered monotonic correspondence produced by the DTW
// backtrace. Both indices are non-decreasing edge to edge and every index on
// both axes appears at least once.
type AlignmentPath struct {
	Edges     []AlignmentEdge
	TotalCost float64
}

// AnalysisInput bundles everything one analysis call consumes.
type AnalysisInput struct {
	FTPWatts       float64        `json:"ftp_watts"`
	PlannedWorkout PlannedWorkout `json:"planned_workout"`
	PowerStream    []PowerSample  `json:"power_stream"`
}

// SegmentComplianceResult reports execution quality for one planned segment.
// CompliancePct is nil when no actual samples aligned to the segment.
type SegmentComplianceResult struct {
	SegmentIndex        int         `json:"segment_index"`
	Kind                SegmentKind `json:"kind"`
	TargetLowWatts      float64     `json:"target_low_watts"`
	TargetHighWatts     float64     `json:"target_high_watts"`
	ActualAvgPowerWatts float64     `json:"actual_avg_power_watts"`
	CompliancePct       *float64    `json:"compliance_pct"`
	Grade               string      `json:"grade,omitempty"`
	AlignedSampleCount  int         `json:"aligned_sample_count"`
	HasData             bool        `json:"has_data"`
}

// OverallComplianceResult is the full analysis output.
type OverallComplianceResult struct {
	OverallCompliancePct         float64                   `json:"overall_compliance_pct"`
	WorkCompliancePct            float64                   `json:"work_compliance_pct"`
	RecoveryCompliancePct        float64                   `json:"recovery_compliance_pct"`
	HardSegmentsAvgCompliancePct float64                   `json:"hard_segments_avg_compliance_pct"`
	Segments                     []SegmentComplianceResult `json:"segments"`
	DataQuality                  DataQualityReport         `json:"data_quality"`
}

// DataQualityReport summarizes problems found in the raw stream plus warnings
// raised during expansion and compliance scoring.
type DataQualityReport struct {
	TotalSamples       int      `json:"total_samples"`
	MissingSampleCount int      `json:"missing_sample_count"`
	ZeroPowerRunCount  int      `json:"zero_power_run_count"`
	MaxGapSeconds      float64  `json:"max_gap_seconds"`
	QualityFlags       []string `json:"quality_flags"`
}

// Quality flag values carried in DataQualityReport.QualityFlags.
const (
	FlagLongGapDetected       = "long_gap_detected"
	FlagHighZeroPowerRatio    = "high_zero_power_ratio"
	FlagLowSampleDensity      = "low_sample_density"
	FlagInvertedTargetBand    = "inverted_target_band"
	FlagSegmentWithoutSamples = "segment_without_samples"
	FlagAboveTarget           = "above_target"
	FlagZeroTargetBand        = "zero_target_band"
)
