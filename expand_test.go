package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandFlatPlan(t *testing.T) {
	plan := PlannedWorkout{Segments: []PlannedStep{
		{Kind: "warmup", DurationSeconds: 600, PowerLowPct: 50, PowerHighPct: 65},
		{Kind: "work", DurationSeconds: 600, PowerLowPct: 90, PowerHighPct: 100},
		{Kind: "cooldown", DurationSeconds: 600, PowerLowPct: 40, PowerHighPct: 55},
	}}

	segments, flags, err := Expand(plan, 250)
	require.NoError(t, err)
	assert.Empty(t, flags)
	require.Len(t, segments, 3)

	assert.Equal(t, 0, segments[0].SegmentIndex)
	assert.Equal(t, SegmentWarmup, segments[0].Kind)
	assert.Equal(t, 125.0, segments[0].TargetLowWatts)
	assert.Equal(t, 163.0, segments[0].TargetHighWatts) // round(162.5)
	assert.Nil(t, segments[0].RepeatGroupID)

	assert.Equal(t, SegmentWork, segments[1].Kind)
	assert.Equal(t, 225.0, segments[1].TargetLowWatts)
	assert.Equal(t, 250.0, segments[1].TargetHighWatts)

	total := 0
	for _, seg := range segments {
		total += seg.PlannedDurationSeconds
	}
	assert.Equal(t, plan.TotalPlannedSeconds(), total)
}

func TestExpandUnrollsRepeats(t *testing.T) {
	plan := PlannedWorkout{Segments: []PlannedStep{
		{Kind: "warmup", DurationSeconds: 300, PowerLowPct: 50, PowerHighPct: 60},
		{Repeat: &RepeatBlock{Count: 3, Steps: []PlannedStep{
			{Kind: "work", DurationSeconds: 240, PowerLowPct: 95, PowerHighPct: 105},
			{Kind: "recovery", DurationSeconds: 120, PowerLowPct: 45, PowerHighPct: 55},
		}}},
		{Kind: "cooldown", DurationSeconds: 300, PowerLowPct: 40, PowerHighPct: 50},
	}}

	segments, flags, err := Expand(plan, 200)
	require.NoError(t, err)
	assert.Empty(t, flags)
	require.Len(t, segments, 8)

	// Segment indices are contiguous insertion order.
	for i, seg := range segments {
		assert.Equal(t, i, seg.SegmentIndex)
	}

	// The six unrolled segments share one repeat group id; bookends have none.
	assert.Nil(t, segments[0].RepeatGroupID)
	assert.Nil(t, segments[7].RepeatGroupID)
	for i := 1; i <= 6; i++ {
		require.NotNil(t, segments[i].RepeatGroupID, "segment %d", i)
		assert.Equal(t, 0, *segments[i].RepeatGroupID)
	}

	assert.Equal(t, SegmentWork, segments[1].Kind)
	assert.Equal(t, SegmentRecovery, segments[2].Kind)
	assert.Equal(t, SegmentWork, segments[3].Kind)
	assert.Equal(t, 1920, plan.TotalPlannedSeconds())
}

func TestExpandSwapsInvertedBands(t *testing.T) {
	plan := PlannedWorkout{Segments: []PlannedStep{
		{Kind: "work", DurationSeconds: 300, PowerLowPct: 100, PowerHighPct: 90},
	}}

	segments, flags, err := Expand(plan, 250)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 225.0, segments[0].TargetLowWatts)
	assert.Equal(t, 250.0, segments[0].TargetHighWatts)
	assert.Contains(t, flags, FlagInvertedTargetBand)
}

func TestExpandStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		plan PlannedWorkout
		ftp  float64
	}{
		{
			name: "empty plan",
			plan: PlannedWorkout{},
			ftp:  250,
		},
		{
			name: "zero duration segment",
			plan: PlannedWorkout{Segments: []PlannedStep{{Kind: "work", DurationSeconds: 0, PowerLowPct: 90, PowerHighPct: 100}}},
			ftp:  250,
		},
		{
			name: "negative duration segment",
			plan: PlannedWorkout{Segments: []PlannedStep{{Kind: "work", DurationSeconds: -5, PowerLowPct: 90, PowerHighPct: 100}}},
			ftp:  250,
		},
		{
			name: "unknown kind",
			plan: PlannedWorkout{Segments: []PlannedStep{{Kind: "sprint", DurationSeconds: 60, PowerLowPct: 90, PowerHighPct: 100}}},
			ftp:  250,
		},
		{
			name: "non-positive repeat count",
			plan: PlannedWorkout{Segments: []PlannedStep{{Repeat: &RepeatBlock{Count: 0, Steps: []PlannedStep{{Kind: "work", DurationSeconds: 60, PowerLowPct: 90, PowerHighPct: 100}}}}}},
			ftp:  250,
		},
		{
			name: "non-positive ftp",
			plan: PlannedWorkout{Segments: []PlannedStep{{Kind: "work", DurationSeconds: 60, PowerLowPct: 90, PowerHighPct: 100}}},
			ftp:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Expand(tt.plan, tt.ftp)
			var invalid *InvalidWorkoutStructureError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestExpandNestedRepeats(t *testing.T) {
	plan := PlannedWorkout{Segments: []PlannedStep{
		{Repeat: &RepeatBlock{Count: 2, Steps: []PlannedStep{
			{Kind: "work", DurationSeconds: 60, PowerLowPct: 95, PowerHighPct: 105},
			{Repeat: &RepeatBlock{Count: 2, Steps: []PlannedStep{
				{Kind: "recovery", DurationSeconds: 30, PowerLowPct: 40, PowerHighPct: 50},
			}}},
		}}},
	}}

	segments, _, err := Expand(plan, 200)
	require.NoError(t, err)
	require.Len(t, segments, 6)
	assert.Equal(t, 240, plan.TotalPlannedSeconds())

	// Inner recovery repeats keep their own group, distinct from the outer one.
	require.NotNil(t, segments[0].RepeatGroupID)
	require.NotNil(t, segments[1].RepeatGroupID)
	assert.NotEqual(t, *segments[0].RepeatGroupID, *segments[1].RepeatGroupID)
}
