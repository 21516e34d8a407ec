package compliance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func segment(index int, kind SegmentKind, duration int, low, high float64) WorkoutSegment {
	return WorkoutSegment{
		SegmentIndex:           index,
		Kind:                   kind,
		PlannedDurationSeconds: duration,
		TargetLowWatts:         low,
		TargetHighWatts:        high,
	}
}

func assertValidPath(t *testing.T, path *AlignmentPath, n, m int) {
	t.Helper()
	require.NotEmpty(t, path.Edges)

	first := path.Edges[0]
	last := path.Edges[len(path.Edges)-1]
	assert.Equal(t, AlignmentEdge{ActualIndex: 0, PlannedIndex: 0}, first)
	assert.Equal(t, AlignmentEdge{ActualIndex: n - 1, PlannedIndex: m - 1}, last)

	seenActual := make(map[int]bool, n)
	seenPlanned := make(map[int]bool, m)
	prev := AlignmentEdge{ActualIndex: -1, PlannedIndex: -1}
	for _, e := range path.Edges {
		assert.GreaterOrEqual(t, e.ActualIndex, prev.ActualIndex)
		assert.GreaterOrEqual(t, e.PlannedIndex, prev.PlannedIndex)
		seenActual[e.ActualIndex] = true
		seenPlanned[e.PlannedIndex] = true
		prev = e
	}
	assert.Len(t, seenActual, n, "every actual index covered")
	assert.Len(t, seenPlanned, m, "every planned index covered")
}

func TestAlignExactMatchIsDiagonal(t *testing.T) {
	segments := []WorkoutSegment{
		segment(0, SegmentWarmup, 120, 125, 163),
		segment(1, SegmentWork, 120, 225, 250),
	}
	powers := make([]float64, 240)
	for i := range powers {
		if i < 120 {
			powers[i] = 144
		} else {
			powers[i] = 237
		}
	}
	actual := &ValidatedStream{Powers: powers, RawSampleCount: 240}

	path, err := Align(context.Background(), actual, segments, 250, DefaultConfig())
	require.NoError(t, err)
	assertValidPath(t, path, 240, 240)
	assert.Equal(t, 0.0, path.TotalCost)
	assert.Len(t, path.Edges, 240, "in-band stream of equal length aligns one-to-one")
}

func TestAlignMonotonicityAndCoverageOnMismatchedLengths(t *testing.T) {
	segments := []WorkoutSegment{
		segment(0, SegmentWork, 200, 180, 200),
	}
	// Actual ran 60 seconds over the 200-second plan.
	powers := make([]float64, 260)
	for i := range powers {
		powers[i] = 190
	}
	actual := &ValidatedStream{Powers: powers, RawSampleCount: 260}

	path, err := Align(context.Background(), actual, segments, 250, DefaultConfig())
	require.NoError(t, err)
	assertValidPath(t, path, 260, 200)
}

func TestAlignDegenerateSizes(t *testing.T) {
	segments := []WorkoutSegment{segment(0, SegmentWork, 90, 200, 220)}

	t.Run("single actual sample", func(t *testing.T) {
		actual := &ValidatedStream{Powers: []float64{210}, RawSampleCount: 1}
		path, err := Align(context.Background(), actual, segments, 250, DefaultConfig())
		require.NoError(t, err)
		assertValidPath(t, path, 1, 90)
	})

	t.Run("single planned point", func(t *testing.T) {
		one := []WorkoutSegment{segment(0, SegmentWork, 1, 200, 220)}
		actual := &ValidatedStream{Powers: []float64{210, 215, 205}, RawSampleCount: 3}
		path, err := Align(context.Background(), actual, one, 250, DefaultConfig())
		require.NoError(t, err)
		assertValidPath(t, path, 3, 1)
	})
}

func TestAlignDeterministic(t *testing.T) {
	segments := []WorkoutSegment{
		segment(0, SegmentWarmup, 100, 120, 150),
		segment(1, SegmentWork, 100, 220, 240),
	}
	powers := make([]float64, 230)
	for i := range powers {
		switch {
		case i < 100:
			powers[i] = 135
		case i < 130:
			powers[i] = 0 // pause between segments
		default:
			powers[i] = 230
		}
	}
	actual := &ValidatedStream{Powers: powers, RawSampleCount: 230}

	first, err := Align(context.Background(), actual, segments, 250, DefaultConfig())
	require.NoError(t, err)
	second, err := Align(context.Background(), actual, segments, 250, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAlignCancellation(t *testing.T) {
	segments := []WorkoutSegment{segment(0, SegmentWork, 600, 200, 220)}
	actual := &ValidatedStream{Powers: make([]float64, 600), RawSampleCount: 600}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Align(ctx, actual, segments, 250, DefaultConfig())
	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalCost(t *testing.T) {
	vp := virtualPoint{lowW: 200, highW: 220}
	tests := []struct {
		name  string
		power float64
		want  float64
	}{
		{name: "inside band", power: 210, want: 0},
		{name: "at low edge", power: 200, want: 0},
		{name: "at high edge", power: 220, want: 0},
		{name: "below band", power: 150, want: 0.2},
		{name: "above band", power: 270, want: 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, localCost(tt.power, vp, 250), 1e-12)
		})
	}
}
