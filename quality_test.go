package compliance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportCountsMissingSamples(t *testing.T) {
	stream := steadyStream(100, 150)
	stream[10].PowerWatts = math.NaN()
	stream[50].PowerWatts = math.NaN()

	report := Report(stream, DefaultConfig())
	assert.Equal(t, 100, report.TotalSamples)
	assert.Equal(t, 2, report.MissingSampleCount)
}

func TestReportZeroPowerRuns(t *testing.T) {
	tests := []struct {
		name     string
		zeros    [][2]int // [start, length) runs to zero out
		wantRuns int
	}{
		{name: "no zeros", zeros: nil, wantRuns: 0},
		{name: "short freewheel ignored", zeros: [][2]int{{10, 3}}, wantRuns: 0},
		{name: "sustained run counted", zeros: [][2]int{{10, 4}}, wantRuns: 1},
		{name: "two separate runs", zeros: [][2]int{{10, 5}, {40, 8}}, wantRuns: 2},
		{name: "run at stream end", zeros: [][2]int{{95, 5}}, wantRuns: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := steadyStream(100, 150)
			for _, z := range tt.zeros {
				for i := z[0]; i < z[0]+z[1]; i++ {
					stream[i].PowerWatts = 0
				}
			}
			report := Report(stream, DefaultConfig())
			assert.Equal(t, tt.wantRuns, report.ZeroPowerRunCount)
		})
	}
}

func TestReportMissingReadingBreaksZeroRun(t *testing.T) {
	stream := steadyStream(100, 150)
	// Two 3-sample zero runs split by a missing reading: neither is sustained.
	for i := 10; i < 17; i++ {
		stream[i].PowerWatts = 0
	}
	stream[13].PowerWatts = math.NaN()

	report := Report(stream, DefaultConfig())
	assert.Equal(t, 0, report.ZeroPowerRunCount)
}

func TestReportGapAndDensityFlags(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("long gap", func(t *testing.T) {
		stream := steadyStream(100, 150)
		for i := 50; i < 100; i++ {
			stream[i].TimeOffsetSeconds += 15
		}
		report := Report(stream, cfg)
		assert.Equal(t, 16.0, report.MaxGapSeconds)
		assert.Contains(t, report.QualityFlags, FlagLongGapDetected)
	})

	t.Run("low sample density", func(t *testing.T) {
		stream := make([]PowerSample, 100)
		for i := range stream {
			stream[i] = PowerSample{TimeOffsetSeconds: float64(i * 3), PowerWatts: 150}
		}
		report := Report(stream, cfg)
		assert.Contains(t, report.QualityFlags, FlagLowSampleDensity)
	})

	t.Run("high zero power ratio", func(t *testing.T) {
		stream := steadyStream(100, 150)
		for i := 0; i < 15; i++ {
			stream[i].PowerWatts = 0
		}
		report := Report(stream, cfg)
		assert.Contains(t, report.QualityFlags, FlagHighZeroPowerRatio)
	})

	t.Run("clean stream has no flags", func(t *testing.T) {
		report := Report(steadyStream(100, 150), cfg)
		assert.Empty(t, report.QualityFlags)
		assert.NotNil(t, report.QualityFlags)
	})
}

func TestReportEmptyStream(t *testing.T) {
	report := Report(nil, DefaultConfig())
	assert.Zero(t, report.TotalSamples)
	assert.Empty(t, report.QualityFlags)
	assert.NotNil(t, report.QualityFlags)
}
