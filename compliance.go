// Package compliance aligns a planned, structured workout against a recorded
// power stream and scores segment-level and overall adherence.
//
// The engine is a pure, synchronous computation: no I/O, no shared state, no
// logging. Given identical inputs the output is bit-for-bit reproducible. The
// caller owns cancellation; the DP loop polls the supplied context and aborts
// cleanly with a *CancelledError.
package compliance

import (
	"context"
	"sort"
)

// Config carries every tunable of the engine. Values are explicit per call;
// nothing is read from ambient state.
type Config struct {
	// MinSamples is the minimum raw sample count for any meaningful alignment.
	MinSamples int
	// BandRadiusSeconds is the floor of the Sakoe-Chiba band radius.
	BandRadiusSeconds int
	// BandRadiusFraction scales the band radius with max(n, m).
	BandRadiusFraction float64
	// ZeroRunMinSamples is the zero-power run length above which a run counts
	// as a stoppage rather than transient freewheeling.
	ZeroRunMinSamples int
	// LongGapSeconds is the inter-sample gap that triggers long_gap_detected.
	LongGapSeconds float64
	// ZeroPowerRatioLimit is the zero-power sample ratio that triggers
	// high_zero_power_ratio.
	ZeroPowerRatioLimit float64
	// MaxSampleSpacingSeconds is the average spacing that triggers
	// low_sample_density.
	MaxSampleSpacingSeconds float64
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{
		MinSamples:              60,
		BandRadiusSeconds:       60,
		BandRadiusFraction:      0.25,
		ZeroRunMinSamples:       3,
		LongGapSeconds:          10,
		ZeroPowerRatioLimit:     0.10,
		MaxSampleSpacingSeconds: 2,
	}
}

// Analyze runs the full pipeline: validate the stream, expand the plan, align
// with DTW, score compliance, and attach the data-quality report. Each stage
// fails fast; within a successful run segment-level data problems become
// quality flags rather than errors.
func Analyze(ctx context.Context, input AnalysisInput, cfg Config) (*OverallComplianceResult, error) {
	validated, err := Validate(input.PowerStream, cfg)
	if err != nil {
		return nil, err
	}

	segments, expandFlags, err := Expand(input.PlannedWorkout, input.FTPWatts)
	if err != nil {
		return nil, err
	}

	path, err := Align(ctx, validated, segments, input.FTPWatts, cfg)
	if err != nil {
		return nil, err
	}

	result, computeFlags := Compute(path, validated, segments, input.FTPWatts)

	report := Report(input.PowerStream, cfg)
	report.QualityFlags = mergeFlags(report.QualityFlags, expandFlags, computeFlags)
	result.DataQuality = report
	return result, nil
}

// mergeFlags combines flag sets into one sorted, de-duplicated slice. Always
// non-nil so the JSON contract carries an empty array, not null.
func mergeFlags(sets ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, set := range sets {
		for _, f := range set {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
