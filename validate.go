package compliance

import (
	"math"
)

// Validate checks the structural invariants of a raw power stream and returns
// a 1 Hz-normalized immutable copy. The input slice is never mutated.
//
// A stream shorter than cfg.MinSamples fails with *InsufficientDataError.
// Non-monotonic or duplicate time offsets and negative power readings fail
// with *CorruptedStreamError. NaN power marks a missing reading and is legal.
func Validate(stream []PowerSample, cfg Config) (*ValidatedStream, error) {
	if len(stream) < cfg.MinSamples {
		return nil, &InsufficientDataError{SampleCount: len(stream), MinSamples: cfg.MinSamples}
	}

	prev := math.Inf(-1)
	for i, s := range stream {
		if math.IsNaN(s.TimeOffsetSeconds) || math.IsInf(s.TimeOffsetSeconds, 0) {
			return nil, &CorruptedStreamError{Index: i, Reason: "non-finite time offset"}
		}
		if s.TimeOffsetSeconds == prev {
			return nil, &CorruptedStreamError{Index: i, Reason: "duplicate time offset"}
		}
		if s.TimeOffsetSeconds < prev {
			return nil, &CorruptedStreamError{Index: i, Reason: "non-monotonic time offset"}
		}
		if !math.IsNaN(s.PowerWatts) && s.PowerWatts < 0 {
			return nil, &CorruptedStreamError{Index: i, Reason: "negative power"}
		}
		prev = s.TimeOffsetSeconds
	}

	return &ValidatedStream{
		Powers:         resampleOneHz(stream),
		RawSampleCount: len(stream),
	}, nil
}

// resampleOneHz produces one power value per whole second across the offset
// span using previous-value hold. Missing (NaN) readings carry the last finite
// value forward; a leading run of missing readings resolves to zero.
func resampleOneHz(stream []PowerSample) []float64 {
	first := stream[0].TimeOffsetSeconds
	last := stream[len(stream)-1].TimeOffsetSeconds
	n := int(math.Floor(last-first)) + 1

	out := make([]float64, n)
	held := 0.0
	idx := 0
	for s := 0; s < n; s++ {
		t := first + float64(s)
		for idx < len(stream) && stream[idx].TimeOffsetSeconds <= t {
			if !math.IsNaN(stream[idx].PowerWatts) {
				held = stream[idx].PowerWatts
			}
			idx++
		}
		out[s] = held
	}
	return out
}
