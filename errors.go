package compliance

import "fmt"

// InsufficientDataError reports a stream too short for any meaningful
// alignment.
type InsufficientDataError struct {
	SampleCount int
	MinSamples  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d power samples, need at least %d", e.SampleCount, e.MinSamples)
}

// CorruptedStreamError reports a structural invariant violation in the power
// stream. Index is the offending sample position.
type CorruptedStreamError struct {
	Index  int
	Reason string
}

func (e *CorruptedStreamError) Error() string {
	return fmt.Sprintf("corrupted stream at sample %d: %s", e.Index, e.Reason)
}

// InvalidWorkoutStructureError reports a planned workout that cannot be
// expanded into a valid segment sequence.
type InvalidWorkoutStructureError struct {
	Reason string
}

func (e *InvalidWorkoutStructureError) Error() string {
	return fmt.Sprintf("invalid workout structure: %s", e.Reason)
}

// CancelledError reports a caller-requested abort mid-computation. It is a
// distinct terminal outcome rather than a data problem; no partial result
// accompanies it.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("analysis cancelled: %v", e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }
