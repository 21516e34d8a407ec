// Package planfile loads planned workouts from disk. It understands the JSON
// analysis-input contract and Zwift workout (ZWO) XML files.
package planfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/workout-compliance"
)

// Document is a loaded plan plus whatever companion data the source file
// carried. FTPWatts and PowerStream are zero/nil when the format cannot
// express them.
type Document struct {
	Name        string
	FTPWatts    float64
	Plan        compliance.PlannedWorkout
	PowerStream []compliance.PowerSample
}

// Load reads a plan file, dispatching on the extension. ".json" is parsed as
// either a full analysis-input document or a bare planned workout; ".zwo" and
// ".xml" are parsed as ZWO.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(data)
	case ".zwo", ".xml":
		return loadZWO(data)
	default:
		return nil, fmt.Errorf("unsupported plan format %q", filepath.Ext(path))
	}
}

func loadJSON(data []byte) (*Document, error) {
	var input compliance.AnalysisInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse plan JSON: %w", err)
	}
	if len(input.PlannedWorkout.Segments) > 0 {
		return &Document{
			FTPWatts:    input.FTPWatts,
			Plan:        input.PlannedWorkout,
			PowerStream: input.PowerStream,
		}, nil
	}

	// Not the full document shape; retry as a bare planned workout.
	var plan compliance.PlannedWorkout
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan JSON: %w", err)
	}
	if len(plan.Segments) == 0 {
		return nil, fmt.Errorf("plan JSON has no segments")
	}
	return &Document{Plan: plan}, nil
}
