package pipeline

import (
	"github.com/lucasjlepore/workout-compliance"
)

// Options configures one compliance analysis run.
type Options struct {
	PlanPath   string
	StreamPath string
	OutDir     string
	FTPWatts   float64 // overrides any FTP carried by the plan document
	Format     string  // parquet|csv for the aligned-sample export
	Chart      bool
	Engine     *compliance.Config // nil means compliance.DefaultConfig
}

// Result returns generated output paths.
type Result struct {
	OutputDir          string  `json:"output_dir"`
	WorkoutName        string  `json:"workout_name,omitempty"`
	FTPWatts           float64 `json:"ftp_watts"`
	TimeoutSeconds     int     `json:"timeout_seconds"`
	CompliancePath     string  `json:"compliance_path"`
	SegmentsPath       string  `json:"segments_path"`
	AlignedSamplesPath string  `json:"aligned_samples_path"`
	ChartPath          string  `json:"chart_path,omitempty"`
	NotesPath          string  `json:"notes_path"`
}

// AlignedSample is one exported alignment edge joined with the planned segment
// that owns its virtual timeline point.
type AlignedSample struct {
	ActualIndex     int     `json:"actual_index"`
	ElapsedS        float64 `json:"elapsed_s"`
	ActualPowerW    float64 `json:"actual_power_w"`
	PlannedIndex    int     `json:"planned_index"`
	SegmentIndex    int     `json:"segment_index"`
	SegmentKind     string  `json:"segment_kind"`
	TargetLowW      float64 `json:"target_low_w"`
	TargetHighW     float64 `json:"target_high_w"`
	TargetMidpointW float64 `json:"target_midpoint_w"`
}
