// Package pipeline orchestrates one file-in, files-out compliance analysis: it
// loads a planned workout and a recorded power stream, runs the engine under
// the duration-scaled timeout, and writes the report artifacts.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lucasjlepore/workout-compliance"
	"github.com/lucasjlepore/workout-compliance/fitstream"
	"github.com/lucasjlepore/workout-compliance/planfile"
)

const (
	minTimeoutSeconds = 60
	maxTimeoutSeconds = 300
)

// Run executes the full analysis pipeline and writes all artifacts under
// opts.OutDir.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.PlanPath) == "" {
		return nil, fmt.Errorf("plan path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}

	doc, err := planfile.Load(opts.PlanPath)
	if err != nil {
		return nil, err
	}

	ftp := opts.FTPWatts
	if ftp <= 0 {
		ftp = doc.FTPWatts
	}
	if ftp <= 0 {
		return nil, fmt.Errorf("FTP is required: pass --ftp or use a plan document carrying ftp_watts")
	}

	stream := doc.PowerStream
	if strings.TrimSpace(opts.StreamPath) != "" {
		stream, err = loadStream(opts.StreamPath)
		if err != nil {
			return nil, err
		}
	}
	if len(stream) == 0 {
		return nil, fmt.Errorf("power stream is required: pass --stream or use a plan document carrying power_stream")
	}

	cfg := compliance.DefaultConfig()
	if opts.Engine != nil {
		cfg = *opts.Engine
	}

	input := compliance.AnalysisInput{
		FTPWatts:       ftp,
		PlannedWorkout: doc.Plan,
		PowerStream:    stream,
	}

	timeout := analysisTimeout(doc.Plan.TotalPlannedSeconds())
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := compliance.Analyze(runCtx, input, cfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	compliancePath := filepath.Join(opts.OutDir, "compliance.json")
	if err := writeJSON(compliancePath, result); err != nil {
		return nil, fmt.Errorf("write compliance.json: %w", err)
	}

	segments, _, err := compliance.Expand(doc.Plan, ftp)
	if err != nil {
		return nil, err
	}
	segmentsPath := filepath.Join(opts.OutDir, "segments.csv")
	if err := writeSegmentsCSV(segmentsPath, segments, result.Segments); err != nil {
		return nil, fmt.Errorf("write segments.csv: %w", err)
	}

	// Align is deterministic, so re-running it here reproduces exactly the
	// path the scores above were computed from.
	validated, err := compliance.Validate(stream, cfg)
	if err != nil {
		return nil, err
	}
	path, err := compliance.Align(runCtx, validated, segments, ftp, cfg)
	if err != nil {
		return nil, err
	}
	aligned := joinAlignedSamples(path, validated, segments)

	alignedPath := filepath.Join(opts.OutDir, "aligned_samples."+format)
	switch format {
	case "csv":
		err = writeAlignedCSV(alignedPath, aligned)
	case "parquet":
		err = writeAlignedParquet(alignedPath, aligned)
	}
	if err != nil {
		return nil, fmt.Errorf("write aligned samples: %w", err)
	}

	chartPath := ""
	if opts.Chart {
		chartPath = filepath.Join(opts.OutDir, "compliance_chart.png")
		if err := writeComplianceChart(chartPath, validated, segments); err != nil {
			return nil, fmt.Errorf("write compliance chart: %w", err)
		}
	}

	notesPath := filepath.Join(opts.OutDir, "compliance_notes.md")
	notes := BuildComplianceNotes(doc.Name, ftp, segments, result)
	if err := os.WriteFile(notesPath, []byte(notes), 0o644); err != nil {
		return nil, fmt.Errorf("write compliance_notes.md: %w", err)
	}

	return &Result{
		OutputDir:          opts.OutDir,
		WorkoutName:        doc.Name,
		FTPWatts:           ftp,
		TimeoutSeconds:     int(timeout / time.Second),
		CompliancePath:     compliancePath,
		SegmentsPath:       segmentsPath,
		AlignedSamplesPath: alignedPath,
		ChartPath:          chartPath,
		NotesPath:          notesPath,
	}, nil
}

// analysisTimeout scales the engine deadline with the planned duration:
// 60 s base plus 30 s per planned half hour, clamped to [60 s, 300 s].
func analysisTimeout(plannedSeconds int) time.Duration {
	halfHours := plannedSeconds / 60 / 30
	seconds := minTimeoutSeconds + 30*halfHours
	if seconds < minTimeoutSeconds {
		seconds = minTimeoutSeconds
	}
	if seconds > maxTimeoutSeconds {
		seconds = maxTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// loadStream reads a power stream file: ".fit" decodes an activity file,
// ".json" parses a sample array where a null power marks a missing reading.
func loadStream(path string) ([]compliance.PowerSample, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fit":
		return fitstream.FromFile(path)
	case ".json":
		return loadStreamJSON(path)
	default:
		return nil, fmt.Errorf("unsupported stream format %q", filepath.Ext(path))
	}
}

type streamSampleJSON struct {
	TimeOffsetSeconds float64  `json:"time_offset_seconds"`
	PowerWatts        *float64 `json:"power_watts"`
}

func loadStreamJSON(path string) ([]compliance.PowerSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stream file: %w", err)
	}
	var rows []streamSampleJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse stream JSON: %w", err)
	}

	samples := make([]compliance.PowerSample, 0, len(rows))
	for _, row := range rows {
		power := math.NaN()
		if row.PowerWatts != nil {
			power = *row.PowerWatts
		}
		samples = append(samples, compliance.PowerSample{
			TimeOffsetSeconds: row.TimeOffsetSeconds,
			PowerWatts:        power,
		})
	}
	return samples, nil
}

// joinAlignedSamples attaches the owning segment and its target band to every
// alignment edge. Virtual planned index j belongs to the segment whose
// cumulative duration range contains j.
func joinAlignedSamples(path *compliance.AlignmentPath, validated *compliance.ValidatedStream, segments []compliance.WorkoutSegment) []AlignedSample {
	bounds := make([]int, len(segments)+1)
	for i, seg := range segments {
		bounds[i+1] = bounds[i] + seg.PlannedDurationSeconds
	}

	out := make([]AlignedSample, 0, len(path.Edges))
	segCursor := 0
	for _, edge := range path.Edges {
		for segCursor < len(segments)-1 && edge.PlannedIndex >= bounds[segCursor+1] {
			segCursor++
		}
		seg := segments[segCursor]
		out = append(out, AlignedSample{
			ActualIndex:     edge.ActualIndex,
			ElapsedS:        float64(edge.ActualIndex),
			ActualPowerW:    validated.Powers[edge.ActualIndex],
			PlannedIndex:    edge.PlannedIndex,
			SegmentIndex:    seg.SegmentIndex,
			SegmentKind:     string(seg.Kind),
			TargetLowW:      seg.TargetLowWatts,
			TargetHighW:     seg.TargetHighWatts,
			TargetMidpointW: seg.TargetMidpointWatts(),
		})
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
