package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasjlepore/workout-compliance"
)

// BuildComplianceNotes turns an analysis result into a readable training
// summary.
func BuildComplianceNotes(workoutName string, ftpWatts float64, segments []compliance.WorkoutSegment, result *compliance.OverallComplianceResult) string {
	if result == nil {
		return ""
	}

	var b strings.Builder

	if workoutName != "" {
		fmt.Fprintf(&b, "Workout: %s\n", workoutName)
	}
	plannedSeconds := 0
	for _, seg := range segments {
		plannedSeconds += seg.PlannedDurationSeconds
	}
	fmt.Fprintf(
		&b,
		"FTP %.0f W | Planned %s across %d segments\n",
		ftpWatts,
		formatDuration(float64(plannedSeconds)),
		len(result.Segments),
	)
	fmt.Fprintf(
		&b,
		"Compliance %.0f%% overall | work %.0f%% | recovery %.0f%% | hard segments %.0f%%\n",
		result.OverallCompliancePct,
		result.WorkCompliancePct,
		result.RecoveryCompliancePct,
		result.HardSegmentsAvgCompliancePct,
	)

	b.WriteString("\nSegment Execution\n")
	for i, seg := range result.Segments {
		duration := 0.0
		if i < len(segments) {
			duration = float64(segments[i].PlannedDurationSeconds)
		}
		if !seg.HasData || seg.CompliancePct == nil {
			fmt.Fprintf(
				&b,
				"- #%d %s %s target %.0f-%.0f W: no aligned samples\n",
				seg.SegmentIndex,
				seg.Kind,
				formatDuration(duration),
				seg.TargetLowWatts,
				seg.TargetHighWatts,
			)
			continue
		}
		fmt.Fprintf(
			&b,
			"- #%d %s %s target %.0f-%.0f W: avg %.0f W, %.0f%% (%s)\n",
			seg.SegmentIndex,
			seg.Kind,
			formatDuration(duration),
			seg.TargetLowWatts,
			seg.TargetHighWatts,
			seg.ActualAvgPowerWatts,
			*seg.CompliancePct,
			seg.Grade,
		)
	}

	b.WriteString("\nData Quality\n")
	q := result.DataQuality
	fmt.Fprintf(
		&b,
		"- %d samples, %d missing, %d sustained zero-power runs, max gap %.1f s\n",
		q.TotalSamples,
		q.MissingSampleCount,
		q.ZeroPowerRunCount,
		q.MaxGapSeconds,
	)
	if len(q.QualityFlags) > 0 {
		fmt.Fprintf(&b, "- warnings: %s\n", strings.Join(q.QualityFlags, ", "))
	} else {
		b.WriteString("- no quality warnings\n")
	}

	b.WriteString("\nCoaching Notes\n")
	b.WriteString("- ")
	b.WriteString(complianceAssessment(result))
	b.WriteByte('\n')

	return strings.TrimSpace(b.String())
}

func complianceAssessment(result *compliance.OverallComplianceResult) string {
	overall := result.OverallCompliancePct
	work := result.WorkCompliancePct
	switch {
	case overall >= 95 && overall <= 105:
		return "Execution closely matched the plan; hold these targets and progress when recovery allows."
	case work < 90 && work > 0:
		return "Work intervals came in under target; repeat this session before raising targets, or check whether the prescribed power is currently sustainable."
	case overall > 110:
		return "The ride ran well above plan; overshooting recovery and endurance targets erodes the session's intent."
	case overall < 70:
		return "Large gap between plan and execution; verify the FTP setting and consider an easier variant of this workout."
	default:
		return "Execution was acceptable with moderate drift from the plan; aim for steadier pacing inside each target band."
	}
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
