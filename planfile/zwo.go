package planfile

import (
	"encoding/xml"
	"fmt"

	"github.com/lucasjlepore/workout-compliance"
)

// ZWO steady-state steps below this FTP fraction count as recovery riding.
const zwoRecoveryThreshold = 0.60

type zwoFile struct {
	XMLName xml.Name   `xml:"workout_file"`
	Name    string     `xml:"name"`
	Workout zwoWorkout `xml:"workout"`
}

type zwoWorkout struct {
	Steps []zwoStep `xml:",any"`
}

// zwoStep captures any workout child tag; which attributes are meaningful
// depends on the tag name. Power attributes are FTP fractions.
type zwoStep struct {
	XMLName     xml.Name
	Duration    int     `xml:"Duration,attr"`
	Power       float64 `xml:"Power,attr"`
	PowerLow    float64 `xml:"PowerLow,attr"`
	PowerHigh   float64 `xml:"PowerHigh,attr"`
	Repeat      int     `xml:"Repeat,attr"`
	OnDuration  int     `xml:"OnDuration,attr"`
	OnPower     float64 `xml:"OnPower,attr"`
	OffDuration int     `xml:"OffDuration,attr"`
	OffPower    float64 `xml:"OffPower,attr"`
}

func loadZWO(data []byte) (*Document, error) {
	var file zwoFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse ZWO XML: %w", err)
	}
	if len(file.Workout.Steps) == 0 {
		return nil, fmt.Errorf("ZWO file has no workout steps")
	}

	steps := make([]compliance.PlannedStep, 0, len(file.Workout.Steps))
	for _, step := range file.Workout.Steps {
		converted, err := convertZWOStep(step)
		if err != nil {
			return nil, err
		}
		steps = append(steps, converted)
	}
	return &Document{
		Name: file.Name,
		Plan: compliance.PlannedWorkout{Segments: steps},
	}, nil
}

func convertZWOStep(step zwoStep) (compliance.PlannedStep, error) {
	switch step.XMLName.Local {
	case "Warmup", "Ramp":
		return flatStep(compliance.SegmentWarmup, step.Duration, step.PowerLow, step.PowerHigh), nil
	case "Cooldown":
		// ZWO cooldowns ramp downward, so PowerLow is the higher end.
		return flatStep(compliance.SegmentCooldown, step.Duration, step.PowerHigh, step.PowerLow), nil
	case "SteadyState":
		kind := compliance.SegmentWork
		if step.Power < zwoRecoveryThreshold {
			kind = compliance.SegmentRecovery
		}
		return flatStep(kind, step.Duration, step.Power, step.Power), nil
	case "IntervalsT":
		if step.Repeat <= 0 {
			return compliance.PlannedStep{}, fmt.Errorf("IntervalsT step has repeat count %d", step.Repeat)
		}
		return compliance.PlannedStep{
			Repeat: &compliance.RepeatBlock{
				Count: step.Repeat,
				Steps: []compliance.PlannedStep{
					flatStep(compliance.SegmentWork, step.OnDuration, step.OnPower, step.OnPower),
					flatStep(compliance.SegmentRecovery, step.OffDuration, step.OffPower, step.OffPower),
				},
			},
		}, nil
	default:
		return compliance.PlannedStep{}, fmt.Errorf("unsupported ZWO step %q", step.XMLName.Local)
	}
}

func flatStep(kind compliance.SegmentKind, durationSeconds int, lowFrac, highFrac float64) compliance.PlannedStep {
	return compliance.PlannedStep{
		Kind:            string(kind),
		DurationSeconds: durationSeconds,
		PowerLowPct:     lowFrac * 100,
		PowerHighPct:    highFrac * 100,
	}
}
