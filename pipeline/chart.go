package pipeline

import (
	"os"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/lucasjlepore/workout-compliance"
)

// writeComplianceChart renders the recorded power trace over the planned
// target band as a PNG.
func writeComplianceChart(path string, validated *compliance.ValidatedStream, segments []compliance.WorkoutSegment) error {
	actualX := make([]float64, validated.Len())
	actualY := make([]float64, validated.Len())
	for i, p := range validated.Powers {
		actualX[i] = float64(i)
		actualY[i] = p
	}

	// Target bands drawn as per-second step lines across the planned timeline.
	var targetX, targetLow, targetHigh []float64
	elapsed := 0
	for _, seg := range segments {
		for s := 0; s < seg.PlannedDurationSeconds; s++ {
			targetX = append(targetX, float64(elapsed))
			targetLow = append(targetLow, seg.TargetLowWatts)
			targetHigh = append(targetHigh, seg.TargetHighWatts)
			elapsed++
		}
	}

	powerFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name:           "Elapsed (s)",
			ValueFormatter: powerFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Power (W)",
			ValueFormatter: powerFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Actual",
				XValues: actualX,
				YValues: actualY,
			},
			chart.ContinuousSeries{
				Name:    "Target low",
				XValues: targetX,
				YValues: targetLow,
			},
			chart.ContinuousSeries{
				Name:    "Target high",
				XValues: targetX,
				YValues: targetHigh,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
