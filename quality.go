package compliance

import "math"

// Report summarizes data-quality problems in the raw stream before any
// resampling: missing readings, sustained zero-power runs, and sampling gaps.
// It never fails; a malformed stream simply yields a sparse report.
func Report(raw []PowerSample, cfg Config) DataQualityReport {
	report := DataQualityReport{
		TotalSamples: len(raw),
		QualityFlags: []string{},
	}
	if len(raw) == 0 {
		return report
	}

	zeroCount := 0
	run := 0
	flushRun := func() {
		if run > cfg.ZeroRunMinSamples {
			report.ZeroPowerRunCount++
		}
		run = 0
	}
	for i, s := range raw {
		if math.IsNaN(s.PowerWatts) {
			report.MissingSampleCount++
			flushRun()
		} else if s.PowerWatts == 0 {
			zeroCount++
			run++
		} else {
			flushRun()
		}
		if i > 0 {
			if gap := s.TimeOffsetSeconds - raw[i-1].TimeOffsetSeconds; gap > report.MaxGapSeconds {
				report.MaxGapSeconds = gap
			}
		}
	}
	flushRun()

	if report.MaxGapSeconds > cfg.LongGapSeconds {
		report.QualityFlags = append(report.QualityFlags, FlagLongGapDetected)
	}
	if float64(zeroCount)/float64(len(raw)) > cfg.ZeroPowerRatioLimit {
		report.QualityFlags = append(report.QualityFlags, FlagHighZeroPowerRatio)
	}
	if len(raw) > 1 {
		span := raw[len(raw)-1].TimeOffsetSeconds - raw[0].TimeOffsetSeconds
		if span/float64(len(raw)-1) > cfg.MaxSampleSpacingSeconds {
			report.QualityFlags = append(report.QualityFlags, FlagLowSampleDensity)
		}
	}
	return report
}
