// Package fitstream extracts a power sample stream from activity FIT files in
// the shape the compliance engine consumes.
package fitstream

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"github.com/lucasjlepore/workout-compliance"
)

// FromFile decodes an activity FIT file and returns its power stream.
func FromFile(path string) ([]compliance.PowerSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	samples, err := FromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// FromReader decodes an activity FIT stream and returns one sample per record
// message, ordered by time offset from the first valid timestamp. Records with
// the device's invalid-power sentinel become NaN samples so downstream
// analysis can tell "no reading" from "zero watts".
func FromReader(r io.Reader) ([]compliance.PowerSample, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	rows := make([]*fit.RecordMsg, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec == nil || !validTimestamp(rec.Timestamp) {
			continue
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("activity file has no timestamped record messages")
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})

	start := rows[0].Timestamp
	samples := make([]compliance.PowerSample, 0, len(rows))
	lastOffset := math.Inf(-1)
	for _, rec := range rows {
		offset := rec.Timestamp.Sub(start).Seconds()
		if offset <= lastOffset && len(samples) > 0 {
			// Some head units repeat the record for a paused second.
			continue
		}
		lastOffset = offset

		power := math.NaN()
		if rec.Power != math.MaxUint16 {
			power = float64(rec.Power)
		}
		samples = append(samples, compliance.PowerSample{
			TimeOffsetSeconds: offset,
			PowerWatts:        power,
		})
	}
	return samples, nil
}

func validTimestamp(t time.Time) bool {
	return !t.IsZero() && !fit.IsBaseTime(t)
}
