package fitstream

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/workout-compliance"
)

type testRecord struct {
	offsetSeconds int
	power         uint16
}

func buildTestFIT(t *testing.T, records []testRecord) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)

	activity, err := file.Activity()
	require.NoError(t, err)

	start := time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)
	for _, r := range records {
		rec := fit.NewRecordMsg()
		rec.Timestamp = start.Add(time.Duration(r.offsetSeconds) * time.Second)
		rec.Power = r.power
		activity.Records = append(activity.Records, rec)
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func TestFromReaderBuildsOffsetStream(t *testing.T) {
	data := buildTestFIT(t, []testRecord{
		{offsetSeconds: 0, power: 180},
		{offsetSeconds: 1, power: 185},
		{offsetSeconds: 2, power: 190},
		{offsetSeconds: 4, power: 200},
	})

	samples, err := FromReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, compliance.PowerSample{TimeOffsetSeconds: 0, PowerWatts: 180}, samples[0])
	assert.Equal(t, compliance.PowerSample{TimeOffsetSeconds: 1, PowerWatts: 185}, samples[1])
	assert.Equal(t, compliance.PowerSample{TimeOffsetSeconds: 4, PowerWatts: 200}, samples[3])
}

func TestFromReaderMapsInvalidPowerToMissing(t *testing.T) {
	data := buildTestFIT(t, []testRecord{
		{offsetSeconds: 0, power: 180},
		{offsetSeconds: 1, power: math.MaxUint16},
		{offsetSeconds: 2, power: 190},
	})

	samples, err := FromReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.True(t, math.IsNaN(samples[1].PowerWatts))
}

func TestFromReaderDropsDuplicateTimestamps(t *testing.T) {
	data := buildTestFIT(t, []testRecord{
		{offsetSeconds: 0, power: 180},
		{offsetSeconds: 1, power: 185},
		{offsetSeconds: 1, power: 300},
		{offsetSeconds: 2, power: 190},
	})

	samples, err := FromReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, 185.0, samples[1].PowerWatts)
}

func TestFromReaderRejectsEmptyActivity(t *testing.T) {
	data := buildTestFIT(t, nil)

	_, err := FromReader(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	data := buildTestFIT(t, []testRecord{
		{offsetSeconds: 0, power: 180},
		{offsetSeconds: 1, power: 185},
	})
	path := filepath.Join(t.TempDir(), "ride.fit")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	samples, err := FromFile(path)
	require.NoError(t, err)
	assert.Len(t, samples, 2)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.fit"))
	assert.Error(t, err)
}
