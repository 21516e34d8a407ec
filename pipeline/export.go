package pipeline

import (
	"encoding/csv"
	"os"
	"strconv"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/lucasjlepore/workout-compliance"
)

func writeSegmentsCSV(path string, segments []compliance.WorkoutSegment, results []compliance.SegmentComplianceResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"segment_index", "kind", "planned_duration_s", "repeat_group_id",
		"target_low_w", "target_high_w", "actual_avg_power_w", "compliance_pct",
		"grade", "aligned_sample_count", "has_data",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, res := range results {
		groupID := ""
		duration := 0
		if i < len(segments) {
			duration = segments[i].PlannedDurationSeconds
			if segments[i].RepeatGroupID != nil {
				groupID = strconv.Itoa(*segments[i].RepeatGroupID)
			}
		}
		pct := ""
		if res.CompliancePct != nil {
			pct = formatFloat(*res.CompliancePct)
		}
		row := []string{
			strconv.Itoa(res.SegmentIndex),
			string(res.Kind),
			strconv.Itoa(duration),
			groupID,
			formatFloat(res.TargetLowWatts),
			formatFloat(res.TargetHighWatts),
			formatFloat(res.ActualAvgPowerWatts),
			pct,
			res.Grade,
			strconv.Itoa(res.AlignedSampleCount),
			strconv.FormatBool(res.HasData),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeAlignedCSV(path string, samples []AlignedSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"actual_index", "elapsed_s", "actual_power_w", "planned_index",
		"segment_index", "segment_kind", "target_low_w", "target_high_w", "target_midpoint_w",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.ActualIndex),
			formatFloat(s.ElapsedS),
			formatFloat(s.ActualPowerW),
			strconv.Itoa(s.PlannedIndex),
			strconv.Itoa(s.SegmentIndex),
			s.SegmentKind,
			formatFloat(s.TargetLowW),
			formatFloat(s.TargetHighW),
			formatFloat(s.TargetMidpointW),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type alignedParquetRow struct {
	ActualIndex     int64   `parquet:"name=actual_index, type=INT64"`
	ElapsedS        float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	ActualPowerW    float64 `parquet:"name=actual_power_w, type=DOUBLE"`
	PlannedIndex    int64   `parquet:"name=planned_index, type=INT64"`
	SegmentIndex    int64   `parquet:"name=segment_index, type=INT64"`
	SegmentKind     string  `parquet:"name=segment_kind, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TargetLowW      float64 `parquet:"name=target_low_w, type=DOUBLE"`
	TargetHighW     float64 `parquet:"name=target_high_w, type=DOUBLE"`
	TargetMidpointW float64 `parquet:"name=target_midpoint_w, type=DOUBLE"`
}

func writeAlignedParquet(path string, samples []AlignedSample) error {
	data, err := marshalAlignedParquet(samples)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func marshalAlignedParquet(samples []AlignedSample) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(alignedParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		row := alignedParquetRow{
			ActualIndex:     int64(s.ActualIndex),
			ElapsedS:        s.ElapsedS,
			ActualPowerW:    s.ActualPowerW,
			PlannedIndex:    int64(s.PlannedIndex),
			SegmentIndex:    int64(s.SegmentIndex),
			SegmentKind:     s.SegmentKind,
			TargetLowW:      s.TargetLowW,
			TargetHighW:     s.TargetHighW,
			TargetMidpointW: s.TargetMidpointW,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
