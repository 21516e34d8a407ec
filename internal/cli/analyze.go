package cli

import (
	"github.com/spf13/cobra"

	"github.com/lucasjlepore/workout-compliance/pipeline"
)

var (
	analyzePlanPath   string
	analyzeStreamPath string
	analyzeOutDir     string
	analyzeFTP        float64
	analyzeFormat     string
	analyzeChart      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Align a recorded power stream against a planned workout and write the compliance report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		format := analyzeFormat
		if format == "" {
			format = cfg.Export.Format
		}
		chart := analyzeChart || cfg.Export.Chart
		engine := cfg.EngineConfigValue()

		res, err := pipeline.Run(cmd.Context(), pipeline.Options{
			PlanPath:   analyzePlanPath,
			StreamPath: analyzeStreamPath,
			OutDir:     analyzeOutDir,
			FTPWatts:   analyzeFTP,
			Format:     format,
			Chart:      chart,
			Engine:     &engine,
		})
		if err != nil {
			return err
		}

		logger.Info().
			Str("out_dir", res.OutputDir).
			Str("workout", res.WorkoutName).
			Float64("ftp_watts", res.FTPWatts).
			Int("timeout_seconds", res.TimeoutSeconds).
			Msg("analysis complete")
		logger.Info().
			Str("compliance", res.CompliancePath).
			Str("segments", res.SegmentsPath).
			Str("aligned_samples", res.AlignedSamplesPath).
			Str("notes", res.NotesPath).
			Msg("artifacts written")
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzePlanPath, "plan", "", "Planned workout file (.json, .zwo, .xml)")
	analyzeCmd.Flags().StringVar(&analyzeStreamPath, "stream", "", "Recorded power stream (.fit or .json)")
	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out", "", "Output directory for report artifacts")
	analyzeCmd.Flags().Float64Var(&analyzeFTP, "ftp", 0, "Athlete FTP in watts (overrides the plan document)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "Aligned-sample export format: parquet|csv (defaults to config)")
	analyzeCmd.Flags().BoolVar(&analyzeChart, "chart", false, "Also render compliance_chart.png")
	_ = analyzeCmd.MarkFlagRequired("plan")
	_ = analyzeCmd.MarkFlagRequired("out")
}
