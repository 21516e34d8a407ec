package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/lucasjlepore/workout-compliance"
	"github.com/lucasjlepore/workout-compliance/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App     AppConfig      `mapstructure:"app"`
	Logging logging.Config `mapstructure:"logging"`
	Engine  EngineConfig   `mapstructure:"engine"`
	Export  ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// EngineConfig exposes the analysis tunables.
type EngineConfig struct {
	MinSamples              int     `mapstructure:"min_samples"`
	BandRadiusSeconds       int     `mapstructure:"band_radius_seconds"`
	BandRadiusFraction      float64 `mapstructure:"band_radius_fraction"`
	ZeroRunMinSamples       int     `mapstructure:"zero_run_min_samples"`
	LongGapSeconds          float64 `mapstructure:"long_gap_seconds"`
	ZeroPowerRatioLimit     float64 `mapstructure:"zero_power_ratio_limit"`
	MaxSampleSpacingSeconds float64 `mapstructure:"max_sample_spacing_seconds"`
}

// ExportConfig sets report output behaviour.
type ExportConfig struct {
	Format string `mapstructure:"format"` // parquet|csv
	Chart  bool   `mapstructure:"chart"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WORKOUT_COMPLIANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := compliance.DefaultConfig()

	v.SetDefault("app.name", "workout-compliance")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("engine.min_samples", defaults.MinSamples)
	v.SetDefault("engine.band_radius_seconds", defaults.BandRadiusSeconds)
	v.SetDefault("engine.band_radius_fraction", defaults.BandRadiusFraction)
	v.SetDefault("engine.zero_run_min_samples", defaults.ZeroRunMinSamples)
	v.SetDefault("engine.long_gap_seconds", defaults.LongGapSeconds)
	v.SetDefault("engine.zero_power_ratio_limit", defaults.ZeroPowerRatioLimit)
	v.SetDefault("engine.max_sample_spacing_seconds", defaults.MaxSampleSpacingSeconds)

	v.SetDefault("export.format", "parquet")
	v.SetDefault("export.chart", false)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Engine.MinSamples <= 0 {
		return fmt.Errorf("engine.min_samples must be greater than zero")
	}
	if c.Engine.BandRadiusSeconds < 0 {
		return fmt.Errorf("engine.band_radius_seconds cannot be negative")
	}
	if c.Engine.BandRadiusFraction <= 0 || c.Engine.BandRadiusFraction > 1 {
		return fmt.Errorf("engine.band_radius_fraction must be in (0, 1]")
	}
	if c.Engine.ZeroRunMinSamples < 0 {
		return fmt.Errorf("engine.zero_run_min_samples cannot be negative")
	}
	if c.Engine.LongGapSeconds <= 0 {
		return fmt.Errorf("engine.long_gap_seconds must be greater than zero")
	}
	if c.Engine.ZeroPowerRatioLimit <= 0 || c.Engine.ZeroPowerRatioLimit > 1 {
		return fmt.Errorf("engine.zero_power_ratio_limit must be in (0, 1]")
	}
	if c.Engine.MaxSampleSpacingSeconds <= 0 {
		return fmt.Errorf("engine.max_sample_spacing_seconds must be greater than zero")
	}
	format := strings.ToLower(c.Export.Format)
	if format != "parquet" && format != "csv" {
		return fmt.Errorf("export.format must be parquet or csv, got %q", c.Export.Format)
	}
	return nil
}

// EngineConfigValue maps the configuration onto the engine's tunables.
func (c *Config) EngineConfigValue() compliance.Config {
	return compliance.Config{
		MinSamples:              c.Engine.MinSamples,
		BandRadiusSeconds:       c.Engine.BandRadiusSeconds,
		BandRadiusFraction:      c.Engine.BandRadiusFraction,
		ZeroRunMinSamples:       c.Engine.ZeroRunMinSamples,
		LongGapSeconds:          c.Engine.LongGapSeconds,
		ZeroPowerRatioLimit:     c.Engine.ZeroPowerRatioLimit,
		MaxSampleSpacingSeconds: c.Engine.MaxSampleSpacingSeconds,
	}
}
