package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EngineConfig carries the statistical tuning knobs of the baseline engine.
// The compliance bands and CUSUM control limit are deployment-specific and
// must stay configurable; the values below are the documented defaults.
type EngineConfig struct {
	// Data quality
	QualityFloor           float64 `mapstructure:"qualityFloor"`
	MinTrainingDays        int     `mapstructure:"minTrainingDays"`
	ExpectedReadingsPerDay int     `mapstructure:"expectedReadingsPerDay"`
	OutlierSigma           float64 `mapstructure:"outlierSigma"`

	// Trainer acceptance gates
	MinRSquared           float64 `mapstructure:"minRSquared"`
	LowConfidenceRSquared float64 `mapstructure:"lowConfidenceRSquared"`
	OverfitRSquared       float64 `mapstructure:"overfitRSquared"`

	// Forward stepwise selection
	MaxAutoFeatures        int     `mapstructure:"maxAutoFeatures"`
	StepwiseMinImprovement float64 `mapstructure:"stepwiseMinImprovement"`

	// Performance compliance bands (percent deviation)
	CompliantThresholdPct float64 `mapstructure:"compliantThresholdPct"`
	WarningThresholdPct   float64 `mapstructure:"warningThresholdPct"`

	// Persistent-drift detection
	CusumControlLimit float64 `mapstructure:"cusumControlLimit"`

	// Degree-day normalization
	DegreeDayBaseTempC float64 `mapstructure:"degreeDayBaseTempC"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		QualityFloor:           0.5,
		MinTrainingDays:        7,
		ExpectedReadingsPerDay: 24,
		OutlierSigma:           3.0,

		MinRSquared:           0.50,
		LowConfidenceRSquared: 0.75,
		OverfitRSquared:       0.995,

		MaxAutoFeatures:        8,
		StepwiseMinImprovement: 0.01,

		CompliantThresholdPct: 5,
		WarningThresholdPct:   15,

		// Magnitude of five consecutive periods at 10% deviation.
		CusumControlLimit: 50,

		DegreeDayBaseTempC: 18,
	}
}

type EngineConfigHolder struct {
	current atomic.Value // holds EngineConfig
}

// NewEngineConfigHolder loads engine.yml if present and watches it for
// changes so threshold tuning does not require a restart.
func NewEngineConfigHolder() (*EngineConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("engine")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/enbase/config")
	v.AddConfigPath("/etc/enbase")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ENBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &EngineConfigHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultEngineConfig())
		return holder, nil
	}

	cfg, err := unmarshalEngine(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.OnConfigChange(func(_ fsnotify.Event) {
		next, err := unmarshalEngine(v)
		if err != nil {
			return
		}
		holder.current.Store(next)
	})
	v.WatchConfig()

	return holder, nil
}

// NewStaticEngineConfigHolder wraps a fixed config, for tests.
func NewStaticEngineConfigHolder(cfg EngineConfig) *EngineConfigHolder {
	holder := &EngineConfigHolder{}
	holder.current.Store(cfg.withDefaults())
	return holder
}

func (h *EngineConfigHolder) Current() EngineConfig {
	if v, ok := h.current.Load().(EngineConfig); ok {
		return v
	}
	return DefaultEngineConfig()
}

func unmarshalEngine(v *viper.Viper) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := v.UnmarshalKey("engine", &cfg); err != nil {
		return EngineConfig{}, err
	}
	return cfg.withDefaults(), nil
}

func (c EngineConfig) withDefaults() EngineConfig {
	defaults := DefaultEngineConfig()
	if c.QualityFloor <= 0 {
		c.QualityFloor = defaults.QualityFloor
	}
	if c.MinTrainingDays <= 0 {
		c.MinTrainingDays = defaults.MinTrainingDays
	}
	if c.ExpectedReadingsPerDay <= 0 {
		c.ExpectedReadingsPerDay = defaults.ExpectedReadingsPerDay
	}
	if c.OutlierSigma <= 0 {
		c.OutlierSigma = defaults.OutlierSigma
	}
	if c.MinRSquared <= 0 {
		c.MinRSquared = defaults.MinRSquared
	}
	if c.LowConfidenceRSquared <= 0 {
		c.LowConfidenceRSquared = defaults.LowConfidenceRSquared
	}
	if c.OverfitRSquared <= 0 {
		c.OverfitRSquared = defaults.OverfitRSquared
	}
	if c.MaxAutoFeatures <= 0 {
		c.MaxAutoFeatures = defaults.MaxAutoFeatures
	}
	if c.StepwiseMinImprovement <= 0 {
		c.StepwiseMinImprovement = defaults.StepwiseMinImprovement
	}
	if c.CompliantThresholdPct <= 0 {
		c.CompliantThresholdPct = defaults.CompliantThresholdPct
	}
	if c.WarningThresholdPct <= 0 {
		c.WarningThresholdPct = defaults.WarningThresholdPct
	}
	if c.CusumControlLimit <= 0 {
		c.CusumControlLimit = defaults.CusumControlLimit
	}
	if c.DegreeDayBaseTempC <= 0 {
		c.DegreeDayBaseTempC = defaults.DegreeDayBaseTempC
	}
	return c
}
