// Package config reads and writes the runcoach configuration file.
// Every tunable the analysis and planning code exposes has a key here;
// missing keys fall back to the package defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"runcoach/internal/analysis"
	"runcoach/internal/plan"
)

// Config is the application configuration.
type Config struct {
	Athlete   AthleteConfig   `yaml:"athlete"`
	Load      LoadConfig      `yaml:"load"`
	Threshold ThresholdConfig `yaml:"threshold"`
	Plan      PlanConfig      `yaml:"plan"`
	Evaluate  EvaluateConfig  `yaml:"evaluate"`
	Data      DataConfig      `yaml:"data"`
}

// AthleteConfig holds athlete-specific settings.
type AthleteConfig struct {
	ID             int64   `yaml:"id"`
	RestingHR      float64 `yaml:"resting_hr"`
	MaxHR          float64 `yaml:"max_hr"`
	ThresholdHR    float64 `yaml:"threshold_hr"`
	ThresholdPower float64 `yaml:"threshold_power"`
}

// LoadConfig tunes the training load recurrence.
type LoadConfig struct {
	FitnessDays       int     `yaml:"fitness_days"`
	FatigueDays       int     `yaml:"fatigue_days"`
	FallbackIntensity float64 `yaml:"fallback_intensity"`
}

// ThresholdConfig tunes threshold estimation.
type ThresholdConfig struct {
	WindowDays    int     `yaml:"window_days"`
	MinEffortSec  int     `yaml:"min_effort_sec"`
	Discount      float64 `yaml:"discount"`
	MinChange     float64 `yaml:"min_change"`
	StalenessDays int     `yaml:"staleness_days"`
}

// PlanConfig tunes program generation.
type PlanConfig struct {
	MinWeeks         int     `yaml:"min_weeks"`
	MaxWeeks         int     `yaml:"max_weeks"`
	MinLeadWeeks     int     `yaml:"min_lead_weeks"`
	RampFraction     float64 `yaml:"ramp_fraction"`
	PeakFraction     float64 `yaml:"peak_fraction"`
	TaperFraction    float64 `yaml:"taper_fraction"`
	RecoveryInterval int     `yaml:"recovery_interval"`
	RecoveryFraction float64 `yaml:"recovery_fraction"`
	BaseSplit        float64 `yaml:"base_split"`
	BuildSplit       float64 `yaml:"build_split"`
	PeakSplit        float64 `yaml:"peak_split"`
	TaperSplit       float64 `yaml:"taper_split"`
	MinWeeklyVolume  float64 `yaml:"min_weekly_volume"`
	AnchorSpeed      float64 `yaml:"anchor_speed"`
}

// EvaluateConfig tunes adherence scoring.
type EvaluateConfig struct {
	MatchWindowDays int     `yaml:"match_window_days"`
	DurationWeight  float64 `yaml:"duration_weight"`
	DistanceWeight  float64 `yaml:"distance_weight"`
	IntensityWeight float64 `yaml:"intensity_weight"`
	OnTargetScore   float64 `yaml:"on_target_score"`
}

// DataConfig locates the data directory.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the default configuration. The numeric defaults
// come from the analysis and plan packages so they live in one place.
func DefaultConfig() Config {
	win := analysis.DefaultWindows()
	thr := analysis.DefaultThresholdParams()
	pp := plan.DefaultParams()
	ep := plan.DefaultEvalParams()

	return Config{
		Athlete: AthleteConfig{
			ID:          1,
			RestingHR:   50,
			MaxHR:       185,
			ThresholdHR: 165,
		},
		Load: LoadConfig{
			FitnessDays:       win.FitnessDays,
			FatigueDays:       win.FatigueDays,
			FallbackIntensity: analysis.DefaultFallbackIntensity,
		},
		Threshold: ThresholdConfig{
			WindowDays:    thr.WindowDays,
			MinEffortSec:  thr.MinEffortSec,
			Discount:      thr.Discount,
			MinChange:     thr.MinChange,
			StalenessDays: thr.StalenessDays,
		},
		Plan: PlanConfig{
			MinWeeks:         pp.MinWeeks,
			MaxWeeks:         pp.MaxWeeks,
			MinLeadWeeks:     pp.MinLeadWeeks,
			RampFraction:     pp.RampFraction,
			PeakFraction:     pp.PeakFraction,
			TaperFraction:    pp.TaperFraction,
			RecoveryInterval: pp.RecoveryInterval,
			RecoveryFraction: pp.RecoveryFraction,
			BaseSplit:        pp.Split.Base,
			BuildSplit:       pp.Split.Build,
			PeakSplit:        pp.Split.Peak,
			TaperSplit:       pp.Split.Taper,
			MinWeeklyVolume:  pp.MinWeeklyVolume,
			AnchorSpeed:      pp.AnchorSpeed,
		},
		Evaluate: EvaluateConfig{
			MatchWindowDays: ep.MatchWindowDays,
			DurationWeight:  ep.DurationWeight,
			DistanceWeight:  ep.DistanceWeight,
			IntensityWeight: ep.IntensityWeight,
			OnTargetScore:   ep.OnTargetScore,
		},
	}
}

// Path returns the config file location: $RUNCOACH_CONFIG when set,
// otherwise ~/.runcoach/config.yaml.
func Path() (string, error) {
	if p := os.Getenv("RUNCOACH_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runcoach", "config.yaml"), nil
}

// Load reads the config file at path, layering it over the defaults. A
// missing file is not an error: the defaults come back as-is. The
// RUNCOACH_DATA_DIR and RUNCOACH_ATHLETE_ID environment variables
// override their file counterparts.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if dir := os.Getenv("RUNCOACH_DATA_DIR"); dir != "" {
		cfg.Data.Dir = dir
	}
	if raw := os.Getenv("RUNCOACH_ATHLETE_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parsing RUNCOACH_ATHLETE_ID: %w", err)
		}
		cfg.Athlete.ID = id
	}

	if cfg.Data.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("getting home directory: %w", err)
		}
		cfg.Data.Dir = filepath.Join(home, ".runcoach")
	}

	return cfg, nil
}

// Save writes the configuration to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// DBPath returns the SQLite database location under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Data.Dir, "data.db")
}

// Windows returns the load recurrence windows.
func (c *Config) Windows() analysis.Windows {
	return analysis.Windows{
		FitnessDays: c.Load.FitnessDays,
		FatigueDays: c.Load.FatigueDays,
	}
}

// Thresholds returns the stress scoring thresholds for a given
// threshold speed (0 when the athlete has no estimate yet).
func (c *Config) Thresholds(speed float64) analysis.Thresholds {
	return analysis.Thresholds{
		Speed:             speed,
		Power:             c.Athlete.ThresholdPower,
		HR:                c.Athlete.ThresholdHR,
		FallbackIntensity: c.Load.FallbackIntensity,
	}
}

// ThresholdParams returns the estimator parameters.
func (c *Config) ThresholdParams() analysis.ThresholdParams {
	return analysis.ThresholdParams{
		WindowDays:    c.Threshold.WindowDays,
		MinEffortSec:  c.Threshold.MinEffortSec,
		Discount:      c.Threshold.Discount,
		MinChange:     c.Threshold.MinChange,
		StalenessDays: c.Threshold.StalenessDays,
	}
}

// PlanParams returns the planner parameters.
func (c *Config) PlanParams() plan.Params {
	return plan.Params{
		MinWeeks:         c.Plan.MinWeeks,
		MaxWeeks:         c.Plan.MaxWeeks,
		MinLeadWeeks:     c.Plan.MinLeadWeeks,
		RampFraction:     c.Plan.RampFraction,
		PeakFraction:     c.Plan.PeakFraction,
		TaperFraction:    c.Plan.TaperFraction,
		RecoveryInterval: c.Plan.RecoveryInterval,
		RecoveryFraction: c.Plan.RecoveryFraction,
		Split: plan.PhaseSplit{
			Base:  c.Plan.BaseSplit,
			Build: c.Plan.BuildSplit,
			Peak:  c.Plan.PeakSplit,
			Taper: c.Plan.TaperSplit,
		},
		MinWeeklyVolume: c.Plan.MinWeeklyVolume,
		AnchorSpeed:     c.Plan.AnchorSpeed,
	}
}

// EvalParams returns the evaluator parameters.
func (c *Config) EvalParams() plan.EvalParams {
	return plan.EvalParams{
		MatchWindowDays: c.Evaluate.MatchWindowDays,
		DurationWeight:  c.Evaluate.DurationWeight,
		DistanceWeight:  c.Evaluate.DistanceWeight,
		IntensityWeight: c.Evaluate.IntensityWeight,
		OnTargetScore:   c.Evaluate.OnTargetScore,
	}
}

// Validate checks the configuration for values the computations cannot
// work with.
func (c *Config) Validate() error {
	if c.Athlete.ID <= 0 {
		return errors.New("athlete.id must be positive")
	}
	if c.Athlete.ThresholdHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.ThresholdHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be less than athlete.max_hr (%v)",
			c.Athlete.ThresholdHR, c.Athlete.MaxHR)
	}
	if c.Load.FitnessDays <= 0 || c.Load.FatigueDays <= 0 {
		return errors.New("load.fitness_days and load.fatigue_days must be positive")
	}
	if c.Load.FallbackIntensity <= 0 || c.Load.FallbackIntensity > 2 {
		return fmt.Errorf("load.fallback_intensity (%v) must be in (0, 2]", c.Load.FallbackIntensity)
	}
	if c.Threshold.WindowDays <= 0 || c.Threshold.StalenessDays <= 0 {
		return errors.New("threshold.window_days and threshold.staleness_days must be positive")
	}
	if c.Threshold.Discount <= 0 || c.Threshold.Discount > 1 {
		return fmt.Errorf("threshold.discount (%v) must be in (0, 1]", c.Threshold.Discount)
	}
	if c.Threshold.MinChange < 0 {
		return errors.New("threshold.min_change must not be negative")
	}
	if c.Plan.MinWeeks < 1 || c.Plan.MaxWeeks < c.Plan.MinWeeks {
		return fmt.Errorf("plan.min_weeks/max_weeks (%d/%d) out of order", c.Plan.MinWeeks, c.Plan.MaxWeeks)
	}
	if c.Plan.MinLeadWeeks < 1 {
		return errors.New("plan.min_lead_weeks must be at least 1")
	}
	for name, f := range map[string]float64{
		"plan.peak_fraction":     c.Plan.PeakFraction,
		"plan.taper_fraction":    c.Plan.TaperFraction,
		"plan.recovery_fraction": c.Plan.RecoveryFraction,
	} {
		if f <= 0 || f > 1 {
			return fmt.Errorf("%s (%v) must be in (0, 1]", name, f)
		}
	}
	if c.Plan.RampFraction < 0 {
		return errors.New("plan.ramp_fraction must not be negative")
	}
	for name, f := range map[string]float64{
		"plan.base_split":  c.Plan.BaseSplit,
		"plan.build_split": c.Plan.BuildSplit,
		"plan.peak_split":  c.Plan.PeakSplit,
		"plan.taper_split": c.Plan.TaperSplit,
	} {
		if f <= 0 {
			return fmt.Errorf("%s (%v) must be positive", name, f)
		}
	}
	if c.Evaluate.MatchWindowDays < 0 {
		return errors.New("evaluate.match_window_days must not be negative")
	}
	if c.Evaluate.DurationWeight < 0 || c.Evaluate.DistanceWeight < 0 || c.Evaluate.IntensityWeight < 0 {
		return errors.New("evaluate weights must not be negative")
	}
	if c.Evaluate.DurationWeight+c.Evaluate.DistanceWeight+c.Evaluate.IntensityWeight == 0 {
		return errors.New("at least one evaluate weight must be positive")
	}
	if c.Evaluate.OnTargetScore <= 0 || c.Evaluate.OnTargetScore > 100 {
		return fmt.Errorf("evaluate.on_target_score (%v) must be in (0, 100]", c.Evaluate.OnTargetScore)
	}
	return nil
}
