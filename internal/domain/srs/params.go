package srs

import (
	"github.com/phrazzld/viva-api/internal/domain"
)

// Params defines all configurable parameters for drill scheduling.
type Params struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	// Adjustments per attempt outcome.
	EaseFactorAdjustment map[domain.DrillOutcome]float64
	IntervalModifier     map[domain.DrillOutcome]float64

	// FirstIntervals are the day intervals after the first successful attempt.
	FirstIntervals map[domain.DrillOutcome]int
	// RetryMinutes is how soon a failed drill comes back.
	RetryMinutes int
}

// ParamsConfig allows overriding the default parameters. Zero values keep the default.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	AgainEaseFactorAdjustment float64
	HardEaseFactorAdjustment  float64
	GoodEaseFactorAdjustment  float64
	EasyEaseFactorAdjustment  float64

	HardIntervalModifier float64
	EasyIntervalModifier float64

	FirstHardInterval int
	FirstGoodInterval int
	FirstEasyInterval int

	RetryMinutes int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,
		MaxEaseFactor: 2.5,
		EaseFactorAdjustment: map[domain.DrillOutcome]float64{
			domain.DrillOutcomeAgain: -0.20,
			domain.DrillOutcomeHard:  -0.15,
			domain.DrillOutcomeGood:  0.0,
			domain.DrillOutcomeEasy:  0.15,
		},
		IntervalModifier: map[domain.DrillOutcome]float64{
			domain.DrillOutcomeAgain: 0.0,
			domain.DrillOutcomeHard:  1.2,
			domain.DrillOutcomeGood:  1.0,
			domain.DrillOutcomeEasy:  1.3,
		},
		FirstIntervals: map[domain.DrillOutcome]int{
			domain.DrillOutcomeHard: 1,
			domain.DrillOutcomeGood: 1,
			domain.DrillOutcomeEasy: 2,
		},
		RetryMinutes: 30,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(cfg ParamsConfig) *Params {
	params := NewDefaultParams()

	if cfg.MinEaseFactor > 0 {
		params.MinEaseFactor = cfg.MinEaseFactor
	}
	if cfg.MaxEaseFactor > 0 {
		params.MaxEaseFactor = cfg.MaxEaseFactor
	}

	overrides := map[domain.DrillOutcome]float64{
		domain.DrillOutcomeAgain: cfg.AgainEaseFactorAdjustment,
		domain.DrillOutcomeHard:  cfg.HardEaseFactorAdjustment,
		domain.DrillOutcomeGood:  cfg.GoodEaseFactorAdjustment,
		domain.DrillOutcomeEasy:  cfg.EasyEaseFactorAdjustment,
	}
	for outcome, adj := range overrides {
		if adj != 0 {
			params.EaseFactorAdjustment[outcome] = adj
		}
	}

	if cfg.HardIntervalModifier > 0 {
		params.IntervalModifier[domain.DrillOutcomeHard] = cfg.HardIntervalModifier
	}
	if cfg.EasyIntervalModifier > 0 {
		params.IntervalModifier[domain.DrillOutcomeEasy] = cfg.EasyIntervalModifier
	}

	if cfg.FirstHardInterval > 0 {
		params.FirstIntervals[domain.DrillOutcomeHard] = cfg.FirstHardInterval
	}
	if cfg.FirstGoodInterval > 0 {
		params.FirstIntervals[domain.DrillOutcomeGood] = cfg.FirstGoodInterval
	}
	if cfg.FirstEasyInterval > 0 {
		params.FirstIntervals[domain.DrillOutcomeEasy] = cfg.FirstEasyInterval
	}

	if cfg.RetryMinutes > 0 {
		params.RetryMinutes = cfg.RetryMinutes
	}

	return params
}
