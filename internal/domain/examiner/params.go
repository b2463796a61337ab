package examiner

import "github.com/phrazzld/viva-api/internal/domain"

// Params holds the thresholds of the heuristic examiner and the scorer.
type Params struct {
	TurnsPerPhase int

	// Responder thresholds.
	MinAnswerWords     int
	InterruptWordLimit int
	FollowUpThreshold  float64
	EscalateThreshold  float64
	HedgeLimit         int

	// Scoring.
	RedFlagPenalty int
	PassMark       int
	MaxDrills      int
}

// ParamsConfig overrides defaults. Zero values keep the default.
type ParamsConfig struct {
	TurnsPerPhase int
	MaxDrills     int
	PassMark      int
}

// NewDefaultParams returns the standard-strictness parameters.
func NewDefaultParams() *Params {
	return &Params{
		TurnsPerPhase:      DefaultTurnsPerPhase,
		MinAnswerWords:     6,
		InterruptWordLimit: 180,
		FollowUpThreshold:  0.5,
		EscalateThreshold:  0.75,
		HedgeLimit:         2,
		RedFlagPenalty:     15,
		PassMark:           60,
		MaxDrills:          3,
	}
}

// NewParams creates parameters with configured overrides.
func NewParams(cfg ParamsConfig) *Params {
	p := NewDefaultParams()
	if cfg.TurnsPerPhase > 0 {
		p.TurnsPerPhase = cfg.TurnsPerPhase
	}
	if cfg.MaxDrills > 0 {
		p.MaxDrills = cfg.MaxDrills
	}
	if cfg.PassMark > 0 {
		p.PassMark = cfg.PassMark
	}
	return p
}

// WithStrictness returns a copy of p with the responder thresholds of the
// given preset. Turn, scoring and drill settings are kept.
func (p *Params) WithStrictness(s domain.Strictness) *Params {
	out := *p
	switch s {
	case domain.StrictnessLenient:
		out.MinAnswerWords = 4
		out.InterruptWordLimit = 240
		out.FollowUpThreshold = 0.34
		out.EscalateThreshold = 0.6
		out.HedgeLimit = 3
	case domain.StrictnessStrict:
		out.MinAnswerWords = 10
		out.InterruptWordLimit = 120
		out.FollowUpThreshold = 0.67
		out.EscalateThreshold = 0.9
		out.HedgeLimit = 1
	default:
		d := NewDefaultParams()
		out.MinAnswerWords = d.MinAnswerWords
		out.InterruptWordLimit = d.InterruptWordLimit
		out.FollowUpThreshold = d.FollowUpThreshold
		out.EscalateThreshold = d.EscalateThreshold
		out.HedgeLimit = d.HedgeLimit
	}
	return &out
}
