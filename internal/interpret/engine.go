package interpret

import (
	"log/slog"

	"maizecast/internal/types"
)

// Config carries the engine's tunable constants.
type Config struct {
	// MaxExpectedRange is the uncertainty interval width, in tons/ha, at
	// which confidence bottoms out. Zero means DefaultMaxExpectedRange.
	MaxExpectedRange float64
}

// Engine turns a prediction estimate and its original inputs into the
// user-facing interpretation. Stateless: every call operates only on its
// arguments and allocates a fresh result, so one Engine is safely shared
// across concurrent handlers.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine builds an Engine. A nil logger falls back to slog.Default.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxExpectedRange <= 0 {
		cfg.MaxExpectedRange = DefaultMaxExpectedRange
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Interpret derives the complete interpretation for one estimate. Total for
// well-formed inputs: validation happens upstream in Normalize, and the only
// internal failure mode (a panicking recommendation group) degrades to a
// shorter list, logged here rather than propagated.
//
// Identical arguments always produce an identical Interpretation.
func (e *Engine) Interpret(estimate types.PredictionEstimate, in types.PlantingInput) types.Interpretation {
	category := Classify(estimate.PointValue)
	confidence := Confidence(estimate, e.cfg.MaxExpectedRange)

	recommendations, suppressed := Recommend(in, estimate.PointValue)
	for _, group := range suppressed {
		e.logger.Warn("recommendation group suppressed after panic",
			"group", string(group),
			"district", in.District,
		)
	}

	return types.Interpretation{
		Category:          category,
		CategoryEmoji:     category.Emoji(),
		RiskTier:          category.RiskTier(),
		ConfidencePercent: ConfidencePercent(confidence),
		Explanation:       Explain(estimate.PointValue, in.PriorYield),
		Summary:           Summarize(estimate.PointValue, confidence),
		Recommendations:   recommendations,
		RiskFactors:       mergeRiskFactors(RiskFactors(in), estimate.RiskFactors),
	}
}
