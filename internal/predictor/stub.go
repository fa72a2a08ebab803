package predictor

import (
	"context"
	"log/slog"
	"math"
	"time"

	"maizecast/internal/types"
)

// stubSigma is the per-request uncertainty the stub reports. The production
// model estimates sigma per request; the stub pins it so dev-mode confidence
// numbers look like production's.
const stubSigma = 0.25

// stubModelVersion identifies stub output in stored records.
const stubModelVersion = "stub-0.1.0"

// StubPredictor implements types.Predictor with a deterministic linear
// heuristic. It lets the service boot without the model service in local
// mode; every call is logged so a stub leaking into a deployed environment
// is visible.
type StubPredictor struct {
	logger *slog.Logger
}

// NewStubPredictor creates a StubPredictor.
func NewStubPredictor(logger *slog.Logger) *StubPredictor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubPredictor{logger: logger}
}

// Predict implements types.Predictor. The heuristic is a linear water/heat
// response around the long-run national mean: more water and sunlight raise
// the estimate, heat stress and pest pressure lower it. Identical inputs
// always produce identical output.
func (s *StubPredictor) Predict(ctx context.Context, features types.FeatureVector) (*types.PredictionEstimate, error) {
	point := 1.1 +
		0.0009*features.RainfallMM +
		0.9*features.SoilMoisture +
		0.25*features.PolicyActive +
		0.05*(features.SunlightHrs-6) -
		0.05*math.Max(0, features.TemperatureC-30) -
		0.03*math.Max(0, 20-features.TemperatureC) -
		0.004*features.PestRisk

	point = clamp(point, 0.2, 4.0)
	point = math.Round(point*100) / 100

	lower := math.Max(0, point-1.96*stubSigma)
	upper := point + 1.96*stubSigma

	s.logger.InfoContext(ctx, "stub predictor used",
		"predicted_yield", point,
		"rainfall_mm", features.RainfallMM,
		"soil_moisture", features.SoilMoisture,
	)

	return &types.PredictionEstimate{
		PointValue:   point,
		LowerBound:   math.Round(lower*100) / 100,
		UpperBound:   math.Round(upper*100) / 100,
		ModelVersion: stubModelVersion,
	}, nil
}

// ModelInfo implements types.Predictor.
func (s *StubPredictor) ModelInfo(ctx context.Context) (*types.ModelInfo, error) {
	return &types.ModelInfo{
		Name:          "maizecast-stub",
		Version:       stubModelVersion,
		TrainedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		FeatureCount:  15,
		IntervalSigma: stubSigma,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
