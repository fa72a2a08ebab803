package types

import (
	"time"
)

// PlantingInput is the user-facing description of a planting season.
// Values arrive in display units (percentages on 0-100 scales, booleans,
// calendar years) and are converted to the canonical FeatureVector by the
// interpretation engine before reaching the predictor.
type PlantingInput struct {
	District     string   `json:"district" db:"district"`
	SoilType     SoilType `json:"soil_type" db:"soil_type"`
	Year         int      `json:"year" db:"year"`
	RainfallMM   float64  `json:"rainfall_mm" db:"rainfall_mm"`
	TemperatureC float64  `json:"temperature_c" db:"temperature_c"`
	HumidityPct  float64  `json:"humidity_pct" db:"humidity_pct"`
	SunlightHrs  float64  `json:"sunlight_hours" db:"sunlight_hours"`
	SoilMoisture float64  `json:"soil_moisture" db:"soil_moisture"`
	PestRiskPct  float64  `json:"pest_risk_pct" db:"pest_risk_pct"`
	PFJPolicy    bool     `json:"pfj_policy" db:"pfj_policy"`
	PriorYield   float64  `json:"prior_yield" db:"prior_yield"`
}

// FeatureVector is the canonical numeric record consumed by the predictor.
// Base fields are unit-normalized copies of PlantingInput; derived fields are
// pure functions of the base fields and are recomputed, never stored.
type FeatureVector struct {
	// Base features.
	Year         float64 `json:"year"`
	RainfallMM   float64 `json:"rainfall_mm"`
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	SunlightHrs  float64 `json:"sunlight_hours"`
	SoilMoisture float64 `json:"soil_moisture"`
	PestRisk     float64 `json:"pest_risk"`   // Percent 0-100; predictors binarize on encode.
	PolicyActive float64 `json:"pfj_policy"`  // Boolean encoded 0/1.
	PriorYield   float64 `json:"prior_yield"` // tons/ha.

	// Derived features. Deterministic functions of the base fields above;
	// recomputing from identical inputs is bit-for-bit identical.
	GrowingDegreeDays  float64 `json:"growing_degree_days"`
	WaterAvailability  float64 `json:"water_availability"`
	ClimateStress      float64 `json:"climate_stress"`
	MoistureTempRatio  float64 `json:"moisture_temp_ratio"`
	RainfallPerSunHour float64 `json:"rainfall_per_sun_hour"`
	YearsSincePolicy   float64 `json:"years_since_policy"`
}

// PredictionEstimate is the predictor's answer for one feature vector.
// Invariant: LowerBound <= PointValue <= UpperBound, LowerBound >= 0.
type PredictionEstimate struct {
	PointValue   float64  `json:"point_value" db:"predicted_yield"`
	LowerBound   float64  `json:"lower_bound" db:"lower_bound"`
	UpperBound   float64  `json:"upper_bound" db:"upper_bound"`
	ModelVersion string   `json:"model_version" db:"model_version"`
	RiskFactors  []string `json:"risk_factors,omitempty" db:"-"`
}

// IntervalWidth returns the width of the uncertainty interval in tons/ha.
func (e PredictionEstimate) IntervalWidth() float64 {
	return e.UpperBound - e.LowerBound
}

// Recommendation is a single actionable entry produced by one condition rule
// group. Text is opaque prose; Group names the rule that produced it.
type Recommendation struct {
	Group RecommendationGroup `json:"group"`
	Text  string              `json:"text"`
}

// RecommendationList is a JSONB-persisted ordered list of recommendations.
type RecommendationList []Recommendation

// Texts flattens the list to its prose entries, preserving order.
func (rl RecommendationList) Texts() []string {
	out := make([]string, len(rl))
	for i, r := range rl {
		out[i] = r.Text
	}
	return out
}

// StringList is a JSONB-persisted list of plain strings (risk factors).
type StringList []string

// Interpretation is the engine's output for one prediction. Constructed fresh
// on every request and immutable once returned; a new prediction produces a
// new Interpretation rather than mutating a prior one.
type Interpretation struct {
	Category          YieldCategory      `json:"category"`
	CategoryEmoji     string             `json:"category_emoji"`
	RiskTier          RiskTier           `json:"risk_tier"`
	ConfidencePercent int                `json:"confidence_percent"`
	Explanation       string             `json:"explanation"`
	Summary           string             `json:"summary"`
	Recommendations   RecommendationList `json:"recommendations"`
	RiskFactors       StringList         `json:"risk_factors"`
}

// HistoryRecord is one persisted prediction: the pre-derivation inputs, the
// predictor's estimate, and the interpretation. Owned by the store; the
// engine never retains references across calls.
type HistoryRecord struct {
	ID             string             `json:"id" db:"id"`
	Inputs         PlantingInput      `json:"inputs" db:"-"`
	Estimate       PredictionEstimate `json:"estimate" db:"-"`
	Interpretation Interpretation     `json:"interpretation" db:"-"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}

// ModelInfo describes the predictor's active model.
type ModelInfo struct {
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	TrainedAt     time.Time `json:"trained_at,omitempty"`
	FeatureCount  int       `json:"feature_count"`
	TrainingRows  int       `json:"training_rows,omitempty"`
	IntervalSigma float64   `json:"interval_sigma,omitempty"`
}

// PredictionResult bundles everything a prediction request returns: the
// persisted record ID, the estimate, and the interpretation.
type PredictionResult struct {
	ID             string             `json:"id"`
	Inputs         PlantingInput      `json:"inputs"`
	Estimate       PredictionEstimate `json:"estimate"`
	Interpretation Interpretation     `json:"interpretation"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ScenarioComparison is the what-if analysis output: the baseline and
// adjusted predictions side by side with the movement between them.
type ScenarioComparison struct {
	Base           PredictionResult `json:"base"`
	Adjusted       PredictionResult `json:"adjusted"`
	DeltaTons      float64          `json:"delta_tons"`
	DeltaPercent   float64          `json:"delta_percent"`
	ComparisonText string           `json:"comparison"`
}

// BatchItemResult reports the outcome of one item in a batch prediction.
// Exactly one of Result and Error is set.
type BatchItemResult struct {
	Index  int               `json:"index"`
	Result *PredictionResult `json:"result,omitempty"`
	Error  *AppError         `json:"error,omitempty"`
}
