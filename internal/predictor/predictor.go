package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"maizecast/internal/types"
)

// defaultPestThreshold is the pest-risk percent at or above which the wire
// payload reports pest presence when the configuration does not specify one.
const defaultPestThreshold = 50.0

// Config holds the settings for constructing a predictor. An empty BaseURL
// selects the stub implementation, which is only acceptable for local
// development.
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration

	// PestBinarizeThreshold is the pest-risk percent at or above which the
	// encoded payload reports pest presence. The model was trained on a
	// binary pest flag.
	PestBinarizeThreshold float64

	Logger *slog.Logger
}

// New returns the predictor selected by cfg: an HTTPPredictor when BaseURL is
// set, otherwise the deterministic stub.
func New(cfg Config, opts ...ClientOption) types.Predictor {
	if cfg.BaseURL == "" {
		return NewStubPredictor(cfg.Logger)
	}
	return NewHTTPPredictor(cfg, opts...)
}

// predictRequest is the wire payload sent to the model service. Base and
// derived features travel together; PestPresent carries the binarized pest
// flag the model was trained on, not the raw percent.
type predictRequest struct {
	Year         float64 `json:"year"`
	RainfallMM   float64 `json:"rainfall_mm"`
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	SunlightHrs  float64 `json:"sunlight_hours"`
	SoilMoisture float64 `json:"soil_moisture"`
	PestPresent  float64 `json:"pest_present"`
	PolicyActive float64 `json:"pfj_policy"`
	PriorYield   float64 `json:"prior_yield"`

	GrowingDegreeDays  float64 `json:"growing_degree_days"`
	WaterAvailability  float64 `json:"water_availability"`
	ClimateStress      float64 `json:"climate_stress"`
	MoistureTempRatio  float64 `json:"moisture_temp_ratio"`
	RainfallPerSunHour float64 `json:"rainfall_per_sun_hour"`
	YearsSincePolicy   float64 `json:"years_since_policy"`
}

// predictResponse is the model service's answer for one feature payload.
type predictResponse struct {
	PredictedYield float64  `json:"predicted_yield"`
	LowerBound     float64  `json:"lower_bound"`
	UpperBound     float64  `json:"upper_bound"`
	ModelVersion   string   `json:"model_version"`
	RiskFactors    []string `json:"risk_factors"`
}

// errorResponse is the model service's error body shape.
type errorResponse struct {
	Detail string `json:"detail"`
}

// HTTPPredictor implements types.Predictor by calling the model service over
// HTTP through the resilient client. Failures surface as upstream_* or
// validation_invalid_feature_set AppErrors; no fallback estimate is ever
// fabricated.
type HTTPPredictor struct {
	base          *resilientClient
	baseURL       string
	apiKey        string
	pestThreshold float64
	logger        *slog.Logger
}

// NewHTTPPredictor creates an HTTPPredictor from cfg. The HTTP client timeout
// bounds each attempt; retries and circuit breaking sit on top of it.
func NewHTTPPredictor(cfg Config, opts ...ClientOption) *HTTPPredictor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	policy := DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryBaseDelay > 0 {
		policy.MinWait = cfg.RetryBaseDelay
	}

	threshold := cfg.PestBinarizeThreshold
	if threshold <= 0 {
		threshold = defaultPestThreshold
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := newResilientClient(
		&http.Client{Timeout: timeout},
		"model-service",
		policy,
		"MaizeCast/1.0",
		opts...,
	)

	return &HTTPPredictor{
		base:          base,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		pestThreshold: threshold,
		logger:        logger,
	}
}

// encode converts a FeatureVector to the wire payload, binarizing pest risk
// at the configured threshold.
func (p *HTTPPredictor) encode(features types.FeatureVector) predictRequest {
	pest := 0.0
	if features.PestRisk >= p.pestThreshold {
		pest = 1.0
	}

	return predictRequest{
		Year:         features.Year,
		RainfallMM:   features.RainfallMM,
		TemperatureC: features.TemperatureC,
		HumidityPct:  features.HumidityPct,
		SunlightHrs:  features.SunlightHrs,
		SoilMoisture: features.SoilMoisture,
		PestPresent:  pest,
		PolicyActive: features.PolicyActive,
		PriorYield:   features.PriorYield,

		GrowingDegreeDays:  features.GrowingDegreeDays,
		WaterAvailability:  features.WaterAvailability,
		ClimateStress:      features.ClimateStress,
		MoistureTempRatio:  features.MoistureTempRatio,
		RainfallPerSunHour: features.RainfallPerSunHour,
		YearsSincePolicy:   features.YearsSincePolicy,
	}
}

// Predict implements types.Predictor. It POSTs the encoded features to
// /predict and validates the interval invariant on the way back.
func (p *HTTPPredictor) Predict(ctx context.Context, features types.FeatureVector) (*types.PredictionEstimate, error) {
	bodyBytes, err := json.Marshal(p.encode(features))
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to serialize feature payload",
			err,
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create predict request",
			err,
		)
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	resp, err := p.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The resilient client returns 4xx responses (other than 429) as-is.
	if resp.StatusCode >= 400 {
		return nil, p.handleErrorResponse(resp)
	}

	var wire predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamPredictor,
			"failed to decode model service response",
			err,
		)
	}

	est := &types.PredictionEstimate{
		PointValue:   wire.PredictedYield,
		LowerBound:   wire.LowerBound,
		UpperBound:   wire.UpperBound,
		ModelVersion: wire.ModelVersion,
		RiskFactors:  wire.RiskFactors,
	}

	if est.LowerBound > est.PointValue || est.PointValue > est.UpperBound || est.LowerBound < 0 {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamPredictor,
			fmt.Sprintf("model service returned an invalid interval [%.2f, %.2f] around %.2f",
				est.LowerBound, est.UpperBound, est.PointValue),
			nil,
		)
	}

	return est, nil
}

// ModelInfo implements types.Predictor via GET /model.
func (p *HTTPPredictor) ModelInfo(ctx context.Context) (*types.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/model", nil)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create model info request",
			err,
		)
	}
	p.authorize(req)

	resp, err := p.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, p.handleErrorResponse(resp)
	}

	var info types.ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamPredictor,
			"failed to decode model info response",
			err,
		)
	}

	return &info, nil
}

// authorize attaches the API key when one is configured.
func (p *HTTPPredictor) authorize(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}

// handleErrorResponse maps a non-retryable error status to a domain error.
// The model service rejects malformed feature payloads with 400/422; those
// surface as validation errors so clients see a 400, not a 503.
func (p *HTTPPredictor) handleErrorResponse(resp *http.Response) *types.AppError {
	var body errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	detail := body.Detail
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return types.NewAppError(
			types.ErrCodeValidationFeatureSet,
			"model service rejected the feature payload: "+detail,
			nil,
		)
	default:
		return types.NewAppError(
			types.ErrCodeUpstreamPredictor,
			fmt.Sprintf("model service returned %d: %s", resp.StatusCode, detail),
			nil,
		)
	}
}
