// Package handlers contains the HTTP handler implementations for the
// MaizeCast API: prediction submission (single, batch, scenario), history
// retrieval and export, model metadata, and static reference data.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"maizecast/internal/core"
	"maizecast/internal/interpret"
	"maizecast/internal/types"
)

// batchConcurrency caps the number of in-flight predictor calls per batch
// request so one large batch cannot monopolize the upstream model service.
const batchConcurrency = 8

// --- Service Interfaces ---
//
// Defined locally following the handler injection pattern: handlers depend on
// abstractions mirroring the concrete methods they use, not on the full
// implementations.

// Interpreter turns an estimate and its inputs into the interpretation.
// Satisfied by *interpret.Engine.
type Interpreter interface {
	Interpret(estimate types.PredictionEstimate, in types.PlantingInput) types.Interpretation
}

// PredictionMetrics receives prediction telemetry. Nil disables it.
type PredictionMetrics interface {
	RecordPrediction(category types.YieldCategory, district string, duration time.Duration)
	RecordPredictorFailure(code types.ErrorCode)
}

// --- Request Models ---

// PredictionRequest is the request body for POST /v1/predictions and each
// batch item. Struct-tag validation covers vocabulary membership and the
// hard physical bounds; Normalize re-checks the bounds as a second line.
type PredictionRequest struct {
	District     string         `json:"district" validate:"required,district"`
	SoilType     types.SoilType `json:"soil_type" validate:"required,soiltype"`
	Year         int            `json:"year" validate:"required,gte=2011,lte=2030"`
	RainfallMM   float64        `json:"rainfall_mm" validate:"gte=0,lte=2000"`
	TemperatureC float64        `json:"temperature_c" validate:"gte=15,lte=40"`
	HumidityPct  float64        `json:"humidity_pct" validate:"gte=0,lte=100"`
	SunlightHrs  float64        `json:"sunlight_hours" validate:"gte=0,lte=24"`
	SoilMoisture float64        `json:"soil_moisture" validate:"gte=0,lte=1"`
	PestRiskPct  float64        `json:"pest_risk_pct" validate:"gte=0,lte=100"`
	PFJPolicy    bool           `json:"pfj_policy"`
	PriorYield   float64        `json:"prior_yield" validate:"gte=0,lte=10"`
}

// toInput converts the request to the domain input record.
func (r PredictionRequest) toInput() types.PlantingInput {
	return types.PlantingInput{
		District:     r.District,
		SoilType:     r.SoilType,
		Year:         r.Year,
		RainfallMM:   r.RainfallMM,
		TemperatureC: r.TemperatureC,
		HumidityPct:  r.HumidityPct,
		SunlightHrs:  r.SunlightHrs,
		SoilMoisture: r.SoilMoisture,
		PestRiskPct:  r.PestRiskPct,
		PFJPolicy:    r.PFJPolicy,
		PriorYield:   r.PriorYield,
	}
}

// BatchPredictionRequest is the request body for POST /v1/predictions/batch.
type BatchPredictionRequest struct {
	Items []PredictionRequest `json:"items" validate:"required,min=1,dive"`
}

// BatchPredictionResponse reports per-item outcomes plus aggregate counts.
type BatchPredictionResponse struct {
	Results   []types.BatchItemResult `json:"results"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
}

// ScenarioAdjustments is the set of partial overrides applied to the base
// input for what-if analysis. Nil fields keep the base value.
type ScenarioAdjustments struct {
	RainfallMM   *float64 `json:"rainfall_mm,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	HumidityPct  *float64 `json:"humidity_pct,omitempty"`
	SunlightHrs  *float64 `json:"sunlight_hours,omitempty"`
	SoilMoisture *float64 `json:"soil_moisture,omitempty"`
	PestRiskPct  *float64 `json:"pest_risk_pct,omitempty"`
	PFJPolicy    *bool    `json:"pfj_policy,omitempty"`
	PriorYield   *float64 `json:"prior_yield,omitempty"`
}

// apply overlays the adjustments on a copy of the base input.
func (a ScenarioAdjustments) apply(base types.PlantingInput) types.PlantingInput {
	if a.RainfallMM != nil {
		base.RainfallMM = *a.RainfallMM
	}
	if a.TemperatureC != nil {
		base.TemperatureC = *a.TemperatureC
	}
	if a.HumidityPct != nil {
		base.HumidityPct = *a.HumidityPct
	}
	if a.SunlightHrs != nil {
		base.SunlightHrs = *a.SunlightHrs
	}
	if a.SoilMoisture != nil {
		base.SoilMoisture = *a.SoilMoisture
	}
	if a.PestRiskPct != nil {
		base.PestRiskPct = *a.PestRiskPct
	}
	if a.PFJPolicy != nil {
		base.PFJPolicy = *a.PFJPolicy
	}
	if a.PriorYield != nil {
		base.PriorYield = *a.PriorYield
	}
	return base
}

// ScenarioRequest is the request body for POST /v1/predictions/scenario.
type ScenarioRequest struct {
	Base        PredictionRequest   `json:"base" validate:"required"`
	Adjustments ScenarioAdjustments `json:"adjustments"`
}

// --- Handler ---

// PredictionHandler serves the prediction endpoints.
type PredictionHandler struct {
	store     types.HistoryStore
	predictor types.Predictor
	engine    Interpreter
	validator *core.Validator
	metrics   PredictionMetrics
	logger    *slog.Logger
}

// NewPredictionHandler creates a PredictionHandler with the provided
// dependencies. metrics may be nil.
func NewPredictionHandler(
	store types.HistoryStore,
	predictor types.Predictor,
	engine Interpreter,
	v *core.Validator,
	metrics PredictionMetrics,
	l *slog.Logger,
) *PredictionHandler {
	if l == nil {
		l = slog.Default()
	}
	return &PredictionHandler{
		store:     store,
		predictor: predictor,
		engine:    engine,
		validator: v,
		metrics:   metrics,
		logger:    l,
	}
}

// RegisterRoutes mounts the prediction routes on the provided chi.Router.
func (h *PredictionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/predictions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Post("/batch", h.CreateBatch)
		r.Post("/scenario", h.Scenario)
	})
}

// Create handles POST /v1/predictions:
//  1. Decode and validate the request.
//  2. Normalize to the canonical feature vector.
//  3. Obtain the estimate from the predictor.
//  4. Interpret the estimate.
//  5. Persist the record.
//  6. Return 201 Created with the full result.
func (h *PredictionHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PredictionRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.predict(r.Context(), req.toInput())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordPrediction(result.Interpretation.Category, result.Inputs.District, time.Since(start))
	}

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: result})
}

// predict runs the normalize → predict → interpret → save pipeline for one
// input. The input must already have passed struct validation.
func (h *PredictionHandler) predict(ctx context.Context, in types.PlantingInput) (*types.PredictionResult, error) {
	features, err := interpret.Normalize(in)
	if err != nil {
		return nil, err
	}

	estimate, err := h.predictor.Predict(ctx, features)
	if err != nil {
		h.recordPredictorFailure(ctx, err, in.District)
		return nil, err
	}

	interpretation := h.engine.Interpret(*estimate, in)

	record := &types.HistoryRecord{
		Inputs:         in,
		Estimate:       *estimate,
		Interpretation: interpretation,
	}
	id, err := h.store.Save(ctx, record)
	if err != nil {
		return nil, err
	}

	return &types.PredictionResult{
		ID:             id,
		Inputs:         in,
		Estimate:       *estimate,
		Interpretation: interpretation,
		CreatedAt:      record.CreatedAt,
	}, nil
}

// recordPredictorFailure feeds upstream failures into telemetry.
func (h *PredictionHandler) recordPredictorFailure(ctx context.Context, err error, district string) {
	code := types.ErrCodeUpstreamPredictor
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	h.logger.WarnContext(ctx, "predictor call failed",
		"district", district,
		"code", string(code),
		"error", err,
	)
	if h.metrics != nil {
		h.metrics.RecordPredictorFailure(code)
	}
}

// CreateBatch handles POST /v1/predictions/batch. Items are evaluated
// concurrently; one item's failure never aborts the rest. The response is
// always 200 with per-item outcomes in request order.
func (h *PredictionHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchPredictionRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if len(req.Items) > types.MaxBatchItems {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationBatchSize,
			fmt.Sprintf("batch holds %d items, maximum is %d", len(req.Items), types.MaxBatchItems),
			nil,
		))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	results := make([]types.BatchItemResult, len(req.Items))

	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchConcurrency)
	for i, item := range req.Items {
		g.Go(func() error {
			result, err := h.predict(ctx, item.toInput())
			if err != nil {
				results[i] = types.BatchItemResult{Index: i, Error: asAppError(err)}
				return nil
			}
			results[i] = types.BatchItemResult{Index: i, Result: result}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // item errors are captured per slot, never returned

	resp := BatchPredictionResponse{Results: results}
	for _, res := range results {
		if res.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: resp})
}

// Scenario handles POST /v1/predictions/scenario: predict the base input and
// the adjusted input, interpret both, and report the movement between them.
// Scenario results are transient and never persisted.
func (h *PredictionHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req.Base); err != nil {
		core.Error(w, r, err)
		return
	}

	baseInput := req.Base.toInput()
	adjustedInput := req.Adjustments.apply(baseInput)

	base, err := h.interpretOnly(r.Context(), baseInput)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	adjusted, err := h.interpretOnly(r.Context(), adjustedInput)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	delta := adjusted.Estimate.PointValue - base.Estimate.PointValue
	deltaPct := 0.0
	if base.Estimate.PointValue != 0 {
		deltaPct = delta / base.Estimate.PointValue * 100
	}

	comparison := types.ScenarioComparison{
		Base:           *base,
		Adjusted:       *adjusted,
		DeltaTons:      math.Round(delta*100) / 100,
		DeltaPercent:   math.Round(deltaPct*10) / 10,
		ComparisonText: interpret.ScenarioNarrative(base.Estimate.PointValue, adjusted.Estimate.PointValue),
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: comparison})
}

// interpretOnly runs normalize → predict → interpret without persisting.
func (h *PredictionHandler) interpretOnly(ctx context.Context, in types.PlantingInput) (*types.PredictionResult, error) {
	features, err := interpret.Normalize(in)
	if err != nil {
		return nil, err
	}

	estimate, err := h.predictor.Predict(ctx, features)
	if err != nil {
		h.recordPredictorFailure(ctx, err, in.District)
		return nil, err
	}

	return &types.PredictionResult{
		Inputs:         in,
		Estimate:       *estimate,
		Interpretation: h.engine.Interpret(*estimate, in),
	}, nil
}

// asAppError coerces any error into an AppError for the wire format.
func asAppError(err error) *types.AppError {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return types.NewAppError(types.ErrCodeInternalUnexpected, err.Error(), err)
}
