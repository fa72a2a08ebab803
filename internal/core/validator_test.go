package core

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"maizecast/internal/types"
)

type plantingRequest struct {
	District  string  `json:"district" validate:"required,district"`
	SoilType  string  `json:"soil_type" validate:"required,soiltype"`
	Rainfall  float64 `json:"rainfall_mm" validate:"gte=0,lte=2000"`
	PestRisk  float64 `json:"pest_risk" validate:"gte=0,lte=100"`
	SowMonth  string  `json:"sow_month" validate:"omitempty,oneof=march april may june"`
	Reference string  `json:"-" validate:"omitempty"`
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}
	return v
}

func validRequest() plantingRequest {
	return plantingRequest{
		District: "Tamale",
		SoilType: "Forest Ochrosol",
		Rainfall: 850,
		PestRisk: 20,
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	v := newTestValidator(t)
	if err := v.ValidateStruct(validRequest()); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func asAppError(t *testing.T, err error) *types.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error is %T, want *types.AppError", err)
	}
	return appErr
}

func TestValidateStruct_UnknownDistrict(t *testing.T) {
	v := newTestValidator(t)
	req := validRequest()
	req.District = "Atlantis"

	appErr := asAppError(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationUnknownDistrict {
		t.Errorf("code = %q, want validation_unknown_district", appErr.Code)
	}
	if _, ok := appErr.Details["district"]; !ok {
		t.Errorf("details should use the json field name: %v", appErr.Details)
	}
}

func TestValidateStruct_UnknownSoilType(t *testing.T) {
	v := newTestValidator(t)
	req := validRequest()
	req.SoilType = "martian regolith"

	appErr := asAppError(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationUnknownSoil {
		t.Errorf("code = %q, want validation_unknown_soil_type", appErr.Code)
	}
}

func TestValidateStruct_MissingRequiredField(t *testing.T) {
	v := newTestValidator(t)
	req := validRequest()
	req.District = ""

	appErr := asAppError(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationMissingField {
		t.Errorf("code = %q, want validation_missing_required_field", appErr.Code)
	}
	if appErr.Details["district"] != "is required" {
		t.Errorf("details = %v", appErr.Details)
	}
}

func TestValidateStruct_OutOfRange(t *testing.T) {
	v := newTestValidator(t)
	req := validRequest()
	req.Rainfall = 5000

	appErr := asAppError(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationOutOfRange {
		t.Errorf("code = %q, want validation_out_of_range", appErr.Code)
	}
	if appErr.Details["rainfall_mm"] != "must be at most 2000" {
		t.Errorf("details = %v", appErr.Details)
	}
}

func TestValidateStruct_OneOf(t *testing.T) {
	v := newTestValidator(t)
	req := validRequest()
	req.SowMonth = "december"

	appErr := asAppError(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationFailed {
		t.Errorf("code = %q, want validation_failed", appErr.Code)
	}
}

func TestValidateStruct_CollectsAllFailures(t *testing.T) {
	v := newTestValidator(t)
	req := plantingRequest{District: "Atlantis", SoilType: "granite", Rainfall: -5}

	appErr := asAppError(t, v.ValidateStruct(req))
	if len(appErr.Details) != 3 {
		t.Errorf("details list %d fields, want 3: %v", len(appErr.Details), appErr.Details)
	}
}

func TestValidateStruct_AllKnownDistrictsPass(t *testing.T) {
	v := newTestValidator(t)
	for _, district := range []string{"Tamale", "Wa", "Bolgatanga", "Techiman", "Ho"} {
		req := validRequest()
		req.District = district
		if err := v.ValidateStruct(req); err != nil {
			t.Errorf("district %q rejected: %v", district, err)
		}
	}
}

func TestValidateStruct_NonStructValue(t *testing.T) {
	v := newTestValidator(t)

	appErr := asAppError(t, v.ValidateStruct("not a struct"))
	if appErr.Code != types.ErrCodeInternalUnexpected {
		t.Errorf("code = %q, want internal_unexpected_error", appErr.Code)
	}
}
