package types

import (
	"fmt"
)

// Hard physical bounds for planting inputs. These are the validation limits
// enforced at the API boundary; advisory (agronomically optimal) ranges are
// served separately by the reference data endpoints.
const (
	MinYear         = 2011
	MaxYear         = 2030
	MinRainfallMM   = 0.0
	MaxRainfallMM   = 2000.0
	MinTemperatureC = 15.0
	MaxTemperatureC = 40.0
	MinHumidityPct  = 0.0
	MaxHumidityPct  = 100.0
	MinSunlightHrs  = 0.0
	MaxSunlightHrs  = 24.0
	MinSoilMoisture = 0.0
	MaxSoilMoisture = 1.0
	MinPestRiskPct  = 0.0
	MaxPestRiskPct  = 100.0
	MinPriorYield   = 0.0
	MaxPriorYield   = 10.0

	// MaxBatchItems caps the number of inputs in one batch prediction call.
	MaxBatchItems = 50

	// PolicyBaselineYear is the year the PFJ programme started. YearsSincePolicy
	// is measured from here for enrolled inputs.
	PolicyBaselineYear = 2017
)

// Canonical wire names for the numeric planting input fields. Validation
// errors and range metadata refer to fields by these names.
const (
	FieldYear         = "year"
	FieldRainfallMM   = "rainfall_mm"
	FieldTemperatureC = "temperature_c"
	FieldHumidityPct  = "humidity_pct"
	FieldSunlightHrs  = "sunlight_hours"
	FieldSoilMoisture = "soil_moisture"
	FieldPestRiskPct  = "pest_risk_pct"
	FieldPriorYield   = "prior_yield"
)

// FieldRange describes the validation bounds for one numeric input field.
type FieldRange struct {
	Field string  `json:"field"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Unit  string  `json:"unit"`
}

// InputRanges defines the authoritative bounds for every numeric planting
// input, in a fixed display order. All components MUST validate against
// these ranges rather than local literals.
var InputRanges = []FieldRange{
	{Field: FieldYear, Min: MinYear, Max: MaxYear, Unit: "year"},
	{Field: FieldRainfallMM, Min: MinRainfallMM, Max: MaxRainfallMM, Unit: "mm"},
	{Field: FieldTemperatureC, Min: MinTemperatureC, Max: MaxTemperatureC, Unit: "celsius"},
	{Field: FieldHumidityPct, Min: MinHumidityPct, Max: MaxHumidityPct, Unit: "percent"},
	{Field: FieldSunlightHrs, Min: MinSunlightHrs, Max: MaxSunlightHrs, Unit: "hours"},
	{Field: FieldSoilMoisture, Min: MinSoilMoisture, Max: MaxSoilMoisture, Unit: "fraction"},
	{Field: FieldPestRiskPct, Min: MinPestRiskPct, Max: MaxPestRiskPct, Unit: "percent"},
	{Field: FieldPriorYield, Min: MinPriorYield, Max: MaxPriorYield, Unit: "tons_per_ha"},
}

// RangeFor returns the declared bounds for a field name.
func RangeFor(field string) (FieldRange, bool) {
	for _, r := range InputRanges {
		if r.Field == field {
			return r, true
		}
	}
	return FieldRange{}, false
}

// CheckRange validates a single value against its declared field bounds.
// Returns a validation_out_of_range AppError naming the field and limits.
func CheckRange(field string, value float64) error {
	r, ok := RangeFor(field)
	if !ok {
		return NewAppError(ErrCodeValidationFailed, fmt.Sprintf("unknown input field %q", field), nil)
	}
	if value < r.Min || value > r.Max {
		return NewAppErrorWithDetails(
			ErrCodeValidationOutOfRange,
			fmt.Sprintf("%s %.2f outside valid range [%.2f, %.2f]", field, value, r.Min, r.Max),
			nil,
			map[string]any{"field": field, "value": value, "min": r.Min, "max": r.Max},
		)
	}
	return nil
}

// IsKnownSoilType reports whether the label names one of the soil classes
// the model was trained on.
func IsKnownSoilType(label SoilType) bool {
	for _, s := range AllSoilTypes {
		if s == label {
			return true
		}
	}
	return false
}
