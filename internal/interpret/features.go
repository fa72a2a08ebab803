// Package interpret is the prediction interpretation engine: it normalizes
// display-unit planting inputs into the canonical feature vector, classifies
// yield estimates, resolves confidence from uncertainty intervals, and
// synthesizes explanations, recommendations, and risk factors.
//
// Every function in this package is a pure transformation over its arguments;
// nothing here performs I/O or touches shared state, so all of it is safe to
// call from concurrent request handlers without locks.
package interpret

import (
	"maizecast/internal/types"
)

// Normalize converts a display-unit PlantingInput into the canonical
// FeatureVector consumed by the predictor, validating every numeric field
// against its declared physical range first. Derived features are computed
// from the validated base fields; identical inputs always produce a
// bit-for-bit identical vector.
func Normalize(in types.PlantingInput) (types.FeatureVector, error) {
	checks := []struct {
		field string
		value float64
	}{
		{types.FieldYear, float64(in.Year)},
		{types.FieldRainfallMM, in.RainfallMM},
		{types.FieldTemperatureC, in.TemperatureC},
		{types.FieldHumidityPct, in.HumidityPct},
		{types.FieldSunlightHrs, in.SunlightHrs},
		{types.FieldSoilMoisture, in.SoilMoisture},
		{types.FieldPestRiskPct, in.PestRiskPct},
		{types.FieldPriorYield, in.PriorYield},
	}
	for _, c := range checks {
		if err := types.CheckRange(c.field, c.value); err != nil {
			return types.FeatureVector{}, err
		}
	}

	fv := types.FeatureVector{
		Year:         float64(in.Year),
		RainfallMM:   in.RainfallMM,
		TemperatureC: in.TemperatureC,
		HumidityPct:  in.HumidityPct,
		SunlightHrs:  in.SunlightHrs,
		SoilMoisture: in.SoilMoisture,
		PestRisk:     in.PestRiskPct,
		PolicyActive: encodeBool(in.PFJPolicy),
		PriorYield:   in.PriorYield,
	}
	deriveFeatures(&fv)
	return fv, nil
}

// Denormalize recovers the display-unit input from a feature vector. District
// and soil type are not part of the numeric vector and come back empty; all
// numeric fields round-trip exactly. Inverse of Normalize for valid vectors.
func Denormalize(fv types.FeatureVector) types.PlantingInput {
	return types.PlantingInput{
		Year:         int(fv.Year),
		RainfallMM:   fv.RainfallMM,
		TemperatureC: fv.TemperatureC,
		HumidityPct:  fv.HumidityPct,
		SunlightHrs:  fv.SunlightHrs,
		SoilMoisture: fv.SoilMoisture,
		PestRiskPct:  fv.PestRisk,
		PFJPolicy:    fv.PolicyActive >= 0.5,
		PriorYield:   fv.PriorYield,
	}
}

// deriveFeatures fills in the engineered features from the base fields.
// Denominators are offset by +1 so zero-valued inputs never divide by zero;
// this matches how the model was trained and must not be "fixed".
func deriveFeatures(fv *types.FeatureVector) {
	fv.GrowingDegreeDays = fv.TemperatureC * fv.SunlightHrs
	fv.WaterAvailability = fv.RainfallMM * fv.SoilMoisture
	fv.ClimateStress = fv.TemperatureC / (fv.HumidityPct + 1)
	fv.MoistureTempRatio = fv.SoilMoisture / (fv.TemperatureC + 1)
	fv.RainfallPerSunHour = fv.RainfallMM / (fv.SunlightHrs + 1)

	fv.YearsSincePolicy = 0
	if fv.PolicyActive >= 0.5 {
		years := fv.Year - types.PolicyBaselineYear
		if years > 0 {
			fv.YearsSincePolicy = years
		}
	}
}

func encodeBool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
