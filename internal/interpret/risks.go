package interpret

import (
	"maizecast/internal/types"
)

// RiskFactors flags the input conditions that threaten the estimate. These
// mirror the factors the predictor reports for conditions it can see, so the
// engine still produces risk output when the upstream list is empty.
func RiskFactors(in types.PlantingInput) types.StringList {
	var risks types.StringList

	switch {
	case in.RainfallMM < 600:
		risks = append(risks, "Below optimal rainfall (< 600mm)")
	case in.RainfallMM > 1000:
		risks = append(risks, "Excessive rainfall (> 1000mm)")
	}

	switch {
	case in.TemperatureC > 30:
		risks = append(risks, "High temperature stress (> 30°C)")
	case in.TemperatureC < 20:
		risks = append(risks, "Low temperature (< 20°C)")
	}

	if in.SoilMoisture < 0.5 {
		risks = append(risks, "Low soil moisture (< 0.5)")
	}

	if in.PestRiskPct > 50 {
		risks = append(risks, "Elevated pest risk detected")
	}

	if in.HumidityPct > 85 {
		risks = append(risks, "High humidity - increased disease risk")
	}

	return risks
}

// mergeRiskFactors appends upstream factors the engine did not already
// derive locally, preserving order within each source.
func mergeRiskFactors(local types.StringList, upstream []string) types.StringList {
	seen := make(map[string]bool, len(local))
	for _, r := range local {
		seen[r] = true
	}
	merged := local
	for _, r := range upstream {
		if !seen[r] {
			merged = append(merged, r)
			seen[r] = true
		}
	}
	return merged
}
