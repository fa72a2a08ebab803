package interpret

import (
	"fmt"
	"math"

	"maizecast/internal/types"
)

// maxRecommendations caps the list length. Each of the eight rule groups
// contributes at most one entry, so the cap is a safety bound rather than an
// active filter.
const maxRecommendations = 8

// ruleFunc evaluates one condition rule group. ok=false means the group has
// nothing to say for these inputs.
type ruleFunc func(in types.PlantingInput, predicted float64) (text string, ok bool)

// rule pairs a group tag with its evaluator.
type rule struct {
	group types.RecommendationGroup
	eval  ruleFunc
}

// rules lists the eight condition groups in evaluation order. The order IS
// the output priority: water and soil issues always precede policy and trend
// commentary. Never reorder by severity or any other computed heuristic.
var rules = []rule{
	{types.GroupWater, waterRule},
	{types.GroupSoil, soilRule},
	{types.GroupTemperature, temperatureRule},
	{types.GroupSunlight, sunlightRule},
	{types.GroupPest, pestRule},
	{types.GroupPolicy, policyRule},
	{types.GroupYieldLevel, yieldLevelRule},
	{types.GroupTrend, trendRule},
}

// Recommend evaluates all rule groups against the planting inputs and the
// predicted yield, returning the ordered recommendation list and the tags of
// any groups whose evaluation panicked. A panicking group contributes no
// entry but never aborts the rest of the list; the caller must log the
// suppressed tags so the failure is not silently discarded.
func Recommend(in types.PlantingInput, predicted float64) (types.RecommendationList, []types.RecommendationGroup) {
	recs := make(types.RecommendationList, 0, len(rules))
	var suppressed []types.RecommendationGroup

	for _, r := range rules {
		text, ok, panicked := evalRule(r, in, predicted)
		if panicked {
			suppressed = append(suppressed, r.group)
			continue
		}
		if ok {
			recs = append(recs, types.Recommendation{Group: r.group, Text: text})
		}
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs, suppressed
}

// evalRule runs one group with panic isolation.
func evalRule(r rule, in types.PlantingInput, predicted float64) (text string, ok, panicked bool) {
	defer func() {
		if recover() != nil {
			text, ok, panicked = "", false, true
		}
	}()
	text, ok = r.eval(in, predicted)
	return text, ok, false
}

// Each group below is a threshold ladder evaluated top to bottom; the first
// matching band wins and the group emits at most one entry.

func waterRule(in types.PlantingInput, _ float64) (string, bool) {
	switch {
	case in.RainfallMM < 500:
		return fmt.Sprintf("Critical water shortage (%.0fmm): arrange supplementary irrigation before planting; rainfall this low cannot carry maize through tasseling.", in.RainfallMM), true
	case in.RainfallMM < 600:
		return "Rainfall is below the optimal 600-1000mm band: plan supplementary irrigation during dry spells to protect grain fill.", true
	case in.RainfallMM > 1000:
		return fmt.Sprintf("Excess rainfall (%.0fmm) risks waterlogging and nutrient leaching: improve field drainage and consider raised beds.", in.RainfallMM), true
	default:
		return "Rainfall is in the adequate 600-1000mm range: maintain the current water management plan.", true
	}
}

func soilRule(in types.PlantingInput, _ float64) (string, bool) {
	switch {
	case in.SoilMoisture < 0.4:
		return "Soil is very dry: work in organic matter and mulch to improve water retention before planting.", true
	case in.SoilMoisture < 0.5:
		return "Soil moisture is tighter than ideal: mulch between rows to cut evaporation losses.", true
	case in.SoilMoisture > 0.8:
		return "Soil is near saturation: check field drainage to head off root rot and nitrogen loss.", true
	default:
		return "Soil moisture is in the ideal band: no intervention needed beyond routine checks.", true
	}
}

func temperatureRule(in types.PlantingInput, _ float64) (string, bool) {
	switch {
	case in.TemperatureC > 32:
		return fmt.Sprintf("Heat stress at %.0f°C: mulch to cool the root zone and favor heat-tolerant varieties.", in.TemperatureC), true
	case in.TemperatureC < 18:
		return "Temperatures are below the maize comfort range: delay planting until soils warm past 18°C.", true
	default:
		return "Temperatures are favorable for maize development: no adjustment needed.", true
	}
}

func sunlightRule(in types.PlantingInput, _ float64) (string, bool) {
	switch {
	case in.SunlightHrs < 5:
		return "Sunlight is low: avoid shaded plots and widen row spacing so the canopy captures more light.", true
	case in.SunlightHrs < 6:
		return "Sunlight hours are borderline: monitor canopy density and thin if growth is leggy.", true
	default:
		return "Excellent sunlight for photosynthesis: current exposure supports full yield potential.", true
	}
}

func pestRule(in types.PlantingInput, _ float64) (string, bool) {
	switch {
	case in.PestRiskPct > 50:
		return "High pest pressure: start integrated pest management now and consider resistant maize varieties.", true
	case in.PestRiskPct > 25:
		return "Moderate pest risk: scout fields weekly and treat hotspots before they spread.", true
	default:
		return "Pest pressure is low: continue routine scouting through the season.", true
	}
}

func policyRule(in types.PlantingInput, _ float64) (string, bool) {
	if in.PFJPolicy {
		return "You are enrolled in the PFJ programme: collect the subsidized fertilizer and certified seed allocations on schedule.", true
	}
	return "Consider enrolling in the Planting for Food and Jobs programme for subsidized inputs and extension support.", true
}

func yieldLevelRule(_ types.PlantingInput, predicted float64) (string, bool) {
	switch {
	case predicted < 1.5:
		return "Projected yield is well below average: consult your district extension officer to review soil fertility and management.", true
	case predicted >= 3.0:
		return "Outstanding projection: document your practices and share them with neighboring farms.", true
	case predicted >= 2.5:
		return "Strong projection: fine-tune fertilizer timing to push toward the 3 tons/ha mark.", true
	default:
		// Yields between 1.5 and 2.5 need no level-specific guidance.
		return "", false
	}
}

func trendRule(in types.PlantingInput, predicted float64) (string, bool) {
	drop := in.PriorYield - predicted
	switch {
	case drop > 0.5:
		return "Projected yield is declining sharply from last season: review what changed in inputs or management before planting.", true
	case math.Round(drop*100)/100 <= -0.3:
		// Display-precision rounding on the improving side only, so gains
		// like 2.1 to 2.4 that float to a hair under 0.3 still count as
		// improving. The declining comparison stays exact.
		return "Yield is trending upward from last season: keep the practices that drove the improvement.", true
	default:
		return "", false
	}
}
