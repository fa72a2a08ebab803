package interpret

import (
	"fmt"
	"math"

	"maizecast/internal/types"
)

// explainTemplates holds the narrative opener for each yield category. The
// verb %s slot receives the change clause built by changeClause.
var explainTemplates = map[types.YieldCategory]string{
	types.CategoryCritical:  "Critical yield alert: the model projects only %.2f tons/ha, far below what a maize farm needs to break even. This is %s. Immediate intervention is needed before planting.",
	types.CategoryLow:       "The projected yield of %.2f tons/ha is below the national average. This is %s. Reviewing water, soil, and pest conditions now can still recover part of the gap.",
	types.CategoryModerate:  "The model projects a moderate yield of %.2f tons/ha, close to typical output for the region. This is %s. Targeted improvements could lift the farm into the good range.",
	types.CategoryGood:      "A good season is projected at %.2f tons/ha, above the national average. This is %s. Current management is working; keep conditions stable through the season.",
	types.CategoryVeryGood:  "A very good yield of %.2f tons/ha is projected, well above typical output. This is %s. Fine-tuning inputs could push the farm toward an excellent result.",
	types.CategoryExcellent: "An excellent yield of %.2f tons/ha is projected, among the best outcomes the model produces. This is %s. These conditions and practices are worth documenting and repeating.",
}

// Explain produces the single-paragraph narrative comparing the projected
// yield against the prior season. Template selection follows the same bands
// as Classify. Pure; no I/O.
func Explain(current, prior float64) string {
	tmpl := explainTemplates[Classify(current)]
	return fmt.Sprintf(tmpl, current, changeClause(current, prior))
}

// changeClause describes the season-over-season movement. A zero prior yield
// has no meaningful baseline, so the clause reports no change rather than
// dividing by zero.
func changeClause(current, prior float64) string {
	if prior == 0 {
		return "a 0% change, as no prior-season yield is available for comparison"
	}
	percent := (current - prior) / prior * 100
	direction := "increase"
	if percent < 0 {
		direction = "decrease"
	}
	return fmt.Sprintf("a %d%% %s from last season's %.2f tons/ha",
		int(math.Round(math.Abs(percent))), direction, prior)
}

// ScenarioNarrative is the one-sentence comparison for what-if analysis:
// how the adjusted scenario's projection moves relative to the baseline.
func ScenarioNarrative(baseYield, adjustedYield float64) string {
	delta := adjustedYield - baseYield
	switch {
	case delta == 0:
		return fmt.Sprintf("The adjusted scenario projects the same yield as the baseline (%.2f tons/ha).", baseYield)
	case baseYield == 0:
		return fmt.Sprintf("The adjusted scenario projects %.2f tons/ha against a zero-yield baseline.", adjustedYield)
	}
	direction := "higher"
	if delta < 0 {
		direction = "lower"
	}
	percent := int(math.Round(math.Abs(delta) / baseYield * 100))
	return fmt.Sprintf("The adjusted scenario projects %.2f tons/ha, %.2f tons/ha (%d%%) %s than the baseline of %.2f tons/ha.",
		adjustedYield, math.Abs(delta), percent, direction, baseYield)
}
