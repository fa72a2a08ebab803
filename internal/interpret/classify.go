package interpret

import (
	"math"

	"maizecast/internal/types"
)

// yieldBands is the single source of truth for category boundaries, scanned
// in ascending order. A yield belongs to the first band whose upper bound
// strictly exceeds it, so boundary values (exactly 1.5, say) classify into
// the upper band.
var yieldBands = []struct {
	upper    float64
	category types.YieldCategory
}{
	{1.0, types.CategoryCritical},
	{1.5, types.CategoryLow},
	{2.0, types.CategoryModerate},
	{2.5, types.CategoryGood},
	{3.0, types.CategoryVeryGood},
	{math.Inf(1), types.CategoryExcellent},
}

// Classify maps a yield estimate in tons/ha to its category. Total over all
// finite inputs: every value lands in exactly one band.
func Classify(yield float64) types.YieldCategory {
	for _, band := range yieldBands {
		if yield < band.upper {
			return band.category
		}
	}
	// Unreachable for finite inputs; +Inf and NaN fall through here.
	return types.CategoryExcellent
}
