package interpret

import (
	"math"

	"maizecast/internal/types"
)

// DefaultMaxExpectedRange is the widest uncertainty interval, in tons/ha,
// considered practically uninformative. Intervals at or beyond this width
// floor the confidence score. Heuristic, not calibrated; overridable through
// EngineConfig.
const DefaultMaxExpectedRange = 2.0

// Confidence floor and ceiling. Even an uninformative interval reports 50%
// rather than 0% because the point estimate itself still carries signal.
const (
	confidenceFloor = 0.5
	confidenceCeil  = 1.0
)

// Confidence converts an uncertainty interval into a bounded confidence
// fraction: 1 - width/maxExpectedRange, clamped to [0.5, 1.0] and rounded to
// two decimal places. A zero-width interval saturates at the ceiling. The
// score is monotonically non-increasing in interval width.
//
// Pass maxExpectedRange <= 0 to use DefaultMaxExpectedRange.
func Confidence(est types.PredictionEstimate, maxExpectedRange float64) float64 {
	if maxExpectedRange <= 0 {
		maxExpectedRange = DefaultMaxExpectedRange
	}
	c := 1 - est.IntervalWidth()/maxExpectedRange
	if c < confidenceFloor {
		c = confidenceFloor
	}
	if c > confidenceCeil {
		c = confidenceCeil
	}
	return math.Round(c*100) / 100
}

// ConfidencePercent converts a confidence fraction to the integer percent
// shown to users.
func ConfidencePercent(confidence float64) int {
	return int(math.Round(confidence * 100))
}
