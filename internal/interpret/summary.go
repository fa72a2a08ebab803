package interpret

import (
	"fmt"
)

// Confidence bands for summary phrasing. Thresholds are on the 0-1 fraction,
// not the display percent.
const (
	veryConfidentAt = 0.85
	confidentAt     = 0.70
)

// Summarize produces the one-sentence confidence statement for a prediction.
// The confidence argument is the 0-1 fraction from Confidence.
func Summarize(yield, confidence float64) string {
	percent := ConfidencePercent(confidence)
	switch {
	case confidence >= veryConfidentAt:
		return fmt.Sprintf("We are very confident in this prediction: expected yield is %.2f tons/ha (%d%% confidence).", yield, percent)
	case confidence >= confidentAt:
		return fmt.Sprintf("We are confident in this prediction: expected yield is %.2f tons/ha (%d%% confidence).", yield, percent)
	default:
		return fmt.Sprintf("This is an estimate of %.2f tons/ha (%d%% confidence); treat it as indicative rather than definitive.", yield, percent)
	}
}
