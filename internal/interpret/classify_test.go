package interpret

import (
	"math"
	"testing"

	"maizecast/internal/types"
)

func TestClassify_Bands(t *testing.T) {
	tests := []struct {
		yield float64
		want  types.YieldCategory
	}{
		{-1.0, types.CategoryCritical},
		{0.0, types.CategoryCritical},
		{0.99, types.CategoryCritical},
		{1.2, types.CategoryLow},
		{1.3, types.CategoryLow},
		{1.7, types.CategoryModerate},
		{2.2, types.CategoryGood},
		{2.4, types.CategoryGood},
		{2.7, types.CategoryVeryGood},
		{3.5, types.CategoryExcellent},
		{100.0, types.CategoryExcellent},
	}

	for _, tt := range tests {
		if got := Classify(tt.yield); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.yield, got, tt.want)
		}
	}
}

// Boundary values belong to the upper band: exactly 1.5 is Moderate, not Low.
func TestClassify_BoundariesClassifyUpward(t *testing.T) {
	tests := []struct {
		yield float64
		want  types.YieldCategory
	}{
		{1.0, types.CategoryLow},
		{1.5, types.CategoryModerate},
		{2.0, types.CategoryGood},
		{2.5, types.CategoryVeryGood},
		{3.0, types.CategoryExcellent},
	}

	for _, tt := range tests {
		if got := Classify(tt.yield); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q (boundary must go to upper band)", tt.yield, got, tt.want)
		}
	}
}

// The bands partition the real line: sweeping a fine grid must always land
// in exactly one category, with no value unclassified.
func TestClassify_TotalOverSweep(t *testing.T) {
	for v := -2.0; v <= 6.0; v += 0.01 {
		cat := Classify(v)
		if cat == "" {
			t.Fatalf("Classify(%v) returned empty category", v)
		}
		if cat.Emoji() == "" {
			t.Fatalf("category %q for yield %v has no emoji", cat, v)
		}
	}
}

func TestClassify_Infinity(t *testing.T) {
	if got := Classify(math.Inf(1)); got != types.CategoryExcellent {
		t.Errorf("Classify(+Inf) = %q, want Excellent", got)
	}
	if got := Classify(math.Inf(-1)); got != types.CategoryCritical {
		t.Errorf("Classify(-Inf) = %q, want Critical", got)
	}
}
