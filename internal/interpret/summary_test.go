package interpret

import (
	"strings"
	"testing"
)

func TestSummarize_Bands(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       string
	}{
		{"ceiling", 1.0, "very confident"},
		{"at very-confident threshold", 0.85, "very confident"},
		{"just under very-confident", 0.84, "We are confident"},
		{"at confident threshold", 0.70, "We are confident"},
		{"just under confident", 0.69, "estimate"},
		{"floor", 0.5, "estimate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(2.35, tt.confidence)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Summarize(2.35, %v) = %q, want to contain %q", tt.confidence, got, tt.want)
			}
		})
	}
}

func TestSummarize_Interpolation(t *testing.T) {
	got := Summarize(2.35, 0.88)
	if !strings.Contains(got, "2.35") {
		t.Errorf("summary should show the yield to 2 decimals: %s", got)
	}
	if !strings.Contains(got, "88%") {
		t.Errorf("summary should show the integer percent: %s", got)
	}
}
