package interpret

import (
	"strings"
	"testing"

	"maizecast/internal/types"
)

// Scenario: drought-stressed farm with a declining trend and no PFJ
// enrollment. Every contributing group should fire, with water first.
func TestRecommend_StressedFarm(t *testing.T) {
	in := types.PlantingInput{
		District:     "Tamale",
		Year:         2024,
		RainfallMM:   420,
		TemperatureC: 32,
		HumidityPct:  60,
		SunlightHrs:  5,
		SoilMoisture: 0.35,
		PestRiskPct:  65,
		PFJPolicy:    false,
		PriorYield:   2.2,
	}

	recs, suppressed := Recommend(in, 1.3)
	if len(suppressed) != 0 {
		t.Fatalf("unexpected suppressed groups: %v", suppressed)
	}

	// All eight groups have something to say for these inputs.
	if len(recs) != 8 {
		t.Fatalf("got %d recommendations, want 8: %+v", len(recs), recs)
	}

	if recs[0].Group != types.GroupWater {
		t.Errorf("first recommendation group = %q, want water", recs[0].Group)
	}
	if !strings.Contains(recs[0].Text, "water shortage") {
		t.Errorf("water entry should flag the critical shortage: %s", recs[0].Text)
	}

	byGroup := make(map[types.RecommendationGroup]string, len(recs))
	for _, r := range recs {
		byGroup[r.Group] = r.Text
	}
	if !strings.Contains(byGroup[types.GroupPolicy], "enrolling") {
		t.Errorf("policy entry should suggest PFJ enrollment: %s", byGroup[types.GroupPolicy])
	}
	if !strings.Contains(byGroup[types.GroupTrend], "declining") {
		t.Errorf("trend entry should warn about the decline: %s", byGroup[types.GroupTrend])
	}
	if !strings.Contains(byGroup[types.GroupYieldLevel], "extension officer") {
		t.Errorf("yield-level entry should direct to consultation: %s", byGroup[types.GroupYieldLevel])
	}
}

// Scenario: healthy farm, enrolled in PFJ, improving trend. Level group is
// silent for a 2.4 projection, so seven entries come back.
func TestRecommend_HealthyFarm(t *testing.T) {
	in := types.PlantingInput{
		District:     "Kumasi",
		Year:         2024,
		RainfallMM:   800,
		TemperatureC: 27,
		HumidityPct:  70,
		SunlightHrs:  7,
		SoilMoisture: 0.65,
		PestRiskPct:  15,
		PFJPolicy:    true,
		PriorYield:   2.1,
	}

	recs, suppressed := Recommend(in, 2.4)
	if len(suppressed) != 0 {
		t.Fatalf("unexpected suppressed groups: %v", suppressed)
	}
	if len(recs) != 7 {
		t.Fatalf("got %d recommendations, want 7: %+v", len(recs), recs)
	}

	byGroup := make(map[types.RecommendationGroup]string, len(recs))
	for _, r := range recs {
		byGroup[r.Group] = r.Text
	}
	if !strings.Contains(byGroup[types.GroupWater], "adequate") {
		t.Errorf("water entry should confirm adequate rainfall: %s", byGroup[types.GroupWater])
	}
	if !strings.Contains(byGroup[types.GroupPolicy], "enrolled") {
		t.Errorf("policy entry should acknowledge enrollment: %s", byGroup[types.GroupPolicy])
	}
	if !strings.Contains(byGroup[types.GroupTrend], "upward") {
		t.Errorf("trend entry should reinforce the improvement: %s", byGroup[types.GroupTrend])
	}
	if _, ok := byGroup[types.GroupYieldLevel]; ok {
		t.Error("yield-level group should be silent for a 2.4 projection")
	}
}

// Output order is the fixed group order, never a computed ranking.
func TestRecommend_FixedGroupOrder(t *testing.T) {
	in := types.PlantingInput{
		Year:         2024,
		RainfallMM:   420,
		TemperatureC: 33,
		HumidityPct:  50,
		SunlightHrs:  4,
		SoilMoisture: 0.3,
		PestRiskPct:  70,
		PFJPolicy:    false,
		PriorYield:   3.0,
	}

	recs, _ := Recommend(in, 1.0)
	wantOrder := []types.RecommendationGroup{
		types.GroupWater,
		types.GroupSoil,
		types.GroupTemperature,
		types.GroupSunlight,
		types.GroupPest,
		types.GroupPolicy,
		types.GroupYieldLevel,
		types.GroupTrend,
	}

	if len(recs) != len(wantOrder) {
		t.Fatalf("got %d recommendations, want %d", len(recs), len(wantOrder))
	}
	for i, r := range recs {
		if r.Group != wantOrder[i] {
			t.Errorf("position %d: group = %q, want %q", i, r.Group, wantOrder[i])
		}
	}
}

func TestRecommend_NeverExceedsCap(t *testing.T) {
	// Sweep a grid of inputs; no combination may exceed the cap.
	rainfalls := []float64{300, 550, 800, 1200}
	moistures := []float64{0.2, 0.45, 0.65, 0.9}
	yields := []float64{0.8, 1.8, 2.7, 3.5}

	for _, rain := range rainfalls {
		for _, moist := range moistures {
			for _, y := range yields {
				in := types.PlantingInput{
					Year: 2024, RainfallMM: rain, TemperatureC: 27,
					HumidityPct: 70, SunlightHrs: 7, SoilMoisture: moist,
					PestRiskPct: 30, PFJPolicy: true, PriorYield: 2.0,
				}
				recs, _ := Recommend(in, y)
				if len(recs) > maxRecommendations {
					t.Fatalf("rain=%v moist=%v yield=%v produced %d entries", rain, moist, y, len(recs))
				}
			}
		}
	}
}

func TestRecommend_TrendDeadZoneSilent(t *testing.T) {
	in := types.PlantingInput{
		Year: 2024, RainfallMM: 800, TemperatureC: 27, HumidityPct: 70,
		SunlightHrs: 7, SoilMoisture: 0.65, PestRiskPct: 15,
		PFJPolicy: true, PriorYield: 2.0,
	}

	// prior - predicted = 0.4: inside (−0.3, 0.5], no trend entry.
	recs, _ := Recommend(in, 1.6)
	for _, r := range recs {
		if r.Group == types.GroupTrend {
			t.Errorf("trend group should be silent for a 0.4 drop: %s", r.Text)
		}
	}
}

func TestRecommend_TrendBoundaries(t *testing.T) {
	base := types.PlantingInput{
		Year: 2024, RainfallMM: 800, TemperatureC: 27, HumidityPct: 70,
		SunlightHrs: 7, SoilMoisture: 0.65, PestRiskPct: 15,
		PFJPolicy: true, PriorYield: 2.0,
	}

	tests := []struct {
		name      string
		predicted float64
		wantTrend bool
	}{
		{"drop of exactly 0.5 is silent", 1.5, false},
		{"drop just over 0.5 warns", 1.49, true},
		{"drop inside display rounding still warns", 1.497, true},
		{"gain of exactly 0.3 reinforces", 2.3, true},
		{"gain just under 0.3 is silent", 2.29, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, _ := Recommend(base, tt.predicted)
			got := false
			for _, r := range recs {
				if r.Group == types.GroupTrend {
					got = true
				}
			}
			if got != tt.wantTrend {
				t.Errorf("trend entry present = %v, want %v", got, tt.wantTrend)
			}
		})
	}
}

// A panicking group contributes nothing but never aborts the rest.
func TestEvalRule_PanicIsolation(t *testing.T) {
	panicking := rule{
		group: types.GroupWater,
		eval: func(types.PlantingInput, float64) (string, bool) {
			panic("rule blew up")
		},
	}

	text, ok, panicked := evalRule(panicking, types.PlantingInput{}, 2.0)
	if !panicked {
		t.Fatal("expected panicked=true")
	}
	if ok || text != "" {
		t.Errorf("panicking rule leaked output: ok=%v text=%q", ok, text)
	}
}
