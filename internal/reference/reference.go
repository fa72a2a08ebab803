// Package reference holds the static agronomic reference data served by the
// read-only data endpoints: district and soil vocabularies, advisory parameter
// ranges, historical yield statistics, and general growing guidance.
//
// The advisory ranges here describe agronomically sensible values for display
// alongside the input form. Hard validation bounds live in the types package
// and are wider; a value can be accepted by validation yet sit outside the
// advisory band.
package reference

import "maizecast/internal/types"

// DistrictInfo pairs a district with its administrative region.
type DistrictInfo struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

// DistrictDirectory lists the supported districts in alphabetical order with
// their regions as labeled in the training data.
var DistrictDirectory = []DistrictInfo{
	{Name: "Accra", Region: "Greater Accra"},
	{Name: "Akim Oda", Region: "Eastern"},
	{Name: "Bawku", Region: "Upper East"},
	{Name: "Berekum", Region: "Brong Ahafo"},
	{Name: "Bolgatanga", Region: "Upper East"},
	{Name: "Cape Coast", Region: "Central"},
	{Name: "Goaso", Region: "Brong Ahafo"},
	{Name: "Ho", Region: "Volta"},
	{Name: "Hohoe", Region: "Volta"},
	{Name: "Keta", Region: "Volta"},
	{Name: "Koforidua", Region: "Eastern"},
	{Name: "Konongo", Region: "Ashanti"},
	{Name: "Kumasi", Region: "Ashanti"},
	{Name: "Mampong", Region: "Ashanti"},
	{Name: "Nkawkaw", Region: "Eastern"},
	{Name: "Nsawam", Region: "Eastern"},
	{Name: "Obuasi", Region: "Ashanti"},
	{Name: "Sunyani", Region: "Brong Ahafo"},
	{Name: "Takoradi", Region: "Western"},
	{Name: "Tamale", Region: "Northern"},
	{Name: "Techiman", Region: "Brong Ahafo"},
	{Name: "Tema", Region: "Greater Accra"},
	{Name: "Wa", Region: "Upper West"},
	{Name: "Winneba", Region: "Central"},
	{Name: "Yendi", Region: "Northern"},
}

// Districts lists the supported district names in directory order.
var Districts = districtNames()

func districtNames() []string {
	names := make([]string, len(DistrictDirectory))
	for i, d := range DistrictDirectory {
		names[i] = d.Name
	}
	return names
}

// IsKnownDistrict reports whether the name is in the supported district list.
// Matching is exact; the model was trained on these labels verbatim.
func IsKnownDistrict(name string) bool {
	for _, d := range Districts {
		if d == name {
			return true
		}
	}
	return false
}

// SoilProfile describes one soil class for the reference endpoint.
type SoilProfile struct {
	Name        types.SoilType `json:"name"`
	Description string         `json:"description"`
	Suitability string         `json:"suitability"`
}

// SoilProfiles describes the soil classes the model understands, in the
// order they appear in the training data dictionary.
var SoilProfiles = []SoilProfile{
	{
		Name:        types.SoilForestOchrosol,
		Description: "Well-drained forest soils, most common in Ghana",
		Suitability: "High",
	},
	{
		Name:        types.SoilCoastalSavannah,
		Description: "Sandy coastal soils",
		Suitability: "Medium",
	},
	{
		Name:        types.SoilTropicalBlackEarth,
		Description: "High organic matter soils",
		Suitability: "High",
	},
	{
		Name:        types.SoilSavannaOchrosol,
		Description: "Northern savanna soils",
		Suitability: "Medium",
	},
}

// ParameterRange is the advisory band for one input parameter. Optimal bounds
// are zero when the parameter has no meaningful optimum (e.g. year).
type ParameterRange struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Unit        string  `json:"unit"`
	OptimalMin  float64 `json:"optimal_min,omitempty"`
	OptimalMax  float64 `json:"optimal_max,omitempty"`
	Description string  `json:"description"`
}

// ParameterRanges groups the advisory bands for every form parameter.
type ParameterRanges struct {
	Rainfall     ParameterRange `json:"rainfall"`
	Temperature  ParameterRange `json:"temperature"`
	Humidity     ParameterRange `json:"humidity"`
	Sunlight     ParameterRange `json:"sunlight"`
	SoilMoisture ParameterRange `json:"soil_moisture"`
	Year         ParameterRange `json:"year"`
}

// AdvisoryRanges holds the display ranges for the input form.
var AdvisoryRanges = ParameterRanges{
	Rainfall: ParameterRange{
		Min: 300, Max: 1500, Unit: "mm",
		OptimalMin: 600, OptimalMax: 1000,
		Description: "Annual rainfall",
	},
	Temperature: ParameterRange{
		Min: 20, Max: 35, Unit: "°C",
		OptimalMin: 24, OptimalMax: 30,
		Description: "Average temperature",
	},
	Humidity: ParameterRange{
		Min: 40, Max: 100, Unit: "%",
		OptimalMin: 60, OptimalMax: 85,
		Description: "Relative humidity",
	},
	Sunlight: ParameterRange{
		Min: 4, Max: 12, Unit: "hours",
		OptimalMin: 6, OptimalMax: 8,
		Description: "Daily sunlight hours",
	},
	SoilMoisture: ParameterRange{
		Min: 0.3, Max: 0.9, Unit: "proportion",
		OptimalMin: 0.5, OptimalMax: 0.75,
		Description: "Soil moisture content",
	},
	Year: ParameterRange{
		Min: 2020, Max: 2030, Unit: "year",
		Description: "Prediction year",
	},
}

// NationalAverage summarizes the national yield distribution over the
// training period.
type NationalAverage struct {
	MeanYield   float64 `json:"mean_yield"`
	MedianYield float64 `json:"median_yield"`
	StdYield    float64 `json:"std_yield"`
	MinYield    float64 `json:"min_yield"`
	MaxYield    float64 `json:"max_yield"`
	Unit        string  `json:"unit"`
}

// RegionalYield is the average observed yield for one region.
type RegionalYield struct {
	Region     string  `json:"region"`
	AvgYield   float64 `json:"avg_yield"`
	SampleSize int     `json:"sample_size"`
}

// YieldTrends compares the early and late halves of the training period.
type YieldTrends struct {
	Avg2011to2015 float64 `json:"2011_2015_avg"`
	Avg2016to2021 float64 `json:"2016_2021_avg"`
	GrowthRate    string  `json:"growth_rate"`
}

// HistoricalStatistics is the payload for the historical statistics endpoint.
type HistoricalStatistics struct {
	NationalAverage NationalAverage `json:"national_average"`
	ByRegion        []RegionalYield `json:"by_region"`
	Trends          YieldTrends     `json:"trends"`
	DataPeriod      string          `json:"data_period"`
}

// HistoricalStats holds the observed yield statistics from the 2011-2021
// training data snapshot. Regenerated only when the model is retrained.
var HistoricalStats = HistoricalStatistics{
	NationalAverage: NationalAverage{
		MeanYield:   2.15,
		MedianYield: 2.20,
		StdYield:    0.45,
		MinYield:    0.27,
		MaxYield:    4.00,
		Unit:        "tons/ha",
	},
	ByRegion: []RegionalYield{
		{Region: "Ashanti", AvgYield: 2.35, SampleSize: 450},
		{Region: "Brong Ahafo", AvgYield: 2.28, SampleSize: 380},
		{Region: "Northern", AvgYield: 1.95, SampleSize: 320},
		{Region: "Eastern", AvgYield: 2.42, SampleSize: 410},
		{Region: "Volta", AvgYield: 2.18, SampleSize: 290},
	},
	Trends: YieldTrends{
		Avg2011to2015: 1.85,
		Avg2016to2021: 2.35,
		GrowthRate:    "27%",
	},
	DataPeriod: "2011-2021",
}

// PracticeGroup is one category of general best-practice advice.
type PracticeGroup struct {
	Category        string   `json:"category"`
	Recommendations []string `json:"recommendations"`
}

// OptimalConditions summarizes the ideal growing setup in display prose.
type OptimalConditions struct {
	Rainfall        string `json:"rainfall"`
	Temperature     string `json:"temperature"`
	SoilType        string `json:"soil_type"`
	PlantingDensity string `json:"planting_density"`
}

// GeneralGuidance is the payload for the general recommendations endpoint.
type GeneralGuidance struct {
	BestPractices     []PracticeGroup   `json:"best_practices"`
	OptimalConditions OptimalConditions `json:"optimal_conditions"`
}

// Guidance holds the static season-independent growing advice.
var Guidance = GeneralGuidance{
	BestPractices: []PracticeGroup{
		{
			Category: "Soil Preparation",
			Recommendations: []string{
				"Test soil pH before planting (optimal: 6.0-7.5)",
				"Apply organic matter to improve soil structure",
				"Practice crop rotation to maintain soil fertility",
			},
		},
		{
			Category: "Water Management",
			Recommendations: []string{
				"Ensure adequate drainage to prevent waterlogging",
				"Apply mulch to conserve soil moisture",
				"Consider drip irrigation in low rainfall areas",
			},
		},
		{
			Category: "Pest Management",
			Recommendations: []string{
				"Scout fields regularly for pest presence",
				"Use integrated pest management (IPM) strategies",
				"Plant resistant varieties when available",
			},
		},
		{
			Category: "PFJ Program",
			Recommendations: []string{
				"Register for subsidized inputs",
				"Attend farmer training sessions",
				"Form or join farmer cooperatives",
			},
		},
	},
	OptimalConditions: OptimalConditions{
		Rainfall:        "600-1000 mm annually",
		Temperature:     "24-30°C",
		SoilType:        "Well-drained loamy soils",
		PlantingDensity: "50,000-70,000 plants/ha",
	},
}
