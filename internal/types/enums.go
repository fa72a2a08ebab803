package types

// YieldCategory labels a classified yield estimate.
// Categories are ordered from worst to best; the classifier assigns exactly
// one category to every finite yield value.
type YieldCategory string

const (
	CategoryCritical  YieldCategory = "Critical"
	CategoryLow       YieldCategory = "Low"
	CategoryModerate  YieldCategory = "Moderate"
	CategoryGood      YieldCategory = "Good"
	CategoryVeryGood  YieldCategory = "Very Good"
	CategoryExcellent YieldCategory = "Excellent"
)

// Emoji returns the presentation glyph paired with the category.
func (c YieldCategory) Emoji() string {
	switch c {
	case CategoryCritical:
		return "🔴"
	case CategoryLow:
		return "🟠"
	case CategoryModerate:
		return "🟡"
	case CategoryGood:
		return "🟢"
	case CategoryVeryGood:
		return "💚"
	case CategoryExcellent:
		return "🌟"
	default:
		return ""
	}
}

// RiskTier returns the presentation risk level paired with the category.
// This tier drives UI coloring only; it is independent of the statistical
// confidence score and must never be conflated with it.
func (c YieldCategory) RiskTier() RiskTier {
	switch c {
	case CategoryCritical, CategoryLow:
		return RiskHigh
	case CategoryModerate:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskTier is a coarse presentation-level risk indicator.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// RecommendationGroup identifies which condition rule produced a
// recommendation entry. Groups are listed in evaluation priority order.
type RecommendationGroup string

const (
	GroupWater       RecommendationGroup = "water"
	GroupSoil        RecommendationGroup = "soil"
	GroupTemperature RecommendationGroup = "temperature"
	GroupSunlight    RecommendationGroup = "sunlight"
	GroupPest        RecommendationGroup = "pest"
	GroupPolicy      RecommendationGroup = "policy"
	GroupYieldLevel  RecommendationGroup = "yield_level"
	GroupTrend       RecommendationGroup = "trend"
)

// TaskType identifies a maintenance task dispatched to the archiver Lambda.
type TaskType string

const (
	TaskArchiveHistory TaskType = "archive_history"
	TaskPurgeHistory   TaskType = "purge_history"
	TaskSnapshotStats  TaskType = "snapshot_statistics"
)

// ExportStatus tracks the lifecycle of an asynchronous export job.
type ExportStatus string

const (
	ExportPending  ExportStatus = "pending"
	ExportComplete ExportStatus = "complete"
	ExportFailed   ExportStatus = "failed"
)

// SoilType enumerates the soil classes the model was trained on.
type SoilType string

const (
	SoilForestOchrosol     SoilType = "Forest Ochrosol"
	SoilCoastalSavannah    SoilType = "Coastal Savannah"
	SoilTropicalBlackEarth SoilType = "Tropical Black Earth"
	SoilSavannaOchrosol    SoilType = "Savanna Ochrosol"
)

// AllSoilTypes defines the complete set of valid soil classes.
// Used by validators to reject unknown soil labels at the API boundary.
var AllSoilTypes = []SoilType{
	SoilForestOchrosol,
	SoilCoastalSavannah,
	SoilTropicalBlackEarth,
	SoilSavannaOchrosol,
}
