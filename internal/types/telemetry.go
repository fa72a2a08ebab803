package types

// Telemetry metric names for CloudWatch.
// All components MUST use these constants.
const (
	// Metric Names
	MetricPredictionCount   = "PredictionCount"
	MetricPredictionLatency = "PredictionLatency"
	MetricPredictorFailure  = "PredictorFailure"
	MetricAPILatency        = "APILatency"
	MetricExportRecords     = "ExportRecords"
	MetricExportLatency     = "ExportLatency"
	MetricHistoryPurged     = "HistoryPurged"
	MetricDistrictMeanYield = "DistrictMeanYield"

	// Dimension Keys
	DimCategory = "Category"
	DimDistrict = "District"
	DimEndpoint = "Endpoint"
	DimStatus   = "Status"

	// Metric Namespace
	MetricNamespace = "MaizeCast"
)
