// Package telemetry emits MaizeCast operational metrics to CloudWatch.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"maizecast/internal/types"
)

// publishTimeout bounds each PutMetricData call so a slow CloudWatch
// endpoint never stalls a caller.
const publishTimeout = 2 * time.Second

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability. Production code uses the *cloudwatch.Client from aws-sdk-go-v2.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics is the telemetry contract for the API and the archive worker.
// Implementations must never fail the caller: metric delivery problems are
// logged and swallowed.
type Metrics interface {
	// RecordPrediction counts a completed prediction and its latency,
	// dimensioned by yield category and district.
	RecordPrediction(category types.YieldCategory, district string, duration time.Duration)

	// RecordRequest records one HTTP request outcome.
	RecordRequest(method, endpoint, status string, duration time.Duration)

	// RecordPredictorFailure counts an upstream model failure by error code.
	RecordPredictorFailure(code types.ErrorCode)

	// RecordExport records a completed history export.
	RecordExport(records int, duration time.Duration)

	// RecordHistoryPurged counts records removed by the retention task.
	RecordHistoryPurged(count int64)

	// RecordDistrictYield snapshots the mean predicted yield for a district.
	RecordDistrictYield(district string, meanYield float64)
}

// CloudWatchMetrics implements Metrics over PutMetricData.
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

var _ Metrics = (*CloudWatchMetrics)(nil)

// New returns a CloudWatch-backed Metrics, or a no-op implementation when
// client is nil (metrics disabled, local development).
func New(client CloudWatchClient, namespace string, logger *slog.Logger) Metrics {
	if client == nil {
		return NoopMetrics{}
	}
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordPrediction implements Metrics.
func (m *CloudWatchMetrics) RecordPrediction(category types.YieldCategory, district string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		{Name: aws.String(types.DimCategory), Value: aws.String(string(category))},
		{Name: aws.String(types.DimDistrict), Value: aws.String(district)},
	}

	m.publish(
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricPredictionCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricPredictionLatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
	)
}

// RecordRequest implements Metrics. It also satisfies the API chassis's
// metrics collector contract, so the request middleware feeds it directly.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.publish(cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricAPILatency),
		Value:      aws.Float64(float64(duration.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(types.DimEndpoint), Value: aws.String(method + " " + endpoint)},
			{Name: aws.String(types.DimStatus), Value: aws.String(status)},
		},
	})
}

// RecordPredictorFailure implements Metrics.
func (m *CloudWatchMetrics) RecordPredictorFailure(code types.ErrorCode) {
	m.publish(cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricPredictorFailure),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(types.DimStatus), Value: aws.String(string(code))},
		},
	})
}

// RecordExport implements Metrics.
func (m *CloudWatchMetrics) RecordExport(records int, duration time.Duration) {
	m.publish(
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricExportRecords),
			Value:      aws.Float64(float64(records)),
			Unit:       cwtypes.StandardUnitCount,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricExportLatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
		},
	)
}

// RecordHistoryPurged implements Metrics.
func (m *CloudWatchMetrics) RecordHistoryPurged(count int64) {
	m.publish(cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricHistoryPurged),
		Value:      aws.Float64(float64(count)),
		Unit:       cwtypes.StandardUnitCount,
	})
}

// RecordDistrictYield implements Metrics.
func (m *CloudWatchMetrics) RecordDistrictYield(district string, meanYield float64) {
	m.publish(cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricDistrictMeanYield),
		Value:      aws.Float64(meanYield),
		Unit:       cwtypes.StandardUnitNone,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String(types.DimDistrict), Value: aws.String(district)},
		},
	})
}

// publish sends one PutMetricData call. Failures are logged, never returned;
// metric delivery must not fail the operation it instruments.
func (m *CloudWatchMetrics) publish(data ...cwtypes.MetricDatum) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to publish metrics",
			"error", err,
			"namespace", m.namespace,
			"datums", len(data),
		)
	}
}

// NoopMetrics discards all metrics. Used when telemetry is disabled.
type NoopMetrics struct{}

var _ Metrics = NoopMetrics{}

func (NoopMetrics) RecordPrediction(types.YieldCategory, string, time.Duration) {}
func (NoopMetrics) RecordRequest(string, string, string, time.Duration)         {}
func (NoopMetrics) RecordPredictorFailure(types.ErrorCode)                      {}
func (NoopMetrics) RecordExport(int, time.Duration)                             {}
func (NoopMetrics) RecordHistoryPurged(int64)                                   {}
func (NoopMetrics) RecordDistrictYield(string, float64)                         {}
