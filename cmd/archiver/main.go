// Package main is the entrypoint for the archiver Lambda.
//
// The archiver consolidates the low-frequency background work around
// prediction history into a single function to reduce cold starts:
//
//   - SQS events carrying an ExportMessage stream the full history as
//     gzip-compressed CSV to the archive bucket.
//   - EventBridge rules send a MaintenancePayload whose TaskType selects a
//     maintenance routine: scheduled archival, retention purge, or district
//     statistics snapshot.
//
// Both event shapes arrive on the same function, so the handler sniffs the
// raw payload before dispatching.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"maizecast/internal/config"
	"maizecast/internal/db"
	"maizecast/internal/export"
	"maizecast/internal/telemetry"
	"maizecast/internal/types"
)

// statsWindow is how far back the district statistics snapshot looks. One
// quarter keeps the mean responsive to recent seasons without being noisy.
const statsWindow = 90 * 24 * time.Hour

// HistoryStore is the subset of the history repository the archiver uses.
type HistoryStore interface {
	ListAllForExport(ctx context.Context) ([]types.HistoryRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DistrictStats(ctx context.Context, since time.Time) ([]db.DistrictStat, error)
}

// ArchiveWriter uploads a history snapshot to the archive bucket.
type ArchiveWriter interface {
	Archive(ctx context.Context, exportID string, requestedAt time.Time, records []types.HistoryRecord) (string, error)
}

// Handler holds the archiver Lambda dependencies.
type Handler struct {
	Store         HistoryStore
	Archiver      ArchiveWriter
	Metrics       telemetry.Metrics
	RetentionDays int
	Logger        *slog.Logger

	// Clock drives the retention cutoff and statistics window; tests pin it.
	Clock types.Clock
}

// Handle routes a raw Lambda payload. SQS events carry export jobs; anything
// else is treated as a MaintenancePayload from EventBridge.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (string, error) {
	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(raw, &sqsEvent); err == nil && len(sqsEvent.Records) > 0 {
		return h.handleSQS(ctx, sqsEvent)
	}

	var payload types.MaintenancePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Task == "" {
		return "", fmt.Errorf("unrecognized archiver payload: %s", string(raw))
	}
	return h.handleMaintenance(ctx, payload)
}

// handleSQS processes queued export jobs. Any record failure fails the batch
// so SQS redelivers; the archive key is derived from the request time, which
// makes redelivery overwrite the same object instead of duplicating it.
func (h *Handler) handleSQS(ctx context.Context, event events.SQSEvent) (string, error) {
	for _, record := range event.Records {
		var msg types.ExportMessage
		if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
			return "", fmt.Errorf("decoding export message %s: %w", record.MessageId, err)
		}

		if err := h.runExport(ctx, msg); err != nil {
			return "", fmt.Errorf("export %s: %w", msg.ExportID, err)
		}
	}
	return fmt.Sprintf("processed %d export jobs", len(event.Records)), nil
}

// runExport streams the full history to the archive bucket for one job.
func (h *Handler) runExport(ctx context.Context, msg types.ExportMessage) error {
	start := h.Clock.Now()

	h.Logger.InfoContext(ctx, "export job started",
		"export_id", msg.ExportID,
		"trace_id", msg.TraceID,
		"queue_lag", start.Sub(msg.RequestedAt).String(),
	)

	records, err := h.Store.ListAllForExport(ctx)
	if err != nil {
		return err
	}

	key, err := h.Archiver.Archive(ctx, msg.ExportID, msg.RequestedAt, records)
	if err != nil {
		return err
	}

	h.Metrics.RecordExport(len(records), h.Clock.Now().Sub(start))
	h.Logger.InfoContext(ctx, "export job complete",
		"export_id", msg.ExportID,
		"records", len(records),
		"key", key,
	)
	return nil
}

// handleMaintenance dispatches one scheduled maintenance task.
func (h *Handler) handleMaintenance(ctx context.Context, payload types.MaintenancePayload) (string, error) {
	now := h.Clock.Now().UTC()
	if payload.ReferenceTime != nil {
		now = payload.ReferenceTime.UTC()
	}

	h.Logger.InfoContext(ctx, "maintenance task started",
		"task", string(payload.Task),
		"reference_time", now.Format(time.RFC3339),
	)

	switch payload.Task {
	case types.TaskArchiveHistory:
		msg := types.ExportMessage{
			ExportID:    "sched_" + uuid.New().String(),
			RequestedAt: now,
		}
		if err := h.runExport(ctx, msg); err != nil {
			return "", fmt.Errorf("task %s failed: %w", payload.Task, err)
		}
		return fmt.Sprintf("task %s complete", payload.Task), nil

	case types.TaskPurgeHistory:
		cutoff := now.AddDate(0, 0, -h.RetentionDays)
		purged, err := h.Store.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return "", fmt.Errorf("task %s failed: %w", payload.Task, err)
		}
		h.Metrics.RecordHistoryPurged(purged)
		h.Logger.InfoContext(ctx, "history purge complete",
			"cutoff", cutoff.Format(time.RFC3339),
			"purged", purged,
		)
		return fmt.Sprintf("task %s complete: %d records purged", payload.Task, purged), nil

	case types.TaskSnapshotStats:
		stats, err := h.Store.DistrictStats(ctx, now.Add(-statsWindow))
		if err != nil {
			return "", fmt.Errorf("task %s failed: %w", payload.Task, err)
		}
		for _, stat := range stats {
			h.Metrics.RecordDistrictYield(stat.District, stat.AvgPredicted)
		}
		h.Logger.InfoContext(ctx, "district statistics snapshot complete",
			"districts", len(stats),
		)
		return fmt.Sprintf("task %s complete: %d districts", payload.Task, len(stats)), nil

	default:
		return "", fmt.Errorf("unknown task type: %q", payload.Task)
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("archiver initializing")

	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	store := db.NewHistoryStore(pool)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Error("failed to load AWS configuration", "error", err)
		os.Exit(1)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			o.UsePathStyle = true
		}
	})
	archiver := export.NewArchiver(s3Client, cfg.AWS.ArchiveBucket, cfg.Export.GzipLevel, logger)

	metrics := telemetry.New(nil, cfg.Observability.MetricNamespace, logger)
	if cfg.Observability.EnableMetrics {
		cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		metrics = telemetry.New(cwClient, cfg.Observability.MetricNamespace, logger)
	}

	handler := &Handler{
		Store:         store,
		Archiver:      archiver,
		Metrics:       metrics,
		RetentionDays: cfg.Export.RetentionDays,
		Logger:        logger,
		Clock:         types.RealClock{},
	}

	logger.Info("archiver initialized",
		"bucket", cfg.AWS.ArchiveBucket,
		"retention_days", cfg.Export.RetentionDays,
	)

	lambda.Start(handler.Handle)
}
