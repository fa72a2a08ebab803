package types

import (
	"context"
	"time"
)

// HistoryStore is the persistence contract for prediction records.
// The interpretation engine never depends on store internals beyond this
// shape; the pgx-backed implementation lives in internal/db.
type HistoryStore interface {
	// Save persists a new record and returns its assigned ID.
	Save(ctx context.Context, record *HistoryRecord) (string, error)

	// Get returns the record with the given ID, or a not_found AppError.
	Get(ctx context.Context, id string) (*HistoryRecord, error)

	// List returns one page of records, newest first, with the total count.
	List(ctx context.Context, page PageRequest) ([]HistoryRecord, int, error)

	// Delete removes the record with the given ID, or returns not_found.
	Delete(ctx context.Context, id string) error
}

// Predictor is the external model contract. Implementations must propagate
// failures as upstream_* or validation_invalid_feature_set AppErrors and
// never fabricate a fallback estimate.
type Predictor interface {
	// Predict returns a point estimate with its uncertainty interval.
	Predict(ctx context.Context, features FeatureVector) (*PredictionEstimate, error)

	// ModelInfo returns metadata about the active model.
	ModelInfo(ctx context.Context) (*ModelInfo, error)
}

// ExportQueue dispatches asynchronous export jobs to the archive worker.
type ExportQueue interface {
	EnqueueExport(ctx context.Context, msg ExportMessage) error
}

// Logger defines the structured logging contract stored in request
// contexts by WithLogger and retrieved via LoggerFromContext.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	With(args ...any) Logger
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the real system time (always UTC).
type RealClock struct{}

// Now returns the current time in UTC.
func (RealClock) Now() time.Time { return time.Now().UTC() }
