package types

import "time"

// ExportMessage is the SQS payload sent from the API to the archive worker
// when a caller requests an asynchronous history export. The worker streams
// the full history as gzip-compressed CSV to the archive bucket.
type ExportMessage struct {
	// ExportID names the job and the resulting S3 object.
	ExportID string `json:"export_id"`

	// RequestedAt is the enqueue time in UTC, used to measure queue lag.
	RequestedAt time.Time `json:"requested_at"`

	// TraceID carries the originating request ID for log correlation.
	TraceID string `json:"trace_id"`
}

// MaintenancePayload is the EventBridge payload routed to the archiver
// Lambda for scheduled maintenance tasks.
type MaintenancePayload struct {
	// Task selects the maintenance routine to run.
	Task TaskType `json:"task"`

	// ReferenceTime overrides time.Now for deterministic replays. Nil means
	// use the current time.
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
}
