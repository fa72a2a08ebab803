package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"maizecast/internal/db"
	"maizecast/internal/types"
)

// =============================================================================
// Mocks
// =============================================================================

type mockStore struct {
	records    []types.HistoryRecord
	listErr    error
	purged     int64
	purgeErr   error
	purgeCalls []time.Time
	stats      []db.DistrictStat
	statsErr   error
	statsCalls []time.Time
}

func (m *mockStore) ListAllForExport(_ context.Context) ([]types.HistoryRecord, error) {
	return m.records, m.listErr
}

func (m *mockStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.purgeCalls = append(m.purgeCalls, cutoff)
	return m.purged, m.purgeErr
}

func (m *mockStore) DistrictStats(_ context.Context, since time.Time) ([]db.DistrictStat, error) {
	m.statsCalls = append(m.statsCalls, since)
	return m.stats, m.statsErr
}

type archiveCall struct {
	exportID    string
	requestedAt time.Time
	records     int
}

type mockArchiver struct {
	calls []archiveCall
	err   error
}

func (m *mockArchiver) Archive(_ context.Context, exportID string, requestedAt time.Time, records []types.HistoryRecord) (string, error) {
	m.calls = append(m.calls, archiveCall{exportID, requestedAt, len(records)})
	if m.err != nil {
		return "", m.err
	}
	return "exports/2026/03/history-test.csv.gz", nil
}

type mockMetrics struct {
	exports   []int
	purged    []int64
	districts map[string]float64
}

func (m *mockMetrics) RecordPrediction(_ types.YieldCategory, _ string, _ time.Duration) {}
func (m *mockMetrics) RecordRequest(_, _, _ string, _ time.Duration)                     {}
func (m *mockMetrics) RecordPredictorFailure(_ types.ErrorCode)                          {}

func (m *mockMetrics) RecordExport(records int, _ time.Duration) {
	m.exports = append(m.exports, records)
}

func (m *mockMetrics) RecordHistoryPurged(count int64) {
	m.purged = append(m.purged, count)
}

func (m *mockMetrics) RecordDistrictYield(district string, meanYield float64) {
	if m.districts == nil {
		m.districts = make(map[string]float64)
	}
	m.districts[district] = meanYield
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testHandler(store *mockStore, archiver *mockArchiver, metrics *mockMetrics) *Handler {
	return &Handler{
		Store:         store,
		Archiver:      archiver,
		Metrics:       metrics,
		RetentionDays: 365,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:         fixedClock{time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
	}
}

func sqsPayload(t *testing.T, msgs ...types.ExportMessage) json.RawMessage {
	t.Helper()
	event := events.SQSEvent{}
	for i, msg := range msgs {
		body, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("marshal message: %v", err)
		}
		event.Records = append(event.Records, events.SQSMessage{
			MessageId: fmt.Sprintf("mid-%d", i),
			Body:      string(body),
		})
	}
	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return raw
}

func maintenancePayload(t *testing.T, payload types.MaintenancePayload) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

// =============================================================================
// SQS export jobs
// =============================================================================

func TestHandle_SQSExport(t *testing.T) {
	store := &mockStore{records: make([]types.HistoryRecord, 3)}
	archiver := &mockArchiver{}
	metrics := &mockMetrics{}
	h := testHandler(store, archiver, metrics)

	requestedAt := time.Date(2026, 3, 10, 11, 58, 0, 0, time.UTC)
	result, err := h.Handle(context.Background(), sqsPayload(t, types.ExportMessage{
		ExportID:    "exp_abc",
		RequestedAt: requestedAt,
		TraceID:     "trace-1",
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(result, "1 export jobs") {
		t.Errorf("Handle() result = %q", result)
	}

	if len(archiver.calls) != 1 {
		t.Fatalf("Archive called %d times, want 1", len(archiver.calls))
	}
	if archiver.calls[0].exportID != "exp_abc" {
		t.Errorf("exportID = %q, want exp_abc", archiver.calls[0].exportID)
	}
	if !archiver.calls[0].requestedAt.Equal(requestedAt) {
		t.Errorf("requestedAt = %v, want %v", archiver.calls[0].requestedAt, requestedAt)
	}
	if archiver.calls[0].records != 3 {
		t.Errorf("records = %d, want 3", archiver.calls[0].records)
	}

	if len(metrics.exports) != 1 || metrics.exports[0] != 3 {
		t.Errorf("RecordExport calls = %v, want [3]", metrics.exports)
	}
}

func TestHandle_SQSExport_ArchiveFailureFailsBatch(t *testing.T) {
	store := &mockStore{}
	archiver := &mockArchiver{err: errors.New("bucket unreachable")}
	h := testHandler(store, archiver, &mockMetrics{})

	_, err := h.Handle(context.Background(), sqsPayload(t, types.ExportMessage{ExportID: "exp_x"}))
	if err == nil {
		t.Fatal("Handle() expected error when archive upload fails")
	}
	if !strings.Contains(err.Error(), "exp_x") {
		t.Errorf("error %q should name the export", err)
	}
}

func TestHandle_SQSExport_BadBody(t *testing.T) {
	h := testHandler(&mockStore{}, &mockArchiver{}, &mockMetrics{})

	event := events.SQSEvent{Records: []events.SQSMessage{{MessageId: "mid-0", Body: "{not json"}}}
	raw, _ := json.Marshal(event)

	if _, err := h.Handle(context.Background(), raw); err == nil {
		t.Fatal("Handle() expected error for malformed message body")
	}
}

// =============================================================================
// Maintenance tasks
// =============================================================================

func TestHandle_PurgeHistory(t *testing.T) {
	store := &mockStore{purged: 17}
	metrics := &mockMetrics{}
	h := testHandler(store, &mockArchiver{}, metrics)

	result, err := h.Handle(context.Background(),
		maintenancePayload(t, types.MaintenancePayload{Task: types.TaskPurgeHistory}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(result, "17 records purged") {
		t.Errorf("Handle() result = %q", result)
	}

	if len(store.purgeCalls) != 1 {
		t.Fatalf("DeleteOlderThan called %d times, want 1", len(store.purgeCalls))
	}
	wantCutoff := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if !store.purgeCalls[0].Equal(wantCutoff) {
		t.Errorf("cutoff = %v, want %v", store.purgeCalls[0], wantCutoff)
	}
	if len(metrics.purged) != 1 || metrics.purged[0] != 17 {
		t.Errorf("RecordHistoryPurged calls = %v, want [17]", metrics.purged)
	}
}

func TestHandle_PurgeHistory_ReferenceTimeOverride(t *testing.T) {
	store := &mockStore{}
	h := testHandler(store, &mockArchiver{}, &mockMetrics{})

	ref := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := h.Handle(context.Background(),
		maintenancePayload(t, types.MaintenancePayload{Task: types.TaskPurgeHistory, ReferenceTime: &ref}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	wantCutoff := ref.AddDate(0, 0, -365)
	if !store.purgeCalls[0].Equal(wantCutoff) {
		t.Errorf("cutoff = %v, want %v", store.purgeCalls[0], wantCutoff)
	}
}

func TestHandle_ScheduledArchive(t *testing.T) {
	store := &mockStore{records: make([]types.HistoryRecord, 5)}
	archiver := &mockArchiver{}
	h := testHandler(store, archiver, &mockMetrics{})

	_, err := h.Handle(context.Background(),
		maintenancePayload(t, types.MaintenancePayload{Task: types.TaskArchiveHistory}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(archiver.calls) != 1 {
		t.Fatalf("Archive called %d times, want 1", len(archiver.calls))
	}
	if !strings.HasPrefix(archiver.calls[0].exportID, "sched_") {
		t.Errorf("exportID = %q, want sched_ prefix", archiver.calls[0].exportID)
	}
}

func TestHandle_SnapshotStats(t *testing.T) {
	store := &mockStore{stats: []db.DistrictStat{
		{District: "Tamale", Predictions: 12, AvgPredicted: 2.1},
		{District: "Kumasi", Predictions: 30, AvgPredicted: 2.6},
	}}
	metrics := &mockMetrics{}
	h := testHandler(store, &mockArchiver{}, metrics)

	result, err := h.Handle(context.Background(),
		maintenancePayload(t, types.MaintenancePayload{Task: types.TaskSnapshotStats}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(result, "2 districts") {
		t.Errorf("Handle() result = %q", result)
	}

	if got := metrics.districts["Tamale"]; got != 2.1 {
		t.Errorf("Tamale mean yield = %v, want 2.1", got)
	}
	if got := metrics.districts["Kumasi"]; got != 2.6 {
		t.Errorf("Kumasi mean yield = %v, want 2.6", got)
	}

	wantSince := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC).Add(-statsWindow)
	if !store.statsCalls[0].Equal(wantSince) {
		t.Errorf("since = %v, want %v", store.statsCalls[0], wantSince)
	}
}

func TestHandle_UnknownTask(t *testing.T) {
	h := testHandler(&mockStore{}, &mockArchiver{}, &mockMetrics{})

	_, err := h.Handle(context.Background(),
		maintenancePayload(t, types.MaintenancePayload{Task: "defragment_soil"}))
	if err == nil {
		t.Fatal("Handle() expected error for unknown task")
	}
}

func TestHandle_UnrecognizedPayload(t *testing.T) {
	h := testHandler(&mockStore{}, &mockArchiver{}, &mockMetrics{})

	if _, err := h.Handle(context.Background(), json.RawMessage(`{"hello":"world"}`)); err == nil {
		t.Fatal("Handle() expected error for unrecognized payload")
	}
}
