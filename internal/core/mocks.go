package core

import (
	"context"
	"strconv"
	"sync"
	"time"

	"maizecast/internal/types"
)

// --- MockHistoryStore ---

// MockHistoryStore implements types.HistoryStore for testing. Records are held
// in memory in insertion order; List returns them newest first to match the
// production store. Per-method Func fields override the default behavior when
// tests need dynamic responses or injected failures.
type MockHistoryStore struct {
	mu      sync.Mutex
	records []types.HistoryRecord
	nextID  int

	SaveFunc   func(ctx context.Context, record *types.HistoryRecord) (string, error)
	GetFunc    func(ctx context.Context, id string) (*types.HistoryRecord, error)
	ListFunc   func(ctx context.Context, page types.PageRequest) ([]types.HistoryRecord, int, error)
	DeleteFunc func(ctx context.Context, id string) error

	// SaveCalls records every record passed to Save for assertion purposes.
	SaveCalls []types.HistoryRecord
}

// Save implements types.HistoryStore.
func (m *MockHistoryStore) Save(ctx context.Context, record *types.HistoryRecord) (string, error) {
	m.mu.Lock()
	m.SaveCalls = append(m.SaveCalls, *record)
	m.mu.Unlock()

	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, record)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := "hist_" + strconv.Itoa(m.nextID)
	stored := *record
	stored.ID = id
	m.records = append(m.records, stored)
	return id, nil
}

// Get implements types.HistoryStore.
func (m *MockHistoryStore) Get(ctx context.Context, id string) (*types.HistoryRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundPrediction, "prediction record not found", nil)
}

// List implements types.HistoryStore.
func (m *MockHistoryStore) List(ctx context.Context, page types.PageRequest) ([]types.HistoryRecord, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	page = page.Normalize()
	total := len(m.records)

	// Newest first: walk the backing slice in reverse.
	reversed := make([]types.HistoryRecord, 0, total)
	for i := total - 1; i >= 0; i-- {
		reversed = append(reversed, m.records[i])
	}

	start := page.Offset()
	if start >= total {
		return []types.HistoryRecord{}, total, nil
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return reversed[start:end], total, nil
}

// Delete implements types.HistoryStore.
func (m *MockHistoryStore) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return types.NewAppError(types.ErrCodeNotFoundPrediction, "prediction record not found", nil)
}

// --- MockPredictor ---

// MockPredictor implements types.Predictor for testing. Set Estimate (and
// optionally Err) for canned responses, or PredictFunc for dynamic behavior.
type MockPredictor struct {
	Estimate *types.PredictionEstimate
	Info     *types.ModelInfo
	Err      error

	PredictFunc   func(ctx context.Context, features types.FeatureVector) (*types.PredictionEstimate, error)
	ModelInfoFunc func(ctx context.Context) (*types.ModelInfo, error)

	mu sync.Mutex
	// PredictCalls records every feature vector passed to Predict.
	PredictCalls []types.FeatureVector
}

// Predict implements types.Predictor.
func (m *MockPredictor) Predict(ctx context.Context, features types.FeatureVector) (*types.PredictionEstimate, error) {
	m.mu.Lock()
	m.PredictCalls = append(m.PredictCalls, features)
	m.mu.Unlock()

	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, features)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Estimate != nil {
		est := *m.Estimate
		return &est, nil
	}
	return &types.PredictionEstimate{PointValue: 2.0, LowerBound: 1.5, UpperBound: 2.5}, nil
}

// ModelInfo implements types.Predictor.
func (m *MockPredictor) ModelInfo(ctx context.Context) (*types.ModelInfo, error) {
	if m.ModelInfoFunc != nil {
		return m.ModelInfoFunc(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Info != nil {
		info := *m.Info
		return &info, nil
	}
	return &types.ModelInfo{Name: "mock-model", Version: "0.0.0"}, nil
}

// --- MockExportQueue ---

// MockExportQueue implements types.ExportQueue for testing.
type MockExportQueue struct {
	Err error

	mu sync.Mutex
	// Enqueued records every message passed to EnqueueExport.
	Enqueued []types.ExportMessage
}

// EnqueueExport implements types.ExportQueue.
func (m *MockExportQueue) EnqueueExport(ctx context.Context, msg types.ExportMessage) error {
	m.mu.Lock()
	m.Enqueued = append(m.Enqueued, msg)
	m.mu.Unlock()
	return m.Err
}

// Messages returns a copy of the enqueued messages, safe for concurrent use.
func (m *MockExportQueue) Messages() []types.ExportMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.ExportMessage, len(m.Enqueued))
	copy(out, m.Enqueued)
	return out
}

// --- MockMetricsCollector ---

// recordedRequest captures one RecordRequest call for assertions.
type recordedRequest struct {
	Method   string
	Endpoint string
	Status   string
	Duration time.Duration
}

// MockMetricsCollector implements MetricsCollector for testing.
type MockMetricsCollector struct {
	mu    sync.Mutex
	calls []recordedRequest
}

// RecordRequest implements MetricsCollector.
func (m *MockMetricsCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedRequest{method, endpoint, status, duration})
}

// Calls returns a copy of the recorded requests.
func (m *MockMetricsCollector) Calls() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recordedRequest, len(m.calls))
	copy(out, m.calls)
	return out
}
