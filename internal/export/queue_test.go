package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"maizecast/internal/types"
)

// mockSQSSender captures SendMessage calls for test assertions.
type mockSQSSender struct {
	calls []*sqs.SendMessageInput
	err   error
}

func (m *mockSQSSender) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.calls = append(m.calls, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{}, nil
}

const testQueueURL = "https://sqs.eu-west-1.amazonaws.com/123456789/maizecast-exports"

func TestEnqueueExport_SendsMessage(t *testing.T) {
	mock := &mockSQSSender{}
	pub := NewPublisher(mock, testQueueURL, discardLogger())

	msg := types.ExportMessage{
		ExportID:    "exp_123",
		RequestedAt: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		TraceID:     "trace-abc",
	}

	if err := pub.EnqueueExport(context.Background(), msg); err != nil {
		t.Fatalf("EnqueueExport failed: %v", err)
	}

	if len(mock.calls) != 1 {
		t.Fatalf("expected 1 SQS call, got %d", len(mock.calls))
	}

	call := mock.calls[0]
	if *call.QueueUrl != testQueueURL {
		t.Errorf("queue URL = %q", *call.QueueUrl)
	}

	var decoded types.ExportMessage
	if err := json.Unmarshal([]byte(*call.MessageBody), &decoded); err != nil {
		t.Fatalf("failed to unmarshal message body: %v", err)
	}
	if decoded != msg {
		t.Errorf("decoded message = %+v, want %+v", decoded, msg)
	}

	attr, ok := call.MessageAttributes["export_id"]
	if !ok {
		t.Fatal("export_id message attribute missing")
	}
	if *attr.StringValue != "exp_123" {
		t.Errorf("export_id attribute = %q", *attr.StringValue)
	}
}

func TestEnqueueExport_SendFailure(t *testing.T) {
	mock := &mockSQSSender{err: errors.New("queue does not exist")}
	pub := NewPublisher(mock, testQueueURL, discardLogger())

	err := pub.EnqueueExport(context.Background(), types.ExportMessage{ExportID: "exp_123"})
	if err == nil {
		t.Fatal("expected an error from a failing send")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error is %T, want *types.AppError", err)
	}
	if appErr.Code != types.ErrCodeInternalQueue {
		t.Errorf("code = %q, want internal_queue_error", appErr.Code)
	}
}
