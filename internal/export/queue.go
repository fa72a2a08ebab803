package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"maizecast/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher implements types.ExportQueue over SQS. The API enqueues an
// ExportMessage and returns immediately; the archive worker consumes it.
type Publisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewPublisher creates a Publisher for the export queue.
func NewPublisher(client SQSSender, queueURL string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// EnqueueExport implements types.ExportQueue.
func (p *Publisher) EnqueueExport(ctx context.Context, msg types.ExportMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("export: failed to marshal export message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"export_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.ExportID),
			},
		},
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return types.NewAppError(
			types.ErrCodeInternalQueue,
			"failed to enqueue export job",
			err,
		)
	}

	p.logger.InfoContext(ctx, "export job enqueued",
		"queue_url", p.queueURL,
		"export_id", msg.ExportID,
		"trace_id", msg.TraceID,
	)

	return nil
}
