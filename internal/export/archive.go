package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"

	"maizecast/internal/types"
)

// S3Uploader abstracts the S3 PutObject operation for testability.
// Production code uses the *s3.Client from aws-sdk-go-v2.
type S3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver writes gzip-compressed CSV archives of the prediction history to
// the archive bucket.
type Archiver struct {
	client    S3Uploader
	bucket    string
	gzipLevel int
	logger    *slog.Logger
}

// NewArchiver creates an Archiver. gzipLevel outside the valid range falls
// back to the package default.
func NewArchiver(client S3Uploader, bucket string, gzipLevel int, logger *slog.Logger) *Archiver {
	if gzipLevel < gzip.BestSpeed || gzipLevel > gzip.BestCompression {
		gzipLevel = gzip.DefaultCompression
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		client:    client,
		bucket:    bucket,
		gzipLevel: gzipLevel,
		logger:    logger,
	}
}

// ArchiveKey returns the S3 object key for an export requested at the given
// time. The key is derived from the request time, not the upload time, so an
// SQS redelivery overwrites its own object instead of duplicating it.
func ArchiveKey(requestedAt time.Time) string {
	ts := requestedAt.UTC()
	return fmt.Sprintf("exports/%04d/%02d/history-%s.csv.gz",
		ts.Year(), ts.Month(), ts.Format("20060102T150405Z"))
}

// Archive compresses the records as CSV and uploads them under the key for
// requestedAt. It returns the object key.
func (a *Archiver) Archive(ctx context.Context, exportID string, requestedAt time.Time, records []types.HistoryRecord) (string, error) {
	var buf bytes.Buffer

	gz, err := gzip.NewWriterLevel(&buf, a.gzipLevel)
	if err != nil {
		return "", fmt.Errorf("export: failed to create gzip writer: %w", err)
	}
	if err := WriteCSV(gz, records); err != nil {
		gz.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("export: failed to finish gzip stream: %w", err)
	}

	key := ArchiveKey(requestedAt)

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentType:     aws.String("text/csv"),
		ContentEncoding: aws.String("gzip"),
		Metadata: map[string]string{
			"export-id": exportID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("export: failed to upload archive %s: %w", key, err)
	}

	a.logger.InfoContext(ctx, "history archive uploaded",
		"bucket", a.bucket,
		"key", key,
		"export_id", exportID,
		"records", len(records),
		"compressed_bytes", buf.Len(),
	)

	return key, nil
}
