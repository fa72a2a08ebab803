package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"

	"maizecast/internal/types"
)

// mockS3Uploader captures PutObject calls for test assertions.
type mockS3Uploader struct {
	calls []*s3.PutObjectInput
	err   error
}

func (m *mockS3Uploader) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.calls = append(m.calls, params)
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 30, 15, 0, time.UTC)
	want := "exports/2026/03/history-20260310T093015Z.csv.gz"
	if got := ArchiveKey(at); got != want {
		t.Errorf("ArchiveKey = %q, want %q", got, want)
	}
}

func TestArchiveKey_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("GMT+3", 3*3600)
	at := time.Date(2026, 3, 10, 12, 30, 15, 0, loc)
	if got := ArchiveKey(at); got != "exports/2026/03/history-20260310T093015Z.csv.gz" {
		t.Errorf("ArchiveKey = %q, want the UTC-normalized key", got)
	}
}

func TestArchive_UploadsGzippedCSV(t *testing.T) {
	mock := &mockS3Uploader{}
	archiver := NewArchiver(mock, "maizecast-archive", 6, discardLogger())

	requestedAt := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	records := []types.HistoryRecord{testRecord()}

	key, err := archiver.Archive(context.Background(), "exp_123", requestedAt, records)
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if key != "exports/2026/03/history-20260310T093000Z.csv.gz" {
		t.Errorf("key = %q", key)
	}
	if len(mock.calls) != 1 {
		t.Fatalf("expected 1 PutObject call, got %d", len(mock.calls))
	}

	call := mock.calls[0]
	if *call.Bucket != "maizecast-archive" {
		t.Errorf("bucket = %q", *call.Bucket)
	}
	if *call.Key != key {
		t.Errorf("object key = %q, want %q", *call.Key, key)
	}
	if *call.ContentEncoding != "gzip" {
		t.Errorf("content encoding = %q", *call.ContentEncoding)
	}
	if call.Metadata["export-id"] != "exp_123" {
		t.Errorf("export-id metadata = %q", call.Metadata["export-id"])
	}

	// The body must decompress back to the CSV export.
	raw, err := io.ReadAll(call.Body)
	if err != nil {
		t.Fatalf("reading uploaded body: %v", err)
	}
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("uploaded body is not gzip: %v", err)
	}
	rows, err := csv.NewReader(gz).ReadAll()
	if err != nil {
		t.Fatalf("decompressed body is not CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("archive has %d rows, want header + 1", len(rows))
	}
	if rows[1][0] != "hist_abc123" {
		t.Errorf("archived record id = %q", rows[1][0])
	}
}

func TestArchive_UploadFailure(t *testing.T) {
	mock := &mockS3Uploader{err: errors.New("access denied")}
	archiver := NewArchiver(mock, "maizecast-archive", 6, discardLogger())

	_, err := archiver.Archive(context.Background(), "exp_123", time.Now(), nil)
	if err == nil {
		t.Fatal("expected an error from a failing upload")
	}
}

func TestNewArchiver_InvalidGzipLevelFallsBack(t *testing.T) {
	archiver := NewArchiver(&mockS3Uploader{}, "b", 99, discardLogger())
	if archiver.gzipLevel != gzip.DefaultCompression {
		t.Errorf("gzipLevel = %d, want the default", archiver.gzipLevel)
	}
}
