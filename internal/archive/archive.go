// Package archive persists classification runs to S3 as append-only JSONL
// logs, one key namespace per client. The database keeps only the latest
// classification per entity; the archive keeps every run for offline
// analysis and model tuning.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/ignite/adpulse/internal/domain"
)

// Store is an S3-backed run archive. A nil S3 client turns every
// operation into a no-op so local development works without AWS.
type Store struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

// New creates an archive store writing to the given bucket.
func New(client *s3.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket, now: time.Now}
}

func (s *Store) clientPrefix(clientID string) string {
	return fmt.Sprintf("clients/%s/%s", clientID, s.now().UTC().Format("2006-01-02"))
}

// AppendFindings appends one JSONL line per finding to the client's
// daily log.
func (s *Store) AppendFindings(ctx context.Context, clientID string, findings []domain.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	key := s.clientPrefix(clientID) + "/findings.jsonl"
	var buf bytes.Buffer
	for _, f := range findings {
		line, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encode finding %s: %w", f.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return s.appendObject(ctx, key, buf.Bytes())
}

// AppendClassifications appends one JSONL line per classification to the
// client's daily log.
func (s *Store) AppendClassifications(ctx context.Context, clientID string, batch []domain.Classification) error {
	if len(batch) == 0 {
		return nil
	}
	key := s.clientPrefix(clientID) + "/classifications.jsonl"
	var buf bytes.Buffer
	for _, c := range batch {
		line, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode classification %s/%s: %w", c.Level, c.EntityID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return s.appendObject(ctx, key, buf.Bytes())
}

// ReadFindings loads a client's archived findings for a given day.
func (s *Store) ReadFindings(ctx context.Context, clientID string, day time.Time) ([]domain.Finding, error) {
	key := fmt.Sprintf("clients/%s/%s/findings.jsonl", clientID, day.UTC().Format("2006-01-02"))
	data, err := s.getObject(ctx, key)
	if err != nil {
		return nil, err
	}
	var findings []domain.Finding
	for _, line := range splitJSONL(data) {
		var f domain.Finding
		if err := json.Unmarshal(line, &f); err != nil {
			continue
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func splitJSONL(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

func (s *Store) getObject(ctx context.Context, key string) (json.RawMessage, error) {
	if s.client == nil {
		return nil, nil
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil // missing daily logs read as empty
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// isNotFound reports whether err is S3's missing-object error. Only a
// missing object may read as empty: treating auth or network failures the
// same would let the next append overwrite the log with just the new
// batch.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

func (s *Store) putObject(ctx context.Context, key string, data []byte) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *Store) appendObject(ctx context.Context, key string, data []byte) error {
	if s.client == nil {
		return nil
	}
	existing, err := s.getObject(ctx, key)
	if err != nil {
		return err
	}
	combined := append(existing, data...)
	return s.putObject(ctx, key, combined)
}
