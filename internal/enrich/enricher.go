// Package enrich fetches externally stored payload content for
// object-storage records and decodes it per the configured content mode.
// It is the only part of the pipeline that performs I/O against the object
// store; retry policy belongs to the store client, not here.
package enrich

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/syngenta/acai-ts-sub001/internal/records"
)

// ObjectFetcher is the slice of the S3 client the enricher needs.
type ObjectFetcher interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ContentMode selects how a fetched payload is decoded.
type ContentMode int

const (
	// ContentModeRaw wraps the raw bytes with the object's storage metadata.
	ContentModeRaw ContentMode = iota
	// ContentModeJSON decodes the payload as a JSON document.
	ContentModeJSON
	// ContentModeCSV decodes the payload as delimited text with a header row.
	ContentModeCSV
)

// Config carries the object store connection settings. Endpoint and path
// style cover MinIO/LocalStack setups.
type Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Enricher fetches object content for object-storage records and replaces
// each record's body in place.
type Enricher struct {
	client ObjectFetcher
	mode   ContentMode
	logger *zap.Logger
}

// NewEnricher builds an enricher over a real S3 client.
func NewEnricher(ctx context.Context, cfg Config, mode ContentMode, logger *zap.Logger) (*Enricher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}
	return NewEnricherWithClient(client, mode, logger), nil
}

// NewEnricherWithClient builds an enricher over any ObjectFetcher. Tests use
// this with a fake client.
func NewEnricherWithClient(client ObjectFetcher, mode ContentMode, logger *zap.Logger) *Enricher {
	return &Enricher{client: client, mode: mode, logger: logger}
}

// Enrich fetches and decodes the stored object for an object-storage record,
// replacing the record's body. Records of any other kind pass through
// untouched.
func (e *Enricher) Enrich(ctx context.Context, rec records.Record) error {
	objectRec, ok := rec.(*records.ObjectStorageRecord)
	if !ok {
		return nil
	}

	out, err := e.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(objectRec.Bucket()),
		Key:    aws.String(objectRec.Key()),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch object %s/%s: %w", objectRec.Bucket(), objectRec.Key(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("failed to read object %s/%s: %w", objectRec.Bucket(), objectRec.Key(), err)
	}

	body, err := e.decode(data, objectRec)
	if err != nil {
		return err
	}
	rec.SetBody(body)

	e.logger.Debug("enriched object-storage record",
		zap.String("bucket", objectRec.Bucket()),
		zap.String("key", objectRec.Key()),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func (e *Enricher) decode(data []byte, rec *records.ObjectStorageRecord) (interface{}, error) {
	switch e.mode {
	case ContentModeJSON:
		var decoded interface{}
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode object %s/%s as JSON: %w", rec.Bucket(), rec.Key(), err)
		}
		return decoded, nil
	case ContentModeCSV:
		return decodeCSV(data, rec)
	default:
		return map[string]interface{}{
			"bucket":  rec.Bucket(),
			"key":     rec.Key(),
			"size":    rec.Size(),
			"content": data,
		}, nil
	}
}

// decodeCSV reads delimited text whose first row names the columns, yielding
// one map per data row.
func decodeCSV(data []byte, rec *records.ObjectStorageRecord) (interface{}, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to decode object %s/%s as CSV: %w", rec.Bucket(), rec.Key(), err)
	}
	if len(rows) == 0 {
		return []map[string]string{}, nil
	}
	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entry := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(row) {
				entry[column] = row[i]
			}
		}
		out = append(out, entry)
	}
	return out, nil
}
