package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/syngenta/acai-ts-sub001/internal/records"
)

// fakeFetcher serves canned object content keyed by "bucket/key" and counts
// fetches.
type fakeFetcher struct {
	objects map[string][]byte
	calls   int
}

func (f *fakeFetcher) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	key := *params.Bucket + "/" + *params.Key
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object %s", key)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func objectRecord(t *testing.T, bucket, key string) records.Record {
	t.Helper()
	return records.Classify(map[string]interface{}{
		"eventSource": "aws:s3",
		"eventName":   "ObjectCreated:Put",
		"s3": map[string]interface{}{
			"bucket": map[string]interface{}{"name": bucket},
			"object": map[string]interface{}{"key": key, "size": 10},
		},
	})
}

func TestEnrich_JSONMode(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	fetcher := &fakeFetcher{objects: map[string][]byte{
		"uploads/data.json": []byte(`{"id":"x","count":2}`),
	}}
	enricher := NewEnricherWithClient(fetcher, ContentModeJSON, logger)

	rec := objectRecord(t, "uploads", "data.json")
	require.NoError(t, enricher.Enrich(context.Background(), rec))

	body, ok := rec.Body().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "x", body["id"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, 1, fetcher.calls)
}

func TestEnrich_CSVModeWithHeaderRow(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	fetcher := &fakeFetcher{objects: map[string][]byte{
		"uploads/data.csv": []byte("id,name\n1,widget\n2,gadget\n"),
	}}
	enricher := NewEnricherWithClient(fetcher, ContentModeCSV, logger)

	rec := objectRecord(t, "uploads", "data.csv")
	require.NoError(t, enricher.Enrich(context.Background(), rec))

	rows, ok := rec.Body().([]map[string]string)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]string{"id": "1", "name": "widget"}, rows[0])
	assert.Equal(t, map[string]string{"id": "2", "name": "gadget"}, rows[1])
}

func TestEnrich_RawModeWrapsWithMetadata(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	content := []byte{0x1, 0x2, 0x3}
	fetcher := &fakeFetcher{objects: map[string][]byte{"uploads/blob": content}}
	enricher := NewEnricherWithClient(fetcher, ContentModeRaw, logger)

	rec := objectRecord(t, "uploads", "blob")
	require.NoError(t, enricher.Enrich(context.Background(), rec))

	body, ok := rec.Body().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "uploads", body["bucket"])
	assert.Equal(t, "blob", body["key"])
	assert.Equal(t, content, body["content"])
}

func TestEnrich_NonObjectStorageRecordPassesThrough(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	fetcher := &fakeFetcher{}
	enricher := NewEnricherWithClient(fetcher, ContentModeJSON, logger)

	rec := records.Classify(map[string]interface{}{
		"eventSource": "aws:sqs",
		"messageId":   "m",
		"body":        `{"id":"x"}`,
	})
	before := rec.Body()

	require.NoError(t, enricher.Enrich(context.Background(), rec))
	assert.Equal(t, before, rec.Body())
	assert.Equal(t, 0, fetcher.calls)
}

func TestEnrich_FetchFailurePropagates(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	enricher := NewEnricherWithClient(&fakeFetcher{}, ContentModeJSON, logger)

	rec := objectRecord(t, "uploads", "absent.json")
	err := enricher.Enrich(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploads/absent.json")
}

func TestEnrich_BadJSONPropagates(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	fetcher := &fakeFetcher{objects: map[string][]byte{"uploads/bad.json": []byte("not json")}}
	enricher := NewEnricherWithClient(fetcher, ContentModeJSON, logger)

	err := enricher.Enrich(context.Background(), objectRecord(t, "uploads", "bad.json"))
	assert.Error(t, err)
}
