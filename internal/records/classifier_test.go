package records

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_ChangeFeedRecord(t *testing.T) {
	raw := map[string]interface{}{
		"eventSource": "aws:dynamodb",
		"eventID":     "evt-1",
		"dynamodb": map[string]interface{}{
			"NewImage": map[string]interface{}{
				"id":    map[string]interface{}{"S": "item-1"},
				"count": map[string]interface{}{"N": "3"},
			},
		},
	}

	rec := Classify(raw)
	require.IsType(t, &ChangeFeedRecord{}, rec)
	assert.Equal(t, "evt-1", rec.ID())
	assert.Equal(t, SourceChangeFeed, rec.Source())
	assert.Equal(t, OperationCreate, rec.Operation())

	body, ok := rec.Body().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "item-1", body["id"])
	assert.Equal(t, float64(3), body["count"])
}

func TestClassify_ObjectStorageRecord(t *testing.T) {
	raw := map[string]interface{}{
		"eventSource": "aws:s3",
		"eventName":   "ObjectCreated:Put",
		"s3": map[string]interface{}{
			"bucket": map[string]interface{}{"name": "uploads"},
			"object": map[string]interface{}{"key": "data/file.json", "size": 42},
		},
	}

	rec := Classify(raw)
	require.IsType(t, &ObjectStorageRecord{}, rec)
	assert.Equal(t, "data/file.json", rec.ID())
	assert.Equal(t, SourceObjectStorage, rec.Source())
	assert.Equal(t, OperationCreate, rec.Operation())
}

func TestClassify_QueueMessageRecord(t *testing.T) {
	raw := map[string]interface{}{
		"eventSource": "aws:sqs",
		"messageId":   "msg-1",
		"body":        `{"id":"x"}`,
	}

	rec := Classify(raw)
	require.IsType(t, &QueueMessageRecord{}, rec)
	assert.Equal(t, "msg-1", rec.ID())
	assert.Equal(t, OperationCreate, rec.Operation())

	body, ok := rec.Body().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "x", body["id"])
}

func TestClassify_QueueMessageUnparseableBodyStaysRaw(t *testing.T) {
	raw := map[string]interface{}{
		"eventSource": "aws:sqs",
		"messageId":   "msg-2",
		"body":        "plain text, not structured",
	}

	rec := Classify(raw)
	require.IsType(t, &QueueMessageRecord{}, rec)
	assert.Equal(t, "plain text, not structured", rec.Body())
}

func TestClassify_UnrecognizedSourceFallsBack(t *testing.T) {
	raw := map[string]interface{}{
		"eventSource": "aws:kinesis",
		"payload":     "anything",
	}

	rec := Classify(raw)
	require.IsType(t, &FallbackRecord{}, rec)
	assert.Equal(t, SourceUnknown, rec.Source())
	assert.Equal(t, OperationCreate, rec.Operation())
	assert.NotEmpty(t, rec.ID())
	assert.Equal(t, raw, rec.Body())
}

func TestClassifyBatch_PreservesOrder(t *testing.T) {
	event := map[string]interface{}{
		"Records": []interface{}{
			map[string]interface{}{"eventSource": "aws:sqs", "messageId": "a", "body": "{}"},
			map[string]interface{}{"eventSource": "aws:sqs", "messageId": "b", "body": "{}"},
		},
	}

	out := ClassifyBatch(event)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID())
	assert.Equal(t, "b", out[1].ID())
}

func TestClassifyBatch_NoRecordsKey(t *testing.T) {
	assert.Empty(t, ClassifyBatch(map[string]interface{}{"detail": "nothing"}))
}

func TestChangeFeedOperation_TruthTable(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"id": events.NewStringAttribute("item-1"),
	}

	tests := []struct {
		name   string
		before map[string]events.DynamoDBAttributeValue
		after  map[string]events.DynamoDBAttributeValue
		want   Operation
	}{
		{"after only is create", nil, image, OperationCreate},
		{"both is update", image, image, OperationUpdate},
		{"before only is delete", image, nil, OperationDelete},
		{"neither is unknown", nil, nil, OperationUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewChangeFeedRecord(events.DynamoDBEventRecord{
				EventID: "evt",
				Change: events.DynamoDBStreamRecord{
					OldImage: tt.before,
					NewImage: tt.after,
				},
			})
			assert.Equal(t, tt.want, rec.Operation())
		})
	}
}

func TestChangeFeedBody_SelectsImageByOperation(t *testing.T) {
	before := map[string]events.DynamoDBAttributeValue{"id": events.NewStringAttribute("old")}
	after := map[string]events.DynamoDBAttributeValue{"id": events.NewStringAttribute("new")}

	update := NewChangeFeedRecord(events.DynamoDBEventRecord{
		Change: events.DynamoDBStreamRecord{OldImage: before, NewImage: after},
	})
	assert.Equal(t, map[string]interface{}{"id": "new"}, update.Body())
	assert.Equal(t, map[string]interface{}{"id": "old"}, update.BeforeImage())

	deleted := NewChangeFeedRecord(events.DynamoDBEventRecord{
		Change: events.DynamoDBStreamRecord{OldImage: before},
	})
	assert.Equal(t, map[string]interface{}{"id": "old"}, deleted.Body())
}

func TestObjectStorageOperation_Branches(t *testing.T) {
	tests := []struct {
		eventName string
		want      Operation
	}{
		{"ObjectCreated:Put", OperationCreate},
		{"ObjectCreated:CompleteMultipartUpload", OperationCreate},
		{"s3:ObjectCreated:Post", OperationCreate},
		{"PUT", OperationCreate},
		{"ObjectRemoved:Delete", OperationDelete},
		{"DELETE", OperationDelete},
		{"ObjectRestore:Completed", OperationUpdate},
		{"ReducedRedundancyLostObject", OperationUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.eventName, func(t *testing.T) {
			rec := NewObjectStorageRecord(events.S3EventRecord{EventName: tt.eventName})
			assert.Equal(t, tt.want, rec.Operation())
		})
	}
}

func TestAttributeToPlain_NestedStructures(t *testing.T) {
	av := events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
		"name":    events.NewStringAttribute("widget"),
		"ok":      events.NewBooleanAttribute(true),
		"tags":    events.NewStringSetAttribute([]string{"a", "b"}),
		"nothing": events.NewNullAttribute(),
		"list": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewNumberAttribute("1.5"),
		}),
	})

	plain, ok := attributeToPlain(av).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "widget", plain["name"])
	assert.Equal(t, true, plain["ok"])
	assert.Equal(t, []interface{}{"a", "b"}, plain["tags"])
	assert.Nil(t, plain["nothing"])
	assert.Equal(t, []interface{}{1.5}, plain["list"])
}
