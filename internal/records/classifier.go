package records

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

// Classify dispatches a raw source-tagged record into one of the concrete
// record shapes. It never returns an error: a record that cannot be decoded
// as its tagged shape, or whose tag is unrecognized, becomes a FallbackRecord.
func Classify(raw map[string]interface{}) Record {
	switch Source(sourceTag(raw)) {
	case SourceChangeFeed:
		var rec events.DynamoDBEventRecord
		if decodeInto(raw, &rec) {
			return NewChangeFeedRecord(rec)
		}
	case SourceObjectStorage:
		var rec events.S3EventRecord
		if decodeInto(raw, &rec) {
			return NewObjectStorageRecord(rec)
		}
	case SourceQueueMessage:
		var rec events.SQSMessage
		if decodeInto(raw, &rec) {
			return NewQueueMessageRecord(rec)
		}
	}
	return NewFallbackRecord(raw)
}

// ClassifyBatch extracts the Records array from a raw lambda event and
// classifies each entry in order. A batch without a Records key yields an
// empty slice.
func ClassifyBatch(event map[string]interface{}) []Record {
	rawRecords, ok := event["Records"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(rawRecords))
	for _, entry := range rawRecords {
		raw, ok := entry.(map[string]interface{})
		if !ok {
			raw = map[string]interface{}{"value": entry}
		}
		out = append(out, Classify(raw))
	}
	return out
}

// sourceTag reads the record's eventSource field. S3 and SQS use the
// lowercase key; some shapes have carried the capitalized variant.
func sourceTag(raw map[string]interface{}) string {
	if tag, ok := raw["eventSource"].(string); ok {
		return tag
	}
	if tag, ok := raw["EventSource"].(string); ok {
		return tag
	}
	return ""
}

func decodeInto(raw map[string]interface{}, target interface{}) bool {
	data, err := json.Marshal(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}
