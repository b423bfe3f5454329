package records

import (
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// ObjectStorageRecord is an S3 notification describing an action on a stored
// object. Until enrichment runs, its body is the object coordinates from the
// notification itself.
type ObjectStorageRecord struct {
	raw  events.S3EventRecord
	body interface{}
}

func NewObjectStorageRecord(raw events.S3EventRecord) *ObjectStorageRecord {
	return &ObjectStorageRecord{
		raw: raw,
		body: map[string]interface{}{
			"bucket": raw.S3.Bucket.Name,
			"key":    raw.S3.Object.Key,
			"size":   raw.S3.Object.Size,
		},
	}
}

func (r *ObjectStorageRecord) ID() string     { return r.raw.S3.Object.Key }
func (r *ObjectStorageRecord) Source() Source { return SourceObjectStorage }

// Operation classifies by case-insensitive substring match on the event name,
// e.g. "ObjectCreated:Put" or "ObjectRemoved:Delete".
func (r *ObjectStorageRecord) Operation() Operation {
	name := strings.ToLower(r.raw.EventName)
	switch {
	case strings.Contains(name, "objectcreated"),
		strings.Contains(name, "put"),
		strings.Contains(name, "post"):
		return OperationCreate
	case strings.Contains(name, "objectremoved"),
		strings.Contains(name, "delete"):
		return OperationDelete
	case strings.Contains(name, "objectrestore"):
		return OperationUpdate
	default:
		return OperationUnknown
	}
}

func (r *ObjectStorageRecord) Body() interface{}        { return r.body }
func (r *ObjectStorageRecord) SetBody(body interface{}) { r.body = body }

func (r *ObjectStorageRecord) Bucket() string { return r.raw.S3.Bucket.Name }
func (r *ObjectStorageRecord) Key() string    { return r.raw.S3.Object.Key }
func (r *ObjectStorageRecord) Size() int64    { return r.raw.S3.Object.Size }
