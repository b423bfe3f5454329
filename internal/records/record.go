// Package records normalizes heterogeneous cloud event records into a single
// polymorphic view. Three concrete shapes are supported: change-feed records
// from a DynamoDB stream, object-storage notifications from S3, and queue
// messages from SQS. Anything else falls back to a minimal pass-through record
// so a batch never fails on an unrecognized source.
package records

// Operation is the classified action a record describes.
type Operation string

const (
	OperationCreate  Operation = "create"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
	OperationUnknown Operation = "unknown"
)

// Source identifies the upstream system a record came from. The values match
// the eventSource tags on the provider's wire format.
type Source string

const (
	SourceChangeFeed    Source = "aws:dynamodb"
	SourceObjectStorage Source = "aws:s3"
	SourceQueueMessage  Source = "aws:sqs"
	SourceUnknown       Source = "unknown"
)

// Record is the uniform view over one unit of cloud event data. Each concrete
// shape carries its own source-specific fields; the pipeline only relies on
// this interface.
type Record interface {
	// ID is a stable identity for the record within its batch.
	ID() string
	// Source reports which upstream shape the record was classified as.
	Source() Source
	// Operation reports the classified action (create, update, delete, unknown).
	Operation() Operation
	// Body returns the record's payload. For change-feed records this is the
	// relevant image, for queue messages the decoded message body, for
	// object-storage records the object coordinates until enrichment replaces
	// them with the fetched content.
	Body() interface{}
	// SetBody replaces the payload. Enrichment is the only caller; the record
	// owns its body exclusively and the previous value is discarded.
	SetBody(body interface{})
}
