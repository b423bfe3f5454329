package records

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

// QueueMessageRecord is an SQS message carrying one opaque payload. Queue
// messages are always classified as creations.
type QueueMessageRecord struct {
	raw  events.SQSMessage
	body interface{}
}

// NewQueueMessageRecord decodes the message body as JSON when possible;
// otherwise the body stays the original unparsed text.
func NewQueueMessageRecord(raw events.SQSMessage) *QueueMessageRecord {
	r := &QueueMessageRecord{raw: raw}
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw.Body), &decoded); err == nil {
		r.body = decoded
	} else {
		r.body = raw.Body
	}
	return r
}

func (r *QueueMessageRecord) ID() string               { return r.raw.MessageId }
func (r *QueueMessageRecord) Source() Source           { return SourceQueueMessage }
func (r *QueueMessageRecord) Operation() Operation     { return OperationCreate }
func (r *QueueMessageRecord) Body() interface{}        { return r.body }
func (r *QueueMessageRecord) SetBody(body interface{}) { r.body = body }

// RawBody returns the undecoded message text.
func (r *QueueMessageRecord) RawBody() string { return r.raw.Body }

// Attributes returns the message's string-valued attributes.
func (r *QueueMessageRecord) Attributes() map[string]string {
	out := make(map[string]string, len(r.raw.MessageAttributes))
	for k, attr := range r.raw.MessageAttributes {
		if attr.StringValue != nil {
			out[k] = *attr.StringValue
		}
	}
	return out
}
