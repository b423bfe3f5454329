package records

import "github.com/google/uuid"

// FallbackRecord wraps a record whose source tag was not recognized. It passes
// the raw object through untouched so the pipeline never fails solely because
// of a new or unexpected source.
type FallbackRecord struct {
	id   string
	body interface{}
}

func NewFallbackRecord(raw map[string]interface{}) *FallbackRecord {
	return &FallbackRecord{
		id:   uuid.NewString(),
		body: raw,
	}
}

func (r *FallbackRecord) ID() string               { return r.id }
func (r *FallbackRecord) Source() Source           { return SourceUnknown }
func (r *FallbackRecord) Operation() Operation     { return OperationCreate }
func (r *FallbackRecord) Body() interface{}        { return r.body }
func (r *FallbackRecord) SetBody(body interface{}) { r.body = body }
