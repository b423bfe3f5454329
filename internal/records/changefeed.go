package records

import (
	"strconv"

	"github.com/aws/aws-lambda-go/events"
)

// ChangeFeedRecord is a DynamoDB stream record describing a before/after state
// transition for a stored item.
type ChangeFeedRecord struct {
	raw  events.DynamoDBEventRecord
	body interface{}
}

// NewChangeFeedRecord classifies the operation from image presence and selects
// the body: the after-image for creates and updates, the before-image for
// deletes.
func NewChangeFeedRecord(raw events.DynamoDBEventRecord) *ChangeFeedRecord {
	r := &ChangeFeedRecord{raw: raw}
	switch r.Operation() {
	case OperationCreate, OperationUpdate:
		r.body = r.AfterImage()
	case OperationDelete:
		r.body = r.BeforeImage()
	default:
		r.body = map[string]interface{}{}
	}
	return r
}

func (r *ChangeFeedRecord) ID() string     { return r.raw.EventID }
func (r *ChangeFeedRecord) Source() Source { return SourceChangeFeed }

// Operation is a pure function of image presence:
// after only -> create, both -> update, before only -> delete, neither -> unknown.
func (r *ChangeFeedRecord) Operation() Operation {
	hasAfter := len(r.raw.Change.NewImage) > 0
	hasBefore := len(r.raw.Change.OldImage) > 0
	switch {
	case hasAfter && !hasBefore:
		return OperationCreate
	case hasAfter && hasBefore:
		return OperationUpdate
	case !hasAfter && hasBefore:
		return OperationDelete
	default:
		return OperationUnknown
	}
}

func (r *ChangeFeedRecord) Body() interface{}        { return r.body }
func (r *ChangeFeedRecord) SetBody(body interface{}) { r.body = body }

// BeforeImage returns the pre-change item as plain Go values.
func (r *ChangeFeedRecord) BeforeImage() map[string]interface{} {
	return imageToPlain(r.raw.Change.OldImage)
}

// AfterImage returns the post-change item as plain Go values.
func (r *ChangeFeedRecord) AfterImage() map[string]interface{} {
	return imageToPlain(r.raw.Change.NewImage)
}

// Keys returns the stream record's key attributes as plain Go values.
func (r *ChangeFeedRecord) Keys() map[string]interface{} {
	return imageToPlain(r.raw.Change.Keys)
}

func imageToPlain(image map[string]events.DynamoDBAttributeValue) map[string]interface{} {
	out := make(map[string]interface{}, len(image))
	for k, av := range image {
		out[k] = attributeToPlain(av)
	}
	return out
}

// attributeToPlain converts a DynamoDB attribute value into the plain Go value
// a JSON decoder would have produced, so schema validation sees ordinary
// objects, arrays, strings, and numbers.
func attributeToPlain(av events.DynamoDBAttributeValue) interface{} {
	switch av.DataType() {
	case events.DataTypeString:
		return av.String()
	case events.DataTypeNumber:
		if f, err := strconv.ParseFloat(av.Number(), 64); err == nil {
			return f
		}
		return av.Number()
	case events.DataTypeBoolean:
		return av.Boolean()
	case events.DataTypeNull:
		return nil
	case events.DataTypeBinary:
		return av.Binary()
	case events.DataTypeMap:
		return imageToPlain(av.Map())
	case events.DataTypeList:
		list := av.List()
		out := make([]interface{}, len(list))
		for i, item := range list {
			out[i] = attributeToPlain(item)
		}
		return out
	case events.DataTypeStringSet:
		set := av.StringSet()
		out := make([]interface{}, len(set))
		for i, s := range set {
			out[i] = s
		}
		return out
	case events.DataTypeNumberSet:
		set := av.NumberSet()
		out := make([]interface{}, len(set))
		for i, n := range set {
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				out[i] = f
			} else {
				out[i] = n
			}
		}
		return out
	case events.DataTypeBinarySet:
		set := av.BinarySet()
		out := make([]interface{}, len(set))
		for i, b := range set {
			out[i] = b
		}
		return out
	default:
		return nil
	}
}
