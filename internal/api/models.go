package api

import "github.com/syngenta/acai-ts-sub001/internal/validation"

// ValidateRequestRequest is the translated inbound request to check against
// an OpenAPI operation.
type ValidateRequestRequest struct {
	Route           string            `json:"route" binding:"required"`
	Method          string            `json:"method" binding:"required"`
	Headers         map[string]string `json:"headers"`
	QueryParameters map[string]string `json:"queryParameters"`
	PathParameters  map[string]string `json:"pathParameters"`
	Body            interface{}       `json:"body"`
}

// ValidateRecordRequest validates one payload against a named or inline
// schema.
type ValidateRecordRequest struct {
	// Schema names a components.schemas entry; InlineSchema carries a bare
	// schema object. Exactly one should be set.
	Schema       string                 `json:"schema"`
	InlineSchema map[string]interface{} `json:"inlineSchema"`
	Body         interface{}            `json:"body"`
}

type ValidateResponse struct {
	Valid  bool                   `json:"valid"`
	Errors []validation.ErrorEntry `json:"errors,omitempty"`
}
