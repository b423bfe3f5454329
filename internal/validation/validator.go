// Package validation maps structural and declarative validation requirements
// onto a uniform error model. Three entry points share one schema store:
// full OpenAPI operation validation, declarative field-requirement
// validation, and direct per-record schema validation.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/syngenta/acai-ts-sub001/internal/schema"
)

// Validator orchestrates validation against a schema store. The store is
// reloaded at the top of every entry point so schema file edits on disk take
// effect on the next call.
type Validator struct {
	store  *schema.Store
	logger *zap.Logger
}

func NewValidator(store *schema.Store, logger *zap.Logger) *Validator {
	return &Validator{store: store, logger: logger}
}

// ValidateRequest runs full OpenAPI operation validation for the given route
// and method against the translated request. Native dotted-path errors become
// entries keyed by the segment after the first dot, so "body.id" reports as
// "id". Schema resolution failures propagate; they indicate a deployment
// mistake, not bad input.
func (v *Validator) ValidateRequest(req *Request, route, method string, resp *Response) error {
	if err := v.store.Reload(); err != nil {
		return err
	}
	operation, err := v.store.OperationSchema(route, method)
	if err != nil {
		return err
	}
	composite, err := v.compositeRequestSchema(operation)
	if err != nil {
		return err
	}
	result, err := v.validate(composite, req.asDocument())
	if err != nil {
		return err
	}
	for _, entry := range result {
		resp.SetError(requestErrorKey(entry.Key), entry.Message)
	}
	if resp.HasErrors() {
		resp.Code = 400
	}
	return nil
}

// ValidateWithRequirements enforces a route's declarative requirement bundle
// in the fixed pairing order. Every request-side failure forces code 400.
func (v *Validator) ValidateWithRequirements(req *Request, reqs Requirements, resp *Response) error {
	if err := v.store.Reload(); err != nil {
		return err
	}
	for _, check := range requirementChecks {
		before := len(resp.Errors)
		if err := check.run(v, req, reqs, resp); err != nil {
			return fmt.Errorf("%s check failed: %w", check.name, err)
		}
		if len(resp.Errors) > before {
			resp.Code = check.code
		}
	}
	return nil
}

// ValidateRecord validates a record's body against a named or inline schema.
// With throwOnError, a failing record yields a ValidationFailureError whose
// message is the JSON encoding of the ordered {path, message} list. Without
// it, the result is marked invalid and processing continues.
func (v *Validator) ValidateRecord(res *Result, schemaRef interface{}, throwOnError bool) (bool, error) {
	if err := v.store.Reload(); err != nil {
		return false, err
	}
	resolved, err := v.store.Resolve(schemaRef)
	if err != nil {
		return false, err
	}
	failures, err := v.validate(resolved, res.Record.Body())
	if err != nil {
		return false, err
	}
	if len(failures) == 0 {
		return true, nil
	}
	if throwOnError {
		entries := make([]PathMessage, len(failures))
		for i, entry := range failures {
			entries[i] = PathMessage{Path: entry.Key, Message: entry.Message}
		}
		return false, &ValidationFailureError{Entries: entries}
	}
	res.Invalidate(failures)
	return false, nil
}

// ValidateResponse drills to the schema for the matching status code and
// content type and validates the response body against it. Failures force
// code 422.
func (v *Validator) ValidateResponse(body interface{}, route, method string, statusCode int, contentType string, resp *Response) error {
	if err := v.store.Reload(); err != nil {
		return err
	}
	responseSchema, err := v.store.ResponseSchema(route, method, statusCode, contentType)
	if err != nil {
		return err
	}
	return v.applyResponseSchema(responseSchema, body, resp)
}

// ValidateResponseWithRequirements checks the response body against the
// single schema declared in the requirement bundle, if any, forcing 422 on
// failure.
func (v *Validator) ValidateResponseWithRequirements(body interface{}, reqs Requirements, resp *Response) error {
	if reqs.Response == nil {
		return nil
	}
	if err := v.store.Reload(); err != nil {
		return err
	}
	resolved, err := v.store.Resolve(reqs.Response)
	if err != nil {
		return err
	}
	return v.applyResponseSchema(resolved, body, resp)
}

func (v *Validator) applyResponseSchema(resolved map[string]interface{}, body interface{}, resp *Response) error {
	failures, err := v.validate(resolved, body)
	if err != nil {
		return err
	}
	for _, entry := range failures {
		resp.SetError(responseErrorKey(entry.Key), entry.Message)
	}
	if resp.HasErrors() {
		resp.Code = 422
	}
	return nil
}

// validateBodyAgainst resolves the referenced schema and validates the body,
// writing failures into the response. Used by the required-body requirement.
func (v *Validator) validateBodyAgainst(schemaRef, body interface{}, resp *Response) error {
	resolved, err := v.store.Resolve(schemaRef)
	if err != nil {
		return err
	}
	failures, err := v.validate(resolved, body)
	if err != nil {
		return err
	}
	for _, entry := range failures {
		resp.SetError(requestErrorKey(entry.Key), entry.Message)
	}
	return nil
}

// validate compiles the resolved schema through the store's cache and runs
// the structural validator, translating each native error into an entry whose
// key is the engine's dotted field path. Error order is the engine's own.
func (v *Validator) validate(resolved map[string]interface{}, document interface{}) ([]ErrorEntry, error) {
	compiled, err := v.store.Compile(resolved)
	if err != nil {
		return nil, err
	}
	if document == nil {
		document = map[string]interface{}{}
	}
	result, err := compiled.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	v.logger.Debug("schema validation produced errors", zap.Int("count", len(result.Errors())))
	entries := make([]ErrorEntry, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		entries = append(entries, ErrorEntry{
			Key:     resultError.Field(),
			Message: resultError.Description(),
		})
	}
	return entries, nil
}

// compositeRequestSchema assembles one object schema over the translated
// request areas from the OpenAPI operation: parameters grouped by their "in"
// location plus the JSON request body schema.
func (v *Validator) compositeRequestSchema(operation map[string]interface{}) (map[string]interface{}, error) {
	areas := map[string]map[string]interface{}{
		"header": newAreaSchema(),
		"query":  newAreaSchema(),
		"path":   newAreaSchema(),
	}

	parameters, _ := operation["parameters"].([]interface{})
	for _, raw := range parameters {
		param, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		location, _ := param["in"].(string)
		area, ok := areas[location]
		if !ok {
			continue
		}
		name, _ := param["name"].(string)
		if name == "" {
			continue
		}
		properties := area["properties"].(map[string]interface{})
		if paramSchema, ok := param["schema"].(map[string]interface{}); ok {
			properties[name] = flattenedCopy(paramSchema)
		} else {
			properties[name] = map[string]interface{}{}
		}
		if required, _ := param["required"].(bool); required {
			area["required"] = append(area["required"].([]interface{}), name)
		}
	}

	// The draft-4 metaschema rejects empty required arrays.
	for _, area := range areas {
		if len(area["required"].([]interface{})) == 0 {
			delete(area, "required")
		}
	}

	composite := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"headers":         areas["header"],
			"queryParameters": areas["query"],
			"pathParameters":  areas["path"],
		},
		"required":             []interface{}{"headers", "queryParameters", "pathParameters"},
		"additionalProperties": true,
	}

	if bodySchema := requestBodySchema(operation); bodySchema != nil {
		resolved, err := v.store.Resolve(bodySchema)
		if err != nil {
			return nil, err
		}
		composite["properties"].(map[string]interface{})["body"] = resolved
		composite["required"] = append(composite["required"].([]interface{}), "body")
	}
	return composite, nil
}

func newAreaSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"properties":           map[string]interface{}{},
		"required":             []interface{}{},
		"additionalProperties": true,
	}
}

func requestBodySchema(operation map[string]interface{}) map[string]interface{} {
	requestBody, _ := operation["requestBody"].(map[string]interface{})
	content, _ := requestBody["content"].(map[string]interface{})
	media, _ := content["application/json"].(map[string]interface{})
	bodySchema, _ := media["schema"].(map[string]interface{})
	return bodySchema
}

func flattenedCopy(s map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// requestErrorKey takes the segment after the first dot in the engine's
// dotted error path, falling back to the whole path: "body.id" -> "id".
func requestErrorKey(field string) string {
	if idx := strings.Index(field, "."); idx >= 0 {
		return field[idx+1:]
	}
	return field
}

// responseErrorKey normalizes slash-separated instance paths to the dotted
// form before keying the entry.
func responseErrorKey(field string) string {
	return strings.ReplaceAll(field, "/", ".")
}
