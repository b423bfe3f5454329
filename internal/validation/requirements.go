package validation

import (
	"fmt"
	"sort"
)

// Requirements is the declarative bundle a route declares for its requests
// and responses. A nil field means no constraint for that area.
type Requirements struct {
	RequiredHeaders  []string
	AvailableHeaders []string
	RequiredQuery    []string
	AvailableQuery   []string
	// RequiredBody names a components.schemas entry (string) or carries an
	// inline schema (map). When set, the body is validated against it in full.
	RequiredBody interface{}
	// Response carries the schema the response body must satisfy.
	Response interface{}
}

// requirementCheck pairs one requirement kind with the concrete function that
// enforces it and the status code a failure mandates.
type requirementCheck struct {
	name string
	code int
	run  func(v *Validator, req *Request, reqs Requirements, resp *Response) error
}

// requirementChecks is the fixed iteration order for declarative validation.
// The order determines error ordering and must stay:
// required-headers, available-headers, required-query, available-query,
// required-body.
var requirementChecks = []requirementCheck{
	{name: "required-headers", code: 400, run: checkRequiredHeaders},
	{name: "available-headers", code: 400, run: checkAvailableHeaders},
	{name: "required-query", code: 400, run: checkRequiredQuery},
	{name: "available-query", code: 400, run: checkAvailableQuery},
	{name: "required-body", code: 400, run: checkRequiredBody},
}

func checkRequiredHeaders(_ *Validator, req *Request, reqs Requirements, resp *Response) error {
	checkRequired(req.Headers, reqs.RequiredHeaders, "headers", resp)
	return nil
}

func checkAvailableHeaders(_ *Validator, req *Request, reqs Requirements, resp *Response) error {
	checkAvailable(req.Headers, reqs.AvailableHeaders, "headers", resp)
	return nil
}

func checkRequiredQuery(_ *Validator, req *Request, reqs Requirements, resp *Response) error {
	checkRequired(req.QueryParameters, reqs.RequiredQuery, "query parameters", resp)
	return nil
}

func checkAvailableQuery(_ *Validator, req *Request, reqs Requirements, resp *Response) error {
	checkAvailable(req.QueryParameters, reqs.AvailableQuery, "query parameters", resp)
	return nil
}

func checkRequiredBody(v *Validator, req *Request, reqs Requirements, resp *Response) error {
	if reqs.RequiredBody == nil {
		return nil
	}
	return v.validateBodyAgainst(reqs.RequiredBody, req.Body, resp)
}

// checkRequired flags every named field that is absent. Presence is the only
// criterion: empty strings count as present.
func checkRequired(fields map[string]string, names []string, area string, resp *Response) {
	for _, name := range names {
		if _, ok := fields[name]; !ok {
			resp.SetError(area, fmt.Sprintf("Please provide %s for %s", name, area))
		}
	}
}

// checkAvailable flags every present field that is not in the declared
// allow-list. A nil allow-list means no constraint.
func checkAvailable(fields map[string]string, allowed []string, area string, resp *Response) {
	if allowed == nil {
		return
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}
	present := make([]string, 0, len(fields))
	for name := range fields {
		present = append(present, name)
	}
	sort.Strings(present)
	for _, name := range present {
		if !allowedSet[name] {
			resp.SetError(area, fmt.Sprintf("%s is not an available %s", name, area))
		}
	}
}
