package validation

// Request is the translated view of an inbound API request that OpenAPI
// operation validation runs against.
type Request struct {
	Headers         map[string]string
	QueryParameters map[string]string
	PathParameters  map[string]string
	Body            interface{}
}

// asDocument renders the request as the generic document shape the composite
// operation schema validates: {headers, queryParameters, pathParameters, body}.
func (r *Request) asDocument() map[string]interface{} {
	doc := map[string]interface{}{
		"headers":         stringMapToDocument(r.Headers),
		"queryParameters": stringMapToDocument(r.QueryParameters),
		"pathParameters":  stringMapToDocument(r.PathParameters),
	}
	if r.Body != nil {
		doc["body"] = r.Body
	}
	return doc
}

func stringMapToDocument(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
