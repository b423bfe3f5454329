package validation

// Response accumulates validation errors alongside the HTTP status code the
// failing check mandates. A response with no entries is a valid outcome.
type Response struct {
	Code   int
	Errors []ErrorEntry
}

func NewResponse() *Response {
	return &Response{Code: 200}
}

// SetError appends an entry. Order is preserved as produced by the
// underlying schema engine; no re-sorting.
func (r *Response) SetError(key, message string) {
	r.Errors = append(r.Errors, ErrorEntry{Key: key, Message: message})
}

func (r *Response) HasErrors() bool {
	return len(r.Errors) > 0
}
