package validation

import "encoding/json"

// ErrorEntry is the uniform error shape every validation mode converges on:
// a location or field path plus a human-readable description.
type ErrorEntry struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// PathMessage is the entry shape carried by ValidationFailureError for direct
// record validation failures.
type PathMessage struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationFailureError is returned from direct record validation when the
// caller has opted into hard failures. It carries the full ordered list of
// failures, not just the first, and its message is their JSON encoding.
type ValidationFailureError struct {
	Entries []PathMessage
}

func (e *ValidationFailureError) Error() string {
	data, err := json.Marshal(e.Entries)
	if err != nil {
		return "validation failed"
	}
	return string(data)
}
