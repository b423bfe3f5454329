package schema

import "fmt"

// SchemaNotFoundError reports a named entity missing from the loaded
// document's components.schemas section.
type SchemaNotFoundError struct {
	Name string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema %q not found in components.schemas", e.Name)
}

// OperationNotFoundError reports a route/method pair missing from the loaded
// document's paths section.
type OperationNotFoundError struct {
	Route  string
	Method string
}

func (e *OperationNotFoundError) Error() string {
	return fmt.Sprintf("no operation defined for %s %s", e.Method, e.Route)
}

// ResponseSchemaNotFoundError reports a missing link in the
// responses -> status -> content -> content-type -> schema chain. The message
// carries every lookup coordinate for diagnosability.
type ResponseSchemaNotFoundError struct {
	Route       string
	Method      string
	StatusCode  int
	ContentType string
	Missing     string
}

func (e *ResponseSchemaNotFoundError) Error() string {
	return fmt.Sprintf("no response schema for %s %s status %d content type %q: missing %s",
		e.Method, e.Route, e.StatusCode, e.ContentType, e.Missing)
}
