package pipeline

import (
	"fmt"
	"strings"

	"github.com/syngenta/acai-ts-sub001/internal/records"
)

// OperationNotAllowedError is returned when a record's classified operation is
// outside the allow-list and the caller asked for hard failures.
type OperationNotAllowedError struct {
	Operation records.Operation
	Allowed   []records.Operation
}

func (e *OperationNotAllowedError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, op := range e.Allowed {
		allowed[i] = string(op)
	}
	return fmt.Sprintf("operation %q is not allowed (allowed: %s)",
		e.Operation, strings.Join(allowed, ", "))
}

// ConfigurationError reports mutually exclusive options used together. It
// always propagates: it indicates a programming mistake, not bad input.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "invalid pipeline configuration: " + e.Message
}
