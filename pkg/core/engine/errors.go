package engine

import (
	"fmt"
	"strings"

	"github.com/ntsvetkov/campus-manager/pkg/core/model"
)

// ConfigurationError is fatal: the weight table cannot serve any student.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ValidationErrors carries the itemized list of rows that failed validation.
// It is returned instead of a result when the policy is RejectBatch.
type ValidationErrors struct {
	Rows []model.RowError
}

func (e *ValidationErrors) Error() string {
	if len(e.Rows) == 1 {
		r := e.Rows[0]
		return fmt.Sprintf("1 invalid student row: %s", formatRowError(r))
	}

	details := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		details[i] = formatRowError(r)
	}
	return fmt.Sprintf("%d invalid student rows: %s", len(e.Rows), strings.Join(details, "; "))
}

func formatRowError(r model.RowError) string {
	name := r.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("row %d (%s) field %s: %s", r.Index, name, r.Field, r.Reason)
}
