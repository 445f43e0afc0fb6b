package tools

import "fmt"

// NotFoundError reports an identifier that resolved to no task. Carries a
// remediation hint for the model to relay.
type NotFoundError struct {
	Identifier string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found with identifier: %s", e.Identifier)
}

func newNotFound(identifier string) *NotFoundError {
	return &NotFoundError{
		Identifier: identifier,
		Suggestion: "Please provide the exact task title, ID number, or use bulk keywords like 'all', 'completed', 'pending'",
	}
}
