package serializer

import "fmt"

// ValidationError reports a raw record that cannot be serialized into a
// CanonicalIdentity because a required field is missing or empty. It is
// fatal to that single record only; callers log and skip it.
type ValidationError struct {
	// Field is the missing or invalid required field.
	Field string
	// PersonID is the record's person id when known, "unknown" otherwise.
	PersonID string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing %s field or invalid value for person id %s", e.Field, e.PersonID)
}
