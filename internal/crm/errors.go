package crm

import (
	"errors"
	"fmt"

	"github.com/exportdesk/exportdesk/internal/store"
)

// ReferentialIntegrityError reports a foreign-key or cross-field constraint
// violation. Constraint names the rule that failed.
type ReferentialIntegrityError struct {
	Constraint string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("referential integrity violated: %s", e.Constraint)
}

// ValidationError reports malformed input surfaced at the service boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// referenceError translates a failed reference lookup. A missing row is a
// referential violation under the given constraint name; a cross-tenant row
// keeps its scope error so the caller sees the access denial, not a
// different-looking failure that would leak existence.
func referenceError(err error, constraint string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &ReferentialIntegrityError{Constraint: constraint}
	}
	return err
}
