package authz

import (
	"errors"
	"fmt"
)

// NotAuthorizedError is returned when a policy predicate evaluates false, or
// when no policy exists for the table/action pair (fail-closed). The
// operation is refused before any row is read or written.
type NotAuthorizedError struct {
	Subject Subject
	Action  Action
	Object  Object
}

func (e NotAuthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s on %s denied for subject %s",
		e.Action, e.Object.Table, e.Subject.ID)
}

// IsNotAuthorized reports whether err is an authorization denial.
func IsNotAuthorized(err error) bool {
	var notAuthorized NotAuthorizedError
	return errors.As(err, &notAuthorized)
}
