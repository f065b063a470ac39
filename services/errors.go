package services

import (
	"errors"
	"fmt"

	"github.com/suriyap/repair-system-api/models"
)

// ErrNotFound is returned when a referenced repair, user or part does not exist
var ErrNotFound = errors.New("record not found")

// ErrInvalidStatus is returned for status values outside the known set
var ErrInvalidStatus = errors.New("invalid status value")

// InvalidTransitionError is returned when a status change is not permitted
// by the lifecycle transition table
type InvalidTransitionError struct {
	From models.Status
	To   models.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition repair request from %q to %q", e.From, e.To)
}
