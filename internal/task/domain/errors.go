package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrNotAuthorized = errors.New("not authorized")
	ErrInvalidTask   = errors.New("invalid task")

	ErrMissingRequiredFields = fmt.Errorf("%w: title and priority required", ErrInvalidTask)

	// ErrVersionConflict means the task changed between read and write.
	ErrVersionConflict = errors.New("task was modified concurrently")
)
