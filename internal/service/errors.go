package service

import "errors"

// ErrNotFound reports that an operation targeted a nonexistent category.
// No event is emitted and no cache entry is touched when it is returned.
var ErrNotFound = errors.New("category not found")

// ErrDeleteFailed reports that the store removed no row for a category that
// was just looked up.
var ErrDeleteFailed = errors.New("category delete failed")

// ValidationError rejects a request before any mutation happens.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}
