package port

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidTask = errors.New("invalid task")
)
