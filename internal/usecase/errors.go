package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict means the row changed between read and conditional write.
	ErrConflict = errors.New("match changed concurrently")
)
