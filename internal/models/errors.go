package models

import "errors"

// Custom errors
var (
	ErrInvalidRecord   = errors.New("invalid shot record: negative counts or made exceeds attempts")
	ErrDegenerateInput = errors.New("degenerate input: value outside the model's valid domain")
	ErrNonConvergence  = errors.New("optimizer failed to converge")
	ErrInvalidInput    = errors.New("invalid input: attempts must be positive")
	ErrModelInvalid    = errors.New("fitted model is invalid")
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key violation")
)
