package contract

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("customer not found")
	ErrTierNotFound = errors.New("tier not found")
	ErrGeneration   = errors.New("response generation failed")
	ErrExecution    = errors.New("action execution failed")
	ErrPersistence  = errors.New("turn persistence failed")
)
