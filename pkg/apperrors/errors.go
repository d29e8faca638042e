package apperrors

import "errors"

var (
	ErrIdentityConflict = errors.New("legacy id already registered with a different surrogate")
	ErrUnbalancedInput  = errors.New("unbalanced quotes or parentheses in values list")
	ErrColumnMismatch   = errors.New("row length does not match declared column manifest")
)
