package engine

import "errors"

// Sentinel errors returned by Analyzer operations. They are wrapped with the
// offending column/row/key; test with errors.Is.
var (
	ErrColumnNotFound    = errors.New("column not found")
	ErrRowOutOfRange     = errors.New("row index out of range")
	ErrSelectionRequired = errors.New("select at least one column or row")
	ErrKeyNotFound       = errors.New("key not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnknownOperation  = errors.New("unknown operation")
)
