package models

import (
	"errors"
	"fmt"
)

// ErrModelNotFound is returned by the model store when a symbol has no
// persisted artifact.
var ErrModelNotFound = errors.New("model artifact not found")

// ErrSeriesGap marks a calendar gap that aborted window construction.
var ErrSeriesGap = errors.New("gap in date series")

// InsufficientDataError is the fail-fast error for series shorter than a
// component's documented minimum. It is never retried internally.
type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d observations, got %d", e.Op, e.Need, e.Got)
}

// NewInsufficientData builds the typed error for op.
func NewInsufficientData(op string, need, got int) error {
	return &InsufficientDataError{Op: op, Need: need, Got: got}
}

// IsInsufficientData reports whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var e *InsufficientDataError
	return errors.As(err, &e)
}
