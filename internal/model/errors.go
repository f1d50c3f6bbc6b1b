package model

import (
	"context"
	"errors"
)

var (
	ErrInsufficientData = errors.New("insufficient history")
	ErrFetchFailure     = errors.New("fetch failure")
	ErrStaleData        = errors.New("stale data")
	ErrParseFailure     = errors.New("parse failure")
	ErrUnknownPair      = errors.New("unknown pair")
)

// IsCanceled reports whether err came from a cancelled or expired context
// rather than from the data source itself.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
