package domain

import "errors"

var (
	// Run errors
	ErrPipelineBusy       = errors.New("pipeline run already in progress")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrSourceUnreadable   = errors.New("source file unreadable")
	ErrRunCancelled       = errors.New("pipeline run cancelled")

	// Configuration errors
	ErrInvalidFxRate = errors.New("invalid fx rate")
)
