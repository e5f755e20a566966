package usecase

import "time"

const (
	// DefaultAppendTimeout bounds a single ledger append. Appends run detached from
	// run cancellation so an in-flight write always completes or fails on its own.
	DefaultAppendTimeout = 10 * time.Second

	// DefaultListTake is the number of transactions listed when no bound is given.
	DefaultListTake = 100

	// MaxListTake caps the list bound.
	MaxListTake = 1000

	// SummaryCacheTTL is how long the daily summary is cached.
	SummaryCacheTTL = 30 * time.Second

	// IdempotencyInFlight marks a reserved idempotency key whose request has
	// not finished yet.
	IdempotencyInFlight = "processing"

	// Run triggers.
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)
