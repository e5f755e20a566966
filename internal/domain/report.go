package domain

import (
	"time"

	"github.com/rs/zerolog"
)

// RunReport collects the counters of a single pipeline run.
type RunReport struct {
	StartedAt    time.Time
	SkipReasons  map[RejectReason]int
	Duration     time.Duration
	FilesScanned int
	LinesRead    int
	LinesSkipped int
	Inserted     int
	Deduplicated int
}

// NewRunReport returns an empty report stamped with the start time.
func NewRunReport(startedAt time.Time) *RunReport {
	return &RunReport{
		StartedAt:   startedAt,
		SkipReasons: make(map[RejectReason]int),
	}
}

// Skip records a rejected line.
func (r *RunReport) Skip(reason RejectReason) {
	r.LinesSkipped++
	r.SkipReasons[reason]++
}

// Record accounts for the outcome of one append.
func (r *RunReport) Record(result AppendResult) {
	switch result {
	case AppendInserted:
		r.Inserted++
	case AppendAlreadyPresent:
		r.Deduplicated++
	}
}

// Finish stamps the wall-clock duration.
func (r *RunReport) Finish(now time.Time) {
	r.Duration = now.Sub(r.StartedAt)
}

// MarshalZerologObject lets a report be logged with zerolog's Object().
func (r *RunReport) MarshalZerologObject(e *zerolog.Event) {
	e.Int("files_scanned", r.FilesScanned).
		Int("lines_read", r.LinesRead).
		Int("lines_skipped", r.LinesSkipped).
		Int("inserted", r.Inserted).
		Int("deduplicated", r.Deduplicated).
		Int64("duration_ms", r.Duration.Milliseconds())

	if len(r.SkipReasons) > 0 {
		reasons := zerolog.Dict()
		for reason, n := range r.SkipReasons {
			reasons.Int(string(reason), n)
		}
		e.Dict("skip_reasons", reasons)
	}
}
