package domain

import "time"

// Event types
const (
	EventTypeRunCompleted = "ingestion.run.completed"
)

// RunCompletedEvent is emitted after every pipeline run attempt, including
// rejected and failed ones.
type RunCompletedEvent struct {
	ID           string               `json:"id"`
	Trigger      string               `json:"trigger"`
	Outcome      string               `json:"outcome"`
	Error        string               `json:"error,omitempty"`
	OccurredAt   time.Time            `json:"occurred_at"`
	StartedAt    *time.Time           `json:"started_at,omitempty"`
	DurationMS   int64                `json:"duration_ms"`
	FilesScanned int                  `json:"files_scanned"`
	LinesRead    int                  `json:"lines_read"`
	LinesSkipped int                  `json:"lines_skipped"`
	Inserted     int                  `json:"inserted"`
	Deduplicated int                  `json:"deduplicated"`
	SkipReasons  map[RejectReason]int `json:"skip_reasons,omitempty"`
}
