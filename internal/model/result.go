package model

import "time"

// SourceStats counts one collector's contribution to a run.
type SourceStats struct {
	Seen      int    `json:"seen"`
	Malformed int    `json:"malformed"`
	Failed    bool   `json:"failed"`
	Error     string `json:"error,omitempty"`
}

// RunResult aggregates counts for a single pipeline run. It is owned by the
// orchestrator and handed to sinks for reporting; it is not persisted across
// runs.
type RunResult struct {
	RunID             string                 `json:"run_id"`
	Sources           map[Source]SourceStats `json:"sources"`
	RecordsSeen       int                    `json:"records_seen"`
	Malformed         int                    `json:"malformed"`
	Merged            int                    `json:"merged"`
	Kept              int                    `json:"kept"`
	DroppedIncomplete int                    `json:"dropped_incomplete"`
	FailedSources     int                    `json:"failed_sources"`
	StartedAt         time.Time              `json:"started_at"`
	Duration          int64                  `json:"duration_ms"`
}
