package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Event is one labeled example: a fixed-length vector of normalized feature
// values, the raw diagnostic value used by the consistency cut, and the
// signal/background label. Events are immutable after dataset construction.
type Event struct {
	Features   []float64
	Diagnostic float64
	Signal     bool
}

// Target returns the label as the numeric training target.
func (e Event) Target() float64 {
	if e.Signal {
		return 1
	}
	return 0
}

// Run records the immutable facts of one trainer run in the journal.
type Run struct {
	VersionedRecord
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	EventCount      int       `json:"event_count"`
	TrainingCount   int       `json:"training_count"`
	EvaluationCount int       `json:"evaluation_count"`
	FeatureCount    int       `json:"feature_count"`
	Depth           int       `json:"depth"`
	Workers         int       `json:"workers"`
	Seed            int64     `json:"seed"`
}

// Evaluation records the outcome of one evaluation round within a run.
type Evaluation struct {
	Round       int       `json:"round"`
	AUC         float64   `json:"auc"`
	Predictions int       `json:"predictions"`
	RecordedAt  time.Time `json:"recorded_at"`
}
