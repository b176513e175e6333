package domain

import (
	"errors"
	"fmt"
)

var (
	// Detection errors
	ErrInsufficientHistory = errors.New("insufficient ledger history to detect obligations")

	// Commitment errors
	ErrCommitmentNotFound    = errors.New("commitment not found")
	ErrInvalidCommitmentName = errors.New("commitment name cannot be empty")
	ErrMissingDueDate        = errors.New("one-off commitment requires a due date")

	// Goal errors
	ErrGoalNotFound    = errors.New("savings goal not found")
	ErrInvalidGoalName = errors.New("goal name cannot be empty")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// Shared
	ErrInvalidAmount = errors.New("amount must be non-zero")
)

// MalformedRecordError marks a raw record the normalizer could not parse.
// Such records are skipped and counted, never silently dropped.
type MalformedRecordError struct {
	SourceUID string
	Field     string
	Reason    string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %s: %s", e.SourceUID, e.Field, e.Reason)
}

// TransientError marks a failure worth retrying: a network timeout, a rate
// limit or an upstream outage.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IngestionError marks a source that could not be fetched after retries.
// The run proceeds on the last ingested ledger state and labels the snapshot
// stale for that source.
type IngestionError struct {
	Source string
	Err    error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed for source %s: %v", e.Source, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// ConfigurationError marks missing safety parameters. Always fatal: no
// snapshot is published, since recommending without safety parameters is
// worse than not recommending.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Field)
}
