package model

import (
	"database/sql/driver"
	"fmt"
)

// JobStatus is the lifecycle state of a service job. Only the four tokens
// below are valid; anything else is rejected when parsed from the database,
// from JSON or from a query string.
type JobStatus string

const (
	JobReceived   JobStatus = "received"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// JobStatuses lists every status in lifecycle order.
var JobStatuses = []JobStatus{JobReceived, JobInProgress, JobCompleted, JobCancelled}

// ParseJobStatus converts a case-sensitive token into a JobStatus.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobReceived, JobInProgress, JobCompleted, JobCancelled:
		return JobStatus(s), nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

// IsTerminal reports whether no transition can leave s.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobCompleted, JobCancelled:
		return true
	case JobReceived, JobInProgress:
		return false
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// in_progress -> in_progress is a reschedule of a job already being worked on.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobReceived:
		switch next {
		case JobInProgress, JobCompleted, JobCancelled:
			return true
		}
		return false
	case JobInProgress:
		switch next {
		case JobInProgress, JobCompleted, JobCancelled:
			return true
		}
		return false
	case JobCompleted, JobCancelled:
		return false
	default:
		return false
	}
}

func (s JobStatus) String() string { return string(s) }

// Value implements driver.Valuer.
func (s JobStatus) Value() (driver.Value, error) {
	if _, err := ParseJobStatus(string(s)); err != nil {
		return nil, err
	}
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *JobStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into JobStatus", src)
	}
	parsed, err := ParseJobStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *JobStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseJobStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
