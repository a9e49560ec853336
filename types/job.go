package types

import "time"

// JobState represents the extraction job state machine
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// ErrorKind classifies job-terminal and degraded-path failures.
type ErrorKind string

const (
	KindIOError          ErrorKind = "IOError"
	KindDecoderTimeout   ErrorKind = "DecoderTimeout"
	KindDecoderFailure   ErrorKind = "DecoderFailure"
	KindParseError       ErrorKind = "ParseError"
	KindCacheUnavailable ErrorKind = "CacheUnavailable"
	KindArchivalFailure  ErrorKind = "ArchivalFailure"
	KindInternal         ErrorKind = "Internal"
)

// Retryable is true only for failures a resubmission may cure.
func (k ErrorKind) Retryable() bool {
	return k == KindDecoderTimeout
}

// JobError is the error attached to a Failed job.
type JobError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// Diagnostic holds decoder stderr for DecoderFailure.
	Diagnostic string `json:"diagnostic,omitempty"`
}

func (e *JobError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Job is one in-flight or completed extraction job
type Job struct {
	ID        string         `json:"job_id"`
	Owner     string         `json:"owner"`
	FileName  string         `json:"file_name"`
	State     JobState       `json:"state"`
	Result    *CaptionRecord `json:"result,omitempty"`
	Error     *JobError      `json:"error,omitempty"`
	CacheHit  bool           `json:"cache_hit,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
