// Package jobs defines the asynchronous work the service performs
// after an upload: parsing a statement PDF out of band so the HTTP
// request can return immediately.
package jobs

import (
	"context"
	"time"
)

// JobType identifies what kind of work a job carries.
type JobType string

const (
	// JobTypeParseStatement is a statement-parsing job.
	JobTypeParseStatement JobType = "parse_statement"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ParseStatementJob asks a worker to parse one uploaded statement.
type ParseStatementJob struct {
	JobID       string    `json:"job_id"`
	StatementID string    `json:"statement_id"`
	GCSURI      string    `json:"gcs_uri"`
	Status      JobStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	// StartedAt and CompletedAt are nil until the job reaches the
	// corresponding state.
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Error      string `json:"error,omitempty"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
}

// Job is the minimal view a handler gets of any job type.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ParseStatementJob) GetID() string        { return j.JobID }
func (j *ParseStatementJob) GetType() JobType     { return JobTypeParseStatement }
func (j *ParseStatementJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. The abstraction keeps handlers independent
// of the queue backing (in-memory today, Pub/Sub or Cloud Tasks later).
type Publisher interface {
	PublishParseStatement(ctx context.Context, job *ParseStatementJob) error
	Close() error
}

// Consumer pulls jobs off a queue and runs them through a handler.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error

	// Stop drains in-flight jobs before returning, bounded by ctx.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job failed
// and eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so the API can report progress.
type JobStore interface {
	SaveJob(ctx context.Context, job *ParseStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ParseStatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseStatementJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows a ListJobs call.
type JobFilter struct {
	StatementID string
	Status      JobStatus
	Limit       int
	Offset      int
}
