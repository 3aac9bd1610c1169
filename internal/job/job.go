// Package job records documentation generation runs in SQLite.
package job

import "time"

// Source identifies where the documented code came from.
type Source string

const (
	SourceInline Source = "inline"
	SourceUpload Source = "upload"
	SourceGitHub Source = "github"
)

// Status is the lifecycle state of a generation job.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Job is one documentation generation run.
type Job struct {
	ID          string    `json:"id"`
	Source      Source    `json:"source"`
	Target      string    `json:"target"` // repo slug, filename or "snippet"
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	FileCount   int       `json:"file_count"`
	ProjectType string    `json:"project_type,omitempty"`
	CharCount   int       `json:"char_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewJob creates a pending job for the given source and target.
func NewJob(id string, source Source, target string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        id,
		Source:    source,
		Target:    target,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
