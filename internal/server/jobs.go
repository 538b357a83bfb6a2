// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

// JobStatus tracks a job through its lifecycle.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is one uploaded PDF moving through the pipeline.
type Job struct {
	ID          string                `json:"job_id"`
	Filename    string                `json:"filename"`
	Status      JobStatus             `json:"status"`
	Progress    int                   `json:"progress"`
	Pages       int                   `json:"pages,omitempty"`
	Markdown    string                `json:"markdown,omitempty"`
	Score       int                   `json:"quality_score,omitempty"`
	Report      *types.CurationReport `json:"quality_details,omitempty"`
	Error       string                `json:"error,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`

	// pdf holds the uploaded bytes until processing consumes them.
	pdf []byte
}

// jobTable is an owner-held mapping of job ID to job. All access goes
// through the mutex; jobs are copied out so callers never see a record
// that a worker goroutine is still mutating.
type jobTable struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newJobTable() *jobTable {
	return &jobTable{jobs: make(map[string]*Job)}
}

// add registers a new pending job for the uploaded PDF and returns its ID.
func (t *jobTable) add(filename string, pages int, pdf []byte) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.NewString()[:8]
	t.jobs[id] = &Job{
		ID:        id,
		Filename:  filename,
		Status:    JobPending,
		Pages:     pages,
		CreatedAt: time.Now().UTC(),
		pdf:       pdf,
	}
	return id
}

// get returns a copy of the job, without the PDF payload.
func (t *jobTable) get(id string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}
	out := *job
	out.pdf = nil
	return out, true
}

// list returns copies of all jobs, oldest first.
func (t *jobTable) list() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		j := *job
		j.pdf = nil
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// remove deletes a job. It refuses to remove a job that is processing.
func (t *jobTable) remove(id string) (found, busy bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return false, false
	}
	if job.Status == JobProcessing {
		return true, true
	}
	delete(t.jobs, id)
	return true, false
}

// claim transitions a pending job to processing and returns its PDF bytes.
// A job can be claimed exactly once.
func (t *jobTable) claim(id string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok || job.Status != JobPending {
		return nil, false
	}
	job.Status = JobProcessing
	job.Progress = 10
	pdf := job.pdf
	job.pdf = nil
	return pdf, true
}

// pendingIDs returns the IDs of all pending jobs, oldest first.
func (t *jobTable) pendingIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var pending []*Job
	for _, job := range t.jobs {
		if job.Status == JobPending {
			pending = append(pending, job)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })

	ids := make([]string, len(pending))
	for i, job := range pending {
		ids[i] = job.ID
	}
	return ids
}

// complete records a finished job.
func (t *jobTable) complete(id, markdown string, report types.CurationReport) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	job.Status = JobCompleted
	job.Progress = 100
	job.Markdown = markdown
	job.Score = report.OverallScore
	job.Report = &report
	job.CompletedAt = &now
}

// fail records a failed job.
func (t *jobTable) fail(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	job.Status = JobFailed
	job.Error = err.Error()
	job.CompletedAt = &now
}
