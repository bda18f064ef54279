package library

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of an index job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusListing   JobStatus = "listing"
	StatusParsing   JobStatus = "parsing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks a pass that parses every law under some categories.
type Job struct {
	mu sync.Mutex

	ID         string
	Categories []string // empty means every top-level category

	Status   JobStatus
	Phase    string
	Progress Progress

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Progress tracks indexing progress.
type Progress struct {
	TotalLaws  int      `json:"total_laws"`
	LawsParsed int      `json:"laws_parsed"`
	Cached     int      `json:"cached"`
	Words      int      `json:"words"`
	Errors     []string `json:"errors"`
}

// NewJob returns a queued job.
func NewJob(id string, categories []string) *Job {
	now := time.Now()
	return &Job{
		ID:         id,
		Categories: categories,
		Status:     StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Errors = append(j.Progress.Errors, err)
	j.UpdatedAt = time.Now()
}

// SetTotalLaws records how many laws the job will open.
func (j *Job) SetTotalLaws(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalLaws = n
	j.UpdatedAt = time.Now()
}

// AddParsed records one opened law and its word count.
func (j *Job) AddParsed(words int, cached bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.LawsParsed++
	j.Progress.Words += words
	if cached {
		j.Progress.Cached++
	}
	j.UpdatedAt = time.Now()
}

// ErrorCount returns the number of recorded errors.
func (j *Job) ErrorCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.Progress.Errors)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	Categories []string  `json:"categories"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Progress   Progress  `json:"progress"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	cats := append([]string{}, j.Categories...)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:         j.ID,
		Categories: cats,
		Status:     j.Status,
		Phase:      j.Phase,
		Progress:   p,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
