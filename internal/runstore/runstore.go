// Package runstore keeps background pipeline runs in memory so that callers
// can start a run, return immediately and poll for its progress.
package runstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/tutorgen/internal/orchestrator"
)

// ErrNotFound is returned for an unknown job ID.
var ErrNotFound = errors.New("runstore: job not found")

// DefaultLimit is the number of jobs a Store keeps when created with limit <= 0.
const DefaultLimit = 256

// Job is one background run. Result is set once and never mutated after.
type Job struct {
	ID        string                       `json:"id"`
	Topic     string                       `json:"topic"`
	RunID     string                       `json:"run_id,omitempty"`
	State     orchestrator.State           `json:"state"`
	Created   time.Time                    `json:"created"`
	Updated   time.Time                    `json:"updated"`
	Events    []orchestrator.ProgressEvent `json:"events,omitempty"`
	Result    *orchestrator.Result         `json:"result,omitempty"`
	Files     []string                     `json:"files,omitempty"`
	ErrorCode string                       `json:"error_code,omitempty"`
	Error     string                       `json:"error,omitempty"`
}

// ListRequest filters and pages a listing.
type ListRequest struct {
	// State keeps only jobs in the named state ("done", "failed", ...).
	State string
	// PageToken is the ID of the last job of the previous page.
	PageToken string
	// PageSize <= 0 returns every match.
	PageSize int
}

// ListResponse is one page of jobs, oldest first.
type ListResponse struct {
	Jobs          []Job  `json:"jobs"`
	TotalSize     int    `json:"total_size"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// Store is a concurrency-safe in-memory job table. Jobs live in a map keyed
// by ID with a separate slice keeping insertion order for pagination.
type Store struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	orderIDs []string
	limit    int
	now      func() time.Time
}

// New returns a Store that keeps at most limit jobs, evicting the oldest
// finished job when full.
func New(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		jobs:  make(map[string]*Job),
		limit: limit,
		now:   time.Now,
	}
}

// Create registers a queued job for topic and returns a copy of it.
func (s *Store) Create(topic string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	j := &Job{ID: uuid.NewString(), Topic: topic, State: orchestrator.StateIdle, Created: now, Updated: now}
	s.jobs[j.ID] = j
	s.orderIDs = append(s.orderIDs, j.ID)
	s.evict()
	return *copyJob(j)
}

// evict drops the oldest terminal jobs until the store fits its limit.
// Running jobs are never dropped. The caller holds mu.
func (s *Store) evict() {
	for i := 0; len(s.orderIDs) > s.limit && i < len(s.orderIDs); {
		id := s.orderIDs[i]
		if !s.jobs[id].State.Terminal() {
			i++
			continue
		}
		delete(s.jobs, id)
		s.orderIDs = append(s.orderIDs[:i], s.orderIDs[i+1:]...)
	}
}

// Get returns a copy of the job with id.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return copyJob(j), nil
}

// Update applies fn to the stored job under the write lock.
func (s *Store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	fn(j)
	j.Updated = s.now()
	return nil
}

// Record appends a progress event and advances the job state from its
// stage marker. Terminal states are left to Finish, so a job never reads as
// finished before its result is stored.
func (s *Store) Record(id string, ev orchestrator.ProgressEvent) error {
	return s.Update(id, func(j *Job) {
		j.Events = append(j.Events, ev)
		if j.RunID == "" {
			j.RunID = ev.RunID
		}
		if ev.Section != "" {
			return
		}
		if st, ok := StateFor(ev.Marker); ok && !st.Terminal() && !j.State.Terminal() {
			j.State = st
		}
	})
}

// Finish stores the outcome of a run. code and msg describe a failure and are
// empty on success.
func (s *Store) Finish(id string, res *orchestrator.Result, files []string, code, msg string) error {
	return s.Update(id, func(j *Job) {
		j.Result = res
		j.Files = files
		j.ErrorCode = code
		j.Error = msg
		switch {
		case res != nil:
			j.RunID = res.RunID
			j.State = res.State
		case code != "":
			j.State = orchestrator.StateFailed
		}
	})
}

// StateFor maps a stage marker onto the state the run has entered.
func StateFor(m orchestrator.Marker) (orchestrator.State, bool) {
	switch m {
	case orchestrator.MarkerScopeCheck:
		return orchestrator.StateClassifying, true
	case orchestrator.MarkerRejected:
		return orchestrator.StateRejected, true
	case orchestrator.MarkerGenerating:
		return orchestrator.StateGenerating, true
	case orchestrator.MarkerConsolidating:
		return orchestrator.StateConsolidating, true
	case orchestrator.MarkerDone:
		return orchestrator.StateDone, true
	case orchestrator.MarkerError:
		return orchestrator.StateFailed, true
	}
	return orchestrator.StateIdle, false
}

// List returns jobs matching the filter with pagination.
func (s *Store) List(req ListRequest) (*ListResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startIdx := 0
	if req.PageToken != "" {
		found := false
		for i, id := range s.orderIDs {
			if id == req.PageToken {
				startIdx = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("runstore: invalid page token %q", req.PageToken)
		}
	}

	matched := []Job{}
	for _, id := range s.orderIDs[startIdx:] {
		if j := s.jobs[id]; matches(j, req) {
			matched = append(matched, *copyJob(j))
		}
	}

	totalBefore := 0
	for _, id := range s.orderIDs[:startIdx] {
		if matches(s.jobs[id], req) {
			totalBefore++
		}
	}
	total := totalBefore + len(matched)

	var next string
	if req.PageSize > 0 && len(matched) > req.PageSize {
		next = matched[req.PageSize-1].ID
		matched = matched[:req.PageSize]
	}

	return &ListResponse{Jobs: matched, TotalSize: total, NextPageToken: next}, nil
}

func matches(j *Job, req ListRequest) bool {
	return req.State == "" || j.State.String() == req.State
}

// copyJob copies the slices of src so the caller can mutate the result.
func copyJob(src *Job) *Job {
	dst := *src
	if src.Events != nil {
		dst.Events = make([]orchestrator.ProgressEvent, len(src.Events))
		copy(dst.Events, src.Events)
	}
	if src.Files != nil {
		dst.Files = make([]string, len(src.Files))
		copy(dst.Files, src.Files)
	}
	return &dst
}
