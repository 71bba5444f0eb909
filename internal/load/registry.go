// Package load tracks routine load jobs: named, continuously running
// ingest channels that can be stopped through admin SQL.
package load

import (
	"fmt"
	"sort"
	"sync"
)

// JobState is the lifecycle state of a routine load job.
type JobState int

const (
	JobRunning JobState = iota
	JobStopped
)

// String returns a human readable state name.
func (s JobState) String() string {
	if s == JobRunning {
		return "RUNNING"
	}
	return "STOPPED"
}

// Job is a routine load job bound to a target table.
type Job struct {
	Name        string
	Db          string
	TargetTable string
	State       JobState
}

// Registry holds routine load jobs keyed by qualified name.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty job registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

func qualify(db, name string) string {
	if db == "" {
		return name
	}
	return db + "." + name
}

// Register adds a running job. Registering an existing name is an error.
func (r *Registry) Register(db, name, targetTable string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := qualify(db, name)
	if _, ok := r.jobs[key]; ok {
		return nil, fmt.Errorf("routine load job %s already exists", key)
	}
	job := &Job{Name: name, Db: db, TargetTable: targetTable, State: JobRunning}
	r.jobs[key] = job
	return job, nil
}

// Get returns the job with the given qualified name.
func (r *Registry) Get(db, name string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := qualify(db, name)
	job, ok := r.jobs[key]
	if !ok {
		return nil, fmt.Errorf("routine load job %s does not exist", key)
	}
	return job, nil
}

// Stop transitions a job to the stopped state. Stopping a job that is
// already stopped is an error.
func (r *Registry) Stop(db, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := qualify(db, name)
	job, ok := r.jobs[key]
	if !ok {
		return fmt.Errorf("routine load job %s does not exist", key)
	}
	if job.State == JobStopped {
		return fmt.Errorf("routine load job %s is already stopped", key)
	}
	job.State = JobStopped
	return nil
}

// Names returns the qualified job names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.jobs))
	for key := range r.jobs {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}
