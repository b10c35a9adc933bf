package cron

import "context"

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry pairs a job with its cron spec ("@every 5m", "0 3 * * *").
type Entry struct {
	Schedule string
	Job      Job
}

// Registry tracks registered cron jobs.
type Registry struct {
	entries []Entry
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a job under schedule. Nil jobs are ignored.
func (r *Registry) Register(schedule string, job Job) {
	if job == nil {
		return
	}
	r.entries = append(r.entries, Entry{Schedule: schedule, Job: job})
}

// Entries returns the registered entries in the order they were added.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Lookup finds a job by name.
func (r *Registry) Lookup(name string) (Job, bool) {
	for _, entry := range r.entries {
		if entry.Job.Name() == name {
			return entry.Job, true
		}
	}
	return nil, false
}
