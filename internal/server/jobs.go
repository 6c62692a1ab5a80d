package server

import (
	"sync"

	"github.com/google/uuid"

	"crmconsole/internal/importer"
)

// jobStatus is the polled view of one import run.
type jobStatus struct {
	ID      string           `json:"id"`
	State   importer.State   `json:"state"`
	Dropped int              `json:"droppedDuplicates"`
	Skipped int              `json:"skippedLines"`
	Summary importer.Summary `json:"summary"`
	Error   string           `json:"error,omitempty"`
}

// jobRegistry holds live and finished import runs in memory. Runs are not
// persisted; a restart forgets them.
type jobRegistry struct {
	mu   sync.Mutex
	jobs map[string]*jobStatus
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*jobStatus)}
}

func (r *jobRegistry) create() *jobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := &jobStatus{ID: uuid.NewString(), State: importer.StateIdle}
	r.jobs[j.ID] = j
	return j
}

func (r *jobRegistry) get(id string) (jobStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return jobStatus{}, false
	}
	return *j, true
}

// update mutates a job under the registry lock so polls never see a torn
// status.
func (r *jobRegistry) update(id string, fn func(*jobStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		fn(j)
	}
}
