package runlog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/edupath-ingest/internal/core"
)

// Memory keeps runs in process. Stored runs are copies; callers cannot
// mutate them after a write.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	runs   map[int64]core.Run
	now    func() time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		runs: make(map[int64]core.Run),
		now:  time.Now,
	}
}

// Create implements core.RunStore.
func (m *Memory) Create(_ context.Context, run *core.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	run.ID = m.nextID
	run.CreatedAt = m.now().UTC()
	run.UpdatedAt = run.CreatedAt
	m.runs[run.ID] = clone(*run)
	return nil
}

// Update implements core.RunStore.
func (m *Memory) Update(_ context.Context, run *core.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.runs[run.ID]
	if !ok {
		return core.ErrRunNotFound
	}
	run.CreatedAt = stored.CreatedAt
	run.UpdatedAt = m.now().UTC()
	m.runs[run.ID] = clone(*run)
	return nil
}

// Get implements core.RunStore.
func (m *Memory) Get(_ context.Context, id int64) (*core.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	run = clone(run)
	return &run, nil
}

// List implements core.RunStore, newest first.
func (m *Memory) List(_ context.Context, limit int) ([]core.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Run, 0, min(limit, len(m.runs)))
	for id := m.nextID; id > 0 && len(out) < limit; id-- {
		if run, ok := m.runs[id]; ok {
			out = append(out, clone(run))
		}
	}
	return out, nil
}

func clone(run core.Run) core.Run {
	run.RowErrors = slices.Clone(run.RowErrors)
	run.TotalRecords = cloneInt(run.TotalRecords)
	run.SuccessfulRecords = cloneInt(run.SuccessfulRecords)
	run.FailedRecords = cloneInt(run.FailedRecords)
	return run
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
