package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/edupath-ingest/internal/graph"
)

// DefaultMaxRowErrors bounds the row error messages kept on a run.
const DefaultMaxRowErrors = 50

// Run listing limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

// Deps are the collaborators of a Service. Runs and Graph are required;
// the rest fall back to defaults.
type Deps struct {
	Runs         RunStore
	Graph        graph.Store
	Notifier     Notifier
	Validator    *Validator
	Limiter      *RunLimiter
	MaxRowErrors int
}

// Service runs the ingestion pipeline and reads back run status.
type Service struct {
	runs         RunStore
	validator    *Validator
	dispatcher   *Dispatcher
	notifier     Notifier
	limiter      *RunLimiter
	maxRowErrors int
}

// NewService wires a Service from its collaborators.
func NewService(d Deps) (*Service, error) {
	if d.Runs == nil {
		return nil, errors.New("core: run store is required")
	}
	if d.Graph == nil {
		return nil, errors.New("core: graph store is required")
	}

	s := &Service{
		runs:         d.Runs,
		validator:    d.Validator,
		dispatcher:   NewDispatcher(graph.NewEngine(d.Graph)),
		notifier:     d.Notifier,
		limiter:      d.Limiter,
		maxRowErrors: d.MaxRowErrors,
	}
	if s.validator == nil {
		s.validator = NewValidator(DefaultMaxFileSize)
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.limiter == nil {
		s.limiter = NewRunLimiter(DefaultMaxConcurrentRuns, DefaultMaxWaitTime)
	}
	if s.maxRowErrors <= 0 {
		s.maxRowErrors = DefaultMaxRowErrors
	}
	return s, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Run) {}

// GetRun returns the stored run with the given id.
func (s *Service) GetRun(ctx context.Context, id int64) (*Run, error) {
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. The limit is
// clamped to [1, MaxListLimit]; zero selects DefaultListLimit.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// WaitForRuns blocks until in-flight async runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// LimiterStatus reports async run slot usage.
func (s *Service) LimiterStatus() RunLimiterStatus {
	return s.limiter.Status()
}

// MaxFileSize returns the upload size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.validator.MaxSize()
}
