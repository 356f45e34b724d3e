package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/edupath-ingest/internal/core/parser"
	"github.com/JonMunkholm/edupath-ingest/internal/graph"
)

// ErrUnsupportedEntityType is the row error for an entity type with no
// handler.
var ErrUnsupportedEntityType = errors.New("unsupported entity type")

// RowHandler applies one row record to the graph.
type RowHandler func(ctx context.Context, rec parser.Record) error

// Dispatcher maps a declared entity type to its row handler. The table is
// fixed at construction; unknown types fail per row, not per run.
type Dispatcher struct {
	engine   *graph.Engine
	handlers map[string]RowHandler
}

// NewDispatcher builds the dispatch table over engine.
func NewDispatcher(engine *graph.Engine) *Dispatcher {
	d := &Dispatcher{engine: engine}
	d.handlers = map[string]RowHandler{
		EntityUser:       d.student,
		EntityModule:     d.module,
		EntityNote:       d.evaluation,
		EntityEvaluation: d.evaluation,
		EntityPresence:   d.activity,
		EntityActivity:   d.activity,
	}
	return d
}

// Dispatch routes rec to the handler for entityType.
func (d *Dispatcher) Dispatch(ctx context.Context, entityType string, rec parser.Record) error {
	h, ok := d.handlers[entityType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedEntityType, entityType)
	}
	return h(ctx, rec)
}

// Handles reports whether entityType has a handler.
func (d *Dispatcher) Handles(entityType string) bool {
	_, ok := d.handlers[entityType]
	return ok
}

func (d *Dispatcher) student(ctx context.Context, rec parser.Record) error {
	_, err := d.engine.UpsertStudent(ctx, rec)
	return err
}

func (d *Dispatcher) module(ctx context.Context, rec parser.Record) error {
	_, err := d.engine.UpsertModule(ctx, rec)
	return err
}

// evaluation creates the evaluation only when both the student and the
// module resolved. A row lacking either key still counts as processed.
func (d *Dispatcher) evaluation(ctx context.Context, rec parser.Record) error {
	s, m, ok, err := d.resolve(ctx, rec)
	if err != nil || !ok {
		return err
	}
	_, err = d.engine.CreateEvaluation(ctx, rec, s, m)
	return err
}

// activity mirrors evaluation for attendance rows.
func (d *Dispatcher) activity(ctx context.Context, rec parser.Record) error {
	s, m, ok, err := d.resolve(ctx, rec)
	if err != nil || !ok {
		return err
	}
	_, err = d.engine.CreateActivity(ctx, rec, s, m)
	return err
}

// resolve upserts the student and module named by the row's own keys.
// ok is true when both were present.
func (d *Dispatcher) resolve(ctx context.Context, rec parser.Record) (s graph.Student, m graph.Module, ok bool, err error) {
	_, hasStudent := rec[graph.PropStudentID]
	_, hasModule := rec[graph.PropModuleID]

	if hasStudent {
		if s, err = d.engine.UpsertStudent(ctx, rec); err != nil {
			return s, m, false, err
		}
	}
	if hasModule {
		if m, err = d.engine.UpsertModule(ctx, rec); err != nil {
			return s, m, false, err
		}
	}
	return s, m, hasStudent && hasModule, nil
}
