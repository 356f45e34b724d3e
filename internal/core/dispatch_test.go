package core

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/edupath-ingest/internal/core/parser"
	"github.com/JonMunkholm/edupath-ingest/internal/graph"
)

func TestDispatcher_Routes(t *testing.T) {
	tests := []struct {
		entityType string
		rec        parser.Record
		label      graph.Label
	}{
		{EntityUser, parser.Record{"student_id": "S1"}, graph.LabelStudent},
		{EntityModule, parser.Record{"module_id": "M1"}, graph.LabelModule},
		{EntityNote, parser.Record{"student_id": "S1", "module_id": "M1", "evaluation_id": "E1"}, graph.LabelEvaluation},
		{EntityEvaluation, parser.Record{"student_id": "S1", "module_id": "M1", "evaluation_id": "E2"}, graph.LabelEvaluation},
		{EntityPresence, parser.Record{"student_id": "S1", "module_id": "M1", "activity_id": "A1"}, graph.LabelActivity},
		{EntityActivity, parser.Record{"student_id": "S1", "module_id": "M1", "activity_id": "A2"}, graph.LabelActivity},
	}

	for _, tt := range tests {
		t.Run(tt.entityType, func(t *testing.T) {
			store := graph.NewMemStore()
			d := NewDispatcher(graph.NewEngine(store))

			if err := d.Dispatch(context.Background(), tt.entityType, tt.rec); err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if store.NodeCount(tt.label) != 1 {
				t.Errorf("expected one %s node", tt.label)
			}
		})
	}
}

func TestDispatcher_UnsupportedType(t *testing.T) {
	d := NewDispatcher(graph.NewEngine(graph.NewMemStore()))

	err := d.Dispatch(context.Background(), "Teacher", parser.Record{"id": "T1"})
	if !errors.Is(err, ErrUnsupportedEntityType) {
		t.Errorf("expected ErrUnsupportedEntityType, got %v", err)
	}
	if d.Handles("Teacher") {
		t.Error("Teacher should not be handled")
	}
}

func TestDispatcher_MissingLinkKeysStillSucceeds(t *testing.T) {
	store := graph.NewMemStore()
	d := NewDispatcher(graph.NewEngine(store))

	err := d.Dispatch(context.Background(), EntityPresence, parser.Record{"module_id": "M1", "activity_id": "A1"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if store.NodeCount(graph.LabelModule) != 1 {
		t.Error("module should still be upserted")
	}
	if store.NodeCount(graph.LabelActivity) != 0 {
		t.Error("no activity without a student")
	}
}
