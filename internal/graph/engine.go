package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/edupath-ingest/internal/core/parser"
)

// Defaults applied when a row leaves a field out.
const (
	DefaultEvaluationType   = "Exam"
	DefaultEvaluationStatus = "Completed"
	DefaultActivityType     = "Lecture"
	DefaultMaxScore         = 100.0
)

// Engine turns row records into graph writes.
type Engine struct {
	store  Store
	newKey func() string
}

// NewEngine returns an engine writing to store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, newKey: uuid.NewString}
}

// naturalKey returns the row's own key field, then "id", then a fresh key.
func (e *Engine) naturalKey(rec parser.Record, field string) string {
	if v, ok := rec.Get(field, "id"); ok {
		return v
	}
	return e.newKey()
}

// copyPresent sets prop from the first of keys present in rec.
func copyPresent(props Props, prop string, rec parser.Record, keys ...string) {
	if v, ok := rec.Get(keys...); ok {
		props[prop] = v
	}
}

// UpsertStudent merges a Student keyed by student_id. Only fields present
// in the row are written.
func (e *Engine) UpsertStudent(ctx context.Context, rec parser.Record) (Student, error) {
	key := e.naturalKey(rec, PropStudentID)

	props := Props{PropStudentID: key}
	copyPresent(props, PropUsername, rec, "username")
	copyPresent(props, PropEmail, rec, "email")
	copyPresent(props, PropFirstName, rec, "first_name", "firstname")
	copyPresent(props, PropLastName, rec, "last_name", "lastname")

	merged, err := e.store.MergeNode(ctx, LabelStudent, key, props)
	if err != nil {
		return Student{}, fmt.Errorf("upsert student %q: %w", key, err)
	}

	return Student{
		StudentID: key,
		Username:  propString(merged, PropUsername),
		Email:     propString(merged, PropEmail),
		FirstName: propString(merged, PropFirstName),
		LastName:  propString(merged, PropLastName),
	}, nil
}

// UpsertModule merges a Module keyed by module_id. An unparsable credits
// value is stored as 0; an absent one leaves the stored value alone.
func (e *Engine) UpsertModule(ctx context.Context, rec parser.Record) (Module, error) {
	key := e.naturalKey(rec, PropModuleID)

	props := Props{PropModuleID: key}
	copyPresent(props, PropCode, rec, "code")
	copyPresent(props, PropName, rec, "name", "module_name")
	copyPresent(props, PropDescription, rec, "description")
	if v, ok := rec.Get("credits"); ok {
		props[PropCredits] = toInt(v, 0)
	}

	merged, err := e.store.MergeNode(ctx, LabelModule, key, props)
	if err != nil {
		return Module{}, fmt.Errorf("upsert module %q: %w", key, err)
	}

	return Module{
		ModuleID:    key,
		Code:        propString(merged, PropCode),
		Name:        propString(merged, PropName),
		Description: propString(merged, PropDescription),
		Credits:     propInt(merged, PropCredits),
	}, nil
}

// CreateEvaluation writes an Evaluation and links it to the student and
// module, enrolling the student in the module.
func (e *Engine) CreateEvaluation(ctx context.Context, rec parser.Record, student Student, module Module) (Evaluation, error) {
	key := e.naturalKey(rec, PropEvaluationID)

	ev := Evaluation{
		EvaluationID: key,
		Type:         DefaultEvaluationType,
		Status:       DefaultEvaluationStatus,
		MaxScore:     DefaultMaxScore,
	}
	if v, ok := rec.Get("type", "evaluation_type"); ok {
		ev.Type = v
	}
	if v, ok := rec.Get("title", "evaluation_title"); ok {
		ev.Title = v
	}
	if v, ok := rec.Get("score"); ok {
		ev.Score = toFloat(v, 0)
	}
	if v, ok := rec.Get("max_score", "maxscore"); ok {
		ev.MaxScore = toFloat(v, DefaultMaxScore)
	}
	if v, ok := rec.Get("date", "evaluation_date"); ok {
		if t, ok := toDateTime(v); ok {
			ev.Date = &t
		}
	}
	if v, ok := rec.Get("status"); ok {
		ev.Status = v
	}

	props := Props{
		PropEvaluationID: key,
		PropType:         ev.Type,
		PropScore:        ev.Score,
		PropMaxScore:     ev.MaxScore,
		PropStatus:       ev.Status,
	}
	if ev.Title != "" {
		props[PropTitle] = ev.Title
	}
	if ev.Date != nil {
		props[PropDate] = ev.Date.Format(dateTimeLayout)
	}

	merged, err := e.store.MergeNode(ctx, LabelEvaluation, key, props)
	if err != nil {
		return Evaluation{}, fmt.Errorf("create evaluation %q: %w", key, err)
	}
	ev.Title = propString(merged, PropTitle)
	ev.Date = propTime(merged, PropDate)

	if err := e.link(ctx,
		edge{student.Ref(), RelHasEvaluation, ev.Ref()},
		edge{module.Ref(), RelHasEvaluation, ev.Ref()},
		edge{student.Ref(), RelEnrolledIn, module.Ref()},
	); err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

// CreateActivity writes an Activity and links it to the student and
// module, enrolling the student in the module.
func (e *Engine) CreateActivity(ctx context.Context, rec parser.Record, student Student, module Module) (Activity, error) {
	key := e.naturalKey(rec, PropActivityID)

	act := Activity{
		ActivityID: key,
		Type:       DefaultActivityType,
		Present:    true,
	}
	if v, ok := rec.Get("type", "activity_type"); ok {
		act.Type = v
	}
	if v, ok := rec.Get("title", "activity_title"); ok {
		act.Title = v
	}
	if v, ok := rec.Get("date", "activity_date"); ok {
		if t, ok := toDateTime(v); ok {
			act.Date = &t
		}
	}
	if v, ok := rec.Get("duration"); ok {
		act.Duration = toInt(v, 0)
	}
	if v, ok := rec.Get("present", "presence"); ok {
		act.Present = toBool(v)
	}

	props := Props{
		PropActivityID: key,
		PropType:       act.Type,
		PropDuration:   act.Duration,
		PropPresent:    act.Present,
	}
	if act.Title != "" {
		props[PropTitle] = act.Title
	}
	if act.Date != nil {
		props[PropDate] = act.Date.Format(dateTimeLayout)
	}

	merged, err := e.store.MergeNode(ctx, LabelActivity, key, props)
	if err != nil {
		return Activity{}, fmt.Errorf("create activity %q: %w", key, err)
	}
	act.Title = propString(merged, PropTitle)
	act.Date = propTime(merged, PropDate)

	if err := e.link(ctx,
		edge{student.Ref(), RelParticipatesIn, act.Ref()},
		edge{module.Ref(), RelHasActivity, act.Ref()},
		edge{student.Ref(), RelEnrolledIn, module.Ref()},
	); err != nil {
		return Activity{}, err
	}
	return act, nil
}

func (e *Engine) link(ctx context.Context, edges ...edge) error {
	for _, l := range edges {
		if err := e.store.Link(ctx, l.from, l.rel, l.to); err != nil {
			return fmt.Errorf("link %s -%s-> %s: %w", l.from, l.rel, l.to, err)
		}
	}
	return nil
}
