// Package graph holds the academic entity graph: students, modules,
// evaluations and activities keyed by natural key, plus the relationships
// between them.
//
// Writes go through Engine, which computes the desired end state of one
// row and issues merge-by-key node writes and idempotent edge writes to a
// Store. Stores never delete.
package graph

import "time"

// Label names a node kind.
type Label string

const (
	LabelStudent    Label = "Student"
	LabelModule     Label = "Module"
	LabelEvaluation Label = "Evaluation"
	LabelActivity   Label = "Activity"
)

// Relation names an edge kind.
type Relation string

const (
	RelEnrolledIn     Relation = "ENROLLED_IN"
	RelHasEvaluation  Relation = "HAS_EVALUATION"
	RelHasActivity    Relation = "HAS_ACTIVITY"
	RelParticipatesIn Relation = "PARTICIPATES_IN"
)

// Ref identifies a node by label and natural key.
type Ref struct {
	Label Label
	Key   string
}

func (r Ref) String() string { return string(r.Label) + ":" + r.Key }

// Property names as stored on nodes.
const (
	PropStudentID    = "student_id"
	PropModuleID     = "module_id"
	PropEvaluationID = "evaluation_id"
	PropActivityID   = "activity_id"
	PropUsername     = "username"
	PropEmail        = "email"
	PropFirstName    = "first_name"
	PropLastName     = "last_name"
	PropCode         = "code"
	PropName         = "name"
	PropDescription  = "description"
	PropCredits      = "credits"
	PropType         = "type"
	PropTitle        = "title"
	PropScore        = "score"
	PropMaxScore     = "max_score"
	PropDate         = "date"
	PropStatus       = "status"
	PropDuration     = "duration"
	PropPresent      = "present"
)

// Student is a learner node.
type Student struct {
	StudentID string `json:"studentId"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Ref returns the node reference of the student.
func (s Student) Ref() Ref { return Ref{Label: LabelStudent, Key: s.StudentID} }

// Module is a course module node.
type Module struct {
	ModuleID    string `json:"moduleId"`
	Code        string `json:"code,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Credits     int    `json:"credits"`
}

// Ref returns the node reference of the module.
func (m Module) Ref() Ref { return Ref{Label: LabelModule, Key: m.ModuleID} }

// Evaluation is a graded assessment of one student in one module.
type Evaluation struct {
	EvaluationID string     `json:"evaluationId"`
	Type         string     `json:"type"`
	Title        string     `json:"title,omitempty"`
	Score        float64    `json:"score"`
	MaxScore     float64    `json:"maxScore"`
	Date         *time.Time `json:"date,omitempty"`
	Status       string     `json:"status"`
}

// Ref returns the node reference of the evaluation.
func (e Evaluation) Ref() Ref { return Ref{Label: LabelEvaluation, Key: e.EvaluationID} }

// Activity is an attendance record of one student in one module.
type Activity struct {
	ActivityID string     `json:"activityId"`
	Type       string     `json:"type"`
	Title      string     `json:"title,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	Duration   int        `json:"duration"`
	Present    bool       `json:"present"`
}

// Ref returns the node reference of the activity.
func (a Activity) Ref() Ref { return Ref{Label: LabelActivity, Key: a.ActivityID} }
