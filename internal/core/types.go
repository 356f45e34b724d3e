package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusProcessing         Status = "PROCESSING"
	StatusCompleted          Status = "COMPLETED"
	StatusPartiallyCompleted Status = "PARTIALLY_COMPLETED"
	StatusFailed             Status = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusPartiallyCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Entity types accepted by the validator.
const (
	EntityUser     = "User"
	EntityModule   = "Module"
	EntityNote     = "Note"
	EntityPresence = "Presence"
	EntityActivity = "Activity"

	// EntityEvaluation is dispatched like Note but not accepted on upload.
	EntityEvaluation = "Evaluation"
)

// SupportedEntityTypes lists the entity types an upload may declare.
var SupportedEntityTypes = []string{EntityUser, EntityModule, EntityNote, EntityPresence, EntityActivity}

// ErrRunNotFound is returned by a RunStore for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is the persisted record of one ingestion.
//
// Once Status leaves PROCESSING, SuccessfulRecords + FailedRecords equals
// TotalRecords. The counts stay nil until parsing succeeds.
type Run struct {
	ID                int64     `json:"id"`
	FileName          string    `json:"fileName"`
	FileType          string    `json:"fileType"`
	EntityType        string    `json:"entityType"`
	Status            Status    `json:"status"`
	ErrorMessage      string    `json:"errorMessage,omitempty"`
	TotalRecords      *int      `json:"totalRecords"`
	SuccessfulRecords *int      `json:"successfulRecords"`
	FailedRecords     *int      `json:"failedRecords"`
	RowErrors         []string  `json:"rowErrors,omitempty"`
	TriggeredBy       string    `json:"triggeredBy,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Counts returns the record counts with nil read as zero.
func (r Run) Counts() (total, successful, failed int) {
	return deref(r.TotalRecords), deref(r.SuccessfulRecords), deref(r.FailedRecords)
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func intPtr(n int) *int { return &n }

// RunStore persists runs. Create assigns ID and timestamps; Update
// overwrites every mutable field of the run with the given ID.
type RunStore interface {
	Create(ctx context.Context, run *Run) error
	Update(ctx context.Context, run *Run) error
	Get(ctx context.Context, id int64) (*Run, error)
	List(ctx context.Context, limit int) ([]Run, error)
}

// Notifier announces terminal runs. Implementations must not block for
// long and never report failure.
type Notifier interface {
	Notify(ctx context.Context, run Run)
}

// FileInput is an uploaded file held in memory.
type FileInput struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f *FileInput) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// IngestRequest triggers one run.
type IngestRequest struct {
	File       *FileInput
	EntityType string
	Async      bool
}

// Response is the caller-facing snapshot of a run.
type Response struct {
	LogID             int64     `json:"logId"`
	FileName          string    `json:"fileName"`
	EntityType        string    `json:"entityType"`
	Status            Status    `json:"status"`
	TotalRecords      *int      `json:"totalRecords"`
	SuccessfulRecords *int      `json:"successfulRecords"`
	FailedRecords     *int      `json:"failedRecords"`
	Message           string    `json:"message"`
	ErrorMessage      string    `json:"errorMessage,omitempty"`
	Warnings          []string  `json:"warnings,omitempty"`
	ProcessedAt       time.Time `json:"processedAt"`
}

// Response messages.
const (
	MsgCompleted       = "processing completed"
	MsgValidationError = "validation error"
	MsgEmptyFile       = "empty file"
	MsgParseError      = "parse error"
	MsgAsyncStarted    = "asynchronous processing started"

	// ErrMsgNoData is stored on runs whose file parsed to zero records.
	ErrMsgNoData = "no data found in file"
)

func newResponse(run *Run, message string, warnings []string) Response {
	return Response{
		LogID:             run.ID,
		FileName:          run.FileName,
		EntityType:        run.EntityType,
		Status:            run.Status,
		TotalRecords:      run.TotalRecords,
		SuccessfulRecords: run.SuccessfulRecords,
		FailedRecords:     run.FailedRecords,
		Message:           message,
		ErrorMessage:      run.ErrorMessage,
		Warnings:          warnings,
		ProcessedAt:       run.CreatedAt,
	}
}
