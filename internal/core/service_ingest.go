package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/edupath-ingest/internal/core/parser"
	"github.com/JonMunkholm/edupath-ingest/internal/logging"
	"github.com/JonMunkholm/edupath-ingest/internal/metrics"
)

// Ingest runs the pipeline for one uploaded file.
//
// The run is created PENDING and moved to PROCESSING before anything else
// happens. In sync mode the caller receives the terminal snapshot; in
// async mode the PROCESSING snapshot is returned and the body continues in
// the background once a run slot is held.
//
// The only errors returned are failures to create or start the run record
// and ErrTooManyRuns for a saturated async request. Every other failure is
// reported through the run's status and message.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (Response, error) {
	if req.Async {
		if err := s.limiter.Acquire(ctx); err != nil {
			metrics.AsyncRejected()
			return Response{}, err
		}
	}

	run, err := s.startRun(ctx, req)
	if err != nil {
		if req.Async {
			s.limiter.Release()
		}
		return Response{}, err
	}

	log := logging.ForRun(ctx, run.ID, run.EntityType, run.FileName)

	// Runs are not cancellable once started, even if the caller goes away.
	runCtx := context.WithoutCancel(ctx)

	if req.Async {
		snapshot := *run
		go func() {
			defer s.limiter.Release()
			s.execute(runCtx, run, req, log)
		}()
		log.Info("run started asynchronously")
		return newResponse(&snapshot, MsgAsyncStarted, nil), nil
	}

	return s.execute(runCtx, run, req, log), nil
}

// startRun creates the run record and moves it to PROCESSING.
func (s *Service) startRun(ctx context.Context, req IngestRequest) (*Run, error) {
	var name string
	if req.File != nil {
		name = req.File.Name
	}

	run := &Run{
		FileName:    name,
		FileType:    parser.Extension(name),
		EntityType:  req.EntityType,
		Status:      StatusPending,
		TriggeredBy: UserIDFromContext(ctx),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	run.Status = StatusProcessing
	if err := s.runs.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("start run %d: %w", run.ID, err)
	}

	metrics.RunStarted()
	return run, nil
}

// execute drives a PROCESSING run to a terminal status. A panic while
// validating or parsing fails the run instead of leaving it PROCESSING;
// panics inside a record count as row errors.
func (s *Service) execute(ctx context.Context, run *Run, req IngestRequest, log *slog.Logger) (resp Response) {
	var finished bool
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in ingestion run", "panic", r)
			if !finished {
				run.Status = StatusFailed
				run.ErrorMessage = fmt.Sprintf("internal error: %v", r)
				s.persist(ctx, run, log)
			}
			resp = newResponse(run, "internal error", nil)
		}
	}()
	finish := func() {
		finished = true
		s.persist(ctx, run, log)
	}

	validation := s.validator.Validate(req.File, req.EntityType)
	if !validation.Valid {
		run.Status = StatusFailed
		run.ErrorMessage = strings.Join(validation.Errors, "; ")
		finish()
		log.Warn("upload rejected", "errors", validation.Errors)
		return newResponse(run, MsgValidationError, validation.Warnings)
	}
	for _, w := range validation.Warnings {
		log.Warn("upload warning", "warning", w)
	}

	records, err := parseFile(req.File)
	if err != nil {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
		finish()
		log.Warn("parse failed", "error", err)
		return newResponse(run, MsgParseError, validation.Warnings)
	}
	if len(records) == 0 {
		run.Status = StatusFailed
		run.ErrorMessage = ErrMsgNoData
		finish()
		return newResponse(run, MsgEmptyFile, validation.Warnings)
	}

	run.TotalRecords = intPtr(len(records))
	succeeded, failed := s.applyRecords(ctx, run, records, log)

	run.SuccessfulRecords = intPtr(succeeded)
	run.FailedRecords = intPtr(failed)
	run.Status = selectStatus(succeeded, failed)
	metrics.RowsProcessed(s.metricsLabel(run.EntityType), succeeded, failed)

	finish()
	log.Info("run finished",
		"status", run.Status,
		"total", len(records),
		"successful", succeeded,
		"failed", failed,
	)

	s.notify(ctx, *run, log)

	return newResponse(run, MsgCompleted, validation.Warnings)
}

func parseFile(file *FileInput) ([]parser.Record, error) {
	p, err := parser.ForFile(file.Name)
	if err != nil {
		return nil, err
	}
	return p.Parse(file.Data)
}

// applyRecords dispatches every record in order. A failing record is
// counted and recorded, then processing moves on.
func (s *Service) applyRecords(ctx context.Context, run *Run, records []parser.Record, log *slog.Logger) (succeeded, failed int) {
	for i, rec := range records {
		if err := s.dispatch(ctx, run.EntityType, rec); err != nil {
			failed++
			if len(run.RowErrors) < s.maxRowErrors {
				run.RowErrors = append(run.RowErrors, fmt.Sprintf("record %d: %v", i+1, err))
			}
			log.Debug("record failed", "record", i+1, "error", err)
			continue
		}
		succeeded++
	}
	return succeeded, failed
}

// dispatch applies one record, turning a panic into a row error.
func (s *Service) dispatch(ctx context.Context, entityType string, rec parser.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.dispatcher.Dispatch(ctx, entityType, rec)
}

// selectStatus picks the terminal status from the row outcome.
func selectStatus(succeeded, failed int) Status {
	switch {
	case failed == 0:
		return StatusCompleted
	case succeeded > 0:
		return StatusPartiallyCompleted
	default:
		return StatusFailed
	}
}

// notify publishes the completion event. Notification is best-effort and
// cannot alter a run that is already persisted.
func (s *Service) notify(ctx context.Context, run Run, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in notifier", "panic", r)
		}
	}()
	s.notifier.Notify(ctx, run)
}

// persist writes the terminal run. A store failure or panic is logged; the
// caller still gets the in-memory snapshot.
func (s *Service) persist(ctx context.Context, run *Run, log *slog.Logger) {
	metrics.RunFinished(s.metricsLabel(run.EntityType), string(run.Status), time.Since(run.CreatedAt))
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic persisting run", "status", run.Status, "panic", r)
		}
	}()
	if err := s.runs.Update(ctx, run); err != nil {
		log.Error("failed to persist run", "status", run.Status, "error", err)
	}
}

// unsupportedLabel stands in for any entity type without a handler so the
// metric label set stays bounded.
const unsupportedLabel = "unsupported"

// metricsLabel maps a caller-supplied entity type onto a metric label.
func (s *Service) metricsLabel(entityType string) string {
	if s.dispatcher.Handles(entityType) {
		return entityType
	}
	return unsupportedLabel
}
