package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/edupath-ingest/internal/core"
	"github.com/JonMunkholm/edupath-ingest/internal/logging"
	"github.com/JonMunkholm/edupath-ingest/internal/web/templates"
)

// multipartOverhead is the allowance for form fields and part headers on
// top of the file size limit. Files between the limit and the allowance
// reach the service and are recorded as FAILED runs.
const multipartOverhead = 1 << 20

// handleUpload runs one ingestion from a multipart upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.service.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize + multipartOverhead); err != nil {
		respondError(w, r, fmt.Errorf("invalid request: file too large or malformed form: %w", err), http.StatusBadRequest)
		return
	}

	form, err := parseUploadForm(r)
	if err != nil {
		respondError(w, r, fmt.Errorf("invalid request: %w", err), http.StatusBadRequest)
		return
	}

	// A missing file part is handed to the service so it is recorded as
	// a failed run like any other empty upload.
	var input *core.FileInput
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(w, r, fmt.Errorf("invalid request: read upload: %w", err), http.StatusBadRequest)
			return
		}
		input = &core.FileInput{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	resp, err := s.service.Ingest(r.Context(), core.IngestRequest{
		File:       input,
		EntityType: form.EntityType,
		Async:      form.async(),
	})
	if err != nil {
		if errors.Is(err, core.ErrTooManyRuns) {
			w.Header().Set("Retry-After", "30")
			respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if resp.Status == core.StatusFailed {
		status = http.StatusBadRequest
	}
	logging.FromContext(r.Context()).Info("ingestion request handled",
		"run_id", resp.LogID,
		"status", resp.Status,
		"async", form.async(),
	)
	writeJSON(w, status, resp)
}

// handleGetRun returns a run snapshot.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleListRuns returns the most recent runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q, err := parseListRunsQuery(r)
	if err != nil {
		respondError(w, r, fmt.Errorf("invalid request: limit: %w", err), http.StatusBadRequest)
		return
	}

	runs, err := s.service.ListRuns(r.Context(), q.Limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.service.LimiterStatus()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK\nactive_runs %d/%d\n", st.Active, st.MaxConcurrent)
}

// handleRunPage renders the HTML status page of a run.
func (s *Server) handleRunPage(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.RunPage(*run).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render run page", "run_id", run.ID, "error", err)
	}
}

// loadRun resolves the runID URL parameter, writing the error response
// itself when it fails.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*core.Run, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "runID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, fmt.Errorf("%w: invalid id %q", core.ErrRunNotFound, chi.URLParam(r, "runID")), http.StatusNotFound)
		return nil, false
	}

	run, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, r, err, status)
		return nil, false
	}
	return run, true
}
