package core

// validation.go checks an upload before any parsing is attempted.
//
// Checks are independent and accumulate, except that a missing or empty
// payload and a missing file name stop validation immediately since the
// remaining checks have nothing to inspect. Content-type mismatches are
// warnings only: browsers and CLI clients declare MIME types unreliably.

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/JonMunkholm/edupath-ingest/internal/core/parser"
)

// DefaultMaxFileSize is the upload size limit (10 MiB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Known-good content types for accepted formats.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLS  = "application/vnd.ms-excel"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var allowedContentTypes = []string{ContentTypeCSV, ContentTypeXLS, ContentTypeXLSX}

// ValidationResult is the outcome of validating one upload.
// Valid is true exactly when Errors is empty.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validator checks uploads against size, format and entity type rules.
type Validator struct {
	maxSize int64
}

// NewValidator returns a validator with the given size limit in bytes.
// A non-positive limit selects DefaultMaxFileSize.
func NewValidator(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the size limit in bytes.
func (v *Validator) MaxSize() int64 { return v.maxSize }

// Validate checks file and the declared entity type.
func (v *Validator) Validate(file *FileInput, entityType string) ValidationResult {
	var res ValidationResult

	if file == nil || len(file.Data) == 0 {
		res.addError("empty file: no content was uploaded")
		return res
	}
	if strings.TrimSpace(file.Name) == "" {
		res.addError("no file name provided")
		return res
	}

	if file.Size() > v.maxSize {
		res.addError("file too large: %d bytes exceeds the %d byte limit", file.Size(), v.maxSize)
	}

	ext := parser.Extension(file.Name)
	if !slices.Contains(parser.Extensions, ext) {
		res.addError("unsupported file format %q (allowed: %s)", ext, strings.Join(parser.Extensions, ", "))
	}

	v.checkContentType(&res, file)

	if !slices.Contains(SupportedEntityTypes, entityType) {
		res.addError("unsupported entity type %q (allowed: %s)", entityType, strings.Join(SupportedEntityTypes, ", "))
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// checkContentType warns when the declared type, or the sniffed type when
// none was declared, is outside the known-good set. Sniffed plain text is
// accepted since that is how most CSV content detects.
func (v *Validator) checkContentType(res *ValidationResult, file *FileInput) {
	declared, _, _ := strings.Cut(file.ContentType, ";")
	declared = strings.ToLower(strings.TrimSpace(declared))

	if declared != "" {
		if !slices.Contains(allowedContentTypes, declared) {
			res.addWarning("unexpected content type %q", declared)
		}
		return
	}

	detected := mimetype.Detect(file.Data)
	for _, allowed := range allowedContentTypes {
		if detected.Is(allowed) {
			return
		}
	}
	if detected.Is("text/plain") {
		return
	}
	res.addWarning("content looks like %q", detected.String())
}
