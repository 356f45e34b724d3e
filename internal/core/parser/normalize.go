package parser

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	disallowedRune = regexp.MustCompile(`[^a-z0-9_]`)
)

// NormalizeHeader turns a raw header cell into a record key:
// trimmed, lower-cased, whitespace runs replaced by "_" and every
// character outside [a-z0-9_] removed.
//
//	"Student ID"   -> "student_id"
//	" E-mail "     -> "email"
//	"Max  Score %" -> "max_score_"
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = whitespaceRun.ReplaceAllString(h, "_")
	return disallowedRune.ReplaceAllString(h, "")
}

// NormalizeHeaders normalizes every header cell, keeping positions.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// BuildRecord pairs normalized headers with cells positionally up to the
// shorter of the two. Columns with an empty key or an empty trimmed value
// are skipped.
func BuildRecord(headers, cells []string) Record {
	rec := make(Record)
	n := min(len(headers), len(cells))
	for i := 0; i < n; i++ {
		key := headers[i]
		value := strings.TrimSpace(cells[i])
		if key == "" || value == "" {
			continue
		}
		rec[key] = value
	}
	return rec
}

// BuildRecords normalizes the header row and builds one record per data
// row, in order. Rows that yield no fields are dropped.
func BuildRecords(header []string, rows [][]string) []Record {
	headers := NormalizeHeaders(header)
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := BuildRecord(headers, row)
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records
}
