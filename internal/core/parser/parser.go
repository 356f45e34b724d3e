// Package parser turns uploaded file bytes into normalized row records.
//
// Every format decodes its input into a header row plus data rows of cell
// strings and then hands them to BuildRecords, so CSV and spreadsheet
// uploads normalize headers and drop empty cells identically. Parsers are
// single-pass: Parse consumes the whole input and returns the records in
// file order.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when no parser handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Record maps a normalized header to a trimmed, non-empty cell value.
type Record map[string]string

// Get returns the value for the first key present in the record.
func (r Record) Get(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return v, true
		}
	}
	return "", false
}

// Parser decodes one file format.
type Parser interface {
	Parse(data []byte) ([]Record, error)
}

// Supported extensions, lower-case and without the leading dot.
const (
	ExtCSV  = "csv"
	ExtXLSX = "xlsx"
	ExtXLS  = "xls"
)

// Extensions lists every extension a parser exists for.
var Extensions = []string{ExtCSV, ExtXLSX, ExtXLS}

// Extension returns the lower-cased extension of name without the dot.
// Names without an extension, or ending in a dot, return "".
func Extension(name string) string {
	ext := filepath.Ext(name)
	if len(ext) <= 1 {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// ForFile selects the parser for a file name by its extension.
func ForFile(name string) (Parser, error) {
	switch ext := Extension(name); ext {
	case ExtCSV:
		return CSVParser{}, nil
	case ExtXLSX:
		return XLSXParser{}, nil
	case ExtXLS:
		return XLSParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
