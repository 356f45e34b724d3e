package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVParser decodes comma-delimited text.
//
// Input is decoded as UTF-8 unless a byte order mark says otherwise; the
// mark itself is dropped and invalid sequences become U+FFFD. Quoting is
// lenient and rows may have any number of fields.
type CSVParser struct{}

// Parse implements Parser.
func (CSVParser) Parse(data []byte) ([]Record, error) {
	if len(data) == 0 {
		return []Record{}, nil
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	return BuildRecords(rows[0], rows[1:]), nil
}
