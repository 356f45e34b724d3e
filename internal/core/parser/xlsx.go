package parser

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayout is how spreadsheet date cells are rendered.
const dateLayout = "2006-01-02T15:04:05"

// builtinDateFormats are the built-in number format IDs that display dates
// or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// XLSXParser reads the first sheet of an Office Open XML workbook.
//
// Row 1 is the header. Formula cells yield their formula text, booleans
// yield "true"/"false", date-formatted numbers yield an ISO-8601 local
// date-time and integral numbers are rendered without a fractional part.
type XLSXParser struct{}

// Parse implements Parser.
func (XLSXParser) Parse(data []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []Record{}, nil
	}

	s := &xlsxSheet{
		file:      f,
		name:      sheets[0],
		dateStyle: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		s.date1904 = *props.Date1904
	}

	rows, err := f.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.name, err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	header := s.row(0, rows[0], len(rows[0]))
	body := make([][]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		// Trailing formula cells without a cached value are trimmed from
		// rows, so cells are read up to the header width.
		body = append(body, s.row(i, rows[i], len(header)))
	}

	return BuildRecords(header, body), nil
}

type xlsxSheet struct {
	file      *excelize.File
	name      string
	date1904  bool
	dateStyle map[int]bool
}

func (s *xlsxSheet) row(idx int, raw []string, width int) []string {
	width = max(width, len(raw))
	cells := make([]string, width)
	for col := 0; col < width; col++ {
		var v string
		if col < len(raw) {
			v = raw[col]
		}
		axis, err := excelize.CoordinatesToCellName(col+1, idx+1)
		if err != nil {
			cells[col] = v
			continue
		}
		cells[col] = s.cell(axis, v)
	}
	return cells
}

func (s *xlsxSheet) cell(axis, raw string) string {
	if formula, err := s.file.GetCellFormula(s.name, axis); err == nil && formula != "" {
		return strings.TrimPrefix(formula, "=")
	}

	typ, err := s.file.GetCellType(s.name, axis)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return "true"
		}
		return "false"
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t.Format(dateLayout)
		}
		return raw
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if raw == "" {
			return ""
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if s.isDate(axis) {
			if t, err := excelize.ExcelDateToTime(n, s.date1904); err == nil {
				return t.Format(dateLayout)
			}
		}
		return formatNumber(n)
	default:
		return raw
	}
}

func (s *xlsxSheet) isDate(axis string) bool {
	styleID, err := s.file.GetCellStyle(s.name, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if cached, ok := s.dateStyle[styleID]; ok {
		return cached
	}

	style, err := s.file.GetStyle(styleID)
	isDate := false
	if err == nil && style != nil {
		isDate = builtinDateFormats[style.NumFmt]
		if !isDate && style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	s.dateStyle[styleID] = isDate
	return isDate
}

// isDateFormatCode reports whether a custom number format renders a date
// or time. Quoted literals and bracketed sections are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	return strings.ContainsAny(b.String(), "ydhs")
}

// formatNumber renders integral values without a fractional part.
func formatNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
