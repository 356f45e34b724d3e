package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// testdata/students.xls is a BIFF8 workbook with two sheets. The first,
// "Students", has a header row, a data row, a row with no record at all
// and a second data row. The second sheet must never be read.
func TestXLSParser_Parse(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "students.xls"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	got, err := XLSParser{}.Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Record{
		{
			"student_id":  "S1",
			"first_name":  "Ada",
			"grade_level": "3",
			"module_code": "2.0",
		},
		{
			"student_id":  "S2",
			"first_name":  "Zoë",
			"grade_level": "10.5",
			"module_code": "M-7",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

func TestXLSParser_TextCellsKeptVerbatim(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "students.xls"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	got, err := XLSParser{}.Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 || got[0]["module_code"] != "2.0" {
		t.Errorf("text cell %q was rewritten: %v", "2.0", got)
	}
}

func TestXLSParser_InvalidData(t *testing.T) {
	if _, err := (XLSParser{}).Parse([]byte("definitely not ole2")); err == nil {
		t.Error("expected error for corrupt workbook")
	}
}
