package parser

import (
	"errors"
	"testing"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"students.csv", "csv"},
		{"Grades.XLSX", "xlsx"},
		{"archive.2023.xls", "xls"},
		{"noext", ""},
		{"trailing.", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extension(tt.name); got != tt.expected {
				t.Errorf("Extension(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name     string
		expected Parser
	}{
		{"a.csv", CSVParser{}},
		{"B.XLSX", XLSXParser{}},
		{"a.xls", XLSParser{}},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.name)
		if err != nil {
			t.Fatalf("ForFile(%q): %v", tt.name, err)
		}
		if p != tt.expected {
			t.Errorf("ForFile(%q) = %T, want %T", tt.name, p, tt.expected)
		}
	}

	if _, err := ForFile("notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
