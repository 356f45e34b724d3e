package parser

import (
	"reflect"
	"testing"
)

func TestCSVParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []Record
	}{
		{
			name:  "basic with normalized headers",
			input: []byte("Student ID,First Name,Email\nS1,Ada,ada@x.io\nS2,Alan,alan@x.io\n"),
			expected: []Record{
				{"student_id": "S1", "first_name": "Ada", "email": "ada@x.io"},
				{"student_id": "S2", "first_name": "Alan", "email": "alan@x.io"},
			},
		},
		{
			name:  "byte order mark stripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,name\nS1,Ada\n")...),
			expected: []Record{
				{"id": "S1", "name": "Ada"},
			},
		},
		{
			name:  "quoted fields with commas",
			input: []byte("id,title\nM1,\"Algebra, part 1\"\n"),
			expected: []Record{
				{"id": "M1", "title": "Algebra, part 1"},
			},
		},
		{
			name:  "ragged rows and blank cells",
			input: []byte("id,name,email\nS1,,\nS2,Bob\n,,\n"),
			expected: []Record{
				{"id": "S1"},
				{"id": "S2", "name": "Bob"},
			},
		},
		{
			name:  "invalid utf-8 replaced",
			input: []byte("id,name\nS1,Ad\xffa\n"),
			expected: []Record{
				{"id": "S1", "name": "Ad\uFFFDa"},
			},
		},
		{
			name:     "header only",
			input:    []byte("id,name\n"),
			expected: []Record{},
		},
		{
			name:     "empty input",
			input:    []byte{},
			expected: []Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CSVParser{}.Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}
