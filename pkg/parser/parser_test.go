package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/intcodeLang/intcode/pkg/intcode"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		text     string
		expected intcode.Memory
	}{
		{"1,2,3,4", intcode.Memory{1, 2, 3, 4}},
		{"1,9,10,3,2,3,11,0,99,30,40,50\n", intcode.Memory{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}},
		{"\n\n  3,-4 , 99\n\n", intcode.Memory{3, -4, 99}},
		{"-9223372036854775808", intcode.Memory{-9223372036854775808}},
		{"0", intcode.Memory{0}},
		{"", intcode.Memory{}},
		{"  \n", intcode.Memory{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			mem, err := Load(tt.text)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if !mem.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, mem)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		text  string
		token string
	}{
		{"1,x,3", "x"},
		{"1,2a,3", "2a"},
		{"1.5", "1.5"},
		{"+4", "+4"},
		{"1,--2", "--2"},
		{"99999999999999999999", "99999999999999999999"},
		{"1;2", "1;2"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := Load(tt.text)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Expected *ParseError, got %T: %v", err, err)
			}
			if pe.Token != tt.token {
				t.Errorf("Expected token %q, got %q", tt.token, pe.Token)
			}
		})
	}
}

func TestLoadMalformedSeparators(t *testing.T) {
	tests := []struct {
		text   string
		token  string
		column int
	}{
		{"1,,2", "", 3},
		{"1,2,", "", 5},
		{",1", "", 1},
		{"1 2", "1 2", 1},
		{"1, 2 3,4", "2 3", 4},
		{"1,\t,2", "", 4},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := Load(tt.text)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Expected *ParseError, got %T: %v", err, err)
			}
			if pe.Token != tt.token {
				t.Errorf("Expected token %q, got %q", tt.token, pe.Token)
			}
			if pe.Pos.Column != tt.column {
				t.Errorf("Expected column %d, got %d", tt.column, pe.Pos.Column)
			}
		})
	}
}

func TestParseErrorMissingValue(t *testing.T) {
	_, err := Load("1,,2")
	if err == nil || err.Error() != "1:3: missing value" {
		t.Errorf("Expected missing value at 1:3, got %v", err)
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Load("1,2,\nbad")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if pe.Pos.Line != 2 || pe.Pos.Column != 1 {
		t.Errorf("Expected 2:1, got %d:%d", pe.Pos.Line, pe.Pos.Column)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.ic")
	if err := os.WriteFile(path, []byte("1,0,0,0,99\n"), 0644); err != nil {
		t.Fatal(err)
	}
	mem, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if _, err := intcode.Execute(mem, nil, nil); err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	if !mem.Equal(intcode.Memory{2, 0, 0, 0, 99}) {
		t.Errorf("Unexpected memory %v", mem)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.ic")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestParseValues(t *testing.T) {
	vs, err := ParseValues("1, 5")
	if err != nil || len(vs) != 2 || vs[0] != 1 || vs[1] != 5 {
		t.Errorf("Expected [1 5], got %v (%v)", vs, err)
	}
}

func BenchmarkLoad(b *testing.B) {
	text := "3,225,1,225,6,6,1100,1,238,225,104,0,1101,81,30,225,1102,9,63,225,1001,92,45,225,99"
	for i := 0; i < b.N; i++ {
		if _, err := Load(text); err != nil {
			b.Fatal(err)
		}
	}
}
