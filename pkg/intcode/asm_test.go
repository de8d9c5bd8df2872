package intcode

import (
	"strings"
	"testing"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected Memory
	}{
		{"halt", "halt", Memory{99}},
		{"add positions", "add [9], [10], [3]\nhalt", Memory{1, 9, 10, 3, 99}},
		{"mixed modes", "mul [4], 3, [4]", Memory{1002, 4, 3, 4}},
		{"output immediate", "out -7\nhalt", Memory{104, -7, 99}},
		{"data", "data 1, 2, -3", Memory{1, 2, -3}},
		{"comments", "; leading\nin [0] ; read\n\nhalt\n", Memory{3, 0, 99}},
		{"aliases", "jnz 1, 0\njz [0], 0", Memory{1105, 1, 0, 1006, 0, 0}},
		{"label on its own line", "top:\n  jt 1, top", Memory{1105, 1, 0}},
		{"stacked labels", "out 1\na: b:\njt 1, a\njt 1, b", Memory{104, 1, 1105, 1, 2, 1105, 1, 2}},
		{"no trailing newline", "out 1\nhalt ; done", Memory{104, 1, 99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem, err := Assemble(tt.source)
			if err != nil {
				t.Fatalf("Assemble error: %v", err)
			}
			if !mem.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, mem)
			}
		})
	}
}

func TestAssembleLabels(t *testing.T) {
	source := `
; count down from the input, printing each value
start:  in [n]
loop:   jf [n], done
        out [n]
        add [n], -1, [n]
        jt 1, loop
done:   halt
n:      data 0
`
	asm := NewAssembler()
	mem, err := asm.Assemble(source)
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	labels := asm.Labels()
	if labels["start"] != 0 || labels["loop"] != 2 || labels["done"] != 14 || labels["n"] != 15 {
		t.Errorf("Unexpected labels %v", labels)
	}

	out := run(t, mem, 3)
	if len(out) != 3 || out[0] != 3 || out[1] != 2 || out[2] != 1 {
		t.Errorf("Expected [3 2 1], got %v", out)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown mnemonic", "jmp 4", "unknown mnemonic"},
		{"arity", "add [1], [2]", "takes 3 operands"},
		{"immediate dest", "add 1, 2, 3", "write target"},
		{"immediate input", "in 5", "write target"},
		{"undefined label", "jt 1, nowhere", "undefined label"},
		{"duplicate label", "a: halt\na: halt", "duplicate label"},
		{"position data", "data [1]", "position"},
		{"syntax", "add [1, 2", "syntax"},
		{"statements on one line", "out 1 out 2 halt", "syntax"},
		{"two statements after label", "a: halt halt", "takes 0 operands"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.source)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDisassemble(t *testing.T) {
	mem := Memory{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}
	expected := strings.Join([]string{
		"0000: add [9], [10], [3]",
		"0004: mul [3], [11], [0]",
		"0008: halt",
		"0009: data 30",
		"0010: data 40",
		"0011: data 50",
	}, "\n") + "\n"
	if got := Disassemble(mem); got != expected {
		t.Errorf("Expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestDisassembleReassembles(t *testing.T) {
	mem := Memory{3, 9, 1008, 9, 8, 10, 4, 10, 99, 0, 0}
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(Disassemble(mem)), "\n") {
		lines = append(lines, l[len("0000: "):])
	}
	again, err := Assemble(strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if !again.Equal(mem) {
		t.Errorf("Expected %v, got %v", mem, again)
	}
}
