// Package intcode implements the Intcode virtual machine.
// Programs are flat sequences of signed integers held in a single mutable
// Memory; instructions are decoded in place, so programs may rewrite
// their own code.
package intcode

import "fmt"

// Opcode is the two low decimal digits of an instruction word.
type Opcode int64

// Instruction word layout (decimal):
//
//	CBAoo
//	   oo: opcode
//	    A: mode of parameter 1
//	    B: mode of parameter 2
//	    C: mode of parameter 3
//
// Missing mode digits mean Position mode.
const (
	OpAdd         Opcode = 1  // a b [dest] -- dest = a+b
	OpMul         Opcode = 2  // a b [dest] -- dest = a*b
	OpInput       Opcode = 3  // [dest] -- dest = next input
	OpOutput      Opcode = 4  // a -- emit a
	OpJumpIfTrue  Opcode = 5  // cond target -- jump if cond != 0
	OpJumpIfFalse Opcode = 6  // cond target -- jump if cond == 0
	OpLessThan    Opcode = 7  // a b [dest] -- dest = a<b
	OpEquals      Opcode = 8  // a b [dest] -- dest = a==b
	OpHalt        Opcode = 99 // stop
)

// Arity returns the number of operand cells following the opcode cell,
// or -1 for an undefined opcode.
func (op Opcode) Arity() int {
	switch op {
	case OpHalt:
		return 0
	case OpInput, OpOutput:
		return 1
	case OpJumpIfTrue, OpJumpIfFalse:
		return 2
	case OpAdd, OpMul, OpLessThan, OpEquals:
		return 3
	default:
		return -1
	}
}

// Width returns the number of cells an instruction with this opcode
// occupies, opcode cell included.
func (op Opcode) Width() int {
	if n := op.Arity(); n >= 0 {
		return n + 1
	}
	return 0
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return op.Arity() >= 0
}

func (op Opcode) String() string {
	return OpName(op)
}

var opNames = map[Opcode]string{
	OpAdd:         "add",
	OpMul:         "mul",
	OpInput:       "in",
	OpOutput:      "out",
	OpJumpIfTrue:  "jt",
	OpJumpIfFalse: "jf",
	OpLessThan:    "lt",
	OpEquals:      "eq",
	OpHalt:        "halt",
}

// OpName returns the assembler mnemonic of an opcode for debugging.
func OpName(op Opcode) string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return fmt.Sprintf("?%d", int64(op))
}

// Mode selects how a parameter is addressed.
type Mode uint8

const (
	ModePosition  Mode = 0 // operand is an address into Memory
	ModeImmediate Mode = 1 // operand is the value itself
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeImmediate:
		return "immediate"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// SplitWord splits a raw instruction word into its opcode and the modes of
// parameters 1, 2 and 3. The opcode is not checked against the defined set.
func SplitWord(word int64) (Opcode, [3]Mode, error) {
	var modes [3]Mode
	op := Opcode(word % 100)
	if word < 0 {
		return op, modes, nil
	}
	rest := word / 100
	for i := range modes {
		d := rest % 10
		if d > int64(ModeImmediate) {
			return op, modes, fmt.Errorf("%w: digit %d for parameter %d of %d", ErrInvalidMode, d, i+1, word)
		}
		modes[i] = Mode(d)
		rest /= 10
	}
	if rest != 0 {
		return op, modes, fmt.Errorf("%w: too many mode digits in %d", ErrInvalidMode, word)
	}
	return op, modes, nil
}
