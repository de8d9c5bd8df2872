package intcode

import "fmt"

// Address is an index into Memory. Write targets are always Addresses, so
// an immediate-mode write cannot be expressed.
type Address int64

// Param is a read operand: either Position or Immediate.
type Param interface {
	Mode() Mode
	String() string
	isParam()
}

// Position reads the cell at the given address.
type Position Address

// Immediate is the operand value itself.
type Immediate int64

func (Position) Mode() Mode  { return ModePosition }
func (Immediate) Mode() Mode { return ModeImmediate }

func (p Position) String() string  { return fmt.Sprintf("[%d]", int64(p)) }
func (v Immediate) String() string { return fmt.Sprintf("%d", int64(v)) }

func (Position) isParam()  {}
func (Immediate) isParam() {}

// Instruction is one decoded instruction. The set of implementations is
// closed; the engine switches over all of them.
type Instruction interface {
	Opcode() Opcode
	isInstruction()
}

type (
	Add struct {
		A, B Param
		Dest Address
	}
	Mul struct {
		A, B Param
		Dest Address
	}
	Input struct {
		Dest Address
	}
	Output struct {
		Src Param
	}
	JumpIfTrue struct {
		Cond, Target Param
	}
	JumpIfFalse struct {
		Cond, Target Param
	}
	LessThan struct {
		A, B Param
		Dest Address
	}
	Equals struct {
		A, B Param
		Dest Address
	}
	Halt struct{}
)

func (Add) Opcode() Opcode         { return OpAdd }
func (Mul) Opcode() Opcode         { return OpMul }
func (Input) Opcode() Opcode       { return OpInput }
func (Output) Opcode() Opcode      { return OpOutput }
func (JumpIfTrue) Opcode() Opcode  { return OpJumpIfTrue }
func (JumpIfFalse) Opcode() Opcode { return OpJumpIfFalse }
func (LessThan) Opcode() Opcode    { return OpLessThan }
func (Equals) Opcode() Opcode      { return OpEquals }
func (Halt) Opcode() Opcode        { return OpHalt }

func (Add) isInstruction()         {}
func (Mul) isInstruction()         {}
func (Input) isInstruction()       {}
func (Output) isInstruction()      {}
func (JumpIfTrue) isInstruction()  {}
func (JumpIfFalse) isInstruction() {}
func (LessThan) isInstruction()    {}
func (Equals) isInstruction()      {}
func (Halt) isInstruction()        {}

// Width returns the number of cells ins occupies.
func Width(ins Instruction) int {
	return ins.Opcode().Width()
}

// Format renders ins in assembler syntax.
func Format(ins Instruction) string {
	name := OpName(ins.Opcode())
	switch in := ins.(type) {
	case Add:
		return fmt.Sprintf("%s %v, %v, [%d]", name, in.A, in.B, in.Dest)
	case Mul:
		return fmt.Sprintf("%s %v, %v, [%d]", name, in.A, in.B, in.Dest)
	case LessThan:
		return fmt.Sprintf("%s %v, %v, [%d]", name, in.A, in.B, in.Dest)
	case Equals:
		return fmt.Sprintf("%s %v, %v, [%d]", name, in.A, in.B, in.Dest)
	case Input:
		return fmt.Sprintf("%s [%d]", name, in.Dest)
	case Output:
		return fmt.Sprintf("%s %v", name, in.Src)
	case JumpIfTrue:
		return fmt.Sprintf("%s %v, %v", name, in.Cond, in.Target)
	case JumpIfFalse:
		return fmt.Sprintf("%s %v, %v", name, in.Cond, in.Target)
	default:
		return name
	}
}

// Decode reads the instruction starting at ip. It fails with
// ErrRanOffEnd if ip is not inside mem, ErrUnknownOpcode or ErrInvalidMode
// for a malformed word, ErrOutOfBounds if the operand cells run past the
// end of mem, and ErrInvalidWriteTarget for an immediate destination.
func Decode(mem Memory, ip int64) (Instruction, error) {
	if !mem.InBounds(ip) {
		return nil, fmt.Errorf("%w: ip %d, memory length %d", ErrRanOffEnd, ip, len(mem))
	}
	word := mem[ip]
	op, modes, err := SplitWord(word)
	if err != nil {
		return nil, err
	}
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d (word %d)", ErrUnknownOpcode, int64(op), word)
	}

	d := decoder{mem: mem, ip: ip, modes: modes}
	var ins Instruction
	switch op {
	case OpAdd:
		ins = Add{A: d.param(0), B: d.param(1), Dest: d.dest(2)}
	case OpMul:
		ins = Mul{A: d.param(0), B: d.param(1), Dest: d.dest(2)}
	case OpInput:
		ins = Input{Dest: d.dest(0)}
	case OpOutput:
		ins = Output{Src: d.param(0)}
	case OpJumpIfTrue:
		ins = JumpIfTrue{Cond: d.param(0), Target: d.param(1)}
	case OpJumpIfFalse:
		ins = JumpIfFalse{Cond: d.param(0), Target: d.param(1)}
	case OpLessThan:
		ins = LessThan{A: d.param(0), B: d.param(1), Dest: d.dest(2)}
	case OpEquals:
		ins = Equals{A: d.param(0), B: d.param(1), Dest: d.dest(2)}
	case OpHalt:
		ins = Halt{}
	}
	if d.err != nil {
		return nil, d.err
	}
	return ins, nil
}

// decoder reads operand cells, keeping the first error.
type decoder struct {
	mem   Memory
	ip    int64
	modes [3]Mode
	err   error
}

func (d *decoder) cell(i int) int64 {
	if d.err != nil {
		return 0
	}
	v, err := d.mem.Read(d.ip + 1 + int64(i))
	if err != nil {
		d.err = err
	}
	return v
}

func (d *decoder) param(i int) Param {
	v := d.cell(i)
	if d.modes[i] == ModeImmediate {
		return Immediate(v)
	}
	return Position(v)
}

func (d *decoder) dest(i int) Address {
	v := d.cell(i)
	if d.err == nil && d.modes[i] != ModePosition {
		d.err = fmt.Errorf("%w: parameter %d", ErrInvalidWriteTarget, i+1)
	}
	return Address(v)
}

// Resolve returns the value of p: the referenced cell for Position, the
// operand itself for Immediate.
func Resolve(mem Memory, p Param) (int64, error) {
	switch p := p.(type) {
	case Position:
		return mem.Read(int64(p))
	case Immediate:
		return int64(p), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidMode, p)
	}
}
