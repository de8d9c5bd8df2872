package intcode

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of a run.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further instruction can execute.
func (s State) Terminal() bool {
	return s == StateHalted || s == StateFaulted
}

type jumpKind uint8

const (
	jumpAdvance jumpKind = iota
	jumpAbsolute
	jumpHalt
)

// Jump is the control-flow outcome of one instruction.
type Jump struct {
	kind   jumpKind
	target int64
}

// Advance moves ip past an instruction of width n.
func Advance(n int) Jump { return Jump{kind: jumpAdvance, target: int64(n)} }

// JumpTo sets ip to an absolute address.
func JumpTo(addr int64) Jump { return Jump{kind: jumpAbsolute, target: addr} }

// Stop ends the run in StateHalted.
var Stop = Jump{kind: jumpHalt}

func (j Jump) String() string {
	switch j.kind {
	case jumpAbsolute:
		return fmt.Sprintf("jump %d", j.target)
	case jumpHalt:
		return "halt"
	default:
		return fmt.Sprintf("advance %d", j.target)
	}
}

// VM is the Intcode machine. A VM runs a single program once; it is not
// safe for concurrent use.
type VM struct {
	Memory Memory
	IP     int64
	Ticks  int // instructions executed so far
	State  State
	Fault  *Fault

	Input  Source
	Output Sink
	Hooks  []Hook
}

// New creates a VM that runs mem in place.
func New(mem Memory, in Source, out Sink) *VM {
	if in == nil {
		in = Values()
	}
	if out == nil {
		out = Discard
	}
	return &VM{
		Memory: mem,
		Input:  in,
		Output: out,
	}
}

// Step fetches, decodes and executes one instruction. It returns the
// run's Fault once the VM has faulted, and nil otherwise.
func (vm *VM) Step() error {
	if vm.State.Terminal() {
		if vm.Fault != nil {
			return vm.Fault
		}
		return nil
	}

	ins, err := Decode(vm.Memory, vm.IP)
	if err != nil {
		return vm.fail(err)
	}

	for _, h := range vm.Hooks {
		if err := h(Event{Tick: vm.Ticks, IP: vm.IP, Instruction: ins, Memory: vm.Memory}); err != nil {
			return vm.fail(fmt.Errorf("%w: %w", ErrAborted, err))
		}
	}

	j, err := vm.exec(ins)
	if err != nil {
		return vm.fail(err)
	}

	switch j.kind {
	case jumpHalt:
		vm.State = StateHalted
	case jumpAbsolute:
		if !vm.Memory.InBounds(j.target) {
			return vm.fail(&AddressError{Address: j.target, Len: len(vm.Memory)})
		}
		vm.IP = j.target
	default:
		vm.IP += j.target
	}
	vm.Ticks++
	return nil
}

// Run steps until the VM halts or faults. It returns nil on halt and the
// *Fault otherwise.
func (vm *VM) Run() error {
	for !vm.State.Terminal() {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}

// exec applies the side effects of ins and returns where control goes next.
func (vm *VM) exec(ins Instruction) (Jump, error) {
	mem := vm.Memory
	width := Width(ins)

	switch in := ins.(type) {
	case Add:
		return vm.binary(in.A, in.B, in.Dest, width, func(a, b int64) int64 { return a + b })

	case Mul:
		return vm.binary(in.A, in.B, in.Dest, width, func(a, b int64) int64 { return a * b })

	case LessThan:
		return vm.binary(in.A, in.B, in.Dest, width, func(a, b int64) int64 { return boolCell(a < b) })

	case Equals:
		return vm.binary(in.A, in.B, in.Dest, width, func(a, b int64) int64 { return boolCell(a == b) })

	case Input:
		v, ok := vm.Input.Next()
		if !ok {
			return Jump{}, ErrInputExhausted
		}
		if err := mem.Write(int64(in.Dest), v); err != nil {
			return Jump{}, err
		}
		return Advance(width), nil

	case Output:
		v, err := Resolve(mem, in.Src)
		if err != nil {
			return Jump{}, err
		}
		if err := vm.Output.Emit(v); err != nil {
			return Jump{}, fmt.Errorf("%w: %w", ErrOutput, err)
		}
		return Advance(width), nil

	case JumpIfTrue:
		return vm.branch(in.Cond, in.Target, width, true)

	case JumpIfFalse:
		return vm.branch(in.Cond, in.Target, width, false)

	case Halt:
		return Stop, nil

	default:
		return Jump{}, fmt.Errorf("%w: %T", ErrUnknownOpcode, ins)
	}
}

func (vm *VM) binary(a, b Param, dest Address, width int, f func(a, b int64) int64) (Jump, error) {
	x, err := Resolve(vm.Memory, a)
	if err != nil {
		return Jump{}, err
	}
	y, err := Resolve(vm.Memory, b)
	if err != nil {
		return Jump{}, err
	}
	if err := vm.Memory.Write(int64(dest), f(x, y)); err != nil {
		return Jump{}, err
	}
	return Advance(width), nil
}

func (vm *VM) branch(cond, target Param, width int, onTrue bool) (Jump, error) {
	c, err := Resolve(vm.Memory, cond)
	if err != nil {
		return Jump{}, err
	}
	if (c != 0) != onTrue {
		return Advance(width), nil
	}
	t, err := Resolve(vm.Memory, target)
	if err != nil {
		return Jump{}, err
	}
	return JumpTo(t), nil
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (vm *VM) fail(err error) error {
	f := &Fault{
		Err:    err,
		IP:     vm.IP,
		Tick:   vm.Ticks,
		Memory: vm.Memory.Clone(),
	}
	if vm.Memory.InBounds(vm.IP) {
		f.Word = vm.Memory[vm.IP]
		f.Opcode = Opcode(f.Word % 100)
	}
	vm.State = StateFaulted
	vm.Fault = f
	return f
}

// Execute runs mem in place until it halts or faults and returns the
// terminal state. The error is nil on halt and a *Fault otherwise.
func Execute(mem Memory, in Source, out Sink, hooks ...Hook) (State, error) {
	vm := New(mem, in, out)
	vm.Hooks = hooks
	err := vm.Run()
	return vm.State, err
}

// AsFault returns the *Fault in err's chain, if any.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
