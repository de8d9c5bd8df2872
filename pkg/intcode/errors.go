package intcode

import (
	"errors"
	"fmt"
)

// Fault causes. A run that stops on any of these ends in StateFaulted; none
// are recoverable within the run.
var (
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrInvalidMode        = errors.New("invalid parameter mode")
	ErrOutOfBounds        = errors.New("address out of bounds")
	ErrInvalidWriteTarget = errors.New("immediate-mode write target")
	ErrInputExhausted     = errors.New("input exhausted")
	ErrRanOffEnd          = errors.New("instruction pointer ran past end of memory")
	ErrOutput             = errors.New("output sink failed")
	ErrAborted            = errors.New("run aborted by hook")
)

// AddressError reports an access outside Memory.
type AddressError struct {
	Address int64
	Len     int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%v: address %d, memory length %d", ErrOutOfBounds, e.Address, e.Len)
}

func (e *AddressError) Unwrap() error { return ErrOutOfBounds }

// Fault carries the diagnostic context of a run that stopped on an error.
type Fault struct {
	Err    error  // wrapped cause, one of the Err* values above
	IP     int64  // address of the failing instruction
	Word   int64  // raw instruction word at IP, 0 if IP was out of range
	Opcode Opcode // Word % 100
	Tick   int    // instructions completed before the failing one
	Memory Memory // snapshot taken when the fault occurred
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at ip=%d op=%s word=%d tick=%d: %v",
		f.IP, OpName(f.Opcode), f.Word, f.Tick, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Address returns the offending address for out-of-bounds faults.
func (f *Fault) Address() (int64, bool) {
	var ae *AddressError
	if errors.As(f.Err, &ae) {
		return ae.Address, true
	}
	return 0, false
}
