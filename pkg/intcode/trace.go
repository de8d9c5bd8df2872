package intcode

import (
	"fmt"
	"io"
)

// Event describes the instruction about to execute.
type Event struct {
	Tick        int
	IP          int64
	Instruction Instruction
	Memory      Memory // live memory; hooks must not modify it
}

// Hook observes each instruction before it executes. A non-nil error
// aborts the run with ErrAborted.
type Hook func(ev Event) error

// TickLimitError is returned by the TickLimit hook.
type TickLimitError struct {
	Limit int
}

func (e *TickLimitError) Error() string {
	return fmt.Sprintf("tick limit %d exceeded", e.Limit)
}

// TickLimit aborts a run that tries to execute more than n instructions.
func TickLimit(n int) Hook {
	return func(ev Event) error {
		if ev.Tick >= n {
			return &TickLimitError{Limit: n}
		}
		return nil
	}
}

// TraceInstructions writes one line per executed instruction.
func TraceInstructions(w io.Writer) Hook {
	return func(ev Event) error {
		_, err := fmt.Fprintf(w, "%6d  %04d: %s\n", ev.Tick, ev.IP, Format(ev.Instruction))
		return err
	}
}

// DumpMemory writes the full memory contents before every instruction.
func DumpMemory(w io.Writer) Hook {
	return func(ev Event) error {
		_, err := fmt.Fprintf(w, "tick=%d ip=%d mem=[%s]\n", ev.Tick, ev.IP, ev.Memory)
		return err
	}
}
