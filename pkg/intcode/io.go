package intcode

import (
	"fmt"
	"io"
)

// Source is a single-pass input sequence. Next returns false once every
// value has been consumed.
type Source interface {
	Next() (int64, bool)
}

// Sink receives output values in the order they are produced.
type Sink interface {
	Emit(v int64) error
}

// SliceSource yields the values of a slice in order.
type SliceSource struct {
	values []int64
	pos    int
}

// Values returns a Source over vs.
func Values(vs ...int64) *SliceSource {
	return &SliceSource{values: vs}
}

func (s *SliceSource) Next() (int64, bool) {
	if s == nil || s.pos >= len(s.values) {
		return 0, false
	}
	v := s.values[s.pos]
	s.pos++
	return v, true
}

// Remaining returns the number of values not yet consumed.
func (s *SliceSource) Remaining() int {
	if s == nil {
		return 0
	}
	return len(s.values) - s.pos
}

// Trace collects output values.
type Trace struct {
	Values []int64
}

func (t *Trace) Emit(v int64) error {
	t.Values = append(t.Values, v)
	return nil
}

// Last returns the most recent output value.
func (t *Trace) Last() (int64, bool) {
	if len(t.Values) == 0 {
		return 0, false
	}
	return t.Values[len(t.Values)-1], true
}

// WriterSink writes each value on its own line.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Emit(v int64) error {
	_, err := fmt.Fprintf(s.W, "%d\n", v)
	return err
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(v int64) error

func (f SinkFunc) Emit(v int64) error { return f(v) }

// Discard drops every value.
var Discard Sink = SinkFunc(func(int64) error { return nil })
