package intcode

import (
	"strconv"
	"strings"
)

// Memory is the VM's only addressable state. A run owns its Memory and
// mutates it in place; Clone before running the same program twice.
type Memory []int64

// Clone returns an independent copy of m.
func (m Memory) Clone() Memory {
	if m == nil {
		return nil
	}
	c := make(Memory, len(m))
	copy(c, m)
	return c
}

// InBounds reports whether addr indexes a cell of m.
func (m Memory) InBounds(addr int64) bool {
	return addr >= 0 && addr < int64(len(m))
}

// Read returns the cell at addr.
func (m Memory) Read(addr int64) (int64, error) {
	if !m.InBounds(addr) {
		return 0, &AddressError{Address: addr, Len: len(m)}
	}
	return m[addr], nil
}

// Write stores v at addr. Memory never grows.
func (m Memory) Write(addr int64, v int64) error {
	if !m.InBounds(addr) {
		return &AddressError{Address: addr, Len: len(m)}
	}
	m[addr] = v
	return nil
}

// Equal reports whether m and o hold the same cells.
func (m Memory) Equal(o Memory) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders m in program text format.
func (m Memory) String() string {
	var sb strings.Builder
	for i, v := range m {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}
