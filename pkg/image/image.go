// Package image serializes Intcode programs and fault dumps to CBOR.
package image

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/intcodeLang/intcode/pkg/intcode"
)

// Version is the current image format version.
const Version = 1

// Image is a program memory plus, for dumps, the state it stopped in.
type Image struct {
	Version int            `cbor:"1,keyasint"`
	ID      string         `cbor:"2,keyasint"`
	Name    string         `cbor:"3,keyasint,omitempty"`
	Memory  intcode.Memory `cbor:"4,keyasint"`
	IP      int64          `cbor:"5,keyasint,omitempty"`
	Ticks   int            `cbor:"6,keyasint,omitempty"`
	Fault   *FaultInfo     `cbor:"7,keyasint,omitempty"`
}

// FaultInfo records why a dumped run stopped.
type FaultInfo struct {
	Message string `cbor:"1,keyasint"`
	Word    int64  `cbor:"2,keyasint"`
	Address *int64 `cbor:"3,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// FromProgram wraps a loaded program.
func FromProgram(name string, mem intcode.Memory) *Image {
	return &Image{
		Version: Version,
		ID:      uuid.New().String(),
		Name:    name,
		Memory:  mem.Clone(),
	}
}

// FromFault builds a dump from a faulted run.
func FromFault(name string, f *intcode.Fault) *Image {
	img := &Image{
		Version: Version,
		ID:      uuid.New().String(),
		Name:    name,
		Memory:  f.Memory.Clone(),
		IP:      f.IP,
		Ticks:   f.Tick,
		Fault: &FaultInfo{
			Message: f.Err.Error(),
			Word:    f.Word,
		},
	}
	if addr, ok := f.Address(); ok {
		img.Fault.Address = &addr
	}
	return img
}

// Marshal serializes an Image to CBOR bytes.
func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// Unmarshal deserializes an Image from CBOR bytes.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Version != Version {
		return nil, fmt.Errorf("image: unsupported version %d", img.Version)
	}
	return &img, nil
}

// WriteFile writes img to path.
func WriteFile(path string, img *Image) error {
	data, err := Marshal(img)
	if err != nil {
		return fmt.Errorf("image: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads an image from path.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// ErrNotImage is returned by Load for text input.
var ErrNotImage = errors.New("image: not a binary image")

// IsImage reports whether data starts with a CBOR map header. Images are
// always encoded as maps; text never starts with a byte in 0xA0..0xBF
// since those are UTF-8 continuation bytes.
func IsImage(data []byte) bool {
	return len(data) > 0 && data[0]&0xE0 == 0xA0
}

// Load decodes data if it is an image.
func Load(data []byte) (*Image, error) {
	if !IsImage(data) {
		return nil, ErrNotImage
	}
	return Unmarshal(data)
}
