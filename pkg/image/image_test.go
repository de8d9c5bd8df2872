package image

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/intcodeLang/intcode/pkg/intcode"
)

func TestProgramImage(t *testing.T) {
	mem := intcode.Memory{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}
	img := FromProgram("example", mem)
	mem[0] = 7
	if img.Memory[0] != 1 {
		t.Error("Image shares storage with the program")
	}

	data, err := Marshal(img)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !IsImage(data) {
		t.Fatal("Encoded image not recognised as binary")
	}

	got, err := Load(data)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.Name != "example" || got.ID != img.ID || got.Fault != nil {
		t.Errorf("Unexpected header %+v", got)
	}
	if _, err := intcode.Execute(got.Memory, nil, nil); err != nil {
		t.Fatalf("Runtime error: %v", err)
	}
	if got.Memory[0] != 3500 {
		t.Errorf("Expected 3500, got %d", got.Memory[0])
	}
}

func TestCanonicalEncoding(t *testing.T) {
	img := &Image{Version: Version, ID: "fixed", Memory: intcode.Memory{1, 2, 3}}
	a, err := Marshal(img)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(img)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("Encoding is not deterministic")
	}
}

func TestFaultImage(t *testing.T) {
	mem := intcode.Memory{1, 0, 0, 0, 1, 0, 0, 77, 99}
	_, err := intcode.Execute(mem, nil, nil)
	f, ok := intcode.AsFault(err)
	if !ok {
		t.Fatalf("Expected fault, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "fault.icb")
	if err := WriteFile(path, FromFault("dump", f)); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if got.IP != 4 || got.Ticks != 1 || got.Fault == nil {
		t.Fatalf("Unexpected dump %+v", got)
	}
	if got.Fault.Address == nil || *got.Fault.Address != 77 {
		t.Errorf("Expected address 77, got %v", got.Fault.Address)
	}
	if got.Fault.Word != 1 || !got.Memory.Equal(f.Memory) {
		t.Errorf("Unexpected fault info %+v / %v", got.Fault, got.Memory)
	}
}

func TestIsImage(t *testing.T) {
	for _, text := range []string{"1,2,3\n", "  add [1], 2, [3]", "", "\xef\xbb\xbf1,2", "\x00\x01"} {
		if IsImage([]byte(text)) {
			t.Errorf("%q recognised as binary image", text)
		}
	}
	// A CBOR array header is not an image either.
	if IsImage([]byte{0x82, 0x01, 0x02}) {
		t.Error("CBOR array recognised as image")
	}
	if _, err := Load([]byte("99")); !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage, got %v", err)
	}
	if _, err := Unmarshal([]byte{0xA1, 0x01, 0x02}); err == nil {
		t.Error("Expected version error")
	}
}
