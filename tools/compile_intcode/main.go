// compile_intcode compiles Intcode program text (.ic) or assembly (.ica)
// into CBOR program images (.icb).
//
// Usage: go run tools/compile_intcode/main.go -o build examples/day5.ica
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/intcodeLang/intcode/pkg/image"
	"github.com/intcodeLang/intcode/pkg/intcode"
	"github.com/intcodeLang/intcode/pkg/parser"
)

var log = commonlog.GetLogger("compile-intcode")

func main() {
	outDir := flag.String("o", "build", "Output directory")
	disasm := flag.Bool("disasm", false, "Print disassembly")
	verbose := flag.Int("v", 1, "Log verbosity")
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: compile_intcode [-o outdir] [-disasm] <file.ic|file.ica>...")
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, path := range flag.Args() {
		if err := compileFile(path, *outDir, *disasm); err != nil {
			fmt.Fprintf(os.Stderr, "Error compiling %s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

func compileFile(path, outDir string, showDisasm bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var mem intcode.Memory
	if filepath.Ext(path) == ".ica" {
		mem, err = intcode.Assemble(string(data))
	} else {
		mem, err = parser.Load(string(data))
	}
	if err != nil {
		return err
	}

	if showDisasm {
		fmt.Printf("=== %s (%d cells) ===\n", baseName, len(mem))
		fmt.Print(intcode.Disassemble(mem))
	}

	img := image.FromProgram(baseName, mem)
	outPath := filepath.Join(outDir, baseName+".icb")
	if err := image.WriteFile(outPath, img); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	log.Infof("%s: %d cells -> %s (id %s)", baseName, len(mem), outPath, img.ID)
	return nil
}
