// intcode loads and runs Intcode programs.
// Programs may be given as comma-separated text, as assembly, or as a
// CBOR image produced by compile_intcode.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/intcodeLang/intcode/pkg/config"
	"github.com/intcodeLang/intcode/pkg/image"
	"github.com/intcodeLang/intcode/pkg/intcode"
	"github.com/intcodeLang/intcode/pkg/parser"
	"github.com/intcodeLang/intcode/pkg/sweep"
)

var log = commonlog.GetLogger("intcode")

// patchFlags collects repeated -set addr=val flags.
type patchFlags []config.Patch

func (p *patchFlags) String() string {
	var parts []string
	for _, c := range *p {
		parts = append(parts, fmt.Sprintf("%d=%d", c.Address, c.Value))
	}
	return strings.Join(parts, ",")
}

func (p *patchFlags) Set(s string) error {
	addr, val, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected addr=value, got %q", s)
	}
	a, err := strconv.ParseInt(strings.TrimSpace(addr), 10, 64)
	if err != nil {
		return fmt.Errorf("bad address %q: %w", addr, err)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return fmt.Errorf("bad value %q: %w", val, err)
	}
	*p = append(*p, config.Patch{Address: a, Value: v})
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to intcode.toml (default: search upwards from the working directory)")
	input := flag.String("input", "", "Comma-separated input values")
	ticks := flag.Int("ticks", 0, "Tick limit (0 = unlimited)")
	trace := flag.Bool("trace", false, "Trace each instruction to stderr")
	dumpMem := flag.Bool("dump-memory", false, "Dump full memory to stderr before each instruction")
	disasm := flag.Bool("disasm", false, "Disassemble instead of run")
	asm := flag.Bool("asm", false, "Treat the program file as assembly")
	dump := flag.String("dump", "", "Write a CBOR fault dump to this file if the run faults")
	verbose := flag.Int("v", 0, "Log verbosity")
	var patches patchFlags
	flag.Var(&patches, "set", "Set a memory cell before running (addr=value, repeatable)")
	flag.Parse()

	commonlog.Configure(*verbose, nil)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ticks":
			cfg.Run.MaxTicks = *ticks
		case "trace":
			cfg.Run.Trace = *trace
		case "dump":
			cfg.Run.DumpOnFault = *dump
		}
	})
	if *input != "" {
		values, err := parser.ParseValues(*input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: -input: %v\n", err)
			os.Exit(1)
		}
		cfg.Run.Inputs = values
	}
	cfg.Patches = append(cfg.Patches, patches...)

	path := cfg.ProgramPath()
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: intcode [flags] <program>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mem, err := loadProgram(path, *asm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Infof("loaded %s: %d cells", path, len(mem))

	if *disasm {
		fmt.Print(intcode.Disassemble(mem))
		return
	}

	if len(cfg.Variants) > 0 {
		if err := runSweep(cfg, mem); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runProgram(cfg, name, mem, *dumpMem); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return cfg, nil
}

func loadProgram(path string, asm bool) (intcode.Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// Check if it's an image, assembly or program text
	switch {
	case image.IsImage(data):
		img, err := image.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return img.Memory, nil
	case asm || filepath.Ext(path) == ".ica":
		mem, err := intcode.Assemble(string(data))
		if err != nil {
			return nil, fmt.Errorf("assembly error in %s: %w", path, err)
		}
		return mem, nil
	default:
		mem, err := parser.Load(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
		return mem, nil
	}
}

func runProgram(cfg *config.Config, name string, mem intcode.Memory, dumpMem bool) error {
	for _, p := range cfg.Patches {
		if err := mem.Write(p.Address, p.Value); err != nil {
			return fmt.Errorf("patch %d=%d: %w", p.Address, p.Value, err)
		}
	}

	var hooks []intcode.Hook
	if cfg.Run.MaxTicks > 0 {
		hooks = append(hooks, intcode.TickLimit(cfg.Run.MaxTicks))
	}
	if cfg.Run.Trace {
		hooks = append(hooks, intcode.TraceInstructions(os.Stderr))
	}
	if dumpMem {
		hooks = append(hooks, intcode.DumpMemory(os.Stderr))
	}

	vm := intcode.New(mem, intcode.Values(cfg.Run.Inputs...), intcode.WriterSink{W: os.Stdout})
	vm.Hooks = hooks
	err := vm.Run()
	log.Infof("%s: %s after %d ticks", name, vm.State, vm.Ticks)
	if err == nil {
		return nil
	}

	if f, ok := intcode.AsFault(err); ok && cfg.Run.DumpOnFault != "" {
		if derr := image.WriteFile(cfg.Run.DumpOnFault, image.FromFault(name, f)); derr != nil {
			log.Errorf("writing fault dump: %v", derr)
		} else {
			log.Noticef("fault dump written to %s", cfg.Run.DumpOnFault)
		}
	}
	return err
}

func runSweep(cfg *config.Config, mem intcode.Memory) error {
	for _, p := range cfg.Patches {
		if err := mem.Write(p.Address, p.Value); err != nil {
			return fmt.Errorf("patch %d=%d: %w", p.Address, p.Value, err)
		}
	}

	variants := make([]sweep.Variant, 0, len(cfg.Variants))
	for _, v := range cfg.Variants {
		sv := sweep.Variant{Name: v.Name, Inputs: v.Inputs}
		if sv.Inputs == nil {
			sv.Inputs = cfg.Run.Inputs
		}
		for _, p := range v.Patches {
			sv.Patches = append(sv.Patches, sweep.Patch{Address: p.Address, Value: p.Value})
		}
		variants = append(variants, sv)
	}

	results, err := sweep.Run(context.Background(), mem, variants, sweep.Options{
		Workers:  cfg.Sweep.Workers,
		MaxTicks: cfg.Run.MaxTicks,
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.OK() {
			fmt.Printf("%s\thalted\tmem[0]=%d\toutput=%s\n", r.Variant.Name, r.Memory[0], intcode.Memory(r.Output))
			continue
		}
		failed++
		fmt.Printf("%s\t%s\t%v\n", r.Variant.Name, r.State, r.Err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d variants faulted", failed, len(results))
	}
	return nil
}
