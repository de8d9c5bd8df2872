// Package sweep runs one program against many variants concurrently.
// Every variant executes on its own clone of the program, so runs never
// share Memory.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/intcodeLang/intcode/pkg/intcode"
)

var log = commonlog.GetLogger("intcode.sweep")

// Patch overwrites one cell of the cloned program before the run.
type Patch struct {
	Address int64
	Value   int64
}

// Variant is one configuration to run the program under.
type Variant struct {
	Name    string
	Inputs  []int64
	Patches []Patch
}

// Result is the outcome of one variant.
type Result struct {
	ID      string
	Variant Variant
	State   intcode.State
	Memory  intcode.Memory
	Output  []int64
	Ticks   int
	Err     error // *intcode.Fault, a patch error, or the context error
}

// OK reports whether the run halted normally.
func (r *Result) OK() bool {
	return r.Err == nil && r.State == intcode.StateHalted
}

// Options tune a sweep.
type Options struct {
	Workers  int // 0 = GOMAXPROCS
	MaxTicks int // 0 = unlimited
	Hooks    []intcode.Hook
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Run executes every variant and returns results in variant order. The
// error is non-nil only if ctx ends before all variants ran.
func Run(ctx context.Context, program intcode.Memory, variants []Variant, opts Options) ([]Result, error) {
	results := make([]Result, len(variants))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for i := range variants {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = runOne(ctx, program, variants[i], opts, nil)
			return nil
		})
	}

	err := g.Wait()
	summarize(results)
	return results, err
}

// Find returns the first variant, in variant order, whose result satisfies
// pred. Variants after a known match are skipped or aborted.
func Find(ctx context.Context, program intcode.Memory, variants []Variant, pred func(*Result) bool, opts Options) (*Result, error) {
	var best atomic.Int64
	best.Store(math.MaxInt64)
	results := make([]Result, len(variants))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for i := range variants {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if int64(i) > best.Load() {
				return nil
			}
			superseded := func(intcode.Event) error {
				if int64(i) > best.Load() {
					return fmt.Errorf("superseded by variant %d", best.Load())
				}
				return nil
			}
			r := runOne(ctx, program, variants[i], opts, superseded)
			results[i] = r
			if pred(&r) {
				for {
					cur := best.Load()
					if int64(i) >= cur || best.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	idx := best.Load()
	if idx == math.MaxInt64 {
		log.Infof("no match among %d variants", len(variants))
		return nil, nil
	}
	log.Infof("variant %q matched", results[idx].Variant.Name)
	return &results[idx], nil
}

func runOne(ctx context.Context, program intcode.Memory, v Variant, opts Options, extra intcode.Hook) Result {
	r := Result{
		ID:      uuid.New().String(),
		Variant: v,
		State:   intcode.StateFaulted,
	}

	mem := program.Clone()
	for _, p := range v.Patches {
		if err := mem.Write(p.Address, p.Value); err != nil {
			r.Err = fmt.Errorf("variant %s: patch: %w", v.Name, err)
			log.Warningf("%s: %v", r.ID, r.Err)
			return r
		}
	}

	hooks := make([]intcode.Hook, 0, len(opts.Hooks)+3)
	hooks = append(hooks, func(intcode.Event) error { return ctx.Err() })
	if opts.MaxTicks > 0 {
		hooks = append(hooks, intcode.TickLimit(opts.MaxTicks))
	}
	if extra != nil {
		hooks = append(hooks, extra)
	}
	hooks = append(hooks, opts.Hooks...)

	var out intcode.Trace
	vm := intcode.New(mem, intcode.Values(v.Inputs...), &out)
	vm.Hooks = hooks
	r.Err = vm.Run()
	r.State = vm.State
	r.Memory = mem
	r.Output = out.Values
	r.Ticks = vm.Ticks

	if r.Err != nil {
		log.Debugf("%s: variant %s faulted: %v", r.ID, v.Name, r.Err)
	} else {
		log.Debugf("%s: variant %s halted after %d ticks", r.ID, v.Name, r.Ticks)
	}
	return r
}

func summarize(results []Result) {
	halted := 0
	for i := range results {
		if results[i].OK() {
			halted++
		}
	}
	log.Infof("sweep finished: %d variants, %d halted, %d faulted", len(results), halted, len(results)-halted)
}
