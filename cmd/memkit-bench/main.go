// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"
	"time"
	"unsafe"

	"github.com/docopt/docopt-go"
	"github.com/goccy/go-json"
	"github.com/klauspost/cpuid/v2"
	"github.com/memkit/memkit/memory"
	"github.com/memkit/memkit/memory/mallocator"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

const usage = `Memkit allocation benchmark.
Usage:
  memkit-bench -h | --help
  memkit-bench [--strategy=STRATEGY] [--arena=BYTES] [--block=BYTES]
               [--size=BYTES] [--align=BYTES] [--ops=N] [--workers=N]
               [--fallback=FALLBACK] [--mmap] [--checked] [--json]
Options:
  -h --help              Show this screen.
  --strategy=STRATEGY    Primary strategy: linear, pool or pool-lockfree [default: linear].
  --arena=BYTES          Size of the arena [default: 65536].
  --block=BYTES          Block size of the pool strategies [default: 64].
  --size=BYTES           Size of each allocation [default: 48].
  --align=BYTES          Alignment of each allocation [default: 8].
  --ops=N                Allocations made by each worker [default: 100000].
  --workers=N            Number of concurrent workers [default: 1].
  --fallback=FALLBACK    Fallback strategy: heap or malloc [default: heap].
  --mmap                 Map the arena from the OS instead of the Go heap.
  --checked              Track fallback allocations and fail on leaks.
  --json                 Format output as JSON instead of text.`

var errInvalidConfig = xerrors.New("invalid configuration")

type config struct {
	Strategy string
	Fallback string
	Arena    int
	Block    int
	Size     int
	Align    int
	Ops      int
	Workers  int
	Mmap     bool
	Checked  bool
	JSON     bool
}

func parseConfig(p *docopt.Parser, args []string) (*config, error) {
	// docopt reads os.Args when argv is nil
	if args == nil {
		args = []string{}
	}
	opts, err := p.ParseArgs(usage, args, "")
	if err != nil {
		return nil, err
	}

	var raw struct {
		Strategy string `docopt:"--strategy"`
		Fallback string `docopt:"--fallback"`
		Arena    string `docopt:"--arena"`
		Block    string `docopt:"--block"`
		Size     string `docopt:"--size"`
		Align    string `docopt:"--align"`
		Ops      string `docopt:"--ops"`
		Workers  string `docopt:"--workers"`
		Mmap     bool   `docopt:"--mmap"`
		Checked  bool   `docopt:"--checked"`
		JSON     bool   `docopt:"--json"`
	}
	if err := opts.Bind(&raw); err != nil {
		return nil, err
	}

	cfg := &config{
		Strategy: raw.Strategy,
		Fallback: raw.Fallback,
		Mmap:     raw.Mmap,
		Checked:  raw.Checked,
		JSON:     raw.JSON,
	}
	ints := []struct {
		name string
		val  string
		dst  *int
		min  int
	}{
		{"arena", raw.Arena, &cfg.Arena, 0},
		{"block", raw.Block, &cfg.Block, 1},
		{"size", raw.Size, &cfg.Size, 1},
		{"align", raw.Align, &cfg.Align, 1},
		{"ops", raw.Ops, &cfg.Ops, 0},
		{"workers", raw.Workers, &cfg.Workers, 1},
	}
	for _, n := range ints {
		v, err := strconv.Atoi(n.val)
		if err != nil {
			return nil, xerrors.Errorf("--%s=%s is not an integer: %w", n.name, n.val, errInvalidConfig)
		}
		if v < n.min {
			return nil, xerrors.Errorf("--%s must be at least %d: %w", n.name, n.min, errInvalidConfig)
		}
		*n.dst = v
	}

	if cfg.Align&(cfg.Align-1) != 0 {
		return nil, xerrors.Errorf("--align must be a power of two: %w", errInvalidConfig)
	}
	switch cfg.Strategy {
	case "linear", "pool", "pool-lockfree":
	default:
		return nil, xerrors.Errorf("unknown strategy %q: %w", cfg.Strategy, errInvalidConfig)
	}
	switch cfg.Fallback {
	case "heap", "malloc":
	default:
		return nil, xerrors.Errorf("unknown fallback %q: %w", cfg.Fallback, errInvalidConfig)
	}
	return cfg, nil
}

type report struct {
	Strategy    string        `json:"strategy"`
	Fallback    string        `json:"fallback"`
	Workers     int           `json:"workers"`
	Ops         int           `json:"ops"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	NsPerOp     float64       `json:"ns_per_op"`
	CPU         string        `json:"cpu"`
	CacheLine   int           `json:"cache_line"`
	Stats       memory.Stats  `json:"stats"`
	LeakedBytes int           `json:"leaked_bytes"`
}

func newAllocator(cfg *config) (*memory.Allocator, *memory.CheckedStrategy, error) {
	var arena memory.Arena
	if cfg.Mmap {
		m, err := memory.NewMmapArena(cfg.Arena)
		if err != nil {
			return nil, nil, xerrors.Errorf("mapping arena: %w", err)
		}
		arena = m
	} else {
		arena = memory.NewHeapArena(cfg.Arena)
	}

	var fallback memory.Strategy = memory.NewHeapAllocator()
	if cfg.Fallback == "malloc" {
		fallback = mallocator.New()
	}
	var checked *memory.CheckedStrategy
	if cfg.Checked {
		checked = memory.NewCheckedStrategy(fallback)
		fallback = checked
	}

	var locker sync.Locker = memory.NoLock{}
	if cfg.Workers > 1 && cfg.Strategy != "pool-lockfree" {
		locker = &sync.Mutex{}
	}

	var primary memory.StrategyFunc
	switch cfg.Strategy {
	case "linear":
		primary = memory.Linear
	case "pool":
		primary = memory.PoolStrategy(uintptr(cfg.Block), uintptr(cfg.Align), false)
	case "pool-lockfree":
		primary = memory.PoolStrategy(uintptr(cfg.Block), uintptr(cfg.Align), true)
	}
	a := memory.NewAllocator(arena, primary, memory.WithFallback(fallback), memory.WithLocker(locker))
	return a, checked, nil
}

// window is the number of allocations each worker keeps live.
const window = 16

func work(a *memory.Allocator, ops int, size, align uintptr) {
	var live [window]unsafe.Pointer
	for i := 0; i < ops; i++ {
		slot := &live[i%window]
		a.FreeSized(*slot, size)
		*slot = a.Alloc(size, align)
		if *slot != nil {
			*(*byte)(*slot) = byte(i)
		}
	}
	for _, p := range live {
		a.FreeSized(p, size)
	}
}

func run(cfg *config, w io.Writer) error {
	a, checked, err := newAllocator(cfg)
	if err != nil {
		return err
	}
	defer a.Release()

	start := time.Now()
	var g errgroup.Group
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			work(a, cfg.Ops, uintptr(cfg.Size), uintptr(cfg.Align))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rep := report{
		Strategy:  cfg.Strategy,
		Fallback:  cfg.Fallback,
		Workers:   cfg.Workers,
		Ops:       cfg.Ops * cfg.Workers,
		Elapsed:   time.Since(start),
		CPU:       cpuid.CPU.BrandName,
		CacheLine: memory.CacheLineSize(),
		Stats:     a.Stats(),
	}
	if rep.Ops > 0 {
		rep.NsPerOp = float64(rep.Elapsed.Nanoseconds()) / float64(rep.Ops)
	}
	if checked != nil {
		rep.LeakedBytes = checked.CurrentAlloc()
	}

	if cfg.JSON {
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	} else {
		printReport(w, &rep)
	}

	if rep.LeakedBytes != 0 {
		return xerrors.Errorf("%d bytes leaked through the fallback", rep.LeakedBytes)
	}
	return nil
}

func printReport(w io.Writer, rep *report) {
	fmt.Fprintln(w, "Strategy:", rep.Strategy, "/", rep.Fallback)
	fmt.Fprintln(w, "CPU:", rep.CPU)
	fmt.Fprintln(w, "Cache line:", rep.CacheLine)
	fmt.Fprintln(w, "Workers:", rep.Workers)
	fmt.Fprintln(w, "Operations:", rep.Ops)
	fmt.Fprintln(w, "Elapsed:", rep.Elapsed)
	fmt.Fprintf(w, "ns/op: %.2f\n", rep.NsPerOp)
	fmt.Fprintln(w, "--- Allocator ---")
	fmt.Fprintln(w, "Arena bytes:", rep.Stats.ArenaSize)
	fmt.Fprintln(w, "Primary allocs:", rep.Stats.PrimaryAllocs)
	fmt.Fprintln(w, "Fallback allocs:", rep.Stats.FallbackAllocs)
	fmt.Fprintln(w, "Failed allocs:", rep.Stats.FailedAllocs)
	fmt.Fprintln(w, "Primary frees:", rep.Stats.PrimaryFrees)
	fmt.Fprintln(w, "Fallback frees:", rep.Stats.FallbackFrees)
	fmt.Fprintln(w, "Resets:", rep.Stats.Resets)
	fmt.Fprintln(w, "Leaked bytes:", rep.LeakedBytes)
}

func main() {
	cfg, err := parseConfig(&docopt.Parser{HelpHandler: docopt.PrintHelpAndExit}, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
