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


package memory

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/memkit/memkit/internal/debug"
)

// DefaultAlignment is the alignment used by AllocDefault. It matches the
// largest alignment of any Go scalar type on supported platforms.
const DefaultAlignment = 16

// Strategy is an allocation algorithm over an Arena, or over the OS heap for
// the unbounded fallbacks.
//
// Alloc signals failure solely by returning nil. Owns must be exactly the
// bounds test of the strategy's region; unbounded strategies report true for
// every pointer and may only be used as the last link of a routing chain.
type Strategy interface {
	Alloc(size, alignment uintptr) unsafe.Pointer
	Free(ptr unsafe.Pointer, size uintptr)
	Owns(ptr unsafe.Pointer) bool
	Reset()
}

// StrategyFunc builds the primary strategy of an Allocator over its arena.
type StrategyFunc func(Arena) Strategy

// NoLock is the sync.Locker of single-goroutine allocators. It does nothing.
type NoLock struct{}

func (NoLock) Lock()   {}
func (NoLock) Unlock() {}

// Allocator composes a primary strategy over an Arena with an unbounded
// fallback strategy. Allocations are served by the primary when it can and by
// the fallback otherwise; frees are routed by asking the primary whether it
// owns the pointer.
//
// Every operation runs entirely under the injected sync.Locker. With the
// default NoLock an Allocator must be confined to one goroutine; pass a
// *sync.Mutex with WithLocker for concurrent use.
type Allocator struct {
	noCopy noCopy

	arena    Arena
	primary  Strategy
	fallback Strategy
	mu       sync.Locker

	poison     bool
	poisonByte byte

	stats allocStats
}

// NewAllocator takes ownership of arena and builds the primary strategy over
// it with primary.
func NewAllocator(arena Arena, primary StrategyFunc, opts ...Option) *Allocator {
	cfg := newConfig(opts...)
	return &Allocator{
		arena:      arena,
		primary:    primary(arena),
		fallback:   cfg.fallback,
		mu:         cfg.locker,
		poison:     cfg.poison,
		poisonByte: cfg.poisonByte,
	}
}

// Alloc returns size bytes aligned to alignment, a power of two. It returns
// nil when neither strategy can serve the request. A zero-size request still
// yields a valid, aligned pointer.
func (a *Allocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ptr := a.primary.Alloc(size, alignment); ptr != nil {
		a.stats.primaryAllocs.Add(1)
		return ptr
	}

	debug.Logf("memory: primary cannot serve %d bytes (align %d), using fallback", size, alignment)
	ptr := a.fallback.Alloc(size, alignment)
	if ptr == nil {
		a.stats.failed.Add(1)
		return nil
	}
	a.stats.fallbackAllocs.Add(1)
	return ptr
}

// AllocDefault allocates size bytes with DefaultAlignment.
func (a *Allocator) AllocDefault(size uintptr) unsafe.Pointer {
	return a.Alloc(size, DefaultAlignment)
}

// Free releases ptr to whichever strategy owns it. Freeing nil is a no-op.
func (a *Allocator) Free(ptr unsafe.Pointer) { a.FreeSized(ptr, 0) }

// FreeSized is Free for callers that know the allocation size. A size of
// zero means unknown.
func (a *Allocator) FreeSized(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.poison && size > 0 {
		Set(bytesAt(ptr, size), a.poisonByte)
	}
	if a.primary.Owns(ptr) {
		a.primary.Free(ptr, size)
		a.stats.primaryFrees.Add(1)
		return
	}
	a.fallback.Free(ptr, size)
	a.stats.fallbackFrees.Add(1)
}

// Reset resets the primary strategy only. Memory served by the fallback is
// untouched and stays allocated until it is freed individually: callers that
// expect Reset to reclaim everything will leak it.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.primary.Reset()
	if a.poison && a.arena.Size() > 0 {
		Set(bytesAt(a.arena.Base(), a.arena.Size()), a.poisonByte)
	}
	a.stats.resets.Add(1)
}

// Owns reports whether ptr was served by the primary strategy.
func (a *Allocator) Owns(ptr unsafe.Pointer) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.primary.Owns(ptr)
}

// Release returns the arena's backing store. The allocator, and every
// pointer its primary served, must not be used afterwards.
func (a *Allocator) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.arena.Release()
}

// Arena returns the arena the primary strategy allocates from.
func (a *Allocator) Arena() Arena { return a.arena }

// Primary returns the primary strategy.
func (a *Allocator) Primary() Strategy { return a.primary }

// Fallback returns the fallback strategy.
func (a *Allocator) Fallback() Strategy { return a.fallback }

// Stats returns a snapshot of the allocator's counters.
func (a *Allocator) Stats() Stats {
	return Stats{
		ArenaSize:      a.arena.Size(),
		PrimaryAllocs:  a.stats.primaryAllocs.Load(),
		FallbackAllocs: a.stats.fallbackAllocs.Load(),
		FailedAllocs:   a.stats.failed.Load(),
		PrimaryFrees:   a.stats.primaryFrees.Load(),
		FallbackFrees:  a.stats.fallbackFrees.Load(),
		Resets:         a.stats.resets.Load(),
	}
}

type allocStats struct {
	primaryAllocs  atomic.Uint64
	fallbackAllocs atomic.Uint64
	failed         atomic.Uint64
	primaryFrees   atomic.Uint64
	fallbackFrees  atomic.Uint64
	resets         atomic.Uint64
}

// Stats is a snapshot of Allocator activity.
type Stats struct {
	ArenaSize      uintptr `json:"arena_size"`
	PrimaryAllocs  uint64  `json:"primary_allocs"`
	FallbackAllocs uint64  `json:"fallback_allocs"`
	FailedAllocs   uint64  `json:"failed_allocs"`
	PrimaryFrees   uint64  `json:"primary_frees"`
	FallbackFrees  uint64  `json:"fallback_frees"`
	Resets         uint64  `json:"resets"`
}
