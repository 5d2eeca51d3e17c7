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


package memory_test

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/memkit/memkit/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestAllocatorZeroSize(t *testing.T) {
	a := memory.NewAllocator(memory.NewHeapArena(64), memory.Linear)
	linear := a.Primary().(*memory.LinearAllocator)

	p := a.Alloc(0, 8)
	require.NotNil(t, p)
	assert.Zero(t, uintptr(p)%8)
	assert.True(t, a.Owns(p))
	assert.Zero(t, linear.Used())
	assert.Equal(t, memory.Stats{ArenaSize: 64, PrimaryAllocs: 1}, a.Stats())

	// an exhausted primary sends zero-size requests to the fallback
	require.NotNil(t, a.Alloc(64, 1))
	fb := a.Alloc(0, 8)
	require.NotNil(t, fb)
	assert.False(t, a.Owns(fb))
	assert.Equal(t, uint64(1), a.Stats().FallbackAllocs)
	a.Free(fb)
}

func TestAllocatorEmptyPrimaryRoutesToFallback(t *testing.T) {
	heap := memory.NewHeapAllocator()
	a := memory.NewAllocator(memory.NewHeapArena(0), memory.Linear, memory.WithFallback(heap))

	ptrs := make([]unsafe.Pointer, 0, 8)
	for i := 1; i <= 8; i++ {
		ptr := a.Alloc(uintptr(i*8), 8)
		require.NotNil(t, ptr)
		assert.False(t, a.Owns(ptr))
		assert.True(t, a.Fallback().Owns(ptr))
		ptrs = append(ptrs, ptr)
	}
	assert.Equal(t, int64(8*36), heap.AllocatedBytes())

	for _, ptr := range ptrs {
		a.Free(ptr)
	}
	assert.Zero(t, heap.AllocatedBytes())

	stats := a.Stats()
	assert.Zero(t, stats.PrimaryAllocs)
	assert.Equal(t, uint64(8), stats.FallbackAllocs)
	assert.Equal(t, uint64(8), stats.FallbackFrees)
}

func TestAllocatorOverflowToFallback(t *testing.T) {
	heap := memory.NewHeapAllocator()
	a := memory.NewAllocator(memory.NewHeapArena(64), memory.Linear, memory.WithFallback(heap))
	linear := a.Primary().(*memory.LinearAllocator)

	p1 := a.Alloc(48, 8)
	require.NotNil(t, p1)
	assert.True(t, a.Owns(p1))

	p2 := a.Alloc(32, 8)
	require.NotNil(t, p2)
	assert.False(t, a.Owns(p2), "does not fit in the arena")
	used := linear.Used()

	a.Free(p2)
	assert.Equal(t, used, linear.Used(), "freeing a fallback pointer leaves the primary alone")
	assert.Zero(t, heap.AllocatedBytes())

	a.Free(p1)
	assert.Equal(t, used, linear.Used(), "linear free is a no-op")

	stats := a.Stats()
	assert.Equal(t, uint64(1), stats.PrimaryAllocs)
	assert.Equal(t, uint64(1), stats.FallbackAllocs)
	assert.Equal(t, uint64(1), stats.PrimaryFrees)
	assert.Equal(t, uint64(1), stats.FallbackFrees)
}

func TestAllocatorResetPrimaryOnly(t *testing.T) {
	heap := memory.NewHeapAllocator()
	a := memory.NewAllocator(memory.NewHeapArena(64), memory.Linear, memory.WithFallback(heap))
	linear := a.Primary().(*memory.LinearAllocator)

	require.NotNil(t, a.Alloc(64, 1))
	fb := a.Alloc(100, 8)
	require.NotNil(t, fb)
	assert.Equal(t, int64(100), heap.AllocatedBytes())

	a.Reset()
	assert.Zero(t, linear.Used())
	assert.Equal(t, int64(100), heap.AllocatedBytes(), "fallback memory survives reset")
	assert.Equal(t, uint64(1), a.Stats().Resets)

	a.Free(fb)
	assert.Zero(t, heap.AllocatedBytes())
}

func TestAllocatorFailure(t *testing.T) {
	a := memory.NewAllocator(memory.NewHeapArena(16), memory.Linear,
		memory.WithFallback(memory.NewLinearAllocator(memory.NewHeapArena(0))))

	assert.NotNil(t, a.Alloc(16, 1))
	assert.Nil(t, a.Alloc(1, 1))
	assert.Equal(t, uint64(1), a.Stats().FailedAllocs)

	a.Free(nil)
	assert.Zero(t, a.Stats().FallbackFrees)
}

func TestAllocatorAllocDefault(t *testing.T) {
	a := memory.NewAllocator(memory.NewHeapArena(256), memory.Linear)
	require.NotNil(t, a.Alloc(3, 1))
	ptr := a.AllocDefault(8)
	require.NotNil(t, ptr)
	assert.Zero(t, uintptr(ptr)%memory.DefaultAlignment)
}

func TestAllocatorPoison(t *testing.T) {
	a := memory.NewAllocator(memory.NewHeapArena(64), memory.PoolStrategy(16, 8, false),
		memory.WithPoison(0xde))

	ptr := a.Alloc(16, 8)
	require.NotNil(t, ptr)
	buf := unsafe.Slice((*byte)(ptr), 16)
	for i := range buf {
		buf[i] = 1
	}

	a.FreeSized(ptr, 16)
	for i, b := range buf {
		assert.Equalf(t, byte(0xde), b, "byte %d", i)
	}

	arena := unsafe.Slice((*byte)(a.Arena().Base()), a.Arena().Size())
	for i := range arena {
		arena[i] = 0
	}
	a.Reset()
	for i, b := range arena {
		assert.Equalf(t, byte(0xde), b, "arena byte %d", i)
	}
}

func TestAllocatorMutexConcurrent(t *testing.T) {
	const (
		workers = 8
		each    = 100
	)
	a := memory.NewLinear(workers * each * 16)

	var (
		mu   sync.Mutex
		seen = make(map[uintptr]bool)
	)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < each; i++ {
				ptr := a.Alloc(16, 16)
				if ptr == nil {
					t.Error("allocation failed")
					return nil
				}
				mu.Lock()
				seen[uintptr(ptr)] = true
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, seen, workers*each)
	stats := a.Stats()
	assert.Equal(t, uint64(workers*each), stats.PrimaryAllocs+stats.FallbackAllocs)
}
