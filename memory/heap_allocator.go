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

// HeapAllocator is the unbounded fallback strategy. Each allocation is a
// separate Go heap object, over-allocated so it can be sliced to the
// requested alignment, and kept reachable until it is freed.
//
// HeapAllocator is safe to use from multiple goroutines.
type HeapAllocator struct {
	allocs sync.Map // uintptr -> []byte
	sz     atomic.Int64
}

func NewHeapAllocator() *HeapAllocator { return &HeapAllocator{} }

func (a *HeapAllocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	alignment = normalizeAlignment(alignment)

	// padding for alignment; zero-size requests still get a distinct byte
	buf := make([]byte, max(size, 1)+alignment-1)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	shift := roundToPowerOf2(addr, alignment) - addr
	// cap is never zero, so the slice data is buf[shift] even when size is 0
	out := buf[shift : shift+size : len(buf)]
	ptr := unsafe.Pointer(unsafe.SliceData(out))
	debug.Assert(isMultipleOfPowerOf2(uintptr(ptr), alignment), "memory: misaligned heap allocation")

	a.allocs.Store(uintptr(ptr), out)
	a.sz.Add(int64(size))
	return ptr
}

// Free drops the allocation at ptr. Pointers this allocator did not return
// are ignored.
func (a *HeapAllocator) Free(ptr unsafe.Pointer, _ uintptr) {
	if ptr == nil {
		return
	}
	if v, ok := a.allocs.LoadAndDelete(uintptr(ptr)); ok {
		a.sz.Add(-int64(len(v.([]byte))))
	}
}

// Owns is always true: the heap allocator is the catch-all last link of a
// routing chain.
func (a *HeapAllocator) Owns(unsafe.Pointer) bool { return true }

// Reset is a no-op; heap allocations must be freed individually.
func (a *HeapAllocator) Reset() {}

// AllocatedBytes returns the number of bytes currently handed out.
func (a *HeapAllocator) AllocatedBytes() int64 { return a.sz.Load() }

var (
	_ Strategy = (*HeapAllocator)(nil)
)
