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
	"math"
	"unsafe"

	"github.com/memkit/memkit/internal/debug"
)

// PoolAllocator hands out fixed-size blocks carved from an Arena. Allocation
// and free are O(1) operations on a Freelist.
type PoolAllocator struct {
	noCopy noCopy

	blocks    unsafe.Pointer // first aligned block
	begin     uintptr
	size      uintptr
	blockSize uintptr
	alignment uintptr
	stride    uintptr
	count     int

	free Freelist
}

// NewPoolAllocator carves a into blocks of blockSize bytes, each aligned to
// alignment. A nil Freelist selects the single-threaded one.
func NewPoolAllocator(a Arena, blockSize, alignment uintptr, fl Freelist) *PoolAllocator {
	alignment = normalizeAlignment(alignment)
	debug.Assert(isPowerOf2(alignment), "memory: pool alignment must be a power of two")
	if blockSize == 0 {
		blockSize = 1
	}
	if fl == nil {
		fl = NewFreelist()
	}

	p := &PoolAllocator{
		begin:     a.Begin(),
		size:      a.Size(),
		blockSize: blockSize,
		alignment: alignment,
		stride:    roundToPowerOf2(blockSize, alignment),
		free:      fl,
	}
	if base := a.Base(); base != nil {
		first := roundToPowerOf2(p.begin, alignment) - p.begin
		if first < p.size {
			p.blocks = unsafe.Add(base, first)
			p.count = int(min((p.size-first)/p.stride, math.MaxUint32-1))
		}
	}
	p.free.Init(p.count)
	return p
}

// PoolStrategy returns a StrategyFunc building a PoolAllocator. threadSafe
// selects the lock-free freelist.
func PoolStrategy(blockSize, alignment uintptr, threadSafe bool) StrategyFunc {
	return func(a Arena) Strategy {
		var fl Freelist
		if threadSafe {
			fl = NewThreadSafeFreelist()
		} else {
			fl = NewFreelist()
		}
		return NewPoolAllocator(a, blockSize, alignment, fl)
	}
}

// Alloc pops a free block. It fails when the pool is exhausted or when the
// request does not fit in a block with the pool's alignment.
func (p *PoolAllocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	alignment = normalizeAlignment(alignment)
	if size > p.blockSize || alignment > p.alignment {
		return nil
	}
	idx, ok := p.free.Pop()
	if !ok {
		return nil
	}
	return unsafe.Add(p.blocks, uintptr(idx)*p.stride)
}

// Free pushes the block holding ptr back on the freelist.
func (p *PoolAllocator) Free(ptr unsafe.Pointer, _ uintptr) {
	if ptr == nil {
		return
	}
	off := uintptr(ptr) - uintptr(p.blocks)
	debug.Assert(p.blocks != nil && off%p.stride == 0 && off/p.stride < uintptr(p.count),
		"memory: freed pointer is not a block of this pool")
	p.free.Push(uint32(off / p.stride))
}

func (p *PoolAllocator) Owns(ptr unsafe.Pointer) bool {
	return p.size != 0 && within(ptr, p.begin, p.size)
}

// Reset returns every block to the freelist.
func (p *PoolAllocator) Reset() { p.free.Init(p.count) }

func (p *PoolAllocator) BlockSize() uintptr { return p.blockSize }
func (p *PoolAllocator) Capacity() int      { return p.count }
func (p *PoolAllocator) Available() int     { return p.free.Len() }

var (
	_ Strategy = (*PoolAllocator)(nil)
)
