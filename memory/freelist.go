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
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Freelist tracks the free blocks of a PoolAllocator by index. Links are kept
// in a side table parallel to the blocks, so block memory is never read or
// written by the freelist.
type Freelist interface {
	// Init links blocks [0, n) and discards any previous state. It must not
	// run concurrently with Push or Pop.
	Init(n int)
	Push(idx uint32)
	Pop() (uint32, bool)
	// Len returns the number of free blocks. For the thread-safe freelist it
	// is a snapshot.
	Len() int
}

// empty marks the end of a chain; links store index+1.
const empty = 0

// NewFreelist returns a freelist for use by a single goroutine, or under the
// lock of an Allocator.
func NewFreelist() Freelist { return &freelist{} }

type freelist struct {
	next []uint32
	head uint32
	n    int
}

func (f *freelist) Init(n int) {
	if cap(f.next) < n {
		f.next = make([]uint32, n)
	}
	f.next = f.next[:n]
	for i := range f.next {
		f.next[i] = uint32(i + 2)
	}
	f.head = empty
	if n > 0 {
		f.next[n-1] = empty
		f.head = 1
	}
	f.n = n
}

func (f *freelist) Push(idx uint32) {
	f.next[idx] = f.head
	f.head = idx + 1
	f.n++
}

func (f *freelist) Pop() (uint32, bool) {
	if f.head == empty {
		return 0, false
	}
	idx := f.head - 1
	f.head = f.next[idx]
	f.n--
	return idx, true
}

func (f *freelist) Len() int { return f.n }

// NewThreadSafeFreelist returns a lock-free freelist. The head packs a
// modification tag in its upper 32 bits so a compare-and-swap against a stale
// head fails even if the same block was popped and pushed in between.
func NewThreadSafeFreelist() Freelist { return &threadSafeFreelist{} }

type threadSafeFreelist struct {
	_    cpu.CacheLinePad
	head atomic.Uint64
	_    cpu.CacheLinePad
	n    atomic.Int64

	next []atomic.Uint32
}

func pack(tag uint64, link uint32) uint64 { return tag<<32 | uint64(link) }

func (f *threadSafeFreelist) Init(n int) {
	f.next = make([]atomic.Uint32, n)
	for i := range f.next {
		f.next[i].Store(uint32(i + 2))
	}
	var head uint32 = empty
	if n > 0 {
		f.next[n-1].Store(empty)
		head = 1
	}
	f.head.Store(pack(f.head.Load()>>32+1, head))
	f.n.Store(int64(n))
}

func (f *threadSafeFreelist) Push(idx uint32) {
	for {
		old := f.head.Load()
		f.next[idx].Store(uint32(old))
		if f.head.CompareAndSwap(old, pack(old>>32+1, idx+1)) {
			f.n.Add(1)
			return
		}
	}
}

func (f *threadSafeFreelist) Pop() (uint32, bool) {
	for {
		old := f.head.Load()
		top := uint32(old)
		if top == empty {
			return 0, false
		}
		next := f.next[top-1].Load()
		if f.head.CompareAndSwap(old, pack(old>>32+1, next)) {
			f.n.Add(-1)
			return top - 1, true
		}
	}
}

func (f *threadSafeFreelist) Len() int { return int(f.n.Load()) }
