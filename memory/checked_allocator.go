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
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"unsafe"
)

// CheckedStrategy wraps a Strategy and records every live allocation with the
// call site that made it, to find leaks in tests.
type CheckedStrategy struct {
	mem Strategy
	sz  int64

	allocs sync.Map
}

func NewCheckedStrategy(mem Strategy) *CheckedStrategy {
	return &CheckedStrategy{mem: mem}
}

// CurrentAlloc returns the number of bytes allocated and not yet freed.
func (a *CheckedStrategy) CurrentAlloc() int { return int(atomic.LoadInt64(&a.sz)) }

func (a *CheckedStrategy) Alloc(size, alignment uintptr) unsafe.Pointer {
	out := a.mem.Alloc(size, alignment)
	if out == nil {
		return nil
	}

	atomic.AddInt64(&a.sz, int64(size))
	info := &dalloc{ptr: out, sz: int(size)}
	if pc, _, l, ok := runtime.Caller(allocFrames); ok {
		info.pc, info.line = pc, l
	}
	a.allocs.Store(uintptr(out), info)
	return out
}

func (a *CheckedStrategy) Free(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil {
		return
	}
	defer a.mem.Free(ptr, size)

	if v, ok := a.allocs.LoadAndDelete(uintptr(ptr)); ok {
		atomic.AddInt64(&a.sz, int64(-v.(*dalloc).sz))
	}
}

func (a *CheckedStrategy) Owns(ptr unsafe.Pointer) bool { return a.mem.Owns(ptr) }

// Reset resets the wrapped strategy and forgets every allocation it owns,
// which for an unbounded strategy is all of them.
func (a *CheckedStrategy) Reset() {
	a.mem.Reset()
	a.allocs.Range(func(key, value interface{}) bool {
		if info := value.(*dalloc); a.mem.Owns(info.ptr) {
			a.allocs.Delete(key)
			atomic.AddInt64(&a.sz, int64(-info.sz))
		}
		return true
	})
}

// allocations are usually made through Allocator.Alloc and Create rather than
// by calling the strategy directly, so by default the recorded caller skips
// those frames to land on the code that asked for the memory.
const (
	defAllocFrames = 3
)

// Use the environment variable MEMKIT_CHECKED_ALLOC_FRAMES to control how many
// frames up the checked strategy looks when storing the caller of an
// allocation.
var allocFrames = defAllocFrames

func init() {
	if val, ok := os.LookupEnv("MEMKIT_CHECKED_ALLOC_FRAMES"); ok {
		if f, err := strconv.Atoi(val); err == nil {
			allocFrames = f
		}
	}
}

type dalloc struct {
	ptr  unsafe.Pointer
	pc   uintptr
	line int
	sz   int
}

type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

// AssertSize reports an error, listing every live allocation, unless exactly
// sz bytes are outstanding.
func (a *CheckedStrategy) AssertSize(t TestingT, sz int) {
	got := int(atomic.LoadInt64(&a.sz))
	if got == sz {
		return
	}

	t.Helper()
	a.allocs.Range(func(_, value interface{}) bool {
		info := value.(*dalloc)
		name := "unknown"
		if f := runtime.FuncForPC(info.pc); f != nil {
			name = f.Name()
		}
		t.Errorf("LEAK of %d bytes FROM %s line %d", info.sz, name, info.line)
		return true
	})
	t.Errorf("invalid memory size exp=%d, got=%d", sz, got)
}

// CheckedScope remembers the outstanding size of a CheckedStrategy so a test
// can verify a region of code left it unchanged.
type CheckedScope struct {
	alloc *CheckedStrategy
	sz    int
}

func NewCheckedScope(alloc *CheckedStrategy) *CheckedScope {
	sz := atomic.LoadInt64(&alloc.sz)
	return &CheckedScope{alloc: alloc, sz: int(sz)}
}

func (c *CheckedScope) CheckSize(t TestingT) {
	sz := int(atomic.LoadInt64(&c.alloc.sz))
	if c.sz != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", c.sz, sz)
	}
}

var (
	_ Strategy = (*CheckedStrategy)(nil)
)
