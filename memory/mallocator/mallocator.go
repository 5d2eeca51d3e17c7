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


//go:build cgo

package mallocator

// #include <stdlib.h>
// #include <string.h>
//
// static void* aligned_zalloc(size_t size, size_t align) {
//   void* out = NULL;
//   if (align < sizeof(void*)) {
//     align = sizeof(void*);
//   }
//   if (posix_memalign(&out, align, size) != 0) {
//     return NULL;
//   }
//   memset(out, 0, size);
//   return out;
// }
import "C"

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/memkit/memkit/memory"
)

// Mallocator is a memory.Strategy backed by posix_memalign and free. The
// returned memory is zero-initialized.
//
// Mallocator is safe to use from multiple goroutines.
type Mallocator struct {
	allocatedBytes uint64
	// the sizes of live allocations, keyed by address; free only needs the
	// pointer but the accounting needs the size
	sizes sync.Map
}

func New() *Mallocator { return &Mallocator{} }

func (alloc *Mallocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	if alignment == 0 {
		alignment = 1
	}
	// posix_memalign may return NULL for a zero size
	ptr := C.aligned_zalloc(C.size_t(max(size, 1)), C.size_t(alignment))
	if ptr == nil {
		return nil
	}
	alloc.sizes.Store(uintptr(ptr), size)
	atomic.AddUint64(&alloc.allocatedBytes, uint64(size))
	return ptr
}

// Free releases ptr to the C allocator. Pointers this allocator did not
// return are ignored, since passing them to free would corrupt the C heap.
func (alloc *Mallocator) Free(ptr unsafe.Pointer, _ uintptr) {
	if ptr == nil {
		return
	}
	v, ok := alloc.sizes.LoadAndDelete(uintptr(ptr))
	if !ok {
		return
	}
	C.free(ptr)
	atomic.AddUint64(&alloc.allocatedBytes, ^(uint64(v.(uintptr)) - 1))
}

// Owns is always true: the mallocator is the catch-all last link of a
// routing chain.
func (alloc *Mallocator) Owns(unsafe.Pointer) bool { return true }

// Reset is a no-op; allocations must be freed individually.
func (alloc *Mallocator) Reset() {}

func (alloc *Mallocator) AllocatedBytes() int64 {
	return int64(atomic.LoadUint64(&alloc.allocatedBytes))
}

// AssertSize fails the test if the allocator does not hold exactly sz bytes.
func (alloc *Mallocator) AssertSize(t memory.TestingT, sz int) {
	cur := alloc.AllocatedBytes()
	if int64(sz) != cur {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", sz, cur)
	}
}

var (
	_ memory.Strategy = (*Mallocator)(nil)
)
