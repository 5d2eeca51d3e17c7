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
	"unsafe"

	"github.com/memkit/memkit/internal/debug"
)

// LinearAllocator is a bump allocator over an Arena. Individual frees are
// not supported; Reset releases every allocation at once.
type LinearAllocator struct {
	noCopy noCopy

	base    unsafe.Pointer
	size    uintptr
	current uintptr
}

// NewLinearAllocator returns a bump allocator over the region of a.
func NewLinearAllocator(a Arena) *LinearAllocator {
	return &LinearAllocator{base: a.Base(), size: a.Size()}
}

// Linear is a StrategyFunc building a LinearAllocator.
func Linear(a Arena) Strategy { return NewLinearAllocator(a) }

// Alloc returns size bytes aligned to alignment, which must be a power of
// two. When the region cannot hold the request, nil is returned and the
// allocator is left as it was.
//
// A zero-size request returns the aligned current position without
// consuming it. It fails once that position is the end of the region: a
// pointer just past the arena is not a valid Go pointer.
func (l *LinearAllocator) Alloc(size, alignment uintptr) unsafe.Pointer {
	alignment = normalizeAlignment(alignment)
	debug.Assert(isPowerOf2(alignment), "memory: alignment must be a power of two for linear allocation")
	if l.base == nil {
		return nil
	}

	begin := uintptr(l.base)
	start := roundToPowerOf2(begin+l.current, alignment) - begin
	if start < l.current || start > l.size || size > l.size-start {
		return nil
	}
	if size == 0 {
		if start == l.size {
			return nil
		}
		return unsafe.Add(l.base, start)
	}
	l.current = start + size
	return unsafe.Add(l.base, start)
}

// Free is a no-op: memory is only reclaimed by Reset.
func (l *LinearAllocator) Free(unsafe.Pointer, uintptr) {}

func (l *LinearAllocator) Owns(ptr unsafe.Pointer) bool {
	return l.base != nil && within(ptr, uintptr(l.base), l.size)
}

// Reset rewinds the allocator to the start of the region. Every pointer
// previously returned by Alloc is invalid afterwards; this is not checked.
func (l *LinearAllocator) Reset() { l.current = 0 }

// Used returns the number of bytes consumed, alignment padding included.
func (l *LinearAllocator) Used() uintptr { return l.current }

// Remaining returns the number of bytes left before the end of the region.
func (l *LinearAllocator) Remaining() uintptr { return l.size - l.current }

var (
	_ Strategy = (*LinearAllocator)(nil)
)
