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


package mallocator_test

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/memkit/memkit/memory"
	"github.com/memkit/memkit/memory/mallocator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMallocatorAlloc(t *testing.T) {
	sizes := []uintptr{1, 4, 33, 65, 4095, 4096, 8193}
	aligns := []uintptr{0, 1, 8, 64, 4096}
	for _, size := range sizes {
		for _, align := range aligns {
			t.Run(fmt.Sprintf("%d/%d", size, align), func(t *testing.T) {
				a := mallocator.New()
				ptr := a.Alloc(size, align)
				require.NotNil(t, ptr)
				defer a.Free(ptr, size)

				if align > 0 {
					assert.Zero(t, uintptr(ptr)%align)
				}
				// check 0-initialized
				buf := unsafe.Slice((*byte)(ptr), size)
				for idx, c := range buf {
					assert.Equal(t, uint8(0), c, fmt.Sprintf("Buf not zero-initialized at %d", idx))
				}
			})
		}
	}
}

func TestMallocatorZeroSize(t *testing.T) {
	a := mallocator.New()
	p := a.Alloc(0, 8)
	require.NotNil(t, p)
	assert.Zero(t, uintptr(p)%8)
	a.AssertSize(t, 0)

	a.Free(p, 0)
	a.Free(nil, 0)
	a.AssertSize(t, 0)
}

func TestMallocatorAssertSize(t *testing.T) {
	a := mallocator.New()
	assert.Equal(t, int64(0), a.AllocatedBytes())

	buf1 := a.Alloc(64, 8)
	a.AssertSize(t, 64)

	buf2 := a.Alloc(128, 16)
	a.AssertSize(t, 192)
	assert.Equal(t, int64(192), a.AllocatedBytes())

	a.Free(buf1, 64)
	a.AssertSize(t, 128)

	// unknown pointers are ignored
	var x int64
	a.Free(unsafe.Pointer(&x), 8)
	a.Free(buf1, 64)
	a.AssertSize(t, 128)

	a.Free(buf2, 0)
	a.AssertSize(t, 0)
	assert.Equal(t, int64(0), a.AllocatedBytes())
}

func TestMallocatorAsFallback(t *testing.T) {
	fb := mallocator.New()
	a := memory.NewAllocator(memory.NewHeapArena(32), memory.Linear, memory.WithFallback(fb))

	inArena := a.Alloc(32, 8)
	require.NotNil(t, inArena)
	fromC := a.Alloc(100, 8)
	require.NotNil(t, fromC)
	assert.False(t, a.Owns(fromC))
	fb.AssertSize(t, 100)

	a.Reset()
	fb.AssertSize(t, 100)

	a.Free(fromC)
	a.Free(inArena)
	fb.AssertSize(t, 0)
	assert.Equal(t, uint64(1), a.Stats().FallbackFrees)
}
