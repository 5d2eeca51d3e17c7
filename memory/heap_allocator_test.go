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
	"testing"
	"unsafe"

	"github.com/memkit/memkit/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocatorAlign(t *testing.T) {
	a := memory.NewHeapAllocator()

	for _, align := range []uintptr{1, 2, 8, 16, 64, 256, 4096} {
		for _, size := range []uintptr{1, 7, 64, 1000} {
			ptr := a.Alloc(size, align)
			require.NotNil(t, ptr)
			assert.Zerof(t, uintptr(ptr)%align, "size=%d align=%d", size, align)

			buf := unsafe.Slice((*byte)(ptr), size)
			for i := range buf {
				buf[i] = byte(i)
			}
			a.Free(ptr, size)
		}
	}
	assert.Zero(t, a.AllocatedBytes())
}

func TestHeapAllocatorAccounting(t *testing.T) {
	a := memory.NewHeapAllocator()

	p1 := a.Alloc(10, 8)
	p2 := a.Alloc(30, 16)
	assert.Equal(t, int64(40), a.AllocatedBytes())

	a.Free(p1, 10)
	assert.Equal(t, int64(30), a.AllocatedBytes())

	a.Free(p1, 10)
	var x int64
	a.Free(unsafe.Pointer(&x), 8)
	a.Free(nil, 0)
	assert.Equal(t, int64(30), a.AllocatedBytes(), "unknown pointers are ignored")

	a.Reset()
	assert.Equal(t, int64(30), a.AllocatedBytes(), "reset does not free")

	a.Free(p2, 0)
	assert.Zero(t, a.AllocatedBytes())
}

func TestHeapAllocatorOwnsEverything(t *testing.T) {
	a := memory.NewHeapAllocator()
	var x int
	assert.True(t, a.Owns(unsafe.Pointer(&x)))
	assert.True(t, a.Owns(nil))
}

func TestHeapAllocatorZeroSize(t *testing.T) {
	a := memory.NewHeapAllocator()

	p1 := a.Alloc(0, 8)
	p2 := a.Alloc(0, 64)
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	assert.NotEqual(t, p1, p2)
	assert.Zero(t, uintptr(p2)%64)
	assert.Zero(t, a.AllocatedBytes())

	a.Free(p1, 0)
	a.Free(p2, 0)
	assert.Zero(t, a.AllocatedBytes())
}
