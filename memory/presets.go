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
	"unsafe"
)

func objectLayout[T any]() (size, alignment, stride uintptr) {
	var zero T
	size, alignment = unsafe.Sizeof(zero), unsafe.Alignof(zero)
	return size, alignment, roundToPowerOf2(max(size, 1), alignment)
}

// NewObjectPool returns an allocator with room for count values of T in a
// pool over a heap arena, falling back to the heap once the pool is
// exhausted. It is not safe for concurrent use unless a locker is supplied
// with WithLocker.
func NewObjectPool[T any](count int, opts ...Option) *Allocator {
	size, alignment, stride := objectLayout[T]()
	arena := NewHeapArena(int(stride)*count + int(alignment) - 1)
	return NewAllocator(arena, PoolStrategy(size, alignment, false), opts...)
}

// NewThreadSafeObjectPool is NewObjectPool with a lock-free freelist and no
// allocator lock. It is safe for concurrent Alloc and Free; Reset must not
// race with other operations.
func NewThreadSafeObjectPool[T any](count int, opts ...Option) *Allocator {
	size, alignment, stride := objectLayout[T]()
	arena := NewHeapArena(int(stride)*count + int(alignment) - 1)
	opts = append([]Option{WithLocker(NoLock{})}, opts...)
	return NewAllocator(arena, PoolStrategy(size, alignment, true), opts...)
}

// NewLinear returns a bump allocator over a heap arena of size bytes, guarded
// by a mutex.
func NewLinear(size int, opts ...Option) *Allocator {
	opts = append([]Option{WithLocker(&sync.Mutex{})}, opts...)
	return NewAllocator(NewHeapArena(size), Linear, opts...)
}
