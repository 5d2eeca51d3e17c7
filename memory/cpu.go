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

import "github.com/klauspost/cpuid/v2"

const defaultCacheLineSize = 64

// CacheLineSize returns the L1 data cache line size reported by the CPU, or
// 64 when it cannot be detected.
func CacheLineSize() int {
	if n := cpuid.CPU.CacheLine; isPowerOf2(n) {
		return n
	}
	return defaultCacheLineSize
}

// NewCacheAlignedObjectPool is NewThreadSafeObjectPool with every block
// padded and aligned to a cache line, so goroutines working on neighbouring
// objects do not share lines.
func NewCacheAlignedObjectPool[T any](count int, opts ...Option) *Allocator {
	size, _, _ := objectLayout[T]()
	line := uintptr(CacheLineSize())
	stride := roundToPowerOf2(max(size, 1), line)
	arena := NewHeapArena(int(stride)*count + int(line) - 1)
	opts = append([]Option{WithLocker(NoLock{})}, opts...)
	return NewAllocator(arena, PoolStrategy(size, line, true), opts...)
}
