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


/*
Package memory provides arenas, allocation strategies and a composable
allocator built from them.

An Arena is a bounded region: FixedArena embeds its storage, HeapArena and
MmapArena acquire it when constructed. A Strategy allocates from an arena:
LinearAllocator bumps an offset, PoolAllocator pops fixed-size blocks off a
Freelist, and HeapAllocator (or mallocator.Mallocator) is the unbounded
fallback. An Allocator pairs a primary strategy with a fallback and a
sync.Locker:

	a := memory.NewAllocator(memory.NewHeapArena(4096), memory.Linear,
		memory.WithLocker(&sync.Mutex{}))
	defer a.Release()

	p := memory.Create(a, point{X: 1, Y: 2})
	if p == nil {
		// neither strategy could serve the request
	}
	memory.Recycle(a, p)

Failure to allocate is reported only by a nil pointer. Memory served by an
arena is invisible to the garbage collector, so only values without Go
pointers may be placed in it.
*/
package memory
