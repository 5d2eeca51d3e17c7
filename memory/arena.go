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

// Arena is a contiguous memory region [Begin, End) handed to allocation
// strategies. An arena's backing store has exactly one owner; arenas must not
// be copied.
type Arena interface {
	// Base returns the first byte of the region, or nil for an empty arena.
	Base() unsafe.Pointer
	Begin() uintptr
	End() uintptr
	Size() uintptr
	// ConstantSize reports whether the size of the arena is fixed by its type.
	ConstantSize() bool
	// Release returns the backing store of a dynamic arena. It is a no-op for
	// fixed arenas and on every call after the first.
	Release()
}

// noCopy may be embedded into structs which must not be copied after first
// use; go vet's copylocks checker reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// HeapArena is a dynamic arena whose region is taken from the Go heap when it
// is constructed.
//
// The region is a byte slice and is not scanned by the garbage collector:
// values placed in it must not hold Go pointers.
type HeapArena struct {
	noCopy noCopy

	buf []byte
}

// NewHeapArena returns an arena of size bytes. A size of zero (or less)
// produces a valid, empty arena whose Begin and End are both zero.
func NewHeapArena(size int) *HeapArena {
	a := &HeapArena{}
	if size > 0 {
		a.buf = make([]byte, size)
	}
	return a
}

func (a *HeapArena) Base() unsafe.Pointer {
	if len(a.buf) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(a.buf))
}

func (a *HeapArena) Begin() uintptr     { return uintptr(a.Base()) }
func (a *HeapArena) End() uintptr       { return a.Begin() + a.Size() }
func (a *HeapArena) Size() uintptr      { return uintptr(len(a.buf)) }
func (a *HeapArena) ConstantSize() bool { return false }

func (a *HeapArena) Release() {
	if a.buf == nil {
		return
	}
	debug.Logf("memory: releasing heap arena of %d bytes", len(a.buf))
	a.buf = nil
}

var (
	_ Arena = (*HeapArena)(nil)
)
