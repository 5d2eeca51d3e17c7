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

import "unsafe"

// Storage is the set of inline backing stores a FixedArena may embed.
type Storage interface {
	~[64]byte | ~[256]byte | ~[1024]byte | ~[4096]byte | ~[16384]byte | ~[65536]byte
}

type (
	Storage64  [64]byte
	Storage256 [256]byte
	Storage1K  [1024]byte
	Storage4K  [4096]byte
	Storage16K [16384]byte
	Storage64K [65536]byte
)

// FixedArena embeds its region inline, so its size is fixed by the storage
// type S. The region lives exactly as long as the arena itself.
type FixedArena[S Storage] struct {
	noCopy noCopy

	buf S
}

// DefaultFixedArena is a 1KiB fixed arena.
type DefaultFixedArena = FixedArena[Storage1K]

// NewFixedArena returns a fixed arena. The size argument exists so fixed and
// dynamic arenas can be built the same way; it is ignored.
func NewFixedArena[S Storage](size int) *FixedArena[S] {
	return new(FixedArena[S])
}

func (a *FixedArena[S]) Base() unsafe.Pointer { return unsafe.Pointer(&a.buf) }
func (a *FixedArena[S]) Begin() uintptr       { return uintptr(a.Base()) }
func (a *FixedArena[S]) End() uintptr         { return a.Begin() + a.Size() }
func (a *FixedArena[S]) Size() uintptr        { return unsafe.Sizeof(a.buf) }
func (a *FixedArena[S]) ConstantSize() bool   { return true }
func (a *FixedArena[S]) Release()             {}

var (
	_ Arena = (*FixedArena[Storage64])(nil)
)
