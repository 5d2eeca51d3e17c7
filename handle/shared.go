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


package handle

import (
	"sync"
	"sync/atomic"

	"github.com/memkit/memkit/memory"
	"github.com/memkit/memkit/refcount"
)

// Referenced is implemented by objects that can be owned through a Shared
// handle: a pointer type whose pointee embeds a refcount.Tracker and knows how
// to destroy itself.
type Referenced interface {
	comparable
	refcount.Tracker
	// Destroy releases the resources held by the object. It runs once, when
	// the last reference is released.
	Destroy()
}

// Shared is a reference counted handle. The zero value is a nil handle.
type Shared[P Referenced] struct {
	ptr P
}

// NewShared adopts the reference p was created with.
func NewShared[P Referenced](p P) Shared[P] {
	return Shared[P]{ptr: p}
}

// RefFromThis returns a new handle to p, which must be alive and owned by at
// least one other handle. It is typically called from a method of p.
func RefFromThis[P Referenced](p P) Shared[P] {
	var zero P
	if p != zero {
		p.AddReference()
	}
	return Shared[P]{ptr: p}
}

// Get returns the object, or nil.
func (s Shared[P]) Get() P { return s.ptr }

func (s Shared[P]) IsNil() bool {
	var zero P
	return s.ptr == zero
}

// Equal reports whether both handles refer to the same object.
func (s Shared[P]) Equal(o Shared[P]) bool { return s.ptr == o.ptr }

// Clone returns a new handle to the same object.
func (s Shared[P]) Clone() Shared[P] {
	if !s.IsNil() {
		s.ptr.AddReference()
	}
	return s
}

// Move transfers the reference to the returned handle and leaves s nil.
func (s *Shared[P]) Move() Shared[P] {
	out := *s
	var zero P
	s.ptr = zero
	return out
}

// CopyFrom makes s refer to the object of o, releasing the object s held.
func (s *Shared[P]) CopyFrom(o *Shared[P]) {
	if !o.IsNil() {
		o.ptr.AddReference()
	}
	old := *s
	s.ptr = o.ptr
	old.Reset()
}

// MoveFrom transfers the reference held by o to s, releasing the object s
// held.
func (s *Shared[P]) MoveFrom(o *Shared[P]) {
	if s == o {
		return
	}
	old := *s
	*s = o.Move()
	old.Reset()
}

// Reset releases the reference held by s, destroying the object if it was the
// last one, and leaves s nil. Resetting a nil handle is a no-op.
func (s *Shared[P]) Reset() {
	if s.IsNil() {
		return
	}
	p := s.ptr
	var zero P
	s.ptr = zero
	if p.Release() {
		p.DestroyResource(func() { destroy(p) })
	}
}

// recyclers maps objects built by AllocateShared to the function returning
// their memory to the allocator. registered counts its entries so that
// destroying heap-built objects skips the map while none are live.
var (
	recyclers  sync.Map
	registered atomic.Int64
)

func register(key any, recycle func()) {
	registered.Add(1)
	recyclers.Store(key, recycle)
}

func destroy[P Referenced](p P) {
	p.Destroy()
	if registered.Load() == 0 {
		return
	}
	if f, ok := recyclers.LoadAndDelete(any(p)); ok {
		registered.Add(-1)
		f.(func())()
	}
}

// Convert returns a handle of a related pointer type to the object of s,
// adding a reference. It fails with a *ConversionError, leaving s untouched,
// when the object does not implement Q.
func Convert[Q, P Referenced](s Shared[P]) (Shared[Q], error) {
	q, err := convert[Q](s.ptr)
	if err != nil {
		return Shared[Q]{}, err
	}
	return RefFromThis(q), nil
}

// MoveConvert is Convert that transfers the reference of s instead of adding
// one. On success s is left nil.
func MoveConvert[Q, P Referenced](s *Shared[P]) (Shared[Q], error) {
	q, err := convert[Q](s.ptr)
	if err != nil {
		return Shared[Q]{}, err
	}
	var zero P
	s.ptr = zero
	return Shared[Q]{ptr: q}, nil
}

// AllocateShared builds a T from v in memory served by a and returns the
// first handle to it. When the last reference is released, Destroy runs and
// the memory is recycled through a. The tracker embedded in v should be its
// zero value. A nil handle is returned when the allocation fails.
//
// T must not contain Go pointers; see memory.Create.
func AllocateShared[T any, P interface {
	*T
	Referenced
}](a *memory.Allocator, v T) Shared[P] {
	p := memory.Create(a, v)
	if p == nil {
		return Shared[P]{}
	}
	register(any(P(p)), func() { memory.Recycle(a, p) })
	return Shared[P]{ptr: P(p)}
}

// MakeShared is AllocateShared on the Go heap.
func MakeShared[T any, P interface {
	*T
	Referenced
}](v T) Shared[P] {
	p := new(T)
	*p = v
	return Shared[P]{ptr: P(p)}
}
