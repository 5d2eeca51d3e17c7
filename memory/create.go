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
	"reflect"
	"unsafe"

	"github.com/memkit/memkit/internal/debug"
)

// Destructor is implemented by types that need to run cleanup before Recycle
// returns their memory.
type Destructor interface {
	Destruct()
}

// Create allocates memory for a T from a and copies v into it. It returns nil,
// without touching any memory, when the allocation fails; callers must check.
//
// T must not contain Go pointers (including strings, slices, maps, channels,
// funcs and interfaces): arena memory is not scanned by the garbage collector.
func Create[T any](a *Allocator, v T) *T {
	if debug.Enabled {
		typ := reflect.TypeOf((*T)(nil)).Elem()
		debug.Assert(!hasPointers(typ), func() string {
			return "memory: cannot place " + typ.String() + " in arena memory, it contains Go pointers"
		})
	}

	var zero T
	ptr := a.Alloc(unsafe.Sizeof(zero), unsafe.Alignof(zero))
	if ptr == nil {
		return nil
	}
	p := (*T)(ptr)
	*p = v
	return p
}

// Recycle destructs *p and frees its memory through a. Recycling nil is a
// no-op.
func Recycle[T any](a *Allocator, p *T) {
	if p == nil {
		return
	}
	if d, ok := any(p).(Destructor); ok {
		d.Destruct()
	}
	var zero T
	*p = zero
	a.FreeSized(unsafe.Pointer(p), unsafe.Sizeof(zero))
}

// Recycler returns a deleter that recycles through a.
func Recycler[T any](a *Allocator) func(*T) {
	return func(p *T) { Recycle(a, p) }
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
