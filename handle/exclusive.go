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

import "github.com/memkit/memkit/memory"

// Deleter disposes of an object held by an Exclusive handle. It is called
// with the nil P when the handle is empty and must treat that as a no-op.
type Deleter[P comparable] func(P)

// Exclusive is a single-owner handle. The zero value is a nil handle with a
// no-op deleter.
type Exclusive[P comparable] struct {
	ptr P
	del Deleter[P]
}

// NewExclusive takes ownership of p. A nil deleter does nothing.
func NewExclusive[P comparable](p P, d Deleter[P]) Exclusive[P] {
	return Exclusive[P]{ptr: p, del: d}
}

func (e *Exclusive[P]) Get() P { return e.ptr }

func (e *Exclusive[P]) IsNil() bool {
	var zero P
	return e.ptr == zero
}

// Deleter returns the deleter of e. It is never nil.
func (e *Exclusive[P]) Deleter() Deleter[P] {
	if e.del == nil {
		return func(P) {}
	}
	return e.del
}

func (e *Exclusive[P]) delete(p P) {
	if e.del != nil {
		e.del(p)
	}
}

// Reset runs the deleter on the object held by e and takes ownership of p.
func (e *Exclusive[P]) Reset(p P) {
	old := e.ptr
	e.ptr = p
	e.delete(old)
}

// Release gives up ownership of the object without deleting it.
func (e *Exclusive[P]) Release() P {
	p := e.ptr
	var zero P
	e.ptr = zero
	return p
}

// Move transfers the object and the deleter to the returned handle, leaving e
// nil.
func (e *Exclusive[P]) Move() Exclusive[P] {
	return Exclusive[P]{ptr: e.Release(), del: e.del}
}

// Close runs the deleter on the object held by e and leaves e nil.
func (e *Exclusive[P]) Close() {
	e.delete(e.Release())
}

// ConvertExclusive moves the object of e into a handle of a related pointer
// type, carrying the deleter along. It fails with a *ConversionError, leaving
// e untouched, when the object does not implement Q.
func ConvertExclusive[Q, P comparable](e *Exclusive[P]) (Exclusive[Q], error) {
	q, err := convert[Q](e.ptr)
	if err != nil {
		return Exclusive[Q]{}, err
	}

	out := Exclusive[Q]{ptr: q}
	if d := e.del; d != nil {
		out.del = func(q Q) {
			p, _ := convert[P](q)
			d(p)
		}
	}
	e.Release()
	return out, nil
}

// AllocateExclusive builds a T from v in memory served by a. The handle
// recycles it through a when closed. A nil handle is returned when the
// allocation fails.
//
// T must not contain Go pointers; see memory.Create.
func AllocateExclusive[T any](a *memory.Allocator, v T) Exclusive[*T] {
	return Exclusive[*T]{ptr: memory.Create(a, v), del: memory.Recycler[T](a)}
}

// MakeExclusive is AllocateExclusive on the Go heap.
func MakeExclusive[T any](v T) Exclusive[*T] {
	p := new(T)
	*p = v
	return Exclusive[*T]{ptr: p}
}
