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

import "github.com/memkit/memkit/refcount"

// Box is a detached control block: it adds an atomic reference count to a
// value that does not embed one. Boxes live on the Go heap, so the value may
// hold Go pointers.
type Box[T any] struct {
	refcount.Atomic

	Value   T
	deleter func(*T)
}

// NewBox returns the first handle to a box holding v. deleter, if not nil,
// runs on the value when the last reference is released.
func NewBox[T any](v T, deleter func(*T)) Shared[*Box[T]] {
	return NewShared(&Box[T]{Value: v, deleter: deleter})
}

func (b *Box[T]) Destroy() {
	if b.deleter != nil {
		b.deleter(&b.Value)
	}
	var zero T
	b.Value = zero
}
