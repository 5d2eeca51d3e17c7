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


package refcount

import (
	"sync/atomic"

	"github.com/memkit/memkit/internal/debug"
)

// Tracker is a reference counting protocol.
type Tracker interface {
	// AddReference records a new reference. It may only be called through a
	// reference that is already live.
	AddReference()
	// Release drops a reference and reports whether it was the last one.
	Release() bool
	// DestroyResource runs destroy once Release has reported the last
	// reference. Every access made through other references happens before
	// destroy runs.
	DestroyResource(destroy func())
}

// Local is a Tracker for objects used by a single goroutine.
type Local struct {
	extra int64 // references beyond the first
}

func (c *Local) AddReference() { c.extra++ }

func (c *Local) Release() bool {
	debug.Assert(c.extra >= 0, "too many releases")
	c.extra--
	return c.extra < 0
}

func (c *Local) DestroyResource(destroy func()) { destroy() }

// Count returns the number of live references.
func (c *Local) Count() int64 { return c.extra + 1 }

// Atomic is a Tracker that may be used from multiple goroutines.
//
// The counter uses sync/atomic, whose operations are sequentially
// consistent: the decrement in Release orders a goroutine's earlier accesses
// to the object before the decrement that observes zero, and the load in
// DestroyResource orders destroy after it.
type Atomic struct {
	extra int64
}

func (c *Atomic) AddReference() { atomic.AddInt64(&c.extra, 1) }

func (c *Atomic) Release() bool {
	debug.Assert(atomic.LoadInt64(&c.extra) >= 0, "too many releases")
	return atomic.AddInt64(&c.extra, -1) < 0
}

func (c *Atomic) DestroyResource(destroy func()) {
	// synchronizes with the decrements of every other releasing goroutine
	_ = atomic.LoadInt64(&c.extra)
	destroy()
}

// Count returns a snapshot of the number of live references.
func (c *Atomic) Count() int64 { return atomic.LoadInt64(&c.extra) + 1 }

var (
	_ Tracker = (*Local)(nil)
	_ Tracker = (*Atomic)(nil)
)
