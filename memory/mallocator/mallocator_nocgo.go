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


//go:build !cgo

package mallocator

import (
	"github.com/memkit/memkit/memory"
)

// Mallocator falls back to the Go heap when cgo is disabled.
type Mallocator struct {
	*memory.HeapAllocator
}

func New() *Mallocator { return &Mallocator{memory.NewHeapAllocator()} }

// AssertSize fails the test if the allocator does not hold exactly sz bytes.
func (alloc *Mallocator) AssertSize(t memory.TestingT, sz int) {
	cur := alloc.AllocatedBytes()
	if int64(sz) != cur {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", sz, cur)
	}
}

var (
	_ memory.Strategy = (*Mallocator)(nil)
)
