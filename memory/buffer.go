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

	"github.com/memkit/memkit/refcount"
)

// bufferPadding is the granularity of Buffer capacity growth.
const bufferPadding = 64

// Buffer is a reference counted byte slice whose memory is served by an
// Allocator. A new Buffer holds one reference.
type Buffer struct {
	refs refcount.Atomic

	buf    []byte
	owned  bool // buf was allocated from mem
	mem    *Allocator
	parent *Buffer
}

// NewBufferBytes wraps b. The buffer does not own the memory and never frees
// it.
func NewBufferBytes(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// NewResizableBuffer returns an empty buffer that grows through mem.
func NewResizableBuffer(mem *Allocator) *Buffer {
	return &Buffer{mem: mem}
}

// SliceBuffer returns a buffer sharing length bytes of buf from offset. It
// holds a reference to buf until it is itself released.
func SliceBuffer(buf *Buffer, offset, length int) *Buffer {
	buf.Retain()
	return &Buffer{buf: buf.Bytes()[offset : offset+length], parent: buf}
}

func (b *Buffer) Retain() { b.refs.AddReference() }

// Release drops a reference. The memory is freed with the last one.
func (b *Buffer) Release() {
	if b.refs.Release() {
		b.refs.DestroyResource(b.destroy)
	}
}

func (b *Buffer) destroy() {
	if b.parent != nil {
		b.parent.Release()
		b.parent = nil
	}
	b.free()
	b.buf = nil
}

func (b *Buffer) free() {
	if b.owned && cap(b.buf) > 0 {
		b.mem.FreeSized(unsafe.Pointer(unsafe.SliceData(b.buf)), uintptr(cap(b.buf)))
	}
	b.owned = false
}

// Reset frees the memory owned by b and makes it wrap buf instead.
func (b *Buffer) Reset(buf []byte) {
	if b.parent != nil {
		b.parent.Release()
		b.parent = nil
	}
	b.free()
	b.buf = buf
}

// Bytes returns the contents of the buffer.
func (b *Buffer) Bytes() []byte { return b.buf }

func (b *Buffer) Len() int { return len(b.buf) }
func (b *Buffer) Cap() int { return cap(b.buf) }

// Reserve makes room for at least capacity bytes, keeping the contents. It
// fails with ErrAllocFailed, leaving b unchanged, when the allocator cannot
// serve the request.
func (b *Buffer) Reserve(capacity int) error {
	if capacity <= cap(b.buf) {
		return nil
	}
	if b.mem == nil {
		return ErrNotResizable
	}

	newCap := roundToPowerOf2(capacity, bufferPadding)
	ptr := b.mem.Alloc(uintptr(newCap), DefaultAlignment)
	if ptr == nil {
		return ErrAllocFailed
	}
	out := unsafe.Slice((*byte)(ptr), newCap)[:len(b.buf)]
	copy(out, b.buf)
	b.free()
	b.buf, b.owned = out, true
	return nil
}

// Resize sets the length of the buffer to n bytes, growing it if needed.
// Bytes gained by growing are zeroed.
func (b *Buffer) Resize(n int) error {
	if err := b.Reserve(n); err != nil {
		return err
	}
	old := len(b.buf)
	b.buf = b.buf[:n]
	if n > old {
		Set(b.buf[old:], 0)
	}
	return nil
}
