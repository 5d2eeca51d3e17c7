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


//go:build linux || darwin || freebsd || netbsd || openbsd

package memory

import (
	"fmt"
	"unsafe"

	"github.com/memkit/memkit/internal/debug"
	"golang.org/x/sys/unix"
)

// MmapArena is a dynamic arena backed by an anonymous private mapping. The
// pages are outside the Go heap: the garbage collector neither scans nor
// moves them.
type MmapArena struct {
	noCopy noCopy

	buf []byte
}

// NewMmapArena maps size bytes of zeroed memory. A size of zero (or less)
// produces a valid, empty arena without touching the OS.
func NewMmapArena(size int) (*MmapArena, error) {
	a := &MmapArena{}
	if size <= 0 {
		return a, nil
	}

	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		debug.Logf("memory: mmap of %d bytes failed: %v", size, err)
		return nil, fmt.Errorf("memory: mmap arena of %d bytes: %w", size, err)
	}
	a.buf = buf
	return a, nil
}

func (a *MmapArena) Base() unsafe.Pointer {
	if len(a.buf) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(a.buf))
}

func (a *MmapArena) Begin() uintptr     { return uintptr(a.Base()) }
func (a *MmapArena) End() uintptr       { return a.Begin() + a.Size() }
func (a *MmapArena) Size() uintptr      { return uintptr(len(a.buf)) }
func (a *MmapArena) ConstantSize() bool { return false }

func (a *MmapArena) Release() {
	if a.buf == nil {
		return
	}
	if err := unix.Munmap(a.buf); err != nil {
		debug.Logf("memory: munmap failed: %v", err)
	}
	a.buf = nil
}

var (
	_ Arena = (*MmapArena)(nil)
)
