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


//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package memory

import "unsafe"

// MmapArena is unavailable on this platform; NewMmapArena always fails with
// ErrMmapUnsupported.
type MmapArena struct {
	noCopy noCopy
}

func NewMmapArena(size int) (*MmapArena, error) {
	if size <= 0 {
		return &MmapArena{}, nil
	}
	return nil, ErrMmapUnsupported
}

func (a *MmapArena) Base() unsafe.Pointer { return nil }
func (a *MmapArena) Begin() uintptr       { return 0 }
func (a *MmapArena) End() uintptr         { return 0 }
func (a *MmapArena) Size() uintptr        { return 0 }
func (a *MmapArena) ConstantSize() bool   { return false }
func (a *MmapArena) Release()             {}
