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

	"golang.org/x/exp/constraints"
)

func roundToPowerOf2[T constraints.Integer](v, round T) T {
	forceCarry := round - 1
	truncateMask := ^forceCarry
	return (v + forceCarry) & truncateMask
}

func isPowerOf2[T constraints.Integer](v T) bool {
	return v > 0 && v&(v-1) == 0
}

func isMultipleOfPowerOf2[T constraints.Integer](v, d T) bool {
	return (v & (d - 1)) == 0
}

func normalizeAlignment(alignment uintptr) uintptr {
	if alignment == 0 {
		return 1
	}
	return alignment
}

// within reports whether p lies in [begin, begin+size).
func within(p unsafe.Pointer, begin, size uintptr) bool {
	addr := uintptr(p)
	return addr >= begin && addr-begin < size
}

func bytesAt(p unsafe.Pointer, n uintptr) []byte {
	return unsafe.Slice((*byte)(p), n)
}
