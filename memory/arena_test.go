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


package memory_test

import (
	"testing"

	"github.com/memkit/memkit/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapArena(t *testing.T) {
	a := memory.NewHeapArena(128)
	require.NotNil(t, a.Base())
	assert.Equal(t, uintptr(128), a.Size())
	assert.Equal(t, a.Begin()+128, a.End())
	assert.False(t, a.ConstantSize())

	a.Release()
	assert.Nil(t, a.Base())
	assert.Zero(t, a.Size())
	assert.NotPanics(t, a.Release, "second release is a no-op")
}

func TestHeapArenaEmpty(t *testing.T) {
	for _, sz := range []int{0, -1} {
		a := memory.NewHeapArena(sz)
		assert.Nil(t, a.Base())
		assert.Zero(t, a.Begin())
		assert.Zero(t, a.End())
		assert.Zero(t, a.Size())
		a.Release()
	}
}

func TestFixedArena(t *testing.T) {
	a := memory.NewFixedArena[memory.Storage256](12345)
	assert.True(t, a.ConstantSize())
	assert.Equal(t, uintptr(256), a.Size(), "size argument is ignored")
	assert.Equal(t, a.Begin()+256, a.End())

	var d memory.DefaultFixedArena
	assert.Equal(t, uintptr(1024), d.Size())

	a.Release()
	assert.Equal(t, uintptr(256), a.Size(), "release does not affect embedded storage")
}

func TestFixedArenaSizes(t *testing.T) {
	tests := []struct {
		name  string
		arena memory.Arena
		size  uintptr
	}{
		{"64", memory.NewFixedArena[memory.Storage64](0), 64},
		{"1K", memory.NewFixedArena[memory.Storage1K](0), 1024},
		{"4K", memory.NewFixedArena[memory.Storage4K](0), 4096},
		{"16K", memory.NewFixedArena[memory.Storage16K](0), 16384},
		{"64K", memory.NewFixedArena[memory.Storage64K](0), 65536},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.size, test.arena.Size())
			assert.Equal(t, test.arena.Begin(), uintptr(test.arena.Base()))
		})
	}
}
