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


package refcount_test

import (
	"testing"

	"github.com/memkit/memkit/refcount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type counted interface {
	refcount.Tracker
	Count() int64
}

func TestTrackers(t *testing.T) {
	tests := []struct {
		name string
		mk   func() counted
	}{
		{"local", func() counted { return &refcount.Local{} }},
		{"atomic", func() counted { return &refcount.Atomic{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.mk()
			assert.Equal(t, int64(1), c.Count())

			c.AddReference()
			c.AddReference()
			assert.Equal(t, int64(3), c.Count())

			assert.False(t, c.Release())
			assert.False(t, c.Release())
			assert.True(t, c.Release())
			assert.Zero(t, c.Count())

			destroyed := 0
			c.DestroyResource(func() { destroyed++ })
			assert.Equal(t, 1, destroyed)
		})
	}
}

func TestAtomicConcurrentRelease(t *testing.T) {
	const (
		workers = 8
		refs    = 10000
	)

	var c refcount.Atomic
	for i := 0; i < workers*refs; i++ {
		c.AddReference()
	}

	lasts := make([]int, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < refs; i++ {
				if c.Release() {
					lasts[w]++
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	total := 0
	for _, n := range lasts {
		total += n
	}
	assert.Zero(t, total, "the first reference is still held")
	assert.True(t, c.Release())
}
