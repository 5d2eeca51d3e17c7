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
	"os"
	"strconv"
	"sync"
)

// Option configures an Allocator.
type Option func(*config)

type config struct {
	fallback   Strategy
	locker     sync.Locker
	poison     bool
	poisonByte byte
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		locker:     NoLock{},
		poison:     defaultPoison,
		poisonByte: defaultPoisonByte,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.fallback == nil {
		cfg.fallback = NewHeapAllocator()
	}
	return cfg
}

// WithFallback sets the strategy used when the primary cannot serve a
// request. It must be unbounded: it owns every pointer the primary does not.
// The default is a HeapAllocator.
func WithFallback(s Strategy) Option {
	return func(cfg *config) {
		cfg.fallback = s
	}
}

// WithLocker sets the lock held for the whole of every operation. The default
// is NoLock.
func WithLocker(l sync.Locker) Option {
	return func(cfg *config) {
		cfg.locker = l
	}
}

// WithPoison fills memory with c when it is freed with a known size, and the
// whole arena on Reset, so that use after free reads a recognisable pattern.
func WithPoison(c byte) Option {
	return func(cfg *config) {
		cfg.poison = true
		cfg.poisonByte = c
	}
}

// Use the environment variable MEMKIT_POISON_FREED (for example 0xde) to turn
// poisoning on for every allocator that does not configure it explicitly.
var (
	defaultPoison     bool
	defaultPoisonByte byte
)

func init() {
	if val, ok := os.LookupEnv("MEMKIT_POISON_FREED"); ok {
		if c, err := strconv.ParseUint(val, 0, 8); err == nil {
			defaultPoison, defaultPoisonByte = true, byte(c)
		}
	}
}
