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


// Package handle provides ownership handles over objects, typically ones
// built in memory served by a memory.Allocator.
//
// Shared is a reference counted handle to an object that embeds a
// refcount.Tracker. Exclusive is a single-owner handle that runs a Deleter on
// the object it holds when it is closed or reset.
//
// Handles are values. Copying a Shared with the assignment operator does not
// add a reference: use Clone or CopyFrom. Using a handle after it was moved
// from is only defined for IsNil, Reset and Close.
package handle
