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


package handle

import (
	"fmt"
	"reflect"

	"golang.org/x/xerrors"
)

// ErrIncompatible is wrapped by every ConversionError.
var ErrIncompatible = xerrors.New("handle: incompatible pointer types")

// ConversionError reports a handle conversion between unrelated pointer
// types.
type ConversionError struct {
	From, To reflect.Type
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %s to %s", ErrIncompatible, e.From, e.To)
}

func (e *ConversionError) Unwrap() error { return ErrIncompatible }

// convert asserts p to Q. A nil p converts to the nil Q.
func convert[Q, P comparable](p P) (Q, error) {
	var zp P
	var zq Q
	if p == zp {
		return zq, nil
	}
	q, ok := any(p).(Q)
	if !ok {
		return zq, &ConversionError{
			From: reflect.TypeOf(p),
			To:   reflect.TypeOf((*Q)(nil)).Elem(),
		}
	}
	return q, nil
}
