/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package ferr is the error type shared by the flashmap loader and the
// packaging code.
package ferr

import (
	"fmt"
	"runtime"
)

// UfError wraps a message with an optional parent and a stack trace
// captured when the error is created. The parent is reachable through
// Unwrap; Error returns only Text.
type UfError struct {
	Parent     error
	Text       string
	StackTrace []byte
}

func (e *UfError) Error() string {
	return e.Text
}

func (e *UfError) Unwrap() error {
	return e.Parent
}

func New(msg string) *UfError {
	e := &UfError{
		Text:       msg,
		StackTrace: make([]byte, 65536),
	}
	n := runtime.Stack(e.StackTrace, false)
	e.StackTrace = e.StackTrace[:n]
	return e
}

func Newf(format string, args ...interface{}) *UfError {
	return New(fmt.Sprintf(format, args...))
}

// Wrap annotates err with a message, preserving it as Parent.
func Wrap(err error, format string, args ...interface{}) *UfError {
	e := New(fmt.Sprintf(format, args...))
	e.Parent = err
	return e
}
