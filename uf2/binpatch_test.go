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

package uf2_test

import (
	"bytes"
	"testing"

	"github.com/embeddedfw/uf2ota/uf2"
)

func diff32Record(offset uint16, value uint32) []byte {
	return []byte{
		byte(offset), byte(offset >> 8),
		byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24),
	}
}

func TestApplyBinpatchDiff32(t *testing.T) {
	data := make([]byte, uf2.DataSize)

	patch := []byte{uf2.OpcodeDiff32, 1}
	patch = append(patch, diff32Record(4, 0xDEADBEEF)...)

	if err := uf2.ApplyBinpatch(data, patch); err != nil {
		t.Fatalf("ApplyBinpatch: %v", err)
	}

	want := []byte{0xEF, 0xBE, 0xAD, 0xDE}
	if !bytes.Equal(data[4:8], want) {
		t.Fatalf("got %x, want %x", data[4:8], want)
	}
}

func TestApplyBinpatchMultipleRecords(t *testing.T) {
	data := make([]byte, uf2.DataSize)
	patch := []byte{uf2.OpcodeDiff32, 2}
	patch = append(patch, diff32Record(0, 1)...)
	patch = append(patch, diff32Record(8, 2)...)

	if err := uf2.ApplyBinpatch(data, patch); err != nil {
		t.Fatalf("ApplyBinpatch: %v", err)
	}
	if data[0] != 1 || data[8] != 2 {
		t.Fatalf("unexpected data: %x", data[:12])
	}
}

func TestApplyBinpatchOffsetAtBoundary(t *testing.T) {
	data := make([]byte, uf2.DataSize)
	patch := []byte{uf2.OpcodeDiff32, 1}
	patch = append(patch, diff32Record(uf2.DataSize-4, 0x11223344)...)

	if err := uf2.ApplyBinpatch(data, patch); err != nil {
		t.Fatalf("offset=472 should be valid: %v", err)
	}
}

func TestApplyBinpatchOffsetPastEnd(t *testing.T) {
	data := make([]byte, uf2.DataSize)
	patch := []byte{uf2.OpcodeDiff32, 1}
	patch = append(patch, diff32Record(uf2.DataSize-3, 0x11223344)...)

	if err := uf2.ApplyBinpatch(data, patch); err != uf2.ErrBinpatchOffset {
		t.Fatalf("got %v, want ErrBinpatchOffset", err)
	}
}

func TestApplyBinpatchUnknownOpcode(t *testing.T) {
	data := make([]byte, uf2.DataSize)
	patch := []byte{0x01, 0}

	if err := uf2.ApplyBinpatch(data, patch); err != uf2.ErrBinpatchOpcode {
		t.Fatalf("got %v, want ErrBinpatchOpcode", err)
	}
}
