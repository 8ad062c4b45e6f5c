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
	"testing"

	"github.com/embeddedfw/uf2ota/uf2"
)

func TestSchemeDecomposition(t *testing.T) {
	cases := []struct {
		scheme    uf2.Scheme
		byteIndex int
		shift     uint
		binpatch  bool
	}{
		{uf2.SchemeDeviceSingle, 0, 4, false},
		{uf2.SchemeDeviceDual1, 0, 0, false},
		{uf2.SchemeDeviceDual2, 1, 4, true},
		{uf2.SchemeFlasherSingle, 1, 0, false},
		{uf2.SchemeFlasherDual1, 2, 4, false},
		{uf2.SchemeFlasherDual2, 2, 0, true},
	}

	for _, c := range cases {
		if got := c.scheme.ByteIndex(); got != c.byteIndex {
			t.Errorf("%v: ByteIndex() = %d, want %d", c.scheme, got, c.byteIndex)
		}
		if got := c.scheme.NibbleShift(); got != c.shift {
			t.Errorf("%v: NibbleShift() = %d, want %d", c.scheme, got, c.shift)
		}
		if got := c.scheme.RequiresBinpatch(); got != c.binpatch {
			t.Errorf("%v: RequiresBinpatch() = %v, want %v", c.scheme, got, c.binpatch)
		}
	}
}

func TestSchemeNibble(t *testing.T) {
	payload := []byte{0x11, 0x00, 0x00}
	if got := uf2.SchemeDeviceSingle.Nibble(payload); got != 1 {
		t.Errorf("got nibble %d, want 1", got)
	}

	// DEVICE_DUAL_2 (byte 1, shift 4) reads the high nibble of byte 1.
	payload = []byte{0x00, 0x50, 0x00}
	if got := uf2.SchemeDeviceDual2.Nibble(payload); got != 5 {
		t.Errorf("got nibble %d, want 5", got)
	}
}
