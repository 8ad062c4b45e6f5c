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

func sampleBlock() *uf2.Block {
	b := &uf2.Block{
		Flags:            uf2.FlagHasFamilyID,
		Addr:             0x1000,
		Len:              256,
		BlockSeq:         3,
		BlockCount:       10,
		FileSizeFamilyID: 0xDEADBEEF,
	}
	for i := range b.Data {
		b.Data[i] = byte(i)
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	want := sampleBlock()
	raw := want.Encode()

	got, err := uf2.DecodeBlock(raw[:])
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}

	if got.Flags != want.Flags || got.Addr != want.Addr || got.Len != want.Len ||
		got.BlockSeq != want.BlockSeq || got.BlockCount != want.BlockCount ||
		got.FileSizeFamilyID != want.FileSizeFamilyID || got.Data != want.Data {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	b := sampleBlock()
	raw := b.Encode()
	raw[0] ^= 0xFF // corrupt magic1

	if _, err := uf2.DecodeBlock(raw[:]); err != uf2.ErrMagic {
		t.Fatalf("got err %v, want ErrMagic", err)
	}
}

func TestDecodeWrongSize(t *testing.T) {
	if _, err := uf2.DecodeBlock(make([]byte, 100)); err == nil {
		t.Fatal("expected error for undersized block")
	}
}

func TestEncodeMasksReservedFlags(t *testing.T) {
	b := sampleBlock()
	b.Flags |= 1 << 5 // a reserved bit

	raw := b.Encode()
	got, err := uf2.DecodeBlock(raw[:])
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if got.Flags&(1<<5) != 0 {
		t.Fatal("reserved flag bit was not masked off on encode")
	}
}

func TestFlagAccessors(t *testing.T) {
	b := &uf2.Block{Flags: uf2.FlagNotMainFlash | uf2.FlagHasTags}
	if !b.NotMainFlash() || !b.HasTags() {
		t.Fatal("expected not_main_flash and has_tags set")
	}
	if b.FileContainer() || b.HasFamilyID() || b.HasMD5() {
		t.Fatal("unexpected flag set")
	}
}
