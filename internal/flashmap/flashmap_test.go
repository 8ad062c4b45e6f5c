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

package flashmap_test

import (
	"testing"

	"github.com/embeddedfw/uf2ota/internal/flashmap"
)

func TestParseBasic(t *testing.T) {
	doc := []byte(`
areas:
  boot:
    flash_device: internal
    offset: 0x0
    size: 32kB
  slot0:
    flash_device: internal
    offset: 0x8000
    size: 0xE0000
`)

	table, err := flashmap.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("got %d partitions, want 2", len(table))
	}

	var boot, slot0 bool
	for _, p := range table {
		switch p.Name {
		case "boot":
			boot = true
			if p.Offset != 0 || p.Length != 32*1024 {
				t.Errorf("boot: offset=%d length=%d", p.Offset, p.Length)
			}
		case "slot0":
			slot0 = true
			if p.Offset != 0x8000 || p.Length != 0xE0000 {
				t.Errorf("slot0: offset=%d length=%d", p.Offset, p.Length)
			}
		}
	}
	if !boot || !slot0 {
		t.Fatalf("missing expected partitions: %+v", table)
	}
}

func TestParseMegabyteSuffix(t *testing.T) {
	doc := []byte(`
areas:
  big:
    flash_device: spi0
    offset: 0
    size: 2MB
`)
	table, err := flashmap.Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table[0].Length != 2*1024*1024 {
		t.Errorf("got length %d, want %d", table[0].Length, 2*1024*1024)
	}
}

func TestParseMissingAreas(t *testing.T) {
	if _, err := flashmap.Parse([]byte(`foo: bar`)); err == nil {
		t.Fatal("expected error for missing areas mapping")
	}
}

func TestParseMissingField(t *testing.T) {
	doc := []byte(`
areas:
  boot:
    flash_device: internal
    offset: 0x0
`)
	if _, err := flashmap.Parse(doc); err == nil {
		t.Fatal("expected error for missing size field")
	}
}

func TestParseOverlapRejected(t *testing.T) {
	doc := []byte(`
areas:
  a:
    flash_device: internal
    offset: 0x0
    size: 0x1000
  b:
    flash_device: internal
    offset: 0x800
    size: 0x1000
`)
	if _, err := flashmap.Parse(doc); err == nil {
		t.Fatal("expected error for overlapping partitions")
	}
}

func TestParseOverlapAcrossDevicesAllowed(t *testing.T) {
	doc := []byte(`
areas:
  a:
    flash_device: internal
    offset: 0x0
    size: 0x1000
  b:
    flash_device: spi0
    offset: 0x0
    size: 0x1000
`)
	if _, err := flashmap.Parse(doc); err != nil {
		t.Fatalf("unexpected error for same-offset different-device partitions: %v", err)
	}
}
