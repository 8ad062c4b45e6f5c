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

// Package ota drives the UF2 streaming state machine: sequence tracking,
// header acceptance, per-block partition routing, binary-patch application,
// and flash commit with erase coalescing.
package ota

import "encoding/binary"

// Partition is a named, contiguous flash region.
type Partition struct {
	Name            string
	FlashDeviceName string
	Offset          uint32
	Length          uint32
}

// PartitionTable is the collaborator interface described in spec.md
// section 6: "Partition-table provider: get_table() -> (entries, count)".
type PartitionTable interface {
	Partitions() []Partition
}

// SliceTable is the simplest PartitionTable: a plain, already-resolved
// list of partitions.
type SliceTable []Partition

func (t SliceTable) Partitions() []Partition { return []Partition(t) }

func findPartition(table PartitionTable, name string) (Partition, bool) {
	if table == nil {
		return Partition{}, false
	}
	for _, p := range table.Partitions() {
		if p.Name == name {
			return p, true
		}
	}
	return Partition{}, false
}

// decodeEmbeddedTable parses the FAL_PTABLE tag payload: a packed array of
// fixed-width partition records, each
// {name[16]byte, flash_device_name[16]byte, offset uint32, length uint32}.
// This is a private wire format local to this repository (spec.md leaves
// the embedded encoding to the implementation; it only requires that the
// tag carry "embedded partition-table bytes").
const embeddedPartitionRecordSize = 16 + 16 + 4 + 4

func decodeEmbeddedTable(payload []byte) ([]Partition, bool) {
	if len(payload) == 0 || len(payload)%embeddedPartitionRecordSize != 0 {
		return nil, false
	}

	n := len(payload) / embeddedPartitionRecordSize
	out := make([]Partition, n)
	for i := 0; i < n; i++ {
		rec := payload[i*embeddedPartitionRecordSize : (i+1)*embeddedPartitionRecordSize]
		out[i] = Partition{
			Name:            cString(rec[0:16]),
			FlashDeviceName: cString(rec[16:32]),
			Offset:          binary.LittleEndian.Uint32(rec[32:36]),
			Length:          binary.LittleEndian.Uint32(rec[36:40]),
		}
	}
	return out, true
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// FlashDevice is the abstract two-operation capability described in
// spec.md section 3: {erase(offset, length), write(offset, bytes)}.
type FlashDevice interface {
	Erase(offset, length uint32) (erasedLength uint32, err error)
	Write(offset uint32, data []byte) (written int, err error)
}

// FlashDeviceFinder is the collaborator interface described in spec.md
// section 6: "Flash-device registry: find(name) -> {erase, write}".
type FlashDeviceFinder interface {
	Find(name string) (FlashDevice, bool)
}
