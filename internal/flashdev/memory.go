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

// Package flashdev supplies concrete ota.FlashDevice implementations: an
// in-memory mock for tests, and a file-backed device for the CLI demo path.
package flashdev

import "fmt"

// Memory is an in-memory ota.FlashDevice. It simulates a chip whose erase
// granularity is SectorSize: erasing any byte within a sector erases the
// whole containing sector, and the reported erased length runs from the
// requested offset to the end of the last erased sector, exercising the
// engine's erase coalescing logic the same way a real NOR flash part would.
type Memory struct {
	Bytes      []byte
	SectorSize uint32
	EraseCount int
	WriteCount int
}

// NewMemory allocates a Memory device of the given size, pre-filled with
// 0xFF (the typical erased-NOR-flash value).
func NewMemory(size int, sectorSize uint32) *Memory {
	m := &Memory{
		Bytes:      make([]byte, size),
		SectorSize: sectorSize,
	}
	for i := range m.Bytes {
		m.Bytes[i] = 0xFF
	}
	return m
}

func (m *Memory) Erase(offset, length uint32) (uint32, error) {
	if m.SectorSize == 0 {
		return 0, fmt.Errorf("flashdev: sector size not set")
	}

	sectorStart := (offset / m.SectorSize) * m.SectorSize
	sectorEnd := ((offset + length + m.SectorSize - 1) / m.SectorSize) * m.SectorSize
	if int(sectorEnd) > len(m.Bytes) {
		return 0, fmt.Errorf("flashdev: erase past end of device")
	}

	for i := sectorStart; i < sectorEnd; i++ {
		m.Bytes[i] = 0xFF
	}
	m.EraseCount++
	// Report the erased length as measured from offset forward, since the
	// caller tracks the erased window as starting at offset (not at the
	// sector-aligned floor), even though we erased a little more behind it.
	return sectorEnd - offset, nil
}

func (m *Memory) Write(offset uint32, data []byte) (int, error) {
	if int(offset)+len(data) > len(m.Bytes) {
		return 0, fmt.Errorf("flashdev: write past end of device")
	}
	n := copy(m.Bytes[offset:], data)
	m.WriteCount++
	return n, nil
}
