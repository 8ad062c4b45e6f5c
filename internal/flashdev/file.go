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

package flashdev

import "os"

// File backs erase/write with a regular file standing in for a flash chip,
// for the CLI's apply demo path. It erases by writing 0xFF over the
// requested (sector-rounded) window.
type File struct {
	f          *os.File
	SectorSize uint32
}

// NewFile opens (or creates) path as a File-backed flash device.
func NewFile(path string, sectorSize uint32) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &File{f: f, SectorSize: sectorSize}, nil
}

func (fd *File) Close() error { return fd.f.Close() }

func (fd *File) Erase(offset, length uint32) (uint32, error) {
	sectorSize := fd.SectorSize
	if sectorSize == 0 {
		sectorSize = 4096
	}
	sectorStart := (offset / sectorSize) * sectorSize
	sectorEnd := ((offset + length + sectorSize - 1) / sectorSize) * sectorSize

	blank := make([]byte, sectorEnd-sectorStart)
	for i := range blank {
		blank[i] = 0xFF
	}
	if _, err := fd.f.WriteAt(blank, int64(sectorStart)); err != nil {
		return 0, err
	}
	return sectorEnd - offset, nil
}

func (fd *File) Write(offset uint32, data []byte) (int, error) {
	return fd.f.WriteAt(data, int64(offset))
}

// ReadAt reads length bytes starting at offset, for tooling that needs to
// inspect what was flashed (e.g. the CLI's round-trip verification path).
func (fd *File) ReadAt(offset, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := fd.f.ReadAt(buf, int64(offset)); err != nil {
		return nil, err
	}
	return buf, nil
}
