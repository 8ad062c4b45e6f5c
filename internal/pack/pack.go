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

// Package pack assembles a UF2 byte stream from firmware images and
// partition assignments: the reverse direction of the ota package's
// streaming writer. It is the host-side half of the engine, run once at
// build/release time rather than on the device.
package pack

import (
	"io"

	"github.com/embeddedfw/uf2ota/internal/ferr"
	"github.com/embeddedfw/uf2ota/uf2"
)

// BlockDataSize is the sub-block size firmware images are split into, one
// UF2 block per sub-block.
const BlockDataSize = 256

// Assignment maps one OTA scheme to the partition that should receive the
// package under that scheme. A package can target several schemes at
// once (e.g. a dual-bank device and a single-bank device sharing one
// image), each resolved independently by the device-side engine.
type Assignment struct {
	Scheme    uf2.Scheme
	Partition string
}

// Metadata carries the optional descriptive tags written into the header
// block. Fields left empty are omitted from the package.
type Metadata struct {
	Device       string
	Board        string
	Firmware     string
	Version      string
	LTVersion    string
	BuildDate    uint32
	HasBuildDate bool
}

// Options configures Write.
type Options struct {
	FamilyID    uint32
	Assignments []Assignment
	Data        []byte
	Meta        Metadata
}

// partListTable builds the 3-byte OTA_PART_LIST nibble table: one nibble
// per scheme, set to 1 when a. has an assignment, run in reverse from
// spec.md section 4.4's device-side decoding.
func partListTable(assignments []Assignment) [3]byte {
	var table [3]byte
	for _, a := range assignments {
		idx := a.Scheme.ByteIndex()
		shift := a.Scheme.NibbleShift()
		table[idx] |= 1 << shift
	}
	return table
}

// partInfoTable builds the OTA_PART_INFO payload: a 3-byte nibble table of
// 1-based indices into names, followed by the NUL-terminated name list
// itself.
func partInfoTable(assignments []Assignment) []byte {
	var table [3]byte
	var names []byte

	seen := make(map[string]uint8)
	var order []string
	for _, a := range assignments {
		if _, ok := seen[a.Partition]; !ok {
			order = append(order, a.Partition)
		}
	}
	for i, name := range order {
		seen[name] = uint8(i + 1)
		names = append(names, []byte(name)...)
		names = append(names, 0)
	}

	for _, a := range assignments {
		idx := a.Scheme.ByteIndex()
		shift := a.Scheme.NibbleShift()
		table[idx] |= seen[a.Partition] << shift
	}

	out := make([]byte, 0, 3+len(names))
	out = append(out, table[:]...)
	out = append(out, names...)
	return out
}

func putHeaderTags(tb *uf2.TagBuilder, opts Options) error {
	if err := tb.Put(uf2.TagOTAFormat2, nil); err != nil {
		return err
	}
	if opts.Meta.Device != "" {
		if err := tb.Put(uf2.TagDevice, []byte(opts.Meta.Device)); err != nil {
			return err
		}
	}
	if opts.Meta.Board != "" {
		if err := tb.Put(uf2.TagBoard, []byte(opts.Meta.Board)); err != nil {
			return err
		}
	}
	if opts.Meta.Firmware != "" {
		if err := tb.Put(uf2.TagFirmware, []byte(opts.Meta.Firmware)); err != nil {
			return err
		}
	}
	if opts.Meta.Version != "" {
		if err := tb.Put(uf2.TagVersion, []byte(opts.Meta.Version)); err != nil {
			return err
		}
	}
	if opts.Meta.LTVersion != "" {
		if err := tb.Put(uf2.TagLTVersion, []byte(opts.Meta.LTVersion)); err != nil {
			return err
		}
	}
	if opts.Meta.HasBuildDate {
		payload := []byte{
			byte(opts.Meta.BuildDate), byte(opts.Meta.BuildDate >> 8),
			byte(opts.Meta.BuildDate >> 16), byte(opts.Meta.BuildDate >> 24),
		}
		if err := tb.Put(uf2.TagBuildDate, payload); err != nil {
			return err
		}
	}
	if len(opts.Assignments) > 0 {
		list := partListTable(opts.Assignments)
		if err := tb.Put(uf2.TagOTAPartList, list[:]); err != nil {
			return err
		}
		if err := tb.Put(uf2.TagOTAPartInfo, partInfoTable(opts.Assignments)); err != nil {
			return err
		}
	}
	return nil
}

// Write assembles the UF2 byte stream for opts.Data and writes it to w: a
// header block (block_seq 0, no raw data, OTA_FORMAT_2 plus descriptive
// and partition-routing tags) followed by one data block per
// BlockDataSize-byte chunk of opts.Data.
func Write(w io.Writer, opts Options) error {
	if opts.FamilyID == 0 {
		return ferr.New("pack: family ID must be nonzero")
	}

	blockCount := uint32(1 + (len(opts.Data)+BlockDataSize-1)/BlockDataSize)
	if len(opts.Data) == 0 {
		blockCount = 1
	}

	header := &uf2.Block{
		Flags:            uf2.FlagHasFamilyID | uf2.FlagHasTags,
		BlockSeq:         0,
		BlockCount:       blockCount,
		FileSizeFamilyID: opts.FamilyID,
	}
	tb := uf2.NewTagBuilder(header)
	if err := putHeaderTags(tb, opts); err != nil {
		return ferr.Wrap(err, "pack: building header tags")
	}
	if err := writeBlock(w, header); err != nil {
		return err
	}

	seq := uint32(1)
	for offset := 0; offset < len(opts.Data); offset += BlockDataSize {
		end := offset + BlockDataSize
		if end > len(opts.Data) {
			end = len(opts.Data)
		}
		chunk := opts.Data[offset:end]

		b := &uf2.Block{
			Flags:            uf2.FlagHasFamilyID,
			Addr:             uint32(offset),
			Len:              uint32(len(chunk)),
			BlockSeq:         seq,
			BlockCount:       blockCount,
			FileSizeFamilyID: opts.FamilyID,
		}
		copy(b.Data[:], chunk)

		if err := writeBlock(w, b); err != nil {
			return err
		}
		seq++
	}

	return nil
}

func writeBlock(w io.Writer, b *uf2.Block) error {
	raw := b.Encode()
	_, err := w.Write(raw[:])
	if err != nil {
		return ferr.Wrap(err, "pack: writing block")
	}
	return nil
}
