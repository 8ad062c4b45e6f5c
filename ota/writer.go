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

package ota

import "github.com/embeddedfw/uf2ota/uf2"

// CheckBlock validates block framing ahead of sequence/tag processing
// (spec.md section 4.5, step 1). It never mutates c.
func (c *Context) CheckBlock(b *uf2.Block) Result {
	if b.FileContainer() {
		// file-container blocks are out of scope; silently skipped
		return Ignore
	}
	if !b.HasFamilyID() || b.FileSizeFamilyID != c.familyID {
		return Family
	}
	return Ok
}

// ParseHeader accepts the first block of a stream (block_seq == 0). It
// requires has_tags set, file_container clear and len == 0, parses the
// header's tags into info (which may be nil), and requires OTA_FORMAT_2 to
// be present.
func (c *Context) ParseHeader(b *uf2.Block, info *Info) Result {
	if !b.HasTags() || b.FileContainer() || b.Len != 0 {
		return NotHeader
	}

	if res := c.parseBlockTags(b, info); res != Ok {
		return res
	}
	if !c.isFormatOK {
		return OtaVer
	}
	return Ok
}

// Write processes one block per spec.md section 4.5: sequence check, tag
// parsing, partition routing, optional binpatch application, erase
// coalescing, and the flash write itself.
func (c *Context) Write(b *uf2.Block) Result {
	if res := c.CheckBlock(b); res != Ok {
		return res
	}

	if c.seq == 0 {
		return c.ParseHeader(b, nil)
	}

	if res := c.parseBlockTags(b, nil); res != Ok {
		return res
	}

	if b.Len == 0 || b.NotMainFlash() {
		// metadata-only block, nothing to flash
		return Ignore
	}

	if !c.isPartSet {
		return PartUnset
	}

	if c.part == nil || c.flash == nil {
		// this scheme has no partition for this block, or the partition's
		// flash device was never registered
		return Ignore
	}

	if c.scheme.RequiresBinpatch() && len(c.binpatch) > 0 {
		if err := uf2.ApplyBinpatch(b.Data[:], c.binpatch); err != nil {
			return WriteFailed
		}
	}

	if b.Addr+b.Len > c.part.Length {
		return WriteFailed
	}
	offset := c.part.Offset + b.Addr

	if !c.isErased(offset, b.Len) {
		erasedLength, err := c.flash.Erase(offset, b.Len)
		if err != nil {
			return EraseFailed
		}
		c.erasedOffset = offset
		c.erasedLength = erasedLength
	}

	written, err := c.flash.Write(offset, b.Data[:b.Len])
	if err != nil {
		return WriteFailed
	}
	if written != int(b.Len) {
		return WriteLength
	}

	c.written += b.Len
	return Ok
}

// parseBlockTags checks the sequence number, clears the one-block binpatch
// slot, and (if the block carries tags) walks them, updating context and
// info as described in spec.md section 4.5 steps 2-4.
func (c *Context) parseBlockTags(b *uf2.Block, info *Info) Result {
	if b.BlockSeq != c.seq {
		return SeqMismatch
	}
	c.seq++
	c.binpatch = nil

	if !b.HasTags() {
		return Ok
	}

	if b.Len > uf2.DataSize-4-4 {
		return DataTooLong
	}

	result := Ok
	err := uf2.IterateTags(b, func(t uf2.Tag) bool {
		switch t.Type {
		case uf2.TagFirmware:
			if info != nil {
				info.FirmwareName = string(t.Payload)
			}
		case uf2.TagVersion:
			if info != nil {
				info.FirmwareVersion = string(t.Payload)
			}
		case uf2.TagLTVersion:
			if info != nil {
				info.LTVersion = string(t.Payload)
			}
		case uf2.TagBoard:
			if info != nil {
				info.Board = string(t.Payload)
			}
		case uf2.TagOTAFormat2:
			c.isFormatOK = true
		case uf2.TagOTAPartList:
			result = c.resolvePartList(t.Payload)
		case uf2.TagOTAPartInfo:
			result = c.resolvePartInfo(t.Payload)
		case uf2.TagBinpatch:
			c.binpatch = t.Payload
		case uf2.TagFalPtable:
			if table, ok := decodeEmbeddedTable(t.Payload); ok {
				c.table = SliceTable(table)
				c.tableOwned = true
			}
		}
		return result == Ok
	})
	if err != nil {
		return PartInvalid
	}

	return result
}

// resolvePartList implements spec.md section 4.4's OTA_PART_LIST handling.
func (c *Context) resolvePartList(payload []byte) Result {
	if len(payload) < 3 {
		return OtaWrong
	}
	if c.scheme.Nibble(payload) == 0 {
		return OtaWrong
	}
	return Ok
}

// resolvePartInfo implements spec.md section 4.4's OTA_PART_INFO handling.
func (c *Context) resolvePartInfo(payload []byte) Result {
	c.part = nil
	c.flash = nil
	c.erasedOffset = 0
	c.erasedLength = 0
	c.isPartSet = true

	if len(payload) < 3 {
		return PartInvalid
	}

	index := c.scheme.Nibble(payload)
	if index == 0 {
		return Ok
	}
	if index > 6 {
		return PartInvalid
	}

	names := payload[3:]
	var name string
	current := uint8(0)
	start := 0
	found := false
	for start < len(names) {
		end := start
		for end < len(names) && names[end] != 0 {
			end++
		}
		if end == start || end == len(names) {
			// empty name, or missing NUL terminator
			return PartInvalid
		}
		current++
		if current == index {
			name = string(names[start:end])
			found = true
			break
		}
		start = end + 1
	}
	if !found {
		return PartInvalid
	}

	part, ok := findPartition(c.table, name)
	if !ok {
		return Part404
	}
	c.part = &part

	if c.devices != nil {
		if fd, ok := c.devices.Find(part.FlashDeviceName); ok {
			c.flash = fd
		}
	}

	return Ok
}
