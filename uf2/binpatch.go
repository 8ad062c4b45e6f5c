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

package uf2

import (
	"encoding/binary"
	"fmt"
)

// OpcodeDiff32 overwrites a 32-bit little-endian word at a given offset.
// It is the only binpatch opcode defined on the wire.
const OpcodeDiff32 = 0xFE

// ErrBinpatchOffset is returned when a DIFF32 record's offset would write
// past the end of a block's 476-byte data area.
var ErrBinpatchOffset = fmt.Errorf("uf2: binpatch offset out of range")

// ErrBinpatchOpcode is returned for any opcode byte other than DIFF32.
var ErrBinpatchOpcode = fmt.Errorf("uf2: unknown binpatch opcode")

// ApplyBinpatch interprets the compact opcode stream in patch and rewrites
// bytes of data (a block's 476-byte data area) in place. patch is consumed
// in full; a malformed record fails the whole application without partial
// side effects beyond whatever earlier records already wrote.
func ApplyBinpatch(data []byte, patch []byte) error {
	pos := 0
	for pos < len(patch) {
		if pos+2 > len(patch) {
			return fmt.Errorf("uf2: truncated binpatch record at offset %d", pos)
		}
		opcode := patch[pos]
		count := int(patch[pos+1])
		pos += 2

		switch opcode {
		case OpcodeDiff32:
			const recordSize = 6 // offset_u16_le + value_u32_le
			if pos+count*recordSize > len(patch) {
				return fmt.Errorf("uf2: truncated DIFF32 record at offset %d", pos)
			}
			for i := 0; i < count; i++ {
				rec := patch[pos : pos+recordSize]
				offset := binary.LittleEndian.Uint16(rec[0:2])
				value := binary.LittleEndian.Uint32(rec[2:6])

				if int(offset)+4 > len(data) {
					return ErrBinpatchOffset
				}
				binary.LittleEndian.PutUint32(data[offset:offset+4], value)

				pos += recordSize
			}
		default:
			return ErrBinpatchOpcode
		}
	}
	return nil
}
