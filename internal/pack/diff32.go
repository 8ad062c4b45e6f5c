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

package pack

import (
	"encoding/binary"

	"github.com/embeddedfw/uf2ota/uf2"
)

// DiffBlocks32 compares two equal-length block payloads word by word and
// returns a DIFF32 binpatch (spec.md section 4.3's literal wire dialect:
// opcode, count, then count*(offset_u16_le, value_u32_le) records) that
// turns base into target when applied with uf2.ApplyBinpatch. It reports
// ok=false if the inputs differ in length, if a differing word starts past
// offset 0xFFFF, or if more than 255 words differ (the limit of the
// record's count byte). A patch returned with ok=true is not checked
// against uf2.MaxPayload and can be too long for a single tag.
func DiffBlocks32(base, target []byte) (patch []byte, ok bool) {
	if len(base) != len(target) {
		return nil, false
	}

	var records []byte
	count := 0
	for off := 0; off+4 <= len(base); off += 4 {
		if binary.LittleEndian.Uint32(base[off:off+4]) == binary.LittleEndian.Uint32(target[off:off+4]) {
			continue
		}
		if off > 0xFFFF {
			return nil, false
		}
		var rec [6]byte
		binary.LittleEndian.PutUint16(rec[0:2], uint16(off))
		binary.LittleEndian.PutUint32(rec[2:6], binary.LittleEndian.Uint32(target[off:off+4]))
		records = append(records, rec[:]...)
		count++
	}

	if count == 0 {
		return nil, true
	}
	if count > 255 {
		return nil, false
	}

	patch = make([]byte, 0, 2+len(records))
	patch = append(patch, uf2.OpcodeDiff32, byte(count))
	patch = append(patch, records...)
	return patch, true
}
