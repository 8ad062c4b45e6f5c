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

// Info is populated from the header block only. Its lifetime is
// independent of the Context that parsed it.
type Info struct {
	FirmwareName    string
	FirmwareVersion string
	LTVersion       string
	Board           string
}

// Context is the per-stream mutable state driven by Write. A Context is
// owned by exactly one caller and must not be shared across goroutines
// without external serialization (spec.md section 5).
type Context struct {
	scheme   uf2.Scheme
	familyID uint32
	devices  FlashDeviceFinder

	seq uint32

	isFormatOK bool
	isPartSet  bool

	binpatch []byte

	erasedOffset uint32
	erasedLength uint32

	table      PartitionTable
	tableOwned bool

	part  *Partition
	flash FlashDevice

	written uint32
}

// NewContext creates a Context at the start of a stream. table is the
// partition table in effect until (and unless) a FAL_PTABLE tag replaces
// it for the remainder of this stream; devices resolves partition flash
// device names to FlashDevice instances.
func NewContext(scheme uf2.Scheme, familyID uint32, table PartitionTable, devices FlashDeviceFinder) *Context {
	return &Context{
		scheme:   scheme,
		familyID: familyID,
		table:    table,
		devices:  devices,
	}
}

// Seq returns the next block sequence number the Context expects.
func (c *Context) Seq() uint32 { return c.seq }

// Written returns the total number of payload bytes committed to flash so
// far in this stream.
func (c *Context) Written() uint32 { return c.written }

// Scheme returns the OTA scheme this Context was created with.
func (c *Context) Scheme() uf2.Scheme { return c.scheme }

func (c *Context) isErased(offset, length uint32) bool {
	erasedEnd := c.erasedOffset + c.erasedLength
	end := offset + length
	return offset >= c.erasedOffset && end <= erasedEnd
}
