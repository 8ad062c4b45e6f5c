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

// WriteRaw decodes a 512-byte wire block and feeds it through Write. This
// is the entry point a transport (serial line, BLE characteristic, etc.)
// drives directly: it never needs to see a *uf2.Block.
func (c *Context) WriteRaw(raw []byte) Result {
	b, err := uf2.DecodeBlock(raw)
	if err != nil {
		return Magic
	}
	return c.Write(b)
}
