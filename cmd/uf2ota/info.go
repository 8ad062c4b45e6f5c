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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/embeddedfw/uf2ota/uf2"
)

func addInfoCmd(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info <package.uf2>",
		Short: "Print the header tags of a UF2/OTA package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading package: %w", err)
			}
			if len(raw) < uf2.Size {
				return fmt.Errorf("package too short to contain a header block")
			}

			b, err := uf2.DecodeBlock(raw[:uf2.Size])
			if err != nil {
				return fmt.Errorf("decoding header block: %w", err)
			}

			blockCount := len(raw) / uf2.Size
			fmt.Printf("family_id: 0x%08X\n", b.FileSizeFamilyID)
			fmt.Printf("blocks: %d\n", blockCount)

			return uf2.IterateTags(b, func(t uf2.Tag) bool {
				switch t.Type {
				case uf2.TagFirmware:
					fmt.Printf("firmware: %s\n", t.Payload)
				case uf2.TagVersion:
					fmt.Printf("version: %s\n", t.Payload)
				case uf2.TagBoard:
					fmt.Printf("board: %s\n", t.Payload)
				case uf2.TagDevice:
					fmt.Printf("device: %s\n", t.Payload)
				case uf2.TagLTVersion:
					fmt.Printf("lt_version: %s\n", t.Payload)
				case uf2.TagOTAFormat2:
					fmt.Printf("ota_format: 2\n")
				case uf2.TagOTAPartList:
					fmt.Printf("part_list: %x\n", t.Payload)
				case uf2.TagOTAPartInfo:
					if len(t.Payload) >= 3 {
						fmt.Printf("part_info: %x %q\n", t.Payload[:3], t.Payload[3:])
					}
				}
				return true
			})
		},
	}

	root.AddCommand(cmd)
}
