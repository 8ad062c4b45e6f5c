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
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/embeddedfw/uf2ota/internal/flashdev"
	"github.com/embeddedfw/uf2ota/internal/flashmap"
	"github.com/embeddedfw/uf2ota/internal/pack"
	"github.com/embeddedfw/uf2ota/ota"
	"github.com/embeddedfw/uf2ota/uf2"
)

// addVerifyCmd wires a self-contained round-trip check: pack a firmware
// image, apply it to simulated flash, and confirm the partition's bytes
// match the source image exactly. It keeps a pristine copy of the
// pre-apply device directory (via otiai10/copy) so a failed run leaves
// both the before and after state on disk for inspection.
func addVerifyCmd(root *cobra.Command) {
	var (
		familyID   uint32
		partition  string
		scheme     string
		flashmap_  string
		workDir    string
		sectorSize uint32
	)

	cmd := &cobra.Command{
		Use:   "verify-roundtrip <firmware.bin>",
		Short: "Pack a firmware image, apply it to simulated flash, and compare",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading firmware image: %w", err)
			}

			sch, err := parseScheme(scheme)
			if err != nil {
				return err
			}

			table, err := flashmap.Load(flashmap_)
			if err != nil {
				return fmt.Errorf("loading partition map: %w", err)
			}
			part, ok := findPartitionByName(table, partition)
			if !ok {
				return fmt.Errorf("partition %q not found in %s", partition, flashmap_)
			}
			if uint32(len(data)) > part.Length {
				return fmt.Errorf("firmware image (%d bytes) does not fit in partition %q (%d bytes)",
					len(data), partition, part.Length)
			}

			if err := os.MkdirAll(workDir, 0755); err != nil {
				return err
			}
			deviceDir := filepath.Join(workDir, "flash")
			if err := os.MkdirAll(deviceDir, 0755); err != nil {
				return err
			}

			reg, files, err := openDevices(table, deviceDir, sectorSize)
			if err != nil {
				return err
			}
			defer func() {
				for _, f := range files {
					f.Close()
				}
			}()

			preSnapshot := filepath.Join(workDir, "flash-before")
			os.RemoveAll(preSnapshot)
			if err := copy.Copy(deviceDir, preSnapshot); err != nil {
				return fmt.Errorf("snapshotting pre-apply flash state: %w", err)
			}

			var buf bytes.Buffer
			opts := pack.Options{
				FamilyID: familyID,
				Assignments: []pack.Assignment{
					{Scheme: sch, Partition: partition},
				},
				Data: data,
			}
			if err := pack.Write(&buf, opts); err != nil {
				return fmt.Errorf("packing: %w", err)
			}

			ctx := ota.NewContext(sch, familyID, table, reg)
			raw := buf.Bytes()
			for off := 0; off < len(raw); off += uf2.Size {
				res := ctx.WriteRaw(raw[off : off+uf2.Size])
				if res.Fatal() {
					return fmt.Errorf("block %d: %s", off/uf2.Size, res)
				}
			}

			devFile, ok := reg.Find(part.FlashDeviceName)
			if !ok {
				return fmt.Errorf("flash device %q not found in registry", part.FlashDeviceName)
			}
			flashBytes, err := readBackPartition(devFile, part)
			if err != nil {
				return err
			}

			if !bytes.Equal(flashBytes[:len(data)], data) {
				return fmt.Errorf("round-trip mismatch: flashed %d bytes differ from source image", len(data))
			}

			log.WithFields(log.Fields{
				"partition": partition,
				"bytes":     len(data),
			}).Info("round-trip verified: flashed partition matches source image")
			return nil
		},
	}

	cmd.Flags().Uint32Var(&familyID, "family-id", 0, "UF2 family ID (required)")
	cmd.Flags().StringVar(&partition, "partition", "", "partition to target (required)")
	cmd.Flags().StringVar(&scheme, "scheme", "device-single", "OTA scheme under test")
	cmd.Flags().StringVar(&flashmap_, "flashmap", "", "partition map YAML (required)")
	cmd.Flags().StringVar(&workDir, "work-dir", "./uf2ota-verify", "scratch directory for simulated flash")
	cmd.Flags().Uint32Var(&sectorSize, "sector-size", 4096, "simulated flash erase sector size")
	cmd.MarkFlagRequired("family-id")
	cmd.MarkFlagRequired("partition")
	cmd.MarkFlagRequired("flashmap")

	root.AddCommand(cmd)
}

func findPartitionByName(table ota.SliceTable, name string) (ota.Partition, bool) {
	for _, p := range table {
		if p.Name == name {
			return p, true
		}
	}
	return ota.Partition{}, false
}

func readBackPartition(dev ota.FlashDevice, part ota.Partition) ([]byte, error) {
	f, ok := dev.(*flashdev.File)
	if !ok {
		return nil, fmt.Errorf("flash device for partition %q is not file-backed", part.Name)
	}
	return f.ReadAt(part.Offset, part.Length)
}
