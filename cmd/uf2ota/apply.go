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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/embeddedfw/uf2ota/internal/flashdev"
	"github.com/embeddedfw/uf2ota/internal/flashmap"
	"github.com/embeddedfw/uf2ota/ota"
	"github.com/embeddedfw/uf2ota/uf2"
)

// openDevices builds a FlashDeviceFinder backed by regular files, one per
// distinct flash_device name in table, each file created (if missing) at
// <dir>/<name>.bin and sized to fit every partition assigned to it.
func openDevices(table ota.SliceTable, dir string, sectorSize uint32) (*flashdev.Registry, []*flashdev.File, error) {
	reg := flashdev.NewRegistry()
	sizes := make(map[string]uint32)
	for _, p := range table {
		end := p.Offset + p.Length
		if end > sizes[p.FlashDeviceName] {
			sizes[p.FlashDeviceName] = end
		}
	}

	var files []*flashdev.File
	for name, size := range sizes {
		path := dir + string(os.PathSeparator) + name + ".bin"
		f, err := flashdev.NewFile(path, sectorSize)
		if err != nil {
			return nil, nil, fmt.Errorf("opening flash device file %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, nil, err
		}
		// reopen sized to its partitions' extent
		if err := os.Truncate(path, int64(size)); err != nil {
			return nil, nil, fmt.Errorf("sizing flash device file %q: %w", path, err)
		}
		f, err = flashdev.NewFile(path, sectorSize)
		if err != nil {
			return nil, nil, err
		}
		reg.Register(name, f)
		files = append(files, f)
	}

	return reg, files, nil
}

func addApplyCmd(root *cobra.Command) {
	var (
		flashmapPath string
		scheme       string
		familyID     uint32
		deviceDir    string
		sectorSize   uint32
	)

	cmd := &cobra.Command{
		Use:   "apply <package.uf2>",
		Short: "Apply a UF2/OTA package to file-backed flash devices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flashmap.Load(flashmapPath)
			if err != nil {
				return fmt.Errorf("loading partition map: %w", err)
			}

			sch, err := parseScheme(scheme)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(deviceDir, 0755); err != nil {
				return fmt.Errorf("creating device directory: %w", err)
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

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading package: %w", err)
			}
			if len(raw)%uf2.Size != 0 {
				return fmt.Errorf("package length %d is not a multiple of block size %d", len(raw), uf2.Size)
			}

			ctx := ota.NewContext(sch, familyID, table, reg)
			for off := 0; off < len(raw); off += uf2.Size {
				res := ctx.WriteRaw(raw[off : off+uf2.Size])
				if res.Fatal() {
					return fmt.Errorf("block %d: %s", off/uf2.Size, res)
				}
				if res != ota.Ignore {
					log.WithField("block", off/uf2.Size).Debug(res)
				}
			}

			log.WithField("written", ctx.Written()).Info("applied package")
			return nil
		},
	}

	cmd.Flags().StringVar(&flashmapPath, "flashmap", "", "partition map YAML (required)")
	cmd.Flags().StringVar(&scheme, "scheme", "device-single", "OTA scheme this device presents")
	cmd.Flags().Uint32Var(&familyID, "family-id", 0, "expected UF2 family ID (required)")
	cmd.Flags().StringVar(&deviceDir, "device-dir", "./flash", "directory holding one file per flash device")
	cmd.Flags().Uint32Var(&sectorSize, "sector-size", 4096, "simulated flash erase sector size")
	cmd.MarkFlagRequired("flashmap")
	cmd.MarkFlagRequired("family-id")

	root.AddCommand(cmd)
}
