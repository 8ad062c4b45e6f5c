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
	"os/exec"

	shellquote "github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/embeddedfw/uf2ota/internal/pack"
	"github.com/embeddedfw/uf2ota/uf2"
)

func parseScheme(s string) (uf2.Scheme, error) {
	switch s {
	case "device-single":
		return uf2.SchemeDeviceSingle, nil
	case "device-dual-1":
		return uf2.SchemeDeviceDual1, nil
	case "device-dual-2":
		return uf2.SchemeDeviceDual2, nil
	case "flasher-single":
		return uf2.SchemeFlasherSingle, nil
	case "flasher-dual-1":
		return uf2.SchemeFlasherDual1, nil
	case "flasher-dual-2":
		return uf2.SchemeFlasherDual2, nil
	default:
		return 0, fmt.Errorf("unknown scheme %q", s)
	}
}

// runPostPackHook runs a user-supplied shell command string (tokenized with
// shell-word semantics, not a full shell) after a package is written, with
// the output path and family ID available as environment variables.
func runPostPackHook(cmdStr string, outPath string, familyID uint32) error {
	if cmdStr == "" {
		return nil
	}

	toks, err := shellquote.Split(cmdStr)
	if err != nil {
		return fmt.Errorf("invalid post-pack command %q: %w", cmdStr, err)
	}
	if len(toks) == 0 {
		return nil
	}

	cmd := exec.Command(toks[0], toks[1:]...)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("UF2OTA_OUTPUT=%s", outPath),
		fmt.Sprintf("UF2OTA_FAMILY_ID=0x%08X", familyID),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func addPackCmd(root *cobra.Command) {
	var (
		familyID    uint32
		partition   string
		scheme      string
		board       string
		firmware    string
		fwVersion   string
		out         string
		postPackCmd string
	)

	cmd := &cobra.Command{
		Use:   "pack <firmware.bin>",
		Short: "Package a firmware image into a UF2/OTA stream",
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

			opts := pack.Options{
				FamilyID: familyID,
				Assignments: []pack.Assignment{
					{Scheme: sch, Partition: partition},
				},
				Data: data,
				Meta: pack.Metadata{
					Board:    board,
					Firmware: firmware,
					Version:  fwVersion,
				},
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()

			if err := pack.Write(f, opts); err != nil {
				return fmt.Errorf("packing: %w", err)
			}

			log.WithFields(log.Fields{
				"input":     args[0],
				"output":    out,
				"partition": partition,
				"scheme":    sch,
			}).Info("wrote UF2/OTA package")

			if err := runPostPackHook(postPackCmd, out, familyID); err != nil {
				return fmt.Errorf("post-pack hook: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().Uint32Var(&familyID, "family-id", 0, "UF2 family ID for this device (required)")
	cmd.Flags().StringVar(&partition, "partition", "", "destination partition name (required)")
	cmd.Flags().StringVar(&scheme, "scheme", "device-single", "OTA scheme this image targets")
	cmd.Flags().StringVar(&board, "board", "", "board tag to embed in the header block")
	cmd.Flags().StringVar(&firmware, "firmware", "", "firmware name tag")
	cmd.Flags().StringVar(&fwVersion, "fw-version", "", "firmware version tag")
	cmd.Flags().StringVarP(&out, "output", "o", "out.uf2", "output file path")
	cmd.Flags().StringVar(&postPackCmd, "post-pack-cmd", "", "shell command to run after packaging (sees UF2OTA_OUTPUT, UF2OTA_FAMILY_ID)")
	cmd.MarkFlagRequired("family-id")
	cmd.MarkFlagRequired("partition")

	root.AddCommand(cmd)
}
